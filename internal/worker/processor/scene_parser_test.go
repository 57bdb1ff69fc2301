package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractScenes(t *testing.T) {
	script := `
from manim import *

class Intro(Scene):
    def construct(self):
        pass

class Helper:
    pass

class   Outro  ( Scene ):
    def construct(self):
        pass
`
	scenes := ExtractScenes(script)
	assert.Equal(t, []SceneDescriptor{
		{Name: "Intro", Ordinal: 0},
		{Name: "Outro", Ordinal: 1},
	}, scenes, "declaration order is render order")
}

func TestExtractScenesNone(t *testing.T) {
	assert.Nil(t, ExtractScenes("print('hello')"))
	assert.Nil(t, ExtractScenes(""))
	assert.Nil(t, ExtractScenes("class Thing(MovingCameraScene): pass"))
}
