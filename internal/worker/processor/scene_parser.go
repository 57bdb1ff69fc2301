package processor

import (
	"regexp"
	"strings"
)

// scenePattern recognizes a scene class declaration extending the
// engine's Scene base type.
var scenePattern = regexp.MustCompile(`class\s+(\w+)\s*\(\s*Scene\s*\)`)

// SceneDescriptor names one renderable scene. Ordinal is its position
// in the script; declaration order is render and concatenation order.
type SceneDescriptor struct {
	Name    string
	Ordinal int
}

// ExtractScenes returns declared scenes in declaration order. An empty
// result means the script is not renderable; callers treat it as a
// rejection, never as a silently successful zero-scene run.
func ExtractScenes(script string) []SceneDescriptor {
	matches := scenePattern.FindAllStringSubmatch(script, -1)
	if len(matches) == 0 {
		return nil
	}
	scenes := make([]SceneDescriptor, 0, len(matches))
	for i, m := range matches {
		scenes = append(scenes, SceneDescriptor{Name: m[1], Ordinal: i})
	}
	return scenes
}

func containsPattern(script, pattern string) bool {
	return strings.Contains(script, pattern)
}
