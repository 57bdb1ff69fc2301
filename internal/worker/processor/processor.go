package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reel/internal/config"
	"reel/internal/jobstore"
	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
	"reel/internal/ports"
	"reel/internal/worker/renderer"
)

type Deps struct {
	Store    *jobstore.Store
	Renderer renderer.Client
	SP       ports.StorageProvider
	Render   config.RenderConfig
	Log      *logger.Logger
}

// Processor drives one render job end to end: extract scenes, render
// each in declaration order, locate and assemble the artifacts, hand
// the result to object storage, then clean the media tree.
type Processor struct {
	store     *jobstore.Store
	renderer  renderer.Client
	sp        ports.StorageProvider
	cfg       config.RenderConfig
	mediaRoot string
	log       *logger.Logger

	assembler *Assembler
	cleanup   *Cleanup
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	mediaRoot := filepath.Join(d.Render.WorkDir, "media")

	p := &Processor{
		store:     d.Store,
		renderer:  d.Renderer,
		sp:        d.SP,
		cfg:       d.Render,
		mediaRoot: mediaRoot,
		log:       log,
	}
	p.assembler = NewAssembler(d.Render.FFmpegBin, mediaRoot, log)
	p.cleanup = NewCleanup(mediaRoot, log)
	return p
}

// ProcessJob runs one persisted job through the pipeline, advancing
// its record queued→processing→done|failed.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	rec, err := p.store.Get(jobID)
	if err != nil {
		if errors.IsNotFound(err) {
			// Deleted or consumed while waiting in the wake-up queue.
			log.Warn("job record missing, skipping")
			return nil
		}
		return err
	}
	if !rec.Pending() {
		log.Info("job already terminal, skipping", "status", rec.Status)
		return nil
	}

	req := RequestFromPayload(rec.Payload)
	if req.Script == "" {
		return p.failJob(ctx, jobID, errors.ValidationField("payload.script_code", "missing script"))
	}

	log.Debug("marking job as processing")
	if err := p.store.UpdateStatus(jobID, jobstore.StatusProcessing, nil); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.status", "failed to mark job as processing"))
	}

	res, err := p.RenderAndUpload(ctx, req)
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}

	if err := p.store.UpdateStatus(jobID, jobstore.StatusDone, map[string]any{
		"video_url":       res.VideoURL,
		"scenes_rendered": res.ScenesRendered,
	}); err != nil {
		log.Error("failed to persist job completion", "error", err.Error())
	}
	return nil
}

// RenderAndUpload runs the pipeline for one request. Rejections happen
// before any subprocess is spawned; every failure past scene
// extraction aborts the remaining steps immediately but still triggers
// the best-effort cleanup.
func (p *Processor) RenderAndUpload(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	log := p.log.FromContext(ctx)

	if err := CheckScriptSafety(req.Script); err != nil {
		return nil, err
	}

	scenes := ExtractScenes(req.Script)
	if len(scenes) == 0 {
		return nil, errors.Validation("no Scene classes found in script")
	}
	log.Info("scenes extracted", "count", len(scenes))

	ws, err := NewWorkspace(p.cfg.TmpDir, req.Script)
	if err != nil {
		return nil, errors.Wrap(err, "processor.workspace", "failed to write script file")
	}
	defer ws.Close()

	var artifacts []string
	finalArtifact := ""
	defer func() {
		p.cleanup.CleanupJob(ws.BaseName, artifacts, finalArtifact)
	}()

	quality := NormalizeQuality(req.Quality)
	flag := QualityFlag(quality)
	folder := QualityFolder(quality)

	for _, scene := range scenes {
		log.Info("rendering scene", "scene", scene.Name, "ordinal", scene.Ordinal)
		if _, err := p.renderer.Render(ctx, renderer.Request{
			ScriptPath:  ws.ScriptPath,
			SceneName:   scene.Name,
			QualityFlag: flag,
			Timeout:     p.cfg.SceneTimeout,
		}); err != nil {
			// Fail fast; remaining scenes are not attempted.
			return nil, err
		}

		path, err := LocateArtifact(p.mediaRoot, ws.BaseName, folder, scene.Name)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, path)
		log.Debug("scene rendered", "scene", scene.Name, "artifact", path)
	}

	final, err := p.assembler.Assemble(ctx, ws.BaseName, folder, artifacts)
	if err != nil {
		return nil, err
	}
	finalArtifact = final

	key := fmt.Sprintf("%s/manim_%s_%s.mp4", p.cfg.Bucket, ws.BaseName, quality)
	url, storedKey, err := p.upload(ctx, final, key)
	if err != nil {
		return nil, err
	}

	log.Info("render complete", "video_url", url, "scenes", len(scenes))
	return &RenderResult{
		VideoURL:       url,
		ObjectKey:      storedKey,
		ScenesRendered: len(scenes),
	}, nil
}

// upload is single-attempt; storage failures surface as-is.
func (p *Processor) upload(ctx context.Context, path, key string) (url, storedKey string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "failed to open final artifact")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "failed to stat final artifact")
	}

	out, err := p.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: "video/mp4",
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "upload failed")
	}

	url, err = p.sp.PublicURL(ctx, out.ObjectKey)
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "could not obtain public URL")
	}
	if url == "" {
		return "", "", errors.New(errors.CodeUpload, "could not obtain public URL")
	}
	return url, out.ObjectKey, nil
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	msg := ""
	if cause != nil {
		msg = cause.Error()
		if len(msg) > 2000 {
			msg = msg[:2000]
		}

		var appErr *errors.Error
		if errors.As(cause, &appErr) {
			log.Error("job failed",
				"code", string(appErr.Code),
				"op", appErr.Op,
				"message", appErr.Message,
			)
		} else {
			log.Error("job failed", "error", msg)
		}
	}

	if err := p.store.UpdateStatus(jobID, jobstore.StatusFailed, map[string]any{
		"error": msg,
		"code":  string(errors.GetCode(cause)),
	}); err != nil {
		log.Error("failed to persist job failure", "error", err.Error())
	}

	return cause
}
