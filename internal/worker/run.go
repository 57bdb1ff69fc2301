package worker

import (
	"context"
	"time"

	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/worker/processor"
	"reel/internal/worker/queue"
	"reel/internal/worker/renderer"
)

func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.Cfg.Queue.Name)
	rc := renderer.NewCLIClient(d.Cfg.Render.ManimBin, d.Cfg.Render.WorkDir, log)

	p := processor.New(processor.Deps{
		Store:    d.Store,
		Renderer: rc,
		SP:       d.SP,
		Render:   d.Cfg.Render,
		Log:      log,
	})

	// Jobs stranded by a crash are still on disk; put them back on the
	// wake-up queue before consuming new work.
	if err := recoverPending(ctx, d.Store, q, log); err != nil {
		log.Warn("pending job recovery incomplete", "error", err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		// Use a separate context with timeout for queue operations
		popCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		jobID, err := q.Pop(popCtx)
		cancel()

		if err != nil {
			// Check if it's a context cancellation
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}
			if popCtx.Err() == context.DeadlineExceeded {
				// Idle poll window elapsed, go around again.
				continue
			}

			log.Warn("queue pop error, retrying",
				"error", err.Error(),
			)
			time.Sleep(1 * time.Second)
			continue
		}

		if jobID == "" {
			continue
		}

		// Create a context for this job
		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := p.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}

// recoverPending re-enqueues every queued or processing record. A job
// that raced a live consumer is filtered again by ProcessJob, which
// re-reads the record before doing any work.
func recoverPending(ctx context.Context, store *jobstore.Store, q *queue.RedisQueue, log *logger.Logger) error {
	pending, err := store.ListPending()
	if err != nil {
		return err
	}
	for _, rec := range pending {
		if err := q.Push(ctx, rec.JobID); err != nil {
			return err
		}
		log.Info("requeued pending job", "job_id", rec.JobID, "status", rec.Status)
	}
	if len(pending) > 0 {
		log.Info("recovered pending jobs", "count", len(pending))
	}
	return nil
}
