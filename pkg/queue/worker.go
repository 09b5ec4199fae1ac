package queue

import (
	"context"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Handler processes one dequeued job. The worker discards the result; the
// handler is expected to record outcomes itself.
type Handler func(ctx context.Context, req *post.PublishRequest) (*post.PublishResult, error)

// Worker drains a queue on an interval. One worker is enough: publishes
// are browser-bound and serializing them avoids profile contention.
type Worker struct {
	queue    Queue
	handler  Handler
	interval time.Duration
	logger   logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// DefaultPollInterval is how often an idle worker checks for due jobs.
const DefaultPollInterval = 15 * time.Second

// NewWorker creates a worker. interval <= 0 uses DefaultPollInterval.
func NewWorker(q Queue, handler Handler, interval time.Duration, log logger.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logger.Discard
	}
	return &Worker{queue: q, handler: handler, interval: interval, logger: log}
}

// Start launches the polling loop. Calling Start twice is a no-op.
func (w *Worker) Start(ctx context.Context) {
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.drain(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight job to finish.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
}

// drain processes every currently-due job.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Error("dequeue failed", "error", err)
			return
		}
		if job == nil {
			return
		}

		w.logger.Info("processing scheduled publish",
			"job", job.ID, "platform", job.Request.Platform, "attempts", job.Attempts)

		res, err := w.handler(ctx, job.Request)
		switch {
		case err != nil:
			w.logger.Error("scheduled publish failed", "job", job.ID, "error", err)
		case res != nil && !res.Success:
			w.logger.Warn("scheduled publish unsuccessful", "job", job.ID, "error", res.Error)
		default:
			w.logger.Info("scheduled publish done", "job", job.ID)
		}
	}
}
