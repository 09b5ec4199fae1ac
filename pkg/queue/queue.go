// Package queue buffers scheduled publish jobs until they are due. Two
// backends exist: an in-memory queue for single-process deployments and a
// Redis-backed queue that survives restarts.
package queue

import (
	"context"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Job is one deferred publish.
type Job struct {
	ID         string               `json:"id"`
	Request    *post.PublishRequest `json:"request"`
	EnqueuedAt time.Time            `json:"enqueued_at"`

	// NotBefore holds the job back until the scheduled time. Zero means
	// immediately eligible.
	NotBefore time.Time `json:"not_before,omitempty"`

	// Attempts counts how many times a worker picked the job up.
	Attempts int `json:"attempts,omitempty"`
}

// Due reports whether the job is eligible at the given instant.
func (j *Job) Due(now time.Time) bool {
	return j.NotBefore.IsZero() || !j.NotBefore.After(now)
}

// Queue stores jobs. Implementations must be safe for concurrent use.
type Queue interface {
	// Enqueue adds a job. Jobs with a future NotBefore are held until due.
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue removes and returns the next due job, or nil when none is
	// eligible right now.
	Dequeue(ctx context.Context) (*Job, error)

	// Size returns the number of pending jobs, deferred ones included.
	Size(ctx context.Context) (int, error)

	// Close releases backend resources. Enqueue and Dequeue fail after.
	Close() error
}
