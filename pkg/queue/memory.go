package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/utils/idgen"
)

// MemoryQueue is a process-local queue. Jobs are lost on restart; the
// Redis backend exists for deployments that care.
type MemoryQueue struct {
	mu       sync.Mutex
	ready    []*Job
	deferred []*Job
	capacity int
	closed   bool
	now      func() time.Time
}

// NewMemoryQueue creates an in-memory queue. capacity <= 0 means unbounded.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{capacity: capacity, now: time.Now}
}

// Enqueue implements Queue.
func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	if job == nil || job.Request == nil {
		return errors.New(errors.ErrJobMalformed, "job carries no request")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.New(errors.ErrQueueClosed, "queue is closed")
	}
	if q.capacity > 0 && len(q.ready)+len(q.deferred) >= q.capacity {
		return errors.New(errors.ErrQueueFull, "queue is at capacity")
	}

	if job.ID == "" {
		job.ID = idgen.Default.GenerateWithPrefix("job")
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now()
	}

	if job.Due(q.now()) {
		q.ready = append(q.ready, job)
	} else {
		q.deferred = append(q.deferred, job)
		sort.SliceStable(q.deferred, func(i, j int) bool {
			return q.deferred[i].NotBefore.Before(q.deferred[j].NotBefore)
		})
	}
	return nil
}

// Dequeue implements Queue.
func (q *MemoryQueue) Dequeue(_ context.Context) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, errors.New(errors.ErrQueueClosed, "queue is closed")
	}

	q.promoteDue()

	if len(q.ready) == 0 {
		return nil, nil
	}
	job := q.ready[0]
	q.ready = q.ready[1:]
	job.Attempts++
	return job, nil
}

// promoteDue moves matured deferred jobs to the ready list. Caller holds mu.
func (q *MemoryQueue) promoteDue() {
	now := q.now()
	i := 0
	for ; i < len(q.deferred); i++ {
		if !q.deferred[i].Due(now) {
			break
		}
		q.ready = append(q.ready, q.deferred[i])
	}
	q.deferred = q.deferred[i:]
}

// Size implements Queue.
func (q *MemoryQueue) Size(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0, errors.New(errors.ErrQueueClosed, "queue is closed")
	}
	return len(q.ready) + len(q.deferred), nil
}

// Close implements Queue.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.ready = nil
	q.deferred = nil
	return nil
}
