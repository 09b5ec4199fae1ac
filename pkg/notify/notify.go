// Package notify fans publish outcomes out to interested sinks. Delivery
// is fire-and-forget: a slow or failing sink never delays or fails the
// publish that triggered it.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// Event is one publish outcome worth announcing.
type Event struct {
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	Success   bool      `json:"success"`
	Method    string    `json:"method,omitempty"`
	PostURL   string    `json:"post_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Warning   string    `json:"warning,omitempty"`
	NeedLogin bool      `json:"need_login,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Notify(ctx context.Context, event *Event) error
}

// Dispatcher delivers events to every registered sink on its own
// goroutine. Sink errors are observed in the log and dropped.
type Dispatcher struct {
	mu      sync.RWMutex
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger

	wg sync.WaitGroup
}

// DefaultTimeout bounds one sink delivery.
const DefaultTimeout = 10 * time.Second

// NewDispatcher creates a dispatcher with the given per-sink timeout.
func NewDispatcher(timeout time.Duration, log logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard
	}
	return &Dispatcher{timeout: timeout, logger: log}
}

// AddSink registers a sink. Nil sinks are ignored.
func (d *Dispatcher) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	d.mu.Lock()
	d.sinks = append(d.sinks, sink)
	d.mu.Unlock()
}

// Dispatch sends the event to every sink asynchronously and returns
// immediately. The event timestamp is stamped here when unset.
func (d *Dispatcher) Dispatch(event *Event) {
	if event == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.RLock()
	sinks := make([]Sink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.RUnlock()

	for _, sink := range sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Notify(ctx, event); err != nil {
				d.logger.Warn("notification sink failed",
					"sink", s.Name(), "platform", event.Platform, "error", err)
			}
		}(sink)
	}
}

// Wait blocks until every in-flight delivery finishes. Used by tests and
// graceful shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
