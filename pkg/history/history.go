// Package history provides the append-only publish attempt ledger and the
// duplicate guard that reads it.
package history

import (
	"time"
)

// Status of one recorded publish attempt.
type Status string

const (
	// StatusSuccess marks an attempt that produced a usable outcome.
	StatusSuccess Status = "success"
	// StatusFailed marks an attempt that produced no usable outcome.
	StatusFailed Status = "failed"
)

// Record is one ledger entry. Immutable once appended.
type Record struct {
	ID          string        `json:"id"`
	Platform    string        `json:"platform"`
	Title       string        `json:"title"`
	PostURL     string        `json:"post_url,omitempty"`
	Method      string        `json:"method,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	PublishedAt time.Time     `json:"published_at"`
}

// Entry is the caller-supplied part of a record; the store assigns the id
// and timestamp on append.
type Entry struct {
	Platform string
	Title    string
	PostURL  string
	Method   string
	Elapsed  time.Duration
	Status   Status
	Error    string
}

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	Limit    int
	Platform string
	Status   Status
}

// Stats aggregates the ledger.
type Stats struct {
	Total       int            `json:"total"`
	TotalFailed int            `json:"total_failed"`
	Today       int            `json:"today"`
	ThisWeek    int            `json:"this_week"`
	ByPlatform  map[string]int `json:"by_platform"`
	LastPublish *time.Time     `json:"last_publish,omitempty"`
}

// Store is the ledger contract. Implementations serialize writes so
// concurrent appends never lose entries.
type Store interface {
	// Append records one attempt, newest first, truncating at the cap.
	Append(entry Entry) (*Record, error)

	// List returns records newest first, narrowed by the filter.
	List(filter Filter) ([]*Record, error)

	// Stats aggregates the ledger.
	Stats() (*Stats, error)

	// Clear removes every record.
	Clear() error
}
