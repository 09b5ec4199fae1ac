package history

import (
	"time"
)

// DefaultDuplicateWindow blocks a repeat (platform, title) publish for a day.
const DefaultDuplicateWindow = 24 * time.Hour

// DuplicateGuard answers whether a (platform, title) pair was successfully
// published within a window. It only reads the ledger and never mutates it.
type DuplicateGuard struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// NewDuplicateGuard creates a guard over the given ledger.
func NewDuplicateGuard(store Store, window time.Duration) *DuplicateGuard {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &DuplicateGuard{store: store, window: window, now: time.Now}
}

// IsDuplicate reports whether the ledger holds a successful publish of the
// same truncated title to the same platform within the guard's window.
// Title comparison uses the same truncation the ledger records.
func (g *DuplicateGuard) IsDuplicate(title, platform string) (bool, error) {
	records, err := g.store.List(Filter{Platform: platform, Status: StatusSuccess})
	if err != nil {
		return false, err
	}

	cutoff := g.now().Add(-g.window)
	for _, record := range records {
		if record.Title == title && record.PublishedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}
