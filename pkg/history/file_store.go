package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/utils/idgen"
)

// DefaultLimit is the hard cap on ledger size.
const DefaultLimit = 500

// FileStore persists the ledger as a JSON array, newest first, in a single
// file. All mutation goes through the store's mutex, so the whole-file
// rewrite is safe against concurrent appends within one process.
type FileStore struct {
	path  string
	limit int

	mu      sync.Mutex
	records []*Record

	now func() time.Time
}

// NewFileStore opens (or creates) the ledger file at path.
func NewFileStore(path string, limit int) (*FileStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &FileStore{
		path:  path,
		limit: limit,
		now:   time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.records = nil
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "read ledger file")
	}
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt ledger is an audit log, not a source of truth.
		// Start fresh rather than refusing every future publish.
		s.records = nil
		return nil
	}
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	s.records = records
	return nil
}

// persist writes the whole ledger atomically via a temp file rename.
// Callers must hold s.mu.
func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "create ledger directory")
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "encode ledger")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "write ledger file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "replace ledger file")
	}
	return nil
}

// Append records one attempt, newest first, truncating at the cap.
func (s *FileStore) Append(entry Entry) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := &Record{
		ID:          idgen.Default.GenerateWithPrefix("hist"),
		Platform:    entry.Platform,
		Title:       entry.Title,
		PostURL:     entry.PostURL,
		Method:      entry.Method,
		Elapsed:     entry.Elapsed,
		Status:      entry.Status,
		Error:       entry.Error,
		PublishedAt: s.now(),
	}

	s.records = append([]*Record{record}, s.records...)
	if len(s.records) > s.limit {
		s.records = s.records[:s.limit]
	}

	if err := s.persist(); err != nil {
		return nil, err
	}
	return record, nil
}

// List returns records newest first, narrowed by the filter.
func (s *FileStore) List(filter Filter) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		if filter.Platform != "" && record.Platform != filter.Platform {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		copied := *record
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Stats aggregates the ledger.
func (s *FileStore) Stats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{ByPlatform: make(map[string]int)}
	for _, record := range s.records {
		stats.Total++
		stats.ByPlatform[record.Platform]++
		if record.Status == StatusFailed {
			stats.TotalFailed++
		}
		if !record.PublishedAt.Before(dayStart) {
			stats.Today++
		}
		if record.PublishedAt.After(weekStart) {
			stats.ThisWeek++
		}
		if record.Status == StatusSuccess && (stats.LastPublish == nil || record.PublishedAt.After(*stats.LastPublish)) {
			at := record.PublishedAt
			stats.LastPublish = &at
		}
	}
	return stats, nil
}

// Clear removes every record.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return s.persist()
}
