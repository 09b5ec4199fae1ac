package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
)

// FileStore keeps one JSON file per platform under a directory.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, errors.ErrSessionStorage, "create session directory")
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) path(platform string) string {
	return filepath.Join(s.dir, platform+".json")
}

// Get returns the record for a platform, or nil when none exists.
func (s *FileStore) Get(platform string) (*Record, error) {
	data, err := os.ReadFile(s.path(platform))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSessionStorage, "read session record").WithPlatform(platform)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, errors.ErrSessionStorage, "decode session record").WithPlatform(platform)
	}
	return &record, nil
}

// Put overwrites the record for its platform atomically.
func (s *FileStore) Put(record *Record) error {
	if record == nil || record.Platform == "" {
		return errors.New(errors.ErrSessionStorage, "session record requires a platform")
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrSessionStorage, "encode session record").WithPlatform(record.Platform)
	}
	path := s.path(record.Platform)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, errors.ErrSessionStorage, "write session record").WithPlatform(record.Platform)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, errors.ErrSessionStorage, "replace session record").WithPlatform(record.Platform)
	}
	return nil
}

// Lock acquires the per-platform advisory lock and returns its release.
func (s *FileStore) Lock(platform string) func() {
	s.mu.Lock()
	lock, ok := s.locks[platform]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[platform] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
