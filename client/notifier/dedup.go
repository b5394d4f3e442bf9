package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SentStore records which (task, day) reminders have already fired. Records
// must outlive the in-memory task list: the list is re-fetched between ticks
// and a task must not re-fire just because it was reloaded.
type SentStore interface {
	Seen(key string) bool
	MarkSent(key string) error
}

// DedupKey is the idempotency key for one reminder on one day.
func DedupKey(taskID, date string) string {
	return fmt.Sprintf("notification-sent-%s-%s", taskID, date)
}

// FileSentStore persists sent-keys as a JSON object in a single file.
type FileSentStore struct {
	mu   sync.Mutex
	path string
	keys map[string]bool
}

// OpenFileSentStore loads (or initializes) the sent-key file.
func OpenFileSentStore(path string) (*FileSentStore, error) {
	s := &FileSentStore{path: path, keys: map[string]bool{}}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read sent store: %w", err)
	}
	if err := json.Unmarshal(b, &s.keys); err != nil {
		return nil, fmt.Errorf("parse sent store: %w", err)
	}
	return s, nil
}

// Seen reports whether the key has been recorded.
func (s *FileSentStore) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key]
}

// MarkSent records the key and persists the file.
func (s *FileSentStore) MarkSent(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[key] = true
	b, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sent store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write sent store: %w", err)
	}
	return nil
}

// MemorySentStore is an in-memory SentStore for tests.
type MemorySentStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

// NewMemorySentStore creates an empty in-memory store.
func NewMemorySentStore() *MemorySentStore {
	return &MemorySentStore{keys: map[string]bool{}}
}

// Seen reports whether the key has been recorded.
func (s *MemorySentStore) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key]
}

// MarkSent records the key.
func (s *MemorySentStore) MarkSent(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return nil
}
