package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PermissionStore persists the notification capability decision between
// runs, defaulting to undetermined until the user decides.
type PermissionStore struct {
	mu   sync.Mutex
	path string
	perm Permission
}

type permissionFile struct {
	Notifications Permission `json:"notifications"`
}

// OpenPermissionStore loads the persisted decision, if any.
func OpenPermissionStore(path string) (*PermissionStore, error) {
	s := &PermissionStore{path: path, perm: PermissionUndetermined}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read permission store: %w", err)
	}
	var pf permissionFile
	if err := json.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse permission store: %w", err)
	}
	switch pf.Notifications {
	case PermissionGranted, PermissionDenied:
		s.perm = pf.Notifications
	}
	return s, nil
}

// Query returns the current capability state.
func (s *PermissionStore) Query() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perm
}

// Set records the user's decision and persists it.
func (s *PermissionStore) Set(p Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.perm = p
	b, err := json.MarshalIndent(permissionFile{Notifications: p}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal permission store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write permission store: %w", err)
	}
	return nil
}
