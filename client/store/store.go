// Package store holds the client's in-memory snapshot of the loaded task
// list. It replaces implicit shared mutable state with an explicit cache
// object: the UI replaces the snapshot after every fetch, and the reminder
// notifier reads the latest snapshot on its own tick.
package store

import (
	"sync"

	domain "github.com/example/daily-planner/domain/task"
)

// Store is a snapshot cache of the most recently fetched task list.
type Store struct {
	mu    sync.RWMutex
	tasks []domain.Task
	subs  []chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Replace swaps in a new snapshot and notifies subscribers.
func (s *Store) Replace(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = make([]domain.Task, len(tasks))
	copy(s.tasks, tasks)
	subs := s.subs
	s.mu.Unlock()

	for _, ch := range subs {
		// Non-blocking: a subscriber that has not drained yet already has
		// a pending notification.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the current task list.
func (s *Store) Snapshot() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Subscribe returns a channel that receives a signal after each Replace.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}
