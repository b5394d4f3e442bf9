package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/daily-planner/domain/task"
)

func TestStore_ReplaceAndSnapshot(t *testing.T) {
	s := New()
	assert.Empty(t, s.Snapshot())

	s.Replace([]domain.Task{{ID: "t1"}, {ID: "t2"}})
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "t1", snap[0].ID)

	// A new snapshot fully replaces the old one.
	s.Replace([]domain.Task{{ID: "t3"}})
	snap = s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "t3", snap[0].ID)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	s.Replace([]domain.Task{{ID: "t1", Title: "original"}})

	snap := s.Snapshot()
	snap[0].Title = "mutated"

	assert.Equal(t, "original", s.Snapshot()[0].Title)
}

func TestStore_ReplaceCopiesInput(t *testing.T) {
	s := New()
	input := []domain.Task{{ID: "t1", Title: "original"}}
	s.Replace(input)

	input[0].Title = "mutated"

	assert.Equal(t, "original", s.Snapshot()[0].Title)
}

func TestStore_SubscribeSignalsOnReplace(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	s.Replace([]domain.Task{{ID: "t1"}})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a notification after Replace")
	}

	// Back-to-back replaces never block; the pending signal coalesces.
	s.Replace(nil)
	s.Replace(nil)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a coalesced notification")
	}
}
