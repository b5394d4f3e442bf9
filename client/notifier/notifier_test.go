package notifier

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/daily-planner/client/store"
	domain "github.com/example/daily-planner/domain/task"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func reminderTask(id, date, hhmm string) domain.Task {
	return domain.Task{
		ID:       id,
		Date:     date,
		Time:     hhmm,
		Title:    "Task " + id,
		Reminder: true,
		Status:   domain.StatusRemaining,
	}
}

func granted() Permission { return PermissionGranted }

func TestNotifier_FiresOnceForMatchingMinute(t *testing.T) {
	st := store.New()
	st.Replace([]domain.Task{reminderTask("t1", "2026-09-01", "09:30")})

	n := New(st, NewMemorySentStore(), granted)
	now := mustTime(t, "2026-09-01 09:30")

	events := n.Check(now)
	require.Len(t, events, 1)
	assert.Equal(t, "t1", events[0].TaskID)
	assert.Equal(t, "Task t1", events[0].Title)

	// Same minute again: the dedup record suppresses the repeat.
	assert.Empty(t, n.Check(now))
}

func TestNotifier_SurvivesSnapshotReplacement(t *testing.T) {
	st := store.New()
	st.Replace([]domain.Task{reminderTask("t1", "2026-09-01", "09:30")})

	n := New(st, NewMemorySentStore(), granted)
	now := mustTime(t, "2026-09-01 09:30")
	require.Len(t, n.Check(now), 1)

	// Re-fetch replaces the snapshot with a fresh copy of the same task.
	// Dedup is keyed on (task, day), not on object identity.
	st.Replace([]domain.Task{reminderTask("t1", "2026-09-01", "09:30")})
	assert.Empty(t, n.Check(now))
}

func TestNotifier_SkipsNonMatchingTasks(t *testing.T) {
	noReminder := reminderTask("t2", "2026-09-01", "09:30")
	noReminder.Reminder = false

	done := reminderTask("t3", "2026-09-01", "09:30")
	done.Status = domain.StatusDone

	failed := reminderTask("t4", "2026-09-01", "09:30")
	failed.Status = domain.StatusFailed

	st := store.New()
	st.Replace([]domain.Task{
		reminderTask("t1", "2026-09-01", "10:00"), // wrong minute
		noReminder,
		done,
		failed,
	})

	n := New(st, NewMemorySentStore(), granted)
	assert.Empty(t, n.Check(mustTime(t, "2026-09-01 09:30")))
}

func TestNotifier_PermissionGate(t *testing.T) {
	st := store.New()
	st.Replace([]domain.Task{reminderTask("t1", "2026-09-01", "09:30")})
	now := mustTime(t, "2026-09-01 09:30")

	t.Run("denied", func(t *testing.T) {
		n := New(st, NewMemorySentStore(), func() Permission { return PermissionDenied })
		assert.Empty(t, n.Check(now))
	})

	t.Run("undetermined", func(t *testing.T) {
		n := New(st, NewMemorySentStore(), func() Permission { return PermissionUndetermined })
		assert.Empty(t, n.Check(now))
	})

	t.Run("granted mid-run", func(t *testing.T) {
		perm := PermissionDenied
		n := New(st, NewMemorySentStore(), func() Permission { return perm })
		assert.Empty(t, n.Check(now))

		perm = PermissionGranted
		assert.Len(t, n.Check(now), 1)
	})
}

func TestNotifier_NewDayFiresAgain(t *testing.T) {
	st := store.New()
	n := New(st, NewMemorySentStore(), granted)

	st.Replace([]domain.Task{reminderTask("t1", "2026-09-01", "09:30")})
	require.Len(t, n.Check(mustTime(t, "2026-09-01 09:30")), 1)

	// The same task id scheduled on the next day has its own dedup key.
	st.Replace([]domain.Task{reminderTask("t1", "2026-09-02", "09:30")})
	assert.Len(t, n.Check(mustTime(t, "2026-09-02 09:30")), 1)
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "notification-sent-t1-2026-09-01", DedupKey("t1", "2026-09-01"))
}

func TestFileSentStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")

	s1, err := OpenFileSentStore(path)
	require.NoError(t, err)

	key := DedupKey("t1", "2026-09-01")
	assert.False(t, s1.Seen(key))
	require.NoError(t, s1.MarkSent(key))
	assert.True(t, s1.Seen(key))

	// A fresh store over the same file sees the record.
	s2, err := OpenFileSentStore(path)
	require.NoError(t, err)
	assert.True(t, s2.Seen(key))
	assert.False(t, s2.Seen(DedupKey("t2", "2026-09-01")))
}

func TestPermissionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s1, err := OpenPermissionStore(path)
	require.NoError(t, err)
	assert.Equal(t, PermissionUndetermined, s1.Query())

	require.NoError(t, s1.Set(PermissionGranted))
	assert.Equal(t, PermissionGranted, s1.Query())

	// The decision survives a restart.
	s2, err := OpenPermissionStore(path)
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, s2.Query())

	require.NoError(t, s2.Set(PermissionDenied))
	s3, err := OpenPermissionStore(path)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, s3.Query())
}
