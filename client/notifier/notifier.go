// Package notifier fires at most one reminder per task per calendar day.
//
// The check runs on a coarse one-minute tick against the latest task
// snapshot. Because the snapshot is re-fetched between ticks, dedup is keyed
// on persisted (task id, date) records rather than anything in memory. Clock
// jumps (DST, manual changes) can skip a minute boundary; that reminder is
// simply missed. Best effort, not a guarantee.
package notifier

import (
	"context"
	"log"
	"time"

	"github.com/example/daily-planner/client/store"
	domain "github.com/example/daily-planner/domain/task"
)

// Permission is the notification capability state.
type Permission string

const (
	// PermissionGranted allows reminders to fire.
	PermissionGranted Permission = "granted"
	// PermissionDenied suppresses all reminders.
	PermissionDenied Permission = "denied"
	// PermissionUndetermined means the user has not decided yet; reminders
	// stay silent until granted.
	PermissionUndetermined Permission = "undetermined"
)

// Event is one fired reminder.
type Event struct {
	TaskID string
	Title  string
	Date   string
}

// Notifier evaluates the reminder rule against the snapshot store.
type Notifier struct {
	store      *store.Store
	sent       SentStore
	permission func() Permission
}

// New creates a notifier. permission is queried on every tick so the user
// can grant or revoke it while the client runs.
func New(st *store.Store, sent SentStore, permission func() Permission) *Notifier {
	return &Notifier{store: st, sent: sent, permission: permission}
}

// Check runs one tick of the reminder rule at the given wall-clock time and
// returns the reminders that fired. A task fires when its time matches the
// current minute, its reminder flag is on and it is still remaining, unless
// a dedup record for (task, day) already exists.
func (n *Notifier) Check(now time.Time) []Event {
	if n.permission() != PermissionGranted {
		return nil
	}

	minute := now.Format("15:04")
	var fired []Event

	for _, t := range n.store.Snapshot() {
		if t.Time != minute || !t.Reminder || t.Status != domain.StatusRemaining {
			continue
		}
		key := DedupKey(t.ID, t.Date)
		if n.sent.Seen(key) {
			continue
		}
		fired = append(fired, Event{TaskID: t.ID, Title: t.Title, Date: t.Date})
		if err := n.sent.MarkSent(key); err != nil {
			log.Printf("[notifier] failed to persist dedup key %s: %v", key, err)
		}
	}
	return fired
}

// Run drives Check on a one-minute ticker until ctx is done, invoking
// onEvent for every fired reminder.
func (n *Notifier) Run(ctx context.Context, onEvent func(Event)) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, ev := range n.Check(now) {
				onEvent(ev)
			}
		}
	}
}
