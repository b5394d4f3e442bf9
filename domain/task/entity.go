package task

import (
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusRemaining is the initial state of every task.
	StatusRemaining Status = "remaining"
	// StatusDone marks a completed task.
	StatusDone Status = "done"
	// StatusFailed marks a task that was not completed; it may carry a reason.
	StatusFailed Status = "failed"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusRemaining, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Task is a titled, dated, timed to-do item owned by exactly one user.
//
// ID and OwnerID are immutable once assigned. Reason is meaningful only
// while Status is StatusFailed and is cleared on any transition away from it.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string    `gorm:"index:idx_tasks_owner_date;not null;type:text" json:"owner_id"`
	Date        string    `gorm:"index:idx_tasks_owner_date;not null;size:10" json:"date"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `gorm:"size:1000" json:"description"`
	Time        string    `gorm:"not null;size:5" json:"time"`
	Reminder    bool      `gorm:"not null;default:false" json:"reminder"`
	Status      Status    `gorm:"not null;default:remaining;size:10" json:"status"`
	Reason      string    `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
