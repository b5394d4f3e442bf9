package task

import "errors"

var (
	// ErrNotFound is returned when no task with the given id belongs to the
	// requesting user. A foreign-owned task and a missing one are reported
	// identically so that ids cannot be probed across accounts.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidID is returned when an identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid task id")
	// ErrTitleRequired is returned when a task is submitted without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrTimeRequired is returned when a task is submitted without a time.
	ErrTimeRequired = errors.New("time is required")
	// ErrInvalidTime is returned when time is not in HH:MM form.
	ErrInvalidTime = errors.New("time must be in HH:MM format")
	// ErrInvalidDate is returned when date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("status must be remaining, done or failed")
)
