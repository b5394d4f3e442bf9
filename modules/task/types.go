package task

import (
	domain "github.com/example/daily-planner/domain/task"
)

// Draft is the client-supplied portion of a task. The owner is never part
// of a draft: it is always taken from the authenticated identity.
type Draft struct {
	Date        string        `json:"date"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Time        string        `json:"time"`
	Reminder    bool          `json:"reminder"`
	Status      domain.Status `json:"status"`
	Reason      string        `json:"reason"`
}

// Payload is a full task submitted for update: a draft plus the identifier.
type Payload struct {
	ID string `json:"id"`
	Draft
}

// ListRequest is the list service request.
type ListRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

// ListResponse is the list service response.
type ListResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// CreateRequest is the create service request.
type CreateRequest struct {
	UserID string `json:"user_id"`
	Task   Draft  `json:"task"`
}

// CreateResponse is the create service response.
type CreateResponse struct {
	Task domain.Task `json:"task"`
}

// UpdateRequest is the update service request.
type UpdateRequest struct {
	UserID string  `json:"user_id"`
	Task   Payload `json:"task"`
}

// UpdateResponse is the update service response.
type UpdateResponse struct {
	Task domain.Task `json:"task"`
}

// DeleteRequest is the delete service request.
type DeleteRequest struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

// DeleteResponse is the delete service response.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
