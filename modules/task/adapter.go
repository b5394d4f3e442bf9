package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the interface the API module uses to reach the task store.
//
// Errors from the store cross the service container as messages; callers
// match them with the helpers in the api package.
type Port interface {
	List(ctx context.Context, userID, date string) ([]domain.Task, error)
	Create(ctx context.Context, userID string, draft Draft) (*domain.Task, error)
	Update(ctx context.Context, userID string, payload Payload) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// Adapter implements Port over the task module's service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

// List returns the user's tasks for a date.
func (a *Adapter) List(ctx context.Context, userID, date string) ([]domain.Task, error) {
	req := ListRequest{UserID: userID, Date: date}
	var resp ListResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "list", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	return resp.Tasks, nil
}

// Create stores a new task owned by the user.
func (a *Adapter) Create(ctx context.Context, userID string, draft Draft) (*domain.Task, error) {
	req := CreateRequest{UserID: userID, Task: draft}
	var resp CreateResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "create", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	return &resp.Task, nil
}

// Update replaces an owned task's mutable fields.
func (a *Adapter) Update(ctx context.Context, userID string, payload Payload) (*domain.Task, error) {
	req := UpdateRequest{UserID: userID, Task: payload}
	var resp UpdateResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "update", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update request failed: %w", err)
	}
	return &resp.Task, nil
}

// Delete removes an owned task.
func (a *Adapter) Delete(ctx context.Context, userID, id string) error {
	req := DeleteRequest{UserID: userID, ID: id}
	var resp DeleteResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return nil
}
