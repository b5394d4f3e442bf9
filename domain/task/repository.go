package task

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository provides database operations for tasks.
//
// Every query that locates a task carries the owner id inside its WHERE
// clause. Ownership is never checked after an unscoped fetch: a row the
// caller does not own is simply never matched.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// Create saves a new task.
func (r *Repository) Create(ctx context.Context, t *Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListByDate retrieves the owner's tasks for one calendar date, in insertion
// order.
func (r *Repository) ListByDate(ctx context.Context, ownerID, date string) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("date = ? AND owner_id = ?", date, ownerID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces the mutable fields of the task identified by (id, owner).
// Returns ErrNotFound when the pair matches no row.
func (r *Repository) Update(ctx context.Context, t *Task) error {
	// Select lists the mutable columns explicitly so that zero values
	// (reminder=false, empty reason) are written too. ID, owner and date of
	// creation never change.
	result := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND owner_id = ?", t.ID, t.OwnerID).
		Select("date", "title", "description", "time", "reminder", "status", "reason").
		Updates(t)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the task identified by (id, owner). Returns ErrNotFound
// when no owned row matches.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOwned retrieves a single task scoped to its owner. Used after updates
// to return the stored state.
func (r *Repository) FindOwned(ctx context.Context, ownerID, id string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}
