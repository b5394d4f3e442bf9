package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service implements the per-user task operations. All methods take the
// resolved user id; it is set by the API layer from verified claims and is
// never read from a client-supplied body.
type Service struct {
	repo    *domain.Repository
	cache   *cache.Cache // nil when Redis is not configured
	sfGroup singleflight.Group
}

// NewService creates a task service without caching.
func NewService(repo *domain.Repository) *Service {
	return &Service{repo: repo}
}

// SetCache enables cache-aside list reads.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

func listKey(userID, date string) string {
	return "list:" + userID + ":" + date
}

// List returns the user's tasks for one calendar date. An empty day is not
// an error.
func (s *Service) List(ctx context.Context, userID, date string) ([]domain.Task, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.ErrInvalidDate
	}

	key := listKey(userID, date)
	if s.cache != nil {
		var cached []domain.Task
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[task] Cache error for %s: %v", key, err)
		}
		if found {
			return cached, nil
		}
	}

	// singleflight collapses concurrent misses for the same (user, date).
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.repo.ListByDate(ctx, userID, date)
	})
	if err != nil {
		return nil, err
	}
	tasks := val.([]domain.Task)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, tasks); err != nil {
			log.Printf("[task] Warning: failed to cache %s: %v", key, err)
		}
	}
	return tasks, nil
}

// Create validates a draft, assigns a fresh identifier, forces the owner to
// the requesting user and persists the task.
func (s *Service) Create(ctx context.Context, userID string, draft Draft) (*domain.Task, error) {
	if draft.Status == "" {
		draft.Status = domain.StatusRemaining
	}
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		Date:        draft.Date,
		Title:       draft.Title,
		Description: draft.Description,
		Time:        draft.Time,
		Reminder:    draft.Reminder,
		Status:      draft.Status,
		Reason:      draft.Reason,
	}
	if t.Status != domain.StatusFailed {
		t.Reason = ""
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	s.invalidate(ctx, userID)
	return t, nil
}

// Update replaces the mutable fields of an owned task. A malformed id fails
// fast; a missing row and a foreign-owned row are indistinguishable.
func (s *Service) Update(ctx context.Context, userID string, payload Payload) (*domain.Task, error) {
	if _, err := uuid.Parse(payload.ID); err != nil {
		return nil, domain.ErrInvalidID
	}
	if payload.Status == "" {
		payload.Status = domain.StatusRemaining
	}
	if err := validateDraft(&payload.Draft); err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          payload.ID,
		OwnerID:     userID,
		Date:        payload.Date,
		Title:       payload.Title,
		Description: payload.Description,
		Time:        payload.Time,
		Reminder:    payload.Reminder,
		Status:      payload.Status,
		Reason:      payload.Reason,
	}
	// Reason only survives on a failed task.
	if t.Status != domain.StatusFailed {
		t.Reason = ""
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	return s.repo.FindOwned(ctx, userID, payload.ID)
}

// Delete removes an owned task.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops all cached lists for one user after a mutation.
func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "list:"+userID+":*"); err != nil {
		log.Printf("[task] Warning: failed to invalidate cache for user %s: %v", userID, err)
	}
}

// validateDraft checks the client-supplied fields of a task.
func validateDraft(d *Draft) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return domain.ErrTitleRequired
	}
	if d.Time == "" {
		return domain.ErrTimeRequired
	}
	if _, err := time.Parse("15:04", d.Time); err != nil {
		return domain.ErrInvalidTime
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return domain.ErrInvalidDate
	}
	if !d.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}
