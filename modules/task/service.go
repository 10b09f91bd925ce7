package task

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/google/uuid"
)

// CreateInput describes a new task.
type CreateInput struct {
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimatedTime int        `json:"estimated_time"`
}

// Service implements the task lifecycle.
type Service struct {
	repo      *Repository
	stats     account.StatsPort
	publisher events.Publisher
}

// NewService creates a new task service.
func NewService(repo *Repository, stats account.StatsPort, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{repo: repo, stats: stats, publisher: publisher}
}

// Create stores a pending task.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	if in.OwnerID == "" {
		return nil, apperror.InvalidArgument("ownerId is required")
	}
	if in.EstimatedTime <= 0 {
		return nil, apperror.InvalidArgument("estimatedTime must be > 0")
	}

	now := time.Now()
	t := &domain.Task{
		ID:            uuid.New().String(),
		OwnerID:       in.OwnerID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		DueDate:       in.DueDate,
		EstimatedTime: in.EstimatedTime,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err, "create task")
	}
	return t, nil
}

// Get returns a task.
func (s *Service) Get(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, apperror.InvalidArgument("taskId is required")
	}
	return s.repo.FindByID(ctx, id)
}

// Edit updates only the supplied fields.
func (s *Service) Edit(ctx context.Context, id string, c domain.Changes) (*domain.Task, error) {
	if c.EstimatedTime != nil && *c.EstimatedTime <= 0 {
		return nil, apperror.InvalidArgument("estimatedTime must be > 0")
	}
	if c.Empty() {
		return s.Get(ctx, id)
	}

	changes := map[string]any{}
	if c.Title != nil {
		changes["title"] = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		changes["description"] = *c.Description
	}
	if c.DueDate != nil {
		changes["due_date"] = *c.DueDate
	}
	if c.EstimatedTime != nil {
		changes["estimated_time"] = *c.EstimatedTime
	}

	n, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, apperror.Internal(err, "edit task %s", id)
	}
	if n == 0 {
		return nil, apperror.NotFound("task %s", id)
	}
	return s.repo.FindByID(ctx, id)
}

// Complete records the actual time spent, counts the completion on the
// owner's stats and announces it. The status write and the stat increment
// commit together. Leaderboard reconciliation happens asynchronously off
// the TaskCompleted event.
func (s *Service) Complete(ctx context.Context, id string, actualTime int) (*domain.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.StatusPending {
		return nil, apperror.InvalidState("task %s is already %s", id, t.Status)
	}
	if actualTime <= 0 {
		return nil, apperror.InvalidArgument("actualTime must be > 0")
	}

	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.Transition(ctx, id, domain.StatusPending, domain.StatusCompleted, map[string]any{"actual_time": actualTime})
		if err != nil {
			return apperror.Internal(err, "complete task %s", id)
		}
		if n == 0 {
			return apperror.InvalidState("task %s is no longer pending", id)
		}
		if err := s.stats.IncrementCompleted(ctx, t.OwnerID, actualTime); err != nil {
			return apperror.Internal(err, "count completion of %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	completedAt := time.Now()
	t.Status = domain.StatusCompleted
	t.ActualTime = &actualTime
	t.UpdatedAt = completedAt

	err = s.publisher.TaskCompleted(events.TaskCompletedEvent{
		TaskID:      t.ID,
		OwnerID:     t.OwnerID,
		ActualTime:  actualTime,
		CompletedAt: completedAt,
	})
	if err != nil {
		log.Printf("[task] Warning: failed to publish TaskCompleted for %s: %v", id, err)
	}
	return t, nil
}

// MarkConfirmed moves a completed task to confirmed.
func (s *Service) MarkConfirmed(ctx context.Context, id string) (*domain.Task, error) {
	n, err := s.repo.Transition(ctx, id, domain.StatusCompleted, domain.StatusConfirmed, nil)
	if err != nil {
		return nil, apperror.Internal(err, "confirm task %s", id)
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.InvalidState("task %s is %s, not completed", id, t.Status)
	}
	return t, nil
}

// Delete removes a task. Stats already counted are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err, "delete task %s", id)
	}
	if n == 0 {
		return apperror.NotFound("task %s", id)
	}

	err = s.publisher.TaskDeleted(events.TaskDeletedEvent{
		TaskID:    t.ID,
		OwnerID:   t.OwnerID,
		DeletedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[task] Warning: failed to publish TaskDeleted for %s: %v", id, err)
	}
	return nil
}

// List returns the owner's dashboard, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if ownerID == "" {
		return nil, apperror.InvalidArgument("ownerId is required")
	}
	tasks, err := s.repo.FindVisibleByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err, "list tasks")
	}
	return tasks, nil
}

// SweepHidden hides every finished task from the dashboard.
func (s *Service) SweepHidden(ctx context.Context) (int64, error) {
	n, err := s.repo.HideFinished(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, apperror.Internal(err, "sweep tasks")
	}
	return n, nil
}
