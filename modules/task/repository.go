package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/task"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
)

// Repository provides access to task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn in one database transaction. Repositories reached
// with the ctx passed to fn join it.
func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return storage.Transaction(ctx, r.db, fn)
}

// Create inserts a task.
func (r *Repository) Create(ctx context.Context, t *domain.Task) error {
	if err := storage.Conn(ctx, r.db).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := storage.Conn(ctx, r.db).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("task %s", id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindVisibleByOwner retrieves the owner's dashboard tasks, newest first.
func (r *Repository) FindVisibleByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := storage.Conn(ctx, r.db).
		Where("owner_id = ? AND hidden_from_dashboard = ?", ownerID, false).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial edit and returns the number of rows touched.
func (r *Repository) Update(ctx context.Context, id string, changes map[string]any) (int64, error) {
	changes["updated_at"] = time.Now()
	result := storage.Conn(ctx, r.db).Model(&domain.Task{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update task: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Transition moves a task from one status to another. It only matches rows
// still in from, so concurrent callers cannot both succeed.
func (r *Repository) Transition(ctx context.Context, id string, from, to domain.Status, changes map[string]any) (int64, error) {
	if changes == nil {
		changes = map[string]any{}
	}
	changes["status"] = to
	changes["updated_at"] = time.Now()
	result := storage.Conn(ctx, r.db).Model(&domain.Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(changes)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to move task to %s: %w", to, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a task and returns the number of rows removed.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	result := storage.Conn(ctx, r.db).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete task: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// HideFinished flags every completed or confirmed task not yet hidden.
func (r *Repository) HideFinished(ctx context.Context) (int64, error) {
	result := storage.Conn(ctx, r.db).Model(&domain.Task{}).
		Where("status IN ? AND hidden_from_dashboard = ?", []domain.Status{domain.StatusCompleted, domain.StatusConfirmed}, false).
		Update("hidden_from_dashboard", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to hide finished tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}
