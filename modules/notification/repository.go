package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/notification"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
)

// Repository provides access to notification storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a notification.
func (r *Repository) Create(ctx context.Context, n *domain.Notification) error {
	if err := storage.Conn(ctx, r.db).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// FindByID retrieves a notification by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := storage.Conn(ctx, r.db).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("notification %s", id)
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return &n, nil
}

// FindByUser retrieves a user's notifications, newest first.
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	var list []domain.Notification
	err := storage.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// UpdateStatus sets the status of one notification.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	result := storage.Conn(ctx, r.db).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("notification %s", id)
	}
	return nil
}

// UpdateStatusByTask sets status on every notification about taskID. An
// empty userID matches all recipients.
func (r *Repository) UpdateStatusByTask(ctx context.Context, taskID, userID string, status domain.Status) (int64, error) {
	q := storage.Conn(ctx, r.db).Model(&domain.Notification{}).Where("extra_task_id = ?", taskID)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	result := q.Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update notifications for task %s: %w", taskID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByTypeAndTask removes every notification of type t about taskID.
func (r *Repository) DeleteByTypeAndTask(ctx context.Context, t domain.Type, taskID string) (int64, error) {
	result := storage.Conn(ctx, r.db).
		Where("type = ? AND extra_task_id = ?", t, taskID).
		Delete(&domain.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications for task %s: %w", taskID, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification. Missing records are ignored.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := storage.Conn(ctx, r.db).Delete(&domain.Notification{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
