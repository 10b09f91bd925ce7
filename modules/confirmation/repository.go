package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/confirmation"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
)

// Repository provides access to confirmation storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new confirmation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn in one database transaction. Repositories reached
// with the ctx passed to fn join it.
func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return storage.Transaction(ctx, r.db, fn)
}

// Create inserts a confirmation.
func (r *Repository) Create(ctx context.Context, c *domain.Confirmation) error {
	if err := storage.Conn(ctx, r.db).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create confirmation: %w", err)
	}
	return nil
}

// FindPendingByTask retrieves the live pending confirmation of a task.
func (r *Repository) FindPendingByTask(ctx context.Context, taskID string) (*domain.Confirmation, error) {
	var c domain.Confirmation
	err := storage.Conn(ctx, r.db).
		Where("task_id = ? AND status = ?", taskID, domain.StatusPending).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no pending confirmation for task %s", taskID)
		}
		return nil, fmt.Errorf("failed to find confirmation: %w", err)
	}
	return &c, nil
}

// FindByRequester retrieves the confirmations a user asked for, newest first.
func (r *Repository) FindByRequester(ctx context.Context, userID string) ([]domain.Confirmation, error) {
	var list []domain.Confirmation
	err := storage.Conn(ctx, r.db).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	return list, nil
}

// FindPendingSentTo retrieves pending confirmations whose recipients may
// include peerID. Callers must still check the decoded sets.
func (r *Repository) FindPendingSentTo(ctx context.Context, peerID string) ([]domain.Confirmation, error) {
	var list []domain.Confirmation
	err := storage.Conn(ctx, r.db).
		Where("status = ? AND sent_to LIKE ? ESCAPE '\\'", domain.StatusPending, "%"+likeQuoted(peerID)+"%").
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending confirmations: %w", err)
	}
	return list, nil
}

// Claim records peerID's answer and moves the confirmation out of pending.
// Only a row still pending is updated, so exactly one of several concurrent
// answers succeeds; the others get not_found.
func (r *Repository) Claim(ctx context.Context, c *domain.Confirmation, peerID string, to domain.Status) (*domain.Confirmation, error) {
	claimed := *c
	claimed.Status = to
	column := "confirmed_by"
	if to == domain.StatusDeclined {
		claimed.DeniedBy = c.DeniedBy.With(peerID)
		column = "denied_by"
	} else {
		claimed.ConfirmedBy = c.ConfirmedBy.With(peerID)
	}

	result := storage.Conn(ctx, r.db).
		Model(&domain.Confirmation{}).
		Where("id = ? AND status = ?", c.ID, domain.StatusPending).
		Select("status", column).
		Updates(&claimed)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim confirmation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("confirmation for task %s was already answered", c.TaskID)
	}
	return &claimed, nil
}

// Delete removes a confirmation by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := storage.Conn(ctx, r.db).Delete(&domain.Confirmation{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete confirmation: %w", err)
	}
	return nil
}

// DeleteByTask removes every confirmation of a task.
func (r *Repository) DeleteByTask(ctx context.Context, taskID string) (int64, error) {
	result := storage.Conn(ctx, r.db).Where("task_id = ?", taskID).Delete(&domain.Confirmation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete confirmations for task %s: %w", taskID, result.Error)
	}
	return result.RowsAffected, nil
}

// likeQuoted renders id as it appears inside the JSON array, escaped for LIKE.
func likeQuoted(id string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return `"` + r.Replace(id) + `"`
}
