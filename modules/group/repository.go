package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/group"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides access to groups and their members.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new group repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a group together with its initial members.
func (r *Repository) Create(ctx context.Context, g *domain.Group) error {
	if err := storage.Conn(ctx, r.db).Create(g).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// FindByID retrieves a group with its members loaded.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := storage.Conn(ctx, r.db).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("group %s", id)
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &g, nil
}

// FindContaining retrieves every group userID belongs to.
func (r *Repository) FindContaining(ctx context.Context, userID string) ([]domain.Group, error) {
	var groups []domain.Group
	err := storage.Conn(ctx, r.db).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id IN (?)", r.db.Model(&domain.Member{}).Select("group_id").Where("user_id = ?", userID)).
		Order("created_at ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find groups for %s: %w", userID, err)
	}
	return groups, nil
}

// AddMember links userID to the group. Adding an existing member is a no-op.
func (r *Repository) AddMember(ctx context.Context, groupID, userID string) error {
	m := domain.Member{GroupID: groupID, UserID: userID}
	if err := storage.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember unlinks userID from the group.
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	err := storage.Conn(ctx, r.db).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&domain.Member{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// SetConfirmationRequired updates the group's confirmation policy.
func (r *Repository) SetConfirmationRequired(ctx context.Context, groupID string, required bool) error {
	result := storage.Conn(ctx, r.db).Model(&domain.Group{}).
		Where("id = ?", groupID).
		Update("confirmation_required", required)
	if result.Error != nil {
		return fmt.Errorf("failed to update policy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("group %s", groupID)
	}
	return nil
}

// Delete removes the group and its memberships.
func (r *Repository) Delete(ctx context.Context, groupID string) error {
	return storage.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&domain.Member{}).Error; err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		result := tx.Delete(&domain.Group{}, "id = ?", groupID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete group: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("group %s", groupID)
		}
		return nil
	})
}
