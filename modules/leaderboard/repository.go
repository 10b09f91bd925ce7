package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/leaderboard"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
)

// Repository provides access to ranking storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new ranking repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find retrieves a group's ranking.
func (r *Repository) Find(ctx context.Context, groupID string) (*domain.Ranking, error) {
	var rk domain.Ranking
	if err := storage.Conn(ctx, r.db).First(&rk, "group_id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("ranking for group %s", groupID)
		}
		return nil, fmt.Errorf("failed to find ranking: %w", err)
	}
	return &rk, nil
}

// Save inserts or replaces a ranking.
func (r *Repository) Save(ctx context.Context, rk *domain.Ranking) error {
	rk.UpdatedAt = time.Now()
	if err := storage.Conn(ctx, r.db).Save(rk).Error; err != nil {
		return fmt.Errorf("failed to save ranking: %w", err)
	}
	return nil
}

// Update loads the ranking of groupID, applies fn and stores the result in
// one transaction. A missing row is passed to fn as an empty ranking.
func (r *Repository) Update(ctx context.Context, groupID string, fn func(*domain.Ranking) error) error {
	return storage.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var rk domain.Ranking
		err := tx.First(&rk, "group_id = ?", groupID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load ranking: %w", err)
		}
		if err != nil {
			rk = domain.Ranking{GroupID: groupID}
		}
		if err := fn(&rk); err != nil {
			return err
		}
		rk.UpdatedAt = time.Now()
		if err := tx.Save(&rk).Error; err != nil {
			return fmt.Errorf("failed to save ranking: %w", err)
		}
		return nil
	})
}

// FindAll retrieves every ranking.
func (r *Repository) FindAll(ctx context.Context) ([]domain.Ranking, error) {
	var list []domain.Ranking
	if err := storage.Conn(ctx, r.db).Order("group_id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	return list, nil
}

// Delete removes a group's ranking.
func (r *Repository) Delete(ctx context.Context, groupID string) error {
	if err := storage.Conn(ctx, r.db).Delete(&domain.Ranking{}, "group_id = ?", groupID).Error; err != nil {
		return fmt.Errorf("failed to delete ranking: %w", err)
	}
	return nil
}
