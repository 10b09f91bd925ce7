package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides access to account stats storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new account repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates the account or refreshes its display name.
func (r *Repository) Upsert(ctx context.Context, userID, name string) error {
	acc := domain.Account{UserID: userID, Name: name}
	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}
	if name != "" {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"name": name, "updated_at": time.Now()}),
		}
	}
	if err := storage.Conn(ctx, r.db).Clauses(conflict).Create(&acc).Error; err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// FindByID retrieves an account by user id.
func (r *Repository) FindByID(ctx context.Context, userID string) (*domain.Account, error) {
	var acc domain.Account
	if err := storage.Conn(ctx, r.db).First(&acc, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("account %s", userID)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &acc, nil
}

// FindByIDs retrieves the accounts that exist among userIDs.
func (r *Repository) FindByIDs(ctx context.Context, userIDs []string) ([]domain.Account, error) {
	var accounts []domain.Account
	if len(userIDs) == 0 {
		return accounts, nil
	}
	if err := storage.Conn(ctx, r.db).Where("user_id IN ?", userIDs).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	return accounts, nil
}

// Increment adds one task and the given minutes to the chosen counters,
// creating the account row when it does not exist yet.
func (r *Repository) Increment(ctx context.Context, userID string, minutes int, confirmed bool) error {
	acc := domain.Account{UserID: userID}
	taskCol, minuteCol := "tasks_completed", "minutes_completed"
	if confirmed {
		taskCol, minuteCol = "confirmed_tasks_completed", "confirmed_minutes_completed"
		acc.ConfirmedTasksCompleted, acc.ConfirmedMinutesCompleted = 1, minutes
	} else {
		acc.TasksCompleted, acc.MinutesCompleted = 1, minutes
	}

	err := storage.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			taskCol:      gorm.Expr(taskCol+" + ?", 1),
			minuteCol:    gorm.Expr(minuteCol+" + ?", minutes),
			"updated_at": time.Now(),
		}),
	}).Create(&acc).Error
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", taskCol, err)
	}
	return nil
}
