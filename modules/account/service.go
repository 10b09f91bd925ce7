package account

import (
	"context"
	"strings"

	domain "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
)

// Service maintains the aggregate completion stats of every user.
type Service struct {
	repo *Repository
}

// NewService creates a new account service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Ensure creates the account if missing and records the display name.
func (s *Service) Ensure(ctx context.Context, userID, name string) (*domain.Account, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	if err := s.repo.Upsert(ctx, userID, strings.TrimSpace(name)); err != nil {
		return nil, apperror.Internal(err, "ensure account %s", userID)
	}
	return s.repo.FindByID(ctx, userID)
}

// Get returns the account of userID.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Account, error) {
	if userID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	return s.repo.FindByID(ctx, userID)
}

// IncrementCompleted counts an unconfirmed completion.
func (s *Service) IncrementCompleted(ctx context.Context, userID string, minutes int) error {
	return s.increment(ctx, userID, minutes, false)
}

// IncrementConfirmed counts a peer-confirmed completion.
func (s *Service) IncrementConfirmed(ctx context.Context, userID string, minutes int) error {
	return s.increment(ctx, userID, minutes, true)
}

func (s *Service) increment(ctx context.Context, userID string, minutes int, confirmed bool) error {
	if userID == "" {
		return apperror.InvalidArgument("userId is required")
	}
	if minutes <= 0 {
		return apperror.InvalidArgument("minutes must be > 0")
	}
	if err := s.repo.Increment(ctx, userID, minutes, confirmed); err != nil {
		return apperror.Internal(err, "increment stats for %s", userID)
	}
	return nil
}

// ListStats returns one entry per requested user, in request order. Users
// without an account row are reported with zero totals.
func (s *Service) ListStats(ctx context.Context, userIDs []string) ([]domain.Account, error) {
	found, err := s.repo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperror.Internal(err, "list stats")
	}
	byID := make(map[string]domain.Account, len(found))
	for _, acc := range found {
		byID[acc.UserID] = acc
	}
	out := make([]domain.Account, 0, len(userIDs))
	for _, id := range userIDs {
		acc, ok := byID[id]
		if !ok {
			acc = domain.Account{UserID: id}
		}
		out = append(out, acc)
	}
	return out, nil
}
