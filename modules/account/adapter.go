package account

import (
	"context"
	"encoding/json"

	domain "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort defines the account operations other modules depend on.
type StatsPort interface {
	Ensure(ctx context.Context, userID, name string) (*domain.Account, error)
	Get(ctx context.Context, userID string) (*domain.Account, error)
	IncrementCompleted(ctx context.Context, userID string, minutes int) error
	IncrementConfirmed(ctx context.Context, userID string, minutes int) error
	ListStats(ctx context.Context, userIDs []string) ([]domain.Account, error)
}

var _ StatsPort = (*Service)(nil)

// statsAdapter wraps ServiceContainer for type-safe cross-module communication.
type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a new adapter for account services.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("account adapter requires non-nil ServiceContainer")
	}
	return &statsAdapter{container: container}
}

func (a *statsAdapter) Ensure(ctx context.Context, userID, name string) (*domain.Account, error) {
	req := EnsureAccountRequest{UserID: userID, Name: name}
	var resp AccountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "ensure-account", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Account, nil
}

func (a *statsAdapter) Get(ctx context.Context, userID string) (*domain.Account, error) {
	req := GetAccountRequest{UserID: userID}
	var resp AccountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-account", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Account, nil
}

func (a *statsAdapter) IncrementCompleted(ctx context.Context, userID string, minutes int) error {
	return a.increment(ctx, "increment-completed", userID, minutes)
}

func (a *statsAdapter) IncrementConfirmed(ctx context.Context, userID string, minutes int) error {
	return a.increment(ctx, "increment-confirmed", userID, minutes)
}

func (a *statsAdapter) increment(ctx context.Context, service, userID string, minutes int) error {
	req := IncrementRequest{UserID: userID, Minutes: minutes}
	var resp IncrementResponse
	if err := helper.CallRequestReplyService(ctx, a.container, service, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *statsAdapter) ListStats(ctx context.Context, userIDs []string) ([]domain.Account, error) {
	req := ListStatsRequest{UserIDs: userIDs}
	var resp ListStatsResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "list-stats", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Accounts, nil
}
