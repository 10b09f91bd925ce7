package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/lockin/domain/account"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// AccountModule owns per-user completion stats.
type AccountModule struct {
	db      *gorm.DB
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*AccountModule)(nil)
var _ mono.ServiceProviderModule = (*AccountModule)(nil)
var _ mono.HealthCheckableModule = (*AccountModule)(nil)

// NewModule creates a new AccountModule backed by db.
func NewModule(db *gorm.DB) *AccountModule {
	return &AccountModule{db: db, service: NewService(NewRepository(db))}
}

// Name returns the module name.
func (m *AccountModule) Name() string {
	return "account"
}

// Service exposes the in-process service, used by the CLI.
func (m *AccountModule) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *AccountModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "ensure-account", json.Unmarshal, json.Marshal, m.ensureAccount,
	); err != nil {
		return fmt.Errorf("failed to register ensure-account service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-account", json.Unmarshal, json.Marshal, m.getAccount,
	); err != nil {
		return fmt.Errorf("failed to register get-account service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "increment-completed", json.Unmarshal, json.Marshal, m.incrementCompleted,
	); err != nil {
		return fmt.Errorf("failed to register increment-completed service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "increment-confirmed", json.Unmarshal, json.Marshal, m.incrementConfirmed,
	); err != nil {
		return fmt.Errorf("failed to register increment-confirmed service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-stats", json.Unmarshal, json.Marshal, m.listStats,
	); err != nil {
		return fmt.Errorf("failed to register list-stats service: %w", err)
	}

	log.Printf("[account] Registered services: ensure-account, get-account, increment-completed, increment-confirmed, list-stats")
	return nil
}

// Start migrates the accounts table.
func (m *AccountModule) Start(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Account{}); err != nil {
		return fmt.Errorf("failed to migrate accounts: %w", err)
	}
	log.Println("[account] Module started")
	return nil
}

// Stop shuts down the module.
func (m *AccountModule) Stop(_ context.Context) error {
	log.Println("[account] Module stopped")
	return nil
}

// Health reports whether the database answers.
func (m *AccountModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *AccountModule) ensureAccount(ctx context.Context, req EnsureAccountRequest, _ *mono.Msg) (AccountResponse, error) {
	acc, err := m.service.Ensure(ctx, req.UserID, req.Name)
	if err != nil {
		return AccountResponse{}, err
	}
	return AccountResponse{Account: *acc}, nil
}

func (m *AccountModule) getAccount(ctx context.Context, req GetAccountRequest, _ *mono.Msg) (AccountResponse, error) {
	acc, err := m.service.Get(ctx, req.UserID)
	if err != nil {
		return AccountResponse{}, err
	}
	return AccountResponse{Account: *acc}, nil
}

func (m *AccountModule) incrementCompleted(ctx context.Context, req IncrementRequest, _ *mono.Msg) (IncrementResponse, error) {
	if err := m.service.IncrementCompleted(ctx, req.UserID, req.Minutes); err != nil {
		return IncrementResponse{}, err
	}
	return IncrementResponse{Success: true}, nil
}

func (m *AccountModule) incrementConfirmed(ctx context.Context, req IncrementRequest, _ *mono.Msg) (IncrementResponse, error) {
	if err := m.service.IncrementConfirmed(ctx, req.UserID, req.Minutes); err != nil {
		return IncrementResponse{}, err
	}
	return IncrementResponse{Success: true}, nil
}

func (m *AccountModule) listStats(ctx context.Context, req ListStatsRequest, _ *mono.Msg) (ListStatsResponse, error) {
	accounts, err := m.service.ListStats(ctx, req.UserIDs)
	if err != nil {
		return ListStatsResponse{}, err
	}
	return ListStatsResponse{Accounts: accounts}, nil
}
