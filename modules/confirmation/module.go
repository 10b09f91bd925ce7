package confirmation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/lockin/domain/confirmation"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// ConfirmationModule runs the peer confirmation workflow.
type ConfirmationModule struct {
	db           *gorm.DB
	service      *Service
	notifierPort notification.NotifierPort
	eventBus     mono.EventBus
}

var _ mono.Module = (*ConfirmationModule)(nil)
var _ mono.ServiceProviderModule = (*ConfirmationModule)(nil)
var _ mono.DependentModule = (*ConfirmationModule)(nil)
var _ mono.EventEmitterModule = (*ConfirmationModule)(nil)
var _ mono.EventConsumerModule = (*ConfirmationModule)(nil)
var _ mono.HealthCheckableModule = (*ConfirmationModule)(nil)

// NewModule creates a new ConfirmationModule backed by db.
func NewModule(db *gorm.DB) *ConfirmationModule {
	return &ConfirmationModule{db: db}
}

func (m *ConfirmationModule) Name() string {
	return "confirmation"
}

// Dependencies orders the module after the owners of the tables an
// answer writes in its transaction.
func (m *ConfirmationModule) Dependencies() []string {
	return []string{"task", "account", "notification"}
}

func (m *ConfirmationModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "notification" {
		m.notifierPort = notification.NewNotifierAdapter(container)
	}
}

func (m *ConfirmationModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *ConfirmationModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskConfirmedV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to task deletions so stale requests
// and their notifications are removed.
func (m *ConfirmationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	log.Printf("[confirmation] Registered event consumers: TaskDeleted")
	return nil
}

func (m *ConfirmationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "request-confirmation", json.Unmarshal, json.Marshal, m.requestConfirmation,
	); err != nil {
		return fmt.Errorf("failed to register request-confirmation service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "confirm-task", json.Unmarshal, json.Marshal, m.confirmTask,
	); err != nil {
		return fmt.Errorf("failed to register confirm-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "deny-task", json.Unmarshal, json.Marshal, m.denyTask,
	); err != nil {
		return fmt.Errorf("failed to register deny-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-confirmations", json.Unmarshal, json.Marshal, m.getConfirmations,
	); err != nil {
		return fmt.Errorf("failed to register get-confirmations service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-pending-confirmations", json.Unmarshal, json.Marshal, m.getPendingConfirmations,
	); err != nil {
		return fmt.Errorf("failed to register get-pending-confirmations service: %w", err)
	}

	log.Printf("[confirmation] Registered services: request-confirmation, confirm-task, deny-task, get-confirmations, get-pending-confirmations")
	return nil
}

func (m *ConfirmationModule) Start(ctx context.Context) error {
	if m.notifierPort == nil {
		return fmt.Errorf("notification dependency not wired")
	}
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Confirmation{}); err != nil {
		return fmt.Errorf("failed to migrate confirmations: %w", err)
	}
	accounts := account.NewService(account.NewRepository(m.db))
	tasks := task.NewService(task.NewRepository(m.db), accounts, events.Discard{})
	notices := newNotifier(m.notifierPort, notification.NewService(notification.NewRepository(m.db), nil, events.Discard{}))
	m.service = NewService(NewRepository(m.db), tasks, accounts, notices, events.NewBusPublisher(m.eventBus))
	log.Println("[confirmation] Module started")
	return nil
}

func (m *ConfirmationModule) Stop(_ context.Context) error {
	log.Println("[confirmation] Module stopped")
	return nil
}

func (m *ConfirmationModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *ConfirmationModule) handleTaskDeleted(ctx context.Context, e events.TaskDeletedEvent, _ *mono.Msg) error {
	if err := m.service.DeleteForTask(ctx, e.TaskID); err != nil {
		log.Printf("[confirmation] Warning: cleanup for deleted task %s failed: %v", e.TaskID, err)
		return err
	}
	return nil
}

func (m *ConfirmationModule) requestConfirmation(ctx context.Context, req RequestInput, _ *mono.Msg) (RequestConfirmationResponse, error) {
	id, err := m.service.RequestConfirmation(ctx, req)
	if err != nil {
		return RequestConfirmationResponse{}, err
	}
	return RequestConfirmationResponse{ConfirmationID: id}, nil
}

func (m *ConfirmationModule) confirmTask(ctx context.Context, req AnswerRequest, _ *mono.Msg) (ConfirmationResponse, error) {
	c, err := m.service.ConfirmTask(ctx, req.TaskID, req.PeerID)
	if err != nil {
		return ConfirmationResponse{}, err
	}
	return ConfirmationResponse{Confirmation: *c}, nil
}

func (m *ConfirmationModule) denyTask(ctx context.Context, req AnswerRequest, _ *mono.Msg) (ConfirmationResponse, error) {
	c, err := m.service.DenyTask(ctx, req.TaskID, req.PeerID)
	if err != nil {
		return ConfirmationResponse{}, err
	}
	return ConfirmationResponse{Confirmation: *c}, nil
}

func (m *ConfirmationModule) getConfirmations(ctx context.Context, req UserRequest, _ *mono.Msg) (ListConfirmationsResponse, error) {
	list, err := m.service.GetConfirmations(ctx, req.UserID)
	if err != nil {
		return ListConfirmationsResponse{}, err
	}
	return ListConfirmationsResponse{Confirmations: list}, nil
}

func (m *ConfirmationModule) getPendingConfirmations(ctx context.Context, req UserRequest, _ *mono.Msg) (ListConfirmationsResponse, error) {
	list, err := m.service.GetPendingConfirmationsForPeer(ctx, req.UserID)
	if err != nil {
		return ListConfirmationsResponse{}, err
	}
	return ListConfirmationsResponse{Confirmations: list}, nil
}
