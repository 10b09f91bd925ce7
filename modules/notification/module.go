package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/notification"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// NotificationModule stores notifications and fans them out to recipients.
type NotificationModule struct {
	db          *gorm.DB
	service     *Service
	groupPort   group.GroupPort
	accountPort account.StatsPort
	eventBus    mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)
var _ mono.DependentModule = (*NotificationModule)(nil)
var _ mono.EventEmitterModule = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.HealthCheckableModule = (*NotificationModule)(nil)

// NewModule creates a new NotificationModule backed by db.
func NewModule(db *gorm.DB) *NotificationModule {
	return &NotificationModule{db: db}
}

// Name returns the module name.
func (m *NotificationModule) Name() string {
	return "notification"
}

// Dependencies returns the modules this one calls.
func (m *NotificationModule) Dependencies() []string {
	return []string{"account", "group"}
}

// SetDependencyServiceContainer receives the containers of dependencies.
func (m *NotificationModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "account":
		m.accountPort = account.NewStatsAdapter(container)
	case "group":
		m.groupPort = group.NewGroupAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *NotificationModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *NotificationModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.NotificationCreatedV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to group invitations.
func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.GroupInviteSentV1, m.handleGroupInviteSent, m); err != nil {
		return fmt.Errorf("failed to register GroupInviteSent consumer: %w", err)
	}
	log.Printf("[notification] Registered event consumers: GroupInviteSent")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"create-notification", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-notification", json.Unmarshal, json.Marshal, m.createNotification)
		}},
		{"resolve-task-notifications", func() error {
			return helper.RegisterTypedRequestReplyService(container, "resolve-task-notifications", json.Unmarshal, json.Marshal, m.resolveByTask)
		}},
		{"delete-task-notifications", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-task-notifications", json.Unmarshal, json.Marshal, m.deleteByTypeAndTask)
		}},
		{"mark-recipient", func() error {
			return helper.RegisterTypedRequestReplyService(container, "mark-recipient", json.Unmarshal, json.Marshal, m.markRecipient)
		}},
		{"list-notifications", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-notifications", json.Unmarshal, json.Marshal, m.listNotifications)
		}},
		{"update-notification-status", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-notification-status", json.Unmarshal, json.Marshal, m.updateStatus)
		}},
		{"delete-notification", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-notification", json.Unmarshal, json.Marshal, m.deleteNotification)
		}},
	}
	for _, s := range services {
		if err := s.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", s.name, err)
		}
	}

	log.Printf("[notification] Registered %d services", len(services))
	return nil
}

// Start migrates the notifications table.
func (m *NotificationModule) Start(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Notification{}); err != nil {
		return fmt.Errorf("failed to migrate notifications: %w", err)
	}
	m.service = NewService(NewRepository(m.db), m.groupPort, events.NewBusPublisher(m.eventBus))
	log.Println("[notification] Module started")
	return nil
}

// Stop shuts down the module.
func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

// Health reports whether the database answers.
func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *NotificationModule) handleGroupInviteSent(ctx context.Context, e events.GroupInviteSentEvent, _ *mono.Msg) error {
	var fromName string
	if m.accountPort != nil {
		if acc, err := m.accountPort.Get(ctx, e.FromUserID); err == nil {
			fromName = acc.Name
		}
	}
	n, err := m.service.Invite(ctx, e, fromName)
	if err != nil {
		log.Printf("[notification] Warning: failed to invite %s to group %s: %v", e.UserID, e.GroupID, err)
		if apperror.KindOf(err) == apperror.KindInternal {
			return err
		}
		return nil
	}
	log.Printf("[notification] Invite %s sent to %s for group %s", n.ID, e.UserID, e.GroupID)
	return nil
}

func (m *NotificationModule) createNotification(ctx context.Context, req CreateInput, _ *mono.Msg) (NotificationResponse, error) {
	n, err := m.service.Create(ctx, req)
	if err != nil {
		return NotificationResponse{}, err
	}
	return NotificationResponse{Notification: *n}, nil
}

func (m *NotificationModule) resolveByTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (CountResponse, error) {
	n, err := m.service.ResolveByTask(ctx, req.TaskID)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: n}, nil
}

func (m *NotificationModule) deleteByTypeAndTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (CountResponse, error) {
	n, err := m.service.DeleteByTypeAndTask(ctx, req.Type, req.TaskID)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: n}, nil
}

func (m *NotificationModule) markRecipient(ctx context.Context, req MarkRecipientRequest, _ *mono.Msg) (CountResponse, error) {
	if err := m.service.MarkRecipient(ctx, req.UserID, req.TaskID, req.Status); err != nil {
		return CountResponse{}, err
	}
	return CountResponse{}, nil
}

func (m *NotificationModule) listNotifications(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	list, err := m.service.List(ctx, req.UserID)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{Notifications: list}, nil
}

func (m *NotificationModule) updateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (NotificationResponse, error) {
	n, err := m.service.UpdateStatus(ctx, req.NotificationID, req.Status)
	if err != nil {
		return NotificationResponse{}, err
	}
	return NotificationResponse{Notification: *n}, nil
}

func (m *NotificationModule) deleteNotification(ctx context.Context, req DeleteRequest, _ *mono.Msg) (CountResponse, error) {
	if err := m.service.Delete(ctx, req.NotificationID); err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: 1}, nil
}
