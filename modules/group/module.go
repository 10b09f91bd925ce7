package group

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/lockin/domain/group"
	"github.com/example/lockin/events"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// GroupModule owns friend groups and their membership.
type GroupModule struct {
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*GroupModule)(nil)
var _ mono.ServiceProviderModule = (*GroupModule)(nil)
var _ mono.EventEmitterModule = (*GroupModule)(nil)
var _ mono.HealthCheckableModule = (*GroupModule)(nil)

// NewModule creates a new GroupModule backed by db.
func NewModule(db *gorm.DB) *GroupModule {
	return &GroupModule{db: db}
}

// Name returns the module name.
func (m *GroupModule) Name() string {
	return "group"
}

// SetEventBus receives the EventBus from the framework.
func (m *GroupModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *GroupModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.GroupChangedV1.ToBase(),
		events.GroupInviteSentV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *GroupModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-group", json.Unmarshal, json.Marshal, m.createGroup,
	); err != nil {
		return fmt.Errorf("failed to register create-group service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-group", json.Unmarshal, json.Marshal, m.getGroup,
	); err != nil {
		return fmt.Errorf("failed to register get-group service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "groups-containing", json.Unmarshal, json.Marshal, m.groupsContaining,
	); err != nil {
		return fmt.Errorf("failed to register groups-containing service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "add-member", json.Unmarshal, json.Marshal, m.addMember,
	); err != nil {
		return fmt.Errorf("failed to register add-member service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "remove-member", json.Unmarshal, json.Marshal, m.removeMember,
	); err != nil {
		return fmt.Errorf("failed to register remove-member service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "set-confirmation-policy", json.Unmarshal, json.Marshal, m.setConfirmationPolicy,
	); err != nil {
		return fmt.Errorf("failed to register set-confirmation-policy service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-group", json.Unmarshal, json.Marshal, m.deleteGroup,
	); err != nil {
		return fmt.Errorf("failed to register delete-group service: %w", err)
	}

	log.Printf("[group] Registered services: create-group, get-group, groups-containing, add-member, remove-member, set-confirmation-policy, delete-group")
	return nil
}

// Start migrates the group tables and wires the service to the event bus.
func (m *GroupModule) Start(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Group{}, &domain.Member{}); err != nil {
		return fmt.Errorf("failed to migrate groups: %w", err)
	}
	m.service = NewService(NewRepository(m.db), events.NewBusPublisher(m.eventBus))
	log.Println("[group] Module started")
	return nil
}

// Stop shuts down the module.
func (m *GroupModule) Stop(_ context.Context) error {
	log.Println("[group] Module stopped")
	return nil
}

// Health reports whether the database answers.
func (m *GroupModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *GroupModule) createGroup(ctx context.Context, req CreateGroupRequest, _ *mono.Msg) (GroupResponse, error) {
	g, err := m.service.Create(ctx, req.OwnerID, req.Name, req.ConfirmationRequired, req.InviteUserIDs)
	if err != nil {
		return GroupResponse{}, err
	}
	return toGroupResponse(g), nil
}

func (m *GroupModule) getGroup(ctx context.Context, req GetGroupRequest, _ *mono.Msg) (GroupResponse, error) {
	g, err := m.service.Get(ctx, req.GroupID)
	if err != nil {
		return GroupResponse{}, err
	}
	return toGroupResponse(g), nil
}

func (m *GroupModule) groupsContaining(ctx context.Context, req GroupsContainingRequest, _ *mono.Msg) (GroupsContainingResponse, error) {
	groups, err := m.service.GroupsContaining(ctx, req.UserID)
	if err != nil {
		return GroupsContainingResponse{}, err
	}
	return GroupsContainingResponse{Groups: groups}, nil
}

func (m *GroupModule) addMember(ctx context.Context, req MemberRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.AddMember(ctx, req.GroupID, req.UserID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *GroupModule) removeMember(ctx context.Context, req MemberRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.RemoveMember(ctx, req.GroupID, req.UserID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *GroupModule) setConfirmationPolicy(ctx context.Context, req PolicyRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.SetConfirmationPolicy(ctx, req.GroupID, req.ConfirmationRequired); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *GroupModule) deleteGroup(ctx context.Context, req DeleteGroupRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.Delete(ctx, req.GroupID, req.UserID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}
