package group

import (
	"context"
	"encoding/json"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/group"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// GroupPort defines the group operations other modules depend on.
type GroupPort interface {
	GetMembership(ctx context.Context, groupID string) (*domain.Membership, error)
	GroupsContaining(ctx context.Context, userID string) ([]domain.Membership, error)
	AddMember(ctx context.Context, groupID, userID string) error
}

// GroupAdminPort adds the group management operations exposed over HTTP.
type GroupAdminPort interface {
	GroupPort
	CreateGroup(ctx context.Context, req CreateGroupRequest) (*GroupResponse, error)
	GetGroup(ctx context.Context, groupID string) (*GroupResponse, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	SetConfirmationPolicy(ctx context.Context, groupID string, required bool) error
	DeleteGroup(ctx context.Context, groupID, userID string) error
}

var _ GroupPort = (*Service)(nil)

// groupAdapter wraps ServiceContainer for type-safe cross-module communication.
type groupAdapter struct {
	container mono.ServiceContainer
}

// NewGroupAdapter creates a new adapter for group services.
func NewGroupAdapter(container mono.ServiceContainer) GroupPort {
	return NewGroupAdminAdapter(container)
}

// NewGroupAdminAdapter creates an adapter exposing every group service.
func NewGroupAdminAdapter(container mono.ServiceContainer) GroupAdminPort {
	if container == nil {
		panic("group adapter requires non-nil ServiceContainer")
	}
	return &groupAdapter{container: container}
}

func (a *groupAdapter) GetMembership(ctx context.Context, groupID string) (*domain.Membership, error) {
	req := GetGroupRequest{GroupID: groupID}
	var resp GroupResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-group", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Group, nil
}

func (a *groupAdapter) GroupsContaining(ctx context.Context, userID string) ([]domain.Membership, error) {
	req := GroupsContainingRequest{UserID: userID}
	var resp GroupsContainingResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "groups-containing", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Groups, nil
}

func (a *groupAdapter) AddMember(ctx context.Context, groupID, userID string) error {
	req := MemberRequest{GroupID: groupID, UserID: userID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "add-member", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *groupAdapter) CreateGroup(ctx context.Context, req CreateGroupRequest) (*GroupResponse, error) {
	var resp GroupResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "create-group", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp, nil
}

func (a *groupAdapter) GetGroup(ctx context.Context, groupID string) (*GroupResponse, error) {
	req := GetGroupRequest{GroupID: groupID}
	var resp GroupResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-group", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp, nil
}

func (a *groupAdapter) RemoveMember(ctx context.Context, groupID, userID string) error {
	req := MemberRequest{GroupID: groupID, UserID: userID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "remove-member", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *groupAdapter) SetConfirmationPolicy(ctx context.Context, groupID string, required bool) error {
	req := PolicyRequest{GroupID: groupID, ConfirmationRequired: required}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "set-confirmation-policy", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *groupAdapter) DeleteGroup(ctx context.Context, groupID, userID string) error {
	req := DeleteGroupRequest{GroupID: groupID, UserID: userID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "delete-group", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}
