package notification

import (
	"context"
	"encoding/json"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/notification"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotifierPort defines the notification operations other modules depend on.
type NotifierPort interface {
	Create(ctx context.Context, in CreateInput) (*domain.Notification, error)
	ResolveByTask(ctx context.Context, taskID string) (int64, error)
	DeleteByTypeAndTask(ctx context.Context, t domain.Type, taskID string) (int64, error)
	MarkRecipient(ctx context.Context, userID, taskID string, status domain.Status) error
}

// InboxPort defines the recipient-facing operations used by the API.
type InboxPort interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Notification, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ NotifierPort = (*Service)(nil)
	_ InboxPort    = (*Service)(nil)
)

// notifierAdapter wraps ServiceContainer for type-safe cross-module communication.
type notifierAdapter struct {
	container mono.ServiceContainer
}

// NewNotifierAdapter creates a new adapter for notification services.
func NewNotifierAdapter(container mono.ServiceContainer) NotifierPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notifierAdapter{container: container}
}

// NewInboxAdapter creates a new adapter for the recipient-facing services.
func NewInboxAdapter(container mono.ServiceContainer) InboxPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notifierAdapter{container: container}
}

func (a *notifierAdapter) Create(ctx context.Context, in CreateInput) (*domain.Notification, error) {
	var resp NotificationResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "create-notification", json.Marshal, json.Unmarshal, &in, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Notification, nil
}

func (a *notifierAdapter) ResolveByTask(ctx context.Context, taskID string) (int64, error) {
	req := TaskRequest{TaskID: taskID}
	var resp CountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "resolve-task-notifications", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return 0, apperror.FromRemote(err)
	}
	return resp.Count, nil
}

func (a *notifierAdapter) DeleteByTypeAndTask(ctx context.Context, t domain.Type, taskID string) (int64, error) {
	req := TaskRequest{TaskID: taskID, Type: t}
	var resp CountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "delete-task-notifications", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return 0, apperror.FromRemote(err)
	}
	return resp.Count, nil
}

func (a *notifierAdapter) MarkRecipient(ctx context.Context, userID, taskID string, status domain.Status) error {
	req := MarkRecipientRequest{UserID: userID, TaskID: taskID, Status: status}
	var resp CountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "mark-recipient", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *notifierAdapter) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	req := ListRequest{UserID: userID}
	var resp ListResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "list-notifications", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Notifications, nil
}

func (a *notifierAdapter) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Notification, error) {
	req := UpdateStatusRequest{NotificationID: id, Status: status}
	var resp NotificationResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "update-notification-status", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Notification, nil
}

func (a *notifierAdapter) Delete(ctx context.Context, id string) error {
	req := DeleteRequest{NotificationID: id}
	var resp CountResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "delete-notification", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}
