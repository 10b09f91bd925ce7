package confirmation

import (
	"context"
	"encoding/json"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/confirmation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ConfirmationPort defines the confirmation workflow as seen by the API.
type ConfirmationPort interface {
	RequestConfirmation(ctx context.Context, in RequestInput) (string, error)
	ConfirmTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error)
	DenyTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error)
	GetConfirmations(ctx context.Context, userID string) ([]domain.Confirmation, error)
	GetPendingConfirmationsForPeer(ctx context.Context, peerID string) ([]domain.Confirmation, error)
}

var _ ConfirmationPort = (*Service)(nil)

// confirmationAdapter wraps ServiceContainer for type-safe cross-module communication.
type confirmationAdapter struct {
	container mono.ServiceContainer
}

// NewConfirmationAdapter creates a new adapter for confirmation services.
func NewConfirmationAdapter(container mono.ServiceContainer) ConfirmationPort {
	if container == nil {
		panic("confirmation adapter requires non-nil ServiceContainer")
	}
	return &confirmationAdapter{container: container}
}

func (a *confirmationAdapter) RequestConfirmation(ctx context.Context, in RequestInput) (string, error) {
	var resp RequestConfirmationResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "request-confirmation", json.Marshal, json.Unmarshal, &in, &resp); err != nil {
		return "", apperror.FromRemote(err)
	}
	return resp.ConfirmationID, nil
}

func (a *confirmationAdapter) ConfirmTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error) {
	req := AnswerRequest{TaskID: taskID, PeerID: peerID}
	var resp ConfirmationResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "confirm-task", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Confirmation, nil
}

func (a *confirmationAdapter) DenyTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error) {
	req := AnswerRequest{TaskID: taskID, PeerID: peerID}
	var resp ConfirmationResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "deny-task", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Confirmation, nil
}

func (a *confirmationAdapter) GetConfirmations(ctx context.Context, userID string) ([]domain.Confirmation, error) {
	req := UserRequest{UserID: userID}
	var resp ListConfirmationsResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-confirmations", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Confirmations, nil
}

func (a *confirmationAdapter) GetPendingConfirmationsForPeer(ctx context.Context, peerID string) ([]domain.Confirmation, error) {
	req := UserRequest{UserID: peerID}
	var resp ListConfirmationsResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-pending-confirmations", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Confirmations, nil
}
