package confirmation

import (
	domain "github.com/example/lockin/domain/confirmation"
)

// RequestConfirmationResponse returns the id of the new request.
type RequestConfirmationResponse struct {
	ConfirmationID string `json:"confirmation_id"`
}

// AnswerRequest is a peer's answer to a confirmation.
type AnswerRequest struct {
	TaskID string `json:"task_id"`
	PeerID string `json:"peer_id"`
}

// ConfirmationResponse wraps a single confirmation.
type ConfirmationResponse struct {
	Confirmation domain.Confirmation `json:"confirmation"`
}

// UserRequest addresses a requester or a peer.
type UserRequest struct {
	UserID string `json:"user_id"`
}

// ListConfirmationsResponse holds a list of confirmations.
type ListConfirmationsResponse struct {
	Confirmations []domain.Confirmation `json:"confirmations"`
}
