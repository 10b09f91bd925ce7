package api

import (
	"time"

	domainaccount "github.com/example/lockin/domain/account"
	domainconfirmation "github.com/example/lockin/domain/confirmation"
	domainleaderboard "github.com/example/lockin/domain/leaderboard"
	domainnotification "github.com/example/lockin/domain/notification"
	domaintask "github.com/example/lockin/domain/task"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	OwnerID       string     `json:"ownerId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime int        `json:"estimatedTime"`
}

// EditTaskRequest is the body of PATCH /tasks/:id.
type EditTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime *int       `json:"estimatedTime"`
}

// CompleteTaskRequest is the body of POST /tasks/:id/complete.
type CompleteTaskRequest struct {
	ActualTime int `json:"actualTime"`
}

// TaskListResponse lists a user's tasks.
type TaskListResponse struct {
	Tasks []domaintask.Task `json:"tasks"`
}

// RequestConfirmationRequest is the body of POST /confirmations.
type RequestConfirmationRequest struct {
	TaskID      string   `json:"taskId"`
	RequestedBy string   `json:"requestedBy"`
	PeerIDs     []string `json:"peerIds"`
	ActualTime  int      `json:"actualTime"`
	TaskName    string   `json:"taskName"`
}

// RequestConfirmationResponse carries the new confirmation id.
type RequestConfirmationResponse struct {
	ConfirmationID string `json:"confirmationId"`
}

// AnswerRequest is the body of the confirm and deny endpoints.
type AnswerRequest struct {
	PeerID string `json:"peerId"`
}

// ConfirmationListResponse lists confirmations.
type ConfirmationListResponse struct {
	Confirmations []domainconfirmation.Confirmation `json:"confirmations"`
}

// NotificationListResponse lists a user's notifications.
type NotificationListResponse struct {
	Notifications []domainnotification.Notification `json:"notifications"`
}

// UpdateNotificationRequest is the body of PATCH /notifications/:id.
type UpdateNotificationRequest struct {
	Status domainnotification.Status `json:"status"`
}

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	OwnerID              string   `json:"ownerId"`
	Name                 string   `json:"name"`
	ConfirmationRequired bool     `json:"confirmationRequired"`
	InviteUserIDs        []string `json:"inviteUserIds"`
}

// AddMemberRequest is the body of POST /groups/:id/members.
type AddMemberRequest struct {
	UserID string `json:"userId"`
}

// PolicyRequest is the body of PUT /groups/:id/policy.
type PolicyRequest struct {
	ConfirmationRequired bool `json:"confirmationRequired"`
}

// LeaderboardResponse is an ordered leaderboard.
type LeaderboardResponse struct {
	GroupID string                         `json:"groupId"`
	OrderBy string                         `json:"orderBy"`
	Entries []domainleaderboard.WeeklyStat `json:"entries"`
}

// RecordCompletionRequest is the body of POST /leaderboard/completions.
type RecordCompletionRequest struct {
	UserID     string `json:"userId"`
	ActualTime int    `json:"actualTime"`
	GroupID    string `json:"groupId"`
	Confirmed  bool   `json:"confirmed"`
}

// ResetRequest is the optional body of POST /leaderboard/reset.
type ResetRequest struct {
	WeekStart *time.Time `json:"weekStart"`
}

// ResetResponse reports how many groups were reset.
type ResetResponse struct {
	Groups int `json:"groups"`
}

// EnsureAccountRequest is the body of PUT /users/:userId.
type EnsureAccountRequest struct {
	Name string `json:"name"`
}

// StatsResponse is a user's lifetime totals.
type StatsResponse struct {
	Account domainaccount.Account `json:"account"`
}

// SuccessResponse acknowledges a write without a body of its own.
type SuccessResponse struct {
	Success bool `json:"success"`
}
