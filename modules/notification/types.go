package notification

import (
	domain "github.com/example/lockin/domain/notification"
)

// CreateInput describes a notification to store.
type CreateInput struct {
	UserID       string       `json:"user_id"`
	Type         domain.Type  `json:"type"`
	Message      string       `json:"message"`
	GroupID      string       `json:"group_id,omitempty"`
	GroupName    string       `json:"group_name,omitempty"`
	FromUserID   string       `json:"from_user_id,omitempty"`
	FromUserName string       `json:"from_user_name,omitempty"`
	Extra        domain.Extra `json:"extra"`
}

// NotificationResponse wraps a single notification.
type NotificationResponse struct {
	Notification domain.Notification `json:"notification"`
}

// TaskRequest addresses every notification about a task.
type TaskRequest struct {
	TaskID string      `json:"task_id"`
	Type   domain.Type `json:"type,omitempty"`
}

// MarkRecipientRequest records a peer's answer on their notifications.
type MarkRecipientRequest struct {
	UserID string        `json:"user_id"`
	TaskID string        `json:"task_id"`
	Status domain.Status `json:"status"`
}

// CountResponse reports how many records a bulk operation touched.
type CountResponse struct {
	Count int64 `json:"count"`
}

// ListRequest lists a user's notifications.
type ListRequest struct {
	UserID string `json:"user_id"`
}

// ListResponse holds a user's notifications.
type ListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// UpdateStatusRequest answers a notification.
type UpdateStatusRequest struct {
	NotificationID string        `json:"notification_id"`
	Status         domain.Status `json:"status"`
}

// DeleteRequest removes a notification.
type DeleteRequest struct {
	NotificationID string `json:"notification_id"`
}
