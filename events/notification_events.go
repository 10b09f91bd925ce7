package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationCreatedEvent carries a freshly stored notification for live delivery.
type NotificationCreatedEvent struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	FromUserID     string    `json:"from_user_id,omitempty"`
	GroupID        string    `json:"group_id,omitempty"`
	TaskID         string    `json:"task_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationCreatedV1 is the typed event definition for new notifications.
// Subject: events.notification.v1.notification-created
var NotificationCreatedV1 = helper.EventDefinition[NotificationCreatedEvent](
	"notification", "NotificationCreated", "v1",
)
