// Package notification defines per-recipient notification records.
package notification

import "time"

// Type is the kind of notification.
type Type string

const (
	TypeGroupInvite      Type = "group_invite"
	TypeInfo             Type = "info"
	TypeWarning          Type = "warning"
	TypeTaskConfirmation Type = "task_confirmation"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeGroupInvite, TypeInfo, TypeWarning, TypeTaskConfirmation:
		return true
	}
	return false
}

// Status is the recipient's response to a notification.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusDeclined
}

// IsTerminal reports whether the recipient has answered.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Notification is delivered to a single user.
type Notification struct {
	ID           string    `gorm:"primarykey;size:36" json:"notificationId"`
	UserID       string    `gorm:"size:64;not null;index" json:"userId"`
	Type         Type      `gorm:"size:32;not null;index" json:"type"`
	Message      string    `gorm:"size:1000" json:"message"`
	Status       Status    `gorm:"size:16;not null" json:"status"`
	GroupID      string    `gorm:"size:36;index" json:"groupId,omitempty"`
	GroupName    string    `gorm:"size:100" json:"groupName,omitempty"`
	FromUserID   string    `gorm:"size:64" json:"fromUserId,omitempty"`
	FromUserName string    `gorm:"size:100" json:"fromUserName,omitempty"`
	Extra        Extra     `gorm:"embedded;embeddedPrefix:extra_" json:"extra"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName returns the table name for Notification.
func (Notification) TableName() string {
	return "notifications"
}

// Extra correlates a task_confirmation notification with its task.
type Extra struct {
	TaskID     string `gorm:"size:36;index" json:"taskId,omitempty"`
	TaskName   string `gorm:"size:200" json:"taskName,omitempty"`
	ActualTime int    `json:"actualTime,omitempty"`
}
