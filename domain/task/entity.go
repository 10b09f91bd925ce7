// Package task defines the task entity and its lifecycle.
package task

import (
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusConfirmed Status = "confirmed"
)

// IsTerminal reports whether the task has been completed at least once.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusConfirmed
}

// Task is a unit of work owned by a single user.
// ActualTime is set iff Status is not pending.
type Task struct {
	ID                  string     `gorm:"primarykey;size:36" json:"taskId"`
	OwnerID             string     `gorm:"size:64;not null;index" json:"ownerId"`
	Title               string     `gorm:"size:200;not null" json:"title"`
	Description         string     `gorm:"size:2000" json:"description,omitempty"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	EstimatedTime       int        `gorm:"not null" json:"estimatedTime"`
	ActualTime          *int       `json:"actualTime,omitempty"`
	Status              Status     `gorm:"size:16;not null;index" json:"status"`
	HiddenFromDashboard bool       `gorm:"not null;default:false" json:"hiddenFromDashboard"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TableName returns the table name for Task.
func (Task) TableName() string {
	return "tasks"
}

// Changes is a partial edit. Nil fields are left untouched.
type Changes struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	EstimatedTime *int
}

// Empty reports whether no field was supplied.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.DueDate == nil && c.EstimatedTime == nil
}
