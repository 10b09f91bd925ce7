// Package events declares the typed events exchanged between modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCompletedEvent is emitted once a completion and its stat increment are durable.
type TaskCompletedEvent struct {
	TaskID      string    `json:"task_id"`
	OwnerID     string    `json:"owner_id"`
	ActualTime  int       `json:"actual_time"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskDeletedEvent is emitted when a task is removed by its owner.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
