package task

import (
	"time"

	domain "github.com/example/lockin/domain/task"
)

// TaskIDRequest addresses a single task.
type TaskIDRequest struct {
	TaskID string `json:"task_id"`
}

// EditTaskRequest is a partial edit; nil fields are left untouched.
type EditTaskRequest struct {
	TaskID        string     `json:"task_id"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimatedTime *int       `json:"estimated_time,omitempty"`
}

// Changes converts the request to a domain edit.
func (r EditTaskRequest) Changes() domain.Changes {
	return domain.Changes{
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		EstimatedTime: r.EstimatedTime,
	}
}

// CompleteTaskRequest completes a task.
type CompleteTaskRequest struct {
	TaskID     string `json:"task_id"`
	ActualTime int    `json:"actual_time"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task domain.Task `json:"task"`
}

// ListTasksRequest lists an owner's dashboard.
type ListTasksRequest struct {
	OwnerID string `json:"owner_id"`
}

// ListTasksResponse holds an owner's dashboard.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// DeleteTaskResponse acknowledges a deletion.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}
