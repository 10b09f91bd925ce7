package task

import (
	"context"
	"encoding/json"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations other modules depend on.
type TaskPort interface {
	Create(ctx context.Context, in CreateInput) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Edit(ctx context.Context, id string, c domain.Changes) (*domain.Task, error)
	Complete(ctx context.Context, id string, actualTime int) (*domain.Task, error)
	MarkConfirmed(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
}

var _ TaskPort = (*Service)(nil)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "create-task", json.Marshal, json.Unmarshal, &in, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) Get(ctx context.Context, id string) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &TaskIDRequest{TaskID: id}, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) Edit(ctx context.Context, id string, c domain.Changes) (*domain.Task, error) {
	req := EditTaskRequest{
		TaskID:        id,
		Title:         c.Title,
		Description:   c.Description,
		DueDate:       c.DueDate,
		EstimatedTime: c.EstimatedTime,
	}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "edit-task", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) Complete(ctx context.Context, id string, actualTime int) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "complete-task", json.Marshal, json.Unmarshal, &CompleteTaskRequest{TaskID: id, ActualTime: actualTime}, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) MarkConfirmed(ctx context.Context, id string) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "mark-task-confirmed", json.Marshal, json.Unmarshal, &TaskIDRequest{TaskID: id}, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) Delete(ctx context.Context, id string) error {
	req := TaskIDRequest{TaskID: id}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *taskAdapter) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, &ListTasksRequest{OwnerID: ownerID}, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Tasks, nil
}
