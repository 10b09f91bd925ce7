package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// TaskModule provides the task store.
type TaskModule struct {
	db            *gorm.DB
	service       *Service
	sweeper       *Sweeper
	sweepInterval time.Duration
	eventBus      mono.EventBus
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule. A non-positive sweepInterval
// disables the periodic sweep.
func NewModule(db *gorm.DB, sweepInterval time.Duration) *TaskModule {
	return &TaskModule{db: db, sweepInterval: sweepInterval}
}

func (m *TaskModule) Name() string {
	return "task"
}

// Dependencies orders the module after account, whose table the completion
// transaction writes.
func (m *TaskModule) Dependencies() []string {
	return []string{"account"}
}

// SetDependencyServiceContainer is a no-op: stats are written in-process so
// they share the completion's transaction.
func (m *TaskModule) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "edit-task", json.Unmarshal, json.Marshal, m.editTask,
	); err != nil {
		return fmt.Errorf("failed to register edit-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-task-confirmed", json.Unmarshal, json.Marshal, m.markConfirmed,
	); err != nil {
		return fmt.Errorf("failed to register mark-task-confirmed service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, get-task, edit-task, complete-task, mark-task-confirmed, delete-task, list-tasks")
	return nil
}

// Start migrates the tasks table and starts the dashboard sweep.
func (m *TaskModule) Start(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate tasks: %w", err)
	}
	stats := account.NewService(account.NewRepository(m.db))
	m.service = NewService(NewRepository(m.db), stats, events.NewBusPublisher(m.eventBus))

	if m.sweepInterval > 0 {
		m.sweeper = NewSweeper(m.service, m.sweepInterval)
		m.sweeper.Start()
		log.Printf("[task] Module started (sweep every %s)", m.sweepInterval)
		return nil
	}
	log.Println("[task] Module started (sweep disabled)")
	return nil
}

// Stop waits for an in-flight sweep to finish.
func (m *TaskModule) Stop(ctx context.Context) error {
	if m.sweeper != nil {
		if err := m.sweeper.Stop(ctx); err != nil {
			log.Printf("[task] Sweep shutdown timeout exceeded")
			return err
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"sweep_interval": m.sweepInterval.String()},
	}
}

func (m *TaskModule) createTask(ctx context.Context, req CreateInput, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) editTask(ctx context.Context, req EditTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Edit(ctx, req.TaskID, req.Changes())
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) completeTask(ctx context.Context, req CompleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Complete(ctx, req.TaskID, req.ActualTime)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) markConfirmed(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.MarkConfirmed(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{TaskID: req.TaskID}, err
	}
	return DeleteTaskResponse{Deleted: true, TaskID: req.TaskID}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.OwnerID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}
