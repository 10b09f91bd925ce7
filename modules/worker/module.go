package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/example/lockin/domain/job"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/leaderboard"
	"github.com/example/lockin/modules/nats"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// WorkerModule turns stat and membership changes into leaderboard
// recompute jobs.
type WorkerModule struct {
	backend   string
	processor *Processor
	pool      *Pool
}

var _ mono.Module = (*WorkerModule)(nil)
var _ mono.DependentModule = (*WorkerModule)(nil)
var _ mono.EventConsumerModule = (*WorkerModule)(nil)
var _ mono.HealthCheckableModule = (*WorkerModule)(nil)

// NewModule creates a worker module backed by an in-memory queue.
func NewModule(cfg PoolConfig) *WorkerModule {
	return newModule(cfg, newMemoryQueue(cfg.QueueSize), BackendMemory)
}

// NewJetStreamModule creates a worker module backed by the durable
// JetStream queue. The nats module must be registered too.
func NewJetStreamModule(cfg PoolConfig, client *nats.Client) *WorkerModule {
	return newModule(cfg, &jetStreamQueue{client: client}, BackendJetStream)
}

func newModule(cfg PoolConfig, queue Queue, backend string) *WorkerModule {
	processor := &Processor{}
	return &WorkerModule{
		backend:   backend,
		processor: processor,
		pool:      NewPool(cfg, queue, processor),
	}
}

func (m *WorkerModule) Name() string {
	return "worker"
}

func (m *WorkerModule) Dependencies() []string {
	if m.backend == BackendJetStream {
		return []string{"leaderboard", "nats"}
	}
	return []string{"leaderboard"}
}

func (m *WorkerModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "leaderboard" {
		m.processor.leaderboard = leaderboard.NewLeaderboardAdapter(container)
	}
}

// RegisterEventConsumers subscribes to every event that changes a ranking.
func (m *WorkerModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskConfirmedV1, m.handleTaskConfirmed, m); err != nil {
		return fmt.Errorf("failed to register TaskConfirmed consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.GroupChangedV1, m.handleGroupChanged, m); err != nil {
		return fmt.Errorf("failed to register GroupChanged consumer: %w", err)
	}
	log.Printf("[worker] Registered event consumers: TaskCompleted, TaskConfirmed, GroupChanged")
	return nil
}

func (m *WorkerModule) Start(ctx context.Context) error {
	if m.processor.leaderboard == nil {
		return fmt.Errorf("leaderboard dependency not wired")
	}
	if err := m.pool.Start(ctx); err != nil {
		return err
	}
	log.Printf("[worker] Module started (backend: %s)", m.backend)
	return nil
}

func (m *WorkerModule) Stop(ctx context.Context) error {
	if err := m.pool.Stop(ctx); err != nil {
		return err
	}
	log.Println("[worker] Module stopped")
	return nil
}

func (m *WorkerModule) Health(_ context.Context) mono.HealthStatus {
	if !m.pool.IsRunning() {
		return mono.HealthStatus{Healthy: false, Message: "pool not running"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"backend": m.backend, "stats": m.pool.Stats()},
	}
}

// Pool returns the job pool.
func (m *WorkerModule) Pool() *Pool {
	return m.pool
}

func (m *WorkerModule) submit(ctx context.Context, j *job.Job) {
	if err := m.pool.Submit(ctx, j); err != nil {
		log.Printf("[worker] Warning: %v", err)
	}
}

func (m *WorkerModule) handleTaskCompleted(ctx context.Context, e events.TaskCompletedEvent, _ *mono.Msg) error {
	m.submit(ctx, job.RecomputeUser(e.OwnerID, "task "+e.TaskID+" completed"))
	return nil
}

func (m *WorkerModule) handleTaskConfirmed(ctx context.Context, e events.TaskConfirmedEvent, _ *mono.Msg) error {
	m.submit(ctx, job.RecomputeUser(e.OwnerID, "task "+e.TaskID+" confirmed"))
	return nil
}

func (m *WorkerModule) handleGroupChanged(ctx context.Context, e events.GroupChangedEvent, _ *mono.Msg) error {
	m.submit(ctx, job.RecomputeGroup(e.GroupID, "group "+e.Change))
	return nil
}
