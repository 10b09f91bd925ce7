package nats

import (
	"context"
	"errors"
	"log"

	"github.com/go-monolith/mono"
)

// ErrNotConnected is returned when NATS is not connected.
var ErrNotConnected = errors.New("nats not connected")

// Module owns the JetStream connection used by the worker's durable queue.
type Module struct {
	client *Client
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a NATS module. The client is available immediately so
// other modules can be wired before the application starts.
func NewModule(cfg Config) *Module {
	return &Module{client: NewClient(cfg)}
}

func (m *Module) Name() string {
	return "nats"
}

// Start connects to NATS and declares the stream and consumer.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Connect(ctx); err != nil {
		return err
	}
	log.Println("[nats] Module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		return err
	}
	log.Println("[nats] Module stopped")
	return nil
}

// Client returns the JetStream client.
func (m *Module) Client() *Client {
	return m.client
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if !m.client.IsConnected() {
		return mono.HealthStatus{Healthy: false, Message: ErrNotConnected.Error()}
	}
	pending, err := m.client.Pending(ctx)
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "connected", Details: map[string]any{"pending": pending}}
}
