package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/lockin/domain/job"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{URL: "nats://example:4222"})
	if c.cfg.MaxDeliverCount != 5 {
		t.Errorf("expected MaxDeliverCount 5, got %d", c.cfg.MaxDeliverCount)
	}
	if c.cfg.AckWait != 30*time.Second {
		t.Errorf("expected AckWait 30s, got %v", c.cfg.AckWait)
	}
	if c.IsConnected() {
		t.Error("expected unconnected client")
	}
}

func TestClient_Unconnected(t *testing.T) {
	c := NewClient(DefaultConfig())
	ctx := context.Background()

	if err := c.Publish(ctx, job.RecomputeUser("u1", "test")); !errors.Is(err, job.ErrQueueUnavailable) {
		t.Errorf("Publish() error = %v, want ErrQueueUnavailable", err)
	}
	if _, err := c.Subscribe(ctx); !errors.Is(err, job.ErrQueueUnavailable) {
		t.Errorf("Subscribe() error = %v, want ErrQueueUnavailable", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestModule_HealthWhenDisconnected(t *testing.T) {
	m := NewModule(DefaultConfig())
	if m.Name() != "nats" {
		t.Errorf("unexpected name %q", m.Name())
	}
	if status := m.Health(context.Background()); status.Healthy {
		t.Error("expected unhealthy status before Start")
	}
}
