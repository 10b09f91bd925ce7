package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings. An empty Addr disables caching.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Module owns the Redis client shared by cached readers.
type Module struct {
	cfg    Config
	client *redis.Client
	store  *RedisStore
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a cache module.
func NewModule(cfg Config) *Module {
	if cfg.Prefix == "" {
		cfg.Prefix = "lockin:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	return &Module{cfg: cfg}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Init connects to Redis when an address is configured.
func (m *Module) Init(_ mono.ServiceContainer) error {
	if m.cfg.Addr == "" {
		log.Println("[cache] Redis not configured, leaderboard reads are uncached")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.cfg.Addr,
		Password:     m.cfg.Password,
		DB:           m.cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Ping(ctx).Err(); err != nil {
		_ = m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.store = NewRedisStore(m.client, m.cfg.Prefix, m.cfg.TTL)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.cfg.Addr, m.cfg.Prefix, m.cfg.TTL)
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[cache] Module started")
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Store returns the active store, or Noop when Redis is disabled.
func (m *Module) Store() Store {
	if m.store == nil {
		return Noop{}
	}
	return m.store
}

// Health reports the Redis connection state and hit statistics.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: true, Message: "disabled"}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	stats := m.store.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "connected",
		Details: map[string]any{
			"addr":     m.cfg.Addr,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate,
		},
	}
}
