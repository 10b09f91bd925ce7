package api

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/confirmation"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/modules/leaderboard"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberredis "github.com/gofiber/storage/redis/v3"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	JWTSecret       string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// RedisAddr, when set, shares rate-limit counters between instances.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// APIModule exposes the REST API and the notification websocket.
type APIModule struct {
	cfg     Config
	app     *fiber.App
	h       *handlers
	hubStop context.CancelFunc
	limitDB *fiberredis.Storage
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.EventConsumerModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config) *APIModule {
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	return &APIModule{cfg: cfg, h: &handlers{hub: NewHub()}}
}

func (m *APIModule) Name() string {
	return "api"
}

func (m *APIModule) Dependencies() []string {
	return []string{"task", "confirmation", "notification", "group", "account", "leaderboard"}
}

func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.h.tasks = task.NewTaskAdapter(container)
	case "confirmation":
		m.h.confirmations = confirmation.NewConfirmationAdapter(container)
	case "notification":
		m.h.inbox = notification.NewInboxAdapter(container)
	case "group":
		m.h.groups = group.NewGroupAdminAdapter(container)
	case "account":
		m.h.accounts = account.NewStatsAdapter(container)
	case "leaderboard":
		m.h.leaderboard = leaderboard.NewLeaderboardAdapter(container)
	}
}

// RegisterEventConsumers pushes new notifications to connected recipients.
func (m *APIModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.NotificationCreatedV1, m.handleNotificationCreated, m); err != nil {
		return fmt.Errorf("failed to register NotificationCreated consumer: %w", err)
	}
	log.Printf("[api] Registered event consumers: NotificationCreated")
	return nil
}

func (m *APIModule) Start(_ context.Context) error {
	if m.h.tasks == nil || m.h.confirmations == nil || m.h.inbox == nil ||
		m.h.groups == nil || m.h.accounts == nil || m.h.leaderboard == nil {
		return fmt.Errorf("api dependencies not wired")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	m.app.Use(recover.New())
	m.app.Use(logger.New())
	m.app.Use(cors.New())

	var middleware []fiber.Handler
	if m.cfg.JWTSecret != "" {
		middleware = append(middleware, AuthMiddleware(m.cfg.JWTSecret))
	}
	if m.cfg.RateLimitMax > 0 {
		middleware = append(middleware, m.rateLimiter())
	}
	m.h.routes(m.app, middleware...)

	hubCtx, cancel := context.WithCancel(context.Background())
	m.hubStop = cancel
	go m.h.hub.Run(hubCtx)

	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s (auth: %t)", m.cfg.Addr, m.cfg.JWTSecret != "")
	return nil
}

func (m *APIModule) rateLimiter() fiber.Handler {
	cfg := limiter.Config{
		Max:        m.cfg.RateLimitMax,
		Expiration: m.cfg.RateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := c.Locals(UserIDKey).(string); ok && id != "" {
				return "user:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests",
			})
		},
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Minute
	}
	if m.cfg.RedisAddr != "" {
		host, port := parseRedisAddr(m.cfg.RedisAddr)
		m.limitDB = fiberredis.New(fiberredis.Config{
			Host:     host,
			Port:     port,
			Password: m.cfg.RedisPassword,
			Database: m.cfg.RedisDB,
			PoolSize: 10,
		})
		cfg.Storage = m.limitDB
		log.Printf("[api] Rate limit counters stored in Redis at %s", m.cfg.RedisAddr)
	}
	return limiter.New(cfg)
}

func (m *APIModule) Stop(_ context.Context) error {
	if m.hubStop != nil {
		m.hubStop()
		m.h.hub.Wait()
	}
	if m.app != nil {
		log.Println("[api] Shutting down HTTP server...")
		if err := m.app.Shutdown(); err != nil {
			return err
		}
	}
	if m.limitDB != nil {
		if err := m.limitDB.Close(); err != nil {
			log.Printf("[api] Error closing rate limit storage: %v", err)
		}
	}
	return nil
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
			"auth": m.cfg.JWTSecret != "",
		},
	}
}

func (m *APIModule) handleNotificationCreated(_ context.Context, e events.NotificationCreatedEvent, _ *mono.Msg) error {
	m.h.hub.Push(e.UserID, e)
	return nil
}

// parseRedisAddr parses "host:port", defaulting to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
