package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/lockin/domain/leaderboard"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/cache"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// LeaderboardModule maintains weekly group rankings.
type LeaderboardModule struct {
	db          *gorm.DB
	cacheModule *cache.Module
	service     *Service
	groupPort   group.GroupPort
	statsPort   account.StatsPort
}

var _ mono.Module = (*LeaderboardModule)(nil)
var _ mono.ServiceProviderModule = (*LeaderboardModule)(nil)
var _ mono.DependentModule = (*LeaderboardModule)(nil)
var _ mono.HealthCheckableModule = (*LeaderboardModule)(nil)

// NewModule creates a new LeaderboardModule. cacheModule may be nil.
func NewModule(db *gorm.DB, cacheModule *cache.Module) *LeaderboardModule {
	return &LeaderboardModule{db: db, cacheModule: cacheModule}
}

func (m *LeaderboardModule) Name() string {
	return "leaderboard"
}

func (m *LeaderboardModule) Dependencies() []string {
	return []string{"group", "account"}
}

func (m *LeaderboardModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "group":
		m.groupPort = group.NewGroupAdapter(container)
	case "account":
		m.statsPort = account.NewStatsAdapter(container)
	}
}

func (m *LeaderboardModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "ensure-ranking", json.Unmarshal, json.Marshal, m.ensureRanking,
	); err != nil {
		return fmt.Errorf("failed to register ensure-ranking service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "record-completion", json.Unmarshal, json.Marshal, m.recordCompletion,
	); err != nil {
		return fmt.Errorf("failed to register record-completion service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "recompute-user", json.Unmarshal, json.Marshal, m.recomputeUser,
	); err != nil {
		return fmt.Errorf("failed to register recompute-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "recompute-group", json.Unmarshal, json.Marshal, m.recomputeGroup,
	); err != nil {
		return fmt.Errorf("failed to register recompute-group service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "leaderboard-by-tasks", json.Unmarshal, json.Marshal, m.byTasks,
	); err != nil {
		return fmt.Errorf("failed to register leaderboard-by-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "leaderboard-by-time", json.Unmarshal, json.Marshal, m.byTime,
	); err != nil {
		return fmt.Errorf("failed to register leaderboard-by-time service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "reset-weekly-stats", json.Unmarshal, json.Marshal, m.resetWeeklyStats,
	); err != nil {
		return fmt.Errorf("failed to register reset-weekly-stats service: %w", err)
	}

	log.Printf("[leaderboard] Registered services: ensure-ranking, record-completion, recompute-user, recompute-group, leaderboard-by-tasks, leaderboard-by-time, reset-weekly-stats")
	return nil
}

func (m *LeaderboardModule) Start(ctx context.Context) error {
	if m.groupPort == nil || m.statsPort == nil {
		return fmt.Errorf("group and account dependencies not wired")
	}
	if err := m.db.WithContext(ctx).AutoMigrate(&domain.Ranking{}); err != nil {
		return fmt.Errorf("failed to migrate rankings: %w", err)
	}

	var store cache.Store = cache.Noop{}
	if m.cacheModule != nil {
		store = m.cacheModule.Store()
	}
	m.service = NewService(NewRepository(m.db), m.groupPort, m.statsPort, store)
	log.Printf("[leaderboard] Module started (cache: %T)", store)
	return nil
}

func (m *LeaderboardModule) Stop(_ context.Context) error {
	log.Println("[leaderboard] Module stopped")
	return nil
}

func (m *LeaderboardModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *LeaderboardModule) ensureRanking(ctx context.Context, req GroupRequest, _ *mono.Msg) (EnsureResponse, error) {
	ok, err := m.service.EnsureRankingArrays(ctx, req.GroupID)
	if err != nil {
		return EnsureResponse{}, err
	}
	return EnsureResponse{Exists: ok}, nil
}

func (m *LeaderboardModule) recordCompletion(ctx context.Context, req RecordCompletionRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.RecordCompletion(ctx, req.UserID, req.ActualTime, req.GroupID, req.Confirmed); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *LeaderboardModule) recomputeUser(ctx context.Context, req RecomputeUserRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.RecomputeForUser(ctx, req.UserID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *LeaderboardModule) recomputeGroup(ctx context.Context, req GroupRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.RecomputeGroup(ctx, req.GroupID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{Success: true}, nil
}

func (m *LeaderboardModule) byTasks(ctx context.Context, req GroupRequest, _ *mono.Msg) (LeaderboardResponse, error) {
	entries, err := m.service.GetLeaderboardByTasks(ctx, req.GroupID)
	if err != nil {
		return LeaderboardResponse{}, err
	}
	return LeaderboardResponse{GroupID: req.GroupID, Entries: entries}, nil
}

func (m *LeaderboardModule) byTime(ctx context.Context, req GroupRequest, _ *mono.Msg) (LeaderboardResponse, error) {
	entries, err := m.service.GetLeaderboardByTime(ctx, req.GroupID)
	if err != nil {
		return LeaderboardResponse{}, err
	}
	return LeaderboardResponse{GroupID: req.GroupID, Entries: entries}, nil
}

func (m *LeaderboardModule) resetWeeklyStats(ctx context.Context, req ResetRequest, _ *mono.Msg) (ResetResponse, error) {
	n, err := m.service.ResetWeeklyStats(ctx, req.WeekStart)
	if err != nil {
		return ResetResponse{}, err
	}
	return ResetResponse{Groups: n}, nil
}
