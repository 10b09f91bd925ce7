package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/leaderboard"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RecomputerPort is what the completion pipeline needs from the leaderboard.
type RecomputerPort interface {
	RecomputeForUser(ctx context.Context, userID string) error
	RecomputeGroup(ctx context.Context, groupID string) error
}

// LeaderboardPort exposes every leaderboard operation.
type LeaderboardPort interface {
	RecomputerPort
	EnsureRankingArrays(ctx context.Context, groupID string) (bool, error)
	RecordCompletion(ctx context.Context, userID string, actualTime int, groupID string, confirmed bool) error
	GetLeaderboardByTasks(ctx context.Context, groupID string) ([]domain.WeeklyStat, error)
	GetLeaderboardByTime(ctx context.Context, groupID string) ([]domain.WeeklyStat, error)
	ResetWeeklyStats(ctx context.Context, weekStart time.Time) (int, error)
}

var _ LeaderboardPort = (*Service)(nil)

// leaderboardAdapter wraps ServiceContainer for type-safe cross-module communication.
type leaderboardAdapter struct {
	container mono.ServiceContainer
}

// NewLeaderboardAdapter creates a new adapter for leaderboard services.
func NewLeaderboardAdapter(container mono.ServiceContainer) LeaderboardPort {
	if container == nil {
		panic("leaderboard adapter requires non-nil ServiceContainer")
	}
	return &leaderboardAdapter{container: container}
}

func (a *leaderboardAdapter) RecomputeForUser(ctx context.Context, userID string) error {
	req := RecomputeUserRequest{UserID: userID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "recompute-user", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *leaderboardAdapter) RecomputeGroup(ctx context.Context, groupID string) error {
	req := GroupRequest{GroupID: groupID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "recompute-group", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *leaderboardAdapter) EnsureRankingArrays(ctx context.Context, groupID string) (bool, error) {
	req := GroupRequest{GroupID: groupID}
	var resp EnsureResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "ensure-ranking", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return false, apperror.FromRemote(err)
	}
	return resp.Exists, nil
}

func (a *leaderboardAdapter) RecordCompletion(ctx context.Context, userID string, actualTime int, groupID string, confirmed bool) error {
	req := RecordCompletionRequest{UserID: userID, ActualTime: actualTime, GroupID: groupID, Confirmed: confirmed}
	var resp AckResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "record-completion", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return apperror.FromRemote(err)
	}
	return nil
}

func (a *leaderboardAdapter) GetLeaderboardByTasks(ctx context.Context, groupID string) ([]domain.WeeklyStat, error) {
	req := GroupRequest{GroupID: groupID}
	var resp LeaderboardResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "leaderboard-by-tasks", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Entries, nil
}

func (a *leaderboardAdapter) GetLeaderboardByTime(ctx context.Context, groupID string) ([]domain.WeeklyStat, error) {
	req := GroupRequest{GroupID: groupID}
	var resp LeaderboardResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "leaderboard-by-time", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, apperror.FromRemote(err)
	}
	return resp.Entries, nil
}

func (a *leaderboardAdapter) ResetWeeklyStats(ctx context.Context, weekStart time.Time) (int, error) {
	req := ResetRequest{WeekStart: weekStart}
	var resp ResetResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "reset-weekly-stats", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return 0, apperror.FromRemote(err)
	}
	return resp.Groups, nil
}
