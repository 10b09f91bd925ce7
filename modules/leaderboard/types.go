package leaderboard

import (
	"time"

	domain "github.com/example/lockin/domain/leaderboard"
)

// GroupRequest addresses one group's leaderboard.
type GroupRequest struct {
	GroupID string `json:"group_id"`
}

// EnsureResponse reports whether the group exists.
type EnsureResponse struct {
	Exists bool `json:"exists"`
}

// RecordCompletionRequest adds one completion to a group's ranking.
type RecordCompletionRequest struct {
	UserID     string `json:"user_id"`
	ActualTime int    `json:"actual_time"`
	GroupID    string `json:"group_id"`
	Confirmed  bool   `json:"confirmed"`
}

// RecomputeUserRequest rebuilds every group of a user.
type RecomputeUserRequest struct {
	UserID string `json:"user_id"`
}

// AckResponse acknowledges a write.
type AckResponse struct {
	Success bool `json:"success"`
}

// LeaderboardResponse holds an ordered leaderboard.
type LeaderboardResponse struct {
	GroupID string              `json:"group_id"`
	Entries []domain.WeeklyStat `json:"entries"`
}

// ResetRequest starts a new week. A zero WeekStart means now.
type ResetRequest struct {
	WeekStart time.Time `json:"week_start"`
}

// ResetResponse reports how many groups were reset.
type ResetResponse struct {
	Groups int `json:"groups"`
}
