// Package leaderboard defines the per-group ranking tables.
package leaderboard

import (
	"sort"
	"time"
)

// TaskRank is a member's completed-task count for the week.
type TaskRank struct {
	UserID         string `json:"userId"`
	CompletedCount int    `json:"completedCount"`
}

// TimeRank is a member's completed minutes for the week.
type TimeRank struct {
	UserID           string `json:"userId"`
	CompletedMinutes int    `json:"completedMinutes"`
}

// Ranking holds a group's two ranking lists. Nil lists mean the group was
// never initialised.
type Ranking struct {
	GroupID      string     `gorm:"primarykey;size:36" json:"groupId"`
	RankedByTask []TaskRank `gorm:"serializer:json;type:text" json:"rankedByTask"`
	RankedByTime []TimeRank `gorm:"serializer:json;type:text" json:"rankedByTime"`
	WeekStart    time.Time  `json:"weekStart"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName returns the table name for Ranking.
func (Ranking) TableName() string {
	return "group_rankings"
}

// WeeklyStat merges a member's entries from both lists.
type WeeklyStat struct {
	UserID           string `json:"userId"`
	CompletedCount   int    `json:"completedCount"`
	CompletedMinutes int    `json:"completedMinutes"`
}

// WeeklyStats joins the two lists by user. Users that only appear in the
// time list are included with a zero count.
func (r Ranking) WeeklyStats() []WeeklyStat {
	minutes := make(map[string]int, len(r.RankedByTime))
	for _, e := range r.RankedByTime {
		minutes[e.UserID] = e.CompletedMinutes
	}
	seen := make(map[string]bool, len(r.RankedByTask))
	stats := make([]WeeklyStat, 0, len(r.RankedByTask))
	for _, e := range r.RankedByTask {
		seen[e.UserID] = true
		stats = append(stats, WeeklyStat{UserID: e.UserID, CompletedCount: e.CompletedCount, CompletedMinutes: minutes[e.UserID]})
	}
	for _, e := range r.RankedByTime {
		if !seen[e.UserID] {
			stats = append(stats, WeeklyStat{UserID: e.UserID, CompletedMinutes: e.CompletedMinutes})
		}
	}
	return stats
}

// SortByTasks orders by count desc, then minutes desc, then user id.
func SortByTasks(stats []WeeklyStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.CompletedCount != b.CompletedCount {
			return a.CompletedCount > b.CompletedCount
		}
		if a.CompletedMinutes != b.CompletedMinutes {
			return a.CompletedMinutes > b.CompletedMinutes
		}
		return a.UserID < b.UserID
	})
}

// SortByTime orders by minutes desc, then user id.
func SortByTime(stats []WeeklyStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.CompletedMinutes != b.CompletedMinutes {
			return a.CompletedMinutes > b.CompletedMinutes
		}
		return a.UserID < b.UserID
	})
}

// Build produces both ranking lists from member stats.
func Build(stats []WeeklyStat) ([]TaskRank, []TimeRank) {
	byTask := append([]WeeklyStat(nil), stats...)
	SortByTasks(byTask)
	byTime := append([]WeeklyStat(nil), stats...)
	SortByTime(byTime)

	tasks := make([]TaskRank, 0, len(byTask))
	for _, s := range byTask {
		tasks = append(tasks, TaskRank{UserID: s.UserID, CompletedCount: s.CompletedCount})
	}
	times := make([]TimeRank, 0, len(byTime))
	for _, s := range byTime {
		times = append(times, TimeRank{UserID: s.UserID, CompletedMinutes: s.CompletedMinutes})
	}
	return tasks, times
}
