package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Ordering(t *testing.T) {
	stats := []WeeklyStat{
		{UserID: "A", CompletedCount: 3, CompletedMinutes: 50},
		{UserID: "B", CompletedCount: 3, CompletedMinutes: 80},
		{UserID: "C", CompletedCount: 5, CompletedMinutes: 10},
	}

	byTask, byTime := Build(stats)

	assert.Equal(t, []TaskRank{
		{UserID: "C", CompletedCount: 5},
		{UserID: "B", CompletedCount: 3},
		{UserID: "A", CompletedCount: 3},
	}, byTask)
	assert.Equal(t, []TimeRank{
		{UserID: "B", CompletedMinutes: 80},
		{UserID: "A", CompletedMinutes: 50},
		{UserID: "C", CompletedMinutes: 10},
	}, byTime)
	assert.Equal(t, "A", stats[0].UserID, "input must not be reordered")
}

func TestWeeklyStats_Merge(t *testing.T) {
	r := Ranking{
		RankedByTask: []TaskRank{{UserID: "u1", CompletedCount: 2}},
		RankedByTime: []TimeRank{{UserID: "u2", CompletedMinutes: 30}, {UserID: "u1", CompletedMinutes: 90}},
	}

	assert.Equal(t, []WeeklyStat{
		{UserID: "u1", CompletedCount: 2, CompletedMinutes: 90},
		{UserID: "u2", CompletedCount: 0, CompletedMinutes: 30},
	}, r.WeeklyStats())
}

func TestSortByTime_TieBreak(t *testing.T) {
	stats := []WeeklyStat{
		{UserID: "z", CompletedMinutes: 10},
		{UserID: "a", CompletedMinutes: 10},
	}
	SortByTime(stats)
	assert.Equal(t, "a", stats[0].UserID)
}
