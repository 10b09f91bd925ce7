package main

import (
	"context"
	"testing"
	"time"

	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/group"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func memoryConfig() Config {
	cfg := DefaultConfig()
	cfg.DBPath = ":memory:"
	return cfg
}

func TestRecomputeAndResetWeek(t *testing.T) {
	ctx := context.Background()

	err := withDB(memoryConfig(), func(db *gorm.DB) error {
		accounts := account.NewService(account.NewRepository(db))
		groups := group.NewService(group.NewRepository(db), events.Discard{})

		g, err := groups.Create(ctx, "alice", "study", false, nil)
		require.NoError(t, err)
		_, err = accounts.Ensure(ctx, "alice", "Alice")
		require.NoError(t, err)
		require.NoError(t, accounts.IncrementCompleted(ctx, "alice", 45))

		require.NoError(t, runRecompute(ctx, db, "alice"))

		lb := newLeaderboardService(db)
		entries, err := lb.GetLeaderboardByTasks(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].CompletedCount)
		assert.Equal(t, 45, entries[0].CompletedMinutes)

		require.NoError(t, runResetWeek(ctx, db, time.Now()))

		entries, err = lb.GetLeaderboardByTasks(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Zero(t, entries[0].CompletedCount)
		return nil
	})
	require.NoError(t, err)
}

func TestRecompute_RequiresUser(t *testing.T) {
	err := withDB(memoryConfig(), func(db *gorm.DB) error {
		return runRecompute(context.Background(), db, "")
	})
	assert.Error(t, err)
}

func TestSweep_EmptyDatabase(t *testing.T) {
	err := withDB(memoryConfig(), func(db *gorm.DB) error {
		return runSweep(context.Background(), db)
	})
	assert.NoError(t, err)
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "sweep", "reset-week", "recompute"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
