package main

import (
	"context"
	"fmt"
	"log"
	"time"

	domainaccount "github.com/example/lockin/domain/account"
	domaingroup "github.com/example/lockin/domain/group"
	domainleaderboard "github.com/example/lockin/domain/leaderboard"
	domaintask "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/cache"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/modules/leaderboard"
	"github.com/example/lockin/modules/task"
	"github.com/example/lockin/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// The one-shot commands run the services directly against the database,
// without the module runtime. They are meant for cron and operators.

func sweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Hide every finished task from dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return withDB(cfg, func(db *gorm.DB) error {
				return runSweep(cmd.Context(), db)
			})
		},
	}
}

func resetWeekCmd(configPath *string) *cobra.Command {
	var weekStart string

	cmd := &cobra.Command{
		Use:   "reset-week",
		Short: "Zero every group's weekly leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if weekStart != "" {
				t, err := time.Parse(time.RFC3339, weekStart)
				if err != nil {
					return fmt.Errorf("invalid --week-start: %w", err)
				}
				start = t
			}
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return withDB(cfg, func(db *gorm.DB) error {
				return runResetWeek(cmd.Context(), db, start)
			})
		},
	}

	cmd.Flags().StringVar(&weekStart, "week-start", "", "Start of the new week (RFC3339, default now)")
	return cmd
}

func recomputeCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the leaderboards of every group a user belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return withDB(cfg, func(db *gorm.DB) error {
				return runRecompute(cmd.Context(), db, userID)
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose groups are recomputed")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func withDB(cfg Config, fn func(db *gorm.DB) error) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Printf("Warning: failed to close database: %v", err)
		}
	}()
	if err := db.AutoMigrate(&domainaccount.Account{}, &domaingroup.Group{}, &domaingroup.Member{},
		&domaintask.Task{}, &domainleaderboard.Ranking{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return fn(db)
}

func runSweep(ctx context.Context, db *gorm.DB) error {
	accounts := account.NewService(account.NewRepository(db))
	svc := task.NewService(task.NewRepository(db), accounts, events.Discard{})
	n, err := svc.SweepHidden(ctx)
	if err != nil {
		return err
	}
	log.Printf("Hid %d finished tasks", n)
	return nil
}

func runResetWeek(ctx context.Context, db *gorm.DB, weekStart time.Time) error {
	n, err := newLeaderboardService(db).ResetWeeklyStats(ctx, weekStart)
	if err != nil {
		return err
	}
	log.Printf("Reset %d group leaderboards (week start %s)", n, weekStart.Format(time.RFC3339))
	return nil
}

func runRecompute(ctx context.Context, db *gorm.DB, userID string) error {
	if err := newLeaderboardService(db).RecomputeForUser(ctx, userID); err != nil {
		return err
	}
	log.Printf("Recomputed leaderboards of %s", userID)
	return nil
}

// newLeaderboardService builds an uncached leaderboard service. A running
// server keeps its cached rankings until their TTL expires.
func newLeaderboardService(db *gorm.DB) *leaderboard.Service {
	groups := group.NewService(group.NewRepository(db), events.Discard{})
	accounts := account.NewService(account.NewRepository(db))
	return leaderboard.NewService(leaderboard.NewRepository(db), groups, accounts, cache.Noop{})
}
