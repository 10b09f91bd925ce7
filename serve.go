package main

import (
	"context"
	"log"
	"os"

	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/api"
	"github.com/example/lockin/modules/cache"
	"github.com/example/lockin/modules/confirmation"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/modules/leaderboard"
	natsmod "github.com/example/lockin/modules/nats"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/example/lockin/modules/worker"
	"github.com/example/lockin/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, background workers and the task sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg Config) error {
	log.Println("=== lockin ===")
	log.Printf("Database: %s", cfg.DBPath)
	log.Printf("HTTP: %s", cfg.HTTPAddr)
	log.Printf("Queue backend: %s (workers: %d, queue: %d, retries: %d)", cfg.QueueBackend, cfg.Workers, cfg.QueueSize, cfg.MaxRetries)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		_ = storage.Close(db)
		return err
	}

	// Leaves first: each module is registered after the modules it depends on.
	cacheModule := cache.NewModule(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	app.Register(cacheModule)
	app.Register(account.NewModule(db))
	app.Register(group.NewModule(db))
	app.Register(notification.NewModule(db))
	app.Register(task.NewModule(db, cfg.SweepInterval))
	app.Register(confirmation.NewModule(db))
	app.Register(leaderboard.NewModule(db, cacheModule))

	if cfg.QueueBackend == worker.BackendJetStream {
		natsModule := natsmod.NewModule(natsmod.Config{
			URL: cfg.NATSURL,
			// the first delivery plus MaxRetries redeliveries
			MaxDeliverCount: cfg.MaxRetries + 1,
			AckWait:         cfg.JobTimeout,
		})
		app.Register(natsModule)
		app.Register(worker.NewJetStreamModule(cfg.PoolConfig(), natsModule.Client()))
	} else {
		app.Register(worker.NewModule(cfg.PoolConfig()))
	}

	app.Register(api.NewModule(api.Config{
		Addr:            cfg.HTTPAddr,
		JWTSecret:       cfg.JWTSecret,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
	}))

	if err := app.Start(context.Background()); err != nil {
		_ = storage.Close(db)
		return err
	}

	log.Println("=== Application Started ===")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				err := app.Stop(ctx)
				if cerr := storage.Close(db); cerr != nil {
					log.Printf("Warning: failed to close database: %v", cerr)
				}
				return err
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}
