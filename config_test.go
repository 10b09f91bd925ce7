package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/lockin/modules/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, worker.BackendMemory, cfg.QueueBackend)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockin.yaml")
	yaml := "db_path: /tmp/from-file.db\nworkers: 8\nsweep_interval: 15m\nqueue_backend: jetstream\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("LOCKIN_WORKERS", "2")
	t.Setenv("LOCKIN_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.DBPath)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, worker.BackendJetStream, cfg.QueueBackend)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, true},
		{"no queue", func(c *Config) { c.QueueSize = 0 }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, false},
		{"unknown backend", func(c *Config) { c.QueueBackend = "kafka" }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_PoolConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.RetryBaseDelay = time.Second

	pool := cfg.PoolConfig()
	assert.Equal(t, 3, pool.NumWorkers)
	assert.Equal(t, time.Second, pool.BaseRetryDelay)
	assert.Equal(t, cfg.JobTimeout, pool.ProcessTimeout)
}
