package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/lockin/modules/worker"
	"github.com/spf13/viper"
)

// Config holds every setting of the lockin binary. Values come from
// defaults, then the optional YAML file, then LOCKIN_* environment
// variables.
type Config struct {
	DBPath          string        `mapstructure:"db_path"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`

	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`
	JobTimeout     time.Duration `mapstructure:"job_timeout"`
	QueueBackend   string        `mapstructure:"queue_backend"`
	NATSURL        string        `mapstructure:"nats_url"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	JWTSecret       string        `mapstructure:"jwt_secret"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	pool := worker.DefaultPoolConfig()
	return Config{
		DBPath:          "./lockin.db",
		HTTPAddr:        ":3000",
		ShutdownTimeout: 30 * time.Second,
		SweepInterval:   time.Hour,

		Workers:        pool.NumWorkers,
		QueueSize:      pool.QueueSize,
		MaxRetries:     pool.MaxRetries,
		RetryBaseDelay: pool.BaseRetryDelay,
		RetryMaxDelay:  pool.MaxRetryDelay,
		JobTimeout:     pool.ProcessTimeout,
		QueueBackend:   worker.BackendMemory,
		NATSURL:        "nats://127.0.0.1:4222",

		CacheTTL: time.Minute,

		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
}

// LoadConfig reads the configuration. path may be empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix("LOCKIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can find it on Unmarshal.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("http_addr", cfg.HTTPAddr)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("sweep_interval", cfg.SweepInterval)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("queue_size", cfg.QueueSize)
	v.SetDefault("max_retries", cfg.MaxRetries)
	v.SetDefault("retry_base_delay", cfg.RetryBaseDelay)
	v.SetDefault("retry_max_delay", cfg.RetryMaxDelay)
	v.SetDefault("job_timeout", cfg.JobTimeout)
	v.SetDefault("queue_backend", cfg.QueueBackend)
	v.SetDefault("nats_url", cfg.NATSURL)
	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("redis_password", cfg.RedisPassword)
	v.SetDefault("redis_db", cfg.RedisDB)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("jwt_secret", cfg.JWTSecret)
	v.SetDefault("rate_limit_max", cfg.RateLimitMax)
	v.SetDefault("rate_limit_window", cfg.RateLimitWindow)
}

// Validate rejects settings the modules cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0, got %d", c.QueueSize)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	switch c.QueueBackend {
	case worker.BackendMemory, worker.BackendJetStream:
	default:
		return fmt.Errorf("queue_backend must be %q or %q, got %q", worker.BackendMemory, worker.BackendJetStream, c.QueueBackend)
	}
	return nil
}

// PoolConfig returns the worker pool settings.
func (c Config) PoolConfig() worker.PoolConfig {
	return worker.PoolConfig{
		NumWorkers:     c.Workers,
		QueueSize:      c.QueueSize,
		MaxRetries:     c.MaxRetries,
		BaseRetryDelay: c.RetryBaseDelay,
		MaxRetryDelay:  c.RetryMaxDelay,
		ProcessTimeout: c.JobTimeout,
	}
}
