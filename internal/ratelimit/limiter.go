package ratelimit

import (
	"context"
	"time"
)

// Limiter paces outgoing download requests.
type Limiter interface {
	// Wait blocks until a request may proceed or the context is canceled.
	Wait(ctx context.Context) error
	// RetryAfter returns how long to back off before the given retry attempt.
	RetryAfter(attempt int) time.Duration
}

// Config holds limiter and retry settings.
type Config struct {
	RequestsPerSec    float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// DefaultConfig returns sensible defaults for polite downloads from NCBI.
func DefaultConfig() Config {
	return Config{
		RequestsPerSec:    3.0,
		Burst:             5,
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

func applyDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = def.RequestsPerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	return cfg
}
