package transport

import (
	"time"

	"github.com/danmuck/radiotest/internal/protocol/frame"
)

// BackoffConfig defines reconnect backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config holds per-connection limits shared by every carrier.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Limits       frame.Limits
	Backoff      BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Second,
		Limits:       frame.DefaultLimits(),
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}
