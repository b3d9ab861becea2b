package ngio

import (
	"errors"
	"time"
)

// Config defines a public type used by ngio APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session SessionConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by ngio APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// RateLimitWindow is the minimum gap between the start of one remote call
	// and the start of the next, measured from the last attempt.
	RateLimitWindow time.Duration

	// MaxAttempts caps consecutive failed-contact retries before the session
	// settles in StatusExceededMaxAttempts.
	MaxAttempts int

	// CallTimeout bounds a single remote call. Zero means no timeout: a
	// server that never responds leaves the session waiting until the
	// transport itself surfaces a failure.
	CallTimeout time.Duration

	// StorageKeyPrefix and StorageKeySuffix frame the app id in the derived
	// persistence key.
	StorageKeyPrefix string
	StorageKeySuffix string
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by ngio APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by ngio APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RateLimitWindow:  5 * time.Second,
			MaxAttempts:      5,
			CallTimeout:      0,
			StorageKeyPrefix: "_ngio_",
			StorageKeySuffix: "_session_",
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Session.RateLimitWindow < 0 {
		return errors.New("Session RateLimitWindow must not be negative")
	}
	if c.Session.MaxAttempts < 1 {
		return errors.New("Session MaxAttempts must be at least 1")
	}
	if c.Session.CallTimeout < 0 {
		return errors.New("Session CallTimeout must not be negative")
	}
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be positive when events are enabled")
	}
	return nil
}

// cloneConfig exists for parity with config evolution: Config currently holds
// no reference fields, so a value copy is a deep copy.
func cloneConfig(c Config) Config {
	return c
}
