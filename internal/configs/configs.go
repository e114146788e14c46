/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures every tunable named in the system's external interface contract:
the control mailbox key, worker pool size, registry capacity limits, the
inactivity timeout, and the monitor sweep cadence. All values are read from
environment variables with the same defaults the reference implementation
hard-coded.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultChannel is the reserved channel name seeded at bring-up and never reaped.
const DefaultChannel = "#general"

// AppConfig contains all configuration parameters required for the server to run.
type AppConfig struct {
	// ControlQueueKey is the well-known key clients use to attach to the server's control mailbox.
	ControlQueueKey int

	// BroadcasterCount is the number of workers in the fan-out pool.
	BroadcasterCount int

	// MaxText is the maximum byte length of a message or WHO reply.
	MaxText int

	// MaxName is the maximum byte length of a channel name or client handle.
	MaxName int

	// MaxClients is the total registry capacity for clients, and also the per-room member cap.
	MaxClients int

	// MaxChannels is the total registry capacity for rooms.
	MaxChannels int

	// InactivityTimeout is how long a client may go silent before the monitor evicts it.
	InactivityTimeout time.Duration

	// MonitorInterval is the cadence at which the monitor sweeps the registry.
	MonitorInterval time.Duration

	// Environment mirrors the teacher's dev/prod switch for logger formatting.
	Environment string
}

// LoadConfig reads and parses the server configuration from environment variables,
// applying the defaults from the external interface contract where unset.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	var err error

	if cfg.ControlQueueKey, err = intEnv("CONTROL_QUEUE_KEY", 1234); err != nil {
		return nil, err
	}
	if cfg.ControlQueueKey == 0 {
		return nil, fmt.Errorf("CONTROL_QUEUE_KEY must be non-zero")
	}

	if cfg.BroadcasterCount, err = intEnv("BROADCASTER_COUNT", 4); err != nil {
		return nil, err
	}
	if cfg.BroadcasterCount < 1 {
		return nil, fmt.Errorf("BROADCASTER_COUNT must be at least 1, got %d", cfg.BroadcasterCount)
	}

	if cfg.MaxText, err = intEnv("MAX_TEXT", 256); err != nil {
		return nil, err
	}
	if cfg.MaxText < 1 {
		return nil, fmt.Errorf("MAX_TEXT must be positive, got %d", cfg.MaxText)
	}

	if cfg.MaxName, err = intEnv("MAX_NAME", 32); err != nil {
		return nil, err
	}
	if cfg.MaxName < 1 {
		return nil, fmt.Errorf("MAX_NAME must be positive, got %d", cfg.MaxName)
	}

	if cfg.MaxClients, err = intEnv("MAX_CLIENTS", 10); err != nil {
		return nil, err
	}
	if cfg.MaxClients < 1 {
		return nil, fmt.Errorf("MAX_CLIENTS must be positive, got %d", cfg.MaxClients)
	}

	if cfg.MaxChannels, err = intEnv("MAX_CHANNELS", 5); err != nil {
		return nil, err
	}
	if cfg.MaxChannels < 1 {
		return nil, fmt.Errorf("MAX_CHANNELS must be positive, got %d", cfg.MaxChannels)
	}

	timeoutSecs, err := intEnv("INACTIVITY_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.InactivityTimeout = time.Duration(timeoutSecs) * time.Second

	intervalSecs, err := intEnv("MONITOR_INTERVAL_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.MonitorInterval = time.Duration(intervalSecs) * time.Second

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

// intEnv reads an integer environment variable, falling back to def when unset.
func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}
