package configs

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"CONTROL_QUEUE_KEY", "BROADCASTER_COUNT", "MAX_TEXT", "MAX_NAME",
		"MAX_CLIENTS", "MAX_CHANNELS", "INACTIVITY_TIMEOUT_SECONDS",
		"MONITOR_INTERVAL_SECONDS", "ENVIRONMENT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ControlQueueKey != 1234 {
		t.Errorf("ControlQueueKey = %d, want 1234", cfg.ControlQueueKey)
	}
	if cfg.BroadcasterCount != 4 {
		t.Errorf("BroadcasterCount = %d, want 4", cfg.BroadcasterCount)
	}
	if cfg.MaxClients != 10 {
		t.Errorf("MaxClients = %d, want 10", cfg.MaxClients)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{name: "zero control queue key", env: "CONTROL_QUEUE_KEY", val: "0"},
		{name: "non-positive broadcaster count", env: "BROADCASTER_COUNT", val: "0"},
		{name: "non-positive max text", env: "MAX_TEXT", val: "-1"},
		{name: "non-numeric max clients", env: "MAX_CLIENTS", val: "not-a-number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.val)

			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig with %s=%s should have failed", tt.env, tt.val)
			}
		})
	}
}
