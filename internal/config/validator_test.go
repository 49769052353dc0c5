package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ZeroConfig(t *testing.T) {
	t.Parallel()

	// Simulate running "mcp-gateway serve" with no config file at all.
	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() zero-config unexpected error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.LogLevel = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "LogLevel") {
		t.Errorf("error = %q, want to contain 'LogLevel'", err.Error())
	}
}

func TestValidate_TLSCertWithoutKey(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.TLSCertFile = "/tmp/does-not-matter.crt"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for cert without key, got nil")
	}
	if !strings.Contains(err.Error(), "tls_cert_file and tls_key_file") {
		t.Errorf("error = %q, want to contain 'tls_cert_file and tls_key_file'", err.Error())
	}
}

func TestValidate_InvalidTimeoutDuration(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Timeouts.ToolCall = "not-a-duration"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "timeouts.tool_call") {
		t.Errorf("error = %q, want to contain 'timeouts.tool_call'", err.Error())
	}
}

func TestValidate_ZeroTimeoutRejected(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Timeouts.ResourceRead = "0s"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for zero duration, got nil")
	}
	if !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("error = %q, want to contain 'must be positive'", err.Error())
	}
}

func TestValidate_ValidTLSPair(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.TLSCertFile = "config.go" // any file that exists on disk
	cfg.Server.TLSKeyFile = "config.go"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with matched tls cert/key unexpected error: %v", err)
	}
}
