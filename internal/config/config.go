// Package config provides the configuration schema for the MCP gateway.
//
// The gateway aggregates native and Wasm-sandboxed MCP routers behind one
// JSON-RPC endpoint; its configuration is deliberately narrow next to a
// full proxy: listener address, optional TLS, the Wasm router directory,
// logging, and per-method-class timeouts. It carries no auth, policy,
// rate-limit, or audit-persistence sections — this gateway has none of
// those concerns.
package config

// Config is the top-level configuration for the gateway.
type Config struct {
	// Server configures the HTTP transport listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Wasm configures the Wasm router directory scan/watch.
	Wasm WasmConfig `yaml:"wasm" mapstructure:"wasm"`

	// Timeouts configures per-method-class dispatch deadlines.
	Timeouts TimeoutsConfig `yaml:"timeouts" mapstructure:"timeouts"`

	// Session configures the client session registry.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Secrets configures the secrets host's optional .env overlay.
	Secrets SecretsConfig `yaml:"secrets" mapstructure:"secrets"`

	// DevMode enables verbose logging and relaxed defaults.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8080").
	// Defaults to "127.0.0.1:8080" if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// TLSCertFile and TLSKeyFile enable TLS when both are set. Leaving
	// both empty serves plain HTTP; setting only one fails validation.
	TLSCertFile string `yaml:"tls_cert_file" mapstructure:"tls_cert_file" validate:"omitempty,file"`
	TLSKeyFile  string `yaml:"tls_key_file" mapstructure:"tls_key_file" validate:"omitempty,file"`

	// LogLevel sets the minimum slog level.
	// Valid values: "debug", "info", "warn", "error". Defaults to "info".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFile, when set, duplicates log output to this path in addition to
	// stderr. Empty means stderr only.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// Stdio switches the transport frontend to line-delimited JSON-RPC over
	// stdin/stdout instead of HTTP+SSE.
	Stdio bool `yaml:"stdio" mapstructure:"stdio"`
}

// WasmConfig configures the Router Service Manager's Wasm directory
// scan-then-watch behaviour.
type WasmConfig struct {
	// Dir is the directory scanned once at startup and then watched for
	// *.wasm file changes. Empty disables Wasm router loading entirely.
	Dir string `yaml:"dir" mapstructure:"dir" validate:"omitempty,dir"`
}

// TimeoutsConfig configures the per-method-class deadlines the Request
// Dispatcher applies to router-path calls.
type TimeoutsConfig struct {
	// ToolCall bounds tools/call (e.g., "30s"). Defaults to "30s".
	ToolCall string `yaml:"tool_call" mapstructure:"tool_call" validate:"omitempty"`

	// ResourceRead bounds resources/read and resources/templates/list
	// (e.g., "10s"). Defaults to "10s".
	ResourceRead string `yaml:"resource_read" mapstructure:"resource_read" validate:"omitempty"`

	// PromptGet bounds prompts/get (e.g., "3s"). Defaults to "3s".
	PromptGet string `yaml:"prompt_get" mapstructure:"prompt_get" validate:"omitempty"`
}

// SessionConfig configures the Client Session Registry.
type SessionConfig struct {
	// QueueDepth is the bounded outbound event queue capacity per SSE
	// session. Defaults to session.DefaultQueueDepth if 0.
	QueueDepth int `yaml:"queue_depth" mapstructure:"queue_depth" validate:"omitempty,min=1"`
}

// SecretsConfig configures the Secrets Host.
type SecretsConfig struct {
	// EnvFile is an optional .env file (default ".env") whose entries fill
	// in keys the process environment leaves unset.
	EnvFile string `yaml:"env_file" mapstructure:"env_file"`
}

// SetDevDefaults applies permissive defaults for development mode, before
// validation, so required fields are satisfied without a config file.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "debug"
	}
}

// SetDefaults applies sensible defaults to unset fields.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Timeouts.ToolCall == "" {
		c.Timeouts.ToolCall = "30s"
	}
	if c.Timeouts.ResourceRead == "" {
		c.Timeouts.ResourceRead = "10s"
	}
	if c.Timeouts.PromptGet == "" {
		c.Timeouts.PromptGet = "3s"
	}
	if c.Session.QueueDepth == 0 {
		c.Session.QueueDepth = 64
	}
}
