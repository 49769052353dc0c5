package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcpgateway/gateway/internal/adminapi"
	"github.com/mcpgateway/gateway/internal/config"
	"github.com/mcpgateway/gateway/internal/dispatch"
	"github.com/mcpgateway/gateway/internal/initialize"
	"github.com/mcpgateway/gateway/internal/liststore"
	"github.com/mcpgateway/gateway/internal/manager"
	"github.com/mcpgateway/gateway/internal/registry"
	"github.com/mcpgateway/gateway/internal/router"
	"github.com/mcpgateway/gateway/internal/secrets"
	"github.com/mcpgateway/gateway/internal/session"
	httptransport "github.com/mcpgateway/gateway/internal/transport/http"
	"github.com/mcpgateway/gateway/internal/transport/stdio"
	"github.com/mcpgateway/gateway/internal/wasmhost"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Long: `Start the MCP gateway server.

The gateway scans the Wasm directory once at startup, registers each
*.wasm component as a router, and then watches the directory: dropping a
new component registers it live, overwriting re-registers it, and
deleting it unregisters it.

Examples:
  # Serve with config file settings
  mcp-gateway serve

  # Serve on a different port with a custom component directory
  mcp-gateway serve --port 9090 --wasm_path ./components

  # Single-client embedding over stdin/stdout
  mcp-gateway serve --stdio`,
	RunE: runServe,
}

var (
	devMode   bool
	stdioMode bool
	port      int
	wasmPath  string
	logFile   string
	tlsCert   string
	tlsKey    string
)

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging)")
	serveCmd.Flags().BoolVar(&stdioMode, "stdio", false, "Serve line-delimited JSON-RPC over stdin/stdout instead of HTTP")
	serveCmd.Flags().IntVar(&port, "port", 0, "Override the HTTP listen port")
	serveCmd.Flags().StringVar(&wasmPath, "wasm_path", "", "Directory of Wasm router components (default ./wasm)")
	serveCmd.Flags().StringVar(&logFile, "log_file", "", "Duplicate log output to this file")
	serveCmd.Flags().StringVar(&tlsCert, "tls_cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&tlsKey, "tls_key", "", "TLS key file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyServeFlags(cfg)
	cfg.SetDevDefaults()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// stop() restores default signal handling so a second Ctrl+C does a
	// hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	// Dispatch plane: registry, list stores, session registry, manager.
	reg := registry.New(ctx)
	tools := liststore.New[liststore.ToolItem](ctx)
	resources := liststore.New[liststore.ResourceItem](ctx)
	prompts := liststore.New[liststore.PromptItem](ctx)
	sessions := session.New(ctx)

	mgr := manager.New(reg, tools, resources, prompts, logger)
	if err := mgr.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap system router: %w", err)
	}

	// Wasm plane: shared runtime, secrets host, directory scan + watch.
	secretsHost := secrets.New(cfg.Secrets.EnvFile)
	wasmRuntime, err := wasmhost.NewRuntime(ctx, secretsHost, logger)
	if err != nil {
		return fmt.Errorf("start wasm runtime: %w", err)
	}
	defer func() {
		if err := wasmRuntime.Close(context.Background()); err != nil {
			logger.Warn("closing wasm runtime", "error", err)
		}
	}()

	if cfg.Wasm.Dir != "" {
		factory := func(ctx context.Context, path string) (router.Router, error) {
			return wasmRuntime.Load(ctx, path)
		}
		if err := mgr.ScanWasmDirectory(ctx, cfg.Wasm.Dir, factory); err != nil {
			logger.Warn("wasm directory scan failed", "dir", cfg.Wasm.Dir, "error", err)
		} else if err := mgr.WatchWasmDirectory(ctx, cfg.Wasm.Dir, factory); err != nil {
			logger.Warn("wasm directory watch failed", "dir", cfg.Wasm.Dir, "error", err)
		}
	}

	disp := dispatch.New(reg, tools, resources, prompts, initialize.New(), dispatchConfig(cfg))

	if cfg.Server.Stdio {
		logger.Info("starting stdio transport")
		return stdio.New(disp, stdio.WithLogger(logger)).Start(ctx)
	}

	transport := httptransport.New(disp, sessions,
		httptransport.WithAddr(cfg.Server.HTTPAddr),
		httptransport.WithTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile),
		httptransport.WithLogger(logger),
		httptransport.WithQueueDepth(cfg.Session.QueueDepth),
		httptransport.WithExtraHandler(adminapi.New(mgr)),
		httptransport.WithRouterCount(func() int { return len(reg.IDs()) }),
	)
	return transport.Start(ctx)
}

// applyServeFlags overlays CLI flags onto the loaded config.
func applyServeFlags(cfg *config.Config) {
	if devMode {
		cfg.DevMode = true
	}
	if stdioMode {
		cfg.Server.Stdio = true
	}
	if port != 0 {
		host := "127.0.0.1"
		if h, _, err := net.SplitHostPort(cfg.Server.HTTPAddr); err == nil && h != "" {
			host = h
		}
		cfg.Server.HTTPAddr = net.JoinHostPort(host, fmt.Sprintf("%d", port))
	}
	if wasmPath != "" {
		cfg.Wasm.Dir = wasmPath
	} else if cfg.Wasm.Dir == "" {
		if _, err := os.Stat("wasm"); err == nil {
			cfg.Wasm.Dir = "wasm"
		}
	}
	if logFile != "" {
		cfg.Server.LogFile = logFile
	}
	if tlsCert != "" {
		cfg.Server.TLSCertFile = tlsCert
	}
	if tlsKey != "" {
		cfg.Server.TLSKeyFile = tlsKey
	}
}

// buildLogger writes to stderr (stdout is reserved for the stdio
// transport's response stream), optionally duplicated to a log file.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	var closeLog func()
	if cfg.Server.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Server.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeLog = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeLog, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dispatchConfig converts the validated config's duration strings.
func dispatchConfig(cfg *config.Config) dispatch.Config {
	parse := func(s string) time.Duration {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0
		}
		return d
	}
	return dispatch.Config{
		InvokeTimeout: 10 * time.Second,
		ToolCall:      parse(cfg.Timeouts.ToolCall),
		ResourceRead:  parse(cfg.Timeouts.ResourceRead),
		PromptGet:     parse(cfg.Timeouts.PromptGet),
	}
}
