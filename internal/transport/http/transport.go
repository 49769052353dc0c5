package http

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpgateway/gateway/internal/dispatch"
	"github.com/mcpgateway/gateway/internal/session"
)

// defaultKeepAlive is the SSE comment-line interval.
const defaultKeepAlive = 15 * time.Second

// Transport binds the dispatcher and session registry to the network:
// GET /sse opens a server-to-client event stream, POST /messages/ accepts
// JSON-RPC requests whose responses are delivered on that stream.
type Transport struct {
	dispatcher *dispatch.Dispatcher
	sessions   *session.Registry
	server     *http.Server

	addr         string
	certFile     string
	keyFile      string
	queueDepth   int
	keepAlive    time.Duration
	logger       *slog.Logger
	extraHandler http.Handler
	routerCount  func() int
	metrics      *Metrics
	handler      http.Handler

	baseCtx context.Context
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address. Default is "127.0.0.1:8080".
func WithAddr(addr string) Option {
	return func(t *Transport) { t.addr = addr }
}

// WithTLS enables TLS with the provided certificate and key files. If not
// set, the server runs plain HTTP.
func WithTLS(certFile, keyFile string) Option {
	return func(t *Transport) {
		t.certFile = certFile
		t.keyFile = keyFile
	}
}

// WithLogger sets the logger for the transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// WithQueueDepth sets the per-session outbound queue capacity.
func WithQueueDepth(depth int) Option {
	return func(t *Transport) { t.queueDepth = depth }
}

// WithKeepAlive overrides the SSE keep-alive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(t *Transport) { t.keepAlive = d }
}

// WithExtraHandler adds an extra HTTP handler consulted for /admin/
// routes (e.g. the router listing).
func WithExtraHandler(h http.Handler) Option {
	return func(t *Transport) { t.extraHandler = h }
}

// WithRouterCount wires the registered-routers gauge to the given reader.
func WithRouterCount(count func() int) Option {
	return func(t *Transport) { t.routerCount = count }
}

// New creates a Transport over the given dispatcher and session registry.
func New(dispatcher *dispatch.Dispatcher, sessions *session.Registry, opts ...Option) *Transport {
	t := &Transport{
		dispatcher: dispatcher,
		sessions:   sessions,
		addr:       "127.0.0.1:8080",
		keepAlive:  defaultKeepAlive,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handler builds the full route table. Exposed separately from Start so
// tests can drive it through httptest.
func (t *Transport) Handler() http.Handler {
	if t.metrics == nil {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		t.metrics = NewMetrics(reg)
		if t.routerCount != nil {
			RegisterRouterCount(reg, t.routerCount)
		}

		mux := http.NewServeMux()
		mux.Handle("/sse", http.HandlerFunc(t.handleSSE))
		mux.Handle("/messages/", http.HandlerFunc(t.handleMessages))
		mux.Handle("/health", healthHandler())
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		if t.extraHandler != nil {
			mux.Handle("/admin/", t.extraHandler)
		}
		mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		t.handler = mux
	}
	return t.handler
}

// Start begins accepting connections and blocks until ctx is cancelled or
// the server fails.
func (t *Transport) Start(ctx context.Context) error {
	t.baseCtx = ctx

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: t.Handler(),
	}
	if t.certFile != "" && t.keyFile != "" {
		t.server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if t.certFile != "" && t.keyFile != "" {
			t.logger.Info("starting HTTPS transport", "addr", t.addr)
			err = t.server.ListenAndServeTLS(t.certFile, t.keyFile)
		} else {
			t.logger.Info("starting HTTP transport", "addr", t.addr)
			err = t.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP transport")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during transport shutdown", "error", err)
		return err
	}
	t.logger.Info("HTTP transport shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
