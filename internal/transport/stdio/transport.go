// Package stdio provides the line-delimited JSON-RPC transport for
// single-client embedding: requests are read one per line from stdin and
// responses written one per line to stdout.
package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcpgateway/gateway/internal/dispatch"
	"github.com/mcpgateway/gateway/pkg/jsonrpc"
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 4 * 1024 * 1024

// Transport reads line-delimited JSON-RPC requests and writes responses
// through the same dispatcher the SSE path uses. A stdio process serves
// exactly one client, so it uses no session registry: responses go
// straight to the output stream.
type Transport struct {
	dispatcher *dispatch.Dispatcher
	in         io.Reader
	out        io.Writer
	logger     *slog.Logger
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithStreams overrides stdin/stdout, for tests and embedding.
func WithStreams(in io.Reader, out io.Writer) Option {
	return func(t *Transport) {
		t.in = in
		t.out = out
	}
}

// WithLogger sets the logger for the transport. Logging goes to stderr;
// stdout carries only the response stream.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// New creates a stdio transport over the given dispatcher.
func New(dispatcher *dispatch.Dispatcher, opts ...Option) *Transport {
	t := &Transport{
		dispatcher: dispatcher,
		in:         os.Stdin,
		out:        os.Stdout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start processes requests until ctx is cancelled or the input stream
// ends. Responses are written in the order requests complete; since each
// line is dispatched synchronously, that is input order.
func (t *Transport) Start(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}
			t.handleLine(ctx, line)
		}
	}
}

func (t *Transport) handleLine(ctx context.Context, line []byte) {
	req, note, err := jsonrpc.DecodeRequest(line)
	if err != nil {
		t.writeMessage(jsonrpc.NewParseError(err.Error()))
		return
	}
	if note != nil {
		// notifications/initialized is the one notification that gets a
		// reply: an empty success response. All other notifications expect
		// nothing.
		if note.Method != "notifications/initialized" {
			t.logger.Debug("notification received", "method", note.Method)
			return
		}
		req = &jsonrpc.Request{JSONRPC: note.JSONRPC, Method: note.Method, Params: note.Params}
	}

	resp, rpcErr := t.dispatcher.Dispatch(ctx, req)
	if rpcErr != nil {
		t.writeMessage(rpcErr)
		return
	}
	t.writeMessage(resp)
}

func (t *Transport) writeMessage(msg interface{}) {
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		t.logger.Error("failed to encode response", "error", err)
		return
	}
	if _, err := fmt.Fprintf(t.out, "%s\n", data); err != nil {
		t.logger.Error("failed to write response", "error", err)
	}
}
