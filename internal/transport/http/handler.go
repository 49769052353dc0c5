package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mcpgateway/gateway/pkg/jsonrpc"
)

// handleSSE opens the server-to-client stream: it registers a session,
// emits the endpoint event carrying the session's POST URL, then writes
// every message enqueued for that session as a data event, with a comment
// keep-alive in between. The session lives exactly as long as the stream.
func (t *Transport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id, outbound := t.sessions.Register(t.queueDepth)
	if outbound == nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer t.sessions.Deregister(id)

	if t.metrics != nil {
		t.metrics.ActiveSessions.Inc()
		defer t.metrics.ActiveSessions.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: /messages/?session_id=%d\n\n", id)
	flusher.Flush()

	t.logger.Debug("sse session opened", "session_id", id)
	defer t.logger.Debug("sse session closed", "session_id", id)

	ticker := time.NewTicker(t.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-outbound:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleMessages accepts one JSON-RPC request, acknowledges it with
// "Accepted", and dispatches asynchronously; the JSON-RPC response travels
// back on the session's SSE stream, never in this HTTP response body.
func (t *Transport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := strconv.ParseUint(r.URL.Query().Get("session_id"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid session_id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req, note, err := jsonrpc.DecodeRequest(body)
	if err != nil {
		http.Error(w, "parse error: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Accepted"))

	if note != nil {
		// notifications/initialized is the one notification that gets a
		// reply: an empty success response on the SSE stream. All other
		// notifications expect nothing.
		if note.Method != "notifications/initialized" {
			t.logger.Debug("notification received", "method", note.Method, "session_id", sessionID)
			return
		}
		req = &jsonrpc.Request{JSONRPC: note.JSONRPC, Method: note.Method, Params: note.Params}
	}

	ctx := t.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go t.dispatchAsync(ctx, sessionID, req)
}

func (t *Transport) dispatchAsync(ctx context.Context, sessionID uint64, req *jsonrpc.Request) {
	start := time.Now()

	resp, rpcErr := t.dispatcher.Dispatch(ctx, req)

	var msg interface{} = resp
	status := "ok"
	if rpcErr != nil {
		msg = rpcErr
		status = "error"
	}
	if t.metrics != nil {
		t.metrics.RequestsTotal.WithLabelValues(req.Method, status).Inc()
		t.metrics.RequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	}

	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		t.logger.Error("failed to encode response", "method", req.Method, "error", err)
		return
	}
	t.sessions.Notify(sessionID, data)
}

// healthHandler reports liveness.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
