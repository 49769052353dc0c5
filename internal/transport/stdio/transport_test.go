package stdio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgateway/gateway/internal/dispatch"
	"github.com/mcpgateway/gateway/internal/initialize"
	"github.com/mcpgateway/gateway/internal/liststore"
	"github.com/mcpgateway/gateway/internal/manager"
	"github.com/mcpgateway/gateway/internal/registry"
	"github.com/mcpgateway/gateway/internal/router/examples"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	reg := registry.New(ctx)
	tools := liststore.New[liststore.ToolItem](ctx)
	resources := liststore.New[liststore.ResourceItem](ctx)
	prompts := liststore.New[liststore.PromptItem](ctx)

	mgr := manager.New(reg, tools, resources, prompts, nil)
	require.NoError(t, mgr.Bootstrap(ctx))
	require.NoError(t, mgr.RegisterRouter(ctx, "hello", examples.NewHello()))

	t.Cleanup(func() {
		cancel()
		<-reg.Done()
		<-tools.Done()
		<-resources.Done()
		<-prompts.Done()
	})

	return dispatch.New(reg, tools, resources, prompts, initialize.New(),
		dispatch.Config{InvokeTimeout: 2 * time.Second})
}

func run(t *testing.T, input string) []string {
	t.Helper()
	var out bytes.Buffer
	tr := New(newDispatcher(t), WithStreams(strings.NewReader(input), &out))
	require.NoError(t, tr.Start(context.Background()))

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestStart_DispatchesInitialize(t *testing.T) {
	lines := run(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n")
	require.Len(t, lines, 1)

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Result  struct {
			ProtocolVersion string `json:"protocolVersion"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "2024-11-05", resp.Result.ProtocolVersion)
}

func TestStart_ResponsesInInputOrder(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"hello_greet","arguments":{"name":"stdio"}}}` + "\n"
	lines := run(t, input)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":1`)
	assert.Contains(t, lines[0], "hello_greet")
	assert.Contains(t, lines[1], `"id":2`)
	assert.Contains(t, lines[1], "Hello, stdio!")
}

func TestStart_ParseErrorReplied(t *testing.T) {
	lines := run(t, "{not json}\n")
	require.Len(t, lines, 1)

	var resp struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, -32700, resp.Error.Code)
}

func TestStart_InitializedNotificationAcknowledged(t *testing.T) {
	lines := run(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	require.Len(t, lines, 1)

	var resp struct {
		JSONRPC string                 `json:"jsonrpc"`
		Result  map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Empty(t, resp.Result)
}

func TestStart_OtherNotificationsProduceNoOutput(t *testing.T) {
	lines := run(t, `{"jsonrpc":"2.0","method":"notifications/progress"}`+"\n")
	assert.Empty(t, lines)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	tr := New(newDispatcher(t), WithStreams(pr, &out))
	err := tr.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
