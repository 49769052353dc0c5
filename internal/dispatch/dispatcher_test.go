package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mcpgateway/gateway/internal/initialize"
	"github.com/mcpgateway/gateway/internal/liststore"
	"github.com/mcpgateway/gateway/internal/registry"
	"github.com/mcpgateway/gateway/internal/router"
	"github.com/mcpgateway/gateway/internal/router/examples"
	"github.com/mcpgateway/gateway/pkg/jsonrpc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	dispatcher *Dispatcher
	registry   *registry.Registry
}

func newFixture(t *testing.T) fixture {
	ctx, cancel := context.WithCancel(context.Background())
	reg := registry.New(ctx)
	tools := liststore.New[liststore.ToolItem](ctx)
	resources := liststore.New[liststore.ResourceItem](ctx)
	prompts := liststore.New[liststore.PromptItem](ctx)

	t.Cleanup(func() {
		cancel()
		<-reg.Done()
	})

	hello := examples.NewHello()
	require.NoError(t, reg.Register("hello", hello))
	hTools, err := hello.ListTools(ctx)
	require.NoError(t, err)
	tools.Add("hello", liststore.ToolItems(hTools))
	hPrompts, err := hello.ListPrompts(ctx)
	require.NoError(t, err)
	prompts.Add("hello", liststore.PromptItems(hPrompts))

	d := New(reg, tools, resources, prompts, initialize.New(), Config{InvokeTimeout: 2 * time.Second})
	return fixture{dispatcher: d, registry: reg}
}

func rawParams(t *testing.T, v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDispatch_Initialize(t *testing.T) {
	f := newFixture(t)
	resp, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 1, Method: "initialize"})
	require.Nil(t, rpcErr)
	result, ok := resp.Result.(initialize.Result)
	require.True(t, ok)
	assert.Equal(t, initialize.ProtocolVersion, result.ProtocolVersion)
}

func TestDispatch_ToolsList_QualifiesNames(t *testing.T) {
	f := newFixture(t)
	resp, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 2, Method: "tools/list"})
	require.Nil(t, rpcErr)
	body, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	tools, ok := body["tools"].([]router.Tool)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Equal(t, "hello_greet", tools[0].Name)
}

func TestDispatch_ToolsCall_RewritesNameAndForwards(t *testing.T) {
	f := newFixture(t)
	params := rawParams(t, map[string]interface{}{
		"name":      "hello_greet",
		"arguments": map[string]interface{}{"name": "Ada"},
	})
	resp, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 3, Method: "tools/call", Params: params})
	require.Nil(t, rpcErr)
	result, ok := resp.Result.(*router.CallToolResult)
	require.True(t, ok)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "Ada")
}

func TestDispatch_ToolsCall_UnknownRouter(t *testing.T) {
	f := newFixture(t)
	params := rawParams(t, map[string]interface{}{"name": "missing_greet"})
	_, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 4, Method: "tools/call", Params: params})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeInternalError, rpcErr.Err.Code)
	assert.Contains(t, rpcErr.Err.Message, "missing")
}

func TestDispatch_ToolsCall_MissingNameParam(t *testing.T) {
	f := newFixture(t)
	_, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 5, Method: "tools/call", Params: rawParams(t, map[string]interface{}{})})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeInvalidParams, rpcErr.Err.Code)
}

func TestDispatch_ResourcesSubscribe_AcknowledgesExistingRouter(t *testing.T) {
	f := newFixture(t)
	params := rawParams(t, map[string]interface{}{"uri": "hello_anything"})
	resp, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 6, Method: "resources/subscribe", Params: params})
	require.Nil(t, rpcErr)
	assert.NotNil(t, resp.Result)
}

func TestDispatch_UnknownMethod(t *testing.T) {
	f := newFixture(t)
	_, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 7, Method: "bogus/method"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, rpcErr.Err.Code)
}

// slowRouter blocks every invocation until its context expires.
type slowRouter struct{ examples.Hello }

func (s *slowRouter) CallTool(ctx context.Context, name string, args map[string]interface{}) (*router.CallToolResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDispatch_ToolsCall_Timeout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.Register("slow", &slowRouter{}))

	f.dispatcher.cfg.ToolCall = 20 * time.Millisecond
	params := rawParams(t, map[string]interface{}{"name": "slow_anything"})
	_, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 8, Method: "tools/call", Params: params})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeMCPTimeout, rpcErr.Err.Code)
}

// failingRouter reports typed domain errors for every invocation.
type failingRouter struct {
	examples.Hello
	kind router.ErrorKind
}

func (f *failingRouter) CallTool(ctx context.Context, name string, args map[string]interface{}) (*router.CallToolResult, error) {
	return nil, &router.ToolError{Kind: f.kind, Message: "tool " + name}
}

func (f *failingRouter) ReadResource(ctx context.Context, uri string) (*router.ReadResourceResult, error) {
	return nil, &router.ResourceError{Kind: f.kind, Message: "resource " + uri}
}

func TestDispatch_DomainErrors_MapToWireCodes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.Register("notfound", &failingRouter{kind: router.ErrNotFound}))
	require.NoError(t, f.registry.Register("broken", &failingRouter{kind: router.ErrExecution}))

	params := rawParams(t, map[string]interface{}{"name": "notfound_x"})
	_, rpcErr := f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 9, Method: "tools/call", Params: params})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeInvalidParams, rpcErr.Err.Code)
	assert.Contains(t, rpcErr.Err.Message, "tool x")

	params = rawParams(t, map[string]interface{}{"uri": "broken_doc"})
	_, rpcErr = f.dispatcher.Dispatch(context.Background(), &jsonrpc.Request{ID: 10, Method: "resources/read", Params: params})
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.CodeInternalError, rpcErr.Err.Code)
	assert.Contains(t, rpcErr.Err.Message, "resource doc")
}

func TestConfig_TimeoutFor_SelectsByMethodClass(t *testing.T) {
	cfg := Config{
		InvokeTimeout: 10 * time.Second,
		ToolCall:      30 * time.Second,
		PromptGet:     3 * time.Second,
	}
	assert.Equal(t, 30*time.Second, cfg.timeoutFor("tools/call"))
	assert.Equal(t, 3*time.Second, cfg.timeoutFor("prompts/get"))
	// No ResourceRead configured: resource methods fall back.
	assert.Equal(t, 10*time.Second, cfg.timeoutFor("resources/read"))
}
