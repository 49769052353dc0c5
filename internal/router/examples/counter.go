// Package examples provides bundled native routers used as integration-test
// fixtures — a concrete non-system, non-Wasm example of the Router
// interface. They are not part of the external contract and are never
// registered outside of tests/demos.
package examples

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcpgateway/gateway/internal/router"
)

// Counter is a trivially stateful demo router: each call to its one tool
// increments a shared counter and returns the new value.
type Counter struct {
	mu    sync.Mutex
	value int
}

// NewCounter constructs a fresh Counter router starting at zero.
func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Name() string         { return "counter" }
func (c *Counter) Instructions() string { return "Call the increment tool to bump a shared counter." }

func (c *Counter) Capabilities() router.ServerCapabilities {
	return router.ServerCapabilities{Tools: &router.ToolsCapability{}}
}

func (c *Counter) ListTools(ctx context.Context) ([]router.Tool, error) {
	return []router.Tool{{
		Name:        "increment",
		Description: "Increments the counter by one and returns the new value.",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
	}}, nil
}

func (c *Counter) ListResources(ctx context.Context) ([]router.Resource, error) { return nil, nil }
func (c *Counter) ListPrompts(ctx context.Context) ([]router.Prompt, error)     { return nil, nil }

func (c *Counter) CallTool(ctx context.Context, name string, args map[string]interface{}) (*router.CallToolResult, error) {
	if name != "increment" {
		return &router.CallToolResult{
			Content: []router.Content{router.TextContent(fmt.Sprintf("unknown tool %q", name))},
			IsError: true,
		}, nil
	}

	c.mu.Lock()
	c.value++
	v := c.value
	c.mu.Unlock()

	return &router.CallToolResult{
		Content: []router.Content{router.TextContent(fmt.Sprintf("%d", v))},
	}, nil
}

func (c *Counter) ReadResource(ctx context.Context, uri string) (*router.ReadResourceResult, error) {
	return nil, fmt.Errorf("counter router has no resources")
}

func (c *Counter) GetPrompt(ctx context.Context, name string) (*router.GetPromptResult, error) {
	return nil, fmt.Errorf("counter router has no prompts")
}
