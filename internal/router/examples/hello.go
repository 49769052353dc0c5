package examples

import (
	"context"
	"fmt"

	"github.com/mcpgateway/gateway/internal/router"
)

// Hello is a trivial greeter router with one tool and one prompt.
type Hello struct{}

// NewHello constructs the Hello router.
func NewHello() *Hello { return &Hello{} }

func (h *Hello) Name() string         { return "hello" }
func (h *Hello) Instructions() string { return "Call greet with a name, or fetch the greeting prompt." }

func (h *Hello) Capabilities() router.ServerCapabilities {
	return router.ServerCapabilities{Tools: &router.ToolsCapability{}, Prompts: &router.PromptsCapability{}}
}

func (h *Hello) ListTools(ctx context.Context) ([]router.Tool, error) {
	return []router.Tool{{
		Name:        "greet",
		Description: "Returns a greeting for the given name.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"name": map[string]interface{}{"type": "string"}},
			"required":   []string{"name"},
		},
	}}, nil
}

func (h *Hello) ListResources(ctx context.Context) ([]router.Resource, error) { return nil, nil }

func (h *Hello) ListPrompts(ctx context.Context) ([]router.Prompt, error) {
	return []router.Prompt{{Name: "greeting", Description: "A friendly greeting prompt."}}, nil
}

func (h *Hello) CallTool(ctx context.Context, name string, args map[string]interface{}) (*router.CallToolResult, error) {
	if name != "greet" {
		return &router.CallToolResult{
			Content: []router.Content{router.TextContent(fmt.Sprintf("unknown tool %q", name))},
			IsError: true,
		}, nil
	}

	who, _ := args["name"].(string)
	if who == "" {
		who = "world"
	}

	return &router.CallToolResult{
		Content: []router.Content{router.TextContent(fmt.Sprintf("Hello, %s!", who))},
	}, nil
}

func (h *Hello) ReadResource(ctx context.Context, uri string) (*router.ReadResourceResult, error) {
	return nil, fmt.Errorf("hello router has no resources")
}

func (h *Hello) GetPrompt(ctx context.Context, name string) (*router.GetPromptResult, error) {
	if name != "greeting" {
		return nil, fmt.Errorf("unknown prompt %q", name)
	}
	return &router.GetPromptResult{
		Description: "A friendly greeting prompt.",
		Messages: []router.PromptMessage{{
			Role:    router.RoleUser,
			Content: router.TextContent("Say hello to the user in a warm, friendly tone."),
		}},
	}, nil
}
