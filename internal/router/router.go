// Package router defines the abstract Router capability: the interface
// every backend — native, system, or Wasm-sandboxed — implements so the rest
// of the gateway can treat them uniformly.
package router

import (
	"context"
	"time"
)

// Router is the capability set a backend exposes to the aggregation layer.
// Local names passed to CallTool/ReadResource/GetPrompt are already
// unqualified — the dispatcher strips the router-id prefix before
// forwarding.
type Router interface {
	Name() string
	Instructions() string
	Capabilities() ServerCapabilities

	ListTools(ctx context.Context) ([]Tool, error)
	ListResources(ctx context.Context) ([]Resource, error)
	ListPrompts(ctx context.Context) ([]Prompt, error)

	CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error)
	ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error)
	GetPrompt(ctx context.Context, name string) (*GetPromptResult, error)
}

// ServerCapabilities mirrors the MCP capabilities object returned both by a
// single router and, aggregated, by the Initialization Service.
type ServerCapabilities struct {
	Logging   *LoggingCapability   `json:"logging,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
}

type LoggingCapability struct{}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// DefaultCapabilities returns the capability set bundled routers advertise
// when they have no reason to diverge from the gateway's defaults.
func DefaultCapabilities() ServerCapabilities {
	return ServerCapabilities{
		Logging:   &LoggingCapability{},
		Prompts:   &PromptsCapability{ListChanged: true},
		Resources: &ResourcesCapability{Subscribe: true, ListChanged: true},
		Tools:     &ToolsCapability{ListChanged: true},
	}
}

// Tool is a callable capability a router advertises via tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// Resource is a readable capability a router advertises via resources/list.
type Resource struct {
	URI         string            `json:"uri"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	MimeType    string            `json:"mimeType,omitempty"`
	Annotations *Annotations      `json:"annotations,omitempty"`
	Meta        map[string]string `json:"_meta,omitempty"`
}

// Annotations carries optional client-facing hints about a resource.
// LastModified is a UTC instant; it is absent rather than zero when the
// producer supplied no (or an unparsable) timestamp.
type Annotations struct {
	Audience     []Role     `json:"audience,omitempty"`
	Priority     float64    `json:"priority,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// Role mirrors the MCP role enum used in annotations and prompt messages.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Prompt is a templated prompt a router advertises via prompts/list.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Content is the tagged union a tool result or prompt message carries:
// exactly one of Text, Image, or Resource is populated, distinguished by
// Type. This mirrors the component-model content variant.
type Content struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	Image    *ImageContent    `json:"-"`
	Resource *EmbeddedResource `json:"-"`
}

type ImageContent struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type EmbeddedResource struct {
	Resource ResourceContents `json:"resource"`
}

// ResourceContents is the tagged union for resources/read results: a
// resource's body is either inline text or base64-encoded binary.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// CallToolResult is the outcome of a tools/call invocation.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"is_error"`
}

// ReadResourceResult is the outcome of a resources/read invocation.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// GetPromptResult is the outcome of a prompts/get invocation.
type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

type PromptMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}
