package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SystemRouterID is the fixed id of the built-in system router.
const SystemRouterID = "system"

// catalogURI is the local name of the one resource the system router
// answers. The aggregate store prefixes it with the router id, so clients
// address it as "system_all".
const catalogURI = "all"

// RouterSummary describes one installed router for the system catalog.
type RouterSummary struct {
	ID           string
	Instructions string
	ToolCount    int
	ResourceCount int
	PromptCount  int
}

// Catalog is supplied by the Router Service Manager so the system
// router can answer resources/read without owning the registry itself.
type Catalog interface {
	ListRouters() []RouterSummary
}

// System is the built-in router with id "system". It has no
// tools or prompts of its own; it answers resources/read for "system_all"
// with a catalog of every installed router, itself included.
type System struct {
	catalog Catalog
}

// NewSystem constructs the system router bound to catalog.
func NewSystem(catalog Catalog) *System {
	return &System{catalog: catalog}
}

func (s *System) Name() string { return SystemRouterID }

func (s *System) Instructions() string {
	return "Built-in router exposing the installed-router catalog. " +
		"Read resource system_all for a list of registered routers and their capability counts."
}

func (s *System) Capabilities() ServerCapabilities {
	return ServerCapabilities{Resources: &ResourcesCapability{ListChanged: true}}
}

func (s *System) ListTools(ctx context.Context) ([]Tool, error)       { return nil, nil }
func (s *System) ListPrompts(ctx context.Context) ([]Prompt, error)   { return nil, nil }

func (s *System) ListResources(ctx context.Context) ([]Resource, error) {
	return []Resource{{
		URI:         catalogURI,
		Name:        "Installed routers",
		Description: "Catalog of every router currently aggregated by this gateway.",
		MimeType:    "text/plain",
	}}, nil
}

func (s *System) CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error) {
	return nil, fmt.Errorf("system router has no tools")
}

func (s *System) GetPrompt(ctx context.Context, name string) (*GetPromptResult, error) {
	return nil, fmt.Errorf("system router has no prompts")
}

func (s *System) ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	if uri != catalogURI {
		return nil, fmt.Errorf("unknown system resource %q", uri)
	}

	summaries := s.catalog.ListRouters()
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	var b strings.Builder
	fmt.Fprintf(&b, "Installed routers (%d):\n", len(summaries))
	for _, r := range summaries {
		fmt.Fprintf(&b, "- %s: %d tools, %d resources, %d prompts\n", r.ID, r.ToolCount, r.ResourceCount, r.PromptCount)
		if r.Instructions != "" {
			fmt.Fprintf(&b, "  %s\n", r.Instructions)
		}
	}

	return &ReadResourceResult{Contents: []ResourceContents{{
		URI:      SystemRouterID + "_" + catalogURI,
		MimeType: "text/plain",
		Text:     b.String(),
	}}}, nil
}
