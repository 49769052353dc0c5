package liststore

import "github.com/mcpgateway/gateway/internal/router"

// ToolItem, ResourceItem, and PromptItem adapt the router package's plain
// descriptor structs to the Keyed[T] contract Store needs, without making
// router depend on liststore.

type ToolItem struct{ router.Tool }

func (t ToolItem) Key() string            { return t.Name }
func (t ToolItem) WithKey(key string) ToolItem {
	t.Name = key
	return t
}

type ResourceItem struct{ router.Resource }

func (r ResourceItem) Key() string                { return r.URI }
func (r ResourceItem) WithKey(key string) ResourceItem {
	r.URI = key
	return r
}

type PromptItem struct{ router.Prompt }

func (p PromptItem) Key() string              { return p.Name }
func (p PromptItem) WithKey(key string) PromptItem {
	p.Name = key
	return p
}

// ToolItems/ResourceItems/PromptItems convert a router-package slice into
// the liststore adapter slice, for use at the manager's register-time fan-in.
func ToolItems(tools []router.Tool) []ToolItem {
	out := make([]ToolItem, len(tools))
	for i, t := range tools {
		out[i] = ToolItem{t}
	}
	return out
}

func ResourceItems(resources []router.Resource) []ResourceItem {
	out := make([]ResourceItem, len(resources))
	for i, r := range resources {
		out[i] = ResourceItem{r}
	}
	return out
}

func PromptItems(prompts []router.Prompt) []PromptItem {
	out := make([]PromptItem, len(prompts))
	for i, p := range prompts {
		out[i] = PromptItem{p}
	}
	return out
}
