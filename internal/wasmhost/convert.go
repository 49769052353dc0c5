package wasmhost

import (
	"encoding/json"
	"time"

	"github.com/mcpgateway/gateway/internal/router"
)

// Conversions from the wire (guest) types to the host router types. Every
// conversion is total: each variant maps, and malformed optional data
// degrades (schema entries fall back to strings, bad timestamps become
// absent) rather than failing the whole value.

func toolFromWire(w wireTool) router.Tool {
	return router.Tool{
		Name:        w.Name,
		Description: w.Description,
		InputSchema: schemaFromWire(w.InputSchema),
	}
}

// schemaFromWire re-materialises {key,data} pairs as a JSON object. A data
// string that is not itself valid JSON is kept as a bare string value.
func schemaFromWire(entries []wireSchemaEntry) map[string]interface{} {
	if len(entries) == 0 {
		return nil
	}
	schema := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		var parsed interface{}
		if err := json.Unmarshal([]byte(e.Data), &parsed); err != nil {
			schema[e.Key] = e.Data
			continue
		}
		schema[e.Key] = parsed
	}
	return schema
}

func resourceFromWire(w wireResource) router.Resource {
	return router.Resource{
		URI:         w.URI,
		Name:        w.Name,
		Description: w.Description,
		MimeType:    w.MimeType,
		Annotations: annotationsFromWire(w.Annotations),
	}
}

func annotationsFromWire(w *wireAnnotations) *router.Annotations {
	if w == nil {
		return nil
	}
	a := &router.Annotations{Priority: w.Priority}
	for _, role := range w.Audience {
		switch role {
		case "user":
			a.Audience = append(a.Audience, router.RoleUser)
		case "assistant":
			a.Audience = append(a.Audience, router.RoleAssistant)
		}
	}
	if w.LastModified != nil {
		if ts, err := time.Parse(time.RFC3339, *w.LastModified); err == nil {
			utc := ts.UTC()
			a.LastModified = &utc
		}
	}
	return a
}

func promptFromWire(w wirePrompt) router.Prompt {
	p := router.Prompt{Name: w.Name, Description: w.Description}
	for _, arg := range w.Arguments {
		p.Arguments = append(p.Arguments, router.PromptArgument{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return p
}

func contentFromWire(w wireContent) router.Content {
	switch w.Type {
	case "image":
		return router.Content{
			Type:  "image",
			Image: &router.ImageContent{Data: w.Data, MimeType: w.MimeType},
		}
	case "resource":
		var rc router.ResourceContents
		if w.Resource != nil {
			rc = resourceContentsFromWire(*w.Resource)
		}
		return router.Content{
			Type:     "resource",
			Resource: &router.EmbeddedResource{Resource: rc},
		}
	default:
		return router.TextContent(w.Text)
	}
}

func resourceContentsFromWire(w wireResourceContents) router.ResourceContents {
	rc := router.ResourceContents{URI: w.URI, MimeType: w.MimeType}
	if w.Text != nil {
		rc.Text = *w.Text
	}
	if w.Blob != nil {
		rc.Blob = *w.Blob
	}
	return rc
}

func callToolResultFromWire(w wireCallToolResult) *router.CallToolResult {
	out := &router.CallToolResult{IsError: w.IsError, Content: make([]router.Content, 0, len(w.Content))}
	for _, c := range w.Content {
		out.Content = append(out.Content, contentFromWire(c))
	}
	return out
}

func readResourceResultFromWire(w wireReadResourceResult) *router.ReadResourceResult {
	out := &router.ReadResourceResult{Contents: make([]router.ResourceContents, 0, len(w.Contents))}
	for _, c := range w.Contents {
		out.Contents = append(out.Contents, resourceContentsFromWire(c))
	}
	return out
}

func getPromptResultFromWire(w wireGetPromptResult) *router.GetPromptResult {
	out := &router.GetPromptResult{Description: w.Description}
	for _, m := range w.Messages {
		role := router.RoleUser
		if m.Role == "assistant" {
			role = router.RoleAssistant
		}
		out.Messages = append(out.Messages, router.PromptMessage{
			Role:    role,
			Content: contentFromWire(m.Content),
		})
	}
	return out
}

func capabilitiesFromWire(w wireCapabilities) router.ServerCapabilities {
	caps := router.ServerCapabilities{}
	if w.Logging != nil {
		caps.Logging = &router.LoggingCapability{}
	}
	if w.Prompts != nil {
		caps.Prompts = &router.PromptsCapability{ListChanged: w.Prompts.ListChanged}
	}
	if w.Resources != nil {
		caps.Resources = &router.ResourcesCapability{
			Subscribe:   w.Resources.Subscribe,
			ListChanged: w.Resources.ListChanged,
		}
	}
	if w.Tools != nil {
		caps.Tools = &router.ToolsCapability{ListChanged: w.Tools.ListChanged}
	}
	return caps
}

// kindFromWire maps a guest error kind string onto the host taxonomy.
// Unknown kinds degrade to internal rather than being dropped.
func kindFromWire(kind string) router.ErrorKind {
	switch kind {
	case kindNotFound:
		return router.ErrNotFound
	case kindInvalidParameters:
		return router.ErrInvalidParameters
	case kindExecutionError:
		return router.ErrExecution
	case kindSchemaError:
		return router.ErrSchema
	default:
		return router.ErrInternal
	}
}
