// Package wasmhost runs Wasm router components. Each *.wasm file gets one
// module instance owned by a dedicated goroutine that services a request
// mailbox, so all guest work for one component is serialised FIFO.
//
// Guest ABI: the guest exports one function per router capability —
// "name", "instructions", "capabilities", "list-tools", "list-resources",
// "list-prompts", "call-tool", "read-resource", "get-prompt" — each with
// signature (ptr u32, len u32) -> u64. The host allocates guest memory via
// the guest's exported "allocate", writes a JSON-encoded request body, and
// calls the export; the returned u64 packs (ptr << 32) | len of a
// JSON-encoded response envelope in guest memory, which the host reads and
// releases via the guest's exported "deallocate". Identity exports take an
// empty body.
//
// The host side exposes a "mcpgateway:secrets" import module with
// get(keyPtr, keyLen) -> handle (0 when the key is unset) and
// reveal(handle) -> packed ptr/len of the secret value (0 when the handle
// is unknown).
package wasmhost

import "encoding/json"

// Exported guest function names, one per router capability.
const (
	exportName          = "name"
	exportInstructions  = "instructions"
	exportCapabilities  = "capabilities"
	exportListTools     = "list-tools"
	exportListResources = "list-resources"
	exportListPrompts   = "list-prompts"
	exportCallTool      = "call-tool"
	exportReadResource  = "read-resource"
	exportGetPrompt     = "get-prompt"
)

// Guest allocator exports.
const (
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
)

// SecretsModule is the import module name the guest links against.
const SecretsModule = "mcpgateway:secrets"

// envelope is the guest's response frame: exactly one of Result or Error
// is set.
type envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *guestError     `json:"error,omitempty"`
}

// guestError is a typed domain failure reported by the guest.
type guestError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Guest error kinds.
const (
	kindNotFound          = "not-found"
	kindInvalidParameters = "invalid-parameters"
	kindExecutionError    = "execution-error"
	kindSchemaError       = "schema-error"
	kindInternalError     = "internal-error"
)

// callToolRequest / readResourceRequest / getPromptRequest are the request
// bodies for the three invocation exports. Listing and identity exports
// take an empty body.
type callToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type readResourceRequest struct {
	URI string `json:"uri"`
}

type getPromptRequest struct {
	Name string `json:"name"`
}

// Wire mirrors of the host router types. They are isomorphic but distinct:
// tool schemas travel as {key,data} string pairs, timestamps as optional
// RFC 3339 strings, and content/resource bodies as tagged variants.

type wireSchemaEntry struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

type wireTool struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	InputSchema []wireSchemaEntry `json:"inputSchema,omitempty"`
}

type wireAnnotations struct {
	Audience     []string `json:"audience,omitempty"`
	Priority     float64  `json:"priority,omitempty"`
	LastModified *string  `json:"lastModified,omitempty"`
}

type wireResource struct {
	URI         string           `json:"uri"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	MimeType    string           `json:"mimeType,omitempty"`
	Annotations *wireAnnotations `json:"annotations,omitempty"`
}

type wirePromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type wirePrompt struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Arguments   []wirePromptArgument `json:"arguments,omitempty"`
}

type wireResourceContents struct {
	URI      string  `json:"uri"`
	MimeType string  `json:"mimeType,omitempty"`
	Text     *string `json:"text,omitempty"`
	Blob     *string `json:"blob,omitempty"`
}

type wireContent struct {
	Type     string                `json:"type"`
	Text     string                `json:"text,omitempty"`
	Data     string                `json:"data,omitempty"`
	MimeType string                `json:"mimeType,omitempty"`
	Resource *wireResourceContents `json:"resource,omitempty"`
}

type wireCallToolResult struct {
	Content []wireContent `json:"content"`
	IsError bool          `json:"isError"`
}

type wireReadResourceResult struct {
	Contents []wireResourceContents `json:"contents"`
}

type wirePromptMessage struct {
	Role    string      `json:"role"`
	Content wireContent `json:"content"`
}

type wireGetPromptResult struct {
	Description string              `json:"description,omitempty"`
	Messages    []wirePromptMessage `json:"messages"`
}

type wireCapabilities struct {
	Logging   *struct{}          `json:"logging,omitempty"`
	Prompts   *wireListChanged   `json:"prompts,omitempty"`
	Resources *wireSubscribeList `json:"resources,omitempty"`
	Tools     *wireListChanged   `json:"tools,omitempty"`
}

type wireListChanged struct {
	ListChanged bool `json:"listChanged"`
}

type wireSubscribeList struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}
