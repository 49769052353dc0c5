// Package initialize implements the Initialization Service: the
// stateless handler for the "initialize" and "notifications/initialized"
// methods.
package initialize

// ProtocolVersion is the fixed MCP protocol version this gateway speaks.
const ProtocolVersion = "2024-11-05"

// ServerName and ServerVersion populate the serverInfo object.
const (
	ServerName    = "Multi MCP Router Server"
	ServerVersion = "0.1.0"
)

// Instructions documents the "<router>_<name>" qualification convention to
// clients.
const Instructions = "Tools, prompts, and resources are namespaced as " +
	"\"<router>_<local>\". Read resource system_all (router \"system\") for " +
	"a catalog of installed routers and their capabilities."

// Capabilities is the capability object advertised on initialize.
type Capabilities struct {
	Logging   struct{}                    `json:"logging"`
	Prompts   PromptsCapabilities         `json:"prompts"`
	Resources ResourcesCapabilities       `json:"resources"`
	Tools     ToolsCapabilities           `json:"tools"`
}

type PromptsCapabilities struct {
	ListChanged bool `json:"listChanged"`
}

type ResourcesCapabilities struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type ToolsCapabilities struct {
	ListChanged bool `json:"listChanged"`
}

// ServerInfo identifies this gateway instance.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Result is the full response body for an "initialize" request.
type Result struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Instructions    string       `json:"instructions"`
}

// Service answers initialize/notifications-initialized. It is stateless:
// every instance returns the same fixed result.
type Service struct{}

// New constructs the Initialization Service.
func New() *Service { return &Service{} }

// Initialize returns the fixed capability/identity envelope.
func (s *Service) Initialize() Result {
	return Result{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capabilities{
			Prompts:   PromptsCapabilities{ListChanged: true},
			Resources: ResourcesCapabilities{Subscribe: true, ListChanged: true},
			Tools:     ToolsCapabilities{ListChanged: true},
		},
		ServerInfo: ServerInfo{Name: ServerName, Version: ServerVersion},
		Instructions: Instructions,
	}
}

// Initialized acknowledges notifications/initialized. It has no state to
// update; the method exists so the dispatcher has something to call.
func (s *Service) Initialized() {}
