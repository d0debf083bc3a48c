package mcp

// ServerInfo represents information about this implementation
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises tool support to the client
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities represents the server's supported capabilities
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// InitializeResult represents the server's response to an initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// Tool represents a single tool in the tools/list response. Descriptors are
// static and immutable for the process lifetime.
type Tool struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Required    []string          `json:"required"`
}

// ToolsListResult represents the response for the tools/list method
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// ToolCallParams represents the parameters for the tools/call method. Tool
// arguments are nested under arguments, not spread into params.
type ToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// Content represents a single content block in a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent creates a new text content block
func NewTextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// CallToolResult represents the server's response to a tool call. The text
// content carries the JSON-serialized payload as a string, or the raw error
// message when IsError is set.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}
