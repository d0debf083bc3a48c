package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sqlrover/mssql-mcp/jsonrpc"
)

// Server routes JSON-RPC requests to the database tools
type Server struct {
	db     *sql.DB
	info   ServerInfo
	logger *slog.Logger
	tools  []toolEntry
}

// ServerOption configures a Server
type ServerOption func(*Server) error

// WithDB sets the database handle used by the tool handlers. Handlers take a
// dedicated connection from it per call and release it on every exit path.
func WithDB(db *sql.DB) ServerOption {
	return func(s *Server) error {
		if db == nil {
			return fmt.Errorf("db cannot be nil")
		}
		s.db = db
		return nil
	}
}

// WithServerInfo sets the name and version reported by initialize
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) error {
		s.info = ServerInfo{Name: name, Version: version}
		return nil
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a new Server instance
func NewServer(opts ...ServerOption) (*Server, error) {
	s := &Server{
		info:   ServerInfo{Name: "mssql-mcp", Version: "dev"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	s.tools = s.buildRegistry()
	return s, nil
}

// Handle processes a single JSON-RPC request and returns exactly one response
func (s *Server) Handle(ctx context.Context, request jsonrpc.Request) jsonrpc.Response {
	if request.Version != jsonrpc.Version {
		return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrInvalidRequest, fmt.Sprintf("Unsupported protocol version: %q", request.Version)))
	}
	if request.Method == "" {
		return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrInvalidRequest, "Missing method"))
	}

	switch request.Method {
	case "initialize":
		return jsonrpc.NewResponse(request.Id, InitializeResult{
			ProtocolVersion: jsonrpc.Version,
			Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
			ServerInfo:      s.info,
		}, nil)
	case "notifications/initialized":
		// Answered with an empty result even though the protocol family
		// treats this as a fire-and-forget notification.
		return jsonrpc.NewResponse(request.Id, struct{}{}, nil)
	case "tools/list":
		return jsonrpc.NewResponse(request.Id, ToolsListResult{Tools: s.listTools()}, nil)
	case "tools/call":
		return s.handleToolsCall(ctx, request)
	default:
		return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrMethodNotFound, fmt.Sprintf("Unknown method: %s", request.Method)))
	}
}

func (s *Server) listTools() []Tool {
	tools := make([]Tool, 0, len(s.tools))
	for _, entry := range s.tools {
		tools = append(tools, entry.descriptor)
	}
	return tools
}

func (s *Server) handleToolsCall(ctx context.Context, request jsonrpc.Request) jsonrpc.Response {
	var params ToolCallParams
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrInvalidParams, ""))
		}
	}
	if params.Name == "" {
		return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrInvalidParams, "Missing tool name"))
	}

	var handler toolFunc
	for _, entry := range s.tools {
		if entry.descriptor.Name == params.Name {
			handler = entry.handler
			break
		}
	}
	if handler == nil {
		return jsonrpc.NewResponse(request.Id, nil, jsonrpc.NewError(jsonrpc.ErrMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name)))
	}

	args := params.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	s.logger.Debug("calling tool", "tool", params.Name)
	payload, err := handler(ctx, args)
	if err != nil {
		s.logger.Error("tool call failed", "tool", params.Name, "error", err)
		return toolErrorResponse(request.Id, toRPCError(err))
	}

	return toolResponse(request.Id, payload)
}

// toolResponse wraps a tool payload in the text-content envelope. The payload
// is serialized to a string so that clients consuming plain-text tool output
// can read it uniformly.
func toolResponse(id interface{}, payload interface{}) jsonrpc.Response {
	text, err := json.Marshal(payload)
	if err != nil {
		return toolErrorResponse(id, jsonrpc.NewError(jsonrpc.ErrInternal, err.Error()))
	}
	result := CallToolResult{Content: []Content{NewTextContent(string(text))}}
	return jsonrpc.NewResponse(id, result, nil)
}

// toolErrorResponse reports a tool failure in both envelopes: the outer error
// member for protocol-level consumers and an isError tool result, carrying the
// raw message text, for tool-level consumers.
func toolErrorResponse(id interface{}, rpcErr *jsonrpc.Error) jsonrpc.Response {
	result := CallToolResult{
		Content: []Content{NewTextContent(rpcErr.Message)},
		IsError: true,
	}
	return jsonrpc.NewResponse(id, result, rpcErr)
}

// toRPCError keeps typed codec errors as-is and folds everything else,
// including database failures, into an internal error carrying the underlying
// message verbatim.
func toRPCError(err error) *jsonrpc.Error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return jsonrpc.NewError(jsonrpc.ErrInternal, err.Error())
}
