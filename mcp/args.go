package mcp

import (
	"fmt"

	"github.com/sqlrover/mssql-mcp/jsonrpc"
)

// requiredString extracts a mandatory string argument, failing with
// Invalid params before any database work happens.
func requiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", jsonrpc.NewError(jsonrpc.ErrInvalidParams, fmt.Sprintf("Missing required argument: %s", key))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", jsonrpc.NewError(jsonrpc.ErrInvalidParams, fmt.Sprintf("Argument %s must be a non-empty string", key))
	}
	return s, nil
}

// optionalString extracts an optional string argument, falling back to def
// when the argument is absent, null, or empty.
func optionalString(args map[string]interface{}, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", jsonrpc.NewError(jsonrpc.ErrInvalidParams, fmt.Sprintf("Argument %s must be a string", key))
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// optionalMap extracts an optional object argument, defaulting to an empty
// mapping when absent.
func optionalMap(args map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.ErrInvalidParams, fmt.Sprintf("Argument %s must be an object", key))
	}
	return m, nil
}
