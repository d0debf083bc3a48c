package jsonrpc

import "encoding/json"

// Version is the protocol version every request must carry.
const Version = "2.0"

// Request represents a JSON-RPC request object. On this wire the version
// travels in the protocolVersion member; an absent id marks a notification.
type Request struct {
	Version string          `json:"protocolVersion"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Id      interface{}     `json:"id,omitempty"`
}

// NewRequest creates a new Request object
func NewRequest(method string, params json.RawMessage, id interface{}) Request {
	return Request{
		Version: Version,
		Method:  method,
		Params:  params,
		Id:      id,
	}
}
