package jsonrpc

// Result represents an arbitrary response payload
type Result interface{}

// Response represents a JSON-RPC response object. Responses carry no version
// member; absent members are omitted from the encoded form. A tool-call
// failure populates both Result and Error so that protocol-level and
// tool-level consumers can each detect it.
type Response struct {
	Id     interface{} `json:"id,omitempty"`
	Result Result      `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// NewResponse creates a new Response object
func NewResponse(id interface{}, result Result, err *Error) Response {
	return Response{
		Id:     id,
		Result: result,
		Error:  err,
	}
}
