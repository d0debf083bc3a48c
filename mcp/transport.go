package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sqlrover/mssql-mcp/internal/debuglog"
	"github.com/sqlrover/mssql-mcp/jsonrpc"
)

// Transport handles the communication between stdin/stdout and the server.
// One request per input line, one response line per request, flushed
// immediately; a failing line never stops the loop.
type Transport struct {
	handler jsonrpc.Handler
	scanner *bufio.Scanner
	writer  *json.Encoder
	bufOut  *bufio.Writer
	errOut  io.Writer
	logs    *debuglog.Logs
}

// TransportOption configures a Transport
type TransportOption func(*Transport)

// WithDebugLogs mirrors inbound and outbound lines to the given log pair
func WithDebugLogs(logs *debuglog.Logs) TransportOption {
	return func(t *Transport) {
		t.logs = logs
	}
}

// NewStdioTransport creates a new stdio transport
func NewStdioTransport(handler jsonrpc.Handler, in io.Reader, out io.Writer, errOut io.Writer, opts ...TransportOption) *Transport {
	scanner := bufio.NewScanner(in)
	// Set a reasonable max size for each line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	bufOut := bufio.NewWriter(out)
	t := &Transport{
		handler: handler,
		scanner: scanner,
		writer:  json.NewEncoder(bufOut),
		bufOut:  bufOut,
		errOut:  errOut,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run starts the transport loop, reading from stdin and writing to stdout.
// Each line is handled to completion before the next is read.
func (t *Transport) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if !t.scanner.Scan() {
				if err := t.scanner.Err(); err != nil {
					return fmt.Errorf("scanner error: %v", err)
				}
				return nil
			}

			line := t.scanner.Text()
			if line == "" {
				continue
			}

			if t.logs != nil {
				t.logs.Request(line)
			}

			var request jsonrpc.Request
			if err := json.Unmarshal([]byte(line), &request); err != nil {
				t.write(jsonrpc.NewResponse(nil, nil, jsonrpc.NewError(jsonrpc.ErrParse, "")))
				continue
			}

			t.write(t.handler.Handle(ctx, request))
		}
	}
}

func (t *Transport) write(response jsonrpc.Response) {
	if t.logs != nil {
		if data, err := json.Marshal(response); err == nil {
			t.logs.Response(string(data))
		}
	}
	if err := t.writer.Encode(response); err != nil {
		fmt.Fprintf(t.errOut, "Error encoding response: %v\n", err)
	}
	t.bufOut.Flush()
}
