// Package debuglog mirrors wire traffic to append-only files: inbound lines
// verbatim, outbound lines with a timestamp prefix. Writers are opened once
// at startup and closed exactly once by their owner.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logs is a pair of append-only wire logs
type Logs struct {
	requests  *os.File
	responses *os.File
}

// Open creates or appends to requests.log and responses.log under dir
func Open(dir string) (*Logs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	requests, err := os.OpenFile(filepath.Join(dir, "requests.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening request log: %w", err)
	}

	responses, err := os.OpenFile(filepath.Join(dir, "responses.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		requests.Close()
		return nil, fmt.Errorf("error opening response log: %w", err)
	}

	return &Logs{requests: requests, responses: responses}, nil
}

// Request appends one inbound line verbatim, flushed immediately
func (l *Logs) Request(line string) {
	fmt.Fprintln(l.requests, line)
	l.requests.Sync()
}

// Response appends one outbound line with a timestamp prefix, flushed
// immediately
func (l *Logs) Response(line string) {
	fmt.Fprintf(l.responses, "%s %s\n", time.Now().Format(time.RFC3339), line)
	l.responses.Sync()
}

// Close closes both files
func (l *Logs) Close() error {
	errRequests := l.requests.Close()
	errResponses := l.responses.Close()
	if errRequests != nil {
		return errRequests
	}
	return errResponses
}
