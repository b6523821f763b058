// Package rpc is the JSON-RPC collaborator: it dispatches requests over HTTP
// or WebSocket transports, validates JSON-RPC 2.0 envelopes, and exposes the
// typed calls the proof pipeline consumes.
package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds every request round trip unless overridden.
const DefaultTimeout = 5 * time.Second

// Metrics tracks timing statistics for a single RPC call.
type Metrics struct {
	RoundTripTime     time.Duration
	MarshallingTime   time.Duration
	UnmarshallingTime time.Duration
}

// Client dispatches JSON-RPC requests over HTTP or WebSocket transports.
type Client struct {
	verbose   int
	transport string
	jwtAuth   string
	timeout   time.Duration
}

// NewClient creates a new RPC client for the given transport type. A zero
// timeout selects DefaultTimeout.
func NewClient(transport, jwtAuth string, timeout time.Duration, verbose int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		verbose:   verbose,
		transport: transport,
		jwtAuth:   jwtAuth,
		timeout:   timeout,
	}
}

// Call sends a JSON-RPC request and decodes the response into the provided
// target. Returns timing metrics and any error encountered.
func (c *Client) Call(ctx context.Context, target string, request []byte, response any) (Metrics, error) {
	if strings.HasPrefix(c.transport, "http") {
		return c.callHTTP(ctx, target, request, response)
	}
	if strings.HasPrefix(c.transport, "websocket") {
		return c.callWebSocket(target, request, response)
	}
	return Metrics{}, fmt.Errorf("✘ unsupported transport: %s", c.transport)
}
