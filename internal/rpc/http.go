package rpc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// sharedTransport is a single http.Transport shared across all requests.
// One transport = one connection pool = maximum TCP reuse.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 100,
	IdleConnTimeout:     90 * time.Second,
}

// sharedHTTPClient is a goroutine-safe http.Client using the shared
// transport. Per-request deadlines are set on the request context: the
// client's timeout, bounded by the caller's context.
var sharedHTTPClient = &http.Client{
	Transport: sharedTransport,
}

// bufPool reuses bytes.Buffer instances for request bodies.
var bufPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func (c *Client) callHTTP(ctx context.Context, target string, request []byte, response any) (Metrics, error) {
	var metrics Metrics

	protocol := "http://"
	if c.transport == "https" {
		protocol = "https://"
	}
	url := protocol + target

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	buf.Write(request)
	defer bufPool.Put(buf)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", url, buf)
	if err != nil {
		if c.verbose > 0 {
			fmt.Printf("\nhttp request creation fail: %s %v\n", url, err)
		}
		return metrics, err
	}

	req.Header.Set("Content-Type", "application/json")
	if !strings.HasSuffix(c.transport, "_comp") {
		req.Header.Set("Accept-Encoding", "Identity")
	}
	if c.jwtAuth != "" {
		req.Header.Set("Authorization", c.jwtAuth)
	}

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	metrics.RoundTripTime = time.Since(start)

	if c.verbose > 1 {
		fmt.Printf("http round-trip time: %v\n", metrics.RoundTripTime)
	}

	if err != nil {
		if c.verbose > 0 {
			fmt.Printf("\nhttp connection fail: %s %v\n", target, err)
		}
		return metrics, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("\nfailed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		if c.verbose > 1 {
			fmt.Printf("\npost result status_code: %d\n", resp.StatusCode)
		}
		return metrics, fmt.Errorf("✘ http status %v", resp.Status)
	}

	unmarshalStart := time.Now()
	if err = jsonAPI.NewDecoder(resp.Body).Decode(response); err != nil {
		return metrics, fmt.Errorf("✘ cannot decode http body as json: %w", err)
	}
	metrics.UnmarshallingTime = time.Since(unmarshalStart)

	if c.verbose > 1 {
		raw, _ := jsonAPI.Marshal(response)
		fmt.Printf("Node: %s\nRequest: %s\nResponse: %v\n", target, request, string(raw))
	}

	return metrics, nil
}

// ValidateJsonRpcResponse checks that a response is valid JSON-RPC 2.0.
func ValidateJsonRpcResponse(response any) error {
	switch r := response.(type) {
	case map[string]any:
		return validateJsonRpcResponseObject(r)
	case *map[string]any:
		if r != nil {
			return validateJsonRpcResponseObject(*r)
		}
		return fmt.Errorf("✘ nil response pointer")
	default:
		if arr, ok := response.([]any); ok {
			for _, elem := range arr {
				if m, ok := elem.(map[string]any); ok {
					if err := validateJsonRpcResponseObject(m); err != nil {
						return err
					}
				}
			}
			return nil
		}
		return nil
	}
}

func validateJsonRpcResponseObject(obj map[string]any) error {
	jsonrpc, ok := obj["jsonrpc"]
	if !ok {
		return fmt.Errorf("✘ invalid JSON-RPC response: missing 'jsonrpc' field")
	}
	if version, ok := jsonrpc.(string); !ok || version != "2.0" {
		return fmt.Errorf("✘ noncompliant JSON-RPC 2.0 version")
	}
	if _, ok := obj["id"]; !ok {
		return fmt.Errorf("✘ invalid JSON-RPC response: missing 'id' field")
	}
	return nil
}
