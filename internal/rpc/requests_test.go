package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildRequest(t *testing.T) {
	body := BuildRequest("eth_getBlockByHash", "0xabc", false)
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("request is not JSON: %v", err)
	}
	if req["jsonrpc"] != "2.0" {
		t.Errorf("jsonrpc: got %v", req["jsonrpc"])
	}
	if req["method"] != "eth_getBlockByHash" {
		t.Errorf("method: got %v", req["method"])
	}
	params, ok := req["params"].([]any)
	if !ok || len(params) != 2 {
		t.Fatalf("params: got %v", req["params"])
	}
	if params[0] != "0xabc" || params[1] != false {
		t.Errorf("params content: got %v", params)
	}
}

func TestBuildRequestNoParams(t *testing.T) {
	var req map[string]any
	if err := json.Unmarshal(BuildRequest("eth_blockNumber"), &req); err != nil {
		t.Fatalf("request is not JSON: %v", err)
	}
	params, ok := req["params"].([]any)
	if !ok || len(params) != 0 {
		t.Errorf("params should be an empty array, got %v", req["params"])
	}
}

func serveResult(result string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
}

func TestCallMethodResult(t *testing.T) {
	server := serveResult(`"0x10"`)
	defer server.Close()

	target := strings.TrimPrefix(server.URL, "http://")
	client := NewClient("http", "", 0, 0)
	result, err := CallMethod(context.Background(), client, target, "eth_blockNumber")
	if err != nil {
		t.Fatalf("CallMethod: %v", err)
	}
	if string(result) != `"0x10"` {
		t.Errorf("result: got %s", result)
	}
}

func TestCallMethodErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"header not found"}}`)
	}))
	defer server.Close()

	target := strings.TrimPrefix(server.URL, "http://")
	client := NewClient("http", "", 0, 0)
	_, err := CallMethod(context.Background(), client, target, "eth_getBlockByHash", "0xabc", false)
	if err == nil {
		t.Fatal("error field should fail the call")
	}
	if !strings.Contains(err.Error(), "header not found") {
		t.Errorf("error should carry the RPC message: %v", err)
	}
}

func TestCallMethodNullResult(t *testing.T) {
	server := serveResult("null")
	defer server.Close()

	target := strings.TrimPrefix(server.URL, "http://")
	client := NewClient("http", "", 0, 0)
	if _, err := CallMethod(context.Background(), client, target, "eth_getTransactionReceipt", "0xabc"); err == nil {
		t.Error("null result should fail the call")
	}
}

func TestGetBlockReceipts(t *testing.T) {
	server := serveResult(`[{"transactionIndex":"0x0"},{"transactionIndex":"0x1"}]`)
	defer server.Close()

	target := strings.TrimPrefix(server.URL, "http://")
	client := NewClient("http", "", 0, 0)
	receipts, err := GetBlockReceipts(context.Background(), client, target, "0xabc")
	if err != nil {
		t.Fatalf("GetBlockReceipts: %v", err)
	}
	if len(receipts) != 2 {
		t.Errorf("receipts: got %d, want 2", len(receipts))
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in            string
		wantTransport string
		wantTarget    string
	}{
		{"http://localhost:8545/", "http", "localhost:8545"},
		{"https://mainnet.example.org/v1", "https", "mainnet.example.org/v1"},
		{"ws://localhost:8546", "websocket", "localhost:8546"},
		{"localhost:8545", "http", "localhost:8545"},
	}
	for _, tt := range tests {
		transport, target := NormalizeEndpoint(tt.in)
		if transport != tt.wantTransport || target != tt.wantTarget {
			t.Errorf("NormalizeEndpoint(%q): got (%q, %q), want (%q, %q)",
				tt.in, transport, target, tt.wantTransport, tt.wantTarget)
		}
	}
}

func TestBuildJWTAuthRejectsBadHex(t *testing.T) {
	if _, err := BuildJWTAuth("not-hex"); err == nil {
		t.Error("invalid hex secret should fail")
	}
}
