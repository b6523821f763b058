package rpc

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	Id      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string              `json:"jsonrpc"`
	Id      jsoniter.RawMessage `json:"id"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *rpcError           `json:"error"`
}

// BuildRequest marshals a JSON-RPC 2.0 request body.
func BuildRequest(method string, params ...any) []byte {
	if params == nil {
		params = []any{}
	}
	body, _ := jsonAPI.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      1,
	})
	return body
}

// CallMethod issues one JSON-RPC call and returns the raw result. A response
// with its error field set, or with a null result, is a failure.
func CallMethod(ctx context.Context, client *Client, target, method string, params ...any) (jsoniter.RawMessage, error) {
	var resp rpcResponse
	if _, err := client.Call(ctx, target, BuildRequest(method, params...), &resp); err != nil {
		return nil, fmt.Errorf("✘ RPC call failed!\n✘ %s: %w", method, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("✘ RPC call failed!\n✘ %s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, fmt.Errorf("✘ RPC call failed!\n✘ %s returned no result", method)
	}
	return resp.Result, nil
}

// GetTransactionReceipt fetches the receipt of txHash.
func GetTransactionReceipt(ctx context.Context, client *Client, target, txHash string) (jsoniter.RawMessage, error) {
	return CallMethod(ctx, client, target, "eth_getTransactionReceipt", txHash)
}

// GetBlockByHash fetches a block by hash, with transaction hashes only.
func GetBlockByHash(ctx context.Context, client *Client, target, blockHash string) (jsoniter.RawMessage, error) {
	return CallMethod(ctx, client, target, "eth_getBlockByHash", blockHash, false)
}

// GetBlockByNumber fetches a block by 0x-hex number or tag ("latest"), with
// transaction hashes only.
func GetBlockByNumber(ctx context.Context, client *Client, target, numberOrTag string) (jsoniter.RawMessage, error) {
	return CallMethod(ctx, client, target, "eth_getBlockByNumber", numberOrTag, false)
}

// GetBlockReceipts fetches every receipt of a block in one call.
func GetBlockReceipts(ctx context.Context, client *Client, target, blockHash string) ([]jsoniter.RawMessage, error) {
	result, err := CallMethod(ctx, client, target, "eth_getBlockReceipts", blockHash)
	if err != nil {
		return nil, err
	}
	var receipts []jsoniter.RawMessage
	if err := jsonAPI.Unmarshal(result, &receipts); err != nil {
		return nil, fmt.Errorf("✘ cannot decode block receipts: %w", err)
	}
	return receipts, nil
}

// NormalizeEndpoint splits an endpoint URL into the client transport kind
// and the scheme-less target the transports expect.
func NormalizeEndpoint(endpoint string) (transport, target string) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "https", strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/")
	case strings.HasPrefix(endpoint, "ws://"):
		return "websocket", strings.TrimSuffix(strings.TrimPrefix(endpoint, "ws://"), "/")
	case strings.HasPrefix(endpoint, "http://"):
		return "http", strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/")
	default:
		return "http", strings.TrimSuffix(endpoint, "/")
	}
}
