package compare

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erigontech/receipt-prover/internal/rpc"
)

func serveReceipts(result string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
}

func TestBlockReceiptsSame(t *testing.T) {
	receipts := `[{"transactionIndex":"0x0","status":"0x1"},{"transactionIndex":"0x1","status":"0x1"}]`
	serverA := serveReceipts(receipts)
	defer serverA.Close()
	// Different key order must not register as a difference.
	serverB := serveReceipts(`[{"status":"0x1","transactionIndex":"0x0"},{"status":"0x1","transactionIndex":"0x1"}]`)
	defer serverB.Close()

	client := rpc.NewClient("http", "", 0, 0)
	targetA := strings.TrimPrefix(serverA.URL, "http://")
	targetB := strings.TrimPrefix(serverB.URL, "http://")

	result, err := BlockReceipts(context.Background(), client, targetA, targetB, "0xabc")
	if err != nil {
		t.Fatalf("BlockReceipts: %v", err)
	}
	if !result.Same {
		t.Errorf("equivalent receipts should compare equal, diff:\n%s", result.Diff)
	}
	if result.CountA != 2 || result.CountB != 2 {
		t.Errorf("counts: got %d/%d, want 2/2", result.CountA, result.CountB)
	}
}

func TestBlockReceiptsDiffer(t *testing.T) {
	serverA := serveReceipts(`[{"transactionIndex":"0x0","cumulativeGasUsed":"0x5208"}]`)
	defer serverA.Close()
	serverB := serveReceipts(`[{"transactionIndex":"0x0","cumulativeGasUsed":"0x5209"}]`)
	defer serverB.Close()

	client := rpc.NewClient("http", "", 0, 0)
	targetA := strings.TrimPrefix(serverA.URL, "http://")
	targetB := strings.TrimPrefix(serverB.URL, "http://")

	result, err := BlockReceipts(context.Background(), client, targetA, targetB, "0xabc")
	if err != nil {
		t.Fatalf("BlockReceipts: %v", err)
	}
	if result.Same {
		t.Error("differing receipts should not compare equal")
	}
	if result.Diff == "" {
		t.Error("diff should be rendered for differing receipts")
	}
	if !strings.Contains(result.Diff, "cumulativeGasUsed") {
		t.Errorf("diff should mention the changed field:\n%s", result.Diff)
	}
}

func TestBlockReceiptsEndpointError(t *testing.T) {
	serverA := serveReceipts(`[]`)
	defer serverA.Close()

	client := rpc.NewClient("http", "", 0, 0)
	targetA := strings.TrimPrefix(serverA.URL, "http://")

	if _, err := BlockReceipts(context.Background(), client, targetA, "127.0.0.1:1", "0xabc"); err == nil {
		t.Error("unreachable reference endpoint should fail")
	}
}
