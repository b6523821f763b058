// Package compare diffs the receipts of one block as served by two
// endpoints: triage tooling for receipts-root mismatches.
package compare

import (
	"bytes"
	"context"
	"fmt"

	"github.com/josephburnett/jd/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/receipt-prover/internal/rpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the outcome of one comparison.
type Result struct {
	Same bool
	// Diff is the rendered structural difference; empty when Same.
	Diff string
	// CountA and CountB are the receipt counts returned by each endpoint.
	CountA int
	CountB int
}

// BlockReceipts fetches the block's receipts from both endpoints and
// structurally diffs them.
func BlockReceipts(ctx context.Context, client *rpc.Client, targetA, targetB, blockHash string) (*Result, error) {
	receiptsA, err := rpc.GetBlockReceipts(ctx, client, targetA, blockHash)
	if err != nil {
		return nil, fmt.Errorf("✘ fetching receipts from %s: %w", targetA, err)
	}
	receiptsB, err := rpc.GetBlockReceipts(ctx, client, targetB, blockHash)
	if err != nil {
		return nil, fmt.Errorf("✘ fetching receipts from %s: %w", targetB, err)
	}

	result := &Result{CountA: len(receiptsA), CountB: len(receiptsB)}

	// Round-trip both through the JSON encoder so formatting differences
	// between daemons cannot show up as diffs.
	canonicalA, err := canonicalize(receiptsA)
	if err != nil {
		return nil, err
	}
	canonicalB, err := canonicalize(receiptsB)
	if err != nil {
		return nil, err
	}

	// Fast path: byte-identical canonical forms need no diffing.
	if bytes.Equal(canonicalA, canonicalB) {
		result.Same = true
		return result, nil
	}

	nodeA, err := jd.ReadJsonString(string(canonicalA))
	if err != nil {
		return nil, fmt.Errorf("✘ cannot parse receipts from %s: %w", targetA, err)
	}
	nodeB, err := jd.ReadJsonString(string(canonicalB))
	if err != nil {
		return nil, fmt.Errorf("✘ cannot parse receipts from %s: %w", targetB, err)
	}

	diff := nodeA.Diff(nodeB)
	result.Diff = diff.Render()
	result.Same = len(diff) == 0
	return result, nil
}

func canonicalize(receipts []jsoniter.RawMessage) ([]byte, error) {
	var decoded []any
	raw, err := json.Marshal(receipts)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(decoded)
}
