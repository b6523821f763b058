package prover

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/rpc"
	"github.com/erigontech/receipt-prover/internal/trie"
)

// Prover runs the proof pipeline against one endpoint.
type Prover struct {
	client  *rpc.Client
	target  string
	verbose bool
}

// New builds a Prover over an rpc client and its scheme-less target.
func New(client *rpc.Client, target string, verbose bool) *Prover {
	return &Prover{client: client, target: target, verbose: verbose}
}

func (p *Prover) logf(format string, args ...any) {
	if p.verbose {
		log.Printf(format, args...)
	}
}

// Run produces the hex proof for txHash: after the node probe, which writes
// nothing, each step reads the slots the previous ones wrote and writes
// exactly one new slot. Any failure aborts the run.
func (p *Prover) Run(ctx context.Context, txHash eth.Hash) (string, error) {
	state := NewState()
	if err := state.SetTxHash(txHash); err != nil {
		return "", err
	}
	if err := state.SetEndpoint(p.target); err != nil {
		return "", err
	}

	steps := []func(context.Context, *State) error{
		p.connectToNode,
		p.fetchBlock,
		p.fetchReceipts,
		p.computeIndex,
		p.buildReceiptsTrie,
		p.extractBranch,
	}
	for _, step := range steps {
		if err := step(ctx, state); err != nil {
			return "", err
		}
	}

	branch, err := state.Branch()
	if err != nil {
		return "", err
	}
	return trie.HexProof(branch), nil
}

// connectToNode probes the endpoint with a latest-block query before any
// real work happens.
func (p *Prover) connectToNode(ctx context.Context, _ *State) error {
	p.logf("✔ Connecting to node...")
	raw, err := rpc.GetBlockByNumber(ctx, p.client, p.target, "latest")
	if err != nil {
		return fmt.Errorf("✘ Cannot connect to node!\n%w", err)
	}
	block, err := eth.DecodeBlock(raw)
	if err != nil {
		return err
	}
	p.logf("✔ Connection successful! Latest block number: %d", block.Number)
	return nil
}

// fetchBlock resolves the transaction hash to its receipt, follows the
// receipt's block hash, and stores the containing block.
func (p *Prover) fetchBlock(ctx context.Context, state *State) error {
	txHash, err := state.TxHash()
	if err != nil {
		return err
	}
	p.logf("✔ Getting block from transaction hash: %s", txHash.Hex())

	rawReceipt, err := rpc.GetTransactionReceipt(ctx, p.client, p.target, txHash.Hex())
	if err != nil {
		return err
	}
	receipt, err := eth.DecodeReceipt(rawReceipt)
	if err != nil {
		return err
	}

	rawBlock, err := rpc.GetBlockByHash(ctx, p.client, p.target, receipt.BlockHash.Hex())
	if err != nil {
		return err
	}
	block, err := eth.DecodeBlock(rawBlock)
	if err != nil {
		return err
	}
	p.logf("✔ Block number: %d, transactions: %d", block.Number, len(block.Transactions))
	return state.SetBlock(block)
}

// fetchReceipts pulls the receipt of every transaction in the block, in
// block order, cross-checking each receipt's bloom against its logs.
func (p *Prover) fetchReceipts(ctx context.Context, state *State) error {
	block, err := state.Block()
	if err != nil {
		return err
	}
	p.logf("✔ Getting %d receipts from block...", len(block.Transactions))

	receipts := make([]*eth.Receipt, 0, len(block.Transactions))
	for _, txHash := range block.Transactions {
		raw, err := rpc.GetTransactionReceipt(ctx, p.client, p.target, txHash.Hex())
		if err != nil {
			return err
		}
		receipt, err := eth.DecodeReceipt(raw)
		if err != nil {
			return err
		}
		if !receipt.CheckBloom() {
			return fmt.Errorf("✘ Receipt logs bloom does not match its logs: %s", txHash.Hex())
		}
		receipts = append(receipts, receipt)
	}
	return state.SetReceipts(receipts)
}

// computeIndex locates the target transaction within the block.
func (p *Prover) computeIndex(_ context.Context, state *State) error {
	txHash, err := state.TxHash()
	if err != nil {
		return err
	}
	p.logf("✔ Getting transaction index of hash: %s", txHash.Hex())
	block, err := state.Block()
	if err != nil {
		return err
	}
	index, err := block.TransactionIndex(txHash)
	if err != nil {
		return err
	}
	return state.SetIndex(index)
}

// buildReceiptsTrie inserts every receipt keyed by rlp(index) and checks the
// resulting root against the block header.
func (p *Prover) buildReceiptsTrie(_ context.Context, state *State) error {
	receipts, err := state.Receipts()
	if err != nil {
		return err
	}
	block, err := state.Block()
	if err != nil {
		return err
	}
	p.logf("✔ Building receipts trie from %d receipts...", len(receipts))

	receiptsTrie, err := BuildReceiptsTrie(receipts)
	if err != nil {
		return err
	}

	root := receiptsTrie.Root()
	if root != trie.Hash(block.ReceiptsRoot) {
		return fmt.Errorf(
			"✘ Receipts trie root does not match the block's receipts root!\n✘ computed: 0x%x\n✘ expected: %s",
			root, block.ReceiptsRoot.Hex(),
		)
	}
	p.logf("✔ Receipts trie root matches block header: %s", block.ReceiptsRoot.Hex())
	return state.SetReceiptsTrie(receiptsTrie)
}

// extractBranch walks the trie by the target index and stores the
// root-to-terminal node stack.
func (p *Prover) extractBranch(_ context.Context, state *State) error {
	receiptsTrie, err := state.ReceiptsTrie()
	if err != nil {
		return err
	}
	index, err := state.Index()
	if err != nil {
		return err
	}
	p.logf("✔ Extracting branch at transaction index: %d", index)

	branch, err := receiptsTrie.BranchForKey(trie.KeyForIndex(index))
	if err != nil {
		if errors.Is(err, trie.ErrKeyNotFound) {
			return fmt.Errorf("✘ Error! No receipt in trie at given index: %d", index)
		}
		return err
	}
	return state.SetBranch(branch)
}

// BuildReceiptsTrie builds a fresh trie over receipts keyed by their
// position, in the given order. Any order yields the same root.
func BuildReceiptsTrie(receipts []*eth.Receipt) (*trie.Trie, error) {
	receiptsTrie := trie.New()
	for i, receipt := range receipts {
		if err := receiptsTrie.Put(trie.KeyForIndex(uint64(i)), receipt.EncodeRLP()); err != nil {
			return nil, err
		}
	}
	return receiptsTrie, nil
}

// ProveFromBlockData derives a proof from an already-fetched block and its
// receipts; the offline path used when replaying fixture archives.
func ProveFromBlockData(block *eth.Block, receipts []*eth.Receipt, txHash eth.Hash) (string, error) {
	index, err := block.TransactionIndex(txHash)
	if err != nil {
		return "", err
	}
	receiptsTrie, err := BuildReceiptsTrie(receipts)
	if err != nil {
		return "", err
	}
	if receiptsTrie.Root() != trie.Hash(block.ReceiptsRoot) {
		return "", fmt.Errorf(
			"✘ Receipts trie root does not match the block's receipts root!\n✘ computed: 0x%x\n✘ expected: %s",
			receiptsTrie.Root(), block.ReceiptsRoot.Hex(),
		)
	}
	branch, err := receiptsTrie.BranchForKey(trie.KeyForIndex(index))
	if err != nil {
		if errors.Is(err, trie.ErrKeyNotFound) {
			return "", fmt.Errorf("✘ Error! No receipt in trie at given index: %d", index)
		}
		return "", err
	}
	return trie.HexProof(branch), nil
}
