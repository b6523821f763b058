package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/prover"
	"github.com/erigontech/receipt-prover/internal/rpc"
	"github.com/erigontech/receipt-prover/internal/trie"
)

var verifyRootCommand = &cli.Command{
	Name:  "verify-root",
	Usage: "Rebuild the receipts trie for block ranges or latest blocks and check it against the header root",
	Flags: append(sharedFlags(),
		&cli.Int64Flag{
			Name:  "start-block",
			Value: -1,
			Usage: "Starting block number (inclusive)",
		},
		&cli.Int64Flag{
			Name:  "end-block",
			Value: -1,
			Usage: "Ending block number (inclusive)",
		},
		&cli.BoolFlag{
			Name:  "stop-at-reorg",
			Usage: "Stop at first chain reorg",
		},
		&cli.Float64Flag{
			Name:  "interval",
			Value: 0.1,
			Usage: "Sleep interval between queries in seconds",
		},
	),
	Action: runVerifyRoot,
}

func runVerifyRoot(c *cli.Context) error {
	startBlock := c.Int64("start-block")
	endBlock := c.Int64("end-block")
	stopAtReorg := c.Bool("stop-at-reorg")
	interval := time.Duration(c.Float64("interval") * float64(time.Second))

	isRangeMode := startBlock >= 0 && endBlock >= 0
	isLatestMode := startBlock < 0 && endBlock < 0

	if !isRangeMode && !isLatestMode {
		return fmt.Errorf("✘ you must specify --start-block AND --end-block, or neither")
	}
	if isRangeMode && endBlock < startBlock {
		return fmt.Errorf("✘ end block %d must be >= start block %d", endBlock, startBlock)
	}

	client, target, err := clientForContext(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Printf("Received interrupt signal. Shutting down...")
		cancel()
	}()

	if isRangeMode {
		return verifyRootsRange(ctx, client, target, startBlock, endBlock)
	}
	return verifyRootsLatest(ctx, client, target, interval, stopAtReorg)
}

func verifyRootsRange(ctx context.Context, client *rpc.Client, target string, start, end int64) error {
	log.Printf("Verifying receipts roots from block %d to %d...", start, end)

	for blockNum := start; blockNum <= end; blockNum++ {
		if ctx.Err() != nil {
			log.Printf("Verification terminated by user.")
			return nil //nolint:nilerr // graceful shutdown on signal
		}

		block, err := fetchBlockByNumber(ctx, client, target, blockNum)
		if err != nil {
			return fmt.Errorf("✘ get block %d: %w", blockNum, err)
		}
		if err := verifyBlockRoot(ctx, client, target, block, false); err != nil {
			return err
		}
	}

	log.Printf("Successfully verified all receipts roots from %d to %d.", start, end)
	return nil
}

func verifyRootsLatest(ctx context.Context, client *rpc.Client, target string, interval time.Duration, stopAtReorg bool) error {
	log.Printf("Verifying latest blocks... Press Ctrl+C to stop.")

	var currentBlockNumber uint64
	var previousBlockHash eth.Hash

	for ctx.Err() == nil {
		raw, err := rpc.GetBlockByNumber(ctx, client, target, "latest")
		if err != nil {
			log.Printf("Error: %v", err)
			sleepCtx(ctx, 1*time.Second)
			continue
		}
		block, err := eth.DecodeBlock(raw)
		if err != nil {
			return err
		}

		if block.Number == currentBlockNumber {
			sleepCtx(ctx, interval)
			continue
		}

		if currentBlockNumber > 0 && block.Number != currentBlockNumber+1 {
			log.Printf("Warning: gap detected at block %d, node still syncing...", block.Number)
		}

		reorgDetected := false
		if previousBlockHash != (eth.Hash{}) && block.Number == currentBlockNumber+1 {
			if block.ParentHash != previousBlockHash {
				log.Printf("Warning: REORG DETECTED at block %d", currentBlockNumber)
				log.Printf("Expected parentHash: %s", previousBlockHash.Hex())
				log.Printf("Actual parentHash: %s", block.ParentHash.Hex())
				reorgDetected = true
			}
		}

		currentBlockNumber = block.Number
		previousBlockHash = block.Hash

		if err := verifyBlockRoot(ctx, client, target, block, reorgDetected); err != nil {
			return err
		}

		if reorgDetected && stopAtReorg {
			log.Printf("Stopping verification due to reorg detection (receipts were checked).")
			return nil
		}
	}

	return nil
}

func verifyBlockRoot(ctx context.Context, client *rpc.Client, target string, block *eth.Block, reorgDetected bool) error {
	rawReceipts, err := rpc.GetBlockReceipts(ctx, client, target, block.Hash.Hex())
	if err != nil {
		log.Printf("Error fetching receipts for block %d: %v", block.Number, err)
		return nil // Continue scanning
	}

	receipts := make([]*eth.Receipt, 0, len(rawReceipts))
	for _, raw := range rawReceipts {
		receipt, err := eth.DecodeReceipt(raw)
		if err != nil {
			log.Printf("Error decoding receipt in block %d: %v", block.Number, err)
			return nil
		}
		receipts = append(receipts, receipt)
	}

	receiptsTrie, err := prover.BuildReceiptsTrie(receipts)
	if err != nil {
		log.Printf("Error building receipts trie for block %d: %v", block.Number, err)
		return nil
	}

	if receiptsTrie.Root() == trie.Hash(block.ReceiptsRoot) {
		if reorgDetected {
			log.Printf("Block %d: Reorg detected, but receipts root IS valid.", block.Number)
		} else {
			log.Printf("Block %d: Receipts root verified (%d receipts).", block.Number, len(receipts))
		}
		return nil
	}

	log.Printf("CRITICAL: Receipt root mismatch detected at block %d", block.Number)
	log.Printf("Expected header root: %s", block.ReceiptsRoot.Hex())
	log.Printf("Actual computed root: 0x%x", receiptsTrie.Root())
	return fmt.Errorf("✘ receipt root mismatch at block %d", block.Number)
}

func fetchBlockByNumber(ctx context.Context, client *rpc.Client, target string, blockNum int64) (*eth.Block, error) {
	raw, err := rpc.GetBlockByNumber(ctx, client, target, fmt.Sprintf("0x%x", blockNum))
	if err != nil {
		return nil, err
	}
	return eth.DecodeBlock(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
