package tools

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/compare"
	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/rpc"
)

var compareReceiptsCommand = &cli.Command{
	Name:      "compare-receipts",
	Usage:     "Fetch one block's receipts from two endpoints and show a structural diff",
	ArgsUsage: "<blockhash>",
	Flags: append(sharedFlags(),
		&cli.StringFlag{
			Name:     "reference-endpoint",
			Aliases:  []string{"r"},
			Usage:    "second endpoint to compare against",
			Required: true,
		},
	),
	Action: runCompareReceipts,
}

func runCompareReceipts(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("✘ expected exactly one block hash argument")
	}
	blockHash := c.Args().First()
	if _, err := eth.ParseHash(blockHash); err != nil {
		return err
	}

	client, target, err := clientForContext(c)
	if err != nil {
		return err
	}
	_, referenceTarget := rpc.NormalizeEndpoint(c.String("reference-endpoint"))

	result, err := compare.BlockReceipts(context.Background(), client, target, referenceTarget, blockHash)
	if err != nil {
		return err
	}

	if result.Same {
		fmt.Printf("receipts match (%d receipts)\n", result.CountA)
		return nil
	}
	fmt.Printf("receipts differ (%d vs %d):\n%s", result.CountA, result.CountB, result.Diff)
	return fmt.Errorf("✘ receipts differ between endpoints")
}
