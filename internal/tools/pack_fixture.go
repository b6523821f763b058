package tools

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/fixtures"
	"github.com/erigontech/receipt-prover/internal/rpc"
)

var packFixtureCommand = &cli.Command{
	Name:      "pack-fixture",
	Usage:     "Fetch a block and its receipts and pack them into a fixture archive for offline proving",
	ArgsUsage: "<blockhash>",
	Flags: append(sharedFlags(),
		&cli.StringFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "output archive path (.tar, .tar.gz/.tgz or .tar.bz2/.tbz)",
			Required: true,
		},
	),
	Action: runPackFixture,
}

func runPackFixture(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("✘ expected exactly one block hash argument")
	}
	blockHashArg := c.Args().First()
	if _, err := eth.ParseHash(blockHashArg); err != nil {
		return err
	}

	client, target, err := clientForContext(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	rawBlock, err := rpc.GetBlockByHash(ctx, client, target, blockHashArg)
	if err != nil {
		return err
	}
	block, err := eth.DecodeBlock(rawBlock)
	if err != nil {
		return err
	}

	fixture := &fixtures.BlockFixture{Block: rawBlock}
	for _, txHash := range block.Transactions {
		rawReceipt, err := rpc.GetTransactionReceipt(ctx, client, target, txHash.Hex())
		if err != nil {
			return err
		}
		fixture.Receipts = append(fixture.Receipts, rawReceipt)
	}

	outPath := c.String("out")
	if err := fixtures.Write(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("packed block %d (%d receipts) into %s\n", block.Number, len(fixture.Receipts), outPath)
	return nil
}
