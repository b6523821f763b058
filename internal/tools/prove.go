package tools

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/config"
	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/fixtures"
	"github.com/erigontech/receipt-prover/internal/prover"
)

var proveCommand = &cli.Command{
	Name:      "prove",
	Usage:     "Generate a merkle proof of the receipt pertaining to the given transaction hash",
	ArgsUsage: "<txhash>",
	Flags: append(sharedFlags(),
		&cli.StringFlag{
			Name:  "fixture",
			Usage: "replay from a fixture archive instead of querying a node",
		},
	),
	Action: RunProve,
}

// RunProve is the prove action; it also backs the bare
// `receipt-prover <txhash>` invocation.
func RunProve(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("✘ expected exactly one transaction hash argument")
	}
	txHashArg := c.Args().First()
	if err := config.ValidateTxHash(txHashArg); err != nil {
		return err
	}
	txHash, err := eth.ParseHash(txHashArg)
	if err != nil {
		return err
	}

	var proof string
	if fixturePath := c.String("fixture"); fixturePath != "" {
		proof, err = proveFromFixture(fixturePath, txHash)
	} else {
		proof, err = proveFromNode(c, txHash)
	}
	if err != nil {
		return err
	}

	fmt.Println(proof)
	return nil
}

func proveFromNode(c *cli.Context, txHash eth.Hash) (string, error) {
	client, target, err := clientForContext(c)
	if err != nil {
		return "", err
	}
	p := prover.New(client, target, c.Bool("verbose"))
	return p.Run(context.Background(), txHash)
}

func proveFromFixture(path string, txHash eth.Hash) (string, error) {
	fixture, err := fixtures.Read(path)
	if err != nil {
		return "", err
	}
	block, err := fixture.DecodeBlock()
	if err != nil {
		return "", err
	}
	receipts, err := fixture.DecodeReceipts()
	if err != nil {
		return "", err
	}
	return prover.ProveFromBlockData(block, receipts, txHash)
}

// ProveFlags exposes the prove command's flags so the application root can
// accept the short form without naming the subcommand.
func ProveFlags() []cli.Flag {
	return proveCommand.Flags
}
