package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/tools"
)

func main() {
	app := &cli.App{
		Name:  "receipt-prover",
		Usage: "generate a merkle proof that a transaction receipt is included under a block's receipts root",
		Description: "Given a transaction hash, fetches the containing block and every receipt in it, " +
			"rebuilds the block's receipts trie in memory, and prints the hex-encoded merkle branch " +
			"proving the target receipt's membership under the header's receiptsRoot.",
		ArgsUsage: "<txhash>",
		Flags:     tools.ProveFlags(),
		Action:    tools.RunProve,
		Commands:  tools.Commands(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
