// Package tools registers the CLI subcommands.
package tools

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/config"
	"github.com/erigontech/receipt-prover/internal/rpc"
)

// Commands returns all subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		proveCommand,
		verifyRootCommand,
		compareReceiptsCommand,
		benchCommand,
		packFixtureCommand,
	}
}

// clientForContext builds the RPC client and its scheme-less target from the
// shared endpoint/jwt/timeout/verbose flags.
func clientForContext(c *cli.Context) (*rpc.Client, string, error) {
	endpoint, err := config.ResolveEndpoint(c.String("endpoint"))
	if err != nil {
		return nil, "", err
	}
	transport, target := rpc.NormalizeEndpoint(endpoint)
	if !config.IsValidTransport(transport) {
		return nil, "", fmt.Errorf("✘ invalid connection type: %s", transport)
	}

	var jwtAuth string
	if jwtFile := c.String("jwt"); jwtFile != "" {
		secret, err := config.GetJWTSecret(jwtFile)
		if err != nil {
			return nil, "", fmt.Errorf("✘ secret file not found: %s", jwtFile)
		}
		if jwtAuth, err = rpc.BuildJWTAuth(secret); err != nil {
			return nil, "", err
		}
	}

	verbose := 0
	if c.Bool("verbose") {
		verbose = 1
	}
	client := rpc.NewClient(transport, jwtAuth, c.Duration("timeout"), verbose)
	return client, target, nil
}

// sharedFlags are the connection flags every endpoint-facing command takes.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Aliases: []string{"e"},
			Usage:   "JSON-RPC endpoint URL (falls back to ENDPOINT env / ./.env, then " + config.DefaultEndpoint + ")",
		},
		&cli.StringFlag{
			Name:  "jwt",
			Usage: "authentication token secret file",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 5 * time.Second,
			Usage: "per-request timeout",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose mode for additional output",
		},
	}
}
