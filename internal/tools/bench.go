package tools

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/receipt-prover/internal/config"
	"github.com/erigontech/receipt-prover/internal/perf"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

var benchCommand = &cli.Command{
	Name:  "bench",
	Usage: "Load-test the endpoint with a proof-relevant RPC method at a constant rate",
	Flags: append(sharedFlags(),
		&cli.StringFlag{
			Name:  "method",
			Value: "eth_getTransactionReceipt",
			Usage: "JSON-RPC method to attack",
		},
		&cli.StringFlag{
			Name:  "params",
			Value: "[]",
			Usage: "JSON array of method parameters",
		},
		&cli.IntFlag{
			Name:  "qps",
			Value: 50,
			Usage: "requests per second",
		},
		&cli.DurationFlag{
			Name:  "duration",
			Value: 10 * time.Second,
			Usage: "attack duration",
		},
		&cli.Int64Flag{
			Name:  "max-body",
			Value: 1 << 20,
			Usage: "maximum response bytes to read per request",
		},
	),
	Action: runBench,
}

func runBench(c *cli.Context) error {
	endpoint, err := config.ResolveEndpoint(c.String("endpoint"))
	if err != nil {
		return err
	}

	var params []any
	if err := jsonAPI.Unmarshal([]byte(c.String("params")), &params); err != nil {
		return fmt.Errorf("✘ --params must be a JSON array: %w", err)
	}

	cfg := perf.Config{
		Endpoint: endpoint,
		Method:   c.String("method"),
		Params:   params,
		QPS:      c.Int("qps"),
		Duration: c.Duration("duration"),
		Timeout:  c.Duration("timeout"),
		MaxBody:  c.Int64("max-body"),
	}

	metrics, err := perf.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	fmt.Print(perf.Report(cfg, metrics))
	return nil
}
