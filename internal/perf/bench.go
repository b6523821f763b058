// Package perf load-tests a JSON-RPC endpoint with the calls the proof
// pipeline leans on, using a constant-rate vegeta attack.
package perf

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/erigontech/receipt-prover/internal/rpc"
)

// Config describes one attack.
type Config struct {
	// Endpoint is the full URL, scheme included.
	Endpoint string
	// Method and Params form the JSON-RPC request every hit sends.
	Method string
	Params []any
	// QPS is the constant request rate; Duration how long to sustain it.
	QPS      int
	Duration time.Duration
	// Timeout bounds each request; MaxBody caps read response bytes.
	Timeout time.Duration
	MaxBody int64
}

// Run executes the attack and collects vegeta metrics.
func Run(ctx context.Context, cfg Config) (*vegeta.Metrics, error) {
	if cfg.QPS <= 0 || cfg.Duration <= 0 {
		return nil, fmt.Errorf("✘ bench needs a positive rate and duration")
	}

	target := vegeta.Target{
		Method: "POST",
		URL:    cfg.Endpoint,
		Body:   rpc.BuildRequest(cfg.Method, cfg.Params...),
		Header: http.Header{"Content-Type": []string{"application/json"}},
	}
	rate := vegeta.Rate{Freq: cfg.QPS, Per: time.Second}
	targeter := vegeta.NewStaticTargeter(target)

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: cfg.QPS,
	}

	// High worker counts can saturate server resources.
	attacker := vegeta.NewAttacker(
		vegeta.Client(&http.Client{Transport: tr}),
		vegeta.Timeout(cfg.Timeout),
		vegeta.Workers(vegeta.DefaultWorkers),
		vegeta.MaxBody(cfg.MaxBody),
		vegeta.KeepAlive(true),
	)

	var metrics vegeta.Metrics
	resultCh := attacker.Attack(targeter, rate, cfg.Duration, cfg.Method)
	for {
		select {
		case result := <-resultCh:
			if result == nil {
				metrics.Close()
				return &metrics, nil
			}
			metrics.Add(result)
		case <-ctx.Done():
			attacker.Stop()
			metrics.Close()
			return &metrics, ctx.Err()
		}
	}
}

// Report renders the latency percentiles and success ratio of one attack.
func Report(cfg Config, metrics *vegeta.Metrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "method: %s rate: %d qps duration: %v\n", cfg.Method, cfg.QPS, cfg.Duration)
	fmt.Fprintf(&sb, "requests: %d success: %.2f%%\n", metrics.Requests, metrics.Success*100)
	fmt.Fprintf(&sb, "latency min/mean/max: %v / %v / %v\n",
		metrics.Latencies.Min, metrics.Latencies.Mean, metrics.Latencies.Max)
	fmt.Fprintf(&sb, "latency p50/p90/p95/p99: %v / %v / %v / %v\n",
		metrics.Latencies.P50, metrics.Latencies.P90, metrics.Latencies.P95, metrics.Latencies.P99)
	if len(metrics.Errors) > 0 {
		fmt.Fprintf(&sb, "errors: %s\n", strings.Join(metrics.Errors, "; "))
	}
	return sb.String()
}
