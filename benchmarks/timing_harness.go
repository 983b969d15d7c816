// Package benchmarks runs cache configurations against synthetic and
// recorded workloads and reports the results side by side.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/core"
	"github.com/sarchlab/cachesim/timing/latency"
)

// Version is reported in JSON output.
const Version = "1.0.0"

// BenchmarkResult holds the outcome of one configuration on one workload.
type BenchmarkResult struct {
	// RunID identifies the harness run the result belongs to
	RunID string `json:"run_id"`

	// Workload names the reference stream
	Workload string `json:"workload"`

	// Config is the configuration after normalization
	Config cache.Config `json:"config"`

	// Stats are the counters and derived values of the run
	Stats core.Stats `json:"stats"`

	// Error is set when the configuration could not be simulated
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Failed reports whether the run could not be simulated.
func (r BenchmarkResult) Failed() bool {
	return r.Error != ""
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Parallelism bounds the number of simulations running at once.
	// Zero means GOMAXPROCS.
	Parallelism int

	// Timing is the latency table used for AMAT (default: latency.NewTable())
	Timing *latency.Table

	// ReferenceCheck replays PIPT runs into the reference directory
	ReferenceCheck bool

	// Logger receives per-run progress at V(1)
	Logger logr.Logger

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose adds the raw counters to the table output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Parallelism: runtime.GOMAXPROCS(0),
		Timing:      latency.NewTable(),
		Logger:      logr.Discard(),
		Output:      os.Stdout,
	}
}

// Harness runs every configuration against every workload.
type Harness struct {
	config    HarnessConfig
	runID     string
	configs   []cache.Config
	workloads []Workload
}

// NewHarness creates a new benchmark harness with a fresh run ID.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.NewTable()
	}
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.GOMAXPROCS(0)
	}
	if config.Logger.GetSink() == nil {
		config.Logger = logr.Discard()
	}

	return &Harness{
		config: config,
		runID:  xid.New().String(),
	}
}

// RunID returns the identifier stamped on every result of this harness.
func (h *Harness) RunID() string {
	return h.runID
}

// AddConfig adds a cache configuration to the sweep.
func (h *Harness) AddConfig(c cache.Config) {
	h.configs = append(h.configs, c)
}

// AddConfigs adds multiple cache configurations to the sweep.
func (h *Harness) AddConfigs(configs []cache.Config) {
	h.configs = append(h.configs, configs...)
}

// AddBenchmark adds a workload to the sweep.
func (h *Harness) AddBenchmark(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddBenchmarks adds multiple workloads to the sweep.
func (h *Harness) AddBenchmarks(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll simulates every configuration on every workload. Results are
// ordered by configuration, then workload, whatever order the runs finish in.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, len(h.configs)*len(h.workloads))

	sem := make(chan struct{}, h.config.Parallelism)
	var wg sync.WaitGroup

	for ci, c := range h.configs {
		for wi, w := range h.workloads {
			i := ci*len(h.workloads) + wi

			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = h.runBenchmark(c, w)
			}()
		}
	}

	wg.Wait()

	return results
}

// runBenchmark executes a single configuration on a single workload.
func (h *Harness) runBenchmark(c cache.Config, w Workload) BenchmarkResult {
	result := BenchmarkResult{
		RunID:    h.runID,
		Workload: w.Name,
		Config:   c.Normalized(),
	}

	opts := []core.Option{core.WithLatencyTable(h.config.Timing)}
	if h.config.ReferenceCheck {
		opts = append(opts, core.WithReferenceCheck())
	}

	start := time.Now()
	stats, err := core.Simulate(c, w.Events, opts...)
	result.WallTime = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		h.config.Logger.V(1).Info("run failed",
			"workload", w.Name, "config", c.String(), "error", err)
		return result
	}

	result.Stats = stats
	h.config.Logger.V(1).Info("run finished",
		"workload", w.Name, "config", result.Config.String(),
		"amat", stats.AvgAccessTime, "wall", result.WallTime)

	return result
}

// PrintResults outputs the results as an aligned table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	tw := tabwriter.NewWriter(h.config.Output, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(h.config.Output, "=== Cache Sweep %s ===\n\n", h.runID)

	header := "config\tworkload\taccesses\thit_l1\thit_tlb\thit_hwivpt\tamat"
	if h.config.Verbose {
		header += "\tmisses_l1\twritebacks\tflush_writebacks\twall"
	}
	_, _ = fmt.Fprintln(tw, header)

	for _, r := range results {
		if r.Failed() {
			_, _ = fmt.Fprintf(tw, "%s\t%s\terror: %s\n", r.Config, r.Workload, r.Error)
			continue
		}

		s := r.Stats
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%.6f\t%s\t%s\t%.6f",
			r.Config, r.Workload, s.Accesses(), s.HitRatioL1,
			viptRatio(r.Config, s.HitRatioTLB), viptRatio(r.Config, s.HitRatioHWIVPT),
			s.AvgAccessTime)
		if h.config.Verbose {
			_, _ = fmt.Fprintf(tw, "\t%d\t%d\t%d\t%v",
				s.MissesL1, s.WritebacksL1, s.FlushWritebacks, r.WallTime)
		}
		_, _ = fmt.Fprintln(tw)
	}

	_ = tw.Flush()
}

func viptRatio(c cache.Config, ratio float64) string {
	if !c.VIPT {
		return "-"
	}
	return fmt.Sprintf("%.6f", ratio)
}

// PrintCSV outputs the results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) error {
	return WriteCSV(h.config.Output, results)
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// RunID identifies the harness run
	RunID string `json:"run_id"`

	// Timestamp when the report was written
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Timing is the latency model the AMATs were computed with
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all runs.
type ReportSummary struct {
	// TotalRuns is the number of configuration/workload pairs
	TotalRuns int `json:"total_runs"`

	// FailedRuns is the number of runs with an invalid configuration
	FailedRuns int `json:"failed_runs"`

	// TotalAccesses is the sum of all simulated references
	TotalAccesses uint64 `json:"total_accesses"`

	// BestAMAT is the lowest AMAT over successful runs
	BestAMAT float64 `json:"best_amat"`

	// BestConfig is the configuration that reached BestAMAT
	BestConfig string `json:"best_config,omitempty"`

	// TotalWallTime is the total wall clock time for all runs
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates the results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalRuns: len(results)}

	for _, r := range results {
		summary.TotalWallTime += r.WallTime
		if r.Failed() {
			summary.FailedRuns++
			continue
		}

		summary.TotalAccesses += r.Stats.Accesses()
		if summary.BestConfig == "" || r.Stats.AvgAccessTime < summary.BestAMAT {
			summary.BestAMAT = r.Stats.AvgAccessTime
			summary.BestConfig = r.Config.String()
		}
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			RunID:     h.runID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Timing:    h.config.Timing.Config(),
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
