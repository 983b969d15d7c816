// Command sweep runs a grid of cache configurations over the built-in
// synthetic workloads or recorded traces and compares the results.
//
// Usage:
//
//	sweep [flags]
//
// Example:
//
//	# Compare associativities of a 32 KiB PIPT cache
//	sweep -c 15 -s 0,1,2,3
//
//	# Sweep VIPT page sizes over a recorded trace, CSV on stdout
//	sweep --vipt -p 12,13,14 --trace app.trace --csv
//
// Every run also streams its rows into a CSV file (sweep_<run id>.csv unless
// --out is given), which is flushed and closed on exit.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/benchmarks"
	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/latency"
)

type options struct {
	grid         benchmarks.Grid
	traces       []string
	coreOnly     bool
	parallelism  int
	timingConfig string
	check        bool
	csvOutput    bool
	jsonOutput   bool
	out          string
	noFile       bool
	verbosity    int
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a grid of cache configurations over a set of workloads.",
		Long: `sweep simulates the cross product of the given configuration ` +
			`lists on every workload, in parallel, and prints one row per run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, out, errOut)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.grid.VIPT, "vipt", "v", false, "sweep VIPT configurations")
	f.UintSliceVarP(&o.grid.C, "cache-size", "c", nil, "log2 cache sizes")
	f.UintSliceVarP(&o.grid.B, "block-size", "b", nil, "log2 block sizes")
	f.UintSliceVarP(&o.grid.S, "assoc", "s", nil, "log2 associativities")
	f.UintSliceVarP(&o.grid.P, "page-size", "p", nil, "log2 page sizes (VIPT)")
	f.UintSliceVarP(&o.grid.T, "tlb-size", "t", nil, "log2 TLB entry counts (VIPT)")
	f.UintSliceVarP(&o.grid.M, "memory-size", "m", nil, "log2 physical frame counts (VIPT)")
	f.StringSliceVar(&o.traces, "trace", nil, "trace files to use instead of the synthetic workloads")
	f.BoolVar(&o.coreOnly, "core", false, "run only the core synthetic workloads")
	f.IntVarP(&o.parallelism, "parallel", "j", 0, "simulations to run at once (default: GOMAXPROCS)")
	f.StringVar(&o.timingConfig, "timing-config", "", "path to a timing configuration JSON file")
	f.BoolVar(&o.check, "check", false, "cross-check PIPT runs against a reference directory")
	f.BoolVar(&o.csvOutput, "csv", false, "print CSV instead of a table")
	f.BoolVar(&o.jsonOutput, "json", false, "print a JSON report instead of a table")
	f.StringVar(&o.out, "out", "", "CSV result file (default: sweep_<run id>.csv)")
	f.BoolVar(&o.noFile, "no-file", false, "do not write a CSV result file")
	f.CountVarP(&o.verbosity, "verbose", "V", "log verbosity, repeat for more detail")

	cmd.MarkFlagsMutuallyExclusive("csv", "json")

	return cmd
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func workloads(o options) ([]benchmarks.Workload, error) {
	if len(o.traces) == 0 {
		if o.coreOnly {
			return benchmarks.GetCoreBenchmarks(), nil
		}
		return benchmarks.GetMicrobenchmarks(), nil
	}

	var list []benchmarks.Workload
	for _, path := range o.traces {
		trace, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		list = append(list, benchmarks.FromTrace(name, trace))
	}
	return list, nil
}

func run(o options, out, errOut io.Writer) error {
	log := newLogger(errOut, o.verbosity).WithName("sweep")

	config := benchmarks.DefaultConfig()
	config.Output = out
	config.Logger = log
	config.ReferenceCheck = o.check
	config.Verbose = o.verbosity > 0
	if o.parallelism > 0 {
		config.Parallelism = o.parallelism
	}

	if o.timingConfig != "" {
		timing, err := latency.LoadConfig(o.timingConfig)
		if err != nil {
			return err
		}
		if err := timing.Validate(); err != nil {
			return fmt.Errorf("invalid timing config: %w", err)
		}
		config.Timing = latency.NewTableWithConfig(timing)
	}

	list, err := workloads(o)
	if err != nil {
		return err
	}

	harness := benchmarks.NewHarness(config)
	harness.AddConfigs(o.grid.Configs())
	harness.AddBenchmarks(list)

	log.V(1).Info("sweep started", "runID", harness.RunID(),
		"workloads", len(list), "parallelism", config.Parallelism)

	results := harness.RunAll()

	if !o.noFile {
		path := o.out
		if path == "" {
			path = "sweep_" + harness.RunID() + ".csv"
		}
		writer := benchmarks.NewCSVResultWriter(path)
		if err := writer.Init(); err != nil {
			return err
		}
		for _, r := range results {
			if err := writer.Write(r); err != nil {
				return err
			}
		}
		if err := writer.Flush(); err != nil {
			return err
		}
		log.V(1).Info("results written", "path", writer.Path())
	}

	switch {
	case o.csvOutput:
		return harness.PrintCSV(results)
	case o.jsonOutput:
		return harness.PrintJSON(results)
	default:
		harness.PrintResults(results)
		return nil
	}
}
