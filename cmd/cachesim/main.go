// Command cachesim replays a memory trace through a single-level cache,
// optionally behind a TLB and hardware inverted page table (VIPT), and
// prints the statistics and average memory access time.
//
// Usage:
//
//	cachesim [flags] < trace
//	cachesim --trace app.trace --vipt -c 15 -b 7 -s 1 -p 14 -t 7 -m 18
//
// Each trace line is "r <hex address>" or "w <hex address>".
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/core"
	"github.com/sarchlab/cachesim/timing/latency"
)

type options struct {
	config       cache.Config
	timingConfig string
	trace        string
	jsonOutput   bool
	check        bool
	verbosity    int
}

// report is the --json output.
type report struct {
	Config cache.Config `json:"config"`
	Stats  core.Stats   `json:"stats"`
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "cachesim",
		Short: "Simulate a single-level PIPT or VIPT cache over a memory trace.",
		Long: `cachesim replays a trace of reads and writes through a set-associative ` +
			`write-back L1 cache with LRU replacement. In VIPT mode every access is ` +
			`first translated by a TLB backed by a hardware inverted page table.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.config = resolveConfig(cmd, o.config)
			return run(o, in, out, errOut)
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	f := cmd.Flags()
	f.UintVarP(&o.config.C, "cache-size", "c", 0, "log2 of the cache size in bytes")
	f.UintVarP(&o.config.B, "block-size", "b", 0, "log2 of the block size in bytes")
	f.UintVarP(&o.config.S, "assoc", "s", 0, "log2 of the associativity")
	f.UintVarP(&o.config.P, "page-size", "p", 0, "log2 of the page size in bytes (VIPT)")
	f.UintVarP(&o.config.T, "tlb-size", "t", 0, "log2 of the number of TLB entries (VIPT)")
	f.UintVarP(&o.config.M, "memory-size", "m", 0, "log2 of the number of physical frames (VIPT)")
	f.BoolVarP(&o.config.VIPT, "vipt", "v", false, "virtually indexed, physically tagged mode")
	f.StringVar(&o.timingConfig, "timing-config", "", "path to a timing configuration JSON file")
	f.StringVar(&o.trace, "trace", "", "trace file to read (default: standard input)")
	f.BoolVar(&o.jsonOutput, "json", false, "print the statistics as JSON")
	f.BoolVar(&o.check, "check", false, "cross-check PIPT hits and misses against a reference directory")
	f.CountVarP(&o.verbosity, "verbose", "V", "log verbosity, repeat for more detail")

	return cmd
}

// resolveConfig fills every geometry flag the user did not set from the
// default configuration of the selected mode.
func resolveConfig(cmd *cobra.Command, config cache.Config) cache.Config {
	def := cache.DefaultPIPTConfig()
	if config.VIPT {
		def = cache.DefaultVIPTConfig()
	}

	flags := cmd.Flags()
	fields := []struct {
		name  string
		value *uint
		def   uint
	}{
		{"cache-size", &config.C, def.C},
		{"block-size", &config.B, def.B},
		{"assoc", &config.S, def.S},
		{"page-size", &config.P, def.P},
		{"tlb-size", &config.T, def.T},
		{"memory-size", &config.M, def.M},
	}
	for _, field := range fields {
		if !flags.Changed(field.name) {
			*field.value = field.def
		}
	}

	return config
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

func run(o options, in io.Reader, out, errOut io.Writer) error {
	log := newLogger(errOut, o.verbosity).WithName("cachesim")

	table := latency.NewTable()
	if o.timingConfig != "" {
		timing, err := latency.LoadConfig(o.timingConfig)
		if err != nil {
			return err
		}
		if err := timing.Validate(); err != nil {
			return fmt.Errorf("invalid timing config: %w", err)
		}
		table = latency.NewTableWithConfig(timing)
	}

	opts := []core.Option{core.WithLogger(log), core.WithLatencyTable(table)}
	if o.check {
		opts = append(opts, core.WithReferenceCheck())
	}

	sim, err := core.New(o.config, opts...)
	if err != nil {
		return err
	}

	src := in
	if o.trace != "" && o.trace != "-" {
		f, err := os.Open(o.trace)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer func() { _ = f.Close() }()
		src = f
	}

	n, err := sim.Run(loader.NewReader(src))
	if err != nil {
		return err
	}
	log.V(1).Info("trace consumed", "events", n)

	stats := sim.Finish()

	if o.jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report{Config: sim.Config(), Stats: stats}); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if err := core.WriteReport(out, sim.Config(), stats); err != nil {
		return err
	}

	if o.check && stats.ReferenceMismatches > 0 {
		return fmt.Errorf("reference check failed on %d of %d accesses",
			stats.ReferenceMismatches, stats.Accesses())
	}

	return nil
}
