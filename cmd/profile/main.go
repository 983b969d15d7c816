// Package main provides a profiling wrapper for cachesim to identify
// performance bottlenecks in the simulator itself.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/benchmarks"
	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/core"
)

type options struct {
	vipt       bool
	trace      string
	events     int
	seed       uint64
	repeat     int
	cpuProfile string
	memProfile string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:          "profile",
		Short:        "Profile the simulator on a trace or a random workload.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, out)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.vipt, "vipt", "v", false, "profile the default VIPT configuration")
	f.StringVar(&o.trace, "trace", "", "trace file (default: a uniform random workload)")
	f.IntVar(&o.events, "events", 1_000_000, "random workload length")
	f.Uint64Var(&o.seed, "seed", 1, "random workload seed")
	f.IntVar(&o.repeat, "repeat", 1, "number of times to replay the workload")
	f.StringVar(&o.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	f.StringVar(&o.memProfile, "memprofile", "", "write memory profile to file")

	return cmd
}

func run(o options, out io.Writer) error {
	config := cache.DefaultPIPTConfig()
	if o.vipt {
		config = cache.DefaultVIPTConfig()
	}

	var events []loader.Event
	if o.trace != "" {
		trace, err := loader.Load(o.trace)
		if err != nil {
			return err
		}
		events = trace.Events
	} else {
		events = benchmarks.UniformRandom(o.seed, o.events, 1<<32)
	}

	// Start CPU profiling if requested
	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	var stats core.Stats
	for i := 0; i < o.repeat; i++ {
		var err error
		stats, err = core.Simulate(config, events)
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if o.memProfile != "" {
		f, err := os.Create(o.memProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	total := uint64(len(events)) * uint64(o.repeat)

	_, _ = fmt.Fprintf(out, "\nProfiling Results:\n")
	_, _ = fmt.Fprintf(out, "Configuration: %s\n", config)
	_, _ = fmt.Fprintf(out, "Accesses simulated: %d\n", total)
	_, _ = fmt.Fprintf(out, "L1 hit ratio: %.6f\n", stats.HitRatioL1)
	_, _ = fmt.Fprintf(out, "Elapsed time: %v\n", elapsed)
	if total > 0 && elapsed > 0 {
		_, _ = fmt.Fprintf(out, "Accesses/second: %.0f\n", float64(total)/elapsed.Seconds())
	}

	return nil
}
