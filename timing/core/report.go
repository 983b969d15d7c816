package core

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/cachesim/timing/cache"
)

type reportLine struct {
	name  string
	value any
}

// WriteReport prints the configuration and the statistics of a finished run
// in human-readable form. Translation counters are only printed for VIPT.
func WriteReport(w io.Writer, config cache.Config, s Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	lines := []reportLine{
		{"Accesses", s.Accesses()},
		{"Reads", s.Reads},
		{"Writes", s.Writes},
		{"L1 accesses", s.AccessesL1},
		{"L1 hits", s.HitsL1},
		{"L1 misses", s.MissesL1},
		{"L1 array lookups", s.ArrayLookupsL1},
		{"L1 tag compares", s.TagComparesL1},
		{"L1 write-backs", s.WritebacksL1},
		{"L1 hit ratio", fmt.Sprintf("%.6f", s.HitRatioL1)},
		{"L1 miss ratio", fmt.Sprintf("%.6f", s.MissRatioL1)},
	}

	if config.VIPT {
		lines = append(lines, []reportLine{
			{"Flush write-backs", s.FlushWritebacks},
			{"TLB accesses", s.AccessesTLB},
			{"TLB hits", s.HitsTLB},
			{"TLB misses", s.MissesTLB},
			{"TLB hit ratio", fmt.Sprintf("%.6f", s.HitRatioTLB)},
			{"HW-IVPT accesses", s.AccessesHWIVPT},
			{"HW-IVPT hits", s.HitsHWIVPT},
			{"HW-IVPT misses", s.MissesHWIVPT},
			{"HW-IVPT hit ratio", fmt.Sprintf("%.6f", s.HitRatioHWIVPT)},
		}...)
	}

	if s.ReferenceMismatches > 0 {
		lines = append(lines, reportLine{"Reference mismatches", s.ReferenceMismatches})
	}

	if _, err := fmt.Fprintf(tw, "Cache Settings\t%s\n\n", config); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s:\t%v\n", l.name, l.value); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if _, err := fmt.Fprintf(tw, "Average access time:\t%.6f\n", s.AvgAccessTime); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return tw.Flush()
}
