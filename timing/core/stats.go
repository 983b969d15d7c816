package core

import (
	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/latency"
)

// Stats holds the counters of one simulation run. The raw counters grow
// during the run; the ratios and AvgAccessTime are filled in once, by
// Core.Finish.
type Stats struct {
	AccessesL1     uint64 `json:"accesses_l1"`
	HitsL1         uint64 `json:"hits_l1"`
	MissesL1       uint64 `json:"misses_l1"`
	ArrayLookupsL1 uint64 `json:"array_lookups_l1"`
	TagComparesL1  uint64 `json:"tag_compares_l1"`
	Reads          uint64 `json:"reads"`
	Writes         uint64 `json:"writes"`
	WritebacksL1   uint64 `json:"writebacks_l1"`
	// FlushWritebacks counts dirty blocks written back by translation-miss
	// flushes.
	FlushWritebacks uint64 `json:"cache_flush_writebacks"`

	AccessesTLB uint64 `json:"accesses_tlb"`
	HitsTLB     uint64 `json:"hits_tlb"`
	MissesTLB   uint64 `json:"misses_tlb"`

	AccessesHWIVPT uint64 `json:"accesses_hw_ivpt"`
	HitsHWIVPT     uint64 `json:"hits_hw_ivpt"`
	MissesHWIVPT   uint64 `json:"misses_hw_ivpt"`

	// ReferenceMismatches counts accesses on which the reference directory
	// disagreed with the L1. Only kept when the reference check is enabled.
	ReferenceMismatches uint64 `json:"reference_mismatches,omitempty"`

	HitRatioL1      float64 `json:"hit_ratio_l1"`
	MissRatioL1     float64 `json:"miss_ratio_l1"`
	HitRatioTLB     float64 `json:"hit_ratio_tlb"`
	MissRatioTLB    float64 `json:"miss_ratio_tlb"`
	HitRatioHWIVPT  float64 `json:"hit_ratio_hw_ivpt"`
	MissRatioHWIVPT float64 `json:"miss_ratio_hw_ivpt"`
	AvgAccessTime   float64 `json:"avg_access_time"`
}

// Accesses returns the number of trace events processed.
func (s *Stats) Accesses() uint64 {
	return s.Reads + s.Writes
}

// ratio returns num/den. An empty denominator yields 0 so that the derived
// record stays finite for an empty trace.
func ratio(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// finalize derives the ratios and the AMAT from the raw counters.
func (s *Stats) finalize(config cache.Config, table *latency.Table) {
	s.HitRatioL1 = ratio(s.HitsL1, s.AccessesL1)
	s.MissRatioL1 = 1 - s.HitRatioL1

	if !config.VIPT {
		s.AvgAccessTime = table.PIPTAMAT(config.S, s.MissRatioL1)
		return
	}

	s.HitRatioTLB = ratio(s.HitsTLB, s.AccessesTLB)
	s.MissRatioTLB = 1 - s.HitRatioTLB
	s.HitRatioHWIVPT = ratio(s.HitsHWIVPT, s.AccessesHWIVPT)
	s.MissRatioHWIVPT = 1 - s.HitRatioHWIVPT

	s.AvgAccessTime = table.VIPTAMAT(config.S, config.M,
		s.HitRatioTLB, s.HitRatioHWIVPT, s.MissRatioL1)
}

// countL1 folds one tag comparison into the counters.
func (s *Stats) countL1(result cache.AccessResult) {
	if result.Hit {
		s.HitsL1++
	} else {
		s.MissesL1++
	}

	if result.Writeback {
		s.WritebacksL1++
	}

	if result.Write {
		s.Writes++
	} else {
		s.Reads++
	}
}
