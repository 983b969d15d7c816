// Package latency provides the closed-form access-time model of the simulated
// memory system.
//
// The model parameters are configurable via TimingConfig.
package latency

// Table evaluates hit times and the average memory access time (AMAT).
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with the default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing values.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// AssociativityTime is the extra tag comparison time of 2^s ways.
func (t *Table) AssociativityTime(s uint) float64 {
	return float64(s) * t.config.TagCompareTimePerS
}

// TagCompareTime is the full tag comparison time of 2^s ways.
func (t *Table) TagCompareTime(s uint) float64 {
	return t.config.TagCompareTime + t.AssociativityTime(s)
}

// HWIVPTPenalty is the cost of walking an inverted page table over 2^m
// frames after a TLB miss.
func (t *Table) HWIVPTPenalty(m uint) float64 {
	return (1 + t.config.HWIVPTAccessTimePerM*float64(m)) * t.config.DRAMAccessPenalty
}

// PIPTHitTime is the L1 hit time when no translation is needed.
func (t *Table) PIPTHitTime(s uint) float64 {
	return t.config.ArrayLookupTime + t.TagCompareTime(s)
}

// VIPTHitTime is the L1 hit time when the tag comparison waits on the TLB,
// and on a TLB miss, on the inverted page table.
func (t *Table) VIPTHitTime(s, m uint, hitRatioTLB, hitRatioHWIVPT float64) float64 {
	tct := t.TagCompareTime(s)
	missRatioTLB := 1 - hitRatioTLB

	return t.config.ArrayLookupTime +
		hitRatioTLB*tct +
		missRatioTLB*(t.HWIVPTPenalty(m)+tct*hitRatioHWIVPT)
}

// MissPenalty is the expected DRAM time per access.
func (t *Table) MissPenalty(missRatioL1 float64) float64 {
	return missRatioL1 * t.config.DRAMAccessPenalty
}

// PIPTAMAT is the average access time of a PIPT cache.
func (t *Table) PIPTAMAT(s uint, missRatioL1 float64) float64 {
	return t.PIPTHitTime(s) + t.MissPenalty(missRatioL1)
}

// VIPTAMAT is the average access time of a VIPT cache.
func (t *Table) VIPTAMAT(
	s, m uint,
	hitRatioTLB, hitRatioHWIVPT, missRatioL1 float64,
) float64 {
	return t.VIPTHitTime(s, m, hitRatioTLB, hitRatioHWIVPT) +
		t.MissPenalty(missRatioL1)
}
