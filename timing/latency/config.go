package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the fixed parameters of the access-time model. Times are
// in nanoseconds.
type TimingConfig struct {
	// ArrayLookupTime is the time to read the set out of the L1 data array.
	// Default: 1.
	ArrayLookupTime float64 `json:"array_lookup_time"`

	// TagCompareTime is the base time of the L1 tag comparison.
	// Default: 1.
	TagCompareTime float64 `json:"tag_compare_time"`

	// TagCompareTimePerS is added to the tag comparison for every doubling of
	// associativity. Default: 0.2.
	TagCompareTimePerS float64 `json:"tag_compare_time_per_s"`

	// DRAMAccessPenalty is the time to reach main memory.
	// Default: 100.
	DRAMAccessPenalty float64 `json:"dram_access_penalty"`

	// HWIVPTAccessTimePerM scales the inverted page table walk with the
	// log2 number of physical frames, as a fraction of a DRAM access.
	// Default: 0.02.
	HWIVPTAccessTimePerM float64 `json:"hwivpt_access_time_per_m"`
}

// DefaultTimingConfig returns the default model parameters.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ArrayLookupTime:      1,
		TagCompareTime:       1,
		TagCompareTimePerS:   0.2,
		DRAMAccessPenalty:    100,
		HWIVPTAccessTimePerM: 0.02,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that no time is negative and that memory is not free.
func (c *TimingConfig) Validate() error {
	if c.ArrayLookupTime < 0 {
		return fmt.Errorf("array_lookup_time must be >= 0")
	}
	if c.TagCompareTime < 0 {
		return fmt.Errorf("tag_compare_time must be >= 0")
	}
	if c.TagCompareTimePerS < 0 {
		return fmt.Errorf("tag_compare_time_per_s must be >= 0")
	}
	if c.DRAMAccessPenalty <= 0 {
		return fmt.Errorf("dram_access_penalty must be > 0")
	}
	if c.HWIVPTAccessTimePerM < 0 {
		return fmt.Errorf("hwivpt_access_time_per_m must be >= 0")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
