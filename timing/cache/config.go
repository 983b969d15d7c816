// Package cache models a single-level set-associative L1 cache with a
// write-back, write-allocate policy and LRU replacement.
package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a configuration describes a geometry that
// cannot be built.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// Size limits that keep a run's allocation bounded.
const (
	MaxTLBBits    = 20
	MaxMemoryBits = 26
)

// Config describes the simulated memory system. All sizes are log2 values.
type Config struct {
	// C is the cache size in bytes, log2.
	C uint `json:"c"`
	// B is the block size in bytes, log2.
	B uint `json:"b"`
	// S is the associativity (ways per set), log2.
	S uint `json:"s"`

	// VIPT selects a virtually-indexed, physically-tagged cache fronted by a
	// TLB and an inverted page table. The fields below are only used then.
	VIPT bool `json:"vipt"`
	// P is the page size in bytes, log2.
	P uint `json:"p,omitempty"`
	// T is the number of TLB entries, log2.
	T uint `json:"t,omitempty"`
	// M is the physical memory size in pages, log2.
	M uint `json:"m,omitempty"`
}

// DefaultPIPTConfig returns a 1KB, 16-way cache with 64B blocks.
func DefaultPIPTConfig() Config {
	return Config{
		C: 10,
		B: 6,
		S: 4,
	}
}

// DefaultVIPTConfig returns a 32KB, 2-way VIPT cache with 128B blocks,
// 16KB pages, a 128-entry TLB and 2^18 physical frames.
func DefaultVIPTConfig() Config {
	return Config{
		C:    15,
		B:    7,
		S:    1,
		VIPT: true,
		P:    14,
		T:    7,
		M:    18,
	}
}

// MinWays returns the smallest associativity (log2) for which every index bit
// lies inside the page offset.
func (c Config) MinWays() uint {
	if !c.VIPT || c.C <= c.P {
		return 0
	}
	return c.C - c.P
}

// Normalize raises S to the minimum legal VIPT value. It is a no-op for PIPT
// configurations and for legal VIPT configurations, so calling it twice has
// the same effect as calling it once.
func (c *Config) Normalize() {
	if floor := c.MinWays(); c.S < floor {
		c.S = floor
	}
}

// Normalized returns a normalized copy of c.
func (c Config) Normalized() Config {
	c.Normalize()
	return c
}

// Validate checks that the configuration can be built. It does not repair
// anything; call Normalize first.
func (c Config) Validate() error {
	if c.C >= 64 {
		return fmt.Errorf("%w: cache size 2^%d is too large", ErrInvalidConfig, c.C)
	}
	if c.B+c.S > c.C {
		return fmt.Errorf("%w: block size 2^%d times 2^%d ways exceeds cache size 2^%d",
			ErrInvalidConfig, c.B, c.S, c.C)
	}

	if !c.VIPT {
		return nil
	}

	if c.P >= 64 {
		return fmt.Errorf("%w: page size 2^%d is too large", ErrInvalidConfig, c.P)
	}
	if c.P < c.B {
		return fmt.Errorf("%w: page size 2^%d is smaller than block size 2^%d",
			ErrInvalidConfig, c.P, c.B)
	}
	if c.S < c.MinWays() {
		return fmt.Errorf("%w: %d index bits exceed the %d page offset bits above the block offset",
			ErrInvalidConfig, c.IndexBits(), c.P-c.B)
	}
	if c.T > MaxTLBBits {
		return fmt.Errorf("%w: 2^%d TLB entries exceeds the limit of 2^%d",
			ErrInvalidConfig, c.T, MaxTLBBits)
	}
	if c.M > MaxMemoryBits {
		return fmt.Errorf("%w: 2^%d physical frames exceeds the limit of 2^%d",
			ErrInvalidConfig, c.M, MaxMemoryBits)
	}

	return nil
}

// IndexBits returns the number of set-index bits, C-B-S.
func (c Config) IndexBits() uint {
	return c.C - c.B - c.S
}

// NumSets returns the number of sets.
func (c Config) NumSets() uint64 {
	return 1 << c.IndexBits()
}

// BlocksPerSet returns the associativity.
func (c Config) BlocksPerSet() uint64 {
	return 1 << c.S
}

// String renders the configuration in flag form.
func (c Config) String() string {
	if c.VIPT {
		return fmt.Sprintf("VIPT c=%d b=%d s=%d p=%d t=%d m=%d",
			c.C, c.B, c.S, c.P, c.T, c.M)
	}
	return fmt.Sprintf("PIPT c=%d b=%d s=%d", c.C, c.B, c.S)
}
