// Package core provides the simulation context that replays a memory trace
// through the L1 cache and, in VIPT mode, the translation layer.
package core

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/latency"
	"github.com/sarchlab/cachesim/timing/vm"
)

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// WithLatencyTable sets the timing model used by Finish.
func WithLatencyTable(table *latency.Table) Option {
	return func(c *Core) {
		c.table = table
	}
}

// WithReferenceCheck replays every PIPT access into an independent reference
// directory and counts the accesses where the two disagree.
func WithReferenceCheck() Option {
	return func(c *Core) {
		c.checkReference = true
	}
}

// Core owns every structure of one simulation run. A Core is not safe for
// concurrent use.
type Core struct {
	config  cache.Config
	decoder cache.Decoder

	l1     *cache.L1
	tlb    *vm.TLB
	hwivpt *vm.HWIVPT

	reference      *cache.Reference
	checkReference bool

	table *latency.Table
	log   logr.Logger

	stats    Stats
	finished bool
}

// New normalizes and validates config, then builds the cache and, for VIPT,
// the TLB and inverted page table. Nothing is allocated when config is
// rejected.
func New(config cache.Config, opts ...Option) (*Core, error) {
	requested := config.S

	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Core{
		config: config,
		table:  latency.NewTable(),
		log:    logr.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if config.S != requested {
		c.log.V(1).Info("raised associativity to keep the index inside the page offset",
			"requested", requested, "s", config.S)
	}

	c.decoder = cache.NewDecoder(config)
	c.l1 = cache.NewL1(config)

	if config.VIPT {
		c.tlb = vm.NewTLB(config.T)
		c.hwivpt = vm.NewHWIVPT(config.M)
	}

	if c.checkReference {
		if config.VIPT {
			c.log.Info("reference check ignored in VIPT mode")
		} else {
			c.reference = cache.NewReference(config)
		}
	}

	c.log.V(1).Info("simulator ready",
		"config", config.String(),
		"sets", c.l1.NumSets(),
		"ways", c.l1.BlocksPerSet())

	return c, nil
}

// Config returns the normalized configuration.
func (c *Core) Config() cache.Config {
	return c.config
}

// L1 returns the cache.
func (c *Core) L1() *cache.L1 {
	return c.l1
}

// TLB returns the TLB, or nil in PIPT mode.
func (c *Core) TLB() *vm.TLB {
	return c.tlb
}

// HWIVPT returns the inverted page table, or nil in PIPT mode.
func (c *Core) HWIVPT() *vm.HWIVPT {
	return c.hwivpt
}

// Reference returns the reference directory, or nil when not checking.
func (c *Core) Reference() *cache.Reference {
	return c.reference
}

// Stats returns a snapshot of the raw counters.
func (c *Core) Stats() Stats {
	return c.stats
}

// Finished reports whether Finish has been called.
func (c *Core) Finished() bool {
	return c.finished
}

// Access processes one trace event.
func (c *Core) Access(op cache.Op, addr uint64) {
	if c.finished {
		panic("core: access after finish")
	}

	if c.config.VIPT {
		c.viptAccess(op, addr)
	} else {
		c.piptAccess(op, addr)
	}
}

// Finish computes the derived statistics and ends the run. It must be called
// once, after the last access.
func (c *Core) Finish() Stats {
	if c.finished {
		panic("core: finish called twice")
	}
	c.finished = true

	c.stats.finalize(c.config, c.table)

	c.log.V(1).Info("simulation finished",
		"accesses", c.stats.Accesses(),
		"hitRatioL1", c.stats.HitRatioL1,
		"amat", c.stats.AvgAccessTime)

	return c.stats
}

// String describes the run.
func (c *Core) String() string {
	return fmt.Sprintf("core(%s)", c.config)
}
