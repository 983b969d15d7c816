package core

import (
	"github.com/sarchlab/cachesim/timing/cache"
)

// piptAccess looks the physical address up directly.
func (c *Core) piptAccess(op cache.Op, addr uint64) {
	c.stats.AccessesL1++

	tag, index := c.decoder.Physical(addr)
	c.stats.ArrayLookupsL1++

	result := c.l1.TagCompare(op, index, tag, nil)
	c.stats.countL1(result)

	if c.reference != nil {
		c.checkAgainstReference(op, addr, result)
	}

	c.log.V(4).Info("access", "op", op.String(), "addr", addr,
		"set", index, "tag", tag, "hit", result.Hit)
}

// viptAccess indexes the array with page-offset bits while the TLB, and on a
// TLB miss the inverted page table, supply the frame number used as the tag.
// A page missing from the inverted page table may take over any frame, so the
// whole L1 is flushed before the frame is reassigned.
func (c *Core) viptAccess(op cache.Op, addr uint64) {
	c.stats.AccessesTLB++

	vpn, _ := c.decoder.Virtual(addr)
	index := c.decoder.Index(addr)
	c.stats.ArrayLookupsL1++

	if ppn, ok := c.tlb.Lookup(vpn); ok {
		c.stats.HitsTLB++
		c.stats.TagComparesL1++
		c.tagCompare(op, index, ppn)
		return
	}

	c.stats.MissesTLB++
	c.stats.AccessesHWIVPT++

	if ppn, ok := c.hwivpt.Lookup(vpn); ok {
		c.stats.HitsHWIVPT++
		c.tlb.Install(vpn, ppn)
		c.tagCompare(op, index, ppn)
		return
	}

	c.stats.MissesHWIVPT++

	writebacks := c.l1.Flush()
	c.stats.FlushWritebacks += writebacks
	c.log.V(2).Info("flushed L1 on page table miss", "vpn", vpn,
		"writebacks", writebacks)

	ppn := c.hwivpt.Allocate(vpn)
	c.tlb.Install(vpn, ppn)
	c.tagCompare(op, index, ppn)
}

// tagCompare runs a translated L1 lookup.
func (c *Core) tagCompare(op cache.Op, index, ppn uint64) {
	c.stats.AccessesL1++

	result := c.l1.TagCompare(op, index, ppn, c.hwivpt)
	c.stats.countL1(result)

	c.log.V(4).Info("access", "op", op.String(), "set", index,
		"ppn", ppn, "hit", result.Hit)
}

func (c *Core) checkAgainstReference(op cache.Op, addr uint64, result cache.AccessResult) {
	if hit := c.reference.Access(op, addr); hit != result.Hit {
		c.stats.ReferenceMismatches++
		c.log.Info("reference directory disagrees with L1",
			"op", op.String(), "addr", addr, "l1Hit", result.Hit, "referenceHit", hit)
	}
}
