package vm

import (
	"github.com/sarchlab/cachesim/timing/lru"
)

// HWIVPT is a hardware-managed inverted page table. It has one entry per
// physical frame, and the frame number of an entry is its index, so a frame
// number can be mapped back to its entry without a search.
type HWIVPT struct {
	entries []Entry
	lru     *lru.Engine

	// frames indexes the valid entries by VPN. A VPN is mapped by at most one
	// frame, since frames are only allocated on a lookup miss.
	frames map[uint64]uint64
}

// NewHWIVPT creates an inverted page table for 2^m physical frames. All
// entries start invalid.
func NewHWIVPT(m uint) *HWIVPT {
	n := 1 << m

	entries := make([]Entry, n)
	for i := range entries {
		entries[i].PPN = uint64(i)
	}

	return &HWIVPT{
		entries: entries,
		lru:     lru.NewEngine(1, n),
		frames:  make(map[uint64]uint64),
	}
}

// NumEntries returns the number of physical frames.
func (pt *HWIVPT) NumEntries() int {
	return len(pt.entries)
}

// Entry returns the entry of frame ppn.
func (pt *HWIVPT) Entry(ppn uint64) Entry {
	return pt.entries[ppn]
}

// MRU returns the most recently used frame.
func (pt *HWIVPT) MRU() uint64 {
	return pt.lru.MRU(0)
}

// LRU returns the least recently used frame, the next one to be reassigned.
func (pt *HWIVPT) LRU() uint64 {
	return pt.lru.LRU(0)
}

// Lookup searches for the frame holding a valid mapping of vpn. A hit becomes
// the most recently used frame.
func (pt *HWIVPT) Lookup(vpn uint64) (ppn uint64, ok bool) {
	ppn, ok = pt.frames[vpn]
	if !ok {
		return 0, false
	}

	pt.lru.Promote(0, ppn)

	return ppn, true
}

// Allocate reassigns the least recently used frame to vpn and returns its
// frame number.
func (pt *HWIVPT) Allocate(vpn uint64) uint64 {
	i := pt.lru.EvictAndPromote(0)

	e := &pt.entries[i]
	if e.Valid {
		delete(pt.frames, e.VPN)
	}
	e.Valid = true
	e.VPN = vpn
	pt.frames[vpn] = e.PPN

	return e.PPN
}

// Touch marks frame ppn as the most recently used.
func (pt *HWIVPT) Touch(ppn uint64) {
	pt.lru.Promote(0, ppn)
}
