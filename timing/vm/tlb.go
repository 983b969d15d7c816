// Package vm models the address-translation structures that front a VIPT
// cache: a fully-associative TLB and a hardware-managed inverted page table.
package vm

import (
	"github.com/sarchlab/cachesim/timing/lru"
)

// Entry is a virtual-to-physical page translation.
type Entry struct {
	Valid bool
	VPN   uint64
	PPN   uint64
}

// TLB is a fully-associative translation cache with LRU replacement.
type TLB struct {
	entries []Entry
	lru     *lru.Engine
}

// NewTLB creates an empty TLB with 2^t entries.
func NewTLB(t uint) *TLB {
	n := 1 << t
	return &TLB{
		entries: make([]Entry, n),
		lru:     lru.NewEngine(1, n),
	}
}

// NumEntries returns the capacity of the TLB.
func (t *TLB) NumEntries() int {
	return len(t.entries)
}

// Entry returns the entry at i.
func (t *TLB) Entry(i int) Entry {
	return t.entries[i]
}

// MRU returns the index of the most recently used entry.
func (t *TLB) MRU() uint64 {
	return t.lru.MRU(0)
}

// Lookup searches for a valid translation of vpn. A hit becomes the most
// recently used entry.
func (t *TLB) Lookup(vpn uint64) (ppn uint64, ok bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Valid && e.VPN == vpn {
			t.lru.Promote(0, uint64(i))
			return e.PPN, true
		}
	}

	return 0, false
}

// Install replaces the least recently used entry with vpn -> ppn and makes it
// the most recently used. It returns the index that was replaced.
func (t *TLB) Install(vpn, ppn uint64) uint64 {
	i := t.lru.EvictAndPromote(0)

	e := &t.entries[i]
	e.Valid = true
	e.VPN = vpn
	e.PPN = ppn

	return i
}
