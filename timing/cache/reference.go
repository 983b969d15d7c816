package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// ReferenceStats holds the counters kept by a Reference directory.
type ReferenceStats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// Reference is an independent model of a physically-addressed LRU cache built
// on Akita's cache directory. It tracks tags and dirty state only and is used
// to cross-check the L1 on PIPT runs.
type Reference struct {
	blockSize uint64
	directory *akitacache.DirectoryImpl
	stats     ReferenceStats
}

// NewReference creates a reference directory with the geometry of config.
func NewReference(config Config) *Reference {
	return &Reference{
		blockSize: 1 << config.B,
		directory: akitacache.NewDirectory(
			int(config.NumSets()),
			int(config.BlocksPerSet()),
			1<<config.B,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Stats returns the reference counters.
func (r *Reference) Stats() ReferenceStats {
	return r.stats
}

// Access replays one reference and reports whether it hit.
func (r *Reference) Access(op Op, addr uint64) bool {
	blockAddr := addr / r.blockSize * r.blockSize

	block := r.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		r.stats.Hits++
		if op == Write {
			block.IsDirty = true
		}
		r.directory.Visit(block)

		return true
	}

	r.stats.Misses++

	victim := r.directory.FindVictim(blockAddr)
	if victim == nil {
		return false
	}

	if victim.IsValid {
		r.stats.Evictions++
		if victim.IsDirty {
			r.stats.Writebacks++
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = op == Write
	r.directory.Visit(victim)

	return false
}

// Flush invalidates every block and returns how many were dirty.
func (r *Reference) Flush() uint64 {
	var dirty uint64

	for _, set := range r.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				dirty++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}

	return dirty
}
