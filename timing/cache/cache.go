package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/timing/lru"
)

// Op is the kind of memory reference.
type Op uint8

const (
	// Read is a load.
	Read Op = iota
	// Write is a store.
	Write
)

// String returns the trace mnemonic of the op.
func (op Op) String() string {
	switch op {
	case Read:
		return "r"
	case Write:
		return "w"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// FrameTracker is notified whenever the L1 moves data to or from a physical
// frame. In VIPT mode the block tag is the frame number.
type FrameTracker interface {
	Touch(ppn uint64)
}

// Block is one cache line's metadata.
type Block struct {
	Valid bool
	Dirty bool
	// Tag is only meaningful while Valid.
	Tag uint64
}

// Set holds the blocks of one congruence class.
type Set struct {
	Blocks []Block
}

// AccessResult describes what a tag comparison did.
type AccessResult struct {
	// Hit indicates whether the tag matched a valid block.
	Hit bool
	// Write is true for a store.
	Write bool
	// Way is the way that now holds the block.
	Way uint64
	// Evicted is true if a miss replaced a valid block.
	Evicted bool
	// EvictedTag is the tag of the replaced block (if Evicted is true).
	EvictedTag uint64
	// Writeback is true if the replaced block was dirty.
	Writeback bool
}

// L1 is the cache array plus its replacement state.
type L1 struct {
	config  Config
	decoder Decoder

	sets []Set
	lru  *lru.Engine

	numSets      uint64
	blocksPerSet uint64
	cMinusS      uint
}

// NewL1 builds an empty cache. The configuration must already be normalized
// and valid.
func NewL1(config Config) *L1 {
	numSets := config.NumSets()
	blocksPerSet := config.BlocksPerSet()

	sets := make([]Set, numSets)
	blocks := make([]Block, numSets*blocksPerSet)
	for i := range sets {
		sets[i].Blocks = blocks[uint64(i)*blocksPerSet : uint64(i+1)*blocksPerSet]
	}

	return &L1{
		config:       config,
		decoder:      NewDecoder(config),
		sets:         sets,
		lru:          lru.NewEngine(int(numSets), int(blocksPerSet)),
		numSets:      numSets,
		blocksPerSet: blocksPerSet,
		cMinusS:      config.C - config.S,
	}
}

// Config returns the cache configuration.
func (c *L1) Config() Config {
	return c.config
}

// Decoder returns the address decoder of the cache.
func (c *L1) Decoder() Decoder {
	return c.decoder
}

// NumSets returns the number of sets.
func (c *L1) NumSets() uint64 {
	return c.numSets
}

// BlocksPerSet returns the associativity.
func (c *L1) BlocksPerSet() uint64 {
	return c.blocksPerSet
}

// TagShift returns C-S, the position of the lowest tag bit.
func (c *L1) TagShift() uint {
	return c.cMinusS
}

// BlockAddress rebuilds the block-aligned address of a tag and set index.
func (c *L1) BlockAddress(tag, index uint64) uint64 {
	return tag<<c.cMinusS | index<<c.config.B
}

// Set returns the set at index.
func (c *L1) Set(index uint64) *Set {
	return &c.sets[index]
}

// LRU exposes the replacement state.
func (c *L1) LRU() *lru.Engine {
	return c.lru
}

// TagCompare looks tag up in the set at index and applies the write-back,
// write-allocate policy. When frames is non-nil, the frames the block is
// written back to and fetched from are reported to it.
func (c *L1) TagCompare(op Op, index, tag uint64, frames FrameTracker) AccessResult {
	set := &c.sets[index]
	result := AccessResult{Write: op == Write}

	for way := range set.Blocks {
		block := &set.Blocks[way]
		if block.Valid && block.Tag == tag {
			if op == Write {
				block.Dirty = true
			}
			c.lru.Promote(index, uint64(way))

			result.Hit = true
			result.Way = uint64(way)

			return result
		}
	}

	way := c.lru.EvictAndPromote(index)
	victim := &set.Blocks[way]
	result.Way = way

	if victim.Valid {
		result.Evicted = true
		result.EvictedTag = victim.Tag
	}

	if victim.Dirty {
		result.Writeback = true
		victim.Dirty = false
		if frames != nil {
			frames.Touch(victim.Tag)
		}
	}

	victim.Valid = true
	if op == Write {
		victim.Dirty = true
	}
	if frames != nil {
		frames.Touch(tag)
	}
	victim.Tag = tag

	return result
}

// Access decodes a physical address and performs the tag comparison.
func (c *L1) Access(op Op, addr uint64) AccessResult {
	tag, index := c.decoder.Physical(addr)
	return c.TagCompare(op, index, tag, nil)
}

// Flush invalidates every block and returns how many dirty blocks were
// written back. The replacement order of every set is reset.
func (c *L1) Flush() uint64 {
	var writebacks uint64

	for i := range c.sets {
		blocks := c.sets[i].Blocks
		for j := range blocks {
			blocks[j].Valid = false
			if blocks[j].Dirty {
				blocks[j].Dirty = false
				writebacks++
			}
		}
	}

	c.lru.Reset()

	return writebacks
}

// DirtyBlocks counts the dirty blocks currently held.
func (c *L1) DirtyBlocks() uint64 {
	var n uint64
	for i := range c.sets {
		for _, block := range c.sets[i].Blocks {
			if block.Dirty {
				n++
			}
		}
	}

	return n
}

// ValidBlocks counts the valid blocks currently held.
func (c *L1) ValidBlocks() uint64 {
	var n uint64
	for i := range c.sets {
		for _, block := range c.sets[i].Blocks {
			if block.Valid {
				n++
			}
		}
	}

	return n
}
