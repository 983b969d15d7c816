package benchmarks

import (
	"math/rand/v2"

	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
)

// Workload is a named memory-reference stream.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload stresses
	Description string

	// Events is the reference stream, in order
	Events []loader.Event
}

// Reads returns the number of read references in the workload.
func (w Workload) Reads() int {
	t := loader.Trace{Events: w.Events}
	return t.Reads()
}

// Writes returns the number of write references in the workload.
func (w Workload) Writes() int {
	return len(w.Events) - w.Reads()
}

// FromTrace wraps a loaded trace file as a workload.
func FromTrace(name string, trace *loader.Trace) Workload {
	return Workload{
		Name:        name,
		Description: "trace " + trace.Path,
		Events:      trace.Events,
	}
}

// GetMicrobenchmarks returns the standard set of synthetic workloads.
// Each workload targets one structure of the simulated hierarchy.
func GetMicrobenchmarks() []Workload {
	return []Workload{
		sequentialStream(),
		stridedStream(),
		uniformRandom(),
		loopingWorkingSet(),
		pageThrash(),
		readModifyWrite(),
	}
}

// GetCoreBenchmarks returns a minimal set of workloads for quick validation.
func GetCoreBenchmarks() []Workload {
	return []Workload{
		sequentialStream(),
		loopingWorkingSet(),
		pageThrash(),
	}
}

// 1. Sequential Stream - spatial locality, one miss per block
func sequentialStream() Workload {
	return Workload{
		Name:        "sequential",
		Description: "8-byte reads over 256 KiB - measures block-size spatial locality",
		Events:      Sequential(0x10000000, 256<<10, 8, cache.Read),
	}
}

// 2. Strided Stream - one reference per 4 KiB, all conflicting in low sets
func stridedStream() Workload {
	return Workload{
		Name:        "strided",
		Description: "4 KiB stride over 64 pages, 4 passes - measures set conflicts",
		Events:      Strided(0x20000000, 4096, 64, 4),
	}
}

// 3. Uniform Random - no locality at all
func uniformRandom() Workload {
	return Workload{
		Name:        "random",
		Description: "uniform random reads and writes over 16 MiB - measures capacity",
		Events:      UniformRandom(42, 32768, 16<<20),
	}
}

// 4. Looping Working Set - 16 KiB reused 16 times
func loopingWorkingSet() Workload {
	return Workload{
		Name:        "working_set",
		Description: "16 KiB working set reread 16 times - measures capacity and LRU",
		Events:      WorkingSet(0x30000000, 16<<10, 64, 16),
	}
}

// 5. Page Thrash - more pages than the TLB and page table hold
func pageThrash() Workload {
	return Workload{
		Name:        "page_thrash",
		Description: "one write per 16 KiB page across 1024 pages, 4 passes - measures translation misses",
		Events:      PageThrash(0x40000000, 14, 1024, 4),
	}
}

// 6. Read-Modify-Write - every block dirtied after a read
func readModifyWrite() Workload {
	return Workload{
		Name:        "read_modify_write",
		Description: "read then write each 8-byte word of 64 KiB - measures write-backs",
		Events:      ReadModifyWrite(0x50000000, 64<<10, 8),
	}
}

// Sequential returns one op reference every step bytes over [base, base+size).
func Sequential(base, size, step uint64, op cache.Op) []loader.Event {
	if step == 0 {
		return nil
	}

	events := make([]loader.Event, 0, size/step)
	for off := uint64(0); off < size; off += step {
		events = append(events, loader.Event{Op: op, Addr: base + off})
	}
	return events
}

// Strided reads count addresses stride bytes apart, passes times over.
func Strided(base, stride uint64, count, passes int) []loader.Event {
	events := make([]loader.Event, 0, count*passes)
	for p := 0; p < passes; p++ {
		for i := 0; i < count; i++ {
			events = append(events, loader.Event{
				Op:   cache.Read,
				Addr: base + uint64(i)*stride,
			})
		}
	}
	return events
}

// UniformRandom returns n references drawn uniformly from [0, span). About
// one in four is a write. The stream is fully determined by seed.
func UniformRandom(seed uint64, n int, span uint64) []loader.Event {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	events := make([]loader.Event, n)
	for i := range events {
		op := cache.Read
		if rng.IntN(4) == 0 {
			op = cache.Write
		}
		events[i] = loader.Event{Op: op, Addr: rng.Uint64N(span)}
	}
	return events
}

// WorkingSet reads a size-byte region step bytes at a time, passes times.
func WorkingSet(base, size, step uint64, passes int) []loader.Event {
	once := Sequential(base, size, step, cache.Read)

	events := make([]loader.Event, 0, len(once)*passes)
	for p := 0; p < passes; p++ {
		events = append(events, once...)
	}
	return events
}

// PageThrash writes the first word of each of pages consecutive 2^pageBits
// pages, passes times over.
func PageThrash(base uint64, pageBits uint, pages, passes int) []loader.Event {
	events := make([]loader.Event, 0, pages*passes)
	for p := 0; p < passes; p++ {
		for i := 0; i < pages; i++ {
			events = append(events, loader.Event{
				Op:   cache.Write,
				Addr: base + uint64(i)<<pageBits,
			})
		}
	}
	return events
}

// ReadModifyWrite reads and then writes every step-byte word of a region.
func ReadModifyWrite(base, size, step uint64) []loader.Event {
	if step == 0 {
		return nil
	}

	events := make([]loader.Event, 0, 2*size/step)
	for off := uint64(0); off < size; off += step {
		events = append(events,
			loader.Event{Op: cache.Read, Addr: base + off},
			loader.Event{Op: cache.Write, Addr: base + off},
		)
	}
	return events
}
