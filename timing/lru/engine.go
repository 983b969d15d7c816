package lru

// Engine keeps one recency List per set.
type Engine struct {
	sets []List
}

// NewEngine creates an engine for numSets sets of ways positions each. Every
// set starts in the order 0,1,...,ways-1.
func NewEngine(numSets, ways int) *Engine {
	e := &Engine{sets: make([]List, numSets)}
	for i := range e.sets {
		e.sets[i] = *NewList(ways)
	}

	return e
}

// NumSets returns the number of sets tracked.
func (e *Engine) NumSets() int {
	return len(e.sets)
}

// Ways returns the number of positions per set.
func (e *Engine) Ways() int {
	if len(e.sets) == 0 {
		return 0
	}
	return e.sets[0].Len()
}

// Promote marks pos in set as the most recently used.
func (e *Engine) Promote(set, pos uint64) {
	e.sets[set].MoveToFront(pos)
}

// EvictAndPromote moves the least recently used position of set to the front
// and returns it. The caller overwrites that position with the new occupant.
func (e *Engine) EvictAndPromote(set uint64) uint64 {
	l := &e.sets[set]
	victim := l.Back()
	l.MoveToFront(victim)

	return victim
}

// MRU returns the most recently used position of set.
func (e *Engine) MRU(set uint64) uint64 {
	return e.sets[set].Front()
}

// LRU returns the least recently used position of set.
func (e *Engine) LRU(set uint64) uint64 {
	return e.sets[set].Back()
}

// Order returns the recency order of set, most recent first.
func (e *Engine) Order(set uint64) []uint64 {
	return e.sets[set].Order()
}

// Reset returns every set to its initial order.
func (e *Engine) Reset() {
	for i := range e.sets {
		e.sets[i].Reset()
	}
}
