// Package lru tracks recency order for the ways of a cache set or the entries
// of a fully-associative translation structure.
package lru

import "fmt"

// List is a fixed-capacity doubly-linked order over the positions 0..n-1.
//
// The links live in an arena of integer slots. Position i always occupies
// slot i, and slot n is the sentinel that closes the ring, so relinking never
// allocates and no slot is shared between lists.
type List struct {
	prev []uint32
	next []uint32
}

// NewList creates a list holding positions 0..n-1, front to back.
func NewList(n int) *List {
	if n <= 0 {
		panic(fmt.Sprintf("lru: list capacity must be positive, got %d", n))
	}

	l := &List{
		prev: make([]uint32, n+1),
		next: make([]uint32, n+1),
	}
	l.Reset()

	return l
}

// Len returns the number of positions in the list.
func (l *List) Len() int {
	return len(l.next) - 1
}

func (l *List) sentinel() uint32 {
	return uint32(len(l.next) - 1)
}

// Reset restores the initial order 0,1,...,n-1.
func (l *List) Reset() {
	n := l.sentinel()
	for i := uint32(0); i <= n; i++ {
		l.next[i] = i + 1
		l.prev[i] = i - 1
	}
	// Close the ring through the sentinel.
	l.next[n] = 0
	l.prev[0] = n
}

// Front returns the most recently used position.
func (l *List) Front() uint64 {
	return uint64(l.next[l.sentinel()])
}

// Back returns the least recently used position.
func (l *List) Back() uint64 {
	return uint64(l.prev[l.sentinel()])
}

// MoveToFront makes pos the most recently used position.
func (l *List) MoveToFront(pos uint64) {
	if pos >= uint64(l.Len()) {
		panic(fmt.Sprintf("lru: position %d not in list of %d", pos, l.Len()))
	}

	n := l.sentinel()
	p := uint32(pos)
	if l.next[n] == p {
		return
	}

	l.next[l.prev[p]] = l.next[p]
	l.prev[l.next[p]] = l.prev[p]

	first := l.next[n]
	l.next[p] = first
	l.prev[p] = n
	l.prev[first] = p
	l.next[n] = p
}

// Order returns the positions from most to least recently used.
func (l *List) Order() []uint64 {
	order := make([]uint64, 0, l.Len())
	n := l.sentinel()
	for i := l.next[n]; i != n; i = l.next[i] {
		order = append(order, uint64(i))
	}

	return order
}
