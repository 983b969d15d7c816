package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
)

//go:generate mockgen -destination mock_source_test.go -package core_test -write_package_comment=false github.com/sarchlab/cachesim/timing/core EventSource

// EventSource produces trace events in order. Next returns io.EOF after the
// last event.
type EventSource interface {
	Next() (loader.Event, error)
}

// Run feeds every event of src to the core. It stops at the first source
// error other than io.EOF and returns the number of events processed.
func (c *Core) Run(src EventSource) (uint64, error) {
	var n uint64

	for {
		event, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed after %d events: %w", n, err)
		}

		c.Access(event.Op, event.Addr)
		n++
	}
}

// Simulate runs a complete simulation of events and returns the finished
// statistics.
func Simulate(config cache.Config, events []loader.Event, opts ...Option) (Stats, error) {
	c, err := New(config, opts...)
	if err != nil {
		return Stats{}, err
	}

	if _, err := c.Run(loader.NewSliceReader(events)); err != nil {
		return Stats{}, err
	}

	return c.Finish(), nil
}
