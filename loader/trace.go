// Package loader reads memory-reference traces.
//
// A trace is plain text with one reference per line: an operation, "r" or
// "w" (either case), followed by the address in hexadecimal with an optional
// 0x prefix. Blank lines and lines starting with '#' are ignored.
//
//	r 0x7fffe7645d8
//	w 7fffe7645e0
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/timing/cache"
)

// ErrMalformedEvent is returned for a trace line that is not a reference.
var ErrMalformedEvent = errors.New("malformed trace event")

// Event is one memory reference.
type Event struct {
	Op   cache.Op
	Addr uint64
}

// Trace is a fully loaded trace file.
type Trace struct {
	// Path is the file the trace was read from.
	Path string
	// Events are the references in trace order.
	Events []Event
}

// Reads returns the number of read references.
func (t *Trace) Reads() int {
	n := 0
	for _, e := range t.Events {
		if e.Op == cache.Read {
			n++
		}
	}
	return n
}

// Writes returns the number of write references.
func (t *Trace) Writes() int {
	return len(t.Events) - t.Reads()
}

// Reader streams events from a text trace.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next event. It returns io.EOF after the last one.
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		event, err := ParseEvent(text)
		if err != nil {
			return Event{}, fmt.Errorf("line %d: %w", r.line, err)
		}

		return event, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("failed to read trace: %w", err)
	}

	return Event{}, io.EOF
}

// ParseEvent parses a single "op address" reference.
func ParseEvent(text string) (Event, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Event{}, fmt.Errorf("%w: %q", ErrMalformedEvent, text)
	}

	var event Event
	switch fields[0] {
	case "r", "R":
		event.Op = cache.Read
	case "w", "W":
		event.Op = cache.Write
	default:
		return Event{}, fmt.Errorf("%w: unknown operation %q", ErrMalformedEvent, fields[0])
	}

	addr := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")
	value, err := strconv.ParseUint(addr, 16, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad address %q", ErrMalformedEvent, fields[1])
	}
	event.Addr = value

	return event, nil
}

// Parse reads every event from r.
func Parse(r io.Reader) ([]Event, error) {
	reader := NewReader(r)

	var events []Event
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
}

// Load reads a trace file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	events, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Trace{Path: path, Events: events}, nil
}

// Write renders events in trace format.
func Write(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		if _, err := fmt.Fprintf(bw, "%s 0x%x\n", e.Op, e.Addr); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}

	return nil
}

// Save writes events to a trace file.
func Save(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	if err := Write(f, events); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// SliceReader replays an in-memory event slice.
type SliceReader struct {
	events []Event
	pos    int
}

// NewSliceReader creates a reader over events.
func NewSliceReader(events []Event) *SliceReader {
	return &SliceReader{events: events}
}

// Next returns the next event or io.EOF.
func (r *SliceReader) Next() (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, io.EOF
	}

	e := r.events[r.pos]
	r.pos++

	return e, nil
}
