package benchmarks

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// csvHeader names the columns written by WriteCSV and CSVResultWriter.
var csvHeader = []string{
	"run_id", "workload", "mode", "c", "b", "s", "p", "t", "m",
	"accesses", "reads", "writes",
	"hits_l1", "misses_l1", "writebacks_l1", "cache_flush_writebacks",
	"accesses_tlb", "hits_tlb", "accesses_hw_ivpt", "hits_hw_ivpt",
	"hit_ratio_l1", "hit_ratio_tlb", "hit_ratio_hw_ivpt", "avg_access_time",
	"error",
}

func csvRecord(r BenchmarkResult) []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	ui := func(v uint) string { return strconv.FormatUint(uint64(v), 10) }
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

	mode := "pipt"
	if r.Config.VIPT {
		mode = "vipt"
	}

	s := r.Stats
	return []string{
		r.RunID, r.Workload, mode,
		ui(r.Config.C), ui(r.Config.B), ui(r.Config.S),
		ui(r.Config.P), ui(r.Config.T), ui(r.Config.M),
		u(s.Accesses()), u(s.Reads), u(s.Writes),
		u(s.HitsL1), u(s.MissesL1), u(s.WritebacksL1), u(s.FlushWritebacks),
		u(s.AccessesTLB), u(s.HitsTLB), u(s.AccessesHWIVPT), u(s.HitsHWIVPT),
		f(s.HitRatioL1), f(s.HitRatioTLB), f(s.HitRatioHWIVPT), f(s.AvgAccessTime),
		r.Error,
	}
}

// WriteCSV writes a header row and one row per result.
func WriteCSV(w io.Writer, results []BenchmarkResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVResultWriter streams results into a CSV file. The file is flushed and
// closed when the program exits through atexit.Exit, or on Close.
type CSVResultWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	mu     sync.Mutex
	closed bool
}

// NewCSVResultWriter creates a writer for path. An empty path picks
// "sweep_<xid>.csv".
func NewCSVResultWriter(path string) *CSVResultWriter {
	return &CSVResultWriter{path: path}
}

// Path returns the file the writer writes to.
func (w *CSVResultWriter) Path() string {
	return w.path
}

// Init creates the CSV file and writes the header. If the file already
// exists, it will be overwritten.
func (w *CSVResultWriter) Init() error {
	if w.path == "" {
		w.path = "sweep_" + xid.New().String() + ".csv"
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", w.path, err)
	}
	w.file = file
	w.csv = csv.NewWriter(file)

	if err := w.csv.Write(csvHeader); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	atexit.Register(func() {
		if err := w.Close(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
	})

	return nil
}

// Write appends one result row.
func (w *CSVResultWriter) Write(r BenchmarkResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("write to closed result file %s", w.path)
	}

	return w.csv.Write(csvRecord(r))
}

// Flush writes buffered rows to the file.
func (w *CSVResultWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (w *CSVResultWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.file == nil {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to flush %s: %w", w.path, err)
	}

	return w.file.Close()
}
