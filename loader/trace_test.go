package loader_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
)

var _ = Describe("Trace Loader", func() {
	Describe("ParseEvent", func() {
		It("should parse a read with a 0x prefix", func() {
			e, err := loader.ParseEvent("r 0x7fffe7645d8")
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(Equal(loader.Event{Op: cache.Read, Addr: 0x7fffe7645d8}))
		})

		It("should parse an upper-case write without a prefix", func() {
			e, err := loader.ParseEvent("W deadbeef")
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(Equal(loader.Event{Op: cache.Write, Addr: 0xdeadbeef}))
		})

		It("should accept the full 64-bit range", func() {
			e, err := loader.ParseEvent("r 0xFFFFFFFFFFFFFFFF")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Addr).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})

		DescribeTable("should reject malformed lines",
			func(line string) {
				_, err := loader.ParseEvent(line)
				Expect(err).To(MatchError(loader.ErrMalformedEvent))
			},
			Entry("unknown op", "x 0x10"),
			Entry("missing address", "r"),
			Entry("extra field", "r 0x10 0x20"),
			Entry("bad hex", "w 0xZZ"),
			Entry("empty hex", "w 0x"),
			Entry("overflow", "r 0x1FFFFFFFFFFFFFFFF"),
		)
	})

	Describe("Reader", func() {
		It("should skip blank lines and comments", func() {
			r := loader.NewReader(strings.NewReader("# header\n\nr 0x10\n  \nw 0x20\n"))

			e, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Addr).To(Equal(uint64(0x10)))

			e, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Op).To(Equal(cache.Write))

			_, err = r.Next()
			Expect(err).To(MatchError(io.EOF))
		})

		It("should report the line of a malformed event", func() {
			r := loader.NewReader(strings.NewReader("r 0x10\nbogus\n"))
			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).To(MatchError(loader.ErrMalformedEvent))
			Expect(err.Error()).To(ContainSubstring("line 2"))
		})
	})

	Describe("Parse", func() {
		It("should keep trace order", func() {
			events, err := loader.Parse(strings.NewReader("r 1\nw 2\nr 3\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(Equal([]loader.Event{
				{Op: cache.Read, Addr: 1},
				{Op: cache.Write, Addr: 2},
				{Op: cache.Read, Addr: 3},
			}))
		})

		It("should return nothing for an empty trace", func() {
			events, err := loader.Parse(strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(BeEmpty())
		})
	})

	Describe("Files", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "trace-loader-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should round-trip through Save and Load", func() {
			events := []loader.Event{
				{Op: cache.Write, Addr: 0x7fffe7645d8},
				{Op: cache.Read, Addr: 0},
			}
			path := filepath.Join(tempDir, "t.trace")
			Expect(loader.Save(path, events)).To(Succeed())

			trace, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(trace.Path).To(Equal(path))
			Expect(trace.Events).To(Equal(events))
			Expect(trace.Reads()).To(Equal(1))
			Expect(trace.Writes()).To(Equal(1))
		})

		It("should fail on a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.trace"))
			Expect(err).To(HaveOccurred())
		})

		It("should name the file of a malformed trace", func() {
			path := filepath.Join(tempDir, "bad.trace")
			Expect(os.WriteFile(path, []byte("q 1\n"), 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(MatchError(loader.ErrMalformedEvent))
			Expect(err.Error()).To(ContainSubstring("bad.trace"))
		})
	})

	Describe("Write", func() {
		It("should render the trace format", func() {
			var buf bytes.Buffer
			err := loader.Write(&buf, []loader.Event{{Op: cache.Read, Addr: 0xff}})
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(Equal("r 0xff\n"))
		})
	})

	Describe("SliceReader", func() {
		It("should replay events then end", func() {
			r := loader.NewSliceReader([]loader.Event{{Addr: 1}})
			e, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Addr).To(Equal(uint64(1)))

			_, err = r.Next()
			Expect(errors.Is(err, io.EOF)).To(BeTrue())
		})
	})
})
