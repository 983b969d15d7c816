package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/loader"
	"github.com/sarchlab/cachesim/timing/cache"
	"github.com/sarchlab/cachesim/timing/core"
)

var _ = Describe("Report", func() {
	events := []loader.Event{
		{Op: cache.Read, Addr: 0x1000},
		{Op: cache.Write, Addr: 0x1000},
	}

	It("should print L1 counters for PIPT", func() {
		config := cache.DefaultPIPTConfig()
		stats, err := core.Simulate(config, events)
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(core.WriteReport(&buf, config, stats)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("PIPT c=10 b=6 s=4"))
		Expect(out).To(MatchRegexp(`L1 hits:\s+1\n`))
		Expect(out).To(MatchRegexp(`L1 hit ratio:\s+0\.500000\n`))
		Expect(out).To(ContainSubstring("Average access time:"))
		Expect(out).NotTo(ContainSubstring("TLB"))
	})

	It("should add translation counters for VIPT", func() {
		config := cache.DefaultVIPTConfig()
		stats, err := core.Simulate(config, events)
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(core.WriteReport(&buf, config, stats)).To(Succeed())

		out := buf.String()
		Expect(out).To(MatchRegexp(`TLB accesses:\s+2\n`))
		Expect(out).To(MatchRegexp(`HW-IVPT misses:\s+1\n`))
		Expect(out).To(ContainSubstring("Flush write-backs:"))
	})
})
