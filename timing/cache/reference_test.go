package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/timing/cache"
)

var _ = Describe("Reference", func() {
	var (
		config cache.Config
		ref    *cache.Reference
	)

	BeforeEach(func() {
		config = cache.Config{C: 8, B: 6, S: 1}
		ref = cache.NewReference(config)
	})

	It("should miss then hit", func() {
		Expect(ref.Access(cache.Read, 0x40)).To(BeFalse())
		Expect(ref.Access(cache.Read, 0x7F)).To(BeTrue())
		Expect(ref.Stats().Hits).To(Equal(uint64(1)))
		Expect(ref.Stats().Misses).To(Equal(uint64(1)))
	})

	It("should count write-backs of dirty victims", func() {
		// Set 0 of a 2-set, 2-way cache.
		ref.Access(cache.Write, 0x000)
		ref.Access(cache.Read, 0x080)
		ref.Access(cache.Read, 0x100)

		Expect(ref.Stats().Evictions).To(Equal(uint64(1)))
		Expect(ref.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should agree with the L1 on an access sequence", func() {
		l1 := cache.NewL1(config)
		addrs := []uint64{0x000, 0x080, 0x000, 0x100, 0x080, 0x040, 0x0C0, 0x140, 0x040}
		for i, addr := range addrs {
			op := cache.Read
			if i%3 == 0 {
				op = cache.Write
			}
			Expect(ref.Access(op, addr)).To(Equal(l1.Access(op, addr).Hit), "access %d", i)
		}
	})

	It("should flush dirty blocks", func() {
		ref.Access(cache.Write, 0x000)
		ref.Access(cache.Read, 0x040)
		Expect(ref.Flush()).To(Equal(uint64(1)))
		Expect(ref.Access(cache.Read, 0x000)).To(BeFalse())
	})
})
