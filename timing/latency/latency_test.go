package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should have correct array lookup time", func() {
			Expect(table.Config().ArrayLookupTime).To(Equal(1.0))
		})

		It("should have correct DRAM penalty", func() {
			Expect(table.Config().DRAMAccessPenalty).To(Equal(100.0))
		})

		It("should scale tag comparison with log2 associativity", func() {
			Expect(table.AssociativityTime(0)).To(BeZero())
			Expect(table.AssociativityTime(4)).To(BeNumerically("~", 0.8, 1e-12))
			Expect(table.TagCompareTime(4)).To(BeNumerically("~", 1.8, 1e-12))
		})
	})

	Describe("PIPT", func() {
		It("should charge array lookup plus tag compare on a hit", func() {
			Expect(table.PIPTHitTime(4)).To(BeNumerically("~", 2.8, 1e-12))
		})

		It("should add the DRAM penalty per miss", func() {
			Expect(table.PIPTAMAT(4, 0)).To(BeNumerically("~", 2.8, 1e-12))
			Expect(table.PIPTAMAT(4, 0.5)).To(BeNumerically("~", 52.8, 1e-12))
			Expect(table.PIPTAMAT(0, 1)).To(BeNumerically("~", 102, 1e-12))
		})
	})

	Describe("VIPT", func() {
		It("should scale the page table walk with memory size", func() {
			Expect(table.HWIVPTPenalty(0)).To(BeNumerically("~", 100, 1e-12))
			Expect(table.HWIVPTPenalty(18)).To(BeNumerically("~", 136, 1e-9))
		})

		It("should reduce to the PIPT hit time when the TLB always hits", func() {
			Expect(table.VIPTHitTime(1, 18, 1, 0)).To(
				BeNumerically("~", table.PIPTHitTime(1), 1e-12))
		})

		It("should charge the walk on every TLB miss", func() {
			// 1 + 0.5*1.2 + 0.5*(136 + 1.2*0.25)
			Expect(table.VIPTHitTime(1, 18, 0.5, 0.25)).To(
				BeNumerically("~", 1+0.6+0.5*(136+0.3), 1e-9))
		})

		It("should add the DRAM penalty per L1 miss", func() {
			hit := table.VIPTHitTime(1, 18, 0.9, 0.5)
			Expect(table.VIPTAMAT(1, 18, 0.9, 0.5, 0.1)).To(
				BeNumerically("~", hit+10, 1e-9))
		})
	})

	Describe("Custom Configuration", func() {
		It("should use the configured parameters", func() {
			config := latency.DefaultTimingConfig()
			config.DRAMAccessPenalty = 200
			config.TagCompareTimePerS = 0.5
			custom := latency.NewTableWithConfig(config)

			Expect(custom.PIPTAMAT(2, 0.5)).To(BeNumerically("~", 1+1+1+100, 1e-12))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject a negative array lookup time", func() {
			config := latency.DefaultTimingConfig()
			config.ArrayLookupTime = -1
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a negative tag compare time", func() {
			config := latency.DefaultTimingConfig()
			config.TagCompareTime = -1
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a negative per-way time", func() {
			config := latency.DefaultTimingConfig()
			config.TagCompareTimePerS = -0.2
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject free memory", func() {
			config := latency.DefaultTimingConfig()
			config.DRAMAccessPenalty = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a negative page table factor", func() {
			config := latency.DefaultTimingConfig()
			config.HWIVPTAccessTimePerM = -1
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.DRAMAccessPenalty = 300

			Expect(original.DRAMAccessPenalty).To(Equal(100.0))
			Expect(clone.DRAMAccessPenalty).To(Equal(300.0))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.DRAMAccessPenalty = 250
			original.HWIVPTAccessTimePerM = 0.1

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			err := os.WriteFile(path, []byte(`{"dram_access_penalty": 50}`), 0644)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.DRAMAccessPenalty).To(Equal(50.0))
			Expect(loaded.TagCompareTimePerS).To(Equal(0.2))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
