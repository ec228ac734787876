package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("Default Timing Values", func() {
		It("should have correct unit latencies", func() {
			config := table.Config()
			Expect(config.ALULatency).To(Equal(uint64(2)))
			Expect(config.BranchLatency).To(Equal(uint64(2)))
			Expect(config.LoadStoreLatency).To(Equal(uint64(2)))
		})

		It("should have correct ITCM latency", func() {
			Expect(table.Config().ITCMLatency).To(Equal(uint64(1)))
		})
	})

	Describe("Instruction Latencies", func() {
		It("should return ALU latency for add", func() {
			Expect(table.KindLatency(decoder.Decode(insts.ADD(5, 1, 2)).Kind)).To(Equal(uint64(2)))
		})

		It("should return ALU latency for lui", func() {
			Expect(table.KindLatency(decoder.Decode(insts.LUI(5, 0x1000)).Kind)).To(Equal(uint64(2)))
		})

		It("should return 1 for unknown instructions", func() {
			Expect(table.KindLatency(decoder.Decode(0).Kind)).To(Equal(uint64(1)))
		})
	})

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			lw := decoder.Decode(insts.LW(1, 2, 0))
			sw := decoder.Decode(insts.SW(1, 2, 0))
			add := decoder.Decode(insts.ADD(1, 2, 3))

			Expect(table.IsMemoryOp(lw)).To(BeTrue())
			Expect(table.IsMemoryOp(sw)).To(BeTrue())
			Expect(table.IsMemoryOp(add)).To(BeFalse())
			Expect(table.IsLoadOp(lw)).To(BeTrue())
			Expect(table.IsLoadOp(sw)).To(BeFalse())
			Expect(table.IsStoreOp(sw)).To(BeTrue())
			Expect(table.IsStoreOp(lw)).To(BeFalse())
		})

		It("should detect branch operations", func() {
			Expect(table.IsBranchOp(decoder.Decode(insts.BEQ(1, 2, 8)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.JAL(1, 8)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.JALR(0, 1, 0)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.ADDI(1, 1, 1)))).To(BeFalse())
		})
	})

	Describe("Nil Instruction Handling", func() {
		It("should return false for nil instruction checks", func() {
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
			Expect(table.IsLoadOp(nil)).To(BeFalse())
			Expect(table.IsStoreOp(nil)).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := &latency.TimingConfig{
				ALULatency:       1,
				BranchLatency:    3,
				LoadStoreLatency: 8,
				ITCMLatency:      2,
			}
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.KindLatency(decoder.Decode(insts.ADD(1, 2, 3)).Kind)).To(Equal(uint64(1)))
			Expect(customTable.KindLatency(decoder.Decode(insts.LW(1, 2, 0)).Kind)).To(Equal(uint64(8)))
			Expect(customTable.KindLatency(decoder.Decode(insts.BNE(1, 2, 4)).Kind)).To(Equal(uint64(3)))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		DescribeTable("rejects zero latencies",
			func(mutate func(*latency.TimingConfig)) {
				config := latency.DefaultTimingConfig()
				mutate(config)
				Expect(config.Validate()).To(HaveOccurred())
			},
			Entry("alu", func(c *latency.TimingConfig) { c.ALULatency = 0 }),
			Entry("branch", func(c *latency.TimingConfig) { c.BranchLatency = 0 }),
			Entry("load/store", func(c *latency.TimingConfig) { c.LoadStoreLatency = 0 }),
			Entry("itcm", func(c *latency.TimingConfig) { c.ITCMLatency = 0 }),
		)
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(2)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should save and load JSON config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 5
			original.ITCMLatency = 3

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should save and load YAML config", func() {
			original := latency.DefaultTimingConfig()
			original.BranchLatency = 4

			path := filepath.Join(tempDir, "timing.yaml")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for fields missing from YAML", func() {
			path := filepath.Join(tempDir, "partial.yml")
			Expect(os.WriteFile(path, []byte("load_store_latency: 6\n"), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadStoreLatency).To(Equal(uint64(6)))
			Expect(loaded.ALULatency).To(Equal(uint64(2)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
