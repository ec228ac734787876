package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/cache"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/pipeline"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// fixedPort answers every read with the same word after one cycle.
type fixedPort struct {
	word uint32
}

func (f fixedPort) Read(addr uint32) (itcm.PendingRead, error) {
	return itcm.StartRead(addr, 1), nil
}

func (f fixedPort) Resolve(uint32) uint32 {
	return f.word
}

var _ = Describe("Pipeline", func() {
	demo := []uint32{
		insts.NOP(),
		insts.ADDI(1, 0, 1),
		insts.ADD(2, 1, 1),
	}

	Describe("NewPipeline", func() {
		It("should use the default configuration", func() {
			p, _ := build(nil)

			Expect(p.Config()).To(Equal(pipeline.DefaultConfig()))
			Expect(p.InstBuffer().Cap()).To(Equal(4))
			Expect(p.DispatchQueue().Cap()).To(Equal(8))
			Expect(p.Units().All()).To(HaveLen(4))
		})

		It("should reject an invalid configuration", func() {
			mem, err := itcm.New(1, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = pipeline.NewPipeline(mem, pipeline.WithLanes(0))
			Expect(err).To(HaveOccurred())

			config := pipeline.DefaultConfig()
			config.ResetPC = 2
			_, err = pipeline.NewPipeline(mem, pipeline.WithConfig(config))
			Expect(err).To(MatchError(itcm.ErrMisalignedAddress))
		})

		It("should reject an instruction cache without a backing store", func() {
			_, err := pipeline.NewPipeline(fixedPort{}, pipeline.WithICache(cache.DefaultL0IConfig()))
			Expect(err).To(HaveOccurred())
		})

		DescribeTable("should return an error for an unusable instruction cache",
			func(config cache.Config) {
				mem, err := itcm.New(1, nil)
				Expect(err).NotTo(HaveOccurred())

				var p *pipeline.Pipeline
				Expect(func() {
					p, err = pipeline.NewPipeline(mem, pipeline.WithICache(config))
				}).NotTo(Panic())
				Expect(err).To(MatchError(ContainSubstring("instruction cache")))
				Expect(p).To(BeNil())
			},
			Entry("zero value", cache.Config{}),
			Entry("block size not a word multiple", cache.Config{Size: 96, Associativity: 2, BlockSize: 6}),
			Entry("smaller than one set", cache.Config{Size: 16, Associativity: 2, BlockSize: 16}),
		)

		It("should seed lanes four bytes apart", func() {
			p, _ := build(nil)

			for i := 0; i < 4; i++ {
				Expect(p.FetchStage().LanePC(i)).To(Equal(uint32(4 * i)))
			}
		})
	})

	Describe("Tick", func() {
		It("should issue the demo program respecting the x1 dependency", func() {
			p, rec := build(demo)
			p.RunCycles(10)

			Expect(issueCycle(rec, 0)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 1)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 2)).To(Equal(uint64(4)))

			stats := p.Stats()
			Expect(stats.Issued).To(Equal(uint64(3)))
			Expect(stats.Completed).To(Equal(uint64(3)))
			Expect(stats.Dropped).To(BeNumerically(">", 0))
			Expect(stats.DataHazardStalls).To(Equal(uint64(2)))
			Expect(stats.Cycles).To(Equal(uint64(10)))
		})

		It("should never let two in-flight instructions conflict", func() {
			p, _ := build(demo)

			for i := 0; i < 20; i++ {
				p.Tick()
				Expect(checkInFlight(p)).To(Succeed())
			}
		})

		It("should issue a dependency chain one latency apart", func() {
			p, rec := build([]uint32{
				insts.ADDI(5, 0, 1),
				insts.ADDI(6, 5, 1),
				insts.ADDI(7, 6, 1),
			})
			p.RunCycles(10)

			Expect(issueCycle(rec, 0)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 1)).To(Equal(uint64(4)))
			Expect(issueCycle(rec, 2)).To(Equal(uint64(6)))
			Expect(p.Scoreboard().BusyRegisters()).To(BeEmpty())
		})

		It("should follow the configured unit latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 4
			p, rec := build([]uint32{
				insts.ADDI(5, 0, 1),
				insts.ADDI(6, 5, 1),
			}, pipeline.WithLatencyTable(latency.NewTableWithConfig(config)))
			p.RunCycles(10)

			Expect(issueCycle(rec, 1) - issueCycle(rec, 0)).To(Equal(uint64(4)))
		})

		It("should stall on a busy unit", func() {
			p, rec := build([]uint32{
				insts.ADDI(1, 0, 1),
				insts.ADDI(2, 0, 2),
				insts.ADDI(3, 0, 3),
			})
			p.RunCycles(8)

			Expect(issueCycle(rec, 0)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 1)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 2)).To(Equal(uint64(4)))
			Expect(p.Stats().StructuralStalls).To(BeNumerically(">=", 1))

			e, ok := rec.Find(trace.KindUnitStall, 2)
			Expect(ok).To(BeTrue())
			Expect(e.Cycle).To(Equal(uint64(2)))
		})

		It("should route branches and stores to their own units", func() {
			p, rec := build([]uint32{
				insts.BEQ(0, 0, 8),
				insts.SW(0, 0, 0),
				insts.ADDI(1, 0, 1),
				insts.JAL(0, 16),
			})
			p.RunCycles(8)

			e, _ := rec.Find(trace.KindIssue, 0)
			Expect(e.Unit).To(Equal("branch0"))
			e, _ = rec.Find(trace.KindIssue, 1)
			Expect(e.Unit).To(Equal("lsu0"))
			e, _ = rec.Find(trace.KindIssue, 2)
			Expect(e.Unit).To(Equal("alu0"))

			// The only branch unit is taken by the beq.
			Expect(issueCycle(rec, 3)).To(Equal(uint64(4)))
		})

		It("should drop unknown instructions without using an issue slot", func() {
			p, rec := build([]uint32{
				0xFFFFFFFF,
				insts.ADDI(1, 0, 1),
			}, pipeline.WithIssueWidth(1))
			p.RunCycles(3)

			_, dropped := rec.Find(trace.KindDrop, 0)
			Expect(dropped).To(BeTrue())
			Expect(issueCycle(rec, 1)).To(Equal(uint64(2)))
		})

		It("should wait for the memory latency before delivering words", func() {
			mem, err := itcm.New(3, demo)
			Expect(err).NotTo(HaveOccurred())

			rec := trace.NewRecorder()
			p, err := pipeline.NewPipeline(mem, pipeline.WithTracer(rec))
			Expect(err).NotTo(HaveOccurred())
			p.RunCycles(5)

			e, ok := rec.Find(trace.KindFetch, 0)
			Expect(ok).To(BeTrue())
			Expect(e.Cycle).To(Equal(uint64(4)))
			Expect(p.Stats().MemoryWaitCycles).To(Equal(uint64(8)))
		})
	})

	Describe("backpressure", func() {
		It("should neither lose nor reorder words through full buffers", func() {
			program := make([]uint32, 40)
			for i := range program {
				program[i] = insts.ADDI(uint8(i%7+1), 0, int32(i))
			}

			config := pipeline.DefaultConfig()
			config.InstBufferCapacity = 1
			config.DispatchQueueCapacity = 1
			config.DecodeWidth = 1
			config.IssueWidth = 1

			p, rec := build(program, pipeline.WithConfig(config))
			for i := 0; i < 200; i++ {
				p.Tick()
				Expect(checkInFlight(p)).To(Succeed())
			}

			fetches := rec.Filter(trace.KindFetch)
			Expect(len(fetches)).To(BeNumerically(">", 40))
			for i, e := range fetches {
				Expect(e.Seq).To(Equal(uint64(i)))
				Expect(e.PC).To(Equal(uint32(4 * i)))
			}

			issues := rec.Filter(trace.KindIssue)
			Expect(len(issues)).To(BeNumerically(">=", 40))
			for i := 0; i < 40; i++ {
				Expect(issues[i].Seq).To(Equal(uint64(i)))
				Expect(issues[i].Word).To(Equal(program[i]))
			}

			stats := p.Stats()
			Expect(stats.FetchStalls).To(BeNumerically(">", 0))
		})

		It("should hold decoded instructions when the dispatch queue is full", func() {
			program := make([]uint32, 16)
			for i := range program {
				program[i] = insts.ADDI(5, 5, 1)
			}

			config := pipeline.DefaultConfig()
			config.DispatchQueueCapacity = 2

			p, rec := build(program, pipeline.WithConfig(config))
			p.RunCycles(60)

			Expect(p.Stats().DecodeStalls).To(BeNumerically(">", 0))
			issues := rec.Filter(trace.KindIssue)
			Expect(len(issues)).To(BeNumerically(">=", 16))
			for i := 0; i < 16; i++ {
				Expect(issues[i].Seq).To(Equal(uint64(i)))
			}
		})
	})

	Describe("issue policy", func() {
		program := []uint32{
			insts.ADDI(1, 0, 1),
			insts.ADD(2, 1, 5),
			insts.ADDI(3, 0, 3),
			insts.ADDI(5, 0, 7),
		}

		It("should stop at the first stall when in order", func() {
			p, rec := build(program, pipeline.WithUnits(4, 1))
			p.RunCycles(8)

			Expect(issueCycle(rec, 0)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 1)).To(Equal(uint64(4)))
			Expect(issueCycle(rec, 2)).To(Equal(uint64(4)))
			Expect(issueCycle(rec, 3)).To(Equal(uint64(4)))
		})

		It("should let independent instructions pass a stalled one", func() {
			p, rec := build(program,
				pipeline.WithUnits(4, 1),
				pipeline.WithIssuePolicy(pipeline.IssueSkipBlocked))
			p.RunCycles(8)

			Expect(issueCycle(rec, 0)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 2)).To(Equal(uint64(2)))
			Expect(issueCycle(rec, 1)).To(Equal(uint64(4)))
		})

		It("should keep a write behind an older stalled read", func() {
			p, rec := build(program,
				pipeline.WithUnits(4, 1),
				pipeline.WithIssuePolicy(pipeline.IssueSkipBlocked))
			p.RunCycles(8)

			Expect(issueCycle(rec, 3)).To(Equal(uint64(4)))
			_, ok := rec.Find(trace.KindHazardStall, 3)
			Expect(ok).To(BeTrue())
		})

		It("should parse policy names", func() {
			policy, ok := pipeline.ParseIssuePolicy("skip-blocked")
			Expect(ok).To(BeTrue())
			Expect(policy).To(Equal(pipeline.IssueSkipBlocked))
			Expect(policy.String()).To(Equal("skip-blocked"))

			_, ok = pipeline.ParseIssuePolicy("random")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("instruction cache", func() {
		It("should fetch through the cache", func() {
			mem, err := itcm.New(1, demo)
			Expect(err).NotTo(HaveOccurred())

			rec := trace.NewRecorder()
			p, err := pipeline.NewPipeline(mem,
				pipeline.WithICache(cache.DefaultL0IConfig()),
				pipeline.WithTracer(rec))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.UseICache()).To(BeTrue())

			p.RunCycles(20)

			stats := p.ICacheStats()
			Expect(stats.Reads).To(BeNumerically(">", 0))
			Expect(stats.Misses).To(BeNumerically(">", 0))
			Expect(issueCycle(rec, 2)).To(BeNumerically(">", issueCycle(rec, 1)))

			fetches := rec.Filter(trace.KindFetch)
			for i, e := range fetches {
				Expect(e.PC).To(Equal(uint32(4 * i)))
			}
		})
	})

	Describe("RunUntil", func() {
		It("should stop when the condition holds", func() {
			p, _ := build(demo)

			ok := p.RunUntil(func(p *pipeline.Pipeline) bool {
				return p.Stats().Completed >= 3
			}, 100)

			Expect(ok).To(BeTrue())
			Expect(p.Stats().Cycles).To(Equal(uint64(6)))
		})

		It("should give up at the limit", func() {
			p, _ := build(demo)

			ok := p.RunUntil(func(*pipeline.Pipeline) bool { return false }, 5)

			Expect(ok).To(BeFalse())
			Expect(p.Cycle()).To(Equal(uint64(5)))
		})
	})

	Describe("Reset", func() {
		It("should return to the initial state", func() {
			p, rec := build(demo)
			p.RunCycles(3)
			Expect(p.Idle()).To(BeFalse())

			p.Reset()
			rec.Reset()

			Expect(p.Idle()).To(BeTrue())
			Expect(p.Stats()).To(Equal(pipeline.Statistics{}))
			Expect(p.Scoreboard().BusyRegisters()).To(BeEmpty())

			p.RunCycles(10)
			Expect(issueCycle(rec, 2)).To(Equal(uint64(4)))
		})
	})

	Describe("Statistics", func() {
		It("should compute IPC and CPI", func() {
			s := pipeline.Statistics{Cycles: 10, Issued: 5, Completed: 4}

			Expect(s.IPC()).To(Equal(0.5))
			Expect(s.CPI()).To(Equal(2.5))
			Expect(pipeline.Statistics{}.CPI()).To(Equal(0.0))
		})

		It("should break issued instructions down by class", func() {
			p, _ := build([]uint32{
				insts.LW(1, 2, 0),
				insts.SW(3, 2, 4),
				insts.BEQ(4, 5, 8),
				insts.JAL(6, 16),
				insts.ADDI(7, 0, 1),
			})
			p.RunCycles(20)

			stats := p.Stats()
			Expect(stats.IssuedLoads).To(Equal(uint64(1)))
			Expect(stats.IssuedStores).To(Equal(uint64(1)))
			Expect(stats.IssuedBranches).To(Equal(uint64(2)))
			Expect(stats.Issued).To(BeNumerically(">=", uint64(5)))

			p.Reset()
			Expect(p.Stats().IssuedLoads).To(BeZero())
			Expect(p.Stats().IssuedBranches).To(BeZero())
		})
	})
})
