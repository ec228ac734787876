package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/pipeline"
)

var _ = Describe("ExecUnit", func() {
	var (
		decoder *insts.Decoder
		unit    *pipeline.ExecUnit
	)

	BeforeEach(func() {
		decoder = insts.NewDecoder()
		unit = pipeline.NewExecUnit(insts.KindALU, 1, 2)
	})

	It("should be named after its kind and index", func() {
		Expect(unit.Name()).To(Equal("alu1"))
	})

	It("should hold an instruction for its latency", func() {
		d := &pipeline.DecodedInst{Seq: 7, Inst: decoder.Decode(insts.ADDI(5, 0, 1))}
		unit.Issue(d)
		Expect(unit.Busy()).To(BeTrue())

		_, done := unit.Tick()
		Expect(done).To(BeFalse())
		Expect(unit.Busy()).To(BeTrue())

		got, done := unit.Tick()
		Expect(done).To(BeTrue())
		Expect(got.Seq).To(Equal(uint64(7)))
		rd, ok := got.Inst.Dest()
		Expect(ok).To(BeTrue())
		Expect(rd).To(Equal(uint8(5)))
		Expect(unit.Busy()).To(BeFalse())
	})

	It("should return nothing when idle", func() {
		got, done := unit.Tick()
		Expect(done).To(BeFalse())
		Expect(got).To(BeNil())
	})

	It("should treat latency zero as one", func() {
		fast := pipeline.NewExecUnit(insts.KindBranch, 0, 0)
		fast.Issue(&pipeline.DecodedInst{Inst: decoder.Decode(insts.BEQ(1, 2, 8))})

		_, done := fast.Tick()
		Expect(done).To(BeTrue())
	})

	It("should panic when issuing to a busy unit", func() {
		d := &pipeline.DecodedInst{Inst: decoder.Decode(insts.NOP())}
		unit.Issue(d)

		Expect(func() { unit.Issue(d) }).To(Panic())
	})
})
