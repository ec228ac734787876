package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/pipeline"
)

var _ = Describe("Scoreboard", func() {
	var (
		decoder *insts.Decoder
		sb      *pipeline.Scoreboard
	)

	BeforeEach(func() {
		decoder = insts.NewDecoder()
		sb = pipeline.NewScoreboard(2, 1, 1)
	})

	Describe("register flags", func() {
		It("should never mark x0", func() {
			sb.MarkCommitted(0)
			sb.MarkPredicted(0)

			Expect(sb.IsBusy(0)).To(BeFalse())
		})

		It("should clear the prediction when a register is committed", func() {
			sb.MarkPredicted(3)
			sb.MarkCommitted(3)

			Expect(sb.IsPredictedBusy(3)).To(BeFalse())
			Expect(sb.IsCommittedBusy(3)).To(BeTrue())
		})

		It("should free a register on release", func() {
			sb.MarkCommitted(3)
			sb.Release(3)

			Expect(sb.IsBusy(3)).To(BeFalse())
		})

		It("should keep committed flags across prediction clears", func() {
			sb.MarkCommitted(4)
			sb.MarkPredicted(5)
			sb.ClearPredictions()

			Expect(sb.IsCommittedBusy(4)).To(BeTrue())
			Expect(sb.IsPredictedBusy(5)).To(BeFalse())
			Expect(sb.BusyRegisters()).To(Equal([]uint8{4}))
		})
	})

	Describe("Check", func() {
		It("should report no hazard on a free register file", func() {
			Expect(sb.Check(decoder.Decode(insts.ADD(3, 1, 2)))).To(Equal(pipeline.HazardNone))
		})

		It("should report RAW on a busy source", func() {
			sb.MarkCommitted(2)

			Expect(sb.Check(decoder.Decode(insts.ADD(3, 1, 2)))).To(Equal(pipeline.HazardRAW))
		})

		It("should report RAW on a predicted source", func() {
			sb.MarkPredicted(1)

			Expect(sb.Check(decoder.Decode(insts.ADD(3, 1, 2)))).To(Equal(pipeline.HazardRAW))
		})

		It("should report WAW on a busy destination", func() {
			sb.MarkCommitted(3)

			Expect(sb.Check(decoder.Decode(insts.ADD(3, 1, 2)))).To(Equal(pipeline.HazardWAW))
		})

		It("should report WAR when a stalled instruction reads the destination", func() {
			sb.MarkStalled(decoder.Decode(insts.ADD(6, 5, 4)))

			Expect(sb.Check(decoder.Decode(insts.ADDI(5, 0, 1)))).To(Equal(pipeline.HazardWAR))
		})

		It("should ignore x0 sources", func() {
			sb.MarkCommitted(0)

			Expect(sb.Check(decoder.Decode(insts.ADDI(1, 0, 1)))).To(Equal(pipeline.HazardNone))
		})

		It("should not treat the rs2 field of an I-format word as a source", func() {
			sb.MarkCommitted(5)

			// addi x1, x2, 5 carries 5 in the rs2 bit positions.
			Expect(sb.Check(decoder.Decode(insts.ADDI(1, 2, 5)))).To(Equal(pipeline.HazardNone))
		})

		It("should check both sources of a store but no destination", func() {
			sb.MarkCommitted(7)

			Expect(sb.Check(decoder.Decode(insts.SW(7, 1, 0)))).To(Equal(pipeline.HazardRAW))
			Expect(sb.Check(decoder.Decode(insts.SW(2, 1, 0)))).To(Equal(pipeline.HazardNone))
		})
	})

	Describe("unit slots", func() {
		It("should hand out the lowest free slot", func() {
			idx, ok := sb.ClaimUnit(insts.KindALU)
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(0))

			idx, ok = sb.ClaimUnit(insts.KindALU)
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(1))

			_, ok = sb.ClaimUnit(insts.KindALU)
			Expect(ok).To(BeFalse())
			Expect(sb.FreeUnits(insts.KindALU)).To(Equal(0))
		})

		It("should reuse a freed slot", func() {
			sb.ClaimUnit(insts.KindBranch)
			sb.FreeUnit(insts.KindBranch, 0)

			Expect(sb.IsUnitBusy(insts.KindBranch, 0)).To(BeFalse())
			idx, ok := sb.ClaimUnit(insts.KindBranch)
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(0))
		})

		It("should have no slots for unknown instructions", func() {
			_, ok := sb.ClaimUnit(insts.KindUnknown)
			Expect(ok).To(BeFalse())
		})

		It("should free everything on reset", func() {
			sb.MarkCommitted(9)
			sb.ClaimUnit(insts.KindLoadStore)
			sb.Reset()

			Expect(sb.IsBusy(9)).To(BeFalse())
			Expect(sb.FreeUnits(insts.KindLoadStore)).To(Equal(1))
		})
	})
})
