package pipeline

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/sarchlab/rvscalar/insts"
)

// Hazard classifies why an instruction cannot issue.
type Hazard uint8

const (
	// HazardNone means every register the instruction touches is free.
	HazardNone Hazard = iota
	// HazardRAW means a source register awaits an older write.
	HazardRAW
	// HazardWAW means the destination awaits an older write.
	HazardWAW
	// HazardWAR means an older stalled instruction still has to read the
	// destination.
	HazardWAR
)

func (h Hazard) String() string {
	switch h {
	case HazardNone:
		return "none"
	case HazardRAW:
		return "raw"
	case HazardWAW:
		return "waw"
	case HazardWAR:
		return "war"
	default:
		return "unknown"
	}
}

// Scoreboard tracks register and execution-unit occupancy.
//
// A register is committed-busy from the cycle an instruction writing it
// issues until that instruction completes. A register is predicted-busy
// when an older stalled instruction will write it; predictions live for a
// single issue scan. Register x0 is never marked.
type Scoreboard struct {
	committed    *bitset.BitSet
	predicted    *bitset.BitSet
	pendingReads *bitset.BitSet

	units     map[insts.Kind]*bitset.BitSet
	unitCount map[insts.Kind]uint
}

// NewScoreboard creates a scoreboard with all registers and unit slots free.
func NewScoreboard(numALUs, numBranchUnits, numLoadStoreUnits int) *Scoreboard {
	s := &Scoreboard{
		committed:    bitset.New(insts.NumRegs),
		predicted:    bitset.New(insts.NumRegs),
		pendingReads: bitset.New(insts.NumRegs),
		units:        make(map[insts.Kind]*bitset.BitSet),
		unitCount:    make(map[insts.Kind]uint),
	}

	s.addUnits(insts.KindALU, numALUs)
	s.addUnits(insts.KindBranch, numBranchUnits)
	s.addUnits(insts.KindLoadStore, numLoadStoreUnits)

	return s
}

func (s *Scoreboard) addUnits(kind insts.Kind, n int) {
	s.units[kind] = bitset.New(uint(n))
	s.unitCount[kind] = uint(n)
}

// IsBusy reports whether reg is committed-busy or predicted-busy.
func (s *Scoreboard) IsBusy(reg uint8) bool {
	return s.IsCommittedBusy(reg) || s.IsPredictedBusy(reg)
}

// IsCommittedBusy reports whether an issued instruction will write reg.
func (s *Scoreboard) IsCommittedBusy(reg uint8) bool {
	return s.committed.Test(uint(reg))
}

// IsPredictedBusy reports whether an older stalled instruction will
// write reg.
func (s *Scoreboard) IsPredictedBusy(reg uint8) bool {
	return s.predicted.Test(uint(reg))
}

// IsPendingRead reports whether an older stalled instruction reads reg.
func (s *Scoreboard) IsPendingRead(reg uint8) bool {
	return s.pendingReads.Test(uint(reg))
}

// MarkCommitted records that an issued instruction will write reg.
func (s *Scoreboard) MarkCommitted(reg uint8) {
	if reg == insts.ZeroReg {
		return
	}
	s.committed.Set(uint(reg))
	s.predicted.Clear(uint(reg))
}

// MarkPredicted records that an older stalled instruction will write reg.
func (s *Scoreboard) MarkPredicted(reg uint8) {
	if reg == insts.ZeroReg {
		return
	}
	s.predicted.Set(uint(reg))
}

// MarkStalled records every register a stalled instruction will touch.
func (s *Scoreboard) MarkStalled(inst *insts.Instruction) {
	if rd, ok := inst.Dest(); ok {
		s.MarkPredicted(rd)
	}
	for _, rs := range inst.Sources() {
		if rs != insts.ZeroReg {
			s.pendingReads.Set(uint(rs))
		}
	}
}

// Release clears both busy flags of reg when its writer completes.
func (s *Scoreboard) Release(reg uint8) {
	s.committed.Clear(uint(reg))
	s.predicted.Clear(uint(reg))
}

// ClearPredictions drops every prediction made by the previous issue scan.
func (s *Scoreboard) ClearPredictions() {
	s.predicted.ClearAll()
	s.pendingReads.ClearAll()
}

// Check returns the first hazard that prevents inst from issuing now.
func (s *Scoreboard) Check(inst *insts.Instruction) Hazard {
	for _, rs := range inst.Sources() {
		if rs != insts.ZeroReg && s.IsBusy(rs) {
			return HazardRAW
		}
	}

	rd, ok := inst.Dest()
	if !ok {
		return HazardNone
	}

	if s.IsBusy(rd) {
		return HazardWAW
	}

	if s.IsPendingRead(rd) {
		return HazardWAR
	}

	return HazardNone
}

// ClaimUnit marks the lowest free slot of the given kind busy and
// returns its index.
func (s *Scoreboard) ClaimUnit(kind insts.Kind) (int, bool) {
	flags, ok := s.units[kind]
	if !ok {
		return 0, false
	}

	for i := uint(0); i < s.unitCount[kind]; i++ {
		if !flags.Test(i) {
			flags.Set(i)
			return int(i), true
		}
	}

	return 0, false
}

// FreeUnit marks a unit slot free.
func (s *Scoreboard) FreeUnit(kind insts.Kind, index int) {
	if flags, ok := s.units[kind]; ok {
		flags.Clear(uint(index))
	}
}

// IsUnitBusy reports whether a unit slot is occupied.
func (s *Scoreboard) IsUnitBusy(kind insts.Kind, index int) bool {
	flags, ok := s.units[kind]
	if !ok {
		return false
	}
	return flags.Test(uint(index))
}

// FreeUnits returns the number of free slots of the given kind.
func (s *Scoreboard) FreeUnits(kind insts.Kind) int {
	flags, ok := s.units[kind]
	if !ok {
		return 0
	}
	return int(s.unitCount[kind] - flags.Count())
}

// BusyRegisters lists the committed-busy registers in ascending order.
func (s *Scoreboard) BusyRegisters() []uint8 {
	var regs []uint8
	for i, ok := s.committed.NextSet(0); ok; i, ok = s.committed.NextSet(i + 1) {
		regs = append(regs, uint8(i))
	}
	return regs
}

// Reset frees every register and unit slot.
func (s *Scoreboard) Reset() {
	s.committed.ClearAll()
	s.ClearPredictions()
	for _, flags := range s.units {
		flags.ClearAll()
	}
}
