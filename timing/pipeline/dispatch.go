package pipeline

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// DispatchStage retires finished instructions and issues queued ones onto
// free execution units. It owns the scoreboard and the unit pool.
type DispatchStage struct {
	queue      *Queue[*DecodedInst]
	scoreboard *Scoreboard
	units      *UnitPool
	table      *latency.Table
	width      int
	policy     IssuePolicy
	probe      probe

	issued       uint64
	loads        uint64
	stores       uint64
	branches     uint64
	completed    uint64
	dropped      uint64
	hazardStalls uint64
	unitStalls   uint64
}

// NewDispatchStage creates a dispatch stage that issues from queue.
func NewDispatchStage(
	queue *Queue[*DecodedInst],
	scoreboard *Scoreboard,
	units *UnitPool,
	table *latency.Table,
	width int,
	policy IssuePolicy,
) *DispatchStage {
	return &DispatchStage{
		queue:      queue,
		scoreboard: scoreboard,
		units:      units,
		table:      table,
		width:      width,
		policy:     policy,
		probe:      probe{tracer: trace.Discard{}, log: logr.Discard()},
	}
}

// Reset clears the counters. The queue, scoreboard and units are reset by
// their owner.
func (s *DispatchStage) Reset() {
	s.issued = 0
	s.loads = 0
	s.stores = 0
	s.branches = 0
	s.completed = 0
	s.dropped = 0
	s.hazardStalls = 0
	s.unitStalls = 0
}

// Tick runs the completion phase and then the issue phase.
func (s *DispatchStage) Tick(now uint64) {
	s.complete(now)
	s.issue(now)
}

func (s *DispatchStage) complete(now uint64) {
	for _, u := range s.units.All() {
		d, ok := u.Tick()
		if !ok {
			continue
		}

		rd, hasRd := d.Inst.Dest()
		if hasRd {
			s.scoreboard.Release(rd)
		}
		s.scoreboard.FreeUnit(u.Kind(), u.Index())
		s.completed++

		s.probe.tracer.Record(trace.Event{
			Cycle: now, Kind: trace.KindComplete, Seq: d.Seq, PC: d.PC,
			Word: d.Inst.Word, Unit: u.Name(), Rd: rd,
		})
		s.probe.log.V(2).Info("complete", "cycle", now, "seq", d.Seq, "unit", u.Name())
	}
}

func (s *DispatchStage) issue(now uint64) {
	s.scoreboard.ClearPredictions()

	issued := 0
	i := 0
	for i < s.queue.Len() && issued < s.width {
		d := s.queue.At(i)

		if d.Inst.Kind == insts.KindUnknown {
			s.queue.RemoveAt(i)
			s.dropped++
			s.probe.tracer.Record(trace.Event{
				Cycle: now, Kind: trace.KindDrop, Seq: d.Seq, PC: d.PC, Word: d.Inst.Word,
			})
			s.probe.log.V(1).Info("drop unknown instruction",
				"cycle", now, "seq", d.Seq, "pc", d.PC, "word", d.Inst.Word)
			continue
		}

		if hazard := s.scoreboard.Check(d.Inst); hazard != HazardNone {
			s.hazardStalls++
			s.stall(now, d, trace.KindHazardStall)
			if s.policy == IssueInOrder {
				return
			}
			i++
			continue
		}

		index, ok := s.scoreboard.ClaimUnit(d.Inst.Kind)
		if !ok {
			s.unitStalls++
			s.stall(now, d, trace.KindUnitStall)
			if s.policy == IssueInOrder {
				return
			}
			i++
			continue
		}

		rd, hasRd := d.Inst.Dest()
		if hasRd {
			s.scoreboard.MarkCommitted(rd)
		}

		unit := s.units.Unit(d.Inst.Kind, index)
		unit.Issue(d)
		s.queue.RemoveAt(i)
		s.issued++
		s.countClass(d.Inst)
		issued++

		s.probe.tracer.Record(trace.Event{
			Cycle: now, Kind: trace.KindIssue, Seq: d.Seq, PC: d.PC,
			Word: d.Inst.Word, Unit: unit.Name(), Rd: rd,
		})
		s.probe.log.V(1).Info("issue",
			"cycle", now, "seq", d.Seq, "pc", d.PC, "inst", d.Inst.String(), "unit", unit.Name())
	}
}

func (s *DispatchStage) countClass(inst *insts.Instruction) {
	switch {
	case s.table.IsMemoryOp(inst) && s.table.IsLoadOp(inst):
		s.loads++
	case s.table.IsMemoryOp(inst) && s.table.IsStoreOp(inst):
		s.stores++
	case s.table.IsBranchOp(inst):
		s.branches++
	}
}

func (s *DispatchStage) stall(now uint64, d *DecodedInst, kind trace.Kind) {
	s.scoreboard.MarkStalled(d.Inst)

	s.probe.tracer.Record(trace.Event{
		Cycle: now, Kind: kind, Seq: d.Seq, PC: d.PC, Word: d.Inst.Word,
	})
	s.probe.log.V(2).Info("stall", "cycle", now, "seq", d.Seq, "reason", kind.String())
}
