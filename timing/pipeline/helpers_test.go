package pipeline_test

import (
	"fmt"
	"sort"

	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/pipeline"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// build creates a pipeline over a 1-cycle ITCM holding program and
// records every event.
func build(program []uint32, opts ...pipeline.PipelineOption) (*pipeline.Pipeline, *trace.Recorder) {
	mem, err := itcm.New(1, program)
	if err != nil {
		panic(err)
	}

	rec := trace.NewRecorder()
	opts = append([]pipeline.PipelineOption{pipeline.WithTracer(rec)}, opts...)

	p, err := pipeline.NewPipeline(mem, opts...)
	if err != nil {
		panic(err)
	}

	return p, rec
}

// issueCycle returns the cycle seq issued in, or 0.
func issueCycle(rec *trace.Recorder, seq uint64) uint64 {
	e, ok := rec.Find(trace.KindIssue, seq)
	if !ok {
		return 0
	}
	return e.Cycle
}

// checkInFlight verifies that no two in-flight instructions conflict and
// that every in-flight destination is committed-busy.
func checkInFlight(p *pipeline.Pipeline) error {
	var inFlight []*pipeline.DecodedInst
	for _, u := range p.Units().All() {
		if !u.Busy() {
			continue
		}
		if !p.Scoreboard().IsUnitBusy(u.Kind(), u.Index()) {
			return fmt.Errorf("unit %s busy but its slot is free", u.Name())
		}
		inFlight = append(inFlight, u.Current())
	}

	sort.Slice(inFlight, func(i, j int) bool {
		return inFlight[i].Seq < inFlight[j].Seq
	})

	for i, older := range inFlight {
		rd, ok := older.Inst.Dest()
		if !ok {
			continue
		}

		if !p.Scoreboard().IsCommittedBusy(rd) {
			return fmt.Errorf("seq %d writes x%d but x%d is not busy", older.Seq, rd, rd)
		}

		for _, younger := range inFlight[i+1:] {
			if yrd, ok := younger.Inst.Dest(); ok && yrd == rd {
				return fmt.Errorf("seq %d and seq %d both write x%d", older.Seq, younger.Seq, rd)
			}
			for _, rs := range younger.Inst.Sources() {
				if rs == rd {
					return fmt.Errorf("seq %d reads x%d before seq %d wrote it",
						younger.Seq, rd, older.Seq)
				}
			}
		}
	}

	return nil
}
