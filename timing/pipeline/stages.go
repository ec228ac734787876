package pipeline

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// probe carries the observability hooks shared by every stage.
type probe struct {
	tracer trace.Tracer
	log    logr.Logger
}

// fetchLane is one independent fetch stream.
type fetchLane struct {
	pc      uint32
	read    itcm.PendingRead
	word    uint32
	holding bool
}

// FetchStage reads instruction words through several independent lanes
// and delivers them to the instruction buffer in program order.
type FetchStage struct {
	port   itcm.Port
	lanes  []fetchLane
	stride uint32
	nextPC uint32
	seq    uint64
	probe  probe

	fetched    uint64
	stalls     uint64
	waitCycles uint64
}

// NewFetchStage creates a fetch stage whose lane i starts at
// resetPC + 4*i.
func NewFetchStage(port itcm.Port, lanes int, resetPC uint32) *FetchStage {
	s := &FetchStage{
		port:   port,
		lanes:  make([]fetchLane, lanes),
		stride: uint32(lanes) * itcm.WordSize,
		probe:  probe{tracer: trace.Discard{}, log: logr.Discard()},
	}
	s.Reset(resetPC)
	return s
}

// Reset re-seeds every lane and forgets in-flight reads.
func (s *FetchStage) Reset(resetPC uint32) {
	for i := range s.lanes {
		s.lanes[i] = fetchLane{pc: resetPC + uint32(i)*itcm.WordSize}
	}
	s.nextPC = resetPC
	s.seq = 0
	s.fetched = 0
	s.stalls = 0
	s.waitCycles = 0
}

// LanePC returns the address lane i fetches next.
func (s *FetchStage) LanePC(i int) uint32 {
	return s.lanes[i].pc
}

// Holding reports whether any lane keeps a word the buffer has not taken.
func (s *FetchStage) Holding() bool {
	for i := range s.lanes {
		if s.lanes[i].holding {
			return true
		}
	}
	return false
}

// Tick advances every lane by one cycle. A lane that holds a word
// waits; a lane with no read starts one; a lane with a read polls it.
// Completed words are then pushed into buf in program order until the
// buffer is full. Words the buffer rejects stay in their lane.
func (s *FetchStage) Tick(now uint64, buf *Queue[FetchedInst]) {
	for i := range s.lanes {
		lane := &s.lanes[i]

		if lane.holding {
			continue
		}

		if !lane.read.InFlight() {
			read, err := s.port.Read(lane.pc)
			if err != nil {
				panic(fmt.Sprintf("fetch lane %d: %v", i, err))
			}
			lane.read = read
			continue
		}

		status, word := lane.read.Advance(s.port)
		if status != itcm.StatusReady {
			s.waitCycles++
			continue
		}

		lane.word = word
		lane.holding = true
	}

	s.deliver(now, buf)
}

func (s *FetchStage) deliver(now uint64, buf *Queue[FetchedInst]) {
	for {
		lane := s.laneAt(s.nextPC)
		if lane == nil {
			return
		}

		f := FetchedInst{Seq: s.seq, PC: lane.pc, Word: lane.word}
		if !buf.Push(f) {
			s.stalls++
			return
		}

		s.probe.tracer.Record(trace.Event{
			Cycle: now, Kind: trace.KindFetch, Seq: f.Seq, PC: f.PC, Word: f.Word,
		})

		s.seq++
		s.fetched++
		s.nextPC += itcm.WordSize
		lane.holding = false
		lane.pc += s.stride
	}
}

func (s *FetchStage) laneAt(pc uint32) *fetchLane {
	for i := range s.lanes {
		if s.lanes[i].holding && s.lanes[i].pc == pc {
			return &s.lanes[i]
		}
	}
	return nil
}

// DecodeStage turns raw words into decoded instructions. Instructions the
// dispatch queue rejects are held and retried before anything new is
// decoded.
type DecodeStage struct {
	decoder *insts.Decoder
	width   int
	held    []*DecodedInst
	probe   probe

	decoded uint64
	stalls  uint64
}

// NewDecodeStage creates a decode stage that handles up to width words
// per cycle.
func NewDecodeStage(width int) *DecodeStage {
	return &DecodeStage{
		decoder: insts.NewDecoder(),
		width:   width,
		probe:   probe{tracer: trace.Discard{}, log: logr.Discard()},
	}
}

// Held returns the number of decoded instructions waiting for room in the
// dispatch queue.
func (s *DecodeStage) Held() int { return len(s.held) }

// Reset drops held instructions and counters.
func (s *DecodeStage) Reset() {
	s.held = nil
	s.decoded = 0
	s.stalls = 0
}

// Tick retries held instructions, then decodes up to width new words
// from buf when nothing is held, pushing them into queue in order.
func (s *DecodeStage) Tick(now uint64, buf *Queue[FetchedInst], queue *Queue[*DecodedInst]) {
	s.drain(queue)

	if len(s.held) == 0 {
		for _, f := range buf.PopBatch(s.width) {
			d := &DecodedInst{Seq: f.Seq, PC: f.PC, Inst: s.decoder.Decode(f.Word)}
			s.decoded++
			s.probe.tracer.Record(trace.Event{
				Cycle: now, Kind: trace.KindDecode, Seq: d.Seq, PC: d.PC, Word: f.Word,
			})
			s.held = append(s.held, d)
		}
		s.drain(queue)
	}

	if len(s.held) > 0 {
		s.stalls++
	}
}

func (s *DecodeStage) drain(queue *Queue[*DecodedInst]) {
	n := 0
	for n < len(s.held) && queue.Push(s.held[n]) {
		n++
	}
	s.held = s.held[n:]
}
