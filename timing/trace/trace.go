// Package trace records per-cycle pipeline events and exports them as a
// CBOR stream for offline inspection.
package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Kind identifies what happened to an instruction.
type Kind uint8

// Event kinds.
const (
	KindFetch Kind = iota + 1
	KindDecode
	KindIssue
	KindHazardStall
	KindUnitStall
	KindComplete
	KindDrop
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindDecode:
		return "decode"
	case KindIssue:
		return "issue"
	case KindHazardStall:
		return "hazard-stall"
	case KindUnitStall:
		return "unit-stall"
	case KindComplete:
		return "complete"
	case KindDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Event is one pipeline occurrence.
type Event struct {
	Cycle uint64 `cbor:"1,keyasint"`
	Kind  Kind   `cbor:"2,keyasint"`
	// Seq is the program-order sequence number assigned at fetch.
	Seq  uint64 `cbor:"3,keyasint"`
	PC   uint32 `cbor:"4,keyasint"`
	Word uint32 `cbor:"5,keyasint"`
	// Unit is the execution unit slot for issue and complete events.
	Unit string `cbor:"6,keyasint,omitempty"`
	// Rd is the destination register, if any.
	Rd uint8 `cbor:"7,keyasint,omitempty"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%d] %-12s seq=%d pc=0x%08x word=0x%08x %s",
		e.Cycle, e.Kind, e.Seq, e.PC, e.Word, e.Unit)
}

// Tracer receives pipeline events.
type Tracer interface {
	Record(e Event)
}

// Discard is a Tracer that drops every event.
type Discard struct{}

// Record implements Tracer.
func (Discard) Record(Event) {}

// Multi forwards every event to each of its tracers in order.
type Multi []Tracer

// Record implements Tracer.
func (m Multi) Record(e Event) {
	for _, t := range m {
		t.Record(e)
	}
}

// Recorder keeps events in memory.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record implements Tracer.
func (r *Recorder) Record(e Event) {
	r.events = append(r.events, e)
}

// Events returns all recorded events in order.
func (r *Recorder) Events() []Event {
	return r.events
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first event of kind for the instruction seq.
func (r *Recorder) Find(kind Kind, seq uint64) (Event, bool) {
	for _, e := range r.events {
		if e.Kind == kind && e.Seq == seq {
			return e, true
		}
	}
	return Event{}, false
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.events = nil
}

// WriteCBOR encodes events as a CBOR sequence.
func WriteCBOR(w io.Writer, events []Event) error {
	enc := cbor.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode trace event: %w", err)
		}
	}
	return nil
}

// ReadCBOR decodes a CBOR sequence written by WriteCBOR.
func ReadCBOR(r io.Reader) ([]Event, error) {
	dec := cbor.NewDecoder(r)

	var events []Event
	for {
		var e Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode trace event: %w", err)
		}
		events = append(events, e)
	}
}

// StreamWriter is a Tracer that encodes each event to w as it arrives.
type StreamWriter struct {
	enc *cbor.Encoder
	err error
}

// NewStreamWriter creates a StreamWriter on w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{enc: cbor.NewEncoder(w)}
}

// Record implements Tracer. The first encoding error stops the stream and
// is reported by Err.
func (s *StreamWriter) Record(e Event) {
	if s.err != nil {
		return
	}
	if err := s.enc.Encode(e); err != nil {
		s.err = fmt.Errorf("failed to encode trace event: %w", err)
	}
}

// Err returns the first encoding error, if any.
func (s *StreamWriter) Err() error {
	return s.err
}
