package itcm

// Status reports the outcome of advancing a pending read.
type Status uint8

const (
	// StatusPending means the read needs more cycles.
	StatusPending Status = iota
	// StatusReady means the word is available.
	StatusReady
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "pending"
}

// PendingRead is an in-flight memory read. The zero value is a read that
// has not been started.
type PendingRead struct {
	Addr      uint32
	Remaining uint64
	inFlight  bool
}

// StartRead returns a pending read of addr that resolves after latency
// calls to Advance. A latency of zero behaves like one.
func StartRead(addr uint32, latency uint64) PendingRead {
	if latency == 0 {
		latency = 1
	}

	return PendingRead{
		Addr:      addr,
		Remaining: latency,
		inFlight:  true,
	}
}

// InFlight reports whether the read has started and not yet resolved.
func (r *PendingRead) InFlight() bool {
	return r.inFlight
}

// Advance consumes one cycle of latency. When the countdown reaches zero
// it resolves the word through port and returns StatusReady; the read
// then returns to the not-started state.
func (r *PendingRead) Advance(port Port) (Status, uint32) {
	if !r.inFlight {
		return StatusPending, 0
	}

	r.Remaining--
	if r.Remaining > 0 {
		return StatusPending, 0
	}

	word := port.Resolve(r.Addr)
	*r = PendingRead{}

	return StatusReady, word
}
