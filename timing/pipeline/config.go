package pipeline

import (
	"fmt"

	"github.com/sarchlab/rvscalar/timing/itcm"
)

// Config holds the structural parameters of the pipeline.
type Config struct {
	// Lanes is the number of independent fetch lanes. Lane i starts at
	// ResetPC + 4*i and strides by 4*Lanes.
	Lanes int

	// ResetPC is the byte address of the first instruction.
	ResetPC uint32

	// InstBufferCapacity bounds the queue between fetch and decode.
	InstBufferCapacity int

	// DecodeWidth is the maximum number of instructions decoded per cycle.
	DecodeWidth int

	// DispatchQueueCapacity bounds the queue between decode and issue.
	DispatchQueueCapacity int

	// IssueWidth is the maximum number of instructions issued per cycle.
	IssueWidth int

	// IssuePolicy selects whether the issue scan stops at the first stall.
	IssuePolicy IssuePolicy

	// NumALUs is the number of arithmetic units.
	NumALUs int

	// NumBranchUnits is the number of branch units.
	NumBranchUnits int

	// NumLoadStoreUnits is the number of load/store units.
	NumLoadStoreUnits int
}

// DefaultConfig returns the default 4-lane, 4-wide configuration.
func DefaultConfig() Config {
	return Config{
		Lanes:                 4,
		ResetPC:               0,
		InstBufferCapacity:    4,
		DecodeWidth:           4,
		DispatchQueueCapacity: 8,
		IssueWidth:            4,
		IssuePolicy:           IssueInOrder,
		NumALUs:               2,
		NumBranchUnits:        1,
		NumLoadStoreUnits:     1,
	}
}

// Validate checks that the configuration describes a buildable pipeline.
func (c Config) Validate() error {
	if c.Lanes <= 0 {
		return fmt.Errorf("lanes must be > 0")
	}
	if c.ResetPC%itcm.WordSize != 0 {
		return fmt.Errorf("reset pc 0x%x: %w", c.ResetPC, itcm.ErrMisalignedAddress)
	}
	if c.InstBufferCapacity <= 0 {
		return fmt.Errorf("instruction buffer capacity must be > 0")
	}
	if c.DecodeWidth <= 0 {
		return fmt.Errorf("decode width must be > 0")
	}
	if c.DispatchQueueCapacity <= 0 {
		return fmt.Errorf("dispatch queue capacity must be > 0")
	}
	if c.IssueWidth <= 0 {
		return fmt.Errorf("issue width must be > 0")
	}
	if c.IssuePolicy != IssueInOrder && c.IssuePolicy != IssueSkipBlocked {
		return fmt.Errorf("unknown issue policy %d", c.IssuePolicy)
	}
	if c.NumALUs <= 0 {
		return fmt.Errorf("number of ALUs must be > 0")
	}
	if c.NumBranchUnits <= 0 {
		return fmt.Errorf("number of branch units must be > 0")
	}
	if c.NumLoadStoreUnits <= 0 {
		return fmt.Errorf("number of load/store units must be > 0")
	}
	return nil
}
