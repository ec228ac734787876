// Package latency provides execution timing models for the scalar
// pipeline.
//
// Every functional unit kind has one fixed latency, configured through
// TimingConfig.
package latency

import (
	"github.com/sarchlab/rvscalar/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// KindLatency returns the execution latency of a functional unit kind.
// Unknown instructions never occupy a unit and report 1.
func (t *Table) KindLatency(kind insts.Kind) uint64 {
	switch kind {
	case insts.KindALU:
		return t.config.ALULatency
	case insts.KindBranch:
		return t.config.BranchLatency
	case insts.KindLoadStore:
		return t.config.LoadStoreLatency
	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction uses the load/store unit.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Kind == insts.KindLoadStore
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Opcode == insts.OpcodeLoad
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Opcode == insts.OpcodeStore
}

// IsBranchOp returns true if the instruction executes on a branch unit.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Kind == insts.KindBranch
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
