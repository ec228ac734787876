package pipeline

import (
	"fmt"

	"github.com/sarchlab/rvscalar/insts"
	"github.com/sarchlab/rvscalar/timing/latency"
)

// ExecUnit is one execution unit slot. It holds at most one instruction
// and finishes it latency completion ticks after issue.
type ExecUnit struct {
	kind    insts.Kind
	index   int
	latency uint64

	current   *DecodedInst
	remaining uint64
}

// NewExecUnit creates an idle unit. A latency of 0 behaves as 1.
func NewExecUnit(kind insts.Kind, index int, latency uint64) *ExecUnit {
	if latency == 0 {
		latency = 1
	}
	return &ExecUnit{kind: kind, index: index, latency: latency}
}

// Name identifies the unit in traces and logs, e.g. "alu1".
func (u *ExecUnit) Name() string {
	return fmt.Sprintf("%s%d", u.kind, u.index)
}

// Kind returns the instruction class the unit executes.
func (u *ExecUnit) Kind() insts.Kind { return u.kind }

// Index returns the slot index within its kind.
func (u *ExecUnit) Index() int { return u.index }

// Latency returns the number of completion ticks an instruction occupies
// the unit.
func (u *ExecUnit) Latency() uint64 { return u.latency }

// Busy reports whether the unit holds an instruction.
func (u *ExecUnit) Busy() bool { return u.current != nil }

// Current returns the in-flight instruction, or nil.
func (u *ExecUnit) Current() *DecodedInst { return u.current }

// Issue starts d on the unit. Issuing to a busy unit is a scheduling bug
// and panics.
func (u *ExecUnit) Issue(d *DecodedInst) {
	if u.current != nil {
		panic(fmt.Sprintf("issue to busy unit %s (holding seq %d, got seq %d)",
			u.Name(), u.current.Seq, d.Seq))
	}
	u.current = d
	u.remaining = u.latency
}

// Tick advances the in-flight instruction by one cycle and returns it
// when it finishes.
func (u *ExecUnit) Tick() (*DecodedInst, bool) {
	if u.current == nil {
		return nil, false
	}

	u.remaining--
	if u.remaining > 0 {
		return nil, false
	}

	done := u.current
	u.current = nil
	return done, true
}

// Reset drops any in-flight instruction.
func (u *ExecUnit) Reset() {
	u.current = nil
	u.remaining = 0
}

// UnitPool holds every execution unit in a fixed order: ALUs, then branch
// units, then load/store units.
type UnitPool struct {
	byKind map[insts.Kind][]*ExecUnit
	all    []*ExecUnit
}

// NewUnitPool builds the units described by config with latencies from
// table.
func NewUnitPool(config Config, table *latency.Table) *UnitPool {
	p := &UnitPool{byKind: make(map[insts.Kind][]*ExecUnit)}

	p.add(insts.KindALU, config.NumALUs, table)
	p.add(insts.KindBranch, config.NumBranchUnits, table)
	p.add(insts.KindLoadStore, config.NumLoadStoreUnits, table)

	return p
}

func (p *UnitPool) add(kind insts.Kind, n int, table *latency.Table) {
	for i := 0; i < n; i++ {
		u := NewExecUnit(kind, i, table.KindLatency(kind))
		p.byKind[kind] = append(p.byKind[kind], u)
		p.all = append(p.all, u)
	}
}

// Unit returns the index-th unit of the given kind.
func (p *UnitPool) Unit(kind insts.Kind, index int) *ExecUnit {
	return p.byKind[kind][index]
}

// All returns every unit in pool order.
func (p *UnitPool) All() []*ExecUnit { return p.all }

// Busy reports whether any unit holds an instruction.
func (p *UnitPool) Busy() bool {
	for _, u := range p.all {
		if u.Busy() {
			return true
		}
	}
	return false
}

// Reset idles every unit.
func (p *UnitPool) Reset() {
	for _, u := range p.all {
		u.Reset()
	}
}
