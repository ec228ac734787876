// Package core drives the pipeline from an akita simulation engine.
package core

import (
	"errors"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvscalar/timing/pipeline"
)

// ErrNoCycleLimit is returned by Run when no cycle budget was set. The
// fetch lanes never run dry, so an unbounded run would not terminate.
var ErrNoCycleLimit = errors.New("cycle limit not set")

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed.
	Instructions uint64
	// Stalls is the number of issue attempts blocked by hazards or busy
	// units.
	Stalls uint64
	// Dropped is the number of unknown instructions discarded.
	Dropped uint64
}

// Core is a ticking component that advances the pipeline one cycle per
// engine tick.
type Core struct {
	*sim.TickingComponent

	// Pipeline is the underlying scalar frontend.
	Pipeline *pipeline.Pipeline

	engine     sim.Engine
	cycleLimit uint64
}

// NewCore creates a core clocked at freq on engine.
func NewCore(name string, engine sim.Engine, freq sim.Freq, pipe *pipeline.Pipeline) *Core {
	c := &Core{
		Pipeline: pipe,
		engine:   engine,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)
	return c
}

// SetCycleLimit sets the number of pipeline cycles after which the core
// stops ticking.
func (c *Core) SetCycleLimit(cycles uint64) {
	c.cycleLimit = cycles
}

// Tick advances the pipeline by one cycle. It reports no progress once
// the cycle limit is reached, which lets the engine drain.
func (c *Core) Tick() bool {
	if c.Pipeline.Cycle() >= c.cycleLimit {
		return false
	}

	c.Pipeline.Tick()
	return true
}

// Run schedules the first tick and runs the engine until the core stops.
func (c *Core) Run() error {
	if c.cycleLimit == 0 {
		return ErrNoCycleLimit
	}

	c.TickLater()
	return c.engine.Run()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Pipeline.Stats()
	return Stats{
		Cycles:       s.Cycles,
		Instructions: s.Completed,
		Stalls:       s.DataHazardStalls + s.StructuralStalls,
		Dropped:      s.Dropped,
	}
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
