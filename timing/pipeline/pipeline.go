package pipeline

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/rvscalar/timing/cache"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Fetched is the number of words delivered to the instruction buffer.
	Fetched uint64
	// Decoded is the number of words decoded.
	Decoded uint64
	// Issued is the number of instructions issued to a unit.
	Issued uint64
	// IssuedLoads, IssuedStores and IssuedBranches break Issued down by
	// instruction class; the remainder went to the ALUs.
	IssuedLoads    uint64
	IssuedStores   uint64
	IssuedBranches uint64
	// Completed is the number of instructions that left a unit.
	Completed uint64
	// Dropped is the number of unknown instructions discarded at issue.
	Dropped uint64
	// DataHazardStalls counts issue attempts blocked by a register hazard.
	DataHazardStalls uint64
	// StructuralStalls counts issue attempts blocked by a busy unit.
	StructuralStalls uint64
	// FetchStalls counts cycles a fetched word was rejected by a full
	// instruction buffer.
	FetchStalls uint64
	// DecodeStalls counts cycles decoded instructions were held because
	// the dispatch queue was full.
	DecodeStalls uint64
	// MemoryWaitCycles counts lane-cycles spent waiting on a read.
	MemoryWaitCycles uint64
}

// IPC returns the issued instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Issued) / float64(s.Cycles)
}

// CPI returns the cycles per completed instruction.
func (s Statistics) CPI() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Completed)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithConfig replaces the structural configuration.
func WithConfig(config Config) PipelineOption {
	return func(p *Pipeline) {
		p.config = config
	}
}

// WithLatencyTable sets a custom latency table for the execution units.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithICache places an instruction cache in front of the port. The port
// must also serve as the cache's backing store.
func WithICache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		p.icacheConfig = &config
	}
}

// WithLogger sets the logger. Issue and drop events are logged at V(1),
// stalls and completions at V(2).
func WithLogger(log logr.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithTracer sets the receiver of per-instruction events.
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// Pipeline is the scalar frontend: fetch lanes feed an instruction
// buffer, decode feeds a dispatch queue, and dispatch issues onto
// execution units under scoreboard control.
type Pipeline struct {
	config       Config
	latencyTable *latency.Table
	icacheConfig *cache.Config
	log          logr.Logger
	tracer       trace.Tracer

	port   itcm.Port
	icache *cache.Cache

	instBuffer    *Queue[FetchedInst]
	dispatchQueue *Queue[*DecodedInst]
	scoreboard    *Scoreboard
	units         *UnitPool

	fetchStage    *FetchStage
	decodeStage   *DecodeStage
	dispatchStage *DispatchStage

	cycle uint64
}

// NewPipeline creates a pipeline that fetches through port.
func NewPipeline(port itcm.Port, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		config: DefaultConfig(),
		log:    logr.Discard(),
		tracer: trace.Discard{},
		port:   port,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	if p.latencyTable == nil {
		p.latencyTable = latency.NewTable()
	}

	if p.icacheConfig != nil {
		if err := p.icacheConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid instruction cache config: %w", err)
		}

		backing, ok := port.(cache.BackingStore)
		if !ok {
			return nil, fmt.Errorf("instruction cache needs a backing store, got %T", port)
		}
		p.icache = cache.New(*p.icacheConfig, backing)
		p.port = p.icache
	}

	p.build()

	p.log.V(1).Info("pipeline created",
		"lanes", p.config.Lanes,
		"issueWidth", p.config.IssueWidth,
		"policy", p.config.IssuePolicy.String(),
		"alus", p.config.NumALUs,
		"branchUnits", p.config.NumBranchUnits,
		"icache", p.icache != nil)

	return p, nil
}

func (p *Pipeline) build() {
	c := p.config
	pr := probe{tracer: p.tracer, log: p.log}

	p.instBuffer = NewQueue[FetchedInst](c.InstBufferCapacity)
	p.dispatchQueue = NewQueue[*DecodedInst](c.DispatchQueueCapacity)
	p.scoreboard = NewScoreboard(c.NumALUs, c.NumBranchUnits, c.NumLoadStoreUnits)
	p.units = NewUnitPool(c, p.latencyTable)

	p.fetchStage = NewFetchStage(p.port, c.Lanes, c.ResetPC)
	p.fetchStage.probe = pr

	p.decodeStage = NewDecodeStage(c.DecodeWidth)
	p.decodeStage.probe = pr

	p.dispatchStage = NewDispatchStage(p.dispatchQueue, p.scoreboard, p.units,
		p.latencyTable, c.IssueWidth, c.IssuePolicy)
	p.dispatchStage.probe = pr
}

// Tick advances the pipeline by one cycle: fetch, then decode, then
// dispatch.
func (p *Pipeline) Tick() {
	p.cycle++
	now := p.cycle

	p.fetchStage.Tick(now, p.instBuffer)
	p.decodeStage.Tick(now, p.instBuffer, p.dispatchQueue)
	p.dispatchStage.Tick(now)
}

// RunCycles ticks the pipeline n times.
func (p *Pipeline) RunCycles(n uint64) {
	for i := uint64(0); i < n; i++ {
		p.Tick()
	}
}

// RunUntil ticks until done reports true or limit cycles have been run.
// It reports whether done was satisfied.
func (p *Pipeline) RunUntil(done func(*Pipeline) bool, limit uint64) bool {
	for i := uint64(0); i < limit; i++ {
		if done(p) {
			return true
		}
		p.Tick()
	}
	return done(p)
}

// Cycle returns the number of cycles run since creation or reset.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Config returns the structural configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Stats returns the performance statistics.
func (p *Pipeline) Stats() Statistics {
	return Statistics{
		Cycles:           p.cycle,
		Fetched:          p.fetchStage.fetched,
		Decoded:          p.decodeStage.decoded,
		Issued:           p.dispatchStage.issued,
		IssuedLoads:      p.dispatchStage.loads,
		IssuedStores:     p.dispatchStage.stores,
		IssuedBranches:   p.dispatchStage.branches,
		Completed:        p.dispatchStage.completed,
		Dropped:          p.dispatchStage.dropped,
		DataHazardStalls: p.dispatchStage.hazardStalls,
		StructuralStalls: p.dispatchStage.unitStalls,
		FetchStalls:      p.fetchStage.stalls,
		DecodeStalls:     p.decodeStage.stalls,
		MemoryWaitCycles: p.fetchStage.waitCycles,
	}
}

// Idle reports whether no fetched word, decoded instruction or in-flight
// execution remains. Reads in flight are not counted.
func (p *Pipeline) Idle() bool {
	return !p.fetchStage.Holding() &&
		p.instBuffer.Empty() &&
		p.decodeStage.Held() == 0 &&
		p.dispatchQueue.Empty() &&
		!p.units.Busy()
}

// Reset returns the pipeline to its initial state. Memory contents are
// left untouched.
func (p *Pipeline) Reset() {
	p.cycle = 0
	p.instBuffer.Clear()
	p.dispatchQueue.Clear()
	p.scoreboard.Reset()
	p.units.Reset()
	p.fetchStage.Reset(p.config.ResetPC)
	p.decodeStage.Reset()
	p.dispatchStage.Reset()
	if p.icache != nil {
		p.icache.Reset()
	}
}

// Scoreboard returns the register and unit occupancy tracker.
func (p *Pipeline) Scoreboard() *Scoreboard {
	return p.scoreboard
}

// Units returns the execution unit pool.
func (p *Pipeline) Units() *UnitPool {
	return p.units
}

// FetchStage returns the fetch stage.
func (p *Pipeline) FetchStage() *FetchStage {
	return p.fetchStage
}

// InstBuffer returns the queue between fetch and decode.
func (p *Pipeline) InstBuffer() *Queue[FetchedInst] {
	return p.instBuffer
}

// DispatchQueue returns the queue between decode and issue.
func (p *Pipeline) DispatchQueue() *Queue[*DecodedInst] {
	return p.dispatchQueue
}

// LatencyTable returns the latency table.
func (p *Pipeline) LatencyTable() *latency.Table {
	return p.latencyTable
}

// UseICache reports whether an instruction cache is in the fetch path.
func (p *Pipeline) UseICache() bool {
	return p.icache != nil
}

// ICacheStats returns instruction cache statistics.
func (p *Pipeline) ICacheStats() cache.Statistics {
	if p.icache == nil {
		return cache.Statistics{}
	}
	return p.icache.Stats()
}
