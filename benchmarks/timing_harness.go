// Package benchmarks provides timing microbenchmarks for the scalar
// frontend and a harness that reports their statistics.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/rvscalar/timing/cache"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/pipeline"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the program length in words
	Instructions int `json:"instructions"`

	// Finished is false when the cycle cap was hit first
	Finished bool `json:"finished"`

	// SimulatedCycles is the cycle in which the last program instruction
	// completed
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsCompleted is the number of instructions that left a unit
	InstructionsCompleted uint64 `json:"instructions_completed"`

	// CPI is cycles per completed instruction
	CPI float64 `json:"cpi"`

	// IPC is issued instructions per cycle
	IPC float64 `json:"ipc"`

	DataHazardStalls uint64 `json:"data_hazard_stalls"`
	StructuralStalls uint64 `json:"structural_stalls"`
	FetchStalls      uint64 `json:"fetch_stalls"`
	DecodeStalls     uint64 `json:"decode_stalls"`
	MemoryWaitCycles uint64 `json:"memory_wait_cycles"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the RV32I machine code, loaded at address 0
	Program []uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Pipeline is the structural configuration of every run.
	Pipeline pipeline.Config

	// Timing sets unit and memory latencies.
	Timing *latency.TimingConfig

	// EnableICache places an instruction cache in the fetch path.
	EnableICache bool

	// MaxCycles bounds each run.
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Pipeline:  pipeline.DefaultConfig(),
		Timing:    latency.DefaultTimingConfig(),
		MaxCycles: 10000,
		Output:    os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// completionCounter counts completions of the first limit instructions.
type completionCounter struct {
	limit uint64
	done  uint64
}

func (c *completionCounter) Record(e trace.Event) {
	if e.Kind == trace.KindComplete && e.Seq < c.limit {
		c.done++
	}
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	mem, err := itcm.New(h.config.Timing.ITCMLatency, bench.Program)
	if err != nil {
		return BenchmarkResult{}, err
	}

	counter := &completionCounter{limit: uint64(len(bench.Program))}
	opts := []pipeline.PipelineOption{
		pipeline.WithConfig(h.config.Pipeline),
		pipeline.WithLatencyTable(latency.NewTableWithConfig(h.config.Timing)),
		pipeline.WithTracer(counter),
	}
	if h.config.EnableICache {
		opts = append(opts, pipeline.WithICache(cache.DefaultL0IConfig()))
	}

	pipe, err := pipeline.NewPipeline(mem, opts...)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	finished := pipe.RunUntil(func(*pipeline.Pipeline) bool {
		return counter.done >= counter.limit
	}, h.config.MaxCycles)
	wallTime := time.Since(start)

	stats := pipe.Stats()

	result := BenchmarkResult{
		Name:                  bench.Name,
		Description:           bench.Description,
		Instructions:          len(bench.Program),
		Finished:              finished,
		SimulatedCycles:       stats.Cycles,
		InstructionsCompleted: stats.Completed,
		CPI:                   stats.CPI(),
		IPC:                   stats.IPC(),
		DataHazardStalls:      stats.DataHazardStalls,
		StructuralStalls:      stats.StructuralStalls,
		FetchStalls:           stats.FetchStalls,
		DecodeStalls:          stats.DecodeStalls,
		MemoryWaitCycles:      stats.MemoryWaitCycles,
		WallTime:              wallTime,
	}

	if pipe.UseICache() {
		icStats := pipe.ICacheStats()
		result.ICacheHits = icStats.Hits
		result.ICacheMisses = icStats.Misses
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "%s: %d cycles, CPI %.3f\n",
			result.Name, result.SimulatedCycles, result.CPI)
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== rvscalar Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if !r.Finished {
			_, _ = fmt.Fprintln(h.config.Output, "  (cycle cap reached)")
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:       %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Completed: %d\n", r.InstructionsCompleted)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                    %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  IPC:                    %.3f\n", r.IPC)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazard Stalls:     %d\n", r.DataHazardStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Structural Stalls:      %d\n", r.StructuralStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Fetch Stalls:           %d\n", r.FetchStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Decode Stalls:          %d\n", r.DecodeStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Wait Cycles:     %d\n", r.MemoryWaitCycles)

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,completed,cpi,ipc,hazard_stalls,structural_stalls,fetch_stalls,decode_stalls,icache_hits,icache_misses")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%.3f,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsCompleted,
			r.CPI,
			r.IPC,
			r.DataHazardStalls,
			r.StructuralStalls,
			r.FetchStalls,
			r.DecodeStalls,
			r.ICacheHits,
			r.ICacheMisses,
		)
	}
}

// WriteJSON outputs benchmark results as an indented JSON array.
func (h *Harness) WriteJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
