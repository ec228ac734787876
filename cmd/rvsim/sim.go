package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/logrusorgru/aurora/v4"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvscalar/loader"
	"github.com/sarchlab/rvscalar/timing/cache"
	"github.com/sarchlab/rvscalar/timing/core"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/pipeline"
	"github.com/sarchlab/rvscalar/timing/trace"
)

// options holds the command-line settings of one run.
type options struct {
	Cycles      uint64
	ConfigPath  string
	Lanes       int
	IssueWidth  int
	ALUs        int
	BranchUnits int
	ICache      bool
	SkipBlocked bool
	Engine      bool
	TracePath   string
	Verbose     bool
	Color       bool
}

// defaultOptions mirrors the flag defaults.
func defaultOptions() options {
	return options{
		Cycles:      100,
		Lanes:       4,
		IssueWidth:  4,
		ALUs:        2,
		BranchUnits: 1,
	}
}

// run simulates prog and prints a summary to out.
func run(opts options, prog *loader.Program, programPath string, out io.Writer, log logr.Logger) error {
	timingConfig := latency.DefaultTimingConfig()
	if opts.ConfigPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("loading timing config: %w", err)
		}
		if err := timingConfig.Validate(); err != nil {
			return fmt.Errorf("invalid timing config %s: %w", opts.ConfigPath, err)
		}
	}

	mem, err := itcm.New(timingConfig.ITCMLatency, prog.Words)
	if err != nil {
		return fmt.Errorf("loading program into memory: %w", err)
	}

	config := pipeline.DefaultConfig()
	config.Lanes = opts.Lanes
	config.IssueWidth = opts.IssueWidth
	config.NumALUs = opts.ALUs
	config.NumBranchUnits = opts.BranchUnits
	config.ResetPC = prog.EntryOffset()
	if opts.SkipBlocked {
		config.IssuePolicy = pipeline.IssueSkipBlocked
	}

	au := aurora.New(aurora.WithColors(opts.Color))

	var tracers trace.Multi
	if opts.Verbose {
		tracers = append(tracers, newConsoleTracer(out, au))
	}

	var stream *trace.StreamWriter
	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer func() { _ = f.Close() }()

		stream = trace.NewStreamWriter(f)
		tracers = append(tracers, stream)
	}

	pipeOpts := []pipeline.PipelineOption{
		pipeline.WithConfig(config),
		pipeline.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		pipeline.WithLogger(log.WithName("pipeline")),
		pipeline.WithTracer(tracers),
	}
	if opts.ICache {
		pipeOpts = append(pipeOpts, pipeline.WithICache(cache.DefaultL0IConfig()))
	}

	pipe, err := pipeline.NewPipeline(mem, pipeOpts...)
	if err != nil {
		return err
	}

	if opts.Engine {
		engine := sim.NewSerialEngine()
		c := core.NewCore("Core", engine, 1*sim.GHz, pipe)
		c.SetCycleLimit(opts.Cycles)
		if err := c.Run(); err != nil {
			return fmt.Errorf("running engine: %w", err)
		}
	} else {
		pipe.RunCycles(opts.Cycles)
	}

	if stream != nil {
		if err := stream.Err(); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	printSummary(out, au, programPath, prog, pipe)

	return nil
}

func printSummary(out io.Writer, au *aurora.Aurora, programPath string, prog *loader.Program, pipe *pipeline.Pipeline) {
	stats := pipe.Stats()
	config := pipe.Config()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s %s (%s, %d words)\n",
		au.Bold("Program:"), programPath, prog.Format, len(prog.Words))
	_, _ = fmt.Fprintf(out, "%s %d lanes, issue width %d, %s, %d ALU, %d branch\n",
		au.Bold("Config: "), config.Lanes, config.IssueWidth, config.IssuePolicy,
		config.NumALUs, config.NumBranchUnits)
	_, _ = fmt.Fprintf(out, "Cycles:     %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(out, "Fetched:    %d\n", stats.Fetched)
	_, _ = fmt.Fprintf(out, "Decoded:    %d\n", stats.Decoded)
	_, _ = fmt.Fprintf(out, "Issued:     %d\n", stats.Issued)
	_, _ = fmt.Fprintf(out, "  Loads:    %d\n", stats.IssuedLoads)
	_, _ = fmt.Fprintf(out, "  Stores:   %d\n", stats.IssuedStores)
	_, _ = fmt.Fprintf(out, "  Branches: %d\n", stats.IssuedBranches)
	_, _ = fmt.Fprintf(out, "Completed:  %d\n", stats.Completed)
	_, _ = fmt.Fprintf(out, "Dropped:    %d\n", stats.Dropped)
	_, _ = fmt.Fprintf(out, "IPC:        %.3f\n", stats.IPC())
	_, _ = fmt.Fprintf(out, "CPI:        %.3f\n", stats.CPI())
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, au.Bold("Stalls:"))
	_, _ = fmt.Fprintf(out, "  Data hazard:   %d\n", stats.DataHazardStalls)
	_, _ = fmt.Fprintf(out, "  Structural:    %d\n", stats.StructuralStalls)
	_, _ = fmt.Fprintf(out, "  Fetch buffer:  %d\n", stats.FetchStalls)
	_, _ = fmt.Fprintf(out, "  Decode hold:   %d\n", stats.DecodeStalls)
	_, _ = fmt.Fprintf(out, "  Memory wait:   %d\n", stats.MemoryWaitCycles)

	if pipe.UseICache() {
		ic := pipe.ICacheStats()
		_, _ = fmt.Fprintln(out, au.Bold("I-Cache:"))
		_, _ = fmt.Fprintf(out, "  Hits:     %d\n", ic.Hits)
		_, _ = fmt.Fprintf(out, "  Misses:   %d\n", ic.Misses)
		_, _ = fmt.Fprintf(out, "  Hit rate: %.1f%%\n", 100*ic.HitRate())
	}
}
