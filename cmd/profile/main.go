// Package main provides a profiling wrapper for rvscalar to identify
// simulator performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/rvscalar/loader"
	"github.com/sarchlab/rvscalar/timing/cache"
	"github.com/sarchlab/rvscalar/timing/itcm"
	"github.com/sarchlab/rvscalar/timing/latency"
	"github.com/sarchlab/rvscalar/timing/pipeline"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	cycles     = flag.Uint64("cycles", 1000000, "number of cycles to simulate")
	icache     = flag.Bool("icache", false, "fetch through an instruction cache")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] [program]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	prog := loader.DemoProgram()
	if flag.NArg() > 0 {
		var err error
		prog, err = loader.Load(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
	}

	timingConfig := latency.DefaultTimingConfig()
	mem, err := itcm.New(timingConfig.ITCMLatency, prog.Words)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program into memory: %v\n", err)
		os.Exit(1)
	}

	config := pipeline.DefaultConfig()
	config.ResetPC = prog.EntryOffset()

	opts := []pipeline.PipelineOption{
		pipeline.WithConfig(config),
		pipeline.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
	}
	if *icache {
		opts = append(opts, pipeline.WithICache(cache.DefaultL0IConfig()))
	}

	pipe, err := pipeline.NewPipeline(mem, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	pipe.RunCycles(*cycles)
	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	stats := pipe.Stats()
	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Cycles simulated: %d\n", stats.Cycles)
	fmt.Printf("Instructions fetched: %d\n", stats.Fetched)
	fmt.Printf("Instructions completed: %d\n", stats.Completed)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(stats.Cycles)/elapsed.Seconds())
	}
}
