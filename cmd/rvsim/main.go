// Package main provides the entry point for rvsim, a cycle-stepped model
// of a scalar RISC-V frontend.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/rvscalar/loader"
)

var (
	cycles      = flag.Uint64("cycles", 100, "Number of cycles to simulate")
	configPath  = flag.String("config", "", "Path to timing configuration JSON or YAML file")
	lanes       = flag.Int("lanes", 4, "Number of fetch lanes")
	issueWidth  = flag.Int("issue-width", 4, "Maximum instructions issued per cycle")
	alus        = flag.Int("alus", 2, "Number of ALU slots")
	branchUnits = flag.Int("branch-units", 1, "Number of branch unit slots")
	icache      = flag.Bool("icache", false, "Fetch through an instruction cache")
	skipBlocked = flag.Bool("skip-blocked", false, "Let independent instructions pass a stalled one")
	useEngine   = flag.Bool("engine", false, "Drive the core from an akita serial engine")
	tracePath   = flag.String("trace", "", "Write a CBOR event trace to this file")
	verbose     = flag.Bool("v", false, "Print every pipeline event")
	noColor     = flag.Bool("no-color", false, "Disable coloured output")
	logLevel    = flag.Int("log-level", 0, "Logger verbosity (1: issue and drop, 2: stalls and completions)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] [program.elf|program.hex|program.bin]\n")
		fmt.Fprintf(os.Stderr, "\nWithout a program the built-in demo is run.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	prog := loader.DemoProgram()
	programPath := "demo"
	if flag.NArg() > 0 {
		programPath = flag.Arg(0)

		var err error
		prog, err = loader.Load(programPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
	}

	log := funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, prefix, args)
	}, funcr.Options{Verbosity: *logLevel})

	opts := options{
		Cycles:      *cycles,
		ConfigPath:  *configPath,
		Lanes:       *lanes,
		IssueWidth:  *issueWidth,
		ALUs:        *alus,
		BranchUnits: *branchUnits,
		ICache:      *icache,
		SkipBlocked: *skipBlocked,
		Engine:      *useEngine,
		TracePath:   *tracePath,
		Verbose:     *verbose,
		Color:       !*noColor,
	}

	if err := run(opts, prog, programPath, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
