// Package main provides the entry point for rvscalar.
// rvscalar is a cycle-stepped model of a scalar RISC-V instruction
// frontend built on Akita.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvscalar - scalar RISC-V frontend simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] [program.elf|program.hex|program.bin]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -cycles        Number of cycles to simulate")
	fmt.Println("  -config        Path to timing configuration JSON or YAML file")
	fmt.Println("  -skip-blocked  Let independent instructions pass a stalled one")
	fmt.Println("  -icache        Fetch through an instruction cache")
	fmt.Println("  -engine        Drive the core from an akita serial engine")
	fmt.Println("  -trace         Write a CBOR event trace")
	fmt.Println("  -v             Print every pipeline event")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
