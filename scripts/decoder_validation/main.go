// Validate decoder throughput - measures decode rate and allocations per
// decoded word
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/rvscalar/insts"
)

func main() {
	decoder := insts.NewDecoder()

	words := []uint32{
		insts.ADDI(1, 2, 42),      // addi x1, x2, 42
		insts.ADD(3, 1, 2),        // add x3, x1, x2
		insts.LW(5, 1, 8),         // lw x5, 8(x1)
		insts.BEQ(1, 2, -4),       // beq x1, x2, -4
		insts.SW(2, 1, -4),        // sw x2, -4(x1)
		insts.LUI(5, 0x12345<<12), // lui x5, 0x12345
	}

	for _, w := range words {
		fmt.Printf("0x%08x  %s\n", w, decoder.Decode(w))
	}
	fmt.Println()

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(words[0])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	// Four decodes per iteration, as a 4-wide decode stage would do.
	for i := 0; i < iterations; i++ {
		decoder.Decode(words[0])
		decoder.Decode(words[1])
		decoder.Decode(words[2])
		decoder.Decode(words[3])
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * 4
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	if float64(allocations)/float64(totalDecodes) <= 1.0 {
		fmt.Printf("\nGOOD: at most one allocation per decode\n")
	} else {
		fmt.Printf("\nWARNING: more than one allocation per decode\n")
	}
}
