package benchmarks

import "github.com/sarchlab/rvscalar/insts"

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets one frontend characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		dependencyChain(),
		loadStoreMix(),
		branchMix(),
		aluBranchInterleave(),
	}
}

// 1. Independent ALU - every instruction writes its own register.
func independentALU() Benchmark {
	program := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		program = append(program, insts.ADDI(uint8(i+1), 0, int32(i)))
	}

	return Benchmark{
		Name:        "independent_alu",
		Description: "20 independent ADDIs - measures ALU issue throughput",
		Program:     program,
	}
}

// 2. Dependency Chain - every instruction reads the previous result.
func dependencyChain() Benchmark {
	program := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		program = append(program, insts.ADDI(5, 5, 1))
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDIs (x5 = x5 + 1) - measures ALU latency",
		Program:     program,
	}
}

// 3. Load/Store Mix - contends for the single load/store unit.
func loadStoreMix() Benchmark {
	program := make([]uint32, 0, 16)
	for i := 0; i < 8; i++ {
		program = append(program,
			insts.LW(uint8(i+1), 0, int32(4*i)),
			insts.SW(uint8(i+9), 0, int32(4*i)),
		)
	}

	return Benchmark{
		Name:        "load_store_mix",
		Description: "8 LW/SW pairs on distinct registers - measures load/store unit pressure",
		Program:     program,
	}
}

// 4. Branch Mix - contends for the single branch unit.
func branchMix() Benchmark {
	program := make([]uint32, 0, 12)
	for i := 0; i < 3; i++ {
		program = append(program,
			insts.BEQ(0, 0, 8),
			insts.BNE(1, 2, 8),
			insts.JAL(0, 4),
			insts.JALR(0, 1, 0),
		)
	}

	return Benchmark{
		Name:        "branch_mix",
		Description: "BEQ/BNE/JAL/JALR sequence - measures branch unit pressure",
		Program:     program,
	}
}

// 5. ALU/Branch Interleave - keeps two unit kinds busy at once.
func aluBranchInterleave() Benchmark {
	program := make([]uint32, 0, 16)
	for i := 0; i < 8; i++ {
		program = append(program,
			insts.ADD(uint8(i+1), 10, 11),
			insts.BEQ(10, 11, 8),
		)
	}

	return Benchmark{
		Name:        "alu_branch_interleave",
		Description: "alternating ADD and BEQ - measures overlap across unit kinds",
		Program:     program,
	}
}
