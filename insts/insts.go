// Package insts provides RV32I instruction definitions and decoding.
//
// This package turns raw 32-bit RISC-V machine words into structured
// instruction records that the timing pipeline dispatches on. It supports:
//   - Register-register ALU operations (add, sub, sll, slt, xor, ...)
//   - Register-immediate ALU operations and loads
//   - Stores, conditional branches, lui/auipc, jal and jalr
//
// Decoding is total: words with an opcode outside that set decode to an
// instruction of FormatUnknown and KindUnknown instead of failing.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x002082B3) // add x5, x1, x2
//	fmt.Printf("%v rd=%d rs1=%d rs2=%d\n", inst, inst.Rd, inst.Rs1, inst.Rs2)
package insts

// NumRegs is the number of architectural integer registers.
const NumRegs = 32

// ZeroReg is the hard-wired zero register. It never carries a dependency.
const ZeroReg uint8 = 0
