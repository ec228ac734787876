package insts

import "fmt"

// NopWord is the canonical no-op encoding, addi x0, x0, 0.
const NopWord uint32 = 0x00000013

var mnemonics = map[Op]string{
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori",
	OpORI: "ori", OpANDI: "andi", OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
}

// String returns the assembler mnemonic of an operation.
func (o Op) String() string {
	if m, ok := mnemonics[o]; ok {
		return m
	}
	return "unknown"
}

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case KindALU:
		return "alu"
	case KindBranch:
		return "branch"
	case KindLoadStore:
		return "lsu"
	default:
		return "unknown"
	}
}

// RegName returns the assembler name of an integer register.
func RegName(r uint8) string {
	return fmt.Sprintf("x%d", r)
}

// Disassemble renders an instruction in assembler syntax.
func Disassemble(inst *Instruction) string {
	if inst.Word == NopWord {
		return "nop"
	}

	if inst.Op == OpUnknown {
		return fmt.Sprintf("unknown 0x%08x", inst.Word)
	}

	m := inst.Op.String()
	rd, rs1, rs2 := RegName(inst.Rd), RegName(inst.Rs1), RegName(inst.Rs2)

	switch inst.Op {
	case OpSLLI, OpSRLI, OpSRAI:
		return fmt.Sprintf("%s %s, %s, %d", m, rd, rs1, inst.Imm&0x1F)
	case OpLB, OpLH, OpLW, OpLBU, OpLHU, OpJALR:
		return fmt.Sprintf("%s %s, %d(%s)", m, rd, inst.Imm, rs1)
	}

	switch inst.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", m, rd, rs1, rs2)
	case FormatI:
		return fmt.Sprintf("%s %s, %s, %d", m, rd, rs1, inst.Imm)
	case FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", m, rs2, inst.Imm, rs1)
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", m, rs1, rs2, inst.Imm)
	case FormatU:
		return fmt.Sprintf("%s %s, 0x%x", m, rd, uint32(inst.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%s %s, %d", m, rd, inst.Imm)
	}

	return fmt.Sprintf("unknown 0x%08x", inst.Word)
}
