package insts

// RawInstruction is an undecoded 32-bit instruction word.
type RawInstruction uint32

// Op represents an RV32I operation.
type Op uint16

// RV32I operations.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register-Register
	FormatI              // Register-Immediate (ALU, loads, jalr)
	FormatS              // Store
	FormatB              // Branch
	FormatU              // Upper-Immediate
	FormatJ              // Jump
)

// Kind selects the functional unit class an instruction executes on.
type Kind uint8

// Instruction kinds.
const (
	KindUnknown Kind = iota
	KindALU
	KindBranch
	KindLoadStore
)

// Major opcodes (bits [6:0]).
const (
	OpcodeOp     uint8 = 0b0110011
	OpcodeOpImm  uint8 = 0b0010011
	OpcodeLoad   uint8 = 0b0000011
	OpcodeStore  uint8 = 0b0100011
	OpcodeBranch uint8 = 0b1100011
	OpcodeLUI    uint8 = 0b0110111
	OpcodeAUIPC  uint8 = 0b0010111
	OpcodeJAL    uint8 = 0b1101111
	OpcodeJALR   uint8 = 0b1100111
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format
	Kind   Kind   // Functional unit class

	Word   uint32 // Original machine word
	Opcode uint8  // bits [6:0]
	Rd     uint8  // bits [11:7]
	Funct3 uint8  // bits [14:12]
	Rs1    uint8  // bits [19:15]
	Rs2    uint8  // bits [24:20]
	Funct7 uint8  // bits [31:25]

	// Imm is the sign-extended immediate. For U-format it keeps the
	// upper 20 bits in place.
	Imm int32
}

// String returns the assembly rendering of the instruction.
func (i Instruction) String() string {
	return Disassemble(&i)
}

// Dest returns the destination register and whether the instruction
// writes one. Writes to x0 are reported as no write.
func (i *Instruction) Dest() (uint8, bool) {
	switch i.Format {
	case FormatR, FormatI, FormatU, FormatJ:
		return i.Rd, i.Rd != ZeroReg
	default:
		return 0, false
	}
}

// Sources returns the registers the instruction reads, excluding x0.
func (i *Instruction) Sources() []uint8 {
	var regs []uint8

	switch i.Format {
	case FormatR, FormatS, FormatB:
		regs = append(regs, i.Rs1, i.Rs2)
	case FormatI:
		regs = append(regs, i.Rs1)
	}

	out := regs[:0]
	for _, r := range regs {
		if r != ZeroReg {
			out = append(out, r)
		}
	}

	return out
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. It never fails.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:   word,
		Opcode: uint8(word & 0x7F),
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x07),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
	}

	switch inst.Opcode {
	case OpcodeOp:
		inst.Format, inst.Kind = FormatR, KindALU
		inst.Op = d.opRegReg(inst.Funct3, inst.Funct7)
	case OpcodeOpImm:
		inst.Format, inst.Kind = FormatI, KindALU
		inst.Imm = SignExtend(word>>20, 12)
		inst.Op = d.opRegImm(inst.Funct3, inst.Funct7)
	case OpcodeLoad:
		inst.Format, inst.Kind = FormatI, KindLoadStore
		inst.Imm = SignExtend(word>>20, 12)
		inst.Op = d.opLoad(inst.Funct3)
	case OpcodeStore:
		inst.Format, inst.Kind = FormatS, KindLoadStore
		inst.Imm = storeImm(word)
		inst.Op = d.opStore(inst.Funct3)
	case OpcodeBranch:
		inst.Format, inst.Kind = FormatB, KindBranch
		inst.Imm = branchImm(word)
		inst.Op = d.opBranch(inst.Funct3)
	case OpcodeLUI:
		inst.Format, inst.Kind = FormatU, KindALU
		inst.Imm = int32(word & 0xFFFFF000)
		inst.Op = OpLUI
	case OpcodeAUIPC:
		inst.Format, inst.Kind = FormatU, KindALU
		inst.Imm = int32(word & 0xFFFFF000)
		inst.Op = OpAUIPC
	case OpcodeJAL:
		inst.Format, inst.Kind = FormatJ, KindBranch
		inst.Imm = jumpImm(word)
		inst.Op = OpJAL
	case OpcodeJALR:
		inst.Format, inst.Kind = FormatI, KindBranch
		inst.Imm = SignExtend(word>>20, 12)
		if inst.Funct3 == 0 {
			inst.Op = OpJALR
		}
	}

	return inst
}

// SignExtend sign-extends the low bits of value to 32 bits by moving the
// top significant bit to bit 31 and shifting arithmetically back.
func SignExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// storeImm reassembles imm[11:5|4:0] from bits [31:25] and [11:7].
func storeImm(word uint32) int32 {
	imm := (word>>25)<<5 | (word>>7)&0x1F
	return SignExtend(imm, 12)
}

// branchImm reassembles imm[12|10:5|4:1|11] from bits 31, [30:25],
// [11:8] and 7. Bit 0 is implicitly zero.
func branchImm(word uint32) int32 {
	imm := (word>>31&0x1)<<12 |
		(word>>7&0x1)<<11 |
		(word>>25&0x3F)<<5 |
		(word>>8&0xF)<<1
	return SignExtend(imm, 13)
}

// jumpImm reassembles imm[20|10:1|11|19:12] from bits 31, [30:21], 20 and
// [19:12]. Bit 0 is implicitly zero.
func jumpImm(word uint32) int32 {
	imm := (word>>31&0x1)<<20 |
		(word>>12&0xFF)<<12 |
		(word>>20&0x1)<<11 |
		(word>>21&0x3FF)<<1
	return SignExtend(imm, 21)
}

func (d *Decoder) opRegReg(funct3, funct7 uint8) Op {
	switch funct7 {
	case 0x00:
		return [8]Op{OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND}[funct3]
	case 0x20:
		switch funct3 {
		case 0b000:
			return OpSUB
		case 0b101:
			return OpSRA
		}
	}

	return OpUnknown
}

func (d *Decoder) opRegImm(funct3, funct7 uint8) Op {
	switch funct3 {
	case 0b000:
		return OpADDI
	case 0b010:
		return OpSLTI
	case 0b011:
		return OpSLTIU
	case 0b100:
		return OpXORI
	case 0b110:
		return OpORI
	case 0b111:
		return OpANDI
	case 0b001:
		if funct7 == 0 {
			return OpSLLI
		}
	case 0b101:
		switch funct7 {
		case 0x00:
			return OpSRLI
		case 0x20:
			return OpSRAI
		}
	}

	return OpUnknown
}

func (d *Decoder) opLoad(funct3 uint8) Op {
	switch funct3 {
	case 0b000:
		return OpLB
	case 0b001:
		return OpLH
	case 0b010:
		return OpLW
	case 0b100:
		return OpLBU
	case 0b101:
		return OpLHU
	default:
		return OpUnknown
	}
}

func (d *Decoder) opStore(funct3 uint8) Op {
	switch funct3 {
	case 0b000:
		return OpSB
	case 0b001:
		return OpSH
	case 0b010:
		return OpSW
	default:
		return OpUnknown
	}
}

func (d *Decoder) opBranch(funct3 uint8) Op {
	switch funct3 {
	case 0b000:
		return OpBEQ
	case 0b001:
		return OpBNE
	case 0b100:
		return OpBLT
	case 0b101:
		return OpBGE
	case 0b110:
		return OpBLTU
	case 0b111:
		return OpBGEU
	default:
		return OpUnknown
	}
}
