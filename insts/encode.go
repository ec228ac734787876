package insts

// EncodeR assembles a Register-Register word.
func EncodeR(opcode, rd, funct3, rs1, rs2, funct7 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeI assembles a Register-Immediate word. imm is truncated to 12 bits.
func EncodeI(opcode, rd, funct3, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeS assembles a Store word. imm is truncated to 12 bits.
func EncodeS(opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeB assembles a Branch word. imm is a byte offset; bit 0 is dropped
// and the value is truncated to 13 bits.
func EncodeB(opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFE
	return (u>>12&0x1)<<31 |
		(u>>5&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u>>1&0xF)<<8 |
		(u>>11&0x1)<<7 |
		uint32(opcode&0x7F)
}

// EncodeU assembles an Upper-Immediate word from the upper 20 bits of imm.
func EncodeU(opcode, rd uint8, imm int32) uint32 {
	return uint32(imm)&0xFFFFF000 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeJ assembles a Jump word. imm is a byte offset; bit 0 is dropped
// and the value is truncated to 21 bits.
func EncodeJ(opcode, rd uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFFFE
	return (u>>20&0x1)<<31 |
		(u>>1&0x3FF)<<21 |
		(u>>11&0x1)<<20 |
		(u>>12&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// NOP returns addi x0, x0, 0.
func NOP() uint32 { return NopWord }

// ADD returns add rd, rs1, rs2.
func ADD(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, 0b000, rs1, rs2, 0x00) }

// SUB returns sub rd, rs1, rs2.
func SUB(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, 0b000, rs1, rs2, 0x20) }

// AND returns and rd, rs1, rs2.
func AND(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, 0b111, rs1, rs2, 0x00) }

// OR returns or rd, rs1, rs2.
func OR(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, 0b110, rs1, rs2, 0x00) }

// XOR returns xor rd, rs1, rs2.
func XOR(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, 0b100, rs1, rs2, 0x00) }

// ADDI returns addi rd, rs1, imm.
func ADDI(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, 0b000, rs1, imm) }

// LW returns lw rd, imm(rs1).
func LW(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeLoad, rd, 0b010, rs1, imm) }

// SW returns sw rs2, imm(rs1).
func SW(rs2, rs1 uint8, imm int32) uint32 { return EncodeS(OpcodeStore, 0b010, rs1, rs2, imm) }

// BEQ returns beq rs1, rs2, imm.
func BEQ(rs1, rs2 uint8, imm int32) uint32 { return EncodeB(OpcodeBranch, 0b000, rs1, rs2, imm) }

// BNE returns bne rs1, rs2, imm.
func BNE(rs1, rs2 uint8, imm int32) uint32 { return EncodeB(OpcodeBranch, 0b001, rs1, rs2, imm) }

// LUI returns lui rd, imm>>12.
func LUI(rd uint8, imm int32) uint32 { return EncodeU(OpcodeLUI, rd, imm) }

// JAL returns jal rd, imm.
func JAL(rd uint8, imm int32) uint32 { return EncodeJ(OpcodeJAL, rd, imm) }

// JALR returns jalr rd, imm(rs1).
func JALR(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeJALR, rd, 0b000, rs1, imm) }
