// Package loader reads RISC-V programs from ELF, hex text or raw binary
// files into a flat word image.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/rvscalar/insts"
)

// Format identifies the file format a program was loaded from.
type Format string

// Supported formats.
const (
	FormatELF    Format = "elf"
	FormatHex    Format = "hex"
	FormatBinary Format = "bin"
	FormatDemo   Format = "demo"
)

// Program is a flat instruction image.
type Program struct {
	// Base is the address of Words[0].
	Base uint32
	// Entry is the address execution starts at.
	Entry uint32
	// Words is the image, one little-endian instruction word per entry.
	Words []uint32
	// Segments holds the PT_LOAD segments of an ELF program.
	Segments []Segment
	// Format is the format the program was read from.
	Format Format
}

// EntryOffset returns the entry address relative to Base.
func (p *Program) EntryOffset() uint32 {
	return p.Entry - p.Base
}

// Load reads a program. ELF files are recognised by their magic number,
// .hex and .txt files are parsed as hex text, and anything else is taken
// as raw little-endian words.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("program %s is empty", path)
	}

	if bytes.HasPrefix(data, []byte("\x7fELF")) {
		return LoadELF(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		words, err := ParseHex(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &Program{Words: words, Format: FormatHex}, nil
	default:
		return &Program{Words: WordsFromBytes(data), Format: FormatBinary}, nil
	}
}

// DemoProgram returns the three-instruction program
// nop; addi x1, x0, 1; add x2, x1, x1.
func DemoProgram() *Program {
	return &Program{
		Words: []uint32{
			insts.NOP(),
			insts.ADDI(1, 0, 1),
			insts.ADD(2, 1, 1),
		},
		Format: FormatDemo,
	}
}
