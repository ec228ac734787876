package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// LoadELF parses a 32-bit RISC-V ELF executable and flattens its PT_LOAD
// segments into words starting at the lowest segment address.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		Entry:  uint32(f.Entry),
		Format: FormatELF,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	if len(prog.Segments) == 0 {
		return nil, fmt.Errorf("ELF file has no loadable segments")
	}

	if err := prog.flatten(); err != nil {
		return nil, err
	}

	return prog, nil
}

// flatten lays the segments out in one zero-filled image.
func (p *Program) flatten() error {
	low, high := p.Segments[0].VirtAddr, uint32(0)
	for _, seg := range p.Segments {
		low = min(low, seg.VirtAddr)
		high = max(high, seg.VirtAddr+max(seg.MemSize, uint32(len(seg.Data))))
	}

	if low%4 != 0 {
		return fmt.Errorf("lowest segment at 0x%x is not word aligned", low)
	}

	if p.Entry < low || p.Entry >= high {
		return fmt.Errorf("entry 0x%x lies outside the loaded image [0x%x, 0x%x)", p.Entry, low, high)
	}

	image := make([]byte, high-low)
	for _, seg := range p.Segments {
		copy(image[seg.VirtAddr-low:], seg.Data)
	}

	p.Base = low
	p.Words = WordsFromBytes(image)

	return nil
}
