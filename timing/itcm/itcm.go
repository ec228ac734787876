// Package itcm models the instruction tightly-coupled memory: a small,
// directly addressed word store with a fixed access latency.
//
// Reads are split in two. Read starts an access and returns a PendingRead
// without touching the store; the fetch stage then advances the pending
// read once per cycle until it resolves.
package itcm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// DefaultCapacity is the number of 32-bit words in the instruction memory.
const DefaultCapacity = 2048

// MaxCapacity is the largest memory a 32-bit byte address can cover.
const MaxCapacity = 1 << 30

// WordSize is the size of an instruction word in bytes.
const WordSize = 4

// ErrMisalignedAddress is returned for byte addresses that are not a
// multiple of WordSize.
var ErrMisalignedAddress = errors.New("address is not word aligned")

// ErrProgramTooLarge is returned when a program does not fit in memory.
var ErrProgramTooLarge = errors.New("program does not fit in memory")

// Port is the fetch-side view of an instruction memory.
type Port interface {
	// Read starts an access to addr and returns the pending read.
	Read(addr uint32) (PendingRead, error)
	// Resolve returns the word at addr once a read has completed.
	Resolve(addr uint32) uint32
}

// Stats holds access statistics.
type Stats struct {
	// ReadsStarted is the number of reads started through Read.
	ReadsStarted uint64
	// ReadsResolved is the number of words returned through Resolve.
	ReadsResolved uint64
}

// Option configures an ITCM.
type Option func(*ITCM)

// WithCapacity sets the number of words in the memory, between 1 and
// MaxCapacity.
func WithCapacity(words int) Option {
	return func(m *ITCM) {
		m.words = words
	}
}

// ITCM is a fixed-latency instruction memory backed by an akita storage.
type ITCM struct {
	storage  *mem.Storage
	capacity uint32
	words    int
	latency  uint64
	stats    Stats
}

// New creates an ITCM with the given access latency in cycles and loads
// program starting at word 0.
func New(latency uint64, program []uint32, opts ...Option) (*ITCM, error) {
	m := &ITCM{
		words:   DefaultCapacity,
		latency: latency,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.words <= 0 || m.words > MaxCapacity {
		return nil, fmt.Errorf("itcm capacity %d words is outside [1, %d]", m.words, MaxCapacity)
	}
	m.capacity = uint32(m.words)

	m.storage = mem.NewStorage(uint64(m.capacity) * WordSize)

	if err := m.LoadProgram(0, program); err != nil {
		return nil, err
	}

	return m, nil
}

// Capacity returns the number of words in the memory.
func (m *ITCM) Capacity() int {
	return int(m.capacity)
}

// Latency returns the access latency in cycles.
func (m *ITCM) Latency() uint64 {
	return m.latency
}

// Stats returns access statistics.
func (m *ITCM) Stats() Stats {
	return m.stats
}

// LoadProgram writes words starting at byte address base.
func (m *ITCM) LoadProgram(base uint32, words []uint32) error {
	if base%WordSize != 0 {
		return fmt.Errorf("load at 0x%x: %w", base, ErrMisalignedAddress)
	}

	if uint64(base/WordSize)+uint64(len(words)) > uint64(m.capacity) {
		return fmt.Errorf("%d words at 0x%x: %w", len(words), base, ErrProgramTooLarge)
	}

	for i, w := range words {
		if err := m.WriteWord(base+uint32(i)*WordSize, w); err != nil {
			return err
		}
	}

	return nil
}

// Read starts a timed read of the word at addr. The backing store is not
// accessed until the returned PendingRead resolves.
func (m *ITCM) Read(addr uint32) (PendingRead, error) {
	if addr%WordSize != 0 {
		return PendingRead{}, fmt.Errorf("read at 0x%x: %w", addr, ErrMisalignedAddress)
	}

	m.stats.ReadsStarted++

	return StartRead(addr, m.latency), nil
}

// Resolve returns the word at addr. Out-of-range addresses wrap around
// the capacity.
func (m *ITCM) Resolve(addr uint32) uint32 {
	m.stats.ReadsResolved++

	word, err := m.ReadWord(addr)
	if err != nil {
		panic(err)
	}

	return word
}

// ReadWord returns the word at addr without modeling latency.
func (m *ITCM) ReadWord(addr uint32) (uint32, error) {
	if addr%WordSize != 0 {
		return 0, fmt.Errorf("read at 0x%x: %w", addr, ErrMisalignedAddress)
	}

	data, err := m.storage.Read(m.offset(addr), WordSize)
	if err != nil {
		return 0, fmt.Errorf("read at 0x%x: %w", addr, err)
	}

	return binary.LittleEndian.Uint32(data), nil
}

// WriteWord stores word at addr without modeling latency.
func (m *ITCM) WriteWord(addr uint32, word uint32) error {
	if addr%WordSize != 0 {
		return fmt.Errorf("write at 0x%x: %w", addr, ErrMisalignedAddress)
	}

	data := make([]byte, WordSize)
	binary.LittleEndian.PutUint32(data, word)

	if err := m.storage.Write(m.offset(addr), data); err != nil {
		return fmt.Errorf("write at 0x%x: %w", addr, err)
	}

	return nil
}

// ReadBlock returns size bytes starting at addr, wrapping word by word.
// It serves cache fills.
func (m *ITCM) ReadBlock(addr uint64, size int) []byte {
	data := make([]byte, 0, size)
	for off := 0; off < size; off += WordSize {
		word, err := m.ReadWord(uint32(addr) + uint32(off))
		if err != nil {
			panic(err)
		}
		data = binary.LittleEndian.AppendUint32(data, word)
	}

	return data[:size]
}

// offset maps a byte address onto the backing storage:
// index = (addr / 4) mod capacity.
func (m *ITCM) offset(addr uint32) uint64 {
	index := (addr / WordSize) % m.capacity
	return uint64(index) * WordSize
}
