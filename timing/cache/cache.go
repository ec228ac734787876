// Package cache provides an instruction cache model in front of the ITCM
// using Akita cache components.
package cache

import (
	"encoding/binary"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rvscalar/timing/itcm"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes the ITCM access)
	MissLatency uint64
}

// DefaultL0IConfig returns the default configuration for a small fetch
// buffer style instruction cache: 512B, 2-way, 16B lines.
func DefaultL0IConfig() Config {
	return Config{
		Size:          512,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    1,
		MissLatency:   3,
	}
}

// Validate checks that the configuration describes at least one set of
// word-aligned lines.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("cache size must be > 0")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("cache associativity must be > 0")
	}
	if c.BlockSize <= 0 || c.BlockSize%itcm.WordSize != 0 {
		return fmt.Errorf("cache block size %d must be a positive multiple of %d",
			c.BlockSize, itcm.WordSize)
	}
	if c.numSets() == 0 {
		return fmt.Errorf("cache size %d holds no set of %d x %dB lines",
			c.Size, c.Associativity, c.BlockSize)
	}
	return nil
}

func (c Config) numSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the fraction of reads that hit.
func (s Statistics) HitRate() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Reads)
}

// BackingStore is the instruction memory behind the cache.
type BackingStore interface {
	// ReadBlock fetches a whole cache line.
	ReadBlock(addr uint64, size int) []byte
	// ReadWord fetches a single word without modeling latency.
	ReadWord(addr uint32) (uint32, error)
}

// Cache is a read-only instruction cache. It implements itcm.Port so the
// fetch stage can use it in place of the ITCM.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	// Statistics
	stats Statistics

	backing BackingStore
}

// New creates a new cache with the given configuration. The configuration
// must pass Validate.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.numSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read starts a timed read. The tag lookup happens now: a hit resolves
// after HitLatency cycles, a miss fills the line and resolves after
// MissLatency cycles.
func (c *Cache) Read(addr uint32) (itcm.PendingRead, error) {
	if addr%itcm.WordSize != 0 {
		return itcm.PendingRead{}, fmt.Errorf("read at 0x%x: %w", addr, itcm.ErrMisalignedAddress)
	}

	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(uint64(addr)))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU

		return itcm.StartRead(addr, c.config.HitLatency), nil
	}

	c.stats.Misses++
	c.fill(uint64(addr))

	return itcm.StartRead(addr, c.config.MissLatency), nil
}

// Resolve returns the word at addr from the cached line, or from the
// backing store if the line was evicted while the read was in flight.
func (c *Cache) Resolve(addr uint32) uint32 {
	block := c.directory.Lookup(0, c.blockAddr(uint64(addr)))
	if block != nil && block.IsValid {
		offset := uint64(addr) % uint64(c.config.BlockSize)
		data := c.dataStore[c.blockIndex(block)]
		return binary.LittleEndian.Uint32(data[offset : offset+itcm.WordSize])
	}

	word, err := c.backing.ReadWord(addr)
	if err != nil {
		panic(err)
	}

	return word
}

// fill brings the line holding addr into the cache.
func (c *Cache) fill(addr uint64) {
	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		// This shouldn't happen with proper directory setup
		return
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	copy(c.dataStore[c.blockIndex(victim)], c.backing.ReadBlock(blockAddr, c.config.BlockSize))

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	c.directory.Visit(victim)
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
