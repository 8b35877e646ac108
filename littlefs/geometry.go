package littlefs

import (
	"github.com/wippyai/fsbridge/blockdev"
	"github.com/wippyai/fsbridge/errors"
)

// Geometry describes the device layout and cache tuning the engine uses.
type Geometry struct {
	ReadSize      uint32
	ProgSize      uint32
	BlockSize     uint32
	BlockCount    uint32
	CacheSize     uint32
	LookaheadSize uint32
	BlockCycles   int32
}

// Options holds the tuning knobs that do not come from the device.
type Options struct {
	CacheSize     uint32
	LookaheadSize uint32

	// BlockCycles is the number of erase cycles before wear leveling moves
	// metadata. -1 disables wear leveling.
	BlockCycles int32
}

// DefaultOptions returns tuning suitable for SPI NOR flash.
func DefaultOptions() Options {
	return Options{
		CacheSize:     512,
		LookaheadSize: 512,
		BlockCycles:   100,
	}
}

// DeviceGeometry derives a geometry from dev. Reads and programs use the
// device's write block size and blocks are erase blocks. The cache size is
// shrunk to fit the block when opts asks for more than the device allows.
func DeviceGeometry(dev blockdev.Device, opts Options) Geometry {
	page := uint32(dev.WriteBlockSize())
	block := uint32(dev.EraseBlockSize())
	return Geometry{
		ReadSize:      page,
		ProgSize:      page,
		BlockSize:     block,
		BlockCount:    uint32(blockdev.BlockCount(dev)),
		CacheSize:     fitCache(opts.CacheSize, page, block),
		LookaheadSize: opts.LookaheadSize,
		BlockCycles:   opts.BlockCycles,
	}
}

// fitCache returns the largest size not above cache that is a multiple of
// page and divides block. Layouts with no such size keep cache unchanged
// and fail Validate.
func fitCache(cache, page, block uint32) uint32 {
	if cache == 0 || page == 0 || block == 0 || block%page != 0 {
		return cache
	}
	if cache > block {
		cache = block
	}
	for c := cache - cache%page; c >= page; c -= page {
		if block%c == 0 {
			return c
		}
	}
	return cache
}

// Validate checks the relations the engine asserts at mount time.
func (g Geometry) Validate() error {
	switch {
	case g.ReadSize == 0 || g.ProgSize == 0 || g.BlockSize == 0 || g.BlockCount == 0:
		return errors.InvalidInput(errors.PhaseMount, "geometry has a zero size")
	case g.CacheSize != 0 && (g.CacheSize%g.ReadSize != 0 || g.CacheSize%g.ProgSize != 0):
		return errors.InvalidInput(errors.PhaseMount, "cache size must be a multiple of read and prog size")
	case g.CacheSize != 0 && g.BlockSize%g.CacheSize != 0:
		return errors.InvalidInput(errors.PhaseMount, "block size must be a multiple of cache size")
	case g.LookaheadSize%8 != 0:
		return errors.InvalidInput(errors.PhaseMount, "lookahead size must be a multiple of 8")
	}
	return nil
}

// Size returns the number of bytes the geometry addresses.
func (g Geometry) Size() int64 {
	return int64(g.BlockSize) * int64(g.BlockCount)
}
