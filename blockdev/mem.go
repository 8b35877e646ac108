package blockdev

import "github.com/wippyai/fsbridge/errors"

// MemDevice is a device backed by a byte slice.
type MemDevice struct {
	memory     []byte
	blankBlock []byte
	blockCount uint32
	blockSize  uint32
	pageSize   uint32
}

var _ Device = (*MemDevice)(nil)
var _ Syncer = (*MemDevice)(nil)

// NewMemoryDevice creates a device of blockCount erased blocks.
func NewMemoryDevice(pageSize, blockSize, blockCount int) *MemDevice {
	dev := &MemDevice{
		memory:     make([]byte, blockSize*blockCount),
		blankBlock: blankBlock(int64(blockSize)),
		pageSize:   uint32(pageSize),
		blockSize:  uint32(blockSize),
		blockCount: uint32(blockCount),
	}
	for i := 0; i < blockCount; i++ {
		dev.eraseBlock(uint32(i))
	}
	return dev
}

func (bd *MemDevice) ReadAt(buf []byte, off int64) (int, error) {
	if err := checkRange("blockdev.MemDevice", off, len(buf), bd.Size()); err != nil {
		return 0, err
	}
	return copy(buf, bd.memory[off:]), nil
}

func (bd *MemDevice) WriteAt(buf []byte, off int64) (int, error) {
	if err := checkRange("blockdev.MemDevice", off, len(buf), bd.Size()); err != nil {
		return 0, err
	}
	return copy(bd.memory[off:], buf), nil
}

func (bd *MemDevice) Size() int64 {
	return int64(bd.blockSize) * int64(bd.blockCount)
}

func (bd *MemDevice) WriteBlockSize() int64 {
	return int64(bd.pageSize)
}

func (bd *MemDevice) EraseBlockSize() int64 {
	return int64(bd.blockSize)
}

func (bd *MemDevice) EraseBlocks(start, len int64) error {
	if start < 0 || len < 0 || start+len > int64(bd.blockCount) {
		return errors.OutOfBounds(errors.PhaseDevice, "blockdev.MemDevice", uint64(start), uint64(len), uint64(bd.blockCount))
	}
	for i := int64(0); i < len; i++ {
		bd.eraseBlock(uint32(start + i))
	}
	return nil
}

func (bd *MemDevice) eraseBlock(block uint32) {
	copy(bd.memory[bd.blockSize*block:], bd.blankBlock)
}

func (bd *MemDevice) Sync() error {
	return nil
}
