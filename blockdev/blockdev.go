// Package blockdev defines the host-side storage contract that bridge
// dispatchers drive, with memory and file backed implementations.
package blockdev

import (
	"io"

	"github.com/wippyai/fsbridge/errors"
)

// Erased is the value of every byte in a freshly erased block.
const Erased byte = 0xFF

// A Device is the raw storage a mounted filesystem lives on.
type Device interface {
	// ReadAt reads the given number of bytes from the device.
	io.ReaderAt

	// WriteAt writes the given number of bytes to the device.
	io.WriterAt

	// Size returns the number of bytes in this device.
	Size() int64

	// WriteBlockSize returns the block size in which data can be written.
	// Non-aligned writes still work; it is a hint for callers.
	WriteBlockSize() int64

	// EraseBlockSize returns the smallest erasable area in bytes.
	// It must be a power of two. A typical size is 4096.
	EraseBlockSize() int64

	// EraseBlocks erases len blocks starting at block start. Block numbers
	// are in units of EraseBlockSize.
	EraseBlocks(start, len int64) error
}

// Syncer is implemented by devices that buffer writes.
type Syncer interface {
	// Sync commits any pending or cached operations.
	Sync() error
}

// BlockCount returns the number of erase blocks on dev.
func BlockCount(dev Device) int64 {
	bs := dev.EraseBlockSize()
	if bs <= 0 {
		return 0
	}
	return dev.Size() / bs
}

func checkRange(subject string, off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return errors.OutOfBounds(errors.PhaseDevice, subject, uint64(off), uint64(n), uint64(size))
	}
	return nil
}

func blankBlock(size int64) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = Erased
	}
	return b
}
