package fatfs

import (
	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/alloc"
)

// Mutator is the engine's mutating entry-point surface. fs and fp are
// opaque blocks from NewFS and NewFile.
type Mutator interface {
	Mkfs(fs *alloc.Block, opt byte, au uint32, work []byte) Result
	Mkdir(fs *alloc.Block, path string) Result
	Unlink(fs *alloc.Block, path string) Result
	Write(fp *alloc.Block, buf []byte, bw *uint32) Result
	Sync(fp *alloc.Block) Result
	Rename(fs *alloc.Block, oldPath, newPath string) Result
	Getfree(fs *alloc.Block, nclst *uint32) Result
}

// Mode selects between the read-write and read-only engine surfaces.
type Mode uint8

const (
	ModeReadWrite Mode = iota
	ModeReadOnly
)

func (m Mode) String() string {
	if m == ModeReadOnly {
		return "read-only"
	}
	return "read-write"
}

// SelectMutator returns the Mutator callers should use for mode. A
// read-write mode without an engine falls back to ReadOnly so the surface
// stays callable.
func SelectMutator(mode Mode, engine Mutator) Mutator {
	if mode == ModeReadOnly {
		return ReadOnly{}
	}
	if engine == nil {
		Logger().Warn("fatfs: read-write mode without a mutating engine, using read-only stubs",
			zap.Stringer("mode", mode))
		return ReadOnly{}
	}
	return engine
}

// ReadOnly rejects every mutating call with ResultNotSupported. It ignores
// its arguments and never writes through output parameters.
type ReadOnly struct{}

var _ Mutator = ReadOnly{}

func (ReadOnly) Mkfs(*alloc.Block, byte, uint32, []byte) Result { return ResultNotSupported }

func (ReadOnly) Mkdir(*alloc.Block, string) Result { return ResultNotSupported }

func (ReadOnly) Unlink(*alloc.Block, string) Result { return ResultNotSupported }

func (ReadOnly) Write(*alloc.Block, []byte, *uint32) Result { return ResultNotSupported }

func (ReadOnly) Sync(*alloc.Block) Result { return ResultNotSupported }

func (ReadOnly) Rename(*alloc.Block, string, string) Result { return ResultNotSupported }

func (ReadOnly) Getfree(*alloc.Block, *uint32) Result { return ResultNotSupported }
