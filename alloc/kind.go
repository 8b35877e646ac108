package alloc

import "context"

// Kind selects the engine structure a block will hold.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFATFS
	KindFATFile
	KindFATDir
	KindLFS
	KindLFSConfig
	KindLFSFile
	KindLFSDir
)

func (k Kind) String() string {
	switch k {
	case KindFATFS:
		return "fatfs.FATFS"
	case KindFATFile:
		return "fatfs.FIL"
	case KindFATDir:
		return "fatfs.FF_DIR"
	case KindLFS:
		return "littlefs.lfs_t"
	case KindLFSConfig:
		return "littlefs.lfs_config"
	case KindLFSFile:
		return "littlefs.lfs_file_t"
	case KindLFSDir:
		return "littlefs.lfs_dir_t"
	default:
		return "invalid"
	}
}

// Kinds lists every allocatable kind.
func Kinds() []Kind {
	return []Kind{KindFATFS, KindFATFile, KindFATDir, KindLFS, KindLFSConfig, KindLFSFile, KindLFSDir}
}

// Layout maps each kind to the byte size of its native structure.
type Layout map[Kind]int

// DefaultLayout returns sizes for wasm32 builds of the engines' stock
// configurations (FF_MAX_SS=512 without FF_FS_TINY, littlefs v2 without
// LFS_THREADSAFE). Guests built with other options should report their own.
func DefaultLayout() Layout {
	return Layout{
		KindFATFS:     564,
		KindFATFile:   552,
		KindFATDir:    48,
		KindLFS:       120,
		KindLFSConfig: 76,
		KindLFSFile:   84,
		KindLFSDir:    52,
	}
}

// Size returns the size for kind, or 0 if the layout does not know it.
func (l Layout) Size(kind Kind) int {
	return l[kind]
}

// Allocator is the allocation contract shared by the host arena and guest
// allocators. New returns 0 when allocation fails.
type Allocator interface {
	New(ctx context.Context, kind Kind) uintptr
	Free(ctx context.Context, kind Kind, addr uintptr) error
}
