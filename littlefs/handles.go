package littlefs

import (
	"encoding/binary"

	"github.com/wippyai/fsbridge/alloc"
)

// NewLFS allocates storage for one lfs_t. Returns nil on failure.
func NewLFS(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindLFS)
}

// NewFile allocates storage for one lfs_file_t. Returns nil on failure.
func NewFile(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindLFSFile)
}

// NewDir allocates storage for one lfs_dir_t. Returns nil on failure.
func NewDir(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindLFSDir)
}

// NewConfigBlock allocates storage for one lfs_config and stores ctx in its
// context field, laid out as a 32-bit engine sees it. Engines that take a
// Go *Config use NewConfig instead. Returns nil on failure.
func NewConfigBlock(a *alloc.Arena, ctx Context) *alloc.Block {
	b := a.Alloc(alloc.KindLFSConfig)
	if b == nil {
		return nil
	}
	if b.Size() < 4 {
		_ = a.Free(b)
		return nil
	}
	binary.LittleEndian.PutUint32(b.Bytes(), uint32(ctx))
	return b
}

// BlockContext returns the context stored by NewConfigBlock.
func BlockContext(b *alloc.Block) (Context, bool) {
	if !b.Valid() || b.Kind() != alloc.KindLFSConfig || b.Size() < 4 {
		return 0, false
	}
	return Context(binary.LittleEndian.Uint32(b.Bytes())), true
}
