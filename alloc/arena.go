package alloc

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/errors"
)

// arenaBase is the first address an arena issues. Zero stays reserved for
// "no block".
const arenaBase uintptr = 0x1000

const blockAlign = 8

// Block is one opaque, fixed-size region owned by the caller.
type Block struct {
	mem  []byte
	addr uintptr
	kind Kind
	live atomic.Bool
}

// Kind returns the kind the block was allocated for.
func (b *Block) Kind() Kind { return b.kind }

// Addr returns the block's stable identity within its arena.
func (b *Block) Addr() uintptr { return b.addr }

// Size returns the block's byte size.
func (b *Block) Size() int { return len(b.mem) }

// Bytes returns the opaque region. Its layout belongs to the engine.
func (b *Block) Bytes() []byte { return b.mem }

// Valid reports whether the block has not been freed.
func (b *Block) Valid() bool { return b != nil && b.live.Load() }

// Option configures an Arena.
type Option func(*Arena)

// WithLimit caps the number of live bytes. Allocations beyond it fail.
func WithLimit(bytes int) Option {
	return func(a *Arena) { a.limit = bytes }
}

// Arena allocates blocks by kind and tracks them until freed.
// Safe for concurrent use.
type Arena struct {
	layout Layout
	blocks map[uintptr]*Block
	next   uintptr
	used   int
	limit  int
	mu     sync.Mutex
}

// NewArena creates an arena for the given layout.
func NewArena(layout Layout, opts ...Option) *Arena {
	a := &Arena{
		layout: layout,
		blocks: make(map[uintptr]*Block),
		next:   arenaBase,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc returns a zeroed block sized for kind, or nil if the kind is unknown
// to the layout or the arena limit would be exceeded.
func (a *Arena) Alloc(kind Kind) *Block {
	size := a.layout.Size(kind)
	if size <= 0 {
		Logger().Warn("alloc: unknown kind", zap.Stringer("kind", kind))
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && a.used+size > a.limit {
		Logger().Debug("alloc: limit reached",
			zap.Stringer("kind", kind),
			zap.Int("size", size),
			zap.Int("used", a.used),
			zap.Int("limit", a.limit))
		return nil
	}

	b := &Block{
		mem:  make([]byte, size),
		addr: a.next,
		kind: kind,
	}
	b.live.Store(true)
	a.next += uintptr((size + blockAlign - 1) &^ (blockAlign - 1))
	a.blocks[b.addr] = b
	a.used += size
	return b
}

// Free releases a block. Freeing a block twice, or a block from another
// arena, is a caller contract violation and returns an error without
// touching arena state.
func (a *Arena) Free(b *Block) error {
	if b == nil {
		return errors.InvalidInput(errors.PhaseAlloc, "free of nil block")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if owned, ok := a.blocks[b.addr]; !ok || owned != b {
		Logger().Warn("alloc: free of block that is not live",
			zap.Stringer("kind", b.kind),
			zap.Uintptr("addr", b.addr))
		return errors.DoubleFree(b.kind.String(), b.addr)
	}

	delete(a.blocks, b.addr)
	a.used -= len(b.mem)
	b.live.Store(false)
	return nil
}

// Lookup returns the live block at addr.
func (a *Arena) Lookup(addr uintptr) (*Block, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.blocks[addr]
	return b, ok
}

// Live returns the number of blocks not yet freed.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// Used returns the number of live bytes.
func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Allocator returns a view of the arena that satisfies Allocator, trading
// *Block values for their addresses.
func (a *Arena) Allocator() Allocator {
	return arenaAllocator{arena: a}
}

type arenaAllocator struct {
	arena *Arena
}

func (v arenaAllocator) New(_ context.Context, kind Kind) uintptr {
	b := v.arena.Alloc(kind)
	if b == nil {
		return 0
	}
	return b.addr
}

// Free releases the block at addr. The kind must match the kind the block
// was allocated for.
func (v arenaAllocator) Free(_ context.Context, kind Kind, addr uintptr) error {
	b, ok := v.arena.Lookup(addr)
	if !ok {
		return errors.DoubleFree(kind.String(), addr)
	}
	if b.kind != kind {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Subject(kind.String()).
			Value(addr).
			Detail("block at %#x holds %s", addr, b.kind).
			Build()
	}
	return v.arena.Free(b)
}
