package wasmhost

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/alloc"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/littlefs"
)

// Guest exports the allocator calls.
const (
	FuncFree         = "free"
	FuncSetCallbacks = "go_lfs_set_callbacks"
)

// allocExports names the guest constructor for each kind.
var allocExports = map[alloc.Kind]string{
	alloc.KindFATFS:     "go_fatfs_new_fatfs",
	alloc.KindFATFile:   "go_fatfs_new_fil",
	alloc.KindFATDir:    "go_fatfs_new_ff_dir",
	alloc.KindLFS:       "go_lfs_new_lfs",
	alloc.KindLFSConfig: "go_lfs_new_lfs_config",
	alloc.KindLFSFile:   "go_lfs_new_lfs_file",
	alloc.KindLFSDir:    "go_lfs_new_lfs_dir",
}

// AllocExport returns the guest export that allocates kind.
func AllocExport(kind alloc.Kind) (string, bool) {
	name, ok := allocExports[kind]
	return name, ok
}

// GuestAllocator allocates engine structures inside a guest by calling its
// exported constructors. Addresses are guest pointers; zero means failure.
type GuestAllocator struct {
	mod  api.Module
	ctor map[alloc.Kind]api.Function
	free api.Function
	wire api.Function

	live map[uintptr]alloc.Kind
	mu   sync.Mutex
}

var _ alloc.Allocator = (*GuestAllocator)(nil)

// NewGuestAllocator binds to mod's exports. mod must export free and at
// least one constructor.
func NewGuestAllocator(mod api.Module) (*GuestAllocator, error) {
	if mod == nil {
		return nil, errors.InvalidInput(errors.PhaseHost, "nil guest module")
	}
	g := &GuestAllocator{
		mod:  mod,
		ctor: make(map[alloc.Kind]api.Function),
		free: mod.ExportedFunction(FuncFree),
		wire: mod.ExportedFunction(FuncSetCallbacks),
		live: make(map[uintptr]alloc.Kind),
	}
	if g.free == nil {
		return nil, errors.NotFound(errors.PhaseHost, "export", FuncFree)
	}
	for kind, name := range allocExports {
		if fn := mod.ExportedFunction(name); fn != nil {
			g.ctor[kind] = fn
		}
	}
	if len(g.ctor) == 0 {
		return nil, errors.NotFound(errors.PhaseHost, "export", "go_*_new_*")
	}
	return g, nil
}

// Supports reports whether the guest exports a constructor for kind.
func (g *GuestAllocator) Supports(kind alloc.Kind) bool {
	_, ok := g.ctor[kind]
	return ok
}

// New calls the guest constructor for kind. It returns 0 when the guest has
// no such constructor, traps, or returns a null pointer.
func (g *GuestAllocator) New(ctx context.Context, kind alloc.Kind) uintptr {
	fn, ok := g.ctor[kind]
	if !ok {
		Logger().Debug("wasmhost: no constructor", zap.Stringer("kind", kind))
		return 0
	}
	results, err := fn.Call(ctx)
	if err != nil {
		Logger().Warn("wasmhost: constructor trapped", zap.Stringer("kind", kind), zap.Error(err))
		return 0
	}
	if len(results) == 0 {
		return 0
	}
	addr := uintptr(api.DecodeU32(results[0]))
	if addr == 0 {
		return 0
	}

	g.mu.Lock()
	g.live[addr] = kind
	g.mu.Unlock()
	return addr
}

// Free releases a block obtained from New. Freeing an address twice, or one
// New did not return, is reported without calling the guest.
func (g *GuestAllocator) Free(ctx context.Context, kind alloc.Kind, addr uintptr) error {
	g.mu.Lock()
	got, ok := g.live[addr]
	if ok && got == kind {
		delete(g.live, addr)
	}
	g.mu.Unlock()

	if !ok {
		Logger().Warn("wasmhost: free of address that is not live",
			zap.Stringer("kind", kind),
			zap.Uintptr("addr", addr))
		return errors.DoubleFree(kind.String(), addr)
	}
	if got != kind {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Subject(kind.String()).
			Value(addr).
			Detail("block at %#x holds %s", addr, got).
			Build()
	}
	if _, err := g.free.Call(ctx, uint64(addr)); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, FuncFree+" trapped")
	}
	return nil
}

// Live returns the number of blocks not yet freed.
func (g *GuestAllocator) Live() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

// WireConfig points the callback slots of the lfs_config at cfg to the
// guest's trampolines.
func (g *GuestAllocator) WireConfig(ctx context.Context, cfg uintptr) error {
	if g.wire == nil {
		return errors.NotFound(errors.PhaseWire, "export", FuncSetCallbacks)
	}
	g.mu.Lock()
	kind, ok := g.live[cfg]
	g.mu.Unlock()
	if !ok || kind != alloc.KindLFSConfig {
		return errors.New(errors.PhaseWire, errors.KindInvalidInput).
			Subject(alloc.KindLFSConfig.String()).
			Value(cfg).
			Detail("address %#x is not a live config", cfg).
			Build()
	}
	if _, err := g.wire.Call(ctx, uint64(cfg)); err != nil {
		return errors.Wrap(errors.PhaseWire, errors.KindNotWired, err, FuncSetCallbacks+" trapped")
	}
	return nil
}

// configContextOffset is the offset of lfs_config.context, its first field.
const configContextOffset = 0

// NewConfig allocates an lfs_config in the guest, stores dev as its context
// and wires its callbacks. Geometry fields are left for the guest to fill.
func (g *GuestAllocator) NewConfig(ctx context.Context, dev littlefs.Context) (uintptr, error) {
	cfg := g.New(ctx, alloc.KindLFSConfig)
	if cfg == 0 {
		return 0, errors.AllocationFailed(alloc.KindLFSConfig.String(), alloc.DefaultLayout().Size(alloc.KindLFSConfig))
	}
	mem := WrapMemory(g.mod.Memory())
	if mem == nil {
		_ = g.Free(ctx, alloc.KindLFSConfig, cfg)
		return 0, errors.NotFound(errors.PhaseHost, "export", "memory")
	}
	if err := mem.WriteU32(uint32(cfg)+configContextOffset, uint32(dev)); err != nil {
		_ = g.Free(ctx, alloc.KindLFSConfig, cfg)
		return 0, err
	}
	if err := g.WireConfig(ctx, cfg); err != nil {
		_ = g.Free(ctx, alloc.KindLFSConfig, cfg)
		return 0, err
	}
	return cfg, nil
}
