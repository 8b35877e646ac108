package wasmhost

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/fsbridge/alloc"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/internal/wasmtest"
	"github.com/wippyai/fsbridge/littlefs"
)

func fullAllocatorGuest() wasmtest.Guest {
	kinds := make(map[string]int32)
	layout := alloc.DefaultLayout()
	for _, kind := range alloc.Kinds() {
		name, _ := AllocExport(kind)
		kinds[name] = int32(layout.Size(kind))
	}
	return wasmtest.Guest{Kinds: kinds}
}

func TestGuestAllocator_New(t *testing.T) {
	ctx, mod := setupGuest(t, DefaultOptions(), fullAllocatorGuest())
	g, err := NewGuestAllocator(mod)
	if err != nil {
		t.Fatal(err)
	}

	layout := alloc.DefaultLayout()
	for _, kind := range alloc.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			if !g.Supports(kind) {
				t.Fatal("constructor not bound")
			}
			a := g.New(ctx, kind)
			b := g.New(ctx, kind)
			if a == 0 || b == 0 {
				t.Fatal("allocation failed")
			}
			if b-a != uintptr(layout.Size(kind)) {
				t.Errorf("blocks overlap or are spaced wrong: %#x, %#x", a, b)
			}
		})
	}
	if g.Live() != 2*len(alloc.Kinds()) {
		t.Errorf("Live = %d", g.Live())
	}
}

func TestGuestAllocator_Failure(t *testing.T) {
	def := wasmtest.Guest{Kinds: map[string]int32{
		"go_fatfs_new_fatfs": 564,
		"go_lfs_new_lfs_dir": 0,
	}}
	ctx, mod := setupGuest(t, DefaultOptions(), def)
	g, err := NewGuestAllocator(mod)
	if err != nil {
		t.Fatal(err)
	}

	if addr := g.New(ctx, alloc.KindLFSDir); addr != 0 {
		t.Errorf("null constructor returned %#x", addr)
	}
	if addr := g.New(ctx, alloc.KindFATFile); addr != 0 {
		t.Errorf("missing constructor returned %#x", addr)
	}
	if g.Live() != 0 {
		t.Errorf("failed allocations tracked: %d", g.Live())
	}
}

func TestGuestAllocator_Free(t *testing.T) {
	ctx, mod := setupGuest(t, DefaultOptions(), fullAllocatorGuest())
	g, _ := NewGuestAllocator(mod)
	frees := mod.ExportedGlobal(wasmtest.FreesGlobal)

	addr := g.New(ctx, alloc.KindFATFile)
	if err := g.Free(ctx, alloc.KindFATDir, addr); err == nil {
		t.Error("free with wrong kind accepted")
	}
	if err := g.Free(ctx, alloc.KindFATFile, addr); err != nil {
		t.Fatal(err)
	}
	if frees.Get() != 1 {
		t.Errorf("guest free called %d times", frees.Get())
	}

	err := g.Free(ctx, alloc.KindFATFile, addr)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindDoubleFree {
		t.Errorf("double free = %v", err)
	}
	if frees.Get() != 1 {
		t.Error("double free reached the guest")
	}
}

func TestGuestAllocator_NewConfig(t *testing.T) {
	ctx, mod := setupGuest(t, DefaultOptions(), fullAllocatorGuest())
	g, _ := NewGuestAllocator(mod)

	cfg, err := g.NewConfig(ctx, littlefs.Context(42))
	if err != nil {
		t.Fatal(err)
	}
	mem := WrapMemory(mod.Memory())
	if v, _ := mem.ReadU32(uint32(cfg)); v != 42 {
		t.Errorf("context = %d, want 42", v)
	}
	if v, _ := mem.ReadU32(uint32(cfg) + wasmtest.MarkerOffset); v != wasmtest.ConfigMarker {
		t.Errorf("set_callbacks not called: %#x", v)
	}

	fs := g.New(ctx, alloc.KindLFS)
	if err := g.WireConfig(ctx, fs); err == nil {
		t.Error("wiring a non-config block accepted")
	}
}

func TestNewGuestAllocator_Rejects(t *testing.T) {
	_, mod := setupGuest(t, DefaultOptions(), wasmtest.Guest{NoFree: true, Kinds: map[string]int32{"go_lfs_new_lfs": 120}})
	if _, err := NewGuestAllocator(mod); err == nil {
		t.Error("guest without free accepted")
	}

	_, mod = setupGuest(t, DefaultOptions(), wasmtest.Guest{})
	if _, err := NewGuestAllocator(mod); err == nil {
		t.Error("guest without constructors accepted")
	}

	if _, err := NewGuestAllocator(nil); err == nil {
		t.Error("nil module accepted")
	}
}

func TestArenaAndGuestShareContract(t *testing.T) {
	ctx, mod := setupGuest(t, DefaultOptions(), fullAllocatorGuest())
	g, _ := NewGuestAllocator(mod)

	allocators := map[string]alloc.Allocator{
		"arena": alloc.NewArena(alloc.DefaultLayout()).Allocator(),
		"guest": g,
	}
	for name, a := range allocators {
		t.Run(name, func(t *testing.T) {
			addr := a.New(ctx, alloc.KindLFSFile)
			if addr == 0 {
				t.Fatal("allocation failed")
			}
			if err := a.Free(ctx, alloc.KindLFSFile, addr); err != nil {
				t.Fatal(err)
			}
			if err := a.Free(ctx, alloc.KindLFSFile, addr); err == nil {
				t.Error("double free accepted")
			}
		})
	}
}

func TestMemory_Bounds(t *testing.T) {
	_, mod := setupGuest(t, DefaultOptions(), wasmtest.Guest{})
	mem := WrapMemory(mod.Memory())

	if err := mem.WriteU16(wasmtest.ScratchA, 0xBEEF); err != nil {
		t.Fatal(err)
	}
	if b, _ := mem.Read(wasmtest.ScratchA, 2); b[0] != 0xEF || b[1] != 0xBE {
		t.Errorf("WriteU16 = %x", b)
	}
	if err := mem.WriteU32(wasmtest.MemoryEnd-2, 1); err == nil {
		t.Error("write past end accepted")
	}
	if _, err := mem.ReadU32(wasmtest.MemoryEnd); err == nil {
		t.Error("read past end accepted")
	}
	var e *errors.Error
	if err := mem.Write(wasmtest.MemoryEnd-1, []byte{1, 2}); !stderrors.As(err, &e) || e.Kind != errors.KindOutOfBounds {
		t.Errorf("Write = %v", err)
	}
	if mem.Size() != wasmtest.MemoryEnd {
		t.Errorf("Size = %d", mem.Size())
	}
	if WrapMemory(nil) != nil {
		t.Error("WrapMemory(nil) != nil")
	}
}
