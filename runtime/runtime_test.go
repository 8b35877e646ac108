package runtime

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fsbridge/alloc"
	"github.com/wippyai/fsbridge/blockdev"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/internal/wasmtest"
	"github.com/wippyai/fsbridge/littlefs"
)

func newRuntime(t *testing.T) (context.Context, *Runtime) {
	t.Helper()
	ctx := context.Background()
	rt, err := New(ctx, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rt.Close(ctx) })
	return ctx, rt
}

func guestCall(t *testing.T, ctx context.Context, g *Guest, name string, params ...uint64) uint64 {
	t.Helper()
	results, err := g.Module.ExportedFunction(wasmtest.CallPrefix+name).Call(ctx, params...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return results[0]
}

func TestRuntime_FatGuest(t *testing.T) {
	ctx, rt := newRuntime(t)

	dev := blockdev.NewMemoryDevice(512, 4096, 4)
	drv, err := rt.AttachVolume(dev)
	if err != nil {
		t.Fatal(err)
	}

	def := wasmtest.Guest{Kinds: map[string]int32{"go_fatfs_new_fatfs": 564}}
	g, err := rt.Load(ctx, "fatfs", wasmtest.Build(def))
	if err != nil {
		t.Fatal(err)
	}
	if g.Name() != "fatfs" || g.Alloc == nil {
		t.Fatalf("guest = %q, alloc = %v", g.Name(), g.Alloc)
	}
	if fs := g.Alloc.New(ctx, alloc.KindFATFS); fs == 0 {
		t.Error("guest allocation failed")
	}

	data := bytes.Repeat([]byte{0x42}, 512)
	if err := g.Memory.Write(wasmtest.ScratchA, data); err != nil {
		t.Fatal(err)
	}
	if res := guestCall(t, ctx, g, "go_fatfs_disk_write", uint64(drv), wasmtest.ScratchA, 3, 1); res != 0 {
		t.Fatalf("disk_write = %d", res)
	}
	raw := make([]byte, 512)
	dev.ReadAt(raw, 3*512)
	if !bytes.Equal(raw, data) {
		t.Error("write did not reach the attached volume")
	}
}

func TestRuntime_FlashGuest(t *testing.T) {
	ctx, rt := newRuntime(t)

	dev := blockdev.NewMemoryDevice(64, 256, 8)
	lctx, err := rt.AttachFlash(dev)
	if err != nil {
		t.Fatal(err)
	}
	g, err := rt.Load(ctx, "lfs", wasmtest.Build(wasmtest.Guest{}))
	if err != nil {
		t.Fatal(err)
	}
	if g.Alloc != nil {
		t.Error("guest without constructors got an allocator")
	}

	g.Memory.Write(wasmtest.ScratchA, []byte("flash!!!"))
	if res := guestCall(t, ctx, g, "go_lfs_block_device_prog", uint64(lctx), 1, 0, wasmtest.ScratchA, 8); res != 0 {
		t.Fatalf("prog = %d", api.DecodeI32(res))
	}
	raw := make([]byte, 8)
	dev.ReadAt(raw, 256)
	if string(raw) != "flash!!!" {
		t.Errorf("device = %q", raw)
	}
}

func TestRuntime_SharedIdentitySpace(t *testing.T) {
	_, rt := newRuntime(t)

	drv, _ := rt.AttachVolume(blockdev.NewMemoryDevice(512, 4096, 1))
	lctx, _ := rt.AttachFlash(blockdev.NewMemoryDevice(64, 256, 1))
	if uintptr(drv) == uintptr(lctx) {
		t.Fatal("volume and flash share an identity")
	}
	if _, ok := rt.Devices().Device(littlefs.Context(drv)); ok {
		t.Error("volume identity resolved as flash")
	}
	if res := rt.Devices().BlockSync(littlefs.Context(drv)); res != littlefs.ErrIO {
		t.Errorf("sync on volume identity = %v", res)
	}
	if rt.Volumes().Len() != 1 || rt.Devices().Len() != 1 {
		t.Errorf("volumes = %d, devices = %d", rt.Volumes().Len(), rt.Devices().Len())
	}
}

func TestRuntime_GuestLifecycle(t *testing.T) {
	ctx, rt := newRuntime(t)
	wasm := wasmtest.Build(wasmtest.Guest{})

	if _, err := rt.Load(ctx, "a", wasm); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Load(ctx, "a", wasm); err == nil {
		t.Error("duplicate guest name accepted")
	}
	if _, ok := rt.Guest("a"); !ok {
		t.Error("guest not found")
	}
	if err := rt.Unload(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := rt.Unload(ctx, "a"); err == nil {
		t.Error("second unload succeeded")
	}
	if _, err := rt.Load(ctx, "a", wasm); err != nil {
		t.Errorf("reload after unload: %v", err)
	}

	if _, err := rt.Load(ctx, "bad", []byte("not wasm")); err == nil {
		t.Error("invalid module accepted")
	}
}

func TestRuntime_Close(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	rt.Load(ctx, "g", wasmtest.Build(wasmtest.Guest{}))

	if err := rt.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rt.Close(ctx); err != nil {
		t.Errorf("second Close = %v", err)
	}

	_, err = rt.Load(ctx, "h", wasmtest.Build(wasmtest.Guest{}))
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindClosed {
		t.Errorf("Load after Close = %v", err)
	}
}
