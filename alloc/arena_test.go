package alloc

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/wippyai/fsbridge/errors"
)

func TestArena_AllocSizes(t *testing.T) {
	layout := DefaultLayout()
	arena := NewArena(layout)

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			b := arena.Alloc(kind)
			if b == nil {
				t.Fatal("Alloc returned nil")
			}
			if b.Size() != layout[kind] {
				t.Errorf("Size = %d, want %d", b.Size(), layout[kind])
			}
			if b.Kind() != kind {
				t.Errorf("Kind = %v, want %v", b.Kind(), kind)
			}
			if b.Addr() == 0 {
				t.Error("Addr must not be zero")
			}
			for i, v := range b.Bytes() {
				if v != 0 {
					t.Fatalf("byte %d = %#x, want zeroed block", i, v)
				}
			}
		})
	}
}

func TestArena_SuccessiveAllocationsDoNotAlias(t *testing.T) {
	arena := NewArena(DefaultLayout())

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			a := arena.Alloc(kind)
			b := arena.Alloc(kind)
			if a == nil || b == nil {
				t.Fatal("Alloc returned nil")
			}
			if a.Size() != b.Size() {
				t.Errorf("sizes differ: %d vs %d", a.Size(), b.Size())
			}
			if a.Addr() == b.Addr() {
				t.Error("addresses alias")
			}
			if a.Addr() < b.Addr() && a.Addr()+uintptr(a.Size()) > b.Addr() {
				t.Error("address ranges overlap")
			}

			for i := range a.Bytes() {
				a.Bytes()[i] = 0xAA
			}
			for i, v := range b.Bytes() {
				if v != 0 {
					t.Fatalf("write through first block reached second at %d", i)
				}
			}
		})
	}
}

func TestArena_UnknownKind(t *testing.T) {
	arena := NewArena(Layout{KindFATFS: 64})
	if b := arena.Alloc(KindLFS); b != nil {
		t.Error("expected nil for kind missing from layout")
	}
	if b := arena.Alloc(KindInvalid); b != nil {
		t.Error("expected nil for invalid kind")
	}
}

func TestArena_Limit(t *testing.T) {
	arena := NewArena(Layout{KindLFSDir: 40}, WithLimit(100))

	a := arena.Alloc(KindLFSDir)
	b := arena.Alloc(KindLFSDir)
	if a == nil || b == nil {
		t.Fatal("first two allocations should fit")
	}
	if c := arena.Alloc(KindLFSDir); c != nil {
		t.Fatal("third allocation should exceed the limit")
	}
	if arena.Used() != 80 {
		t.Errorf("Used = %d, want 80", arena.Used())
	}

	if err := arena.Free(a); err != nil {
		t.Fatal(err)
	}
	if c := arena.Alloc(KindLFSDir); c == nil {
		t.Fatal("allocation should succeed after a free")
	}
}

func TestArena_FreeExactlyOnce(t *testing.T) {
	arena := NewArena(DefaultLayout())
	b := arena.Alloc(KindFATFile)

	if err := arena.Free(b); err != nil {
		t.Fatalf("first Free: %v", err)
	}
	if b.Valid() {
		t.Error("block still valid after Free")
	}

	err := arena.Free(b)
	if err == nil {
		t.Fatal("second Free should fail")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindDoubleFree}) {
		t.Errorf("unexpected error %v", err)
	}
	if arena.Live() != 0 || arena.Used() != 0 {
		t.Errorf("arena state changed by double free: live=%d used=%d", arena.Live(), arena.Used())
	}

	if err := arena.Free(nil); err == nil {
		t.Error("Free(nil) should fail")
	}
}

func TestArena_FreeForeignBlock(t *testing.T) {
	a1 := NewArena(DefaultLayout())
	a2 := NewArena(DefaultLayout())
	b := a1.Alloc(KindLFS)
	other := a2.Alloc(KindLFS)

	if b.Addr() != other.Addr() {
		t.Fatalf("fresh arenas should issue the same first address: %#x vs %#x", b.Addr(), other.Addr())
	}
	if err := a2.Free(b); err == nil {
		t.Error("freeing a block from another arena should fail")
	}
	if !other.Valid() || !b.Valid() {
		t.Error("foreign free must not invalidate either block")
	}
}

func TestArena_Allocator(t *testing.T) {
	ctx := context.Background()
	arena := NewArena(DefaultLayout())
	var a Allocator = arena.Allocator()

	addr := a.New(ctx, KindLFSConfig)
	if addr == 0 {
		t.Fatal("New returned 0")
	}
	b, ok := arena.Lookup(addr)
	if !ok || b.Kind() != KindLFSConfig {
		t.Fatalf("Lookup = %v, %v", b, ok)
	}

	if err := a.Free(ctx, KindLFS, addr); err == nil {
		t.Error("Free with mismatched kind should fail")
	}
	if err := a.Free(ctx, KindLFSConfig, addr); err != nil {
		t.Fatal(err)
	}
	if err := a.Free(ctx, KindLFSConfig, addr); err == nil {
		t.Error("second Free should fail")
	}
	if a.New(ctx, KindInvalid) != 0 {
		t.Error("New of invalid kind should return 0")
	}
}

func TestArena_Concurrent(t *testing.T) {
	arena := NewArena(DefaultLayout())
	var wg sync.WaitGroup
	addrs := make(chan uintptr, 8*50)

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b := arena.Alloc(KindFATDir)
				if b == nil {
					t.Error("Alloc returned nil")
					return
				}
				addrs <- b.Addr()
			}
		}()
	}
	wg.Wait()
	close(addrs)

	seen := make(map[uintptr]bool)
	for addr := range addrs {
		if seen[addr] {
			t.Fatalf("address %#x issued twice", addr)
		}
		seen[addr] = true
	}
	if arena.Live() != 400 {
		t.Errorf("Live = %d, want 400", arena.Live())
	}
}

func TestKindString(t *testing.T) {
	if KindInvalid.String() != "invalid" {
		t.Errorf("KindInvalid.String() = %q", KindInvalid.String())
	}
	seen := make(map[string]bool)
	for _, k := range Kinds() {
		s := k.String()
		if s == "invalid" || seen[s] {
			t.Errorf("bad or duplicate name %q for kind %d", s, k)
		}
		seen[s] = true
	}
}
