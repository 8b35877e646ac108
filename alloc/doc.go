// Package alloc hands out opaque, fixed-size storage for engine instance
// structures.
//
// The host side never computes the native layout of a FATFS, FIL, lfs_t or
// lfs_config. It only knows the Kind of handle it needs. A Layout maps each
// Kind to its byte size and an Arena returns zeroed, address-stable blocks of
// exactly that size:
//
//	arena := alloc.NewArena(alloc.DefaultLayout())
//	fs := arena.Alloc(alloc.KindFATFS)
//	if fs == nil {
//	    // allocation failed; nothing to free
//	}
//	defer arena.Free(fs)
//
// Ownership transfers to the caller, who frees each block exactly once.
// The engines never allocate or free these blocks themselves.
//
// Guests running under wazero allocate through wasmhost.GuestAllocator, which
// satisfies the same Allocator interface and returns guest addresses.
package alloc
