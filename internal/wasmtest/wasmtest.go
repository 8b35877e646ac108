// Package wasmtest assembles small core wasm guests that import the bridge
// callbacks, for tests of the host side.
package wasmtest

import "bytes"

// Opcodes and encodings the guests use.
const (
	opEnd       = 0x0B
	opCall      = 0x10
	opLocalGet  = 0x20
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opI32Store  = 0x36
	opI32Const  = 0x41
	opI32Add    = 0x6A

	valI32 = 0x7F

	exportFunc   = 0x00
	exportMemory = 0x02
	exportGlobal = 0x03
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func i32Const(v int32) []byte {
	return append([]byte{opI32Const}, sleb(v)...)
}

// builder assembles a core wasm module with one exported memory page.
// Imports must be added before functions.
type builder struct {
	types     [][]byte
	imports   [][]byte
	funcTypes []uint32
	bodies    [][]byte
	globals   [][]byte
	exports   [][]byte
}

func (b *builder) typeIndex(params, results int) uint32 {
	sig := []byte{0x60}
	sig = append(sig, uleb(uint32(params))...)
	sig = append(sig, bytes.Repeat([]byte{valI32}, params)...)
	sig = append(sig, uleb(uint32(results))...)
	sig = append(sig, bytes.Repeat([]byte{valI32}, results)...)
	for i, t := range b.types {
		if bytes.Equal(t, sig) {
			return uint32(i)
		}
	}
	b.types = append(b.types, sig)
	return uint32(len(b.types) - 1)
}

func (b *builder) importFunc(module, name string, params, results int) uint32 {
	entry := append(wasmName(module), wasmName(name)...)
	entry = append(entry, exportFunc)
	entry = append(entry, uleb(b.typeIndex(params, results))...)
	b.imports = append(b.imports, entry)
	return uint32(len(b.imports) - 1)
}

func (b *builder) export(name string, kind byte, idx uint32) {
	entry := append(wasmName(name), kind)
	b.exports = append(b.exports, append(entry, uleb(idx)...))
}

// function defines a function with no locals; body gets a trailing end.
func (b *builder) function(name string, params, results int, body ...byte) uint32 {
	idx := uint32(len(b.imports) + len(b.bodies))
	b.funcTypes = append(b.funcTypes, b.typeIndex(params, results))
	code := append([]byte{0x00}, body...)
	code = append(code, opEnd)
	b.bodies = append(b.bodies, append(uleb(uint32(len(code))), code...))
	if name != "" {
		b.export(name, exportFunc, idx)
	}
	return idx
}

func (b *builder) global(name string, init int32) uint32 {
	entry := []byte{valI32, 0x01}
	entry = append(entry, i32Const(init)...)
	b.globals = append(b.globals, append(entry, opEnd))
	idx := uint32(len(b.globals) - 1)
	if name != "" {
		b.export(name, exportGlobal, idx)
	}
	return idx
}

func section(id byte, entries [][]byte) []byte {
	if len(entries) == 0 {
		return nil
	}
	content := uleb(uint32(len(entries)))
	for _, e := range entries {
		content = append(content, e...)
	}
	out := append([]byte{id}, uleb(uint32(len(content)))...)
	return append(out, content...)
}

func (b *builder) encode() []byte {
	b.export("memory", exportMemory, 0)

	funcs := make([][]byte, len(b.funcTypes))
	for i, t := range b.funcTypes {
		funcs[i] = uleb(t)
	}

	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, b.types)...)
	out = append(out, section(2, b.imports)...)
	out = append(out, section(3, funcs)...)
	out = append(out, section(5, [][]byte{{0x00, 0x01}})...)
	out = append(out, section(6, b.globals)...)
	out = append(out, section(7, b.exports)...)
	out = append(out, section(10, b.bodies)...)
	return out
}

// Memory layout of the guest. Heap allocations start at HeapBase; the
// scratch areas are free for tests.
const (
	HeapBase  = 0x8000
	ScratchA  = 0x1000
	ScratchB  = 0x2000
	MemoryEnd = 0x10000

	// go_lfs_set_callbacks stores ConfigMarker at cfg+MarkerOffset.
	ConfigMarker = 0x5EED
	MarkerOffset = 4

	// FreesGlobal counts calls to free.
	FreesGlobal = "frees"
)

// Guest selects what a guest exports.
type Guest struct {
	// Module is the import module name. Empty means "env".
	Module string

	// Kinds maps constructor export names to block sizes. Size 0 builds a
	// constructor that always returns null.
	Kinds map[string]int32

	// NoFree omits the free export.
	NoFree bool
}

// Imports lists the callbacks every guest imports, with their i32 arity.
var Imports = []struct {
	Name   string
	Params int
}{
	{"go_fatfs_disk_read", 4},
	{"go_fatfs_disk_write", 4},
	{"go_fatfs_disk_ioctl", 3},
	{"go_fatfs_get_fattime", 0},
	{"go_lfs_block_device_read", 5},
	{"go_lfs_block_device_prog", 5},
	{"go_lfs_block_device_erase", 2},
	{"go_lfs_block_device_sync", 1},
}

// CallPrefix prefixes the guest export that calls each import.
const CallPrefix = "call_"

// Build returns a guest that imports every callback and re-exports each as
// CallPrefix+name, plus a bump allocator for the requested kinds, free, and
// go_lfs_set_callbacks.
func Build(def Guest) []byte {
	if def.Module == "" {
		def.Module = "env"
	}
	b := &builder{}
	for _, imp := range Imports {
		b.importFunc(def.Module, imp.Name, imp.Params, 1)
	}

	heap := b.global("", HeapBase)
	frees := b.global(FreesGlobal, 0)

	for i, imp := range Imports {
		var body []byte
		for p := 0; p < imp.Params; p++ {
			body = append(body, opLocalGet, byte(p))
		}
		body = append(body, opCall)
		body = append(body, uleb(uint32(i))...)
		b.function(CallPrefix+imp.Name, imp.Params, 1, body...)
	}

	for name, size := range def.Kinds {
		if size == 0 {
			b.function(name, 0, 1, i32Const(0)...)
			continue
		}
		body := []byte{opGlobalGet, byte(heap), opGlobalGet, byte(heap)}
		body = append(body, i32Const(size)...)
		body = append(body, opI32Add, opGlobalSet, byte(heap))
		b.function(name, 0, 1, body...)
	}

	if !def.NoFree {
		body := []byte{opGlobalGet, byte(frees)}
		body = append(body, i32Const(1)...)
		body = append(body, opI32Add, opGlobalSet, byte(frees))
		b.function("free", 1, 0, body...)
	}

	body := []byte{opLocalGet, 0}
	body = append(body, i32Const(ConfigMarker)...)
	body = append(body, opI32Store, 0x02, MarkerOffset)
	b.function("go_lfs_set_callbacks", 1, 0, body...)

	return b.encode()
}
