// Package wasmhost runs FatFs and littlefs engines compiled to WebAssembly
// against the bridge's dispatchers.
//
// A guest imports the disk and block-device callbacks by name from a host
// module and keeps the opaque driver/context values in its own memory. The
// host functions read the guest's buffers, forward through the same
// dispatch points that Go engines use, and return the codes unchanged:
//
//	rt := wazero.NewRuntime(ctx)
//	host := wasmhost.New(wasmhost.DefaultOptions())
//	if _, err := host.Instantiate(ctx, rt); err != nil {
//		return err
//	}
//	guest, err := rt.Instantiate(ctx, engineWasm)
//
// GuestAllocator calls the guest's exported allocator entry points so the
// host can create engine structures without knowing their layout.
package wasmhost
