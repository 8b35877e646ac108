// Package runtime wires the bridge for engines compiled to WebAssembly.
//
// A Runtime owns one wazero runtime, the host module serving the disk and
// block-device callbacks, and a single handle table shared by its volume
// and flash registries, so drive and context identities never collide.
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	drv, _ := rt.AttachVolume(blockdev.NewMemoryDevice(512, 4096, 256))
//	guest, err := rt.Load(ctx, "fatfs", fatfsWasm)
//	fs := guest.Alloc.New(ctx, alloc.KindFATFS)
//
// The guest stores drv in its FATFS work area; every disk call it makes
// then reaches the attached device.
package runtime
