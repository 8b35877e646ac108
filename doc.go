// Package fsbridge connects embedded filesystem engines (FatFs and littlefs)
// to host block devices through a narrow callback boundary.
//
// The engines cannot hold host closures. Each instead carries one opaque
// value: the FAT engine's drv pointer and littlefs's config context. Every
// callback forwards that value, unchanged, to a single dispatch point that
// resolves it to a device.
//
// # Architecture Overview
//
//	fsbridge/
//	├── alloc/       Opaque, fixed-size engine structures by kind
//	├── fatfs/       Disk I/O adapter, volume dispatch, read-only stubs
//	├── littlefs/    Block-device trampolines, flash dispatch, mount checks
//	├── handle/      Tagged identity table shared by both dispatchers
//	├── blockdev/    Host device contract with memory and afero backends
//	├── wasmhost/    wazero host module for engines compiled to wasm
//	├── runtime/     One-stop wiring of wazero, host module and registries
//	└── errors/      Structured errors for wiring and registry contracts
//
// Engine result codes (fatfs.DiskResult, fatfs.Result, littlefs.Error) are
// typed integers that implement error. They cross the bridge verbatim.
//
// # Quick Start
//
// Go engine against littlefs:
//
//	dev := blockdev.NewMemoryDevice(64, 256, 2048)
//	ctx, _ := littlefs.DefaultDevices().Attach(dev)
//	cfg := littlefs.NewConfig(littlefs.DeviceGeometry(dev, littlefs.DefaultOptions()), ctx)
//	fs := littlefs.NewLFS(alloc.NewArena(alloc.DefaultLayout()))
//	err := littlefs.Mount(engine, fs, cfg)
//
// FAT engine compiled to wasm:
//
//	rt, _ := runtime.New(ctx, runtime.DefaultOptions())
//	drv, _ := rt.AttachVolume(dev)
//	guest, _ := rt.Load(ctx, "fatfs", fatfsWasm)
package fsbridge
