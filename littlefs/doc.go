// Package littlefs bridges a littlefs engine to host block devices.
//
// The engine calls back through four slots in its Config. SetCallbacks
// points those slots at one global set of stateless trampolines; each
// trampoline reads only the config's Context and forwards it, with the
// call's own arguments, to the installed Dispatcher. Context, not function
// identity, selects the target device, so one trampoline table serves any
// number of mounted instances.
//
// Devices is the default Dispatcher. It maps Context values to attached
// blockdev.Device values:
//
//	dev := blockdev.NewMemoryDevice(64, 256, 2048)
//	ctx, err := littlefs.DefaultDevices().Attach(dev)
//	cfg := littlefs.NewConfig(littlefs.DeviceGeometry(dev, littlefs.DefaultOptions()), ctx)
//	err = littlefs.Mount(engine, fs, cfg)
//
// Go engines take a *Config built by NewConfig. Engines that keep lfs_config
// in arena memory get it from NewConfigBlock, which stores the context in
// the block's first field.
//
// Error codes returned by the Dispatcher reach the engine unchanged.
package littlefs
