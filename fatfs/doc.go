// Package fatfs bridges a FAT engine's disk I/O layer to host-side drivers.
//
// The engine expects four functions: disk_read, disk_write, disk_ioctl and
// get_fattime. Adapter provides them as a DiskIO value that forwards every
// call, unchanged, to the single installed Dispatcher. Adapter never
// inspects or remaps result codes; translating device failures into
// DiskResult values is the dispatcher's job.
//
// Every call carries the engine's opaque drv pointer as a Driver. Volumes,
// the default dispatcher, resolves it to an attached blockdev.Device:
//
//	drv, _ := fatfs.DefaultVolumes().Attach(dev)
//	// store drv in the engine's FATFS.drv, then mount
//
// When the engine is built without write support, SelectMutator returns
// ReadOnly, which keeps the seven mutating entry points callable but makes
// them fail with ResultNotSupported.
package fatfs
