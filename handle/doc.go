// Package handle maps opaque context identities to host-side driver values.
//
// Engines that cannot carry closures thread a single integer through every
// storage call: the lfs_config context for the flash engine, the drv pointer
// for the FAT engine. The dispatch side resolves that integer here.
//
//	table := handle.NewTable()
//
//	// Attach a driver, get the identity to store in the engine's config
//	id, err := table.Insert(handle.TagFlash, dev)
//
//	// Resolve on every callback
//	value, ok := table.GetTagged(id, handle.TagFlash)
//
//	// Detach after unmount
//	table.Remove(id)
//
// ID 0 is reserved and never issued, so a zeroed configuration can never
// resolve to a live driver. Released IDs are reused.
//
// Tables are safe for concurrent use: callbacks that carry different
// identities may resolve in parallel while other goroutines attach or detach
// drivers. Serializing calls that share one identity is the driver's job.
package handle
