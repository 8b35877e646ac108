package fatfs

import "sync/atomic"

// Driver is the engine's opaque drv pointer. The bridge forwards it without
// interpretation; dispatchers key their lookup off its value.
type Driver uintptr

// DiskIO is the disk I/O contract the FAT engine is built against.
type DiskIO interface {
	// Read fills buf with count sectors starting at sector. buf must hold
	// count*SectorSize bytes.
	Read(drv Driver, buf []byte, sector, count uint32) DiskResult

	// Write stores count sectors from buf starting at sector. buf is not
	// modified.
	Write(drv Driver, buf []byte, sector, count uint32) DiskResult

	// Ioctl runs an out-of-band control command with a command-specific
	// payload buffer.
	Ioctl(drv Driver, cmd Command, buf []byte) DiskResult

	// Clock returns the current time in the packed format of PackTime.
	Clock() uint32
}

// Dispatcher is the single external dispatch point every Adapter call lands
// on.
type Dispatcher interface {
	DiskRead(drv Driver, buf []byte, sector, count uint32) DiskResult
	DiskWrite(drv Driver, buf []byte, sector, count uint32) DiskResult
	DiskIoctl(drv Driver, cmd Command, buf []byte) DiskResult
	FatTime() uint32
}

type dispatchSlot struct {
	d Dispatcher
}

var dispatcher atomic.Pointer[dispatchSlot]

func init() {
	SetDispatcher(DefaultVolumes())
}

// SetDispatcher installs d as the dispatch point for all Adapter calls.
// Install before mounting; swapping while the engine runs is racy from the
// engine's point of view even though the swap itself is atomic.
func SetDispatcher(d Dispatcher) {
	if d == nil {
		d = DefaultVolumes()
	}
	dispatcher.Store(&dispatchSlot{d: d})
}

// CurrentDispatcher returns the installed dispatch point.
func CurrentDispatcher() Dispatcher {
	return dispatcher.Load().d
}

// Adapter implements DiskIO by forwarding to the installed Dispatcher.
// It has no state; the zero value is ready to use.
type Adapter struct{}

var _ DiskIO = Adapter{}

func (Adapter) Read(drv Driver, buf []byte, sector, count uint32) DiskResult {
	debugf("disk_read: drv=%#x sector=%d count=%d", drv, sector, count)
	return CurrentDispatcher().DiskRead(drv, buf, sector, count)
}

func (Adapter) Write(drv Driver, buf []byte, sector, count uint32) DiskResult {
	debugf("disk_write: drv=%#x sector=%d count=%d", drv, sector, count)
	return CurrentDispatcher().DiskWrite(drv, buf, sector, count)
}

func (Adapter) Ioctl(drv Driver, cmd Command, buf []byte) DiskResult {
	debugf("disk_ioctl: drv=%#x cmd=%s", drv, cmd)
	return CurrentDispatcher().DiskIoctl(drv, cmd, buf)
}

func (Adapter) Clock() uint32 {
	return CurrentDispatcher().FatTime()
}
