package littlefs

import (
	"math"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/blockdev"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/handle"
)

// Device is one attached flash device.
type Device struct {
	dev       blockdev.Device
	blockSize uint32
	blocks    uint32
}

// Device returns the backing device.
func (d *Device) Device() blockdev.Device {
	return d.dev
}

// BlockSize returns the erase block size used for block addressing.
func (d *Device) BlockSize() uint32 {
	return d.blockSize
}

// BlockCount returns the number of erase blocks.
func (d *Device) BlockCount() uint32 {
	return d.blocks
}

func (d *Device) String() string {
	return "littlefs.Device(" + strconv.FormatUint(uint64(d.blocks), 10) + " x " +
		strconv.FormatUint(uint64(d.blockSize), 10) + ")"
}

// span returns the device offset of [off, off+n) within block, or false
// when the range leaves the block or the device.
func (d *Device) span(block, off uint32, n int) (int64, bool) {
	if block >= d.blocks || uint64(off)+uint64(n) > uint64(d.blockSize) {
		return 0, false
	}
	return int64(block)*int64(d.blockSize) + int64(off), true
}

// Devices maps Context values to attached devices and serves trampoline
// calls against them.
type Devices struct {
	table *handle.Typed[*Device]
}

var _ Dispatcher = (*Devices)(nil)

var (
	defaultDevices     *Devices
	defaultDevicesOnce sync.Once
)

// DefaultDevices returns the process-wide registry installed as the initial
// dispatcher.
func DefaultDevices() *Devices {
	defaultDevicesOnce.Do(func() {
		defaultDevices = NewDevices(nil)
	})
	return defaultDevices
}

// NewDevices creates a registry on table. A nil table gets a private one.
func NewDevices(table *handle.Table) *Devices {
	if table == nil {
		table = handle.NewTable()
	}
	return &Devices{table: handle.NewTyped[*Device](table, handle.TagFlash)}
}

// Attach registers dev and returns the context to store in its Config.
func (ds *Devices) Attach(dev blockdev.Device) (Context, error) {
	if dev == nil {
		return 0, errors.InvalidInput(errors.PhaseDispatch, "attach of nil device")
	}
	bs := dev.EraseBlockSize()
	if bs <= 0 || bs > math.MaxUint32 {
		return 0, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Subject("littlefs.Device").
			Value(bs).
			Detail("unusable erase block size").
			Build()
	}
	d := &Device{
		dev:       dev,
		blockSize: uint32(bs),
		blocks:    uint32(blockdev.BlockCount(dev)),
	}
	id, err := ds.table.Insert(d)
	if err != nil {
		return 0, err
	}
	Logger().Info("littlefs: device attached",
		zap.Uint32("context", uint32(id)),
		zap.Stringer("device", d))
	return Context(id), nil
}

// Detach removes the device for ctx. The engine must have unmounted it.
func (ds *Devices) Detach(ctx Context) bool {
	id, ok := toID(ctx)
	if !ok {
		return false
	}
	if _, ok := ds.table.Remove(id); !ok {
		return false
	}
	Logger().Info("littlefs: device detached", zap.Uint32("context", uint32(id)))
	return true
}

// Device returns the device attached under ctx.
func (ds *Devices) Device(ctx Context) (*Device, bool) {
	id, ok := toID(ctx)
	if !ok {
		return nil, false
	}
	return ds.table.Get(id)
}

// Len returns the number of attached devices.
func (ds *Devices) Len() int {
	return ds.table.Len()
}

func toID(ctx Context) (handle.ID, bool) {
	if ctx == 0 || uint64(ctx) > math.MaxUint32 {
		return 0, false
	}
	return handle.ID(ctx), true
}

func (ds *Devices) BlockRead(ctx Context, block, off uint32, buf []byte) Error {
	d, ok := ds.Device(ctx)
	if !ok {
		Logger().Debug("littlefs: read on unknown context", zap.Uintptr("context", uintptr(ctx)))
		return ErrIO
	}
	addr, ok := d.span(block, off, len(buf))
	if !ok {
		return ErrInvalid
	}
	_, err := d.dev.ReadAt(buf, addr)
	return logged("read", block, err)
}

func (ds *Devices) BlockProg(ctx Context, block, off uint32, buf []byte) Error {
	d, ok := ds.Device(ctx)
	if !ok {
		Logger().Debug("littlefs: prog on unknown context", zap.Uintptr("context", uintptr(ctx)))
		return ErrIO
	}
	addr, ok := d.span(block, off, len(buf))
	if !ok {
		return ErrInvalid
	}
	_, err := d.dev.WriteAt(buf, addr)
	return logged("prog", block, err)
}

func (ds *Devices) BlockErase(ctx Context, block uint32) Error {
	d, ok := ds.Device(ctx)
	if !ok {
		return ErrIO
	}
	if block >= d.blocks {
		return ErrInvalid
	}
	return logged("erase", block, d.dev.EraseBlocks(int64(block), 1))
}

func (ds *Devices) BlockSync(ctx Context) Error {
	d, ok := ds.Device(ctx)
	if !ok {
		return ErrIO
	}
	if syncer, ok := d.dev.(blockdev.Syncer); ok {
		return logged("sync", 0, syncer.Sync())
	}
	return ErrOK
}

func logged(op string, block uint32, err error) Error {
	if err != nil {
		Logger().Debug("littlefs: device error",
			zap.String("op", op),
			zap.Uint32("block", block),
			zap.Error(err))
	}
	return errval(err)
}
