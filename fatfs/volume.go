package fatfs

import (
	"encoding/binary"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/blockdev"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/handle"
)

// Volume is one attached disk.
type Volume struct {
	dev blockdev.Device
}

// Device returns the volume's backing device.
func (v *Volume) Device() blockdev.Device {
	return v.dev
}

// SectorCount returns the number of SectorSize sectors on the device.
func (v *Volume) SectorCount() uint32 {
	return uint32(v.dev.Size() / SectorSize)
}

// Volumes maps Driver identities to attached devices and serves the engine's
// disk calls against them. Safe for concurrent use by calls carrying
// different identities.
type Volumes struct {
	table *handle.Typed[*Volume]

	// Now supplies wall-clock time for FatTime. Defaults to time.Now.
	Now func() time.Time
}

var _ Dispatcher = (*Volumes)(nil)

var (
	defaultVolumes     *Volumes
	defaultVolumesOnce sync.Once
)

// DefaultVolumes returns the process-wide registry installed as the initial
// dispatcher.
func DefaultVolumes() *Volumes {
	defaultVolumesOnce.Do(func() {
		defaultVolumes = NewVolumes(nil)
	})
	return defaultVolumes
}

// NewVolumes creates a registry on table. A nil table gets a private one.
func NewVolumes(table *handle.Table) *Volumes {
	if table == nil {
		table = handle.NewTable()
	}
	return &Volumes{
		table: handle.NewTyped[*Volume](table, handle.TagVolume),
		Now:   time.Now,
	}
}

// Attach registers dev and returns the identity to store in the engine's
// drv field.
func (vs *Volumes) Attach(dev blockdev.Device) (Driver, error) {
	if dev == nil {
		return 0, errors.InvalidInput(errors.PhaseDispatch, "attach of nil device")
	}
	if dev.Size() < SectorSize {
		return 0, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Subject("fatfs.Volume").
			Value(dev.Size()).
			Detail("device smaller than one sector").
			Build()
	}
	id, err := vs.table.Insert(&Volume{dev: dev})
	if err != nil {
		return 0, err
	}
	Logger().Info("fatfs: volume attached",
		zap.Uint32("drv", uint32(id)),
		zap.Int64("size", dev.Size()))
	return Driver(id), nil
}

// Detach removes the volume for drv. The engine must have unmounted it.
func (vs *Volumes) Detach(drv Driver) bool {
	id, ok := toID(drv)
	if !ok {
		return false
	}
	if _, ok := vs.table.Remove(id); !ok {
		return false
	}
	Logger().Info("fatfs: volume detached", zap.Uint32("drv", uint32(id)))
	return true
}

// Volume returns the volume attached under drv.
func (vs *Volumes) Volume(drv Driver) (*Volume, bool) {
	id, ok := toID(drv)
	if !ok {
		return nil, false
	}
	return vs.table.Get(id)
}

// Len returns the number of attached volumes.
func (vs *Volumes) Len() int {
	return vs.table.Len()
}

func toID(drv Driver) (handle.ID, bool) {
	if drv == 0 || uint64(drv) > math.MaxUint32 {
		return 0, false
	}
	return handle.ID(drv), true
}

// DiskRead reads count sectors at sector into buf.
func (vs *Volumes) DiskRead(drv Driver, buf []byte, sector, count uint32) DiskResult {
	v, ok := vs.Volume(drv)
	if !ok {
		return DiskNotReady
	}
	size := int64(count) * SectorSize
	if int64(len(buf)) < size {
		return DiskInvalidParameter
	}
	if _, err := v.dev.ReadAt(buf[:size], int64(sector)*SectorSize); err != nil {
		Logger().Debug("fatfs: disk read failed",
			zap.Uint32("sector", sector),
			zap.Uint32("count", count),
			zap.Error(err))
		return DiskError
	}
	return DiskOK
}

// DiskWrite writes count sectors from buf at sector.
func (vs *Volumes) DiskWrite(drv Driver, buf []byte, sector, count uint32) DiskResult {
	v, ok := vs.Volume(drv)
	if !ok {
		return DiskNotReady
	}
	size := int64(count) * SectorSize
	if int64(len(buf)) < size {
		return DiskInvalidParameter
	}
	if _, err := v.dev.WriteAt(buf[:size], int64(sector)*SectorSize); err != nil {
		Logger().Debug("fatfs: disk write failed",
			zap.Uint32("sector", sector),
			zap.Uint32("count", count),
			zap.Error(err))
		return DiskError
	}
	return DiskOK
}

// DiskIoctl serves control commands. Payloads are little-endian.
func (vs *Volumes) DiskIoctl(drv Driver, cmd Command, buf []byte) DiskResult {
	v, ok := vs.Volume(drv)
	if !ok {
		return DiskNotReady
	}
	if uint32(len(buf)) < cmd.PayloadSize() {
		return DiskInvalidParameter
	}

	switch cmd {
	case CtrlSync:
		if syncer, ok := v.dev.(blockdev.Syncer); ok {
			if err := syncer.Sync(); err != nil {
				return DiskError
			}
		}
	case GetSectorCount:
		binary.LittleEndian.PutUint32(buf, v.SectorCount())
	case GetSectorSize:
		binary.LittleEndian.PutUint16(buf, SectorSize)
	case GetBlockSize:
		sectors := v.dev.EraseBlockSize() / SectorSize
		if sectors < 1 {
			sectors = 1
		}
		binary.LittleEndian.PutUint32(buf, uint32(sectors))
	case CtrlTrim:
		return vs.trim(v, binary.LittleEndian.Uint32(buf), binary.LittleEndian.Uint32(buf[4:]))
	case IoctlInit, IoctlStatus:
		buf[0] = 0
	default:
		Logger().Debug("fatfs: unknown ioctl", zap.String("cmd", cmd.String()))
		return DiskInvalidParameter
	}
	return DiskOK
}

// trim erases every erase block that lies entirely inside the inclusive
// sector range [first, last].
func (vs *Volumes) trim(v *Volume, first, last uint32) DiskResult {
	if last < first || last >= v.SectorCount() {
		return DiskInvalidParameter
	}
	blockSize := v.dev.EraseBlockSize()
	if blockSize < SectorSize {
		return DiskOK
	}
	start := (int64(first)*SectorSize + blockSize - 1) / blockSize
	end := (int64(last) + 1) * SectorSize / blockSize
	if end <= start {
		return DiskOK
	}
	if err := v.dev.EraseBlocks(start, end-start); err != nil {
		Logger().Debug("fatfs: trim failed",
			zap.Int64("start", start),
			zap.Int64("blocks", end-start),
			zap.Error(err))
		return DiskError
	}
	return DiskOK
}

// FatTime returns Now in the engine's packed format.
func (vs *Volumes) FatTime() uint32 {
	now := vs.Now
	if now == nil {
		now = time.Now
	}
	return PackTime(now())
}

func (v *Volume) String() string {
	return "fatfs.Volume(" + strconv.FormatInt(v.dev.Size(), 10) + " bytes)"
}
