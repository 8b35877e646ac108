package wasmhost

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/fatfs"
	"github.com/wippyai/fsbridge/littlefs"
)

// Import names of the callbacks a guest links against.
const (
	FuncDiskRead   = "go_fatfs_disk_read"
	FuncDiskWrite  = "go_fatfs_disk_write"
	FuncDiskIoctl  = "go_fatfs_disk_ioctl"
	FuncGetFatTime = "go_fatfs_get_fattime"
	FuncBlockRead  = "go_lfs_block_device_read"
	FuncBlockProg  = "go_lfs_block_device_prog"
	FuncBlockErase = "go_lfs_block_device_erase"
	FuncBlockSync  = "go_lfs_block_device_sync"
)

const (
	i32             = api.ValueTypeI32
	invalidDiskCode = uint64(fatfs.DiskInvalidParameter)

	// maxSectors keeps count*SectorSize inside the 32-bit address space.
	maxSectors = math.MaxUint32 / fatfs.SectorSize
)

// export describes one host function.
type export struct {
	name    string
	fn      api.GoModuleFunc
	params  []api.ValueType
	names   []string
	results []api.ValueType
}

// Host serves a guest engine's disk and block-device imports.
type Host struct {
	opts Options
	disk fatfs.DiskIO
}

// New creates a host with the given options.
func New(opts Options) *Host {
	if opts.ModuleName == "" {
		opts.ModuleName = DefaultOptions().ModuleName
	}
	h := &Host{opts: opts, disk: fatfs.Adapter{}}
	if opts.Disk != nil {
		h.disk = direct{opts.Disk}
	}
	return h
}

// ModuleName returns the import module name guests must use.
func (h *Host) ModuleName() string {
	return h.opts.ModuleName
}

// Instantiate registers the host module in rt. Guests instantiated in rt
// afterwards resolve their callbacks against it.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(h.opts.ModuleName)
	for _, exp := range h.exports() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(exp.fn, exp.params, exp.results).
			WithParameterNames(exp.names...).
			Export(exp.name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(h.opts.ModuleName, err)
	}
	Logger().Info("wasmhost: host module instantiated", zap.String("module", h.opts.ModuleName))
	return mod, nil
}

func (h *Host) exports() []export {
	return []export{
		{FuncDiskRead, h.diskRead, []api.ValueType{i32, i32, i32, i32}, []string{"drv", "buf", "sector", "count"}, []api.ValueType{i32}},
		{FuncDiskWrite, h.diskWrite, []api.ValueType{i32, i32, i32, i32}, []string{"drv", "buf", "sector", "count"}, []api.ValueType{i32}},
		{FuncDiskIoctl, h.diskIoctl, []api.ValueType{i32, i32, i32}, []string{"drv", "cmd", "buf"}, []api.ValueType{i32}},
		{FuncGetFatTime, h.getFatTime, nil, nil, []api.ValueType{i32}},
		{FuncBlockRead, h.blockRead, []api.ValueType{i32, i32, i32, i32, i32}, []string{"ctx", "block", "off", "buf", "size"}, []api.ValueType{i32}},
		{FuncBlockProg, h.blockProg, []api.ValueType{i32, i32, i32, i32, i32}, []string{"ctx", "block", "off", "buf", "size"}, []api.ValueType{i32}},
		{FuncBlockErase, h.blockErase, []api.ValueType{i32, i32}, []string{"ctx", "block"}, []api.ValueType{i32}},
		{FuncBlockSync, h.blockSync, []api.ValueType{i32}, []string{"ctx"}, []api.ValueType{i32}},
	}
}

// guestBuffer resolves a (pointer, length) pair in the caller's memory.
func guestBuffer(caller api.Module, ptr, length uint32) ([]byte, bool) {
	mem := WrapMemory(caller.Memory())
	if mem == nil {
		return nil, length == 0
	}
	if length == 0 {
		return nil, true
	}
	buf, err := mem.View(ptr, length)
	if err != nil {
		Logger().Debug("wasmhost: guest buffer out of bounds", zap.Error(err))
		return nil, false
	}
	return buf, true
}

func (h *Host) diskRead(_ context.Context, caller api.Module, stack []uint64) {
	drv := fatfs.Driver(api.DecodeU32(stack[0]))
	sector, count := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])
	if count > maxSectors {
		stack[0] = invalidDiskCode
		return
	}
	buf, ok := guestBuffer(caller, api.DecodeU32(stack[1]), count*fatfs.SectorSize)
	if !ok {
		stack[0] = invalidDiskCode
		return
	}
	stack[0] = uint64(h.disk.Read(drv, buf, sector, count))
}

func (h *Host) diskWrite(_ context.Context, caller api.Module, stack []uint64) {
	drv := fatfs.Driver(api.DecodeU32(stack[0]))
	sector, count := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])
	if count > maxSectors {
		stack[0] = invalidDiskCode
		return
	}
	buf, ok := guestBuffer(caller, api.DecodeU32(stack[1]), count*fatfs.SectorSize)
	if !ok {
		stack[0] = invalidDiskCode
		return
	}
	stack[0] = uint64(h.disk.Write(drv, buf, sector, count))
}

func (h *Host) diskIoctl(_ context.Context, caller api.Module, stack []uint64) {
	drv := fatfs.Driver(api.DecodeU32(stack[0]))
	cmd := fatfs.Command(api.DecodeU32(stack[1]))
	ptr := api.DecodeU32(stack[2])

	var buf []byte
	if ptr != 0 {
		var ok bool
		buf, ok = guestBuffer(caller, ptr, cmd.PayloadSize())
		if !ok {
			stack[0] = invalidDiskCode
			return
		}
	}
	stack[0] = uint64(h.disk.Ioctl(drv, cmd, buf))
}

func (h *Host) getFatTime(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(h.disk.Clock())
}

func (h *Host) flash() littlefs.Dispatcher {
	if h.opts.Flash != nil {
		return h.opts.Flash
	}
	return littlefs.CurrentDispatcher()
}

func (h *Host) blockRead(_ context.Context, caller api.Module, stack []uint64) {
	ctx := littlefs.Context(api.DecodeU32(stack[0]))
	block, off := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	buf, ok := guestBuffer(caller, api.DecodeU32(stack[3]), api.DecodeU32(stack[4]))
	if !ok {
		stack[0] = api.EncodeI32(int32(littlefs.ErrInvalid))
		return
	}
	debugf("block_device_read: ctx=%#x block=%d off=%d size=%d", ctx, block, off, len(buf))
	stack[0] = api.EncodeI32(int32(h.flash().BlockRead(ctx, block, off, buf)))
}

func (h *Host) blockProg(_ context.Context, caller api.Module, stack []uint64) {
	ctx := littlefs.Context(api.DecodeU32(stack[0]))
	block, off := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	buf, ok := guestBuffer(caller, api.DecodeU32(stack[3]), api.DecodeU32(stack[4]))
	if !ok {
		stack[0] = api.EncodeI32(int32(littlefs.ErrInvalid))
		return
	}
	debugf("block_device_prog: ctx=%#x block=%d off=%d size=%d", ctx, block, off, len(buf))
	stack[0] = api.EncodeI32(int32(h.flash().BlockProg(ctx, block, off, buf)))
}

func (h *Host) blockErase(_ context.Context, _ api.Module, stack []uint64) {
	ctx := littlefs.Context(api.DecodeU32(stack[0]))
	stack[0] = api.EncodeI32(int32(h.flash().BlockErase(ctx, api.DecodeU32(stack[1]))))
}

func (h *Host) blockSync(_ context.Context, _ api.Module, stack []uint64) {
	ctx := littlefs.Context(api.DecodeU32(stack[0]))
	stack[0] = api.EncodeI32(int32(h.flash().BlockSync(ctx)))
}

// direct adapts a Dispatcher to DiskIO without going through the
// package-level slot.
type direct struct {
	d fatfs.Dispatcher
}

func (d direct) Read(drv fatfs.Driver, buf []byte, sector, count uint32) fatfs.DiskResult {
	return d.d.DiskRead(drv, buf, sector, count)
}

func (d direct) Write(drv fatfs.Driver, buf []byte, sector, count uint32) fatfs.DiskResult {
	return d.d.DiskWrite(drv, buf, sector, count)
}

func (d direct) Ioctl(drv fatfs.Driver, cmd fatfs.Command, buf []byte) fatfs.DiskResult {
	return d.d.DiskIoctl(drv, cmd, buf)
}

func (d direct) Clock() uint32 {
	return d.d.FatTime()
}
