package runtime

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/blockdev"
	"github.com/wippyai/fsbridge/errors"
	"github.com/wippyai/fsbridge/fatfs"
	"github.com/wippyai/fsbridge/handle"
	"github.com/wippyai/fsbridge/littlefs"
	"github.com/wippyai/fsbridge/wasmhost"
)

// Options configures a Runtime.
type Options struct {
	// Host configures the callback module. Nil dispatchers are replaced by
	// the runtime's own registries.
	Host wasmhost.Options

	// CloseOnContextDone stops guest execution when the calling context is
	// cancelled.
	CloseOnContextDone bool
}

// DefaultOptions returns default runtime configuration.
func DefaultOptions() Options {
	return Options{
		Host: wasmhost.DefaultOptions(),
	}
}

// Runtime hosts wasm engine guests against attached devices.
// Thread-safe.
type Runtime struct {
	wazero  wazero.Runtime
	host    *wasmhost.Host
	table   *handle.Table
	volumes *fatfs.Volumes
	devices *littlefs.Devices
	guests  map[string]*Guest
	mu      sync.Mutex
	closed  bool
}

// New creates a runtime and instantiates the callback module in it.
func New(ctx context.Context, opts Options) (*Runtime, error) {
	table := handle.NewTable()
	r := &Runtime{
		table:   table,
		volumes: fatfs.NewVolumes(table),
		devices: littlefs.NewDevices(table),
		guests:  make(map[string]*Guest),
	}
	if opts.Host.Disk == nil {
		opts.Host.Disk = r.volumes
	}
	if opts.Host.Flash == nil {
		opts.Host.Flash = r.devices
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(opts.CloseOnContextDone)
	r.wazero = wazero.NewRuntimeWithConfig(ctx, cfg)
	r.host = wasmhost.New(opts.Host)
	if _, err := r.host.Instantiate(ctx, r.wazero); err != nil {
		_ = r.wazero.Close(ctx)
		return nil, err
	}

	table.Subscribe(handle.ObserverFunc(func(e handle.Event) {
		Logger().Debug("runtime: handle event",
			zap.Uint32("id", uint32(e.ID)),
			zap.Stringer("tag", e.Tag))
	}))
	return r, nil
}

// Volumes returns the registry serving disk calls.
func (r *Runtime) Volumes() *fatfs.Volumes {
	return r.volumes
}

// Devices returns the registry serving block-device calls.
func (r *Runtime) Devices() *littlefs.Devices {
	return r.devices
}

// AttachVolume registers dev for FAT guests and returns its drive identity.
func (r *Runtime) AttachVolume(dev blockdev.Device) (fatfs.Driver, error) {
	return r.volumes.Attach(dev)
}

// AttachFlash registers dev for littlefs guests and returns its context.
func (r *Runtime) AttachFlash(dev blockdev.Device) (littlefs.Context, error) {
	return r.devices.Attach(dev)
}

// Load compiles and instantiates a guest engine under name. The guest must
// import its callbacks from the host module.
func (r *Runtime) Load(ctx context.Context, name string, wasm []byte) (*Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Closed(errors.PhaseHost, "runtime")
	}
	if _, ok := r.guests[name]; ok {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Subject(name).
			Detail("guest already loaded").
			Build()
	}

	compiled, err := r.wazero.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Instantiation(name, err)
	}
	mod, err := r.wazero.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Instantiation(name, err)
	}

	g := &Guest{
		name:     name,
		Module:   mod,
		Memory:   wasmhost.WrapMemory(mod.Memory()),
		compiled: compiled,
	}
	if a, err := wasmhost.NewGuestAllocator(mod); err == nil {
		g.Alloc = a
	} else {
		Logger().Debug("runtime: guest has no allocator", zap.String("guest", name), zap.Error(err))
	}
	r.guests[name] = g
	Logger().Info("runtime: guest loaded",
		zap.String("guest", name),
		zap.Bool("allocator", g.Alloc != nil))
	return g, nil
}

// Guest returns the loaded guest with the given name.
func (r *Runtime) Guest(name string) (*Guest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guests[name]
	return g, ok
}

// Unload closes the guest and forgets it.
func (r *Runtime) Unload(ctx context.Context, name string) error {
	r.mu.Lock()
	g, ok := r.guests[name]
	delete(r.guests, name)
	r.mu.Unlock()

	if !ok {
		return errors.NotFound(errors.PhaseHost, "guest", name)
	}
	return g.close(ctx)
}

// Close releases all guests, registries and the wazero runtime.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	guests := r.guests
	r.guests = nil
	r.mu.Unlock()

	var err error
	for _, g := range guests {
		err = multierr.Append(err, g.close(ctx))
	}
	err = multierr.Append(err, r.table.Close())
	err = multierr.Append(err, r.wazero.Close(ctx))
	return err
}
