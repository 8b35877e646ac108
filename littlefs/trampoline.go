package littlefs

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Dispatcher receives every trampoline call. Implementations resolve ctx to
// a device; the returned code goes back to the engine unchanged.
type Dispatcher interface {
	BlockRead(ctx Context, block, off uint32, buf []byte) Error
	BlockProg(ctx Context, block, off uint32, buf []byte) Error
	BlockErase(ctx Context, block uint32) Error
	BlockSync(ctx Context) Error
}

type dispatchSlot struct {
	d Dispatcher
}

var dispatcher atomic.Pointer[dispatchSlot]

func init() {
	SetDispatcher(DefaultDevices())
}

// SetDispatcher installs d as the target of all trampolines. nil restores
// DefaultDevices. Install before mounting.
func SetDispatcher(d Dispatcher) {
	if d == nil {
		d = DefaultDevices()
	}
	dispatcher.Store(&dispatchSlot{d: d})
}

// CurrentDispatcher returns the installed dispatch point.
func CurrentDispatcher() Dispatcher {
	return dispatcher.Load().d
}

// SetCallbacks points the four slots of cfg at the trampoline table and
// returns cfg. Call it once per config, before mounting. A nil cfg is
// returned as is.
func SetCallbacks(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	if cfg.Wired() {
		Logger().Debug("littlefs: config already wired", zap.Uintptr("context", uintptr(cfg.Context)))
	}
	cfg.Read = cbRead
	cfg.Prog = cbProg
	cfg.Erase = cbErase
	cfg.Sync = cbSync
	return cfg
}

// The trampolines read nothing from c except Context.

func cbRead(c *Config, block, off uint32, buf []byte) Error {
	debugf("block_device_read: ctx=%#x block=%d off=%d size=%d", c.Context, block, off, len(buf))
	return CurrentDispatcher().BlockRead(c.Context, block, off, buf)
}

func cbProg(c *Config, block, off uint32, buf []byte) Error {
	debugf("block_device_prog: ctx=%#x block=%d off=%d size=%d", c.Context, block, off, len(buf))
	return CurrentDispatcher().BlockProg(c.Context, block, off, buf)
}

func cbErase(c *Config, block uint32) Error {
	debugf("block_device_erase: ctx=%#x block=%d", c.Context, block)
	return CurrentDispatcher().BlockErase(c.Context, block)
}

func cbSync(c *Config) Error {
	debugf("block_device_sync: ctx=%#x", c.Context)
	return CurrentDispatcher().BlockSync(c.Context)
}
