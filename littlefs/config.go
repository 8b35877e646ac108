package littlefs

import (
	"reflect"

	"github.com/wippyai/fsbridge/errors"
)

// Context is the opaque per-instance value carried in Config. The bridge
// never interprets it.
type Context uintptr

// Callback slot types. Each receives the config the engine was mounted with.
type (
	ReadFunc  func(c *Config, block, off uint32, buf []byte) Error
	ProgFunc  func(c *Config, block, off uint32, buf []byte) Error
	EraseFunc func(c *Config, block uint32) Error
	SyncFunc  func(c *Config) Error
)

// Config is the block-device configuration handed to the engine.
type Config struct {
	// Context identifies the device instance to the Dispatcher.
	Context Context

	Read  ReadFunc
	Prog  ProgFunc
	Erase EraseFunc
	Sync  SyncFunc

	Geometry
}

// Wired reports whether all four slots point at the trampoline table.
func (c *Config) Wired() bool {
	return c != nil &&
		sameFunc(c.Read, cbRead) &&
		sameFunc(c.Prog, cbProg) &&
		sameFunc(c.Erase, cbErase) &&
		sameFunc(c.Sync, cbSync)
}

// Validate checks that c can be handed to an engine.
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidInput(errors.PhaseMount, "nil config")
	}
	if !c.Wired() {
		return errors.NotWired(errors.PhaseMount, "littlefs.Config")
	}
	if c.Context == 0 {
		return errors.New(errors.PhaseMount, errors.KindNotWired).
			Subject("littlefs.Config").
			Detail("config has no context").
			Build()
	}
	return c.Geometry.Validate()
}

// NewConfig returns a wired config for the device identified by ctx.
func NewConfig(g Geometry, ctx Context) *Config {
	return SetCallbacks(&Config{Context: ctx, Geometry: g})
}

// sameFunc compares code pointers; func values are otherwise incomparable.
func sameFunc(f, want any) bool {
	v := reflect.ValueOf(f)
	if !v.IsValid() || v.IsNil() {
		return false
	}
	return v.Pointer() == reflect.ValueOf(want).Pointer()
}
