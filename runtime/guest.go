package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/wippyai/fsbridge/wasmhost"
)

// Guest is a loaded engine module.
type Guest struct {
	Module api.Module
	Memory *wasmhost.Memory

	// Alloc is nil when the guest exports no constructors.
	Alloc *wasmhost.GuestAllocator

	compiled wazero.CompiledModule
	name     string
}

// Name returns the name the guest was loaded under.
func (g *Guest) Name() string {
	return g.name
}

func (g *Guest) close(ctx context.Context) error {
	return multierr.Combine(g.Module.Close(ctx), g.compiled.Close(ctx))
}
