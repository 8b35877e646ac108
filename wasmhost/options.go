package wasmhost

import (
	"github.com/wippyai/fsbridge/fatfs"
	"github.com/wippyai/fsbridge/littlefs"
)

// Options configures a Host.
type Options struct {
	// ModuleName is the import module guests resolve the callbacks from.
	ModuleName string

	// Disk overrides the dispatcher for disk calls. nil routes through
	// fatfs.Adapter to the package-level dispatcher.
	Disk fatfs.Dispatcher

	// Flash overrides the dispatcher for block-device calls. nil routes to
	// littlefs.CurrentDispatcher.
	Flash littlefs.Dispatcher
}

// DefaultOptions returns the configuration used by the stock C glue.
func DefaultOptions() Options {
	return Options{
		ModuleName: "env",
	}
}
