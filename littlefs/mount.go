package littlefs

import (
	"go.uber.org/zap"

	"github.com/wippyai/fsbridge/alloc"
	"github.com/wippyai/fsbridge/errors"
)

// Engine is a littlefs implementation. fs is an opaque block from NewLFS.
type Engine interface {
	Format(fs *alloc.Block, cfg *Config) Error
	Mount(fs *alloc.Block, cfg *Config) Error
	Unmount(fs *alloc.Block) Error
}

// Mount validates cfg and mounts fs with it. The engine's code is returned
// unchanged; a config that fails validation never reaches the engine.
func Mount(engine Engine, fs *alloc.Block, cfg *Config) error {
	if err := checkMount(engine, fs, cfg); err != nil {
		return err
	}
	Logger().Debug("littlefs: mount", zap.Uintptr("context", uintptr(cfg.Context)))
	return engine.Mount(fs, cfg).Err()
}

// Format validates cfg and formats the device behind it.
func Format(engine Engine, fs *alloc.Block, cfg *Config) error {
	if err := checkMount(engine, fs, cfg); err != nil {
		return err
	}
	Logger().Debug("littlefs: format", zap.Uintptr("context", uintptr(cfg.Context)))
	return engine.Format(fs, cfg).Err()
}

func checkMount(engine Engine, fs *alloc.Block, cfg *Config) error {
	if engine == nil {
		return errors.InvalidInput(errors.PhaseMount, "nil engine")
	}
	if !fs.Valid() {
		return errors.InvalidInput(errors.PhaseMount, "filesystem block is nil or freed")
	}
	if fs.Kind() != alloc.KindLFS {
		return errors.New(errors.PhaseMount, errors.KindInvalidInput).
			Subject(fs.Kind().String()).
			Detail("expected %s", alloc.KindLFS).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		Logger().Warn("littlefs: refusing to mount", zap.Error(err))
		return err
	}
	return nil
}
