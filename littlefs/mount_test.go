package littlefs

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/fsbridge/alloc"
	"github.com/wippyai/fsbridge/errors"
)

// fakeEngine drives the config's slots the way a mount would: it reads the
// superblock pair and records what it was handed.
type fakeEngine struct {
	mounted *Config
	format  Error
	calls   int
}

func (e *fakeEngine) Format(fs *alloc.Block, cfg *Config) Error {
	e.calls++
	if e.format != ErrOK {
		return e.format
	}
	for b := uint32(0); b < 2; b++ {
		if res := cfg.Erase(cfg, b); res != ErrOK {
			return res
		}
	}
	return cfg.Sync(cfg)
}

func (e *fakeEngine) Mount(fs *alloc.Block, cfg *Config) Error {
	e.calls++
	buf := make([]byte, cfg.ReadSize)
	for b := uint32(0); b < 2; b++ {
		if res := cfg.Read(cfg, b, 0, buf); res != ErrOK {
			return res
		}
	}
	e.mounted = cfg
	return ErrOK
}

func (e *fakeEngine) Unmount(*alloc.Block) Error {
	e.mounted = nil
	return ErrOK
}

func TestMount(t *testing.T) {
	rec := &recordingDispatcher{}
	installDispatcher(t, rec)

	arena := alloc.NewArena(alloc.DefaultLayout())
	fs := NewLFS(arena)
	engine := &fakeEngine{}
	cfg := NewConfig(testGeometry(), 3)

	if err := Format(engine, fs, cfg); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if err := Mount(engine, fs, cfg); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if engine.mounted != cfg {
		t.Error("engine did not receive the config")
	}
	for _, c := range rec.calls {
		if c.Ctx != 3 {
			t.Errorf("call %s carried ctx %d", c.Op, c.Ctx)
		}
	}
	if len(rec.calls) != 5 {
		t.Errorf("calls = %d, want 5", len(rec.calls))
	}
}

func TestMount_EngineCodeVerbatim(t *testing.T) {
	installDispatcher(t, &recordingDispatcher{result: ErrCorrupt})

	arena := alloc.NewArena(alloc.DefaultLayout())
	engine := &fakeEngine{}
	err := Mount(engine, NewLFS(arena), NewConfig(testGeometry(), 3))
	if err != ErrCorrupt {
		t.Errorf("Mount = %v, want ErrCorrupt", err)
	}

	engine.format = ErrNoSpace
	if err := Format(engine, NewLFS(arena), NewConfig(testGeometry(), 3)); err != ErrNoSpace {
		t.Errorf("Format = %v, want ErrNoSpace", err)
	}
}

func TestMount_Rejects(t *testing.T) {
	arena := alloc.NewArena(alloc.DefaultLayout())
	fs := NewLFS(arena)
	freed := NewLFS(arena)
	if err := arena.Free(freed); err != nil {
		t.Fatal(err)
	}

	unwired := &Config{Context: 3, Geometry: testGeometry()}
	partial := NewConfig(testGeometry(), 3)
	partial.Erase = nil
	noContext := NewConfig(testGeometry(), 0)
	badGeometry := NewConfig(Geometry{ReadSize: 16, ProgSize: 16, BlockSize: 256}, 3)

	tests := []struct {
		name string
		fs   *alloc.Block
		cfg  *Config
		kind errors.Kind
	}{
		{"unwired", fs, unwired, errors.KindNotWired},
		{"partially wired", fs, partial, errors.KindNotWired},
		{"no context", fs, noContext, errors.KindNotWired},
		{"nil config", fs, nil, errors.KindInvalidInput},
		{"zero block count", fs, badGeometry, errors.KindInvalidInput},
		{"nil fs", nil, NewConfig(testGeometry(), 3), errors.KindInvalidInput},
		{"freed fs", freed, NewConfig(testGeometry(), 3), errors.KindInvalidInput},
		{"wrong kind", NewFile(arena), NewConfig(testGeometry(), 3), errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			err := Mount(engine, tt.fs, tt.cfg)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("Mount = %v, want *errors.Error", err)
			}
			if e.Kind != tt.kind || e.Phase != errors.PhaseMount {
				t.Errorf("got %s/%s, want %s/%s", e.Phase, e.Kind, errors.PhaseMount, tt.kind)
			}
			if engine.calls != 0 {
				t.Error("engine was called with a rejected config")
			}
		})
	}

	if err := Mount(nil, fs, NewConfig(testGeometry(), 3)); err == nil {
		t.Error("nil engine accepted")
	}
}

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Geometry)
		ok   bool
	}{
		{"valid", func(*Geometry) {}, true},
		{"no cache", func(g *Geometry) { g.CacheSize = 0 }, true},
		{"zero read", func(g *Geometry) { g.ReadSize = 0 }, false},
		{"cache not multiple of prog", func(g *Geometry) { g.CacheSize = 24 }, false},
		{"block not multiple of cache", func(g *Geometry) { g.CacheSize = 48 }, false},
		{"lookahead not multiple of 8", func(g *Geometry) { g.LookaheadSize = 12 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGeometry()
			tt.mod(&g)
			if err := g.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate = %v, ok = %v", err, tt.ok)
			}
		})
	}
}

func TestNewConfigBlock(t *testing.T) {
	arena := alloc.NewArena(alloc.DefaultLayout())
	b := NewConfigBlock(arena, 0xC0FFEE)
	if b == nil {
		t.Fatal("NewConfigBlock returned nil")
	}
	if b.Kind() != alloc.KindLFSConfig || b.Size() != 76 {
		t.Errorf("block = %v/%d, want lfs_config/76", b.Kind(), b.Size())
	}
	if ctx, ok := BlockContext(b); !ok || ctx != 0xC0FFEE {
		t.Errorf("BlockContext = %#x, %v", ctx, ok)
	}

	if _, ok := BlockContext(NewLFS(arena)); ok {
		t.Error("BlockContext resolved an lfs_t block")
	}
	if err := arena.Free(b); err != nil {
		t.Fatal(err)
	}
	if _, ok := BlockContext(b); ok {
		t.Error("BlockContext resolved a freed block")
	}
	if NewConfigBlock(alloc.NewArena(alloc.Layout{}), 1) != nil {
		t.Error("unknown kind should fail")
	}
}
