//go:build !fatfs_readonly

package fatfs

import (
	"testing"

	"github.com/wippyai/fsbridge/alloc"
)

func TestDefaultMode_ReadWriteBuild(t *testing.T) {
	if DefaultMode != ModeReadWrite {
		t.Fatalf("DefaultMode = %v, want read-write", DefaultMode)
	}

	fs := NewFS(alloc.NewArena(alloc.DefaultLayout()))
	engine := &unlinkingEngine{}
	if res := SelectMutator(DefaultMode, engine).Unlink(fs, "/a.txt"); res != ResultOK {
		t.Errorf("Unlink = %v, want ResultOK", res)
	}
	if len(engine.unlinked) != 1 || engine.unlinked[0] != "/a.txt" {
		t.Errorf("engine calls = %v", engine.unlinked)
	}
}
