package fatfs

import "github.com/wippyai/fsbridge/alloc"

// NewFS allocates storage for one FATFS work area. Returns nil on failure.
func NewFS(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindFATFS)
}

// NewFile allocates storage for one FIL object. Returns nil on failure.
func NewFile(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindFATFile)
}

// NewDir allocates storage for one FF_DIR object. Returns nil on failure.
func NewDir(a *alloc.Arena) *alloc.Block {
	return a.Alloc(alloc.KindFATDir)
}
