//go:build !fatfs_readonly

package fatfs

// DefaultMode is the mode of this build. Build with -tags fatfs_readonly for
// engines compiled without write support.
const DefaultMode = ModeReadWrite
