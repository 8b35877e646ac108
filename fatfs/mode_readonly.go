//go:build fatfs_readonly

package fatfs

// DefaultMode is the mode of this build.
const DefaultMode = ModeReadOnly
