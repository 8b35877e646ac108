package fatfs

import "strconv"

// SectorSize is the fixed sector size the bridge reports to the engine.
const SectorSize = 512

// Command is a disk_ioctl control code.
type Command uint8

const (
	CtrlSync       Command = 0 // Complete pending write process
	GetSectorCount Command = 1 // Get media size in sectors (DWORD)
	GetSectorSize  Command = 2 // Get sector size (WORD)
	GetBlockSize   Command = 3 // Get erase block size in sectors (DWORD)
	CtrlTrim       Command = 4 // Inform the device that a sector range is unused (2 x DWORD)
	IoctlInit      Command = 5 // Initialize the drive (DSTATUS)
	IoctlStatus    Command = 6 // Get drive status (DSTATUS)
)

func (c Command) String() string {
	switch c {
	case CtrlSync:
		return "CTRL_SYNC"
	case GetSectorCount:
		return "GET_SECTOR_COUNT"
	case GetSectorSize:
		return "GET_SECTOR_SIZE"
	case GetBlockSize:
		return "GET_BLOCK_SIZE"
	case CtrlTrim:
		return "CTRL_TRIM"
	case IoctlInit:
		return "IOCTL_INIT"
	case IoctlStatus:
		return "IOCTL_STATUS"
	default:
		return "ioctl(" + strconv.Itoa(int(c)) + ")"
	}
}

// PayloadSize returns the byte width of the command's buffer.
func (c Command) PayloadSize() uint32 {
	switch c {
	case GetSectorCount, GetBlockSize:
		return 4
	case GetSectorSize:
		return 2
	case CtrlTrim:
		return 8
	case IoctlInit, IoctlStatus:
		return 1
	default:
		return 0
	}
}
