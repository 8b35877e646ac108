package littlefs

import "strconv"

// Error is a littlefs result code. Zero is success; failures are negative.
type Error int32

const (
	ErrOK           Error = 0   // No error
	ErrIO           Error = -5  // Error during device operation
	ErrCorrupt      Error = -84 // Corrupted
	ErrNoEntry      Error = -2  // No directory entry
	ErrExist        Error = -17 // Entry already exists
	ErrNotDir       Error = -20 // Entry is not a dir
	ErrIsDir        Error = -21 // Entry is a dir
	ErrNotEmpty     Error = -39 // Dir is not empty
	ErrBadFile      Error = -9  // Bad file number
	ErrFileTooLarge Error = -27 // File too large
	ErrInvalid      Error = -22 // Invalid parameter
	ErrNoSpace      Error = -28 // No space left on device
	ErrNoMemory     Error = -12 // No more memory available
	ErrNoAttr       Error = -61 // No data/attr available
	ErrTooManyOpen  Error = -24 // Too many open files
	ErrNameTooLong  Error = -36 // File name too long
)

func (err Error) Error() string {
	switch err {
	case ErrOK:
		return "littlefs: ok"
	case ErrIO:
		return "littlefs: error during device operation"
	case ErrCorrupt:
		return "littlefs: corrupted"
	case ErrNoEntry:
		return "littlefs: no directory entry"
	case ErrExist:
		return "littlefs: entry already exists"
	case ErrNotDir:
		return "littlefs: entry is not a dir"
	case ErrIsDir:
		return "littlefs: entry is a dir"
	case ErrNotEmpty:
		return "littlefs: dir is not empty"
	case ErrBadFile:
		return "littlefs: bad file number"
	case ErrFileTooLarge:
		return "littlefs: file too large"
	case ErrInvalid:
		return "littlefs: invalid parameter"
	case ErrNoSpace:
		return "littlefs: no space left on device"
	case ErrNoMemory:
		return "littlefs: no more memory available"
	case ErrNoAttr:
		return "littlefs: no data/attr available"
	case ErrTooManyOpen:
		return "littlefs: too many open files"
	case ErrNameTooLong:
		return "littlefs: file name too long"
	default:
		return "littlefs: unknown error " + strconv.Itoa(int(err))
	}
}

// Err returns nil for ErrOK and err otherwise.
func (err Error) Err() error {
	if err == ErrOK {
		return nil
	}
	return err
}

func errval(err error) Error {
	if err != nil {
		return ErrIO
	}
	return ErrOK
}
