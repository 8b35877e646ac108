package fatfs

import "strconv"

// DiskResult is the disk I/O layer's result code (DRESULT).
type DiskResult uint8

const (
	DiskOK               DiskResult = 0 // Successful
	DiskError            DiskResult = 1 // R/W error
	DiskWriteProtected   DiskResult = 2 // Write protected
	DiskNotReady         DiskResult = 3 // Not ready
	DiskInvalidParameter DiskResult = 4 // Invalid parameter
)

func (r DiskResult) Error() string {
	switch r {
	case DiskOK:
		return "fatfs: disk ok"
	case DiskError:
		return "fatfs: disk read/write error"
	case DiskWriteProtected:
		return "fatfs: disk write protected"
	case DiskNotReady:
		return "fatfs: disk not ready"
	case DiskInvalidParameter:
		return "fatfs: invalid disk parameter"
	default:
		return "fatfs: disk result " + strconv.Itoa(int(r))
	}
}

// Result is the FAT engine's own result code (FRESULT).
type Result uint8

const (
	ResultOK               Result = 0
	ResultDiskErr          Result = 1
	ResultIntErr           Result = 2
	ResultNotReady         Result = 3
	ResultNoFile           Result = 4
	ResultNoPath           Result = 5
	ResultInvalidName      Result = 6
	ResultDenied           Result = 7
	ResultExist            Result = 8
	ResultInvalidObject    Result = 9
	ResultWriteProtected   Result = 10
	ResultInvalidDrive     Result = 11
	ResultNotEnabled       Result = 12
	ResultNoFilesystem     Result = 13
	ResultMkfsAborted      Result = 14
	ResultTimeout          Result = 15
	ResultLocked           Result = 16
	ResultNotEnoughCore    Result = 17
	ResultTooManyOpenFiles Result = 18
	ResultInvalidParameter Result = 19

	// ResultNotSupported is returned by the read-only stubs. It lies outside
	// the engine's 0..19 range so callers that switch over the engine's own
	// codes cannot mistake it for one of them.
	ResultNotSupported Result = 0xFF
)

var resultText = [...]string{
	ResultOK:               "succeeded",
	ResultDiskErr:          "hard error in the low level disk I/O layer",
	ResultIntErr:           "assertion failed",
	ResultNotReady:         "physical drive cannot work",
	ResultNoFile:           "could not find the file",
	ResultNoPath:           "could not find the path",
	ResultInvalidName:      "path name format is invalid",
	ResultDenied:           "access denied or directory full",
	ResultExist:            "object already exists",
	ResultInvalidObject:    "file/directory object is invalid",
	ResultWriteProtected:   "physical drive is write protected",
	ResultInvalidDrive:     "logical drive number is invalid",
	ResultNotEnabled:       "volume has no work area",
	ResultNoFilesystem:     "no valid FAT volume",
	ResultMkfsAborted:      "mkfs aborted",
	ResultTimeout:          "could not get a grant to access the volume in time",
	ResultLocked:           "rejected by the file sharing policy",
	ResultNotEnoughCore:    "LFN working buffer could not be allocated",
	ResultTooManyOpenFiles: "too many open files",
	ResultInvalidParameter: "given parameter is invalid",
}

const maxEngineResult = ResultInvalidParameter

func (r Result) Error() string {
	if r == ResultNotSupported {
		return "fatfs: (255) operation not supported by a read-only build"
	}
	if r <= maxEngineResult {
		return "fatfs: (" + strconv.Itoa(int(r)) + ") " + resultText[r]
	}
	return "fatfs: (" + strconv.Itoa(int(r)) + ") unknown result"
}

// Err converts a result to an error, nil for ResultOK.
func (r Result) Err() error {
	if r == ResultOK {
		return nil
	}
	return r
}
