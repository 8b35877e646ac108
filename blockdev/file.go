package blockdev

import (
	"os"

	"github.com/spf13/afero"

	"github.com/wippyai/fsbridge/errors"
)

// FileDevice is a device backed by a file. Any afero filesystem works, so
// images can live on disk or in memory.
type FileDevice struct {
	file       afero.File
	blankBlock []byte
	blockSize  uint32
	blockCount uint32
	pageSize   uint32
}

var _ Device = (*FileDevice)(nil)
var _ Syncer = (*FileDevice)(nil)

// NewFileDevice wraps an open image file of blockCount blocks.
func NewFileDevice(file afero.File, pageSize, blockSize, blockCount int) *FileDevice {
	return &FileDevice{
		file:       file,
		blankBlock: blankBlock(int64(blockSize)),
		pageSize:   uint32(pageSize),
		blockSize:  uint32(blockSize),
		blockCount: uint32(blockCount),
	}
}

// CreateFileDevice creates (or truncates) an image at path on fs and fills
// it with erased blocks.
func CreateFileDevice(fs afero.Fs, path string, pageSize, blockSize, blockCount int) (*FileDevice, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDevice, errors.KindInvalidInput, err, "create image "+path)
	}
	dev := NewFileDevice(f, pageSize, blockSize, blockCount)
	if err := dev.EraseBlocks(0, int64(blockCount)); err != nil {
		_ = f.Close()
		return nil, err
	}
	return dev, nil
}

// OpenFileDevice opens an existing image at path on fs. The block count is
// derived from the file size.
func OpenFileDevice(fs afero.Fs, path string, pageSize, blockSize int) (*FileDevice, error) {
	f, err := fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDevice, errors.KindNotFound, err, "open image "+path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(errors.PhaseDevice, errors.KindInvalidInput, err, "stat image "+path)
	}
	return NewFileDevice(f, pageSize, blockSize, int(info.Size()/int64(blockSize))), nil
}

func (bd *FileDevice) ReadAt(buf []byte, off int64) (int, error) {
	if err := checkRange("blockdev.FileDevice", off, len(buf), bd.Size()); err != nil {
		return 0, err
	}
	return bd.file.ReadAt(buf, off)
}

func (bd *FileDevice) WriteAt(buf []byte, off int64) (int, error) {
	if err := checkRange("blockdev.FileDevice", off, len(buf), bd.Size()); err != nil {
		return 0, err
	}
	return bd.file.WriteAt(buf, off)
}

func (bd *FileDevice) Size() int64 {
	return int64(bd.blockSize) * int64(bd.blockCount)
}

func (bd *FileDevice) WriteBlockSize() int64 {
	return int64(bd.pageSize)
}

func (bd *FileDevice) EraseBlockSize() int64 {
	return int64(bd.blockSize)
}

func (bd *FileDevice) EraseBlocks(start, len int64) error {
	if start < 0 || len < 0 || start+len > int64(bd.blockCount) {
		return errors.OutOfBounds(errors.PhaseDevice, "blockdev.FileDevice", uint64(start), uint64(len), uint64(bd.blockCount))
	}
	for i := int64(0); i < len; i++ {
		if _, err := bd.file.WriteAt(bd.blankBlock, (start+i)*int64(bd.blockSize)); err != nil {
			return err
		}
	}
	return nil
}

func (bd *FileDevice) Sync() error {
	return bd.file.Sync()
}

// Close closes the backing file.
func (bd *FileDevice) Close() error {
	return bd.file.Close()
}
