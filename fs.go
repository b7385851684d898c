package gofat16

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/aligator/gofat16/checkpoint"
	"github.com/spf13/afero"
)

// Fs is a read only afero.Fs view of a Volume.
type Fs struct {
	vol *Volume
}

// New opens the FAT16 filesystem in reader as afero.Fs.
func New(reader io.ReaderAt, opts ...Option) (*Fs, error) {
	vol, err := Open(reader, opts...)
	if err != nil {
		return nil, err
	}
	return NewFs(vol), nil
}

// NewFs wraps an opened Volume.
func NewFs(vol *Volume) *Fs {
	return &Fs{vol: vol}
}

// Volume returns the wrapped Volume.
func (fs *Fs) Volume() *Volume {
	return fs.vol
}

func (fs *Fs) readFileAt(cluster uint16, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	return fs.vol.chain.ReadAt(context.Background(), cluster, fileSize, offset, readSize)
}

// readDir returns the visible entries of a directory: no deleted entries,
// no dot aliases and no volume label.
func (fs *Fs) readDir(cluster uint16) ([]DirectoryEntry, error) {
	all, err := fs.vol.ReadDir(context.Background(), cluster)
	if err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0, len(all))
	for _, e := range all {
		if e.Marker() == MarkerDeleted || e.Marker() == MarkerDot || e.IsVolumeLabel() {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readOnly(op, name string) error {
	return checkpoint.Wrap(&os.PathError{Op: op, Path: name, Err: syscall.EROFS}, ErrReadOnly)
}

// pathError converts lookup failures into errors understood by os.IsNotExist and afero.
func pathError(op, name string, err error) error {
	switch {
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrInvalidName):
		return checkpoint.Wrap(err, &os.PathError{Op: op, Path: name, Err: os.ErrNotExist})
	case errors.Is(err, ErrNotDirectory):
		return checkpoint.Wrap(err, &os.PathError{Op: op, Path: name, Err: syscall.ENOTDIR})
	}
	return checkpoint.Wrap(err, &os.PathError{Op: op, Path: name, Err: err})
}

func (fs *Fs) Open(name string) (afero.File, error) {
	e, err := fs.vol.Resolve(context.Background(), name)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	return &File{
		fs:    fs,
		path:  name,
		entry: e,
		stat:  entryFileInfo{entry: e},
	}, nil
}

// OpenFile opens a file for reading. Any flag which would modify the filesystem fails.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, readOnly("open", name)
	}
	return fs.Open(name)
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	e, err := fs.vol.Resolve(context.Background(), name)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return entryFileInfo{entry: e}, nil
}

// Name returns the volume label.
func (fs *Fs) Name() string {
	return "FAT16 " + fs.vol.Label()
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, readOnly("create", name)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return readOnly("mkdir", name)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return readOnly("mkdir", path)
}

func (fs *Fs) Remove(name string) error {
	return readOnly("remove", name)
}

func (fs *Fs) RemoveAll(path string) error {
	return readOnly("remove", path)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return readOnly("rename", oldname)
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return readOnly("chmod", name)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return readOnly("chown", name)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return readOnly("chtimes", name)
}
