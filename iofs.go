package gofat16

import (
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// NewIOFS opens the FAT16 filesystem in reader as io/fs.FS.
func NewIOFS(reader io.ReaderAt, opts ...Option) (fs.FS, error) {
	f, err := New(reader, opts...)
	if err != nil {
		return nil, err
	}
	return afero.NewIOFS(f), nil
}
