package gofat16

import (
	"os"
	"time"
)

// FileInfo returns the entry as os.FileInfo.
func (e DirectoryEntry) FileInfo() os.FileInfo {
	return entryFileInfo{entry: e}
}

type entryFileInfo struct {
	entry DirectoryEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name()
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.FileSize)
}

// Mode reports read only permissions, as nothing can be written.
func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

func (e entryFileInfo) ModTime() time.Time {
	return e.entry.ModTime()
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

// Sys returns the DirectoryEntry.
func (e entryFileInfo) Sys() interface{} {
	return e.entry
}
