package gofat16

import (
	"errors"
	"fmt"
	"io"

	"github.com/aligator/gofat16/checkpoint"
)

// These errors describe the stage at which reading the image failed.
// They are always wrapped by a checkpoint which names the offending
// partition index, file name or cluster number.
var (
	ErrImageNotFound     = errors.New("filesystem image not found")
	ErrPartitionNotFound = errors.New("no FAT16 partition found")
	ErrInvalidBootSector = errors.New("invalid boot sector")
	ErrEntryNotFound     = errors.New("directory entry not found")
	ErrTruncatedImage    = errors.New("image is truncated")
	ErrCorruptChain      = errors.New("corrupt cluster chain")
	ErrNotDirectory      = errors.New("not a directory")
	ErrIsDirectory       = errors.New("is a directory")
	ErrInvalidName       = errors.New("invalid 8.3 name")
	ErrReadOnly          = errors.New("filesystem is read only")

	// ErrInconsistentFileSize is a warning: the output contains everything the chain provided.
	ErrInconsistentFileSize = errors.New("cluster chain ended before the declared file size")
	// ErrAlreadyAtRoot is a warning: the session did not change.
	ErrAlreadyAtRoot = errors.New("already at root directory")
)

// IsWarning reports whether err only signals a condition the caller may
// report and then continue from.
func IsWarning(err error) bool {
	return errors.Is(err, ErrInconsistentFileSize) || errors.Is(err, ErrAlreadyAtRoot)
}

// stageError describes a failure of the stage named by sentinel. The
// formatted detail names the offending identifier. cause may be nil.
// The checkpoint records the caller of stageError.
func stageError(cause, sentinel error, format string, args ...interface{}) error {
	detail := fmt.Errorf(format, args...)
	if cause == nil {
		return checkpoint.WrapSkip(1, detail, sentinel)
	}

	// A checkpoint around io.EOF is io.EOF again, so report it as unexpected.
	if cause == io.EOF {
		cause = io.ErrUnexpectedEOF
	}
	return checkpoint.WrapSkip(1, cause, fmt.Errorf("%w: %v", sentinel, detail))
}
