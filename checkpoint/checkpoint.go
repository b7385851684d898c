// Package checkpoint decorates errors with the location they passed through,
// which results in something similar to a stacktrace.
// Each error added to a checkpoint can be checked by errors.Is and retrieved by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From just wraps an error by a new checkpoint which adds some caller information to the error.
// It returns nil, if err == nil.
func From(err error) error {
	// io.EOF must be returned as io.EOF directly
	// https://github.com/golang/go/issues/39155
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}

	_, file, line, ok := runtime.Caller(1)
	return &checkpoint{
		prev:     err,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrap adds a checkpoint with some caller information to prev and accepts
// another error which further describes the checkpoint.
// Returns nil if prev == nil.
//
// Predefined errors can be used to describe the checkpoint:
//  var ErrTruncatedImage = errors.New("image is truncated")
//
//  func readCluster(n uint16) error {
//  	err := readAt(...)
//  	return checkpoint.Wrap(err, fmt.Errorf("%w: cluster %d", ErrTruncatedImage, n))
//  }
// errors.Is then reports true for ErrTruncatedImage and for the error returned by readAt.
func Wrap(prev, err error) error {
	return wrap(2, prev, err)
}

// WrapSkip works like Wrap but records the caller skip frames further up.
// Helpers which build checkpoints for their callers use it with skip 1.
func WrapSkip(skip int, prev, err error) error {
	return wrap(skip+2, prev, err)
}

func wrap(depth int, prev, err error) error {
	// io.EOF must be returned as io.EOF directly
	// https://github.com/golang/go/issues/39155
	if prev == nil || prev == io.EOF {
		return prev
	}

	_, file, line, ok := runtime.Caller(depth)
	return &checkpoint{
		err:      err,
		prev:     prev,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Message renders the chain of descriptions without caller information,
// outermost first, joined by ": ". Errors which are no checkpoints are
// rendered by their Error method.
func Message(err error) string {
	var parts []string
	for err != nil {
		c, ok := err.(*checkpoint)
		if !ok {
			parts = append(parts, err.Error())
			break
		}
		if c.err != nil {
			parts = append(parts, c.err.Error())
		}
		err = c.prev
	}

	// Drop consecutive duplicates which appear when the same sentinel is used on several levels.
	result := parts[:0]
	for i, p := range parts {
		if i > 0 && p == parts[i-1] {
			continue
		}
		result = append(result, p)
	}
	return strings.Join(result, ": ")
}

type checkpoint struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) Error() string {
	prevErrString := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prevErrString = "File: unknown\n\t" + strings.ReplaceAll(prevErrString, "\n", "\n\t")
	}

	location := "unknown"
	if e.callerOk {
		location = fmt.Sprintf("%s:%d", e.file, e.line)
	}

	if e.err == nil {
		return fmt.Sprintf("File: %s\n%v", location, prevErrString)
	}
	return fmt.Sprintf("File: %s\n\t%v\n%v", location, e.err, prevErrString)
}

func (e *checkpoint) Unwrap() error {
	return e.prev
}

func (e *checkpoint) Is(target error) bool {
	return e.err != nil && errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	return e.err != nil && errors.As(e.err, target)
}
