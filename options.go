package gofat16

import (
	"go.uber.org/zap"
)

type partitionMode int

const (
	modeMBR partitionMode = iota
	modeSuperfloppy
	modeAuto
)

type options struct {
	log        *zap.SugaredLogger
	strictEOC  bool
	bufferSize int
	mode       partitionMode
}

// Option configures Open and NewChainReader.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		log:        zap.NewNop().Sugar(),
		bufferSize: defaultBufferSize,
		mode:       modeMBR,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Chunk and cluster traces are logged at debug level.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStrictEndOfChain only accepts 0xFFFF as end of a cluster chain instead
// of the whole 0xFFF8-0xFFFF range.
func WithStrictEndOfChain() Option {
	return func(o *options) {
		o.strictEOC = true
	}
}

// WithBufferSize sets the maximum size of a single read from the image.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithoutPartitionTable opens an image without MBR ("superfloppy"), the
// filesystem starts at offset 0.
func WithoutPartitionTable() Option {
	return func(o *options) {
		o.mode = modeSuperfloppy
	}
}

// WithAutoDetect opens the image as superfloppy if its first sector is a
// FAT16 boot sector and through the partition table otherwise.
func WithAutoDetect() Option {
	return func(o *options) {
		o.mode = modeAuto
	}
}
