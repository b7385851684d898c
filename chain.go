package gofat16

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"syscall"

	"github.com/aligator/gofat16/checkpoint"
	"go.uber.org/zap"
)

const (
	// firstDataCluster is the number of the first cluster of the data region.
	// Clusters 0 and 1 are reserved.
	firstDataCluster = 2

	// badCluster marks a cluster with a defect in the FAT.
	badCluster = 0xFFF7

	// endOfChainMin is the lowest end-of-chain marker. Every value up to 0xFFFF ends a chain.
	endOfChainMin = 0xFFF8
	// endOfChain is the marker usually written at the end of a chain.
	endOfChain = 0xFFFF

	defaultBufferSize = 4096
)

// ChainReader follows FAT16 cluster chains and reads the data they point to.
// All reads are positioned, so a ChainReader may be used concurrently.
type ChainReader struct {
	r      io.ReaderAt
	layout Layout

	bufferSize int
	strictEOC  bool

	// clusterCount is the number of cluster slots including the two reserved
	// ones. 0 disables the range check.
	clusterCount uint32

	log *zap.SugaredLogger
}

// NewChainReader creates a ChainReader for the regions described by layout.
func NewChainReader(r io.ReaderAt, layout Layout, opts ...Option) *ChainReader {
	o := newOptions(opts)
	return newChainReader(r, layout, 0, o)
}

func newChainReader(r io.ReaderAt, layout Layout, clusterCount uint32, o options) *ChainReader {
	return &ChainReader{
		r:            r,
		layout:       layout,
		bufferSize:   o.bufferSize,
		strictEOC:    o.strictEOC,
		clusterCount: clusterCount,
		log:          o.log,
	}
}

// IsEndOfChain reports whether n terminates a chain.
// By default every value from 0xFFF8 on does, in strict mode only 0xFFFF.
func (c *ChainReader) IsEndOfChain(n uint16) bool {
	if c.strictEOC {
		return n == endOfChain
	}
	return n >= endOfChainMin
}

// checkCluster validates a cluster number before its data is used.
func (c *ChainReader) checkCluster(n uint16, visited map[uint16]struct{}) error {
	switch {
	case n < firstDataCluster:
		return stageError(nil, ErrCorruptChain, "cluster %d is reserved", n)
	case n == badCluster:
		return stageError(nil, ErrCorruptChain, "cluster %#04x is marked bad", n)
	case c.clusterCount > 0 && uint32(n) >= c.clusterCount:
		return stageError(nil, ErrCorruptChain, "cluster %d is beyond the last cluster %d", n, c.clusterCount-1)
	}

	if visited != nil {
		if _, ok := visited[n]; ok {
			return stageError(nil, ErrCorruptChain, "cluster %d is part of a loop", n)
		}
		visited[n] = struct{}{}
	}
	return nil
}

// Next reads the FAT slot of cluster n.
func (c *ChainReader) Next(n uint16) (uint16, error) {
	var slot [2]byte
	off := c.layout.FATEntryOffset(n)
	read, err := c.r.ReadAt(slot[:], off)
	if read < len(slot) {
		return 0, stageError(err, ErrTruncatedImage, "FAT slot of cluster %d at offset %#x", n, off)
	}
	return binary.LittleEndian.Uint16(slot[:]), nil
}

// ReadChain writes size bytes of the chain starting at cluster start to w.
// It returns the number of bytes written.
//
// The FAT is only consulted when a cluster is used up and more bytes are
// expected, so a size which is a multiple of the cluster size never reads
// the slot of the last cluster.
// If the chain ends before size bytes were read, ErrInconsistentFileSize is
// returned. w keeps everything written before any error.
// ctx is checked before every chunk.
func (c *ChainReader) ReadChain(ctx context.Context, w io.Writer, start uint16, size int64) (int64, error) {
	var (
		written     int64
		fileLeft    = size
		clusterLeft = c.layout.ClusterSize
		cluster     = start
		visited     = make(map[uint16]struct{})
		buf         = make([]byte, c.bufferSize)
	)

	for fileLeft > 0 && !c.IsEndOfChain(cluster) {
		if err := ctx.Err(); err != nil {
			return written, checkpoint.From(err)
		}

		if clusterLeft == c.layout.ClusterSize {
			if err := c.checkCluster(cluster, visited); err != nil {
				return written, err
			}
		}

		toRead := int64(len(buf))
		if toRead > fileLeft {
			toRead = fileLeft
		}
		if toRead > clusterLeft {
			toRead = clusterLeft
		}

		off := c.layout.ClusterOffset(cluster) + c.layout.ClusterSize - clusterLeft
		n, err := c.r.ReadAt(buf[:toRead], off)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, checkpoint.From(werr)
			}
		}
		c.log.Debugf("Copied %d bytes from cluster %d", n, cluster)

		clusterLeft -= int64(n)
		fileLeft -= int64(n)

		if int64(n) < toRead {
			return written, stageError(err, ErrTruncatedImage, "cluster %d at offset %#x: read %d of %d bytes", cluster, off, n, toRead)
		}

		if clusterLeft == 0 && fileLeft > 0 {
			next, err := c.Next(cluster)
			if err != nil {
				return written, err
			}
			c.log.Debugf("End of cluster %d reached, next cluster %#04x", cluster, next)

			cluster = next
			clusterLeft = c.layout.ClusterSize
		}
	}

	if fileLeft > 0 {
		return written, stageError(nil, ErrInconsistentFileSize, "chain from cluster %d ended after %d of %d bytes", start, written, size)
	}
	return written, nil
}

// Chain returns the cluster numbers of the chain starting at start, in order.
func (c *ChainReader) Chain(ctx context.Context, start uint16) ([]uint16, error) {
	var (
		chain   []uint16
		visited = make(map[uint16]struct{})
	)
	for cluster := start; !c.IsEndOfChain(cluster); {
		if err := ctx.Err(); err != nil {
			return chain, checkpoint.From(err)
		}
		if err := c.checkCluster(cluster, visited); err != nil {
			return chain, err
		}
		chain = append(chain, cluster)

		next, err := c.Next(cluster)
		if err != nil {
			return chain, err
		}
		cluster = next
	}
	return chain, nil
}

// ReadChainAll reads every cluster of the chain starting at start.
// It is used for directories, which have no size of their own.
func (c *ChainReader) ReadChainAll(ctx context.Context, start uint16) ([]byte, error) {
	chain, err := c.Chain(ctx, start)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(chain) * int(c.layout.ClusterSize))
	cluster := make([]byte, c.layout.ClusterSize)
	for _, n := range chain {
		if err := c.readCluster(n, cluster); err != nil {
			return buf.Bytes(), err
		}
		buf.Write(cluster)
	}
	return buf.Bytes(), nil
}

func (c *ChainReader) readCluster(n uint16, p []byte) error {
	off := c.layout.ClusterOffset(n)
	read, err := c.r.ReadAt(p, off)
	if read < len(p) {
		return stageError(err, ErrTruncatedImage, "cluster %d at offset %#x: read %d of %d bytes", n, off, read, len(p))
	}
	return nil
}

// ReadAt reads up to length bytes at offset off of the file of the given size
// whose chain starts at start. It returns io.EOF together with the data if
// the request reaches past the end of the file.
// A negative off or length is syscall.EINVAL.
func (c *ChainReader) ReadAt(ctx context.Context, start uint16, size int64, off int64, length int64) ([]byte, error) {
	if off < 0 || length < 0 {
		return nil, checkpoint.Wrap(fmt.Errorf("read at offset %d, length %d", off, length), syscall.EINVAL)
	}
	if off >= size {
		return nil, io.EOF
	}

	var eof error
	if off+length > size {
		length = size - off
		eof = io.EOF
	}

	// Skip the clusters in front of off.
	visited := make(map[uint16]struct{})
	cluster := start
	for skip := off / c.layout.ClusterSize; skip > 0; skip-- {
		if c.IsEndOfChain(cluster) {
			return nil, stageError(nil, ErrInconsistentFileSize, "chain from cluster %d ends before offset %d", start, off)
		}
		if err := c.checkCluster(cluster, visited); err != nil {
			return nil, err
		}
		next, err := c.Next(cluster)
		if err != nil {
			return nil, err
		}
		cluster = next
	}

	out := make([]byte, 0, length)
	inCluster := off % c.layout.ClusterSize
	for int64(len(out)) < length {
		if err := ctx.Err(); err != nil {
			return out, checkpoint.From(err)
		}
		if c.IsEndOfChain(cluster) {
			return out, stageError(nil, ErrInconsistentFileSize, "chain from cluster %d ended after %d of %d bytes", start, off+int64(len(out)), size)
		}
		if err := c.checkCluster(cluster, visited); err != nil {
			return out, err
		}

		toRead := c.layout.ClusterSize - inCluster
		if rest := length - int64(len(out)); toRead > rest {
			toRead = rest
		}

		pos := c.layout.ClusterOffset(cluster) + inCluster
		n, err := c.r.ReadAt(out[len(out):int64(len(out))+toRead], pos)
		out = out[:len(out)+n]
		if int64(n) < toRead {
			return out, stageError(err, ErrTruncatedImage, "cluster %d at offset %#x: read %d of %d bytes", cluster, pos, n, toRead)
		}
		inCluster = 0

		if int64(len(out)) < length {
			next, err := c.Next(cluster)
			if err != nil {
				return out, err
			}
			cluster = next
		}
	}
	return out, eof
}
