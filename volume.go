package gofat16

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aligator/gofat16/checkpoint"
	"go.uber.org/zap"
)

// RootCluster is the cluster number used for the root directory.
// Entries pointing to the root, like ".." of a first level directory, use it too.
const RootCluster = 0

// maxClusterSlots is the number of FAT16 slots usable for clusters, up to the bad marker.
const maxClusterSlots = badCluster

// Volume is an opened FAT16 filesystem inside an image.
// It only reads through io.ReaderAt and is safe for concurrent use.
type Volume struct {
	r io.ReaderAt

	// partition is the index of the partition table entry, -1 without partition table.
	partition int
	entry     PartitionEntry

	bootSector BootSector
	layout     Layout
	chain      *ChainReader

	log *zap.SugaredLogger
}

// Open locates the FAT16 filesystem in r and parses its boot sector.
// By default the first FAT16 partition of the MBR is used.
func Open(r io.ReaderAt, opts ...Option) (*Volume, error) {
	o := newOptions(opts)

	v := &Volume{
		r:         r,
		partition: -1,
		log:       o.log,
	}

	mode := o.mode
	if mode == modeAuto {
		mode = detectMode(r)
		v.log.Debugf("Detected %v layout", mode)
	}

	var base int64
	if mode == modeMBR {
		entries, err := ReadPartitionTable(r)
		if err != nil {
			return nil, err
		}
		for i, e := range entries {
			v.log.Debugf("Partition %d, type %02X, start sector %08X, %d sectors long", i, e.Type, e.StartSector, e.LengthSectors)
		}

		idx, e, err := FindFAT16Partition(entries)
		if err != nil {
			return nil, err
		}
		v.log.Debugf("FAT16 filesystem found from partition %d", idx)
		v.partition, v.entry = idx, e
		base = e.Offset()
	}

	bs, err := ReadBootSector(r, base)
	if err != nil {
		if v.partition >= 0 {
			return nil, checkpoint.Wrap(err, errPartition(v.partition))
		}
		return nil, err
	}
	v.bootSector = bs
	v.layout = NewLayout(base, bs)
	v.chain = newChainReader(r, v.layout, clusterCount(bs, v.layout), o)

	v.log.Debugf("FAT start at %08X, root dir at %08X, data at %08X", v.layout.FATStart, v.layout.RootDirStart, v.layout.DataStart)
	return v, nil
}

func errPartition(index int) error {
	return fmt.Errorf("partition %d", index)
}

func (m partitionMode) String() string {
	switch m {
	case modeSuperfloppy:
		return "superfloppy"
	case modeAuto:
		return "auto"
	}
	return "mbr"
}

// detectMode checks whether sector 0 already is a FAT16 boot sector.
func detectMode(r io.ReaderAt) partitionMode {
	bs, err := ReadBootSector(r, 0)
	if err != nil {
		return modeMBR
	}
	validJump := (bs.JumpCode[0] == 0xEB && bs.JumpCode[2] == 0x90) || bs.JumpCode[0] == 0xE9
	if validJump && strings.HasPrefix(bs.FSType(), "FAT16") {
		return modeSuperfloppy
	}
	return modeMBR
}

// clusterCount returns the number of FAT slots the filesystem can use, or 0 if
// the boot sector does not tell.
func clusterCount(bs BootSector, l Layout) uint32 {
	total := int64(bs.TotalSectors()) * int64(bs.SectorSize)
	data := total - (l.DataStart - l.Base)
	if total == 0 || data <= 0 {
		return 0
	}

	count := data/l.ClusterSize + firstDataCluster
	if slots := int64(bs.FATSizeSectors) * int64(bs.SectorSize) / 2; slots > 0 && count > slots {
		count = slots
	}
	if count > maxClusterSlots {
		count = maxClusterSlots
	}
	return uint32(count)
}

// BootSector returns the parsed boot sector.
func (v *Volume) BootSector() BootSector {
	return v.bootSector
}

// Layout returns the region offsets.
func (v *Volume) Layout() Layout {
	return v.layout
}

// Partition returns the index and record of the used partition.
// The index is -1 if the image has no partition table.
func (v *Volume) Partition() (int, PartitionEntry) {
	return v.partition, v.entry
}

// Label returns the volume label of the boot sector.
func (v *Volume) Label() string {
	return v.bootSector.Label()
}

// Chain returns the cluster chain reader of the volume.
func (v *Volume) Chain() *ChainReader {
	return v.chain
}

// dirBytes returns the raw records of a directory and the maximum number of
// records to scan. The root directory is bounded by the boot sector, others
// by their cluster chain.
func (v *Volume) dirBytes(ctx context.Context, cluster uint16) ([]byte, int, error) {
	if cluster != RootCluster {
		b, err := v.chain.ReadChainAll(ctx, cluster)
		return b, 0, err
	}

	size := int64(v.bootSector.RootDirEntries) * dirEntrySize
	b := make([]byte, size)
	n, err := v.r.ReadAt(b, v.layout.RootDirStart)
	if int64(n) < size {
		return nil, 0, stageError(err, ErrTruncatedImage, "root directory at offset %#x: read %d of %d bytes", v.layout.RootDirStart, n, size)
	}
	return b, int(v.bootSector.RootDirEntries), nil
}

// ReadDir returns every record of the directory starting at cluster in
// front of the end marker, including deleted and dot entries.
// RootCluster reads the root directory.
func (v *Volume) ReadDir(ctx context.Context, cluster uint16) ([]DirectoryEntry, error) {
	b, limit, err := v.dirBytes(ctx, cluster)
	if err != nil {
		return nil, err
	}

	var entries []DirectoryEntry
	ScanEntries(b, limit, func(_ int, e DirectoryEntry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, nil
}

// Root returns the records of the root directory.
func (v *Volume) Root(ctx context.Context) ([]DirectoryEntry, error) {
	return v.ReadDir(ctx, RootCluster)
}

// Find looks up name in the directory starting at cluster.
// With wantDir only subdirectories match.
func (v *Volume) Find(ctx context.Context, cluster uint16, name string, wantDir bool) (DirectoryEntry, error) {
	key, err := NewShortName(name)
	if err != nil {
		return DirectoryEntry{}, err
	}

	b, limit, err := v.dirBytes(ctx, cluster)
	if err != nil {
		return DirectoryEntry{}, err
	}
	return Lookup(b, limit, key, wantDir)
}

// Resolve walks a slash separated path from the root directory.
// The empty path and "/" resolve to a synthetic root entry.
func (v *Volume) Resolve(ctx context.Context, path string) (DirectoryEntry, error) {
	current := rootEntry()
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" || part == "." {
			continue
		}
		if !current.IsDir() {
			return DirectoryEntry{}, stageError(nil, ErrNotDirectory, "%q in %q", current.Name(), path)
		}

		e, err := v.Find(ctx, current.StartingCluster, part, false)
		if err != nil {
			return DirectoryEntry{}, err
		}
		current = e
	}
	return current, nil
}

// rootEntry stands in for the root directory, which has no record of its own.
func rootEntry() DirectoryEntry {
	e := DirectoryEntry{
		Attributes:      AttrDirectory,
		StartingCluster: RootCluster,
	}
	copy(e.Base[:], "/       ")
	copy(e.Ext[:], "   ")
	return e
}

// ReadFile streams the content of the file e to w.
// ErrInconsistentFileSize is only a warning, w holds everything the chain provided.
func (v *Volume) ReadFile(ctx context.Context, e DirectoryEntry, w io.Writer) (int64, error) {
	if e.IsDir() {
		return 0, stageError(nil, ErrIsDirectory, "%q", e.Name())
	}

	n, err := v.chain.ReadChain(ctx, w, e.StartingCluster, int64(e.FileSize))
	if err != nil {
		return n, checkpoint.Wrap(err, errFile(e))
	}
	return n, nil
}

// ReadFileBytes reads the whole content of the file e.
func (v *Volume) ReadFileBytes(ctx context.Context, e DirectoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(e.FileSize))
	_, err := v.ReadFile(ctx, e, &buf)
	return buf.Bytes(), err
}

func errFile(e DirectoryEntry) error {
	return fmt.Errorf("file %s", e.Name())
}
