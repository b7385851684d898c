// Package fat16test builds small FAT16 images in memory, with or without an
// MBR partition table. It backs the tests and the mkimage tool and does not
// validate its input: broken images are as easy to build as valid ones.
package fat16test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	mbrSectorSize = 512

	// hardDisk is the media descriptor for a hard disk (as opposed to floppy).
	hardDisk = uint8(0xF8)

	// EndOfChain marks the end of a cluster chain in the FAT.
	EndOfChain = uint16(0xFFFF)

	// AttrDirectory marks a subdirectory entry.
	AttrDirectory = uint8(0x10)
	// AttrVolumeLabel marks the volume label entry.
	AttrVolumeLabel = uint8(0x08)
	// AttrArchive is set on regular files by most tools.
	AttrArchive = uint8(0x20)
)

// Geometry describes the boot sector fields of the image.
type Geometry struct {
	SectorSize        uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumberOfFATs      uint8
	FATSizeSectors    uint16
	RootDirEntries    uint16
	TotalSectors      uint32
}

// DefaultGeometry returns 512 byte sectors, 2048 byte clusters, two FATs of
// 32 sectors and 512 root directory entries on a 4 MiB filesystem.
func DefaultGeometry() Geometry {
	return Geometry{
		SectorSize:        512,
		SectorsPerCluster: 4,
		ReservedSectors:   1,
		NumberOfFATs:      2,
		FATSizeSectors:    32,
		RootDirEntries:    512,
		TotalSectors:      8192,
	}
}

// ClusterSize returns the cluster size in bytes.
func (g Geometry) ClusterSize() int64 {
	return int64(g.SectorSize) * int64(g.SectorsPerCluster)
}

// Image is a FAT16 image under construction.
type Image struct {
	Geometry

	// PartitionStart is the start sector of the partition, 0 for an image without MBR.
	PartitionStart uint32
	PartitionType  byte

	buf         []byte
	nextCluster uint16
}

// New creates a formatted image. With partitionStart > 0 an MBR with a single
// partition of type partitionType is written, otherwise the filesystem starts
// at offset 0.
func New(g Geometry, partitionStart uint32, partitionType byte) *Image {
	img := &Image{
		Geometry:       g,
		PartitionStart: partitionStart,
		PartitionType:  partitionType,
		nextCluster:    2,
	}
	img.buf = make([]byte, img.Base()+int64(g.TotalSectors)*int64(g.SectorSize))

	if partitionStart > 0 {
		img.SetPartition(0, partitionType, partitionStart, g.TotalSectors)
		binary.LittleEndian.PutUint16(img.buf[510:], 0xAA55)
	}
	img.writeBootSector()

	// The first two slots hold the media descriptor and the file system state.
	img.SetFAT(0, uint16(0xFF)<<8|uint16(hardDisk))
	img.SetFAT(1, 0xFFFF)
	return img
}

// SetPartition writes the partition record idx of the MBR.
func (img *Image) SetPartition(idx int, partitionType byte, start, length uint32) {
	var b bytes.Buffer
	for _, v := range []interface{}{
		uint8(0x80),            // bootable
		[3]byte{0x20, 0x21, 0}, // start CHS, unused
		partitionType,
		[3]byte{0xFE, 0xFF, 0xFF}, // end CHS, unused
		start,
		length,
	} {
		// bytes.Buffer never fails
		_ = binary.Write(&b, binary.LittleEndian, v)
	}
	copy(img.buf[0x1BE+16*idx:], b.Bytes())
}

func (img *Image) writeBootSector() {
	var (
		jumpCode            = [3]byte{0xEB, 0x3C, 0x90}
		OEM                 = [8]byte{'g', 'o', 'f', 'a', 't', '1', '6', ' '}
		volumeLabel         = [11]byte{'T', 'E', 'S', 'T', 'V', 'O', 'L', ' ', ' ', ' ', ' '}
		fileSystemType      = [8]byte{'F', 'A', 'T', '1', '6', ' ', ' ', ' '}
		bootCode            = [448]byte{}
		bootSectorSignature = [2]byte{0x55, 0xAA}
		totalShort          = uint16(0)
		totalLong           = img.TotalSectors
	)
	if img.TotalSectors <= 0xFFFF {
		totalShort, totalLong = uint16(img.TotalSectors), 0
	}

	var b bytes.Buffer
	for _, v := range []interface{}{
		jumpCode,
		OEM,
		img.SectorSize,
		img.SectorsPerCluster,
		img.ReservedSectors,
		img.NumberOfFATs,
		img.RootDirEntries,
		totalShort,
		hardDisk,
		img.FATSizeSectors,
		uint16(32),         // sectors per track
		uint16(4),          // heads
		img.PartitionStart, // hidden sectors
		totalLong,
		uint8(0x80), // drive number
		uint8(0),    // current head
		uint8(0x29), // boot signature
		uint32(0x1234ABCD),
		volumeLabel,
		fileSystemType,
		bootCode,
		bootSectorSignature,
	} {
		_ = binary.Write(&b, binary.LittleEndian, v)
	}
	copy(img.buf[img.Base():], b.Bytes())
}

// Base returns the offset of the filesystem in the image.
func (img *Image) Base() int64 {
	return int64(img.PartitionStart) * mbrSectorSize
}

// FATStart returns the offset of the first FAT.
func (img *Image) FATStart() int64 {
	return img.Base() + int64(img.ReservedSectors)*int64(img.SectorSize)
}

// RootDirStart returns the offset of the root directory.
func (img *Image) RootDirStart() int64 {
	return img.FATStart() + int64(img.FATSizeSectors)*int64(img.NumberOfFATs)*int64(img.SectorSize)
}

// DataStart returns the offset of cluster 2.
func (img *Image) DataStart() int64 {
	return img.RootDirStart() + int64(img.RootDirEntries)*32
}

// ClusterOffset returns the offset of cluster n.
func (img *Image) ClusterOffset(n uint16) int64 {
	return img.DataStart() + (int64(n)-2)*img.ClusterSize()
}

// SetFAT writes value into the slot of cluster n of every FAT copy.
func (img *Image) SetFAT(n uint16, value uint16) {
	fatSize := int64(img.FATSizeSectors) * int64(img.SectorSize)
	for i := int64(0); i < int64(img.NumberOfFATs); i++ {
		binary.LittleEndian.PutUint16(img.buf[img.FATStart()+i*fatSize+int64(n)*2:], value)
	}
}

// Chain links the clusters in order and ends the chain after the last one.
func (img *Image) Chain(clusters ...uint16) {
	for i, c := range clusters {
		next := EndOfChain
		if i+1 < len(clusters) {
			next = clusters[i+1]
		}
		img.SetFAT(c, next)
	}
}

// WriteCluster copies data to the start of cluster n. data may span several clusters.
func (img *Image) WriteCluster(n uint16, data []byte) {
	copy(img.buf[img.ClusterOffset(n):], data)
}

// Allocate reserves the next count clusters and returns them.
func (img *Image) Allocate(count int) []uint16 {
	clusters := make([]uint16, count)
	for i := range clusters {
		clusters[i] = img.nextCluster
		img.nextCluster++
	}
	return clusters
}

// Entry is the content of a directory record.
type Entry struct {
	Name    string // "NAME.EXT", "." or ".."
	Attr    uint8
	Time    uint16
	Date    uint16
	Cluster uint16
	Size    uint32
}

// Encode returns the 32 byte record of e.
func (e Entry) Encode() []byte {
	name, ext := ShortName(e.Name)

	var b bytes.Buffer
	for _, v := range []interface{}{
		name,
		ext,
		e.Attr,
		[10]byte{}, // reserved
		e.Time,
		e.Date,
		e.Cluster,
		e.Size,
	} {
		_ = binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

// ShortName splits name at the first dot into the space padded 8.3 parts.
func ShortName(name string) ([8]byte, [3]byte) {
	var (
		base [8]byte
		ext  [3]byte
	)
	copy(base[:], "        ")
	copy(ext[:], "   ")

	if name == "." || name == ".." {
		copy(base[:], name)
		return base, ext
	}

	b, x := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		b, x = name[:i], name[i+1:]
	}
	copy(base[:], b)
	copy(ext[:], x)
	return base, ext
}

// SetRootEntry writes e as record idx of the root directory.
func (img *Image) SetRootEntry(idx int, e Entry) {
	if idx >= int(img.RootDirEntries) {
		panic(fmt.Sprintf("root entry %d out of range", idx))
	}
	copy(img.buf[img.RootDirStart()+int64(idx)*32:], e.Encode())
}

// SetDirEntry writes e as record idx of the directory starting at cluster.
// The record has to fit into the first cluster.
func (img *Image) SetDirEntry(cluster uint16, idx int, e Entry) {
	copy(img.buf[img.ClusterOffset(cluster)+int64(idx)*32:], e.Encode())
}

// RawRootEntry returns the bytes of root record idx for direct manipulation.
func (img *Image) RawRootEntry(idx int) []byte {
	off := img.RootDirStart() + int64(idx)*32
	return img.buf[off : off+32]
}

// AddFile allocates consecutive clusters for data, chains them and returns
// the first cluster. An empty file gets cluster 0.
func (img *Image) AddFile(data []byte) uint16 {
	if len(data) == 0 {
		return 0
	}
	count := (int64(len(data)) + img.ClusterSize() - 1) / img.ClusterSize()
	clusters := img.Allocate(int(count))
	img.Chain(clusters...)
	img.WriteCluster(clusters[0], data)
	return clusters[0]
}

// AddRootFile stores data and writes its record as root entry idx.
func (img *Image) AddRootFile(idx int, name string, data []byte) Entry {
	e := Entry{
		Name:    name,
		Attr:    AttrArchive,
		Time:    0x5401,
		Date:    0x2B14,
		Cluster: img.AddFile(data),
		Size:    uint32(len(data)),
	}
	img.SetRootEntry(idx, e)
	return e
}

// AddDir allocates a single cluster directory with "." and ".." records.
// parent is 0 for the root directory.
func (img *Image) AddDir(parent uint16) uint16 {
	c := img.Allocate(1)[0]
	img.Chain(c)
	img.SetDirEntry(c, 0, Entry{Name: ".", Attr: AttrDirectory, Cluster: c})
	img.SetDirEntry(c, 1, Entry{Name: "..", Attr: AttrDirectory, Cluster: parent})
	return c
}

// AddSubFile stores data and writes its record as entry idx of directory dir.
func (img *Image) AddSubFile(dir uint16, idx int, name string, data []byte) Entry {
	e := Entry{
		Name:    name,
		Attr:    AttrArchive,
		Cluster: img.AddFile(data),
		Size:    uint32(len(data)),
	}
	img.SetDirEntry(dir, idx, e)
	return e
}

// Bytes returns the image. Later changes to the image are visible in the slice.
func (img *Image) Bytes() []byte {
	return img.buf
}

// Reader returns a reader over the current image content.
func (img *Image) Reader() *bytes.Reader {
	return bytes.NewReader(img.buf)
}

// Truncate cuts the image to size bytes.
func (img *Image) Truncate(size int64) {
	img.buf = img.buf[:size]
}
