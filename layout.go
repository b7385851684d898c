package gofat16

// dirEntrySize is the size of a single directory entry.
const dirEntrySize = 32

// Layout holds the absolute byte offsets of the filesystem regions in the image.
type Layout struct {
	Base         int64
	FATStart     int64
	RootDirStart int64
	DataStart    int64
	ClusterSize  int64
}

// NewLayout derives the region offsets of the filesystem starting at base.
//
// The FAT follows the reserved sectors, which include the boot sector itself.
// Reading with a cursor placed after the 512 byte boot sector gives
// base + 512 + (reserved-1)*sectorSize, which is the same offset for
// 512 byte sectors.
func NewLayout(base int64, bs BootSector) Layout {
	sectorSize := int64(bs.SectorSize)

	l := Layout{
		Base:        base,
		FATStart:    base + int64(bs.ReservedSectors)*sectorSize,
		ClusterSize: bs.ClusterSize(),
	}
	l.RootDirStart = l.FATStart + int64(bs.FATSizeSectors)*int64(bs.NumberOfFATs)*sectorSize
	l.DataStart = l.RootDirStart + int64(bs.RootDirEntries)*dirEntrySize
	return l
}

// ClusterOffset returns the offset of the data of cluster n.
// Cluster numbering starts at 2.
func (l Layout) ClusterOffset(n uint16) int64 {
	return l.DataStart + (int64(n)-firstDataCluster)*l.ClusterSize
}

// FATEntryOffset returns the offset of the FAT slot of cluster n in the first FAT.
func (l Layout) FATEntryOffset(n uint16) int64 {
	return l.FATStart + int64(n)*2
}
