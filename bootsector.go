package gofat16

import (
	"encoding/binary"
	"io"
	"strings"
)

// bootSectorSize is the size of the fixed FAT16 boot sector layout.
const bootSectorSize = 512

// BootSector contains the BIOS Parameter Block and the FAT16 extended fields
// of the first sector of the filesystem.
type BootSector struct {
	JumpCode          [3]byte
	OEMName           [8]byte
	SectorSize        uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumberOfFATs      uint8
	RootDirEntries    uint16
	TotalSectorsShort uint16 // if zero, TotalSectorsLong is used
	MediaDescriptor   uint8
	FATSizeSectors    uint16
	SectorsPerTrack   uint16
	NumberOfHeads     uint16
	HiddenSectors     uint32
	TotalSectorsLong  uint32

	DriveNumber         uint8
	CurrentHead         uint8
	BootSignature       uint8
	VolumeID            uint32
	VolumeLabel         [11]byte
	FSTypeTag           [8]byte
	BootSectorSignature uint16
}

// ParseBootSector decodes and validates a FAT16 boot sector.
// b must contain at least the full 512 bytes of the sector.
func ParseBootSector(b []byte) (BootSector, error) {
	if len(b) < bootSectorSize {
		return BootSector{}, stageError(io.ErrUnexpectedEOF, ErrTruncatedImage, "boot sector has %d bytes", len(b))
	}

	le := binary.LittleEndian
	var bs BootSector
	copy(bs.JumpCode[:], b[0:3])
	copy(bs.OEMName[:], b[3:11])
	bs.SectorSize = le.Uint16(b[11:13])
	bs.SectorsPerCluster = b[13]
	bs.ReservedSectors = le.Uint16(b[14:16])
	bs.NumberOfFATs = b[16]
	bs.RootDirEntries = le.Uint16(b[17:19])
	bs.TotalSectorsShort = le.Uint16(b[19:21])
	bs.MediaDescriptor = b[21]
	bs.FATSizeSectors = le.Uint16(b[22:24])
	bs.SectorsPerTrack = le.Uint16(b[24:26])
	bs.NumberOfHeads = le.Uint16(b[26:28])
	bs.HiddenSectors = le.Uint32(b[28:32])
	bs.TotalSectorsLong = le.Uint32(b[32:36])
	bs.DriveNumber = b[36]
	bs.CurrentHead = b[37]
	bs.BootSignature = b[38]
	bs.VolumeID = le.Uint32(b[39:43])
	copy(bs.VolumeLabel[:], b[43:54])
	copy(bs.FSTypeTag[:], b[54:62])
	// 448 bytes of boot code follow.
	bs.BootSectorSignature = le.Uint16(b[510:512])

	if err := bs.validate(); err != nil {
		return BootSector{}, err
	}
	return bs, nil
}

// validate checks the geometry all derived offsets depend on.
func (bs BootSector) validate() error {
	if bs.SectorSize == 0 {
		return stageError(nil, ErrInvalidBootSector, "sector size is 0")
	}
	// A power of two has exactly one bit set.
	if bs.SectorSize&(bs.SectorSize-1) != 0 {
		return stageError(nil, ErrInvalidBootSector, "sector size %d is no power of two", bs.SectorSize)
	}
	if bs.SectorsPerCluster == 0 {
		return stageError(nil, ErrInvalidBootSector, "sectors per cluster is 0")
	}
	return nil
}

// ReadBootSector reads the boot sector of the filesystem starting at base.
func ReadBootSector(r io.ReaderAt, base int64) (BootSector, error) {
	buf := make([]byte, bootSectorSize)
	n, err := r.ReadAt(buf, base)
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return BootSector{}, stageError(err, ErrTruncatedImage, "boot sector at offset %#x: read %d of %d bytes", base, n, len(buf))
	}
	return ParseBootSector(buf)
}

// TotalSectors returns the number of sectors of the filesystem.
// The long form is authoritative when the short form is zero.
func (bs BootSector) TotalSectors() uint32 {
	if bs.TotalSectorsShort != 0 {
		return uint32(bs.TotalSectorsShort)
	}
	return bs.TotalSectorsLong
}

// ClusterSize returns the size of a cluster in bytes.
func (bs BootSector) ClusterSize() int64 {
	return int64(bs.SectorsPerCluster) * int64(bs.SectorSize)
}

// Label returns the volume label without padding.
func (bs BootSector) Label() string {
	return strings.TrimRight(string(bs.VolumeLabel[:]), " \x00")
}

// FSType returns the filesystem type tag without padding, usually "FAT16".
func (bs BootSector) FSType() string {
	return strings.TrimRight(string(bs.FSTypeTag[:]), " \x00")
}

// OEM returns the OEM name without padding.
func (bs BootSector) OEM() string {
	return strings.TrimRight(string(bs.OEMName[:]), " \x00")
}
