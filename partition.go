package gofat16

import (
	"encoding/binary"
	"io"
)

const (
	// partitionTableOffset is the position of the first of the four MBR partition records.
	partitionTableOffset = 0x1BE
	partitionEntrySize   = 16
	partitionCount       = 4

	mbrSignatureOffset = 510
	mbrSignature       = 0xAA55

	// mbrSectorSize is the sector size partition start sectors are counted in.
	mbrSectorSize = 512
)

// Partition types which may hold a FAT16 filesystem.
const (
	PartitionTypeFAT16Small = 0x04 // FAT16 with less than 32 MiB
	PartitionTypeFAT16      = 0x06 // FAT16B
	PartitionTypeFAT16LBA   = 0x0E // FAT16B addressed by LBA
)

// PartitionEntry is one of the four 16 byte records of an MBR partition table.
type PartitionEntry struct {
	BootIndicator byte
	StartCHS      [3]byte
	Type          byte
	EndCHS        [3]byte
	StartSector   uint32
	LengthSectors uint32
}

// ParsePartitionEntry decodes a single partition record.
func ParsePartitionEntry(b []byte) (PartitionEntry, error) {
	if len(b) < partitionEntrySize {
		return PartitionEntry{}, stageError(io.ErrUnexpectedEOF, ErrTruncatedImage, "partition entry has %d bytes", len(b))
	}

	var e PartitionEntry
	e.BootIndicator = b[0]
	copy(e.StartCHS[:], b[1:4])
	e.Type = b[4]
	copy(e.EndCHS[:], b[5:8])
	e.StartSector = binary.LittleEndian.Uint32(b[8:12])
	e.LengthSectors = binary.LittleEndian.Uint32(b[12:16])
	return e, nil
}

// Offset returns the absolute byte offset of the partition in the image.
func (e PartitionEntry) Offset() int64 {
	return int64(e.StartSector) * mbrSectorSize
}

// Bootable reports whether the partition is marked active.
func (e PartitionEntry) Bootable() bool {
	return e.BootIndicator == 0x80
}

// IsFAT16Type reports whether the partition type code denotes FAT16.
func IsFAT16Type(t byte) bool {
	switch t {
	case PartitionTypeFAT16Small, PartitionTypeFAT16, PartitionTypeFAT16LBA:
		return true
	}
	return false
}

// ReadPartitionTable reads the four partition records of the MBR.
func ReadPartitionTable(r io.ReaderAt) ([partitionCount]PartitionEntry, error) {
	var entries [partitionCount]PartitionEntry

	buf := make([]byte, partitionCount*partitionEntrySize)
	n, err := r.ReadAt(buf, partitionTableOffset)
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return entries, stageError(err, ErrTruncatedImage, "partition table: read %d of %d bytes", n, len(buf))
	}

	for i := range entries {
		// The slice always has the full record size, so no error is possible.
		entries[i], _ = ParsePartitionEntry(buf[i*partitionEntrySize:])
	}
	return entries, nil
}

// FindFAT16Partition returns the index and record of the first partition
// with a FAT16 type code.
func FindFAT16Partition(entries [partitionCount]PartitionEntry) (int, PartitionEntry, error) {
	for i, e := range entries {
		if IsFAT16Type(e.Type) {
			return i, e, nil
		}
	}
	types := make([]byte, 0, partitionCount)
	for _, e := range entries {
		types = append(types, e.Type)
	}
	return -1, PartitionEntry{}, stageError(nil, ErrPartitionNotFound, "partition types % X", types)
}

// HasMBRSignature reports whether the first sector ends with the 0x55AA boot signature.
func HasMBRSignature(r io.ReaderAt) bool {
	var sig [2]byte
	if n, _ := r.ReadAt(sig[:], mbrSignatureOffset); n < len(sig) {
		return false
	}
	return binary.LittleEndian.Uint16(sig[:]) == mbrSignature
}
