package gofat16

import (
	"encoding/binary"
	"io"
	"strings"
	"time"
)

// Attribute bits of a directory entry.
const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrDirectory   = 0x10
	AttrArchive     = 0x20
)

// Marker classifies the first name byte of a directory entry.
type Marker int

const (
	// MarkerNone is a regular entry.
	MarkerNone Marker = iota
	// MarkerEnd (0x00) ends the directory, no valid entries follow.
	MarkerEnd
	// MarkerDeleted (0xE5) is a deleted entry. Only bytes 1-7 of the name survive.
	MarkerDeleted
	// MarkerEscapedE5 (0x05) stands for a literal 0xE5 first character.
	MarkerEscapedE5
	// MarkerDot (0x2E) is the "." or ".." alias of a directory.
	MarkerDot
)

func (m Marker) String() string {
	switch m {
	case MarkerEnd:
		return "end"
	case MarkerDeleted:
		return "deleted"
	case MarkerEscapedE5:
		return "escaped"
	case MarkerDot:
		return "dot"
	}
	return "none"
}

// DirectoryEntry is a decoded 32 byte FAT16 directory record.
type DirectoryEntry struct {
	Base            [8]byte
	Ext             [3]byte
	Attributes      byte
	Reserved        [10]byte
	ModifyTime      uint16
	ModifyDate      uint16
	StartingCluster uint16
	FileSize        uint32
}

// ParseDirectoryEntry decodes a single directory record.
func ParseDirectoryEntry(b []byte) (DirectoryEntry, error) {
	if len(b) < dirEntrySize {
		return DirectoryEntry{}, stageError(io.ErrUnexpectedEOF, ErrTruncatedImage, "directory entry has %d bytes", len(b))
	}

	var e DirectoryEntry
	copy(e.Base[:], b[0:8])
	copy(e.Ext[:], b[8:11])
	e.Attributes = b[11]
	copy(e.Reserved[:], b[12:22])
	e.ModifyTime = binary.LittleEndian.Uint16(b[22:24])
	e.ModifyDate = binary.LittleEndian.Uint16(b[24:26])
	e.StartingCluster = binary.LittleEndian.Uint16(b[26:28])
	e.FileSize = binary.LittleEndian.Uint32(b[28:32])
	return e, nil
}

// MarshalBinary encodes the entry into its 32 byte on-disk form.
func (e DirectoryEntry) MarshalBinary() ([]byte, error) {
	b := make([]byte, dirEntrySize)
	copy(b[0:8], e.Base[:])
	copy(b[8:11], e.Ext[:])
	b[11] = e.Attributes
	copy(b[12:22], e.Reserved[:])
	binary.LittleEndian.PutUint16(b[22:24], e.ModifyTime)
	binary.LittleEndian.PutUint16(b[24:26], e.ModifyDate)
	binary.LittleEndian.PutUint16(b[26:28], e.StartingCluster)
	binary.LittleEndian.PutUint32(b[28:32], e.FileSize)
	return b, nil
}

// Marker classifies the first byte of the name.
func (e DirectoryEntry) Marker() Marker {
	switch e.Base[0] {
	case 0x00:
		return MarkerEnd
	case 0xE5:
		return MarkerDeleted
	case 0x05:
		return MarkerEscapedE5
	case 0x2E:
		return MarkerDot
	}
	return MarkerNone
}

// IsDir reports whether the entry is a subdirectory.
func (e DirectoryEntry) IsDir() bool {
	return e.Attributes&AttrDirectory != 0
}

// IsVolumeLabel reports whether the entry holds the volume label.
func (e DirectoryEntry) IsVolumeLabel() bool {
	return e.Attributes&AttrVolumeLabel != 0
}

// Key returns the raw 8.3 name as stored on disk.
func (e DirectoryEntry) Key() ShortName {
	var k ShortName
	copy(k[:8], e.Base[:])
	copy(k[8:], e.Ext[:])
	return k
}

// Name returns the trimmed "NAME.EXT" form of the entry.
// An escaped first character is restored to 0xE5.
func (e DirectoryEntry) Name() string {
	name := e.Base
	if e.Marker() == MarkerEscapedE5 {
		name[0] = 0xE5
	}
	return joinName(name[:], e.Ext[:])
}

// DisplayName renders the name the way a listing shows it.
// Deleted entries lose their first character, which is shown as '?'.
func (e DirectoryEntry) DisplayName() string {
	if e.Marker() == MarkerDeleted {
		return "?" + joinName(e.Base[1:], e.Ext[:])
	}
	return e.Name()
}

func joinName(name, ext []byte) string {
	n := strings.TrimRight(string(name), " ")
	x := strings.TrimRight(string(ext), " ")
	if x == "" {
		return n
	}
	return n + "." + x
}

// Stamp returns the raw modification date and time fields.
func (e DirectoryEntry) Stamp() Stamp {
	return UnpackStamp(e.ModifyDate, e.ModifyTime)
}

// ModTime returns the modification time or time.Time{} if the date is invalid.
func (e DirectoryEntry) ModTime() time.Time {
	return ParseDateTime(e.ModifyDate, e.ModifyTime)
}
