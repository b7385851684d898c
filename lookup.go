package gofat16

import (
	"strings"
)

// ShortName is a space padded 8.3 name: 8 bytes base name followed by 3 bytes extension.
type ShortName [11]byte

// NewShortName builds the lookup key for a name like "readme.txt".
// The name is uppercased and split at the first dot. The base name may have
// up to 8 bytes and the extension up to 3 bytes.
func NewShortName(name string) (ShortName, error) {
	var k ShortName
	for i := range k {
		k[i] = ' '
	}

	// The directory aliases are the only names starting with a dot.
	if name == "." || name == ".." {
		copy(k[:], name)
		return k, nil
	}

	base, ext := upperASCII(name), ""
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base, ext = base[:i], base[i+1:]
	}

	if base == "" || len(base) > 8 || len(ext) > 3 || strings.ContainsAny(ext, ". ") {
		return ShortName{}, stageError(nil, ErrInvalidName, "%q", name)
	}

	copy(k[:8], base)
	copy(k[8:], ext)

	// A real 0xE5 first character is stored escaped.
	if k[0] == 0xE5 {
		k[0] = 0x05
	}
	return k, nil
}

// upperASCII folds a-z only. Other bytes are code page characters and stay as they are.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func (k ShortName) String() string {
	return joinName(k[:8], k[8:])
}

// ScanEntries decodes the directory records in dir and calls fn for every
// record in front of the end marker, deleted ones included.
// At most limit records are visited, limit <= 0 means no limit.
// Scanning stops early when fn returns false.
func ScanEntries(dir []byte, limit int, fn func(index int, e DirectoryEntry) bool) {
	count := len(dir) / dirEntrySize
	if limit > 0 && limit < count {
		count = limit
	}

	for i := 0; i < count; i++ {
		// The slice always has the full record size, so no error is possible.
		e, _ := ParseDirectoryEntry(dir[i*dirEntrySize:])
		if e.Marker() == MarkerEnd {
			return
		}
		if !fn(i, e) {
			return
		}
	}
}

// Lookup returns the first entry of dir whose name equals key.
// Deleted entries never match. With wantDir only subdirectories match.
// It fails with ErrEntryNotFound if the end marker or limit is reached first.
func Lookup(dir []byte, limit int, key ShortName, wantDir bool) (DirectoryEntry, error) {
	var (
		found DirectoryEntry
		ok    bool
	)
	ScanEntries(dir, limit, func(_ int, e DirectoryEntry) bool {
		if e.Marker() == MarkerDeleted {
			return true
		}
		if e.Key() != key {
			return true
		}
		if wantDir && !e.IsDir() {
			return true
		}
		found, ok = e, true
		return false
	})

	if !ok {
		return DirectoryEntry{}, stageError(nil, ErrEntryNotFound, "%q", key.String())
	}
	return found, nil
}
