package gofat16

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aligator/gofat16/internal/fat16test"
	"github.com/google/go-cmp/cmp"
)

func TestParsePartitionEntry(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    PartitionEntry
		wantErr error
	}{
		{
			name: "FAT16 partition at sector 2048",
			input: []byte{
				0x80, 0x20, 0x21, 0x00, 0x06, 0xFE, 0xFF, 0xFF,
				0x00, 0x08, 0x00, 0x00, 0x00, 0x20, 0x00, 0x00,
			},
			want: PartitionEntry{
				BootIndicator: 0x80,
				StartCHS:      [3]byte{0x20, 0x21, 0x00},
				Type:          0x06,
				EndCHS:        [3]byte{0xFE, 0xFF, 0xFF},
				StartSector:   2048,
				LengthSectors: 8192,
			},
		},
		{
			name:    "too short",
			input:   make([]byte, 15),
			wantErr: ErrTruncatedImage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePartitionEntry(tt.input)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("ParsePartitionEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePartitionEntry() mismatch (-want +got):\n%s", diff)
			}
			if tt.wantErr == nil {
				if !got.Bootable() {
					t.Errorf("Bootable() = false, want true")
				}
				if got.Offset() != 2048*512 {
					t.Errorf("Offset() = %d, want %d", got.Offset(), 2048*512)
				}
			}
		})
	}
}

func TestIsFAT16Type(t *testing.T) {
	for typ := 0; typ < 256; typ++ {
		want := typ == 4 || typ == 6 || typ == 14
		if got := IsFAT16Type(byte(typ)); got != want {
			t.Errorf("IsFAT16Type(%#02x) = %v, want %v", typ, got, want)
		}
	}
}

func TestFindFAT16Partition(t *testing.T) {
	tests := []struct {
		name      string
		types     [4]byte
		wantIndex int
		wantErr   error
	}{
		{name: "first slot", types: [4]byte{0x06, 0, 0, 0}, wantIndex: 0},
		{name: "after a linux partition", types: [4]byte{0x83, 0x0E, 0, 0}, wantIndex: 1},
		{name: "first match wins", types: [4]byte{0x83, 0x0B, 0x04, 0x06}, wantIndex: 2},
		{name: "no FAT16 partition", types: [4]byte{0x83, 0x0B, 0x0C, 0x07}, wantIndex: -1, wantErr: ErrPartitionNotFound},
		{name: "empty table", types: [4]byte{}, wantIndex: -1, wantErr: ErrPartitionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries [4]PartitionEntry
			for i, typ := range tt.types {
				entries[i] = PartitionEntry{Type: typ, StartSector: uint32(100 * (i + 1))}
			}

			idx, e, err := FindFAT16Partition(entries)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("FindFAT16Partition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if idx != tt.wantIndex {
				t.Errorf("FindFAT16Partition() index = %d, want %d", idx, tt.wantIndex)
			}
			if idx >= 0 && e != entries[idx] {
				t.Errorf("FindFAT16Partition() entry = %+v, want %+v", e, entries[idx])
			}
		})
	}
}

func TestReadPartitionTable(t *testing.T) {
	img := fat16test.New(fat16test.DefaultGeometry(), 2048, PartitionTypeFAT16)
	img.SetPartition(2, 0x83, 20000, 100)

	entries, err := ReadPartitionTable(img.Reader())
	if err != nil {
		t.Fatalf("ReadPartitionTable() error = %v", err)
	}
	if entries[0].Type != PartitionTypeFAT16 || entries[0].StartSector != 2048 || entries[0].LengthSectors != 8192 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1] != (PartitionEntry{}) {
		t.Errorf("entry 1 = %+v, want empty", entries[1])
	}
	if entries[2].Type != 0x83 || entries[2].StartSector != 20000 {
		t.Errorf("entry 2 = %+v", entries[2])
	}
	if !HasMBRSignature(img.Reader()) {
		t.Errorf("HasMBRSignature() = false, want true")
	}

	_, err = ReadPartitionTable(bytes.NewReader(make([]byte, 0x1BE+20)))
	if !errors.Is(err, ErrTruncatedImage) {
		t.Errorf("ReadPartitionTable() on a short image error = %v, want ErrTruncatedImage", err)
	}
	if HasMBRSignature(bytes.NewReader(make([]byte, 100))) {
		t.Errorf("HasMBRSignature() on a short image = true, want false")
	}
}
