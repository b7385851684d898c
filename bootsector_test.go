package gofat16

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/aligator/gofat16/internal/fat16test"
)

func TestParseBootSector(t *testing.T) {
	img := fat16test.New(fat16test.DefaultGeometry(), 0, 0)
	sector := img.Bytes()[:512]

	bs, err := ParseBootSector(sector)
	if err != nil {
		t.Fatalf("ParseBootSector() error = %v", err)
	}

	want := BootSector{
		JumpCode:            [3]byte{0xEB, 0x3C, 0x90},
		SectorSize:          512,
		SectorsPerCluster:   4,
		ReservedSectors:     1,
		NumberOfFATs:        2,
		RootDirEntries:      512,
		TotalSectorsShort:   8192,
		MediaDescriptor:     0xF8,
		FATSizeSectors:      32,
		SectorsPerTrack:     32,
		NumberOfHeads:       4,
		DriveNumber:         0x80,
		BootSignature:       0x29,
		VolumeID:            0x1234ABCD,
		BootSectorSignature: 0xAA55,
	}
	copy(want.OEMName[:], "gofat16 ")
	copy(want.VolumeLabel[:], "TESTVOL    ")
	copy(want.FSTypeTag[:], "FAT16   ")

	if bs != want {
		t.Errorf("ParseBootSector() = %+v, want %+v", bs, want)
	}
	if bs.Label() != "TESTVOL" {
		t.Errorf("Label() = %q, want %q", bs.Label(), "TESTVOL")
	}
	if bs.FSType() != "FAT16" {
		t.Errorf("FSType() = %q, want %q", bs.FSType(), "FAT16")
	}
	if bs.OEM() != "gofat16" {
		t.Errorf("OEM() = %q, want %q", bs.OEM(), "gofat16")
	}
	if bs.ClusterSize() != 2048 {
		t.Errorf("ClusterSize() = %d, want 2048", bs.ClusterSize())
	}
}

func TestParseBootSector_Invalid(t *testing.T) {
	valid := fat16test.New(fat16test.DefaultGeometry(), 0, 0).Bytes()[:512]

	tests := []struct {
		name    string
		modify  func(b []byte) []byte
		wantErr error
	}{
		{
			name:    "too short",
			modify:  func(b []byte) []byte { return b[:511] },
			wantErr: ErrTruncatedImage,
		},
		{
			name: "zero sector size",
			modify: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[11:], 0)
				return b
			},
			wantErr: ErrInvalidBootSector,
		},
		{
			name: "sector size no power of two",
			modify: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[11:], 500)
				return b
			},
			wantErr: ErrInvalidBootSector,
		},
		{
			name: "zero sectors per cluster",
			modify: func(b []byte) []byte {
				b[13] = 0
				return b
			},
			wantErr: ErrInvalidBootSector,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.modify(append([]byte(nil), valid...))
			if _, err := ParseBootSector(b); !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseBootSector() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadBootSector_Truncated(t *testing.T) {
	_, err := ReadBootSector(bytes.NewReader(make([]byte, 1000)), 512)
	if !errors.Is(err, ErrTruncatedImage) {
		t.Errorf("ReadBootSector() error = %v, want ErrTruncatedImage", err)
	}
}

func TestBootSector_TotalSectors(t *testing.T) {
	tests := []struct {
		name string
		bs   BootSector
		want uint32
	}{
		{name: "short form", bs: BootSector{TotalSectorsShort: 1000, TotalSectorsLong: 5}, want: 1000},
		{name: "long form if short is zero", bs: BootSector{TotalSectorsLong: 200000}, want: 200000},
		{name: "none", bs: BootSector{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bs.TotalSectors(); got != tt.want {
				t.Errorf("TotalSectors() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name string
		base int64
		bs   BootSector
		want Layout
	}{
		{
			name: "partition at sector 2048",
			base: 2048 * 512,
			bs: BootSector{
				SectorSize:        512,
				SectorsPerCluster: 4,
				ReservedSectors:   1,
				NumberOfFATs:      2,
				FATSizeSectors:    32,
				RootDirEntries:    512,
			},
			want: Layout{
				Base:         1048576,
				FATStart:     1048576 + 512,
				RootDirStart: 1048576 + 512 + 32*2*512,
				DataStart:    1048576 + 512 + 32*2*512 + 512*32,
				ClusterSize:  2048,
			},
		},
		{
			name: "superfloppy with more reserved sectors and 4K sectors",
			base: 0,
			bs: BootSector{
				SectorSize:        4096,
				SectorsPerCluster: 1,
				ReservedSectors:   4,
				NumberOfFATs:      1,
				FATSizeSectors:    3,
				RootDirEntries:    128,
			},
			want: Layout{
				FATStart:     4 * 4096,
				RootDirStart: 4*4096 + 3*4096,
				DataStart:    7*4096 + 128*32,
				ClusterSize:  4096,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLayout(tt.base, tt.bs)
			if got != tt.want {
				t.Errorf("NewLayout() = %+v, want %+v", got, tt.want)
			}

			if got.DataStart != got.RootDirStart+int64(tt.bs.RootDirEntries)*32 {
				t.Errorf("DataStart %d != RootDirStart + entries*32", got.DataStart)
			}
			if got.RootDirStart < got.FATStart+int64(tt.bs.FATSizeSectors)*int64(tt.bs.NumberOfFATs)*int64(tt.bs.SectorSize) {
				t.Errorf("RootDirStart %d overlaps the FATs", got.RootDirStart)
			}
			if got.ClusterOffset(2) != got.DataStart {
				t.Errorf("ClusterOffset(2) = %d, want DataStart %d", got.ClusterOffset(2), got.DataStart)
			}
			if got.ClusterOffset(5)-got.ClusterOffset(4) != got.ClusterSize {
				t.Errorf("clusters are not ClusterSize apart")
			}
			if got.FATEntryOffset(3) != got.FATStart+6 {
				t.Errorf("FATEntryOffset(3) = %d, want %d", got.FATEntryOffset(3), got.FATStart+6)
			}
		})
	}
}

// The layout must match the offsets a FAT16 writer puts the regions at.
func TestNewLayout_MatchesImage(t *testing.T) {
	img := fat16test.New(fat16test.DefaultGeometry(), 63, PartitionTypeFAT16Small)
	vol := testingOpen(t, img.Reader())

	l := vol.Layout()
	if l.FATStart != img.FATStart() || l.RootDirStart != img.RootDirStart() || l.DataStart != img.DataStart() {
		t.Errorf("Layout() = %+v, image has FAT %d root %d data %d", l, img.FATStart(), img.RootDirStart(), img.DataStart())
	}
}
