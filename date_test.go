package gofat16

import (
	"testing"
	"time"
)

func TestUnpackStamp(t *testing.T) {
	tests := []struct {
		name       string
		date       uint16
		time       uint16
		want       Stamp
		wantString string
	}{
		{
			name:       "seconds are shown as stored",
			date:       0x2B14,
			time:       0x5401,
			want:       Stamp{Year: 2001, Month: 8, Day: 20, Hour: 10, Minute: 32, Second: 1},
			wantString: "2001-08-20 10:32.01",
		},
		{
			name:       "end of 2020",
			date:       20890,
			time:       41936,
			want:       Stamp{Year: 2020, Month: 12, Day: 26, Hour: 20, Minute: 30, Second: 16},
			wantString: "2020-12-26 20:30.16",
		},
		{
			name:       "zero",
			want:       Stamp{Year: 1980},
			wantString: "1980-00-00 00:00.00",
		},
		{
			name:       "all bits set",
			date:       0xFFFF,
			time:       0xFFFF,
			want:       Stamp{Year: 2107, Month: 15, Day: 31, Hour: 31, Minute: 63, Second: 31},
			wantString: "2107-15-31 31:63.31",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnpackStamp(tt.date, tt.time)
			if got != tt.want {
				t.Errorf("UnpackStamp() = %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.wantString {
				t.Errorf("Stamp.String() = %q, want %q", got.String(), tt.wantString)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{name: "a normal date", input: 20890, want: time.Date(2020, 12, 26, 0, 0, 0, 0, time.UTC)},
		{name: "the first possible date", input: 0x21, want: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "day 0 is invalid", input: 20928, want: time.Time{}},
		{name: "month 0 is invalid", input: 20506, want: time.Time{}},
		{name: "month 13 rolls over", input: 20890 + 1<<5, want: time.Date(2021, 1, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{name: "a normal time", input: 41936, want: time.Date(1, 1, 1, 20, 30, 32, 0, time.UTC)},
		{name: "midnight", input: 0, want: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "out of range values stop at the end of the day", input: 0xFFFF, want: time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTime(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectoryEntry_ModTime(t *testing.T) {
	tests := []struct {
		name  string
		entry DirectoryEntry
		want  time.Time
	}{
		{
			name:  "a normal write time and date",
			entry: DirectoryEntry{ModifyTime: 41936, ModifyDate: 20890},
			want:  time.Date(2020, 12, 26, 20, 30, 32, 0, time.UTC),
		},
		{
			name:  "a zero write date results in time.Time.IsZero() == true",
			entry: DirectoryEntry{ModifyTime: 41936},
			want:  time.Time{},
		},
		{
			name:  "a zero write time results in midnight",
			entry: DirectoryEntry{ModifyDate: 20890},
			want:  time.Date(2020, 12, 26, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.ModTime(); !got.Equal(tt.want) {
				t.Errorf("ModTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
