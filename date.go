package gofat16

import (
	"fmt"
	"time"
)

// Stamp is a packed FAT date and time split into its raw fields.
// Second holds the stored 2-second count as is, not multiplied by two,
// which is what the listing shows.
type Stamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// UnpackStamp splits the packed 16 bit date and time fields of a directory entry.
//  date: bits 0-4 day, bits 5-8 month, bits 9-15 years since 1980
//  time: bits 0-4 2-second count, bits 5-10 minutes, bits 11-15 hours
func UnpackStamp(date, tm uint16) Stamp {
	return Stamp{
		Year:   1980 + int(date>>9),
		Month:  int(date>>5) & 0xF,
		Day:    int(date) & 0x1F,
		Hour:   int(tm >> 11),
		Minute: int(tm>>5) & 0x3F,
		Second: int(tm) & 0x1F,
	}
}

func (s Stamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d.%02d", s.Year, s.Month, s.Day, s.Hour, s.Minute, s.Second)
}

// ParseDate converts a packed FAT date into a time.Time at 00:00:00 UTC.
//
// Day and month 0 are invalid, in which case time.Time{} is returned so that
// time.Time.IsZero() can be used to detect it.
// A month bigger than 12 is unspecified and rolls over into the next year.
func ParseDate(input uint16) time.Time {
	dayOfMonth := input & 0x1F
	monthOfYear := input & 0x1E0 >> 5
	yearSince1980 := input & 0xFE00 >> 9

	if dayOfMonth == 0 || monthOfYear == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(yearSince1980), time.Month(monthOfYear), int(dayOfMonth), 0, 0, 0, 0, time.UTC)
}

// ParseTime converts a packed FAT time into a time.Time on January 1, year 1.
// The stored seconds have a granularity of 2 seconds.
//
// Values out of range are added to the time, but never past 23:59:59.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)
	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}

// ParseDateTime combines ParseDate and ParseTime.
// It returns time.Time{} if the date is invalid.
func ParseDateTime(date, tm uint16) time.Time {
	d := ParseDate(date)
	if d.IsZero() {
		return time.Time{}
	}
	t := ParseTime(tm)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
