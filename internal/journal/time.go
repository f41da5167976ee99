package journal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InvalidTimeError describes a time value that matched the digit-group
// shape but failed validation.
type InvalidTimeError struct {
	Value  string
	Reason string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time value %q: %s", e.Value, e.Reason)
}

// LooseTime is a clock time as written in the document. The raw text is
// kept verbatim; digit groups are parsed first and range-validated only
// when the value is needed, so an out-of-range time stays representable.
type LooseTime struct {
	raw string
}

// NewLooseTime wraps raw text as a loose time value.
func NewLooseTime(raw string) LooseTime { return LooseTime{raw: raw} }

// Raw returns the text exactly as written.
func (t LooseTime) Raw() string { return t.raw }

func (t LooseTime) String() string { return t.raw }

// Equal reports whether two loose times were written identically.
func (t LooseTime) Equal(o LooseTime) bool { return t.raw == o.raw }

// Minutes returns the value as minutes since midnight. Hours are valid in
// 0-23 and minutes in 0-59; anything else yields an InvalidTimeError
// naming the reason.
func (t LooseTime) Minutes() (int, error) {
	parts := strings.Split(t.raw, ":")
	if len(parts) != 2 {
		return 0, &InvalidTimeError{Value: t.raw, Reason: `the time value is not in format "HH:MM"`}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &InvalidTimeError{Value: t.raw, Reason: "the hour is not a number"}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &InvalidTimeError{Value: t.raw, Reason: "the minute is not a number"}
	}
	if h < 0 || 23 < h {
		return 0, &InvalidTimeError{Value: t.raw, Reason: "hour value out of range"}
	}
	if m < 0 || 59 < m {
		return 0, &InvalidTimeError{Value: t.raw, Reason: "minute value out of range"}
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes since midnight as zero-padded HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Date is a calendar date without a time zone. The zero value is not a
// meaningful date; fields are comparable with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string, calendar-validated.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At returns the UTC instant of the given minutes since midnight on d.
func (d Date) At(minutes int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, minutes, 0, 0, time.UTC)
}
