// Package frequency decodes recurrence codes such as "D7" or "M1" and computes
// the next occurrence of a recurring obligation.
//
// A code is a unit letter followed by a positive count:
//
//	X  one-shot, never recurs
//	D  days
//	W  weeks
//	M  calendar months
//	Y  calendar years
package frequency

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// MaxCodeLength is the longest code accepted, matching the stored column width.
const MaxCodeLength = 8

var (
	// ErrInvalidFrequency is returned for codes with an unknown unit or a
	// count that is not a positive integer.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrNoRecurrence is returned by Next for one-shot frequencies.
	ErrNoRecurrence = errors.New("frequency does not recur")
)

// Unit is the recurrence unit of a Frequency.
type Unit byte

const (
	Once  Unit = 'X'
	Day   Unit = 'D'
	Week  Unit = 'W'
	Month Unit = 'M'
	Year  Unit = 'Y'
)

func (u Unit) valid() bool {
	switch u {
	case Once, Day, Week, Month, Year:
		return true
	default:
		return false
	}
}

// Frequency is a parsed recurrence code.
type Frequency struct {
	Unit  Unit
	Count int
}

// Parse decodes a recurrence code.
func Parse(code string) (Frequency, error) {
	if len(code) < 2 || len(code) > MaxCodeLength {
		return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
	}

	unit := Unit(code[0])
	if !unit.valid() {
		return Frequency{}, fmt.Errorf("%w: unknown unit in %q", ErrInvalidFrequency, code)
	}

	digits := code[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Frequency{}, fmt.Errorf("%w: count in %q is not a number", ErrInvalidFrequency, code)
		}
	}
	count, err := strconv.Atoi(digits)
	if err != nil || count <= 0 {
		return Frequency{}, fmt.Errorf("%w: count in %q must be positive", ErrInvalidFrequency, code)
	}

	return Frequency{Unit: unit, Count: count}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(code string) Frequency {
	f, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the canonical code, e.g. "W2".
func (f Frequency) String() string {
	if f.Unit == 0 {
		return ""
	}
	return string(rune(f.Unit)) + strconv.Itoa(f.Count)
}

// IsZero reports whether f was never set.
func (f Frequency) IsZero() bool {
	return f.Unit == 0
}

// IsOnce reports whether f is a one-shot frequency.
func (f Frequency) IsOnce() bool {
	return f.Unit == Once
}

// Validate checks a Frequency built without Parse.
func (f Frequency) Validate() error {
	if !f.Unit.valid() || f.Count <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, f.String())
	}
	return nil
}

// Next returns the occurrence following from.
//
// Days and weeks use calendar-day arithmetic. Months and years keep the day of
// month, clamped to the last day of a shorter target month (Jan 31 + M1 is the
// last day of February, Feb 29 + Y1 is Feb 28).
func (f Frequency) Next(from time.Time) (time.Time, error) {
	if err := f.Validate(); err != nil {
		return time.Time{}, err
	}

	switch f.Unit {
	case Day:
		return from.AddDate(0, 0, f.Count), nil
	case Week:
		return from.AddDate(0, 0, 7*f.Count), nil
	case Month:
		return addMonths(from, f.Count), nil
	case Year:
		return addMonths(from, 12*f.Count), nil
	default:
		return time.Time{}, ErrNoRecurrence
	}
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	idx := int(month) - 1 + months
	year += idx / 12
	target := time.Month(idx%12 + 1)

	if last := daysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalText implements encoding.TextMarshaler.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
