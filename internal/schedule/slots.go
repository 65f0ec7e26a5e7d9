// Package schedule holds the pure time arithmetic behind availability
// management: slicing a window into bookable slots and testing windows for
// overlap. Everything here is deterministic and side-effect free so it can be
// re-run for validation without touching storage.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockPattern = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)

// Slot is a half-open interval [Start, End) expressed as "HH:MM" strings.
type Slot struct {
	Start string
	End   string
}

// ParseClock converts "HH:MM" (seconds tolerated and ignored) to minutes
// since midnight.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid clock value %q, want HH:MM", s)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Canonicalize normalizes a clock string to the stored "HH:MM" form.
func Canonicalize(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// Overlaps reports whether two half-open windows share any instant. Windows
// that merely touch (a ends exactly where b starts) do not overlap.
func Overlaps(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && bFrom < aTo
}

// Generate slices the window [from, to) into consecutive slots of exactly
// duration minutes. The cursor starts at from and advances by duration while
// a full slot still fits; a trailing remainder shorter than one duration is
// dropped. The same inputs always yield the same boundaries.
func Generate(from, to string, duration int) ([]Slot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", duration)
	}
	start, err := ParseClock(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(to)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("window start %s must be before end %s", FormatClock(start), FormatClock(end))
	}

	slots := make([]Slot, 0, (end-start)/duration)
	for cursor := start; cursor+duration <= end; cursor += duration {
		slots = append(slots, Slot{
			Start: FormatClock(cursor),
			End:   FormatClock(cursor + duration),
		})
	}
	return slots, nil
}
