// Package daterange derives concrete, day-aligned time windows from named
// presets or user-edited bounds.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Preset names a pre-computed range shortcut.
type Preset string

const (
	Last7Days  Preset = "last7days"
	Last30Days Preset = "last30days"
	Last90Days Preset = "last90days"
	YearToDate Preset = "ytd"

	// Custom is the state produced by editing either bound directly.
	// It cannot be resolved as a preset.
	Custom Preset = "custom"
)

// Default is the preset applied when nothing has been selected yet.
const Default = Last7Days

var (
	ErrUnknownPreset = errors.New("unknown range preset")
	ErrNotAPreset    = errors.New("custom is not a selectable preset")
)

// lookback holds the number of calendar days subtracted from the end bound.
var lookback = map[Preset]int{
	Last7Days:  7,
	Last30Days: 30,
	Last90Days: 90,
}

// Presets lists the selectable presets in display order.
func Presets() []Preset {
	return []Preset{Last7Days, Last30Days, Last90Days, YearToDate}
}

// ParsePreset maps user input onto a Preset. Matching is case-insensitive.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Last7Days, Last30Days, Last90Days, YearToDate, Custom:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
	}
}

// Range is an immutable pair of instants. Start may be after End when the
// caller supplied inverted custom bounds.
type Range struct {
	start time.Time
	end   time.Time
}

// New builds a Range from raw bounds without normalizing them.
func New(start, end time.Time) Range {
	return Range{start: start, end: end}
}

func (r Range) Start() time.Time { return r.start }
func (r Range) End() time.Time   { return r.end }

// IsZero reports whether both bounds are unset.
func (r Range) IsZero() bool { return r.start.IsZero() && r.end.IsZero() }

// Inverted reports whether the start bound lies after the end bound.
func (r Range) Inverted() bool { return r.start.After(r.end) }

// Contains reports whether t falls within the inclusive bounds.
// It is false for every t on an inverted range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.start) && !t.After(r.end)
}

// Days returns the number of calendar days the range touches, or 0 when
// inverted.
func (r Range) Days() int {
	if r.Inverted() {
		return 0
	}
	return int(dayNumber(r.end)-dayNumber(r.start)) + 1
}

// dayNumber numbers t's calendar date (in t's location) as days since the
// Unix epoch. Noon UTC keeps zone offsets and DST out of the arithmetic.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return (time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Unix() - 12*60*60) / (24 * 60 * 60)
}

func (r Range) String() string {
	return r.start.Format(time.RFC3339Nano) + "/" + r.end.Format(time.RFC3339Nano)
}

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ResolvePreset computes the range for p as seen at now. The end bound is
// the end of now's day; the start bound is aligned to the start of a day.
func ResolvePreset(p Preset, now time.Time) (Range, error) {
	end := EndOfDay(now)

	switch p {
	case Last7Days, Last30Days, Last90Days:
		start := StartOfDay(end.AddDate(0, 0, -lookback[p]))
		return Range{start: start, end: end}, nil
	case YearToDate:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{start: start, end: end}, nil
	case Custom:
		return Range{}, ErrNotAPreset
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
	}
}

// ResolveCustom aligns user-entered bounds to day boundaries. Ordering is
// not enforced: a start after the end yields an inverted range.
func ResolveCustom(start, end time.Time) Range {
	return Range{start: StartOfDay(start), end: EndOfDay(end)}
}
