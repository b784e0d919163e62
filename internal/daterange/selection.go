package daterange

import "time"

// Selection is the current range choice of a dashboard session. It is a
// value: every transition returns a new Selection.
//
// States are preset-selected(p) and custom. Applying a preset always moves
// to that preset; editing either bound always moves to custom. Nothing moves
// back to a preset implicitly.
type Selection struct {
	mode Preset
	rng  Range
}

// NewSelection returns the initial selection, the Default preset at now.
func NewSelection(now time.Time) Selection {
	// Default is always resolvable.
	r, _ := ResolvePreset(Default, now)
	return Selection{mode: Default, rng: r}
}

// Mode returns the active preset, or Custom.
func (s Selection) Mode() Preset { return s.mode }

// Range returns the resolved range of the selection.
func (s Selection) Range() Range { return s.rng }

// IsCustom reports whether a bound has been edited directly.
func (s Selection) IsCustom() bool { return s.mode == Custom }

// WithPreset activates p at now.
func (s Selection) WithPreset(p Preset, now time.Time) (Selection, error) {
	r, err := ResolvePreset(p, now)
	if err != nil {
		return s, err
	}
	return Selection{mode: p, rng: r}, nil
}

// WithStart replaces the start bound and switches to custom mode.
func (s Selection) WithStart(start time.Time) Selection {
	return Selection{mode: Custom, rng: ResolveCustom(start, s.rng.end)}
}

// WithEnd replaces the end bound and switches to custom mode.
func (s Selection) WithEnd(end time.Time) Selection {
	return Selection{mode: Custom, rng: ResolveCustom(s.rng.start, end)}
}

// WithBounds replaces both bounds and switches to custom mode.
func (s Selection) WithBounds(start, end time.Time) Selection {
	return Selection{mode: Custom, rng: ResolveCustom(start, end)}
}
