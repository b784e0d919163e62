package daterange

import (
	"testing"
	"time"
)

func TestSelectionTransitions(t *testing.T) {
	now := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)

	sel := NewSelection(now)
	if sel.Mode() != Last7Days {
		t.Fatalf("initial mode = %s, want %s", sel.Mode(), Last7Days)
	}
	want, _ := ResolvePreset(Last7Days, now)
	if sel.Range() != want {
		t.Fatalf("initial range = %s, want %s", sel.Range(), want)
	}

	sel30, err := sel.WithPreset(Last30Days, now)
	if err != nil {
		t.Fatalf("WithPreset: %v", err)
	}
	if sel30.Mode() != Last30Days {
		t.Fatalf("mode = %s, want %s", sel30.Mode(), Last30Days)
	}
	if sel.Mode() != Last7Days {
		t.Fatal("original selection must not change")
	}

	edited := sel30.WithStart(time.Date(2024, 8, 1, 13, 0, 0, 0, time.UTC))
	if !edited.IsCustom() {
		t.Fatal("editing a bound should switch to custom")
	}
	if !edited.Range().End().Equal(sel30.Range().End()) {
		t.Fatal("editing start should keep end")
	}
	assertStartOfDay(t, edited.Range().Start())

	edited = edited.WithEnd(time.Date(2024, 8, 5, 1, 0, 0, 0, time.UTC))
	if !edited.IsCustom() {
		t.Fatal("should stay custom")
	}
	assertEndOfDay(t, edited.Range().End())
	if edited.Range().Days() != 5 {
		t.Fatalf("Days() = %d, want 5", edited.Range().Days())
	}

	back, err := edited.WithPreset(YearToDate, now)
	if err != nil {
		t.Fatalf("WithPreset: %v", err)
	}
	if back.Mode() != YearToDate {
		t.Fatalf("mode = %s, want ytd", back.Mode())
	}
}

func TestSelectionRejectsCustomPreset(t *testing.T) {
	now := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	sel := NewSelection(now)

	got, err := sel.WithPreset(Custom, now)
	if err == nil {
		t.Fatal("expected error selecting custom as a preset")
	}
	if got != sel {
		t.Fatal("failed transition should leave the selection unchanged")
	}
}

func TestSelectionInvertedBounds(t *testing.T) {
	sel := NewSelection(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)).
		WithBounds(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if !sel.Range().Inverted() {
		t.Fatal("expected inverted range")
	}
}
