package timeutil

import (
	"testing"

	"github.com/paiban/paiban-core/pkg/engine/model"
)

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseMinutes(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMinutes(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMinutes(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDurationWrapsPastMidnight(t *testing.T) {
	cases := []struct {
		name  string
		shift model.Shift
		want  int
	}{
		{"same-day", model.Shift{Start: "09:00", End: "17:00"}, 480},
		{"overnight", model.Shift{Start: "22:00", End: "06:00"}, 480},
		{"full-day", model.Shift{Start: "08:00", End: "08:00"}, 1440},
	}
	for _, c := range cases {
		got, err := Duration(c.shift)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: Duration() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestAbsStartAdvancesByHorizonDay(t *testing.T) {
	horizon := model.Horizon{Start: "2026-01-01", Days: 3}
	ord, err := HorizonStartOrdinal(horizon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day0 := model.Shift{Date: "2026-01-01", Start: "08:00", End: "16:00"}
	day1 := model.Shift{Date: "2026-01-02", Start: "08:00", End: "16:00"}

	start0, err := AbsStart(day0, ord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start1, err := AbsStart(day1, ord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start0 != 480 {
		t.Errorf("day0 AbsStart = %d, want 480", start0)
	}
	if start1-start0 != minutesPerDay {
		t.Errorf("day1-day0 AbsStart delta = %d, want %d", start1-start0, minutesPerDay)
	}
}

func TestBuildArraysOrdersBySortKey(t *testing.T) {
	horizon := model.Horizon{Start: "2026-01-01", Days: 2}
	shifts := []model.Shift{
		{Day: "Fri", Date: "2026-01-02", Type: "night", Start: "22:00", End: "06:00"},
		{Day: "Thu", Date: "2026-01-01", Type: "day", Start: "08:00", End: "16:00"},
		{Day: "Thu", Date: "2026-01-01", Type: "evening", Start: "16:00", End: "22:00"},
	}

	arrays, err := BuildArrays(horizon, shifts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 0}
	for i, idx := range arrays.Sorted {
		if idx != want[i] {
			t.Fatalf("Sorted = %v, want order %v", arrays.Sorted, want)
		}
	}
	if arrays.EndAbs[1] != arrays.StartAbs[1]+arrays.Durations[1] {
		t.Errorf("EndAbs inconsistent with StartAbs+Durations")
	}
}
