// Package timeutil implements the solver engine's temporal reasoning:
// parsing HH:MM clock values, shift durations and absolute minute
// offsets relative to a horizon start, ordering keys, and label
// formatting.
package timeutil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/errors"
)

const minutesPerDay = 24 * 60

// ParseMinutes parses an "HH:MM" 24-hour clock value into minutes since
// midnight. Fails with a validation error unless the format is exactly
// HH:MM with hours 0-23 and minutes 0-59.
func ParseMinutes(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid time value %q: expected HH:MM", value))
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 || len(parts[0]) != 2 {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid time value %q: hours out of range", value))
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid time value %q: minutes out of range", value))
	}
	return hours*60 + minutes, nil
}

// Duration returns a shift's length in minutes, wrapping past midnight
// when end < start and treating end == start as a full 24h shift.
func Duration(s model.Shift) (int, error) {
	start, err := ParseMinutes(s.Start)
	if err != nil {
		return 0, err
	}
	end, err := ParseMinutes(s.End)
	if err != nil {
		return 0, err
	}
	switch {
	case end > start:
		return end - start, nil
	case end < start:
		return end + minutesPerDay - start, nil
	default:
		return minutesPerDay, nil
	}
}

// dateOrdinal returns a proleptic-Gregorian ordinal day number matching
// Python's date.toordinal(), comparable across dates for day-offset math.
func dateOrdinal(isoDate string) (int, error) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid date value %q: expected YYYY-MM-DD", isoDate))
	}
	return int(t.Unix()/86400) + 719163, nil
}

// AbsStart returns a shift's absolute start minute relative to the
// horizon's start date.
func AbsStart(s model.Shift, horizonStartOrd int) (int, error) {
	ord, err := dateOrdinal(s.Date)
	if err != nil {
		return 0, err
	}
	startMin, err := ParseMinutes(s.Start)
	if err != nil {
		return 0, err
	}
	return (ord-horizonStartOrd)*minutesPerDay + startMin, nil
}

// AbsEnd returns a shift's absolute end minute relative to the
// horizon's start date.
func AbsEnd(s model.Shift, horizonStartOrd int) (int, error) {
	start, err := AbsStart(s, horizonStartOrd)
	if err != nil {
		return 0, err
	}
	dur, err := Duration(s)
	if err != nil {
		return 0, err
	}
	return start + dur, nil
}

// HorizonStartOrdinal returns the ordinal of a horizon's start date.
func HorizonStartOrdinal(h model.Horizon) (int, error) {
	return dateOrdinal(h.Start)
}

// OrderKey is the total order on shifts: (date ordinal, start minutes, type).
type OrderKey struct {
	DateOrdinal  int
	StartMinutes int
	Type         string
}

// Less reports whether k sorts before other.
func (k OrderKey) Less(other OrderKey) bool {
	if k.DateOrdinal != other.DateOrdinal {
		return k.DateOrdinal < other.DateOrdinal
	}
	if k.StartMinutes != other.StartMinutes {
		return k.StartMinutes < other.StartMinutes
	}
	return k.Type < other.Type
}

// ComputeOrderKey returns the ordering key for a shift.
func ComputeOrderKey(s model.Shift) (OrderKey, error) {
	ord, err := dateOrdinal(s.Date)
	if err != nil {
		return OrderKey{}, err
	}
	startMin, err := ParseMinutes(s.Start)
	if err != nil {
		return OrderKey{}, err
	}
	return OrderKey{DateOrdinal: ord, StartMinutes: startMin, Type: s.Type}, nil
}

// Label renders a shift's human-readable label.
func Label(s model.Shift) string {
	return fmt.Sprintf("%s %s %s (%s-%s)", s.Day, s.Date, s.Type, s.Start, s.End)
}

// Meta is the structured shift metadata used in responses and
// diagnostic reasons.
type Meta struct {
	Day   string `json:"day"`
	Date  string `json:"date"`
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ToMeta builds a Meta record from a shift.
func ToMeta(s model.Shift) Meta {
	return Meta{Day: s.Day, Date: s.Date, Type: s.Type, Start: s.Start, End: s.End}
}

// Arrays holds per-shift precomputed temporal arrays indexed by input
// position, following the same dense indexing discipline used throughout
// the engine.
type Arrays struct {
	StartAbs  []int
	EndAbs    []int
	Durations []int
	Order     []OrderKey
	// Sorted holds shift indices sorted by Order, ascending.
	Sorted []int
}

// BuildArrays computes per-shift absolute-minute, duration, and
// ordering arrays for every shift in the request, plus the input
// indices sorted by ordering key.
func BuildArrays(h model.Horizon, shifts []model.Shift) (Arrays, error) {
	horizonOrd, err := HorizonStartOrdinal(h)
	if err != nil {
		return Arrays{}, err
	}
	n := len(shifts)
	a := Arrays{
		StartAbs:  make([]int, n),
		EndAbs:    make([]int, n),
		Durations: make([]int, n),
		Order:     make([]OrderKey, n),
		Sorted:    make([]int, n),
	}
	for i, s := range shifts {
		dur, err := Duration(s)
		if err != nil {
			return Arrays{}, err
		}
		start, err := AbsStart(s, horizonOrd)
		if err != nil {
			return Arrays{}, err
		}
		key, err := ComputeOrderKey(s)
		if err != nil {
			return Arrays{}, err
		}
		a.Durations[i] = dur
		a.StartAbs[i] = start
		a.EndAbs[i] = start + dur
		a.Order[i] = key
		a.Sorted[i] = i
	}
	sort.Slice(a.Sorted, func(i, j int) bool {
		return a.Order[a.Sorted[i]].Less(a.Order[a.Sorted[j]])
	})
	return a, nil
}
