package model

import (
	"reflect"
	"testing"
)

func TestResolveDefaultsOnNilToggles(t *testing.T) {
	var toggles *FeatureToggles
	got := toggles.Resolve()

	want := Resolved{
		MaxWorktimeInRowEnabled:             true,
		MaxWorktimeInRowHours:               8,
		BalanceWorkedHours:                  false,
		BalanceWorkedHoursWeight:            2,
		BalanceWorkedHoursMaxSpanMultiplier: 1.5,
	}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveDefaultsOnEmptyToggles(t *testing.T) {
	toggles := &FeatureToggles{}
	got := toggles.Resolve()

	if !got.MaxWorktimeInRowEnabled || got.MaxWorktimeInRowHours != 8 {
		t.Errorf("empty toggles should still apply max-worktime defaults, got %+v", got)
	}
	if got.BalanceWorkedHours {
		t.Errorf("balance_worked_hours should default to false")
	}
}

func TestResolveOverridesExplicitFields(t *testing.T) {
	enabled := false
	hours := 10
	balance := true
	weight := 5

	toggles := &FeatureToggles{
		MaxWorktimeInRowEnabled: &enabled,
		MaxWorktimeInRowHours:   &hours,
		BalanceWorkedHours:      &balance,
		BalanceWorkedHoursWeight: &weight,
	}
	got := toggles.Resolve()

	if got.MaxWorktimeInRowEnabled {
		t.Errorf("explicit false should override the true default")
	}
	if got.MaxWorktimeInRowHours != 10 {
		t.Errorf("MaxWorktimeInRowHours = %d, want 10", got.MaxWorktimeInRowHours)
	}
	if !got.BalanceWorkedHours {
		t.Errorf("explicit true should override the false default")
	}
	if got.BalanceWorkedHoursWeight != 5 {
		t.Errorf("BalanceWorkedHoursWeight = %d, want 5", got.BalanceWorkedHoursWeight)
	}
	// Untouched fields keep their defaults.
	if got.BalanceWorkedHoursMaxSpanMultiplier != 1.5 {
		t.Errorf("BalanceWorkedHoursMaxSpanMultiplier = %v, want 1.5 (default preserved)", got.BalanceWorkedHoursMaxSpanMultiplier)
	}
}

func TestEnabledNamesFixedOrder(t *testing.T) {
	hardEnabled := true
	softEnabled := true
	balance := true

	r := (&FeatureToggles{
		MinRestAfterShiftHardEnabled: &hardEnabled,
		MinRestAfterShiftSoftEnabled: &softEnabled,
		BalanceWorkedHours:           &balance,
	}).Resolve()

	got := r.EnabledNames()
	want := []string{
		"max_worktime_in_row",
		"min_rest_after_shift_hard",
		"min_rest_after_shift_soft",
		"balance_worked_hours",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnabledNames() = %v, want %v", got, want)
	}
}

func TestEnabledNamesEmptyWhenAllDisabled(t *testing.T) {
	maxOff := false
	r := (&FeatureToggles{MaxWorktimeInRowEnabled: &maxOff}).Resolve()

	got := r.EnabledNames()
	if len(got) != 0 {
		t.Errorf("EnabledNames() = %v, want empty", got)
	}
}
