// Package model defines the request/response data model for the
// shift-assignment solver engine.
package model

// Horizon is the planning window: days [Start, Start+Days).
type Horizon struct {
	Start string `json:"start"` // ISO YYYY-MM-DD
	Days  int    `json:"days"`  // 1..31
}

// Employee is a schedulable worker.
type Employee struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skills []string `json:"skills,omitempty"`
}

// Shift is a dated interval requiring a number of employees.
type Shift struct {
	Day      string `json:"day"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Start    string `json:"start"` // HH:MM
	End      string `json:"end"`   // HH:MM
	Required int    `json:"required"`
	Source   string `json:"source,omitempty"`
}

// HardConstraintKind discriminates the hard-constraint variant.
type HardConstraintKind string

const (
	HardForbidShift  HardConstraintKind = "forbid_shift"
	HardRequireShift HardConstraintKind = "require_shift"
)

// HardConstraint forbids or requires an employee on every shift matching
// its (optional) filters. A nil filter field is a wildcard.
type HardConstraint struct {
	Kind       HardConstraintKind `json:"type"`
	EmployeeID string             `json:"employee_id"`
	Day        *string            `json:"day,omitempty"`
	Date       *string            `json:"date,omitempty"`
	ShiftType  *string            `json:"shift_type,omitempty"`
}

// SoftConstraintKind discriminates the soft-constraint variant.
type SoftConstraintKind string

const (
	SoftPreferAssignment SoftConstraintKind = "prefer_assignment"
	SoftAvoidAssignment  SoftConstraintKind = "avoid_assignment"
)

// SoftConstraint contributes +/-Weight per matching (employee, shift)
// pair to the objective.
type SoftConstraint struct {
	Kind       SoftConstraintKind `json:"type"`
	EmployeeID string             `json:"employee_id"`
	Day        *string            `json:"day,omitempty"`
	Date       *string            `json:"date,omitempty"`
	ShiftType  *string            `json:"shift_type,omitempty"`
	Weight     int                `json:"weight"` // 1..10000
}

// Constraints bundles the hard and soft constraint lists of a request.
type Constraints struct {
	Hard []HardConstraint `json:"hard,omitempty"`
	Soft []SoftConstraint `json:"soft,omitempty"`
}

// FeatureToggles controls default regulatory-style rules. Pointer and
// zero-value fields distinguish "not provided" from an explicit false/0
// where a default applies.
type FeatureToggles struct {
	MaxWorktimeInRowEnabled *bool `json:"max_worktime_in_row_enabled,omitempty"`
	MaxWorktimeInRowHours   *int  `json:"max_worktime_in_row_hours,omitempty"`

	MinRestAfterShiftHardEnabled *bool `json:"min_rest_after_shift_hard_enabled,omitempty"`
	MinRestAfterShiftHardHours   *int  `json:"min_rest_after_shift_hard_hours,omitempty"`

	MinRestAfterShiftSoftEnabled *bool `json:"min_rest_after_shift_soft_enabled,omitempty"`
	MinRestAfterShiftSoftHours   *int  `json:"min_rest_after_shift_soft_hours,omitempty"`
	MinRestAfterShiftSoftWeight  *int  `json:"min_rest_after_shift_soft_weight,omitempty"`

	BalanceWorkedHours                   *bool    `json:"balance_worked_hours,omitempty"`
	BalanceWorkedHoursWeight             *int     `json:"balance_worked_hours_weight,omitempty"`
	BalanceWorkedHoursMaxSpanMultiplier *float64 `json:"balance_worked_hours_max_span_multiplier,omitempty"`
}

// Resolved is FeatureToggles with every default applied, used
// throughout the engine instead of re-checking nil pointers everywhere.
type Resolved struct {
	MaxWorktimeInRowEnabled bool
	MaxWorktimeInRowHours   int

	MinRestAfterShiftHardEnabled bool
	MinRestAfterShiftHardHours   int

	MinRestAfterShiftSoftEnabled bool
	MinRestAfterShiftSoftHours   int
	MinRestAfterShiftSoftWeight  int

	BalanceWorkedHours                  bool
	BalanceWorkedHoursWeight            int
	BalanceWorkedHoursMaxSpanMultiplier float64
}

// Resolve applies the documented defaults to a (possibly nil) FeatureToggles.
func (f *FeatureToggles) Resolve() Resolved {
	r := Resolved{
		MaxWorktimeInRowEnabled:             true,
		MaxWorktimeInRowHours:               8,
		BalanceWorkedHours:                  false,
		BalanceWorkedHoursWeight:            2,
		BalanceWorkedHoursMaxSpanMultiplier: 1.5,
	}
	if f == nil {
		return r
	}
	if f.MaxWorktimeInRowEnabled != nil {
		r.MaxWorktimeInRowEnabled = *f.MaxWorktimeInRowEnabled
	}
	if f.MaxWorktimeInRowHours != nil {
		r.MaxWorktimeInRowHours = *f.MaxWorktimeInRowHours
	}
	if f.MinRestAfterShiftHardEnabled != nil {
		r.MinRestAfterShiftHardEnabled = *f.MinRestAfterShiftHardEnabled
	}
	if f.MinRestAfterShiftHardHours != nil {
		r.MinRestAfterShiftHardHours = *f.MinRestAfterShiftHardHours
	}
	if f.MinRestAfterShiftSoftEnabled != nil {
		r.MinRestAfterShiftSoftEnabled = *f.MinRestAfterShiftSoftEnabled
	}
	if f.MinRestAfterShiftSoftHours != nil {
		r.MinRestAfterShiftSoftHours = *f.MinRestAfterShiftSoftHours
	}
	if f.MinRestAfterShiftSoftWeight != nil {
		r.MinRestAfterShiftSoftWeight = *f.MinRestAfterShiftSoftWeight
	}
	if f.BalanceWorkedHours != nil {
		r.BalanceWorkedHours = *f.BalanceWorkedHours
	}
	if f.BalanceWorkedHoursWeight != nil {
		r.BalanceWorkedHoursWeight = *f.BalanceWorkedHoursWeight
	}
	if f.BalanceWorkedHoursMaxSpanMultiplier != nil {
		r.BalanceWorkedHoursMaxSpanMultiplier = *f.BalanceWorkedHoursMaxSpanMultiplier
	}
	return r
}

// EnabledNames lists the feature toggle names currently active, in a
// fixed order, for the response's enabled_feature_toggles field.
func (r Resolved) EnabledNames() []string {
	var names []string
	if r.MaxWorktimeInRowEnabled {
		names = append(names, "max_worktime_in_row")
	}
	if r.MinRestAfterShiftHardEnabled {
		names = append(names, "min_rest_after_shift_hard")
	}
	if r.MinRestAfterShiftSoftEnabled {
		names = append(names, "min_rest_after_shift_soft")
	}
	if r.BalanceWorkedHours {
		names = append(names, "balance_worked_hours")
	}
	return names
}

// SolverRequest is the full request envelope for a solve.
type SolverRequest struct {
	Horizon        Horizon        `json:"horizon"`
	Employees      []Employee     `json:"employees"`
	Shifts         []Shift        `json:"shifts"`
	Constraints    Constraints    `json:"constraints"`
	FeatureToggles FeatureToggles `json:"feature_toggles"`
}
