package model

import "github.com/paiban/paiban-core/pkg/engine/cpsat"

// ObjectiveTermKind tags the variant of an ObjectiveTerm, with
// constraint_type as the wire tag.
type ObjectiveTermKind string

const (
	TermUserSoftPrefer  ObjectiveTermKind = "prefer_assignment"
	TermUserSoftAvoid   ObjectiveTermKind = "avoid_assignment"
	TermMinRestAfter    ObjectiveTermKind = "min_rest_after_shift"
	TermBalanceWorked   ObjectiveTermKind = "balance_worked_hours"
)

// ObjectiveTerm is a single contribution to the solver's maximization
// objective, carrying enough metadata for the response builder to
// classify and report it without re-deriving it from the model.
type ObjectiveTerm struct {
	Var         cpsat.VarID
	Coefficient int64
	Kind        ObjectiveTermKind

	EmployeeID   string
	EmployeeName string
	Weight       int

	// Populated for TermUserSoftPrefer / TermUserSoftAvoid.
	Shift *ShiftMeta

	// Populated for TermMinRestAfter.
	RestMinutes         int
	RequiredRestMinutes int
	LeftShift           *ShiftMeta
	RightShift          *ShiftMeta

	// Populated for TermBalanceWorked.
	AllowedSpanHours             int
	SpanMultiplier               float64
	AverageShiftDurationMinutes  float64
}

// ShiftMeta mirrors timeutil.Meta without importing timeutil, avoiding
// an import cycle between model and the packages that build on it.
type ShiftMeta struct {
	Day   string `json:"day"`
	Date  string `json:"date"`
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// BalanceContext carries the balance-worked-hours constraint's handles
// through to response building, so the reported span figures read back
// from the solved model rather than being recomputed.
type BalanceContext struct {
	MinHoursVar                 cpsat.VarID
	MaxHoursVar                 cpsat.VarID
	HoursSpanVar                cpsat.VarID
	AllowedSpanHours            int
	AverageShiftDurationMinutes float64
}

// BuildWarning is a non-fatal diagnostic raised while posting constraints,
// surfaced to the caller in the response envelope rather than aborting
// the solve.
type BuildWarning struct {
	Code           string `json:"code"`
	ConstraintType string `json:"constraint_type"`
	EmployeeID     string `json:"employee_id"`
}
