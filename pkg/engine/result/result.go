// Package result assembles the solver engine's response envelope from a
// solved (or infeasible) model: per-shift assignments, per-employee
// load, and the objective breakdown that explains which soft rules were
// satisfied, violated, or unmet and why.
package result

import (
	"github.com/paiban/paiban-core/pkg/engine/build"
	"github.com/paiban/paiban-core/pkg/engine/model"
)

// Assignment is a single shift's resolved coverage.
type Assignment struct {
	Day      string              `json:"day"`
	Date     string              `json:"date"`
	Type     string              `json:"type"`
	Start    string              `json:"start"`
	End      string              `json:"end"`
	Required int                 `json:"required"`
	Assigned []AssignedEmployee  `json:"assigned"`
}

// AssignedEmployee identifies one employee placed on a shift.
type AssignedEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

// EmployeeLoad is one employee's total assigned-shift count.
type EmployeeLoad struct {
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	AssignedCount int    `json:"assigned_count"`
}

// ObjectiveItem explains a single objective term's outcome in the
// solved schedule.
type ObjectiveItem struct {
	Source         string `json:"source"`
	ConstraintType string `json:"constraint_type"`
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	Weight         int    `json:"weight"`
	Status         string `json:"status"`
	Contribution   int64  `json:"contribution"`
	Active         bool   `json:"active"`
	Value          int64  `json:"value"`

	Shift               *model.ShiftMeta `json:"shift,omitempty"`
	LeftShift           *model.ShiftMeta `json:"left_shift,omitempty"`
	RightShift          *model.ShiftMeta `json:"right_shift,omitempty"`
	RestMinutes         *int             `json:"rest_minutes,omitempty"`
	RequiredRestMinutes *int             `json:"required_rest_minutes,omitempty"`

	ExcessHours                 *int64   `json:"excess_hours,omitempty"`
	MinEmployeeHours            *int64   `json:"min_employee_hours,omitempty"`
	MaxEmployeeHours            *int64   `json:"max_employee_hours,omitempty"`
	HoursSpan                   *int64   `json:"hours_span,omitempty"`
	AllowedSpanHours            *int     `json:"allowed_span_hours,omitempty"`
	AverageShiftDurationMinutes *float64 `json:"average_shift_duration_minutes,omitempty"`
}

// ObjectiveBreakdown summarizes the objective's reward/penalty split.
type ObjectiveBreakdown struct {
	RewardPoints     int64           `json:"reward_points"`
	PenaltyPoints    int64           `json:"penalty_points"`
	UnsatisfiedCount int             `json:"unsatisfied_count"`
	Items            []ObjectiveItem `json:"items"`
}

// Response is the full solve response envelope, feasible or infeasible.
type Response struct {
	Status                     string                        `json:"status"`
	ReasonCode                 string                        `json:"reason_code,omitempty"`
	Reason                     string                        `json:"reason,omitempty"`
	InfeasibilityReasons       []model.InfeasibilityReason   `json:"infeasibility_reasons,omitempty"`
	Warnings                   []model.BuildWarning          `json:"warnings"`
	Objective                  *int64                        `json:"objective"`
	Assignments                []Assignment                  `json:"assignments"`
	EmployeeLoad               []EmployeeLoad                `json:"employee_load"`
	EnabledFeatureToggles      []string                      `json:"enabled_feature_toggles"`
	ObjectiveBreakdown         ObjectiveBreakdown             `json:"objective_breakdown"`
	UnsatisfiedSoftConstraints []ObjectiveItem                `json:"unsatisfied_soft_constraints"`
}

// BuildInfeasibleResponse assembles the response for an INFEASIBLE solve.
func BuildInfeasibleResponse(warnings []model.BuildWarning, enabledToggles []string, reasons []model.InfeasibilityReason) Response {
	return Response{
		Status:                "infeasible",
		ReasonCode:            "infeasible_no_feasible_assignment",
		Reason:                "No feasible assignment satisfies current hard constraints and coverage.",
		InfeasibilityReasons: reasons,
		Warnings:              warnings,
		Objective:             nil,
		Assignments:           []Assignment{},
		EmployeeLoad:          []EmployeeLoad{},
		EnabledFeatureToggles: enabledToggles,
		ObjectiveBreakdown: ObjectiveBreakdown{
			Items: []ObjectiveItem{},
		},
		UnsatisfiedSoftConstraints: []ObjectiveItem{},
	}
}

// BuildFeasibleResponse assembles the response for an OPTIMAL or
// FEASIBLE solve.
func BuildFeasibleResponse(req model.SolverRequest, built *build.Result, optimal bool) Response {
	assignments, employeeLoad := buildAssignments(req, built)
	breakdown, unsatisfied := buildObjectiveBreakdown(built)

	statusText := "feasible"
	if optimal {
		statusText = "optimal"
	}

	var objective *int64
	if len(built.ObjectiveTerms) > 0 {
		total := int64(0)
		for _, t := range built.ObjectiveTerms {
			total += t.Coefficient * built.Model.Value(t.Var)
		}
		objective = &total
	} else {
		zero := int64(0)
		objective = &zero
	}

	return Response{
		Status:                statusText,
		Objective:             objective,
		Warnings:              built.Warnings,
		Assignments:           assignments,
		EmployeeLoad:          employeeLoad,
		EnabledFeatureToggles: built.EnabledToggles,
		ObjectiveBreakdown:    breakdown,
		UnsatisfiedSoftConstraints: unsatisfied,
	}
}

func buildAssignments(req model.SolverRequest, built *build.Result) ([]Assignment, []EmployeeLoad) {
	assignments := make([]Assignment, 0, len(req.Shifts))
	loadByEmployee := make(map[string]int, len(req.Employees))

	for shiftIdx, shift := range req.Shifts {
		var assigned []AssignedEmployee
		for employeeIdx, employee := range req.Employees {
			v := built.Assign[employeeIdx*built.NumShifts+shiftIdx]
			if built.Model.Value(v) == 1 {
				assigned = append(assigned, AssignedEmployee{EmployeeID: employee.ID, EmployeeName: employee.Name})
				loadByEmployee[employee.ID]++
			}
		}
		if assigned == nil {
			assigned = []AssignedEmployee{}
		}
		assignments = append(assignments, Assignment{
			Day:      shift.Day,
			Date:     shift.Date,
			Type:     shift.Type,
			Start:    shift.Start,
			End:      shift.End,
			Required: shift.Required,
			Assigned: assigned,
		})
	}

	employeeLoad := make([]EmployeeLoad, 0, len(req.Employees))
	for _, employee := range req.Employees {
		employeeLoad = append(employeeLoad, EmployeeLoad{
			EmployeeID:    employee.ID,
			EmployeeName:  employee.Name,
			AssignedCount: loadByEmployee[employee.ID],
		})
	}

	return assignments, employeeLoad
}

// buildObjectiveBreakdown reports why the objective landed where it did:
// reward/penalty split per term, plus which soft rules ended up unmet,
// violated, or over the allowed balance span.
func buildObjectiveBreakdown(built *build.Result) (ObjectiveBreakdown, []ObjectiveItem) {
	var items []ObjectiveItem
	var unsatisfied []ObjectiveItem
	var rewardPoints, penaltyPoints int64

	for _, t := range built.ObjectiveTerms {
		value := built.Model.Value(t.Var)
		active := value > 0
		contribution := t.Coefficient * value
		if contribution > 0 {
			rewardPoints += contribution
		} else {
			penaltyPoints += contribution
		}

		source := "feature_toggle"
		if t.Kind == model.TermUserSoftPrefer || t.Kind == model.TermUserSoftAvoid {
			source = "user_soft_constraint"
		}

		var statusLabel string
		switch t.Kind {
		case model.TermUserSoftPrefer:
			statusLabel = statusIf(active, "satisfied", "unmet")
		case model.TermBalanceWorked:
			statusLabel = statusIf(!active, "within_allowed_span", "over_allowed_span")
		default:
			statusLabel = statusIf(active, "violated", "satisfied")
		}

		item := ObjectiveItem{
			Source:         source,
			ConstraintType: string(t.Kind),
			EmployeeID:     t.EmployeeID,
			EmployeeName:   t.EmployeeName,
			Weight:         t.Weight,
			Status:         statusLabel,
			Contribution:   contribution,
			Active:         active,
			Value:          value,
			Shift:          t.Shift,
			LeftShift:      t.LeftShift,
			RightShift:     t.RightShift,
		}
		if t.Kind == model.TermMinRestAfter {
			rest, required := t.RestMinutes, t.RequiredRestMinutes
			item.RestMinutes = &rest
			item.RequiredRestMinutes = &required
		}
		if t.Kind == model.TermBalanceWorked && built.Balance != nil {
			excess := value
			minHours := built.Model.Value(built.Balance.MinHoursVar)
			maxHours := built.Model.Value(built.Balance.MaxHoursVar)
			span := built.Model.Value(built.Balance.HoursSpanVar)
			allowed := built.Balance.AllowedSpanHours
			avg := built.Balance.AverageShiftDurationMinutes
			item.ExcessHours = &excess
			item.MinEmployeeHours = &minHours
			item.MaxEmployeeHours = &maxHours
			item.HoursSpan = &span
			item.AllowedSpanHours = &allowed
			item.AverageShiftDurationMinutes = &avg
		}

		items = append(items, item)
		if statusLabel == "unmet" || statusLabel == "violated" || statusLabel == "over_allowed_span" {
			unsatisfied = append(unsatisfied, item)
		}
	}

	if items == nil {
		items = []ObjectiveItem{}
	}
	if unsatisfied == nil {
		unsatisfied = []ObjectiveItem{}
	}

	return ObjectiveBreakdown{
		RewardPoints:     rewardPoints,
		PenaltyPoints:    penaltyPoints,
		UnsatisfiedCount: len(unsatisfied),
		Items:            items,
	}, unsatisfied
}

func statusIf(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
