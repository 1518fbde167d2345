package build

import (
	"context"
	"testing"

	"github.com/paiban/paiban-core/pkg/engine/cpsat"
	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/errors"
)

func twoEmployeeOneShiftRequest() model.SolverRequest {
	return model.SolverRequest{
		Horizon:   model.Horizon{Start: "2026-01-05", Days: 1},
		Employees: []model.Employee{{ID: "e1", Name: "Ann"}, {ID: "e2", Name: "Bo"}},
		Shifts: []model.Shift{
			{Day: "Mon", Date: "2026-01-05", Type: "morning", Start: "08:00", End: "16:00", Required: 1},
		},
	}
}

func TestBuildPostsShiftCoverageAsEquality(t *testing.T) {
	req := twoEmployeeOneShiftRequest()
	result, err := Build(req, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := result.Model.Solve(context.Background(), cpsat.Params{MaxTimeInSeconds: 2, NumSearchWorkers: 2})
	if status != cpsat.StatusOptimal && status != cpsat.StatusFeasible {
		t.Fatalf("status = %v, want a solved status", status)
	}

	covered := 0
	for e := 0; e < result.NumEmployees; e++ {
		if result.Model.Value(result.Assign[at(result.NumShifts, e, 0)]) == 1 {
			covered++
		}
	}
	if covered != 1 {
		t.Errorf("covered = %d assignments to a shift requiring 1, want exactly 1", covered)
	}
}

func TestBuildRejectsHardConstraintWithUnknownEmployee(t *testing.T) {
	req := twoEmployeeOneShiftRequest()
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardForbidShift, EmployeeID: "ghost"},
	}

	_, err := Build(req, "req-1")
	if err == nil {
		t.Fatal("expected an error for an unknown employee_id")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.CodeInvalidInput {
		t.Errorf("expected CodeInvalidInput AppError, got %v", err)
	}
}

func TestBuildRejectsSoftConstraintWithUnknownEmployee(t *testing.T) {
	req := twoEmployeeOneShiftRequest()
	req.Constraints.Soft = []model.SoftConstraint{
		{Kind: model.SoftPreferAssignment, EmployeeID: "ghost", Weight: 10},
	}

	_, err := Build(req, "req-1")
	if err == nil {
		t.Fatal("expected an error for an unknown employee_id")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.CodeInvalidInput {
		t.Errorf("expected CodeInvalidInput AppError, got %v", err)
	}
}

func TestBuildHardRequireShiftForcesAssignment(t *testing.T) {
	req := twoEmployeeOneShiftRequest()
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardRequireShift, EmployeeID: "e2"},
	}

	result, err := Build(req, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status := result.Model.Solve(context.Background(), cpsat.Params{MaxTimeInSeconds: 2, NumSearchWorkers: 2})
	if status != cpsat.StatusOptimal {
		t.Fatalf("status = %v, want StatusOptimal", status)
	}
	e2Idx := 1
	if result.Model.Value(result.Assign[at(result.NumShifts, e2Idx, 0)]) != 1 {
		t.Errorf("e2 should be forced onto shift 0 by the require_shift hard constraint")
	}
}

func TestBuildMaxWorktimeChainCapsConsecutiveShifts(t *testing.T) {
	// Three adjacent 4h shifts in a row on one day, one employee only,
	// default 8h max-worktime-in-a-row: the employee can cover at most
	// two of the three without violating the chain cap, so headcount 1
	// on all three with only one employee is infeasible.
	req := model.SolverRequest{
		Horizon:   model.Horizon{Start: "2026-01-05", Days: 1},
		Employees: []model.Employee{{ID: "e1", Name: "Solo"}},
		Shifts: []model.Shift{
			{Day: "Mon", Date: "2026-01-05", Type: "morning", Start: "06:00", End: "10:00", Required: 1},
			{Day: "Mon", Date: "2026-01-05", Type: "midday", Start: "10:00", End: "14:00", Required: 1},
			{Day: "Mon", Date: "2026-01-05", Type: "afternoon", Start: "14:00", End: "18:00", Required: 1},
		},
	}

	result, err := Build(req, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ViolatingWindows) == 0 {
		t.Fatalf("expected at least one violating window for three adjacent 4h shifts under an 8h cap")
	}

	status := result.Model.Solve(context.Background(), cpsat.Params{MaxTimeInSeconds: 2, NumSearchWorkers: 2})
	if status != cpsat.StatusInfeasible {
		t.Fatalf("status = %v, want StatusInfeasible: a single employee cannot cover all three shifts under the chain cap", status)
	}
}
