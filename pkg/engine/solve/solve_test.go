package solve

import (
	"context"
	"testing"

	"github.com/paiban/paiban-core/pkg/engine/build"
	"github.com/paiban/paiban-core/pkg/engine/cpsat"
	"github.com/paiban/paiban-core/pkg/engine/model"
)

func oneEmployeeOneShiftRequest() model.SolverRequest {
	return model.SolverRequest{
		Horizon:   model.Horizon{Start: "2026-01-05", Days: 1},
		Employees: []model.Employee{{ID: "e1", Name: "Ann"}},
		Shifts: []model.Shift{
			{Day: "Mon", Date: "2026-01-05", Type: "morning", Start: "08:00", End: "16:00", Required: 1},
		},
	}
}

func TestDriveReturnsOptimalForASimpleRequest(t *testing.T) {
	built, err := build.Build(oneEmployeeOneShiftRequest(), "req-1")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	outcome := Drive(context.Background(), built)
	if outcome.Status != cpsat.StatusOptimal {
		t.Fatalf("status = %v, want StatusOptimal", outcome.Status)
	}
	if !outcome.Optimal {
		t.Errorf("Optimal = false, want true")
	}
	if !outcome.HasAssignment() {
		t.Errorf("HasAssignment() = false, want true for an optimal outcome")
	}
}

func TestDriveReportsInfeasibleWhenCoverageCannotBeMet(t *testing.T) {
	req := model.SolverRequest{
		Horizon:   model.Horizon{Start: "2026-01-05", Days: 1},
		Employees: []model.Employee{{ID: "e1", Name: "Ann"}},
		Shifts: []model.Shift{
			{Day: "Mon", Date: "2026-01-05", Type: "morning", Start: "08:00", End: "16:00", Required: 2},
		},
	}
	built, err := build.Build(req, "req-1")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	outcome := Drive(context.Background(), built)
	if outcome.Status != cpsat.StatusInfeasible {
		t.Fatalf("status = %v, want StatusInfeasible: only one employee for a shift requiring 2", outcome.Status)
	}
	if outcome.HasAssignment() {
		t.Errorf("HasAssignment() = true, want false for an infeasible outcome")
	}
}

func TestHasAssignmentAcceptsFeasibleNonOptimal(t *testing.T) {
	o := Outcome{Status: cpsat.StatusFeasible, Optimal: false}
	if !o.HasAssignment() {
		t.Errorf("HasAssignment() = false, want true for StatusFeasible")
	}
}

func TestHasAssignmentRejectsUnknownStatus(t *testing.T) {
	o := Outcome{Status: cpsat.StatusUnknown}
	if o.HasAssignment() {
		t.Errorf("HasAssignment() = true, want false for StatusUnknown")
	}
}
