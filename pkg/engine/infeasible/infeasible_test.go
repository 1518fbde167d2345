package infeasible

import (
	"testing"

	"github.com/paiban/paiban-core/pkg/engine/model"
)

func ptr(s string) *string { return &s }

func baseRequest() model.SolverRequest {
	return model.SolverRequest{
		Horizon:   model.Horizon{Start: "2026-01-05", Days: 1},
		Employees: []model.Employee{{ID: "e1", Name: "Ann"}, {ID: "e2", Name: "Bo"}},
		Shifts: []model.Shift{
			{Day: "Mon", Date: "2026-01-05", Type: "morning", Start: "08:00", End: "16:00", Required: 1},
		},
	}
}

func TestInferReasonsRequiredAndForbiddenConflict(t *testing.T) {
	req := baseRequest()
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardRequireShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
		{Kind: model.HardForbidShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
	}

	reasons := InferReasons(req, nil)
	if !hasCode(reasons, "hard_conflict_required_and_forbidden") {
		t.Errorf("expected hard_conflict_required_and_forbidden, got %v", codes(reasons))
	}
}

func TestInferReasonsRequiredExceedsCoverage(t *testing.T) {
	req := baseRequest()
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardRequireShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
		{Kind: model.HardRequireShift, EmployeeID: "e2", Date: ptr("2026-01-05")},
	}

	reasons := InferReasons(req, nil)
	if !hasCode(reasons, "hard_required_exceeds_shift_coverage") {
		t.Errorf("expected hard_required_exceeds_shift_coverage, got %v", codes(reasons))
	}
}

func TestInferReasonsCoverageExceedsAvailableAfterForbids(t *testing.T) {
	req := baseRequest()
	req.Shifts[0].Required = 2
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardForbidShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
	}

	reasons := InferReasons(req, nil)
	if !hasCode(reasons, "coverage_exceeds_available_after_forbids") {
		t.Errorf("expected coverage_exceeds_available_after_forbids, got %v", codes(reasons))
	}
}

func TestInferReasonsFallsBackWhenInconclusive(t *testing.T) {
	req := baseRequest()
	reasons := InferReasons(req, nil)
	if len(reasons) != 1 || reasons[0].Code != "infeasibility_quick_analysis_inconclusive" {
		t.Errorf("expected a single fallback reason, got %v", codes(reasons))
	}
}

func TestInferReasonsDedupesRepeatedContradiction(t *testing.T) {
	req := baseRequest()
	req.Shifts[0].Required = 2
	// Same contradiction posted twice should dedupe to one reason.
	req.Constraints.Hard = []model.HardConstraint{
		{Kind: model.HardForbidShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
		{Kind: model.HardForbidShift, EmployeeID: "e1", Date: ptr("2026-01-05")},
	}
	reasons := InferReasons(req, nil)
	seen := map[string]int{}
	for _, r := range reasons {
		seen[r.Code]++
	}
	for code, count := range seen {
		if count > 1 {
			t.Errorf("code %s appeared %d times, want deduplicated", code, count)
		}
	}
}

func hasCode(reasons []model.InfeasibilityReason, code string) bool {
	for _, r := range reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

func codes(reasons []model.InfeasibilityReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.Code
	}
	return out
}
