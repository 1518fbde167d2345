// Package infeasible performs a quick, non-exhaustive analysis of why a
// request came back INFEASIBLE: it isolates a handful of common
// contradictions directly from the input rather than attempting to
// explain the solver's own search.
package infeasible

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paiban/paiban-core/pkg/engine/chain"
	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/engine/timeutil"
)

const maxReasons = 10

type reasonBuilder struct {
	reasons []model.InfeasibilityReason
}

func (b *reasonBuilder) add(r model.InfeasibilityReason) {
	b.reasons = append(b.reasons, r)
}

// InferReasons inspects req for direct contradictions among hard
// constraints, required coverage, and the max-worktime/min-rest rules,
// returning up to 10 deduplicated reasons. If nothing conclusive is
// found it returns a single fallback reason.
func InferReasons(req model.SolverRequest, violatingWindows [][]int) []model.InfeasibilityReason {
	b := &reasonBuilder{}
	numEmployees := len(req.Employees)
	numShifts := len(req.Shifts)
	resolved := req.FeatureToggles.Resolve()

	employeeNameByID := make(map[string]string, numEmployees)
	for _, e := range req.Employees {
		employeeNameByID[e.ID] = e.Name
	}

	hardRequireByShift := make([]map[string]bool, numShifts)
	hardForbidByShift := make([]map[string]bool, numShifts)
	hardRequireByEmployee := make(map[string]map[int]bool, numEmployees)
	for i := range hardRequireByShift {
		hardRequireByShift[i] = map[string]bool{}
		hardForbidByShift[i] = map[string]bool{}
	}

	for _, hard := range req.Constraints.Hard {
		for _, shiftIdx := range matchingShiftIDs(req.Shifts, hard.Day, hard.Date, hard.ShiftType) {
			switch hard.Kind {
			case model.HardRequireShift:
				hardRequireByShift[shiftIdx][hard.EmployeeID] = true
				if hardRequireByEmployee[hard.EmployeeID] == nil {
					hardRequireByEmployee[hard.EmployeeID] = map[int]bool{}
				}
				hardRequireByEmployee[hard.EmployeeID][shiftIdx] = true
			case model.HardForbidShift:
				hardForbidByShift[shiftIdx][hard.EmployeeID] = true
			}
		}
	}

	for shiftIdx, shift := range req.Shifts {
		requiredIDs := hardRequireByShift[shiftIdx]
		forbiddenIDs := hardForbidByShift[shiftIdx]

		var overlap []string
		for id := range requiredIDs {
			if forbiddenIDs[id] {
				overlap = append(overlap, id)
			}
		}
		if len(overlap) > 0 {
			sort.Strings(overlap)
			names := make([]string, len(overlap))
			for i, id := range overlap {
				if n, ok := employeeNameByID[id]; ok {
					names[i] = n
				} else {
					names[i] = id
				}
			}
			meta := toShiftMeta(shift)
			b.add(model.InfeasibilityReason{
				Code:          "hard_conflict_required_and_forbidden",
				Message:       fmt.Sprintf("%s: same employee(s) are both required and forbidden (%s).", timeutil.Label(shift), joinComma(names)),
				Shift:         &meta,
				EmployeeNames: joinComma(names),
			})
		}

		if len(requiredIDs) > shift.Required {
			meta := toShiftMeta(shift)
			count, req2 := len(requiredIDs), shift.Required
			b.add(model.InfeasibilityReason{
				Code:             "hard_required_exceeds_shift_coverage",
				Message:          fmt.Sprintf("%s: %d hard-required employee(s) exceed required coverage %d.", timeutil.Label(shift), count, req2),
				Shift:            &meta,
				HardRequiredCount: &count,
				RequiredCoverage:  &req2,
			})
		}

		allowedEmployees := numEmployees - len(forbiddenIDs)
		if shift.Required > allowedEmployees {
			meta := toShiftMeta(shift)
			req2, avail := shift.Required, allowedEmployees
			b.add(model.InfeasibilityReason{
				Code:               "coverage_exceeds_available_after_forbids",
				Message:            fmt.Sprintf("%s: required coverage %d exceeds available employees %d after forbids.", timeutil.Label(shift), req2, avail),
				Shift:              &meta,
				RequiredCoverage:   &req2,
				AvailableEmployees: &avail,
			})
		}
	}

	if resolved.MaxWorktimeInRowEnabled {
		for _, window := range violatingWindows {
			windowRequired := 0
			for _, shiftIdx := range window {
				windowRequired += req.Shifts[shiftIdx].Required
			}
			windowCapacity := numEmployees * (len(window) - 1)
			if windowRequired > windowCapacity {
				preview := windowPreview(req.Shifts, window)
				req2, allowed := windowRequired, windowCapacity
				b.add(model.InfeasibilityReason{
					Code:                "max_worktime_window_capacity_conflict",
					Message:             fmt.Sprintf("Max-worktime window [%s] needs %d assignments, but rule allows at most %d.", preview, windowRequired, windowCapacity),
					WindowPreview:       preview,
					RequiredAssignments: &req2,
					AllowedAssignments:  &allowed,
				})
			}

			for _, employee := range req.Employees {
				requiredCount := 0
				for _, shiftIdx := range window {
					if hardRequireByEmployee[employee.ID][shiftIdx] {
						requiredCount++
					}
				}
				allowed := len(window) - 1
				if requiredCount > allowed {
					preview := windowPreview(req.Shifts, window)
					rc := requiredCount
					b.add(model.InfeasibilityReason{
						Code:                "max_worktime_window_employee_overrequired",
						Message:             fmt.Sprintf("%s is hard-required on %d shifts inside max-worktime window [%s], exceeding allowed %d.", employee.Name, requiredCount, preview, allowed),
						EmployeeID:          employee.ID,
						EmployeeName:        employee.Name,
						HardRequiredCount:   &rc,
						AllowedAssignments:  &allowed,
						WindowPreview:       preview,
					})
				}
			}
		}
	}

	// A hint for the common case where a "require" forces a full chain
	// plus the next shift with too little rest between them.
	if resolved.MinRestAfterShiftHardEnabled {
		minRestHardHours := resolved.MinRestAfterShiftHardHours
		minRestHardMinutes := minRestHardHours * 60

		arrays, err := timeutil.BuildArrays(req.Horizon, req.Shifts)
		if err == nil {
			minimalChainByLeft := chain.MinQualifyingChains(arrays, resolved.MaxWorktimeInRowHours*60)

			shortRestByLeft := make(map[int][][2]int, numShifts)
			for left := 0; left < numShifts; left++ {
				leftEnd := arrays.EndAbs[left]
				for right := 0; right < numShifts; right++ {
					if left == right {
						continue
					}
					restMinutes := arrays.StartAbs[right] - leftEnd
					if restMinutes >= 0 && restMinutes < minRestHardMinutes {
						shortRestByLeft[left] = append(shortRestByLeft[left], [2]int{right, restMinutes})
					}
				}
			}

			for _, employee := range req.Employees {
				requiredShiftIDs := hardRequireByEmployee[employee.ID]
				if len(requiredShiftIDs) == 0 {
					continue
				}
				for left, minimalChain := range minimalChainByLeft {
					targets := shortRestByLeft[left]
					if len(targets) == 0 {
						continue
					}
					forcedChain := true
					for _, shiftIdx := range minimalChain {
						if !requiredShiftIDs[shiftIdx] {
							forcedChain = false
							break
						}
					}
					if !forcedChain {
						continue
					}
					for _, t := range targets {
						right, restMinutes := t[0], t[1]
						if !requiredShiftIDs[right] {
							continue
						}
						leftShift := req.Shifts[left]
						rightShift := req.Shifts[right]
						leftMeta := toShiftMeta(leftShift)
						rightMeta := toShiftMeta(rightShift)
						restHours := roundTo1(float64(restMinutes) / 60)
						b.add(model.InfeasibilityReason{
							Code: "hard_min_rest_conflict_on_required_chain",
							Message: fmt.Sprintf(
								"%s is hard-required on %s and %s with only %.1fh rest (< %dh hard minimum).",
								employee.Name, timeutil.Label(leftShift), timeutil.Label(rightShift), restHours, minRestHardHours,
							),
							EmployeeID:   employee.ID,
							EmployeeName: employee.Name,
							LeftShift:    &leftMeta,
							RightShift:   &rightMeta,
							RestHours:    &restHours,
							MinRestHours: &minRestHardHours,
						})
					}
				}
			}
		}
	}

	unique := dedupe(b.reasons)
	if len(unique) > 0 {
		if len(unique) > maxReasons {
			unique = unique[:maxReasons]
		}
		return unique
	}

	return []model.InfeasibilityReason{{
		Code:    "infeasibility_quick_analysis_inconclusive",
		Message: "No direct contradiction was isolated by quick analysis; infeasibility is likely caused by the combined effect of hard constraints and required coverage.",
	}}
}

func matchingShiftIDs(shifts []model.Shift, day, date, shiftType *string) []int {
	var out []int
	for idx, s := range shifts {
		if date != nil && s.Date != *date {
			continue
		}
		if day != nil && s.Day != *day {
			continue
		}
		if shiftType != nil && s.Type != *shiftType {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func toShiftMeta(s model.Shift) model.ShiftMeta {
	m := timeutil.ToMeta(s)
	return model.ShiftMeta{Day: m.Day, Date: m.Date, Type: m.Type, Start: m.Start, End: m.End}
}

func windowPreview(shifts []model.Shift, window []int) string {
	limit := window
	truncated := false
	if len(window) > 3 {
		limit = window[:3]
		truncated = true
	}
	labels := make([]string, len(limit))
	for i, idx := range limit {
		labels[i] = timeutil.Label(shifts[idx])
	}
	preview := joinComma(labels)
	if truncated {
		preview = fmt.Sprintf("%s, ... (%d shifts)", preview, len(window))
	}
	return preview
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func roundTo1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// dedupe removes byte-identical reasons (by JSON content), preserving
// first-seen order, mirroring the original's sort_keys JSON dedupe.
func dedupe(reasons []model.InfeasibilityReason) []model.InfeasibilityReason {
	seen := make(map[string]bool, len(reasons))
	out := make([]model.InfeasibilityReason, 0, len(reasons))
	for _, r := range reasons {
		b, err := json.Marshal(r)
		key := string(b)
		if err != nil {
			key = r.Code + "|" + r.Message
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
