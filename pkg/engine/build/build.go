// Package build posts a solver request's variables and constraints onto
// a cpsat.Model: shift coverage, the max-worktime-in-a-row chain caps,
// user hard/soft constraints, the post-chain minimum-rest rules, and the
// balance-worked-hours objective term.
package build

import (
	"fmt"

	"github.com/paiban/paiban-core/pkg/engine/chain"
	"github.com/paiban/paiban-core/pkg/engine/cpsat"
	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/engine/timeutil"
	"github.com/paiban/paiban-core/pkg/errors"
	"github.com/paiban/paiban-core/pkg/logger"
)

// Result bundles the posted model's handles and bookkeeping needed by
// the later solve and result-building stages.
type Result struct {
	Model *cpsat.Model

	// Assign[e*NumShifts+s] is the assignment boolean for employee e,
	// shift s, the dense indexing discipline the engine uses throughout.
	Assign     []cpsat.VarID
	NumEmployees int
	NumShifts    int

	ViolatingWindows [][]int
	ObjectiveTerms   []model.ObjectiveTerm
	Warnings         []model.BuildWarning
	EnabledToggles   []string
	Balance          *model.BalanceContext
}

func at(numShifts, employeeIdx, shiftIdx int) int {
	return employeeIdx*numShifts + shiftIdx
}

// Build posts the full constraint model for req and returns its handles.
// It returns an *errors.AppError (CodeInvalidInput) if a hard or soft
// constraint references an unknown employee_id, matching the backend
// contract's 422-equivalent rejection.
func Build(req model.SolverRequest, requestID string) (*Result, error) {
	numEmployees := len(req.Employees)
	numShifts := len(req.Shifts)
	resolved := req.FeatureToggles.Resolve()

	arrays, err := timeutil.BuildArrays(req.Horizon, req.Shifts)
	if err != nil {
		return nil, err
	}

	m := cpsat.NewModel()
	assign := make([]cpsat.VarID, numEmployees*numShifts)
	for e := 0; e < numEmployees; e++ {
		for s := 0; s < numShifts; s++ {
			assign[at(numShifts, e, s)] = m.NewBoolVar(fmt.Sprintf("a_e%d_s%d", e, s))
		}
	}

	addShiftCoverageConstraints(m, assign, req.Shifts, numEmployees, numShifts)

	employeeIdxByID := make(map[string]int, numEmployees)
	for i, emp := range req.Employees {
		employeeIdxByID[emp.ID] = i
	}

	violatingWindows := applyMaxWorktimeConstraints(m, assign, resolved, arrays, numEmployees, numShifts)

	var warnings []model.BuildWarning
	var terms []model.ObjectiveTerm

	if err := applyHardConstraints(m, assign, req, employeeIdxByID, numShifts, &warnings, requestID); err != nil {
		return nil, err
	}
	if err := applyUserSoftConstraints(assign, req, employeeIdxByID, numShifts, &terms, &warnings, requestID); err != nil {
		return nil, err
	}

	applyMinRestConstraints(m, assign, req, resolved, arrays, numEmployees, numShifts, &terms)

	balance := applyBalanceWorkedHoursConstraint(m, assign, resolved, arrays, numEmployees, numShifts, &terms)

	applyObjective(m, terms)

	return &Result{
		Model:            m,
		Assign:           assign,
		NumEmployees:     numEmployees,
		NumShifts:        numShifts,
		ViolatingWindows: violatingWindows,
		ObjectiveTerms:   terms,
		Warnings:         warnings,
		EnabledToggles:   resolved.EnabledNames(),
		Balance:          balance,
	}, nil
}

// addShiftCoverageConstraints models coverage as a hard equality so the
// solver only ever considers schedules where every shift has exactly its
// required headcount; preferences only choose among feasible schedules.
func addShiftCoverageConstraints(m *cpsat.Model, assign []cpsat.VarID, shifts []model.Shift, numEmployees, numShifts int) {
	for s, shift := range shifts {
		expr := cpsat.NewLinearExpr()
		for e := 0; e < numEmployees; e++ {
			expr = expr.Add(assign[at(numShifts, e, s)], 1)
		}
		m.AddLinearConstraint(expr, cpsat.OpEQ, int64(shift.Required))
	}
}

// applyMaxWorktimeConstraints caps every employee's assignment on each
// violating window to at most |window|-1 shifts: the chain itself may
// exist in the data, but no employee may be assigned to all of it.
func applyMaxWorktimeConstraints(m *cpsat.Model, assign []cpsat.VarID, resolved model.Resolved, arrays timeutil.Arrays, numEmployees, numShifts int) [][]int {
	if !resolved.MaxWorktimeInRowEnabled {
		return nil
	}
	windows := chain.ViolatingWindows(arrays, resolved.MaxWorktimeInRowHours*60)
	for e := 0; e < numEmployees; e++ {
		for _, window := range windows {
			expr := cpsat.NewLinearExpr()
			for _, s := range window {
				expr = expr.Add(assign[at(numShifts, e, s)], 1)
			}
			m.AddLinearConstraint(expr, cpsat.OpLE, int64(len(window)-1))
		}
	}
	return windows
}

func matchesRule(s model.Shift, day, date, shiftType *string) bool {
	if date != nil && s.Date != *date {
		return false
	}
	if day != nil && s.Day != *day {
		return false
	}
	if shiftType != nil && s.Type != *shiftType {
		return false
	}
	return true
}

func findMatchingShiftIDs(shifts []model.Shift, day, date, shiftType *string) []int {
	var out []int
	for idx, s := range shifts {
		if matchesRule(s, day, date, shiftType) {
			out = append(out, idx)
		}
	}
	return out
}

func applyHardConstraints(m *cpsat.Model, assign []cpsat.VarID, req model.SolverRequest, employeeIdxByID map[string]int, numShifts int, warnings *[]model.BuildWarning, requestID string) error {
	solveLog := logger.NewSolveLogger()
	for _, hard := range req.Constraints.Hard {
		employeeIdx, ok := employeeIdxByID[hard.EmployeeID]
		if !ok {
			solveLog.RequestRejected(requestID, "hard_constraint_unknown_employee", logger.F("employee_id", hard.EmployeeID))
			return errors.InvalidInput(fmt.Sprintf("Hard constraint references unknown employee_id '%s'.", hard.EmployeeID))
		}

		matching := findMatchingShiftIDs(req.Shifts, hard.Day, hard.Date, hard.ShiftType)
		if len(matching) == 0 {
			*warnings = append(*warnings, model.BuildWarning{
				Code:           "no_matching_shift_for_hard_constraint",
				ConstraintType: string(hard.Kind),
				EmployeeID:     hard.EmployeeID,
			})
			continue
		}

		for _, shiftIdx := range matching {
			v := assign[at(numShifts, employeeIdx, shiftIdx)]
			switch hard.Kind {
			case model.HardForbidShift:
				m.AddLinearConstraint(cpsat.NewLinearExpr().Add(v, 1), cpsat.OpEQ, 0)
			case model.HardRequireShift:
				m.AddLinearConstraint(cpsat.NewLinearExpr().Add(v, 1), cpsat.OpEQ, 1)
			}
		}
	}
	return nil
}

func applyUserSoftConstraints(assign []cpsat.VarID, req model.SolverRequest, employeeIdxByID map[string]int, numShifts int, terms *[]model.ObjectiveTerm, warnings *[]model.BuildWarning, requestID string) error {
	solveLog := logger.NewSolveLogger()
	for _, soft := range req.Constraints.Soft {
		employeeIdx, ok := employeeIdxByID[soft.EmployeeID]
		if !ok {
			solveLog.RequestRejected(requestID, "soft_constraint_unknown_employee", logger.F("employee_id", soft.EmployeeID))
			return errors.InvalidInput(fmt.Sprintf("Soft constraint references unknown employee_id '%s'.", soft.EmployeeID))
		}

		matching := findMatchingShiftIDs(req.Shifts, soft.Day, soft.Date, soft.ShiftType)
		if len(matching) == 0 {
			*warnings = append(*warnings, model.BuildWarning{
				Code:           "no_matching_shift_for_soft_constraint",
				ConstraintType: string(soft.Kind),
				EmployeeID:     soft.EmployeeID,
			})
			continue
		}

		kind := model.TermUserSoftAvoid
		coefficient := int64(-soft.Weight)
		if soft.Kind == model.SoftPreferAssignment {
			kind = model.TermUserSoftPrefer
			coefficient = int64(soft.Weight)
		}

		for _, shiftIdx := range matching {
			shift := req.Shifts[shiftIdx]
			meta := timeutil.ToMeta(shift)
			*terms = append(*terms, model.ObjectiveTerm{
				Var:          assign[at(numShifts, employeeIdx, shiftIdx)],
				Coefficient:  coefficient,
				Kind:         kind,
				EmployeeID:   req.Employees[employeeIdx].ID,
				EmployeeName: req.Employees[employeeIdx].Name,
				Weight:       soft.Weight,
				Shift:        &model.ShiftMeta{Day: meta.Day, Date: meta.Date, Type: meta.Type, Start: meta.Start, End: meta.End},
			})
		}
	}
	return nil
}

type restPair struct {
	left, right, restMinutes int
}

// applyMinRestConstraints enforces the minimum-rest-after-a-max-chain
// rule: once an employee's consecutive chain of shifts reaches the
// max-worktime-in-a-row threshold, the next shift must leave at least
// the configured rest gap (hard: forbidden combination; soft: penalized
// in the objective). A reified "reached_max_chain" boolean per
// (employee, chain-left-shift) is built with the standard two-inequality
// AND encoding over the chain's minimal qualifying prefix, then
// combined with the candidate next shift's assignment boolean the same
// way to produce "short_rest_after_max_chain" for the soft case.
func applyMinRestConstraints(m *cpsat.Model, assign []cpsat.VarID, req model.SolverRequest, resolved model.Resolved, arrays timeutil.Arrays, numEmployees, numShifts int, terms *[]model.ObjectiveTerm) {
	if !resolved.MinRestAfterShiftHardEnabled && !resolved.MinRestAfterShiftSoftEnabled {
		return
	}

	minHardRestMinutes := resolved.MinRestAfterShiftHardHours * 60
	minSoftRestMinutes := resolved.MinRestAfterShiftSoftHours * 60
	maxChainMinutes := resolved.MaxWorktimeInRowHours * 60

	minimalChainByLeft := chain.MinQualifyingChains(arrays, maxChainMinutes)

	var hardPairs, softPairs []restPair
	for left := 0; left < numShifts; left++ {
		leftEnd := arrays.EndAbs[left]
		for right := 0; right < numShifts; right++ {
			if left == right {
				continue
			}
			rightStart := arrays.StartAbs[right]
			restMinutes := rightStart - leftEnd
			if restMinutes < 0 {
				continue
			}
			if resolved.MinRestAfterShiftHardEnabled && restMinutes < minHardRestMinutes {
				hardPairs = append(hardPairs, restPair{left, right, restMinutes})
			}
			if resolved.MinRestAfterShiftSoftEnabled && restMinutes < minSoftRestMinutes {
				softPairs = append(softPairs, restPair{left, right, restMinutes})
			}
		}
	}

	for e := 0; e < numEmployees; e++ {
		reachedMaxChainByLeft := make(map[int]cpsat.VarID, len(minimalChainByLeft))
		for left, minimalChain := range minimalChainByLeft {
			reached := m.NewBoolVar(fmt.Sprintf("max_chain_reached_e%d_left%d", e, left))
			for _, s := range minimalChain {
				v := assign[at(numShifts, e, s)]
				m.AddLinearConstraint(cpsat.NewLinearExpr().Add(reached, 1).Add(v, -1), cpsat.OpLE, 0)
			}
			sumExpr := cpsat.NewLinearExpr()
			for _, s := range minimalChain {
				sumExpr = sumExpr.Add(assign[at(numShifts, e, s)], 1)
			}
			m.AddLinearConstraint(sumExpr.Add(reached, -1), cpsat.OpLE, int64(len(minimalChain)-1))
			reachedMaxChainByLeft[left] = reached
		}

		for _, pair := range hardPairs {
			reached, ok := reachedMaxChainByLeft[pair.left]
			if !ok {
				continue
			}
			rv := assign[at(numShifts, e, pair.right)]
			m.AddLinearConstraint(cpsat.NewLinearExpr().Add(reached, 1).Add(rv, 1), cpsat.OpLE, 1)
		}

		for _, pair := range softPairs {
			reached, ok := reachedMaxChainByLeft[pair.left]
			if !ok {
				continue
			}
			rv := assign[at(numShifts, e, pair.right)]
			shortRest := m.NewBoolVar(fmt.Sprintf("short_rest_after_max_e%d_s%d_s%d", e, pair.left, pair.right))
			m.AddLinearConstraint(cpsat.NewLinearExpr().Add(shortRest, 1).Add(reached, -1), cpsat.OpLE, 0)
			m.AddLinearConstraint(cpsat.NewLinearExpr().Add(shortRest, 1).Add(rv, -1), cpsat.OpLE, 0)
			m.AddLinearConstraint(cpsat.NewLinearExpr().Add(shortRest, 1).Add(reached, -1).Add(rv, -1), cpsat.OpGE, -1)

			leftMeta := timeutil.ToMeta(req.Shifts[pair.left])
			rightMeta := timeutil.ToMeta(req.Shifts[pair.right])
			restMinutes := pair.restMinutes
			required := minSoftRestMinutes
			*terms = append(*terms, model.ObjectiveTerm{
				Var:                 shortRest,
				Coefficient:         int64(-resolved.MinRestAfterShiftSoftWeight),
				Kind:                model.TermMinRestAfter,
				EmployeeID:          req.Employees[e].ID,
				EmployeeName:        req.Employees[e].Name,
				Weight:              resolved.MinRestAfterShiftSoftWeight,
				RestMinutes:         restMinutes,
				RequiredRestMinutes: required,
				LeftShift:           &model.ShiftMeta{Day: leftMeta.Day, Date: leftMeta.Date, Type: leftMeta.Type, Start: leftMeta.Start, End: leftMeta.End},
				RightShift:          &model.ShiftMeta{Day: rightMeta.Day, Date: rightMeta.Date, Type: rightMeta.Type, Start: rightMeta.Start, End: rightMeta.End},
			})
		}
	}
}

// applyBalanceWorkedHoursConstraint penalizes the spread between the
// least- and most-worked employees beyond an allowance derived from the
// average shift length, steering the objective toward an even load
// without ever forbidding an uneven one outright.
func applyBalanceWorkedHoursConstraint(m *cpsat.Model, assign []cpsat.VarID, resolved model.Resolved, arrays timeutil.Arrays, numEmployees, numShifts int, terms *[]model.ObjectiveTerm) *model.BalanceContext {
	if !resolved.BalanceWorkedHours {
		return nil
	}

	totalShiftMinutes := 0
	for _, d := range arrays.Durations {
		totalShiftMinutes += d
	}
	maxHoursUpper := int64((totalShiftMinutes + 59) / 60)
	if maxHoursUpper < 1 {
		maxHoursUpper = 1
	}

	workHoursVars := make([]cpsat.VarID, numEmployees)
	for e := 0; e < numEmployees; e++ {
		workMinutesExpr := cpsat.NewLinearExpr()
		for s := 0; s < numShifts; s++ {
			workMinutesExpr = workMinutesExpr.Add(assign[at(numShifts, e, s)], int64(arrays.Durations[s]))
		}
		workMinutes := m.NewIntVar(0, int64(totalShiftMinutes), fmt.Sprintf("work_minutes_e%d", e))
		m.AddLinearConstraint(workMinutesExpr.Add(workMinutes, -1), cpsat.OpEQ, 0)

		workHours := m.NewIntVar(0, maxHoursUpper, fmt.Sprintf("work_hours_e%d", e))
		m.AddDivisionEquality(workHours, workMinutes, 60)
		workHoursVars[e] = workHours
	}

	minHoursVar := m.NewIntVar(0, maxHoursUpper, "min_work_hours")
	maxHoursVar := m.NewIntVar(0, maxHoursUpper, "max_work_hours")
	m.AddMinEquality(minHoursVar, workHoursVars)
	m.AddMaxEquality(maxHoursVar, workHoursVars)

	hoursSpanVar := m.NewIntVar(0, maxHoursUpper, "worked_hours_span")
	m.AddLinearConstraint(cpsat.NewLinearExpr().Add(hoursSpanVar, 1).Add(maxHoursVar, -1).Add(minHoursVar, 1), cpsat.OpEQ, 0)

	denom := len(arrays.Durations)
	if denom < 1 {
		denom = 1
	}
	averageShiftDurationMinutes := float64(totalShiftMinutes) / float64(denom)
	allowedSpanHoursF := ceilDiv(averageShiftDurationMinutes*resolved.BalanceWorkedHoursMaxSpanMultiplier, 60)
	allowedSpanHours := int64(allowedSpanHoursF)
	if allowedSpanHours > maxHoursUpper {
		allowedSpanHours = maxHoursUpper
	}

	excess := m.NewIntVar(0, maxHoursUpper, "worked_hours_span_excess")
	m.AddLinearConstraint(cpsat.NewLinearExpr().Add(excess, 1).Add(hoursSpanVar, -1), cpsat.OpGE, -allowedSpanHours)
	m.AddLinearConstraint(cpsat.NewLinearExpr().Add(excess, 1), cpsat.OpGE, 0)

	*terms = append(*terms, model.ObjectiveTerm{
		Var:                          excess,
		Coefficient:                  int64(-resolved.BalanceWorkedHoursWeight),
		Kind:                         model.TermBalanceWorked,
		EmployeeID:                   "all",
		EmployeeName:                 "All employees",
		Weight:                       resolved.BalanceWorkedHoursWeight,
		AllowedSpanHours:             int(allowedSpanHours),
		SpanMultiplier:               resolved.BalanceWorkedHoursMaxSpanMultiplier,
		AverageShiftDurationMinutes:  averageShiftDurationMinutes,
	})

	return &model.BalanceContext{
		MinHoursVar:                 minHoursVar,
		MaxHoursVar:                 maxHoursVar,
		HoursSpanVar:                hoursSpanVar,
		AllowedSpanHours:            int(allowedSpanHours),
		AverageShiftDurationMinutes: averageShiftDurationMinutes,
	}
}

func ceilDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	q := numerator / denominator
	ceiled := float64(int64(q))
	if q > ceiled {
		ceiled++
	}
	return ceiled
}

func applyObjective(m *cpsat.Model, terms []model.ObjectiveTerm) {
	if len(terms) == 0 {
		return
	}
	expr := cpsat.NewLinearExpr()
	for _, t := range terms {
		expr = expr.Add(t.Var, t.Coefficient)
	}
	m.Maximize(expr)
}
