// Package cpsat is a first-party implementation of a CP-SAT-style
// constraint solver: boolean and bounded-integer variables, linear
// (in)equality constraints, add_min_equality, add_max_equality,
// add_division_equality (integer floor), maximize, solve-to-status,
// and value readback by variable handle.
//
// This package is a genuine implementation rather than a binding to an
// external solver. Its search strategy — bound propagation plus
// branch-and-bound backtracking, fanned out across a bounded goroutine
// pool — is tuned for the problem sizes the calling engine guarantees
// (O(|E|*|S| + |S|^2) variables and constraints, <=31-day horizons),
// not for general ILP.
package cpsat

// Op is a linear-constraint relational operator.
type Op int

const (
	OpEQ Op = iota
	OpLE
	OpGE
)

// VarID is an opaque handle to a decision variable.
type VarID int

type variable struct {
	lo, hi int64
	name   string
}

// LinearExpr is a sparse linear combination of variables plus a
// constant term.
type LinearExpr struct {
	Terms map[VarID]int64
	Const int64
}

// NewLinearExpr returns an empty linear expression.
func NewLinearExpr() LinearExpr {
	return LinearExpr{Terms: make(map[VarID]int64)}
}

// Add returns a new expression with coeff*v added. The receiver is not
// mutated.
func (e LinearExpr) Add(v VarID, coeff int64) LinearExpr {
	out := LinearExpr{Terms: make(map[VarID]int64, len(e.Terms)+1), Const: e.Const}
	for k, c := range e.Terms {
		out.Terms[k] = c
	}
	out.Terms[v] += coeff
	return out
}

// AddConst returns a new expression with c added to the constant term.
func (e LinearExpr) AddConst(c int64) LinearExpr {
	out := LinearExpr{Terms: make(map[VarID]int64, len(e.Terms)), Const: e.Const + c}
	for k, coeff := range e.Terms {
		out.Terms[k] = coeff
	}
	return out
}

type linearConstraint struct {
	terms map[VarID]int64
	op    Op
	bound int64
}

type minMaxConstraint struct {
	result VarID
	vars   []VarID
	isMax  bool
}

type divisionConstraint struct {
	result   VarID
	dividend VarID
	divisor  int64
}

// Model is a CP-SAT-style constraint model: variables, linear and
// special-form constraints, and an optional maximization objective.
type Model struct {
	vars      []variable
	linear    []linearConstraint
	minmax    []minMaxConstraint
	division  []divisionConstraint
	objective map[VarID]int64
	hasObj    bool

	solution []int64
	status   Status
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar creates a 0/1 decision variable.
func (m *Model) NewBoolVar(name string) VarID {
	m.vars = append(m.vars, variable{lo: 0, hi: 1, name: name})
	return VarID(len(m.vars) - 1)
}

// NewIntVar creates a bounded integer decision variable.
func (m *Model) NewIntVar(lo, hi int64, name string) VarID {
	m.vars = append(m.vars, variable{lo: lo, hi: hi, name: name})
	return VarID(len(m.vars) - 1)
}

// AddLinearConstraint posts sum(expr.Terms) op (bound - expr.Const).
func (m *Model) AddLinearConstraint(expr LinearExpr, op Op, bound int64) {
	terms := make(map[VarID]int64, len(expr.Terms))
	for k, c := range expr.Terms {
		if c != 0 {
			terms[k] = c
		}
	}
	m.linear = append(m.linear, linearConstraint{terms: terms, op: op, bound: bound - expr.Const})
}

// AddEquality posts a == b.
func (m *Model) AddEquality(a, b VarID) {
	m.AddLinearConstraint(NewLinearExpr().Add(a, 1).Add(b, -1), OpEQ, 0)
}

// AddMinEquality posts result == min(vars).
func (m *Model) AddMinEquality(result VarID, vars []VarID) {
	m.minmax = append(m.minmax, minMaxConstraint{result: result, vars: append([]VarID(nil), vars...), isMax: false})
}

// AddMaxEquality posts result == max(vars).
func (m *Model) AddMaxEquality(result VarID, vars []VarID) {
	m.minmax = append(m.minmax, minMaxConstraint{result: result, vars: append([]VarID(nil), vars...), isMax: true})
}

// AddDivisionEquality posts result == floor(dividend / divisor), for a
// positive constant divisor (the engine only ever divides by 60).
func (m *Model) AddDivisionEquality(result, dividend VarID, divisor int64) {
	m.division = append(m.division, divisionConstraint{result: result, dividend: dividend, divisor: divisor})
}

// Maximize sets the objective to maximize sum(coeff * var). Only one
// objective may be active; a later call replaces an earlier one.
func (m *Model) Maximize(expr LinearExpr) {
	terms := make(map[VarID]int64, len(expr.Terms))
	for k, c := range expr.Terms {
		if c != 0 {
			terms[k] = c
		}
	}
	m.objective = terms
	m.hasObj = true
}

// Value reads back the solved value of v. Valid only after Solve
// returns StatusOptimal or StatusFeasible.
func (m *Model) Value(v VarID) int64 {
	if int(v) < 0 || int(v) >= len(m.solution) {
		return 0
	}
	return m.solution[v]
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}
