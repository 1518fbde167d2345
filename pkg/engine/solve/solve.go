// Package solve drives the posted model through the CP-SAT-contract
// backend and classifies the resulting status for the caller.
package solve

import (
	"context"

	"github.com/paiban/paiban-core/pkg/engine/build"
	"github.com/paiban/paiban-core/pkg/engine/cpsat"
)

// Params are the search budget applied to every solve; fixed rather
// than caller-configurable.
var Params = cpsat.Params{
	MaxTimeInSeconds: 10.0,
	NumSearchWorkers: 8,
}

// Outcome classifies a completed solve for the caller: whether a usable
// assignment was found (Optimal/Feasible) and whether it was exhaustive.
type Outcome struct {
	Status  cpsat.Status
	Optimal bool
}

// Drive runs the backend solver against a posted model, applying the
// fixed search budget.
func Drive(ctx context.Context, built *build.Result) Outcome {
	status := built.Model.Solve(ctx, Params)
	return Outcome{Status: status, Optimal: status == cpsat.StatusOptimal}
}

// HasAssignment reports whether o carries a usable (possibly
// non-exhaustive) assignment the caller can build a response from.
func (o Outcome) HasAssignment() bool {
	return o.Status == cpsat.StatusOptimal || o.Status == cpsat.StatusFeasible
}
