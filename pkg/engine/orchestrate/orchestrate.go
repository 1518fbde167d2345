// Package orchestrate threads a solver request through validation,
// model building, the backend solve, and response assembly, emitting the
// solve.request.{start,done,rejected} event trio around the whole call.
package orchestrate

import (
	"context"
	"time"

	"github.com/paiban/paiban-core/pkg/engine/build"
	"github.com/paiban/paiban-core/pkg/engine/infeasible"
	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/engine/result"
	"github.com/paiban/paiban-core/pkg/engine/solve"
	"github.com/paiban/paiban-core/pkg/engine/validate"
	"github.com/paiban/paiban-core/pkg/logger"
)

// Solve runs one full solver request: validate, build, solve, respond.
// It returns an error (an *errors.AppError) only when the request itself
// is rejected before a model is ever posted; a solved-but-infeasible
// outcome is a normal 200-status result, not an error.
func Solve(ctx context.Context, req model.SolverRequest, requestID string) (result.Response, error) {
	startedAt := time.Now()
	solveLog := logger.NewSolveLogger()
	solveLog.RequestStart(requestID, len(req.Employees), len(req.Shifts))

	if err := validate.Request(req, requestID); err != nil {
		return result.Response{}, err
	}

	built, err := build.Build(req, requestID)
	if err != nil {
		return result.Response{}, err
	}

	outcome := solve.Drive(ctx, built)

	if !outcome.HasAssignment() {
		reasons := infeasible.InferReasons(req, built.ViolatingWindows)
		resp := result.BuildInfeasibleResponse(built.Warnings, built.EnabledToggles, reasons)
		elapsedMicros := time.Since(startedAt).Microseconds()
		solveLog.RequestDone(requestID, resp.Status, elapsedMicros, nil)
		return resp, nil
	}

	resp := result.BuildFeasibleResponse(req, built, outcome.Optimal)
	elapsedMicros := time.Since(startedAt).Microseconds()
	var objective *int
	if resp.Objective != nil {
		v := int(*resp.Objective)
		objective = &v
	}
	solveLog.RequestDone(requestID, resp.Status, elapsedMicros, objective)

	return resp, nil
}
