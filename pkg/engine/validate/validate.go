// Package validate implements the solver engine's request validator:
// rejecting obviously invalid input before any model is built.
package validate

import (
	"fmt"

	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/errors"
	"github.com/paiban/paiban-core/pkg/logger"
)

// Request rejects a structurally invalid SolverRequest, logging
// solve.request.rejected before returning the 422-carrying error. All
// later stages assume these invariants hold.
func Request(req model.SolverRequest, requestID string) error {
	log := logger.NewSolveLogger()

	if len(req.Employees) == 0 {
		log.RequestRejected(requestID, "no_employees")
		return errors.InvalidInput("At least one employee is required.")
	}

	if len(req.Shifts) == 0 {
		log.RequestRejected(requestID, "no_shifts")
		return errors.InvalidInput("At least one shift is required.")
	}

	seen := make(map[string]bool, len(req.Employees))
	for _, e := range req.Employees {
		if seen[e.ID] {
			log.RequestRejected(requestID, "duplicate_employee_ids")
			return errors.InvalidInput("Employee IDs must be unique.")
		}
		seen[e.ID] = true
	}

	for _, s := range req.Shifts {
		if s.Required > len(req.Employees) {
			log.RequestRejected(requestID, "required_exceeds_available_employees",
				logger.F("shift_date", s.Date),
				logger.F("shift_type", s.Type),
				logger.F("required", s.Required),
				logger.F("employees", len(req.Employees)),
			)
			return errors.InvalidInput(fmt.Sprintf(
				"Shift '%s %s' requires %d employees, but only %d are available.",
				s.Date, s.Type, s.Required, len(req.Employees),
			))
		}
	}

	return nil
}
