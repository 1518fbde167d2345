package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewDerivesHTTPStatusFromCode(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:        http.StatusUnprocessableEntity,
		CodeTimeout:             http.StatusGatewayTimeout,
		CodeUpstreamUnavailable: http.StatusBadGateway,
		CodeDatabaseError:       http.StatusInternalServerError,
		CodeInternal:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		err := New(code, "boom")
		if err.HTTPStatus != want {
			t.Errorf("New(%s).HTTPStatus = %d, want %d", code, err.HTTPStatus, want)
		}
	}
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeDatabaseError, "query failed")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() did not return the original cause")
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true via Unwrap chain")
	}
}

func TestErrorMessageIncludesCauseWhenPresent(t *testing.T) {
	err := Wrap(fmt.Errorf("timeout"), CodeTimeout, "upstream call failed")
	msg := err.Error()
	if msg != "[TIMEOUT] upstream call failed: timeout" {
		t.Errorf("Error() = %q, want code, message, and cause", msg)
	}
}

func TestWithFieldAccumulatesFields(t *testing.T) {
	err := New(CodeInvalidInput, "bad request").WithField("employee_id", "ghost").WithField("reason", "unknown")

	if err.Fields["employee_id"] != "ghost" || err.Fields["reason"] != "unknown" {
		t.Errorf("Fields = %v, want both keys set", err.Fields)
	}
}

func TestIsMatchesOnlyTheGivenCode(t *testing.T) {
	err := New(CodeInvalidInput, "bad request")
	if !Is(err, CodeInvalidInput) {
		t.Errorf("Is(err, CodeInvalidInput) = false, want true")
	}
	if Is(err, CodeTimeout) {
		t.Errorf("Is(err, CodeTimeout) = true, want false")
	}
	if Is(fmt.Errorf("plain error"), CodeInvalidInput) {
		t.Errorf("Is() matched a non-AppError, want false")
	}
}

func TestGetCodeAndGetHTTPStatusFallBackOnNonAppError(t *testing.T) {
	plain := fmt.Errorf("plain error")
	if GetCode(plain) != CodeUnknown {
		t.Errorf("GetCode(plain) = %v, want CodeUnknown", GetCode(plain))
	}
	if GetHTTPStatus(plain) != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus(plain) = %d, want 500", GetHTTPStatus(plain))
	}
}

func TestConstructorHelpersSetExpectedCodes(t *testing.T) {
	if InvalidInput("x").Code != CodeInvalidInput {
		t.Errorf("InvalidInput() code = %v, want CodeInvalidInput", InvalidInput("x").Code)
	}
	if NoFeasibleSolution("x").Code != CodeNoFeasibleSolution {
		t.Errorf("NoFeasibleSolution() code = %v, want CodeNoFeasibleSolution", NoFeasibleSolution("x").Code)
	}
	if UpstreamUnavailable("x").Code != CodeUpstreamUnavailable {
		t.Errorf("UpstreamUnavailable() code = %v, want CodeUpstreamUnavailable", UpstreamUnavailable("x").Code)
	}
}
