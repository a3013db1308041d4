package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pradeepkk321/fhir-mapper/errs"
)

// outcome and outcomeIssue mirror the shape of a FHIR OperationOutcome
// resource, without importing a FHIR types package, for the engine's HTTP
// error bodies.
type outcome struct {
	ResourceType string         `json:"resourceType"`
	Issue        []outcomeIssue `json:"issue"`
}

type outcomeIssue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

const (
	severityError = "error"
	severityFatal = "fatal"
)

func newOutcome(severity, code, diagnostics string) *outcome {
	return &outcome{
		ResourceType: "OperationOutcome",
		Issue:        []outcomeIssue{{Severity: severity, Code: code, Diagnostics: diagnostics}},
	}
}

func outcomeFromPanic(r interface{}) *outcome {
	return newOutcome(severityFatal, "exception", fmt.Sprintf("internal server error: %v", r))
}

// statusForKind maps the error taxonomy to an HTTP status code.
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindConfig, errs.KindValidationFailure:
		return http.StatusUnprocessableEntity
	case errs.KindDirectionMismatch, errs.KindRequiredMissing, errs.KindLookupMiss,
		errs.KindExpression, errs.KindPathConflict, errs.KindNotBidirectional:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// issueCodeForKind picks a FHIR issue type code roughly matching the
// taxonomy kind; it is advisory only, callers should key off status/kind.
func issueCodeForKind(kind errs.Kind) string {
	switch kind {
	case errs.KindConfig:
		return "structure"
	case errs.KindDirectionMismatch:
		return "invalid"
	case errs.KindRequiredMissing:
		return "required"
	case errs.KindLookupMiss:
		return "not-found"
	case errs.KindValidationFailure:
		return "value"
	case errs.KindExpression:
		return "processing"
	case errs.KindPathConflict:
		return "conflict"
	case errs.KindNotBidirectional:
		return "not-supported"
	default:
		return "exception"
	}
}

// writeErr writes err as an OperationOutcome body with a status derived
// from its errs.Kind, or 500/exception if err carries no known kind.
func writeErr(c echo.Context, err error) error {
	kind, ok := errs.KindOf(err)
	if !ok {
		return writeOutcome(c, http.StatusInternalServerError, newOutcome(severityError, "exception", err.Error()))
	}
	return writeOutcome(c, statusForKind(kind), newOutcome(severityError, issueCodeForKind(kind), err.Error()))
}

func writeOutcome(c echo.Context, status int, o *outcome) error {
	return c.JSON(status, o)
}
