package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/facade"
	"github.com/pradeepkk321/fhir-mapper/fhirbridge"
	"github.com/pradeepkk321/fhir-mapper/internal/config"
	"github.com/pradeepkk321/fhir-mapper/mapping"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	rm := mapping.ResourceMapping{
		ID: "patient-to-fhir", SourceType: "PatientRecord", TargetType: "Patient", Direction: mapping.JSONToFHIR,
		FieldMappings: []mapping.FieldMapping{
			{ID: "active", SourcePath: "isActive", TargetPath: "active"},
		},
	}
	reg := mapping.NewRegistry("4.0.1", 1, []mapping.ResourceMapping{rm}, nil)
	f := facade.New(reg, fhirbridge.NewJSONBridge())
	cfg := &config.Config{BasePath: "./mappings", FHIRVersion: "4.0.1", Strict: true}
	loader := mapping.NewLoader(zerolog.Nop())
	return NewServer(cfg, zerolog.Nop(), f, loader)
}

func TestHandleHealth(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("got body %q, want it to contain ok", rec.Body.String())
	}
}

func TestHandleTransform_Success(t *testing.T) {
	e := testServer(t).Echo()
	body := `{"sourceType":"PatientRecord","direction":"JSON_TO_FHIR","document":{"isActive":true}}`
	req := httptest.NewRequest(http.MethodPost, "/transform", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"active":true`) {
		t.Errorf("got body %q, want active:true", rec.Body.String())
	}
}

func TestHandleTransform_InvalidDirectionIs422(t *testing.T) {
	e := testServer(t).Echo()
	body := `{"sourceType":"PatientRecord","direction":"SIDEWAYS","document":{}}`
	req := httptest.NewRequest(http.MethodPost, "/transform", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422 for a ConfigError, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("expected an OperationOutcome body, got %s", rec.Body.String())
	}
}

func TestHandleTransform_UnresolvableMappingRefIs422(t *testing.T) {
	e := testServer(t).Echo()
	body := `{"sourceType":"DoesNotExist","direction":"JSON_TO_FHIR","document":{}}`
	req := httptest.NewRequest(http.MethodPost, "/transform", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// An unresolvable MappingRef surfaces as a KindConfig error, mapped to 422.
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleListLookups(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/lookups", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("got body %q, want an empty array for a registry with no lookup tables", rec.Body.String())
	}
}

func TestHandleTranslate_UnknownTableIs422(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/lookups/gender/translate?code=M", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422 for an unknown lookup table, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleTranslate_MissingCodeParamIs422(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/lookups/gender/translate", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422 when code is missing, body %s", rec.Code, rec.Body.String())
	}
}

func TestRequestID_ReusesSuppliedHeader(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-request-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "fixed-request-id" {
		t.Errorf("got request id %q, want the supplied one to be echoed back", got)
	}
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	e := testServer(t).Echo()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got == "" {
		t.Error("expected a generated request id header when none was supplied")
	}
}

func TestRecovery_PanicBecomes500Outcome(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.Nop()))
	e.GET("/boom", func(c echo.Context) error {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500 after a panic", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("got body %q, want an OperationOutcome", rec.Body.String())
	}
}

func TestStatusForKind_Mapping(t *testing.T) {
	cases := []struct {
		kind errs.Kind
		want int
	}{
		{errs.KindConfig, http.StatusUnprocessableEntity},
		{errs.KindValidationFailure, http.StatusUnprocessableEntity},
		{errs.KindDirectionMismatch, http.StatusBadRequest},
		{errs.KindRequiredMissing, http.StatusBadRequest},
		{errs.KindLookupMiss, http.StatusBadRequest},
		{errs.KindExpression, http.StatusBadRequest},
		{errs.KindPathConflict, http.StatusBadRequest},
		{errs.KindNotBidirectional, http.StatusBadRequest},
	}
	for _, c := range cases {
		if got := statusForKind(c.kind); got != c.want {
			t.Errorf("statusForKind(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}
