package facade

import (
	"testing"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/fhirbridge"
	"github.com/pradeepkk321/fhir-mapper/mapping"
)

func simpleRegistry() *mapping.Registry {
	rm := mapping.ResourceMapping{
		ID: "patient-to-fhir", SourceType: "PatientRecord", TargetType: "Patient", Direction: mapping.JSONToFHIR,
		FieldMappings: []mapping.FieldMapping{
			{ID: "active", SourcePath: "isActive", TargetPath: "active"},
		},
	}
	return mapping.NewRegistry("4.0.1", 1, []mapping.ResourceMapping{rm}, nil)
}

func TestFacade_TransformJSON_JSONToFHIR(t *testing.T) {
	f := New(simpleRegistry(), fhirbridge.NewJSONBridge())

	out, err := f.TransformJSON(MappingRef{SourceType: "PatientRecord"}, mapping.JSONToFHIR, []byte(`{"isActive":true}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"resourceType":"Patient","active":true}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestFacade_DirectionMismatch(t *testing.T) {
	f := New(simpleRegistry(), fhirbridge.NewJSONBridge())

	// Resolving by explicit mapping id bypasses the (sourceType, direction)
	// index, so a caller can ask for the wrong direction against a mapping
	// that does exist — that's what DirectionMismatch guards against.
	_, err := f.TransformJSON(MappingRef{ID: "patient-to-fhir"}, mapping.FHIRToJSON, []byte(`{"isActive":true}`), nil)
	if err == nil {
		t.Fatal("expected a DirectionMismatch error when requesting the opposite direction")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindDirectionMismatch {
		t.Errorf("got kind %v, want DirectionMismatch", kind)
	}
}

func TestFacade_UnknownMappingRef(t *testing.T) {
	f := New(simpleRegistry(), fhirbridge.NewJSONBridge())

	_, err := f.TransformJSON(MappingRef{SourceType: "DoesNotExist"}, mapping.JSONToFHIR, []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected an error for an unresolvable mapping reference")
	}
}

func TestFacade_ReloadSwapsRegistry(t *testing.T) {
	f := New(simpleRegistry(), fhirbridge.NewJSONBridge())
	if f.Registry().Generation != 1 {
		t.Fatalf("got generation %d, want 1", f.Registry().Generation)
	}

	next := mapping.NewRegistry("4.0.1", 2, nil, nil)
	f.Reload(next)
	if f.Registry().Generation != 2 {
		t.Errorf("got generation %d, want 2 after reload", f.Registry().Generation)
	}
}

func TestFacade_TransformObject(t *testing.T) {
	f := New(simpleRegistry(), fhirbridge.NewJSONBridge())

	result, err := f.TransformObject(MappingRef{SourceType: "PatientRecord"}, mapping.JSONToFHIR, map[string]interface{}{"isActive": true}, mapping.NewContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want map[string]interface{}", result)
	}
	if m["active"] != true {
		t.Errorf("got %v, want active=true", m["active"])
	}
}
