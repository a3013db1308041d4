package fhirbridge

import (
	"testing"

	"github.com/pradeepkk321/fhir-mapper/errs"
)

func TestJSONBridge_ParseResource_TypeMismatch(t *testing.T) {
	b := NewJSONBridge()
	_, err := b.ParseResource([]byte(`{"resourceType":"Observation","status":"final"}`), "Patient")
	if err == nil {
		t.Fatal("expected a resourceType mismatch error")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindConfig {
		t.Errorf("got kind %v, want ConfigError", kind)
	}
}

func TestJSONBridge_ParseResource_EmptyTypeNameSkipsCheck(t *testing.T) {
	b := NewJSONBridge()
	res, err := b.ParseResource([]byte(`{"resourceType":"Observation"}`), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || !res.IsMap() {
		t.Fatal("expected a parsed map resource")
	}
}

func TestJSONBridge_ParseResource_NotAnObject(t *testing.T) {
	b := NewJSONBridge()
	if _, err := b.ParseResource([]byte(`[1,2,3]`), "Patient"); err == nil {
		t.Fatal("expected an error for a non-object FHIR document")
	}
}

func TestJSONBridge_RoundTrip(t *testing.T) {
	b := NewJSONBridge()
	input := []byte(`{"resourceType":"Patient","id":"123","active":true}`)

	res, err := b.ParseResource(input, "Patient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := b.EncodeResource(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != string(input) {
		t.Errorf("round trip changed bytes: got %s, want %s", out, input)
	}
}
