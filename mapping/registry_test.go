package mapping

import (
	"testing"

	"github.com/pradeepkk321/fhir-mapper/lookup"
)

func TestRegistry_FirstMatchWinsOnDuplicateSourceDirection(t *testing.T) {
	first := ResourceMapping{ID: "first", SourceType: "Patient", TargetType: "Patient", Direction: JSONToFHIR}
	second := ResourceMapping{ID: "second", SourceType: "Patient", TargetType: "Patient", Direction: JSONToFHIR}

	reg := NewRegistry("4.0.1", 1, []ResourceMapping{first, second}, nil)

	got := reg.FindBySourceAndDirection("Patient", JSONToFHIR)
	if got == nil || got.ID != "first" {
		t.Errorf("got %v, want the first-loaded mapping to win", got)
	}
}

func TestRegistry_FindByID(t *testing.T) {
	rm := ResourceMapping{ID: "r1", SourceType: "Patient", TargetType: "Patient", Direction: JSONToFHIR}
	reg := NewRegistry("4.0.1", 1, []ResourceMapping{rm}, nil)

	if reg.FindByID("r1") == nil {
		t.Error("expected r1 to resolve")
	}
	if reg.FindByID("missing") != nil {
		t.Error("expected a missing id to resolve to nil")
	}
}

func TestRegistry_ResolveLookupReferences(t *testing.T) {
	table, err := lookup.NewTable(lookup.Table{ID: "gender", Mappings: []lookup.Mapping{{SourceCode: "M", TargetCode: "male"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	okRM := ResourceMapping{
		ID: "r1", SourceType: "Patient", TargetType: "Patient", Direction: JSONToFHIR,
		FieldMappings: []FieldMapping{{ID: "gender", TargetPath: "gender", LookupTable: "gender"}},
	}
	reg := NewRegistry("4.0.1", 1, []ResourceMapping{okRM}, []*lookup.Table{table})
	if err := reg.ResolveLookupReferences(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	badRM := ResourceMapping{
		ID: "r2", SourceType: "Patient", TargetType: "Patient", Direction: JSONToFHIR,
		FieldMappings: []FieldMapping{{ID: "gender", TargetPath: "gender", LookupTable: "missing"}},
	}
	reg2 := NewRegistry("4.0.1", 1, []ResourceMapping{badRM}, []*lookup.Table{table})
	if err := reg2.ResolveLookupReferences(); err == nil {
		t.Error("expected an error for an unresolvable lookup table reference")
	}
}

func TestRegistry_GetLookupTable(t *testing.T) {
	table, err := lookup.NewTable(lookup.Table{ID: "gender", Mappings: []lookup.Mapping{{SourceCode: "M", TargetCode: "male"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg := NewRegistry("4.0.1", 1, nil, []*lookup.Table{table})

	if reg.GetLookupTable("gender") == nil {
		t.Error("expected gender table to resolve")
	}
	if reg.GetLookupTable("missing") != nil {
		t.Error("expected a missing table id to resolve to nil")
	}
}
