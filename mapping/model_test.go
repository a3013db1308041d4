package mapping

import "testing"

func TestFieldMapping_Validate(t *testing.T) {
	cases := []struct {
		name string
		fm   FieldMapping
		want bool
	}{
		{"valid", FieldMapping{ID: "a", TargetPath: "x"}, true},
		{"missing id", FieldMapping{TargetPath: "x"}, false},
		{"missing targetPath", FieldMapping{ID: "a"}, false},
		{"required without source or default", FieldMapping{ID: "a", TargetPath: "x", Required: true}, false},
		{"required with source", FieldMapping{ID: "a", TargetPath: "x", Required: true, SourcePath: "y"}, true},
		{"required with default", FieldMapping{ID: "a", TargetPath: "x", Required: true, DefaultValue: "d"}, true},
		{"bad dataType", FieldMapping{ID: "a", TargetPath: "x", DataType: "nonsense"}, false},
		{"good dataType", FieldMapping{ID: "a", TargetPath: "x", DataType: "string"}, true},
	}
	for _, c := range cases {
		err := c.fm.Validate()
		if (err == nil) != c.want {
			t.Errorf("%s: Validate() error = %v, want valid=%v", c.name, err, c.want)
		}
	}
}

func TestResourceMapping_Validate(t *testing.T) {
	rm := ResourceMapping{
		ID:         "r1",
		SourceType: "X",
		TargetType: "Y",
		Direction:  JSONToFHIR,
		FieldMappings: []FieldMapping{
			{ID: "a", TargetPath: "x"},
			{ID: "b", TargetPath: "y"},
		},
	}
	if err := rm.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := rm
	dup.FieldMappings = []FieldMapping{
		{ID: "a", TargetPath: "x"},
		{ID: "a", TargetPath: "y"},
	}
	if err := dup.Validate(); err == nil {
		t.Error("expected an error for duplicate field ids")
	}

	badDir := rm
	badDir.Direction = "SIDEWAYS"
	if err := badDir.Validate(); err == nil {
		t.Error("expected an error for an invalid direction")
	}
}

func TestResourceMapping_FHIRSideType(t *testing.T) {
	toFHIR := ResourceMapping{SourceType: "PatientRecord", TargetType: "Patient", Direction: JSONToFHIR}
	if toFHIR.FHIRSideType() != "Patient" {
		t.Errorf("got %q, want Patient", toFHIR.FHIRSideType())
	}

	fromFHIR := ResourceMapping{SourceType: "Patient", TargetType: "PatientRecord", Direction: FHIRToJSON}
	if fromFHIR.FHIRSideType() != "Patient" {
		t.Errorf("got %q, want Patient", fromFHIR.FHIRSideType())
	}
}
