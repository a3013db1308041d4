package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pradeepkk321/fhir-mapper/mapping"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadRegistry_ValidMappingLoadsCleanly(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "resources", "patient.json"), `{
		"id": "patient-to-fhir",
		"sourceType": "PatientRecord",
		"targetType": "Patient",
		"direction": "JSON_TO_FHIR",
		"fieldMappings": [{"id": "active", "sourcePath": "isActive", "targetPath": "active", "dataType": "boolean"}]
	}`)

	loader := mapping.NewLoader(zerolog.Nop())
	reg, result, err := LoadRegistry(loader, base, "4.0.1", 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg == nil || len(reg.ResourceMappings()) != 1 {
		t.Fatalf("expected one resource mapping to load, got %v", reg)
	}
	if result == nil || !result.OK() {
		t.Errorf("expected a clean validation result, got %v", result)
	}
}

func TestLoadRegistry_StrictModeAbortsOnInvalidMapping(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "resources", "bad.json"), `{
		"id": "bad",
		"sourceType": "PatientRecord",
		"targetType": "NotARealResource",
		"direction": "JSON_TO_FHIR",
		"fieldMappings": [{"id": "x", "sourcePath": "a", "targetPath": "b"}]
	}`)

	loader := mapping.NewLoader(zerolog.Nop())
	_, result, err := LoadRegistry(loader, base, "4.0.1", 1, true)
	if err == nil {
		t.Fatal("expected strict mode to abort on a validation error")
	}
	if result == nil || result.OK() {
		t.Error("expected a non-OK validation result")
	}
}
