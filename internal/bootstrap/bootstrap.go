// Package bootstrap assembles a mapping.Registry from an on-disk base
// directory and runs the validator pipeline over it, the one sequence
// both the CLI and the HTTP /validate route need.
package bootstrap

import (
	"github.com/pradeepkk321/fhir-mapper/fhircatalog"
	"github.com/pradeepkk321/fhir-mapper/mapping"
	"github.com/pradeepkk321/fhir-mapper/validate"
)

// LoadRegistry reads basePath via loader, builds a Registry at the given
// generation, and runs the validator pipeline against it (which includes the
// lookup-table reference check). In strict mode a validation error aborts
// with a non-nil error; once basePath has loaded, the *validate.Result is
// always returned so callers can report warnings even on success. A load
// failure returns a nil Result.
func LoadRegistry(loader *mapping.Loader, basePath, fhirVersion string, generation int, strict bool) (*mapping.Registry, *validate.Result, error) {
	resourceMappings, tables, err := loader.LoadDir(basePath)
	if err != nil {
		return nil, nil, err
	}

	reg := mapping.NewRegistry(fhirVersion, generation, resourceMappings, tables)

	v := validate.New(fhircatalog.NewDefaultStore())
	result, err := v.Validate(reg, strict)
	if err != nil {
		return reg, result, err
	}
	return reg, result, nil
}
