// Package validate implements the load-time validator pipeline:
// structural checks, duplicate-id checks, the data-type whitelist, path
// existence against the FHIR structure catalogue, expression parsability,
// and lookup-table reference integrity.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/exprlang"
	"github.com/pradeepkk321/fhir-mapper/fhircatalog"
	"github.com/pradeepkk321/fhir-mapper/mapping"
	"github.com/pradeepkk321/fhir-mapper/pathnav"
)

// Issue is a single validator finding, either fatal (Errors) or advisory
// (Warnings).
type Issue struct {
	Kind      errs.Kind
	MappingID string
	FieldID   string
	Message   string
}

func (i Issue) String() string {
	s := i.Message
	if i.FieldID != "" {
		s = fmt.Sprintf("field %q: %s", i.FieldID, s)
	}
	if i.MappingID != "" {
		s = fmt.Sprintf("mapping %q: %s", i.MappingID, s)
	}
	return s
}

// Result separates fatal errors from advisory warnings.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether the result carries no fatal errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) addError(kind errs.Kind, mappingID, fieldID, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Kind: kind, MappingID: mappingID, FieldID: fieldID, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) addWarning(mappingID, fieldID, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{MappingID: mappingID, FieldID: fieldID, Message: fmt.Sprintf(format, args...)})
}

var validatorLiteralPattern = regexp.MustCompile(`^(notEmpty\(\)|regex\('(.*)'\)|range\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\))$`)

// Validator runs the load-time validation pipeline against a catalogue of
// FHIR resource/element definitions.
type Validator struct {
	catalogue fhircatalog.StructureCatalogue
}

// New creates a Validator backed by catalogue.
func New(catalogue fhircatalog.StructureCatalogue) *Validator {
	return &Validator{catalogue: catalogue}
}

// Validate runs every check in the pipeline against reg. If strict is true
// and any error was found, it returns a non-nil error wrapping the first one
// so callers can abort load; the full Result is always returned regardless.
func (v *Validator) Validate(reg *mapping.Registry, strict bool) (*Result, error) {
	result := &Result{}

	// Check 1: lookup table invariants are enforced at construction
	// (lookup.NewTable); by the time a table reaches the registry it has
	// already satisfied them. Nothing further to check here.

	for _, rm := range reg.ResourceMappings() {
		v.validateResourceMapping(reg, &rm, result)
	}

	if strict && !result.OK() {
		first := result.Errors[0]
		return result, errs.New(first.Kind, first.String())
	}
	return result, nil
}

func (v *Validator) validateResourceMapping(reg *mapping.Registry, rm *mapping.ResourceMapping, result *Result) {
	// Check 2: required top-level fields, FHIR side resolves in the catalogue.
	if err := rm.Validate(); err != nil {
		result.addError(errs.KindConfig, rm.ID, "", "%s", err.Error())
		return
	}

	fhirType := rm.FHIRSideType()
	def, ok := v.catalogue.Resource(fhirType)
	if !ok {
		result.addError(errs.KindConfig, rm.ID, "", "FHIR side type %q does not resolve in the structure catalogue", fhirType)
		return
	}

	for _, fm := range rm.FieldMappings {
		v.validateFieldMapping(reg, rm, &fm, def, result)
	}
}

func (v *Validator) validateFieldMapping(reg *mapping.Registry, rm *mapping.ResourceMapping, fm *mapping.FieldMapping, def *fhircatalog.ResourceDefinition, result *Result) {
	// Checks 3 & 4: structural invariants and dataType whitelist.
	if err := fm.Validate(); err != nil {
		result.addError(errs.KindConfig, rm.ID, fm.ID, "%s", err.Error())
		return
	}

	fhirPath := fm.TargetPath
	if rm.Direction == mapping.FHIRToJSON {
		fhirPath = fm.SourcePath
	}

	var elementType string
	if fhirPath != "" {
		// Check 5: first-segment path existence against the catalogue.
		segs := pathnav.Parse(fhirPath)
		if len(segs) == 0 {
			result.addError(errs.KindConfig, rm.ID, fm.ID, "empty FHIR-side path")
		} else {
			childName := segs[0].Name
			typeName, ok := v.catalogue.ChildTypeName(def, childName)
			if !ok {
				result.addError(errs.KindConfig, rm.ID, fm.ID, "FHIR-side path %q: %q is not a known child of %s", fhirPath, childName, def.Name)
			} else {
				elementType = typeName
			}
		}
	}

	// Check 6: dataType compatibility against the resolved element type.
	if fm.DataType != "" && elementType != "" {
		compatible := mapping.DataTypeCompatibility[fm.DataType]
		if compatible != nil && !contains(compatible, elementType) {
			result.addError(errs.KindConfig, rm.ID, fm.ID, "dataType %q is not compatible with FHIR element type %q", fm.DataType, elementType)
		}
	}

	// Check 7: expression parsability, plus a heuristic condition warning.
	if fm.Condition != "" {
		if err := exprlang.Validate(fm.Condition); err != nil {
			result.addError(errs.KindExpression, rm.ID, fm.ID, "condition does not parse: %s", err.Error())
		} else if !hasComparisonOrLogicalOperator(fm.Condition) {
			result.addWarning(rm.ID, fm.ID, "condition %q contains no comparison or logical operator", fm.Condition)
		}
	}
	if fm.TransformExpression != "" {
		if err := exprlang.Validate(fm.TransformExpression); err != nil {
			result.addError(errs.KindExpression, rm.ID, fm.ID, "transformExpression does not parse: %s", err.Error())
		}
	}

	// Check 8: validator literal shape.
	if fm.Validator != "" && !validatorLiteralPattern.MatchString(fm.Validator) {
		result.addWarning(rm.ID, fm.ID, "validator %q is not one of notEmpty(), regex('...'), range(min, max)", fm.Validator)
	} else if m := validatorLiteralPattern.FindStringSubmatch(fm.Validator); m != nil && m[2] != "" {
		if _, err := regexp.Compile(m[2]); err != nil {
			result.addError(errs.KindConfig, rm.ID, fm.ID, "validator regex %q does not compile: %s", m[2], err.Error())
		}
	}

	// Check 9: lookupTable reference integrity.
	if fm.LookupTable != "" {
		if reg.GetLookupTable(fm.LookupTable) == nil {
			result.addError(errs.KindConfig, rm.ID, fm.ID, "lookupTable %q not found in registry", fm.LookupTable)
		}
	}
}

func hasComparisonOrLogicalOperator(expr string) bool {
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">", "&&", "||"} {
		if strings.Contains(expr, op) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
