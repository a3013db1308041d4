// Package transform implements the transformation interpreter:
// given a source tree, a ResourceMapping, and a TransformationContext, it
// walks field mappings in declared order and materialises the target tree.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/exprlang"
	"github.com/pradeepkk321/fhir-mapper/mapping"
	"github.com/pradeepkk321/fhir-mapper/pathnav"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// Interpreter runs the per-field algorithm against a single ResourceMapping.
// It holds no mutable process-wide state: a single Interpreter may run many
// transformations concurrently against different registries.
type Interpreter struct {
	evaluator *exprlang.Evaluator
}

// NewInterpreter creates an Interpreter with its own expression cache.
func NewInterpreter() *Interpreter {
	return &Interpreter{evaluator: exprlang.NewEvaluator()}
}

// Transform runs rm's field mappings against source, using reg to resolve
// lookup tables and ctx for $ctx substitution. For JSON_TO_FHIR, resourceType
// is set on the target before the field loop; for FHIR_TO_JSON no injection
// occurs.
func (in *Interpreter) Transform(source *tree.Value, reg *mapping.Registry, rm *mapping.ResourceMapping, ctx *mapping.TransformationContext) (*tree.Value, error) {
	target := tree.NewMap()
	if rm.Direction == mapping.JSONToFHIR {
		target.Set("resourceType", tree.NewScalar(rm.TargetType))
	}

	for i := range rm.FieldMappings {
		fm := &rm.FieldMappings[i]
		skip, err := in.applyField(source, target, reg, fm, ctx)
		if err != nil {
			if fm.Required {
				return nil, wrapFieldError(err, rm.ID, fm.ID)
			}
			continue
		}
		if skip {
			continue
		}
	}
	return target, nil
}

func wrapFieldError(err error, mappingID, fieldID string) error {
	if fe, ok := err.(*errs.Error); ok {
		return fe.WithMapping(mappingID).WithField(fieldID)
	}
	return errs.Wrap(errs.KindExpression, err).WithMapping(mappingID).WithField(fieldID)
}

// applyField runs steps 1-9 of the per-field algorithm for a single field
// mapping. skip=true means the field is omitted from the output with no
// error (steps 1 and 5); a non-nil error means some step 1-9 failed.
func (in *Interpreter) applyField(source, target *tree.Value, reg *mapping.Registry, fm *mapping.FieldMapping, ctx *mapping.TransformationContext) (skip bool, err error) {
	// Step 1: condition.
	if fm.Condition != "" {
		ok, err := in.evaluator.EvaluateCondition(fm.Condition, source, nil, ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
	}

	// Step 2: read.
	var v *tree.Value
	if fm.SourcePath != "" {
		v = pathnav.Get(source, fm.SourcePath)
	}

	// Step 3: default.
	if tree.IsNullOrMissing(v) && fm.DefaultValue != nil {
		v = tree.FromNative(exprlang.ResolveCtxDefault(fm.DefaultValue, ctx))
	}

	// Step 4: required check.
	if tree.IsNullOrMissing(v) && fm.Required {
		return false, errs.New(errs.KindRequiredMissing, fmt.Sprintf("field %q: no source value and no default", fm.ID))
	}

	// Step 5: skip.
	if tree.IsNullOrMissing(v) && !fm.Required {
		return true, nil
	}

	// Step 6: lookup.
	if fm.LookupTable != "" {
		table := reg.GetLookupTable(fm.LookupTable)
		if table == nil {
			return false, errs.New(errs.KindConfig, fmt.Sprintf("lookup table %q not found", fm.LookupTable))
		}
		code, ok := table.LookupTarget(tree.Stringify(v))
		if !ok {
			return false, errs.New(errs.KindLookupMiss, fmt.Sprintf("no lookup target for code %q in table %q", tree.Stringify(v), fm.LookupTable))
		}
		v = tree.NewScalar(code)
	}

	// Step 7: transform.
	if fm.TransformExpression != "" {
		result, err := in.evaluator.EvaluateTransform(fm.TransformExpression, source, v, ctx)
		if err != nil {
			return false, err
		}
		v = result
	}

	// Step 8: validate.
	if fm.Validator != "" {
		if err := runValidator(fm.Validator, v); err != nil {
			return false, err
		}
	}

	// Step 9: write.
	if err := pathnav.Set(target, fm.TargetPath, v); err != nil {
		return false, err
	}
	return false, nil
}

var rangeLiteralPattern = regexp.MustCompile(`^range\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)$`)
var regexLiteralPattern = regexp.MustCompile(`^regex\('(.*)'\)$`)

// runValidator runs one of the three validator literals from 
// against v's stringified form, returning a ValidationFailure on mismatch.
func runValidator(literal string, v *tree.Value) error {
	switch {
	case literal == "notEmpty()":
		if strings.TrimSpace(tree.Stringify(v)) == "" {
			return errs.New(errs.KindValidationFailure, "notEmpty(): value is empty")
		}
		return nil

	case regexLiteralPattern.MatchString(literal):
		pattern := regexLiteralPattern.FindStringSubmatch(literal)[1]
		re, err := regexp.Compile(pattern)
		if err != nil {
			return errs.Wrap(errs.KindValidationFailure, fmt.Errorf("regex(%q): invalid pattern: %w", pattern, err))
		}
		if !re.MatchString(tree.Stringify(v)) {
			return errs.New(errs.KindValidationFailure, fmt.Sprintf("regex(%q): value %q does not match", pattern, tree.Stringify(v)))
		}
		return nil

	case rangeLiteralPattern.MatchString(literal):
		m := rangeLiteralPattern.FindStringSubmatch(literal)
		min, _ := strconv.ParseFloat(m[1], 64)
		max, _ := strconv.ParseFloat(m[2], 64)
		f, ok := tree.ScalarToFloat(v.Scalar())
		if !ok {
			return errs.New(errs.KindValidationFailure, fmt.Sprintf("range(%s, %s): value %q is not numeric", m[1], m[2], tree.Stringify(v)))
		}
		if f < min || f > max {
			return errs.New(errs.KindValidationFailure, fmt.Sprintf("range(%s, %s): value %v is out of range", m[1], m[2], f))
		}
		return nil

	default:
		return nil
	}
}
