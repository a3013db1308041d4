// Package mapping holds the declarative mapping data model: field
// mappings, resource mappings, and the registry that indexes them together
// with the code lookup tables they reference.
package mapping

import (
	"fmt"

	"github.com/pradeepkk321/fhir-mapper/errs"
)

// Direction selects which side of a ResourceMapping is the FHIR side.
type Direction string

const (
	JSONToFHIR Direction = "JSON_TO_FHIR"
	FHIRToJSON Direction = "FHIR_TO_JSON"
)

// PrimitiveWhitelist is the set of FHIR primitive type names a FieldMapping
// may declare as dataType.
var PrimitiveWhitelist = map[string]bool{
	"string": true, "integer": true, "decimal": true, "boolean": true,
	"date": true, "dateTime": true, "time": true, "instant": true,
	"code": true, "uri": true, "url": true, "canonical": true, "oid": true,
	"uuid": true, "id": true, "markdown": true, "base64Binary": true,
	"unsignedInt": true, "positiveInt": true,
}

// DataTypeCompatibility maps a declared dataType to the FHIR element types
// it is considered compatible with.
var DataTypeCompatibility = map[string][]string{
	"string":   {"string", "markdown", "id", "code", "uri", "url", "canonical", "oid", "uuid"},
	"integer":  {"integer", "unsignedInt", "positiveInt"},
	"decimal":  {"decimal"},
	"boolean":  {"boolean"},
	"date":     {"date", "dateTime", "instant"},
	"dateTime": {"dateTime", "instant"},
	"code":     {"code", "string"},
}

// FieldMapping is a single declarative rule producing one value at
// TargetPath from an optional SourcePath, default, transform, lookup, and
// condition.
type FieldMapping struct {
	ID                  string `json:"id"`
	SourcePath          string `json:"sourcePath,omitempty"`
	TargetPath          string `json:"targetPath"`
	DataType            string `json:"dataType,omitempty"`
	TransformExpression string `json:"transformExpression,omitempty"`
	Condition           string `json:"condition,omitempty"`
	Validator           string `json:"validator,omitempty"`
	Required            bool   `json:"required"`
	DefaultValue        interface{} `json:"defaultValue,omitempty"`
	LookupTable         string `json:"lookupTable,omitempty"`
	LookupSourceField   string `json:"lookupSourceField,omitempty"`
	Description         string `json:"description,omitempty"`
}

// Validate checks the FieldMapping invariants that do not require a
// registry or structure catalogue (those checks live in the validate
// package): id and targetPath non-empty, required implies a source or
// default, and dataType (if set) is in the primitive whitelist.
func (f *FieldMapping) Validate() error {
	if f.ID == "" {
		return errs.New(errs.KindConfig, "field mapping: id must not be empty")
	}
	if f.TargetPath == "" {
		return errs.New(errs.KindConfig, fmt.Sprintf("field mapping %q: targetPath must not be empty", f.ID))
	}
	if f.Required && f.SourcePath == "" && f.DefaultValue == nil {
		return errs.New(errs.KindConfig, fmt.Sprintf("field mapping %q: required fields need sourcePath or defaultValue", f.ID))
	}
	if f.DataType != "" && !PrimitiveWhitelist[f.DataType] {
		return errs.New(errs.KindConfig, fmt.Sprintf("field mapping %q: dataType %q is not in the FHIR primitive whitelist", f.ID, f.DataType))
	}
	return nil
}

// ResourceMapping is the declarative mapping of a business domain object
// type to/from a FHIR resource type.
type ResourceMapping struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	SourceType     string         `json:"sourceType"`
	TargetType     string         `json:"targetType"`
	Version        string         `json:"version,omitempty"`
	Direction      Direction      `json:"direction"`
	FieldMappings  []FieldMapping `json:"fieldMappings"`
}

// FHIRSideType returns whichever of SourceType/TargetType is the FHIR-side
// type name, per Direction.
func (r *ResourceMapping) FHIRSideType() string {
	if r.Direction == JSONToFHIR {
		return r.TargetType
	}
	return r.SourceType
}

// Validate checks the structural invariants that don't need external
// collaborators: required top-level fields present, field ids unique, and
// each field mapping individually valid.
func (r *ResourceMapping) Validate() error {
	if r.ID == "" {
		return errs.New(errs.KindConfig, "resource mapping: id must not be empty")
	}
	if r.SourceType == "" || r.TargetType == "" {
		return errs.New(errs.KindConfig, fmt.Sprintf("resource mapping %q: sourceType and targetType are required", r.ID))
	}
	if r.Direction != JSONToFHIR && r.Direction != FHIRToJSON {
		return errs.New(errs.KindConfig, fmt.Sprintf("resource mapping %q: direction must be JSON_TO_FHIR or FHIR_TO_JSON", r.ID))
	}
	seen := make(map[string]bool, len(r.FieldMappings))
	for _, fm := range r.FieldMappings {
		if err := fm.Validate(); err != nil {
			return err
		}
		if seen[fm.ID] {
			return errs.New(errs.KindConfig, fmt.Sprintf("resource mapping %q: duplicate field id %q", r.ID, fm.ID))
		}
		seen[fm.ID] = true
	}
	return nil
}

// TransformationContext is the per-request carrier of organization/
// facility/tenant scope and substitution values for $ctx.* references
//. It must not be shared across concurrent transformations.
type TransformationContext struct {
	OrganizationID string
	FacilityID     string
	TenantID       string
	Variables      map[string]interface{}
	Settings       map[string]string
}

// NewContext creates an empty TransformationContext with initialized maps.
func NewContext() *TransformationContext {
	return &TransformationContext{
		Variables: make(map[string]interface{}),
		Settings:  make(map[string]string),
	}
}
