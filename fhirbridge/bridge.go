// Package fhirbridge stands in for the external FHIR library the
// specification treats as an out-of-scope collaborator: parsing
// canonical FHIR JSON into a typed resource and encoding a typed resource
// back to JSON. No typed FHIR R4 struct library is vendored into this
// module, so Resource is the tree model's root map and the default bridge
// operates directly on it; a real typed-resource library would replace
// JSONBridge behind the same interface.
package fhirbridge

import (
	"fmt"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// Resource is the FHIR-side document handed across the bridge boundary.
// With the default JSONBridge this is exactly the tree model's root map.
type Resource = *tree.Value

// FHIRBridge parses and encodes FHIR resources.
type FHIRBridge interface {
	ParseResource(data []byte, typeName string) (Resource, error)
	EncodeResource(r Resource) ([]byte, error)
}

// JSONBridge is the default FHIRBridge: it treats canonical FHIR JSON as an
// ordinary ordered JSON document and only checks that resourceType matches
// the expected type on parse.
type JSONBridge struct{}

// NewJSONBridge creates a JSONBridge.
func NewJSONBridge() *JSONBridge { return &JSONBridge{} }

// ParseResource decodes data as an ordered tree and verifies its
// resourceType field matches typeName. The check is skipped when typeName
// is empty or the document has no resourceType.
func (b *JSONBridge) ParseResource(data []byte, typeName string) (Resource, error) {
	v, err := tree.Decode(data)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, fmt.Errorf("parsing FHIR resource: %w", err))
	}
	if !v.IsMap() {
		return nil, errs.New(errs.KindConfig, "FHIR resource document must be a JSON object")
	}
	got := tree.Stringify(v.Get("resourceType"))
	if got != "" && typeName != "" && got != typeName {
		return nil, errs.New(errs.KindConfig, fmt.Sprintf("FHIR resource has resourceType %q, expected %q", got, typeName))
	}
	return v, nil
}

// EncodeResource marshals r to canonical JSON, preserving field order.
func (b *JSONBridge) EncodeResource(r Resource) ([]byte, error) {
	data, err := r.Encode()
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, fmt.Errorf("encoding FHIR resource: %w", err))
	}
	return data, nil
}
