// Package fhircatalog provides the structure catalogue collaborator the
// validator pipeline uses to check that a field mapping's FHIR-side path
// names a real child of the FHIR resource type (first-segment-only check,
// ).
package fhircatalog

import (
	"strings"
	"sync"
)

// ElementDefinition describes one direct child element of a resource type:
// its name and declared FHIR type code. Only the first-level shape is kept
// since the validator never traverses past the first path segment.
type ElementDefinition struct {
	Name string
	Type string
}

// ResourceDefinition is the first-level shape of a FHIR resource type: its
// name and the set of element names it directly exposes.
type ResourceDefinition struct {
	Name     string
	Elements map[string]ElementDefinition
}

// StructureCatalogue resolves resource and child-element definitions.
type StructureCatalogue interface {
	Resource(typeName string) (*ResourceDefinition, bool)
	ChildTypeName(def *ResourceDefinition, childName string) (string, bool)
}

// Store is a thread-safe in-memory StructureCatalogue, mirroring the
// teacher's StructureDefinitionStore but trimmed to the first-level shape
// the permissive validator actually needs.
type Store struct {
	mu    sync.RWMutex
	defs  map[string]*ResourceDefinition
}

// NewStore creates an empty Store. Use NewDefaultStore for one pre-seeded
// with the resource types this module's example mappings target.
func NewStore() *Store {
	return &Store{defs: make(map[string]*ResourceDefinition)}
}

// Register adds or replaces a resource definition.
func (s *Store) Register(def *ResourceDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.Name] = def
}

// Resource returns the definition for typeName, or false if unknown.
func (s *Store) Resource(typeName string) (*ResourceDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[typeName]
	return def, ok
}

// ChildTypeName returns the declared type code of def's child element named
// childName, ignoring any `[x]` polymorphic suffix variants (e.g. a path
// segment "value" matches an element declared as "value[x]").
func (s *Store) ChildTypeName(def *ResourceDefinition, childName string) (string, bool) {
	if def == nil {
		return "", false
	}
	if e, ok := def.Elements[childName]; ok {
		return e.Type, true
	}
	if e, ok := def.Elements[childName+"[x]"]; ok {
		return e.Type, true
	}
	for name, e := range def.Elements {
		if strings.TrimSuffix(name, "[x]") == childName {
			return e.Type, true
		}
	}
	return "", false
}

// RegisterBaseDefinitions seeds store with the first-level element shape of
// the FHIR R4 resource types this module's bundled example mappings target:
// Patient, Observation, Condition, Encounter, Procedure, Immunization.
func RegisterBaseDefinitions(store *Store) {
	reg := func(name string, elems ...ElementDefinition) {
		m := make(map[string]ElementDefinition, len(elems)+2)
		m["id"] = ElementDefinition{Name: "id", Type: "id"}
		m["meta"] = ElementDefinition{Name: "meta", Type: "Meta"}
		for _, e := range elems {
			m[e.Name] = e
		}
		store.Register(&ResourceDefinition{Name: name, Elements: m})
	}

	reg("Patient",
		ElementDefinition{Name: "identifier", Type: "Identifier"},
		ElementDefinition{Name: "active", Type: "boolean"},
		ElementDefinition{Name: "name", Type: "HumanName"},
		ElementDefinition{Name: "gender", Type: "code"},
		ElementDefinition{Name: "birthDate", Type: "date"},
		ElementDefinition{Name: "address", Type: "Address"},
		ElementDefinition{Name: "telecom", Type: "ContactPoint"},
	)

	reg("Observation",
		ElementDefinition{Name: "status", Type: "code"},
		ElementDefinition{Name: "code", Type: "CodeableConcept"},
		ElementDefinition{Name: "subject", Type: "Reference"},
		ElementDefinition{Name: "value[x]", Type: "Quantity"},
		ElementDefinition{Name: "effective[x]", Type: "dateTime"},
		ElementDefinition{Name: "category", Type: "CodeableConcept"},
	)

	reg("Condition",
		ElementDefinition{Name: "clinicalStatus", Type: "CodeableConcept"},
		ElementDefinition{Name: "verificationStatus", Type: "CodeableConcept"},
		ElementDefinition{Name: "code", Type: "CodeableConcept"},
		ElementDefinition{Name: "subject", Type: "Reference"},
		ElementDefinition{Name: "onset[x]", Type: "dateTime"},
	)

	reg("Encounter",
		ElementDefinition{Name: "status", Type: "code"},
		ElementDefinition{Name: "class", Type: "Coding"},
		ElementDefinition{Name: "subject", Type: "Reference"},
		ElementDefinition{Name: "period", Type: "Period"},
		ElementDefinition{Name: "reasonCode", Type: "CodeableConcept"},
	)

	reg("Procedure",
		ElementDefinition{Name: "status", Type: "code"},
		ElementDefinition{Name: "code", Type: "CodeableConcept"},
		ElementDefinition{Name: "subject", Type: "Reference"},
		ElementDefinition{Name: "performed[x]", Type: "dateTime"},
	)

	reg("Immunization",
		ElementDefinition{Name: "status", Type: "code"},
		ElementDefinition{Name: "vaccineCode", Type: "CodeableConcept"},
		ElementDefinition{Name: "patient", Type: "Reference"},
		ElementDefinition{Name: "occurrence[x]", Type: "dateTime"},
	)
}

// NewDefaultStore creates a Store pre-seeded via RegisterBaseDefinitions.
func NewDefaultStore() *Store {
	s := NewStore()
	RegisterBaseDefinitions(s)
	return s
}
