package mapping

import (
	"fmt"
	"time"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/lookup"
)

// Registry holds the set of loaded resource mappings and lookup tables,
// indexed by (sourceType, direction) and by id. A Registry is
// immutable after construction and safe to share across goroutines without
// locking; hot-reload installs a new Registry via an atomic pointer swap
// rather than mutating one in place.
type Registry struct {
	FHIRVersion string
	LoadedAt    time.Time
	Generation  int

	resourceMappings []ResourceMapping
	lookupTables     map[string]*lookup.Table

	bySourceDirection map[string]*ResourceMapping
	byID              map[string]*ResourceMapping
}

// NewRegistry builds a Registry from already-parsed mappings and lookup
// tables. It does not run the full validator pipeline (see package
// validate) — it only builds the indices and resolves the "registry lookup
// returns only the first match" rule for duplicate (sourceType, direction)
// pairs.
func NewRegistry(fhirVersion string, generation int, resourceMappings []ResourceMapping, tables []*lookup.Table) *Registry {
	r := &Registry{
		FHIRVersion:       fhirVersion,
		LoadedAt:          time.Now(),
		Generation:        generation,
		resourceMappings:  resourceMappings,
		lookupTables:      make(map[string]*lookup.Table, len(tables)),
		bySourceDirection: make(map[string]*ResourceMapping, len(resourceMappings)),
		byID:              make(map[string]*ResourceMapping, len(resourceMappings)),
	}
	for _, t := range tables {
		r.lookupTables[t.ID] = t
	}
	for i := range r.resourceMappings {
		rm := &r.resourceMappings[i]
		r.byID[rm.ID] = rm
		key := indexKey(rm.SourceType, rm.Direction)
		if _, exists := r.bySourceDirection[key]; !exists {
			r.bySourceDirection[key] = rm
		}
	}
	return r
}

func indexKey(sourceType string, dir Direction) string {
	return string(dir) + "|" + sourceType
}

// FindBySourceAndDirection returns the first-loaded ResourceMapping for the
// given (sourceType, direction) pair, or nil if none is loaded.
func (r *Registry) FindBySourceAndDirection(sourceType string, dir Direction) *ResourceMapping {
	return r.bySourceDirection[indexKey(sourceType, dir)]
}

// FindByID returns the ResourceMapping with the given id, or nil.
func (r *Registry) FindByID(id string) *ResourceMapping {
	return r.byID[id]
}

// GetLookupTable returns the lookup table with the given id, or nil.
func (r *Registry) GetLookupTable(id string) *lookup.Table {
	return r.lookupTables[id]
}

// ResourceMappings returns all loaded resource mappings.
func (r *Registry) ResourceMappings() []ResourceMapping {
	return r.resourceMappings
}

// LookupTables returns all loaded lookup tables, keyed by id.
func (r *Registry) LookupTables() map[string]*lookup.Table {
	return r.lookupTables
}

// ResolveLookupReferences checks that every FieldMapping.LookupTable
// reference resolves in this registry. This is also
// exercised by the validator pipeline but is exposed here since it only
// needs the registry's own indices.
func (r *Registry) ResolveLookupReferences() error {
	for _, rm := range r.resourceMappings {
		for _, fm := range rm.FieldMappings {
			if fm.LookupTable == "" {
				continue
			}
			if _, ok := r.lookupTables[fm.LookupTable]; !ok {
				return errs.New(errs.KindConfig, fmt.Sprintf("resource mapping %q field %q: lookup table %q not found", rm.ID, fm.ID, fm.LookupTable))
			}
		}
	}
	return nil
}
