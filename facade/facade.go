// Package facade adapts every (input kind × output kind) combination the
// engine exposes around the single transformation interpreter:
// raw JSON bytes, tree.Value subtrees, typed FHIR resources via the FHIR
// bridge, and arbitrary Go objects via the tree model's native conversion.
package facade

import (
	"sync/atomic"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/fhirbridge"
	"github.com/pradeepkk321/fhir-mapper/mapping"
	"github.com/pradeepkk321/fhir-mapper/transform"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// MappingRef identifies a ResourceMapping either directly by id, or by the
// (sourceType, direction) pair the registry indexes on.
type MappingRef struct {
	ID         string
	SourceType string
}

func (ref MappingRef) resolve(reg *mapping.Registry, dir mapping.Direction) (*mapping.ResourceMapping, error) {
	var rm *mapping.ResourceMapping
	if ref.ID != "" {
		rm = reg.FindByID(ref.ID)
	} else {
		rm = reg.FindBySourceAndDirection(ref.SourceType, dir)
	}
	if rm == nil {
		return nil, errs.New(errs.KindConfig, "no resource mapping found for the given reference")
	}
	if rm.Direction != dir {
		return nil, errs.New(errs.KindDirectionMismatch, "resource mapping "+rm.ID+" has direction "+string(rm.Direction)+", facade call requires "+string(dir))
	}
	return rm, nil
}

// Facade is the engine's public entry point. Its registry is held behind an
// atomic pointer so hot-reload can install a new snapshot without disrupting
// in-flight transformations.
type Facade struct {
	registry    atomic.Pointer[mapping.Registry]
	interpreter *transform.Interpreter
	bridge      fhirbridge.FHIRBridge
}

// New creates a Facade over an initial registry snapshot.
func New(reg *mapping.Registry, bridge fhirbridge.FHIRBridge) *Facade {
	f := &Facade{interpreter: transform.NewInterpreter(), bridge: bridge}
	f.registry.Store(reg)
	return f
}

// Reload atomically installs a new registry snapshot; existing in-flight
// transformations keep running against whatever snapshot they already hold.
func (f *Facade) Reload(reg *mapping.Registry) {
	f.registry.Store(reg)
}

// Registry returns the currently installed registry snapshot.
func (f *Facade) Registry() *mapping.Registry {
	return f.registry.Load()
}

// TransformTree runs a transformation with a tree.Value input and output,
// the facade's most primitive form — every other adapter normalises to and
// from this one.
func (f *Facade) TransformTree(ref MappingRef, dir mapping.Direction, source *tree.Value, ctx *mapping.TransformationContext) (*tree.Value, error) {
	reg := f.registry.Load()
	rm, err := ref.resolve(reg, dir)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = mapping.NewContext()
	}
	return f.interpreter.Transform(source, reg, rm, ctx)
}

// TransformJSON accepts and produces raw JSON bytes. For JSON_TO_FHIR the
// output is encoded through the FHIR bridge's EncodeResource. For
// FHIR_TO_JSON the input is parsed through the bridge's ParseResource before
// interpretation.
func (f *Facade) TransformJSON(ref MappingRef, dir mapping.Direction, input []byte, ctx *mapping.TransformationContext) ([]byte, error) {
	reg := f.registry.Load()
	rm, err := ref.resolve(reg, dir)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = mapping.NewContext()
	}

	var source *tree.Value
	if dir == mapping.FHIRToJSON {
		res, err := f.bridge.ParseResource(input, rm.SourceType)
		if err != nil {
			return nil, err
		}
		source = res
	} else {
		source, err = tree.Decode(input)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, err)
		}
	}

	target, err := f.interpreter.Transform(source, reg, rm, ctx)
	if err != nil {
		return nil, err
	}

	if dir == mapping.JSONToFHIR {
		return f.bridge.EncodeResource(target)
	}
	return target.Encode()
}

// TransformObject accepts and produces arbitrary Go values (maps, slices,
// scalars) via tree.FromNative/ToNative — the seam delegated to an external
// POJO/record ↔ tree marshaller. Callers
// needing deterministic key order on the way in should prefer TransformJSON
// or TransformTree, since FromNative's key order follows Go's randomized map
// iteration.
func (f *Facade) TransformObject(ref MappingRef, dir mapping.Direction, input interface{}, ctx *mapping.TransformationContext) (interface{}, error) {
	target, err := f.TransformTree(ref, dir, tree.FromNative(input), ctx)
	if err != nil {
		return nil, err
	}
	return target.ToNative(), nil
}
