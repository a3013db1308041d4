package exprlang

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/mapping"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// Evaluator compiles and runs condition and transform expressions.
// Expressions are cached by their resolved source text so a field mapping
// evaluated many times across a batch only pays the parse cost once.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*astNode
}

// NewEvaluator creates an Evaluator with an empty compiled-expression cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string]*astNode)}
}

func (ev *Evaluator) compile(expr string) (*astNode, error) {
	ev.mu.RLock()
	node, ok := ev.cache[expr]
	ev.mu.RUnlock()
	if ok {
		return node, nil
	}

	node, err := parse(expr)
	if err != nil {
		return nil, errs.Wrap(errs.KindExpression, err).WithExpr(expr)
	}

	ev.mu.Lock()
	ev.cache[expr] = node
	ev.mu.Unlock()
	return node, nil
}

// buildEnv binds the document's top-level fields by name, the current field
// value under "value", and the transformation context under "ctx".
// Document fields are bound as their unwrapped scalar when they
// are leaves, or as a *tree.Value subtree when they are composite, so both
// "status == 'active'" and "address.city" resolve correctly.
func buildEnv(doc *tree.Value, value *tree.Value, ctx *mapping.TransformationContext) *env {
	vars := make(map[string]interface{})
	if doc != nil && doc.IsMap() {
		for _, k := range doc.Keys() {
			vars[k] = unwrapScalar(doc.Get(k))
		}
	}
	vars["value"] = unwrapScalar(value)
	vars["ctx"] = &ctxBinding{tc: ctx}
	return &env{vars: vars}
}

// EvaluateCondition compiles and runs a field mapping's condition expression
//, coercing the result to a boolean via the language's
// truthiness rules. A null/missing result is false.
func (ev *Evaluator) EvaluateCondition(expr string, doc *tree.Value, value *tree.Value, ctx *mapping.TransformationContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	node, err := ev.compile(expr)
	if err != nil {
		return false, err
	}
	result, err := evalNode(node, buildEnv(doc, value, ctx))
	if err != nil {
		return false, errs.Wrap(errs.KindExpression, err).WithExpr(expr)
	}
	return truthy(result), nil
}

// EvaluateTransform compiles and runs a field mapping's transformExpression
//, returning the result wrapped back into the tree value model.
func (ev *Evaluator) EvaluateTransform(expr string, doc *tree.Value, value *tree.Value, ctx *mapping.TransformationContext) (*tree.Value, error) {
	node, err := ev.compile(expr)
	if err != nil {
		return nil, err
	}
	result, err := evalNode(node, buildEnv(doc, value, ctx))
	if err != nil {
		return nil, errs.Wrap(errs.KindExpression, err).WithExpr(expr)
	}
	return nativeToValue(result)
}

// nativeToValue wraps an evaluator runtime value back into *tree.Value. Only
// scalar results and passthrough subtrees are valid transform outputs; a
// ctx/settings binding escaping as a final result is a language misuse.
func nativeToValue(v interface{}) (*tree.Value, error) {
	switch t := v.(type) {
	case nil:
		return tree.NewScalar(nil), nil
	case *tree.Value:
		return t, nil
	case string, bool, float64, json.Number, int, int64:
		return tree.NewScalar(t), nil
	default:
		return nil, fmt.Errorf("expression result of type %T cannot be used as a transform output", v)
	}
}
