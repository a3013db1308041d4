package exprlang

import (
	"fmt"
	"strings"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// env holds the variable bindings visible while evaluating one expression:
// the document's own fields (bound by name, ), the "value"
// placeholder for transform expressions, and "ctx" for $ctx substitution.
type env struct {
	vars map[string]interface{}
}

func (e *env) lookup(name string) (interface{}, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func evalNode(node *astNode, e *env) (interface{}, error) {
	switch node.kind {
	case ndLiteral:
		return node.value, nil

	case ndPath:
		name := strings.TrimPrefix(node.value.(string), "$")
		if v, ok := e.lookup(name); ok {
			return v, nil
		}
		return nil, nil

	case ndDot:
		recv, err := evalNode(node.children[0], e)
		if err != nil {
			return nil, err
		}
		return evalDot(recv, node.value.(string))

	case ndIndex:
		recv, err := evalNode(node.children[0], e)
		if err != nil {
			return nil, err
		}
		return evalIndex(recv, node.value)

	case ndFunction:
		return evalFunction(node, e)

	case ndUnaryNot:
		v, err := evalNode(node.children[0], e)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil

	case ndUnaryNeg:
		v, err := evalNode(node.children[0], e)
		if err != nil {
			return nil, err
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("cannot negate non-numeric value %v", v)
		}
		return -f, nil

	case ndBinary:
		return evalBinary(node, e)
	}
	return nil, fmt.Errorf("unhandled node kind %v", node.kind)
}

// evalDot resolves member access on the evaluator's small value space:
// document subtrees (*tree.Value maps), the ctx binding, and the settings
// sub-binding. Dotting into anything else yields null, matching the
// null-propagating semantics the rest of the language uses.
func evalDot(recv interface{}, name string) (interface{}, error) {
	switch r := recv.(type) {
	case nil:
		return nil, nil
	case *ctxBinding:
		return r.dot(name), nil
	case *tree.Value:
		if r == nil || !r.IsMap() {
			return nil, nil
		}
		return unwrapScalar(r.Get(name)), nil
	default:
		return nil, nil
	}
}

func evalIndex(recv interface{}, idx interface{}) (interface{}, error) {
	switch r := recv.(type) {
	case nil:
		return nil, nil
	case *settingsBinding:
		key, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("settings index must be a string key")
		}
		return r.index(key), nil
	case *tree.Value:
		if r == nil {
			return nil, nil
		}
		switch k := idx.(type) {
		case int:
			if !r.IsList() {
				return nil, nil
			}
			return unwrapScalar(r.Index(k)), nil
		case string:
			if !r.IsMap() {
				return nil, nil
			}
			return unwrapScalar(r.Get(k)), nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// unwrapScalar converts a *tree.Value that happens to be a scalar leaf into
// its native interface{} so arithmetic/comparison/string operators can act
// on it directly; composite subtrees are returned as *tree.Value so further
// dotting/indexing keeps working.
func unwrapScalar(v *tree.Value) interface{} {
	if v == nil {
		return nil
	}
	if v.IsScalar() {
		return v.Scalar()
	}
	return v
}

func evalFunction(node *astNode, e *env) (interface{}, error) {
	recv := node.children[0]
	if recv.kind == ndPath && recv.value.(string) == "fn" {
		args := make([]interface{}, 0, len(node.children)-1)
		for _, c := range node.children[1:] {
			v, err := evalNode(c, e)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return callBuiltin(node.value.(string), args)
	}
	return nil, errs.New(errs.KindExpression, fmt.Sprintf("unknown function receiver, only fn.* is callable: %q", node.value))
}

func evalBinary(node *astNode, e *env) (interface{}, error) {
	op := node.value.(string)

	if op == "&&" || op == "||" {
		left, err := evalNode(node.children[0], e)
		if err != nil {
			return nil, err
		}
		if op == "&&" && !truthy(left) {
			return false, nil
		}
		if op == "||" && truthy(left) {
			return true, nil
		}
		right, err := evalNode(node.children[1], e)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	left, err := evalNode(node.children[0], e)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(node.children[1], e)
	if err != nil {
		return nil, err
	}

	switch op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "<", ">", "<=", ">=":
		return compare(left, right, op)
	case "+":
		return evalPlus(left, right)
	case "-", "*", "/":
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return nil, fmt.Errorf("operator %q requires numeric operands", op)
		}
		switch op {
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return lf / rf, nil
		}
	}
	return nil, fmt.Errorf("unhandled operator %q", op)
}

// evalPlus implements "+" as numeric addition when both sides are numeric,
// and as string concatenation otherwise.
func evalPlus(left, right interface{}) (interface{}, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return lf + rf, nil
	}
	return toDisplayString(left) + toDisplayString(right), nil
}

func compare(left, right interface{}, op string) (interface{}, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		switch op {
		case "<":
			return lf < rf, nil
		case ">":
			return lf > rf, nil
		case "<=":
			return lf <= rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}
	ls, rs := toDisplayString(left), toDisplayString(right)
	switch op {
	case "<":
		return ls < rs, nil
	case ">":
		return ls > rs, nil
	case "<=":
		return ls <= rs, nil
	case ">=":
		return ls >= rs, nil
	}
	return nil, fmt.Errorf("unhandled comparison operator %q", op)
}

func valuesEqual(left, right interface{}) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			return lf == rf
		}
	}
	return toDisplayString(left) == toDisplayString(right)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case *tree.Value, *ctxBinding, *settingsBinding:
		return true
	default:
		return tree.ScalarToBool(v)
	}
}

// toFloat accepts float64 directly plus anything tree.ScalarToFloat can
// coerce (json.Number, int, int64), since document scalars decoded via
// tree.Decode arrive as json.Number rather than float64.
func toFloat(v interface{}) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	switch v.(type) {
	case bool, string, nil:
		return 0, false
	}
	return tree.ScalarToFloat(v)
}

func toDisplayString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return trimFloat(t)
	case *tree.Value:
		return tree.Stringify(t)
	default:
		if f, ok := tree.ScalarToFloat(v); ok {
			return trimFloat(f)
		}
		return fmt.Sprintf("%v", t)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return strings.TrimSuffix(s, ".0")
}
