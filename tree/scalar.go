package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stringify renders any scalar Value (or nil) as a string, following the
// same rules the interpreter uses to turn a field's working value into a
// lookup-table key: numbers use their canonical decimal form, booleans
// render as "true"/"false", and a missing/null value renders as "".
func Stringify(v *Value) string {
	if v == nil {
		return ""
	}
	return ScalarToString(v.Scalar())
}

// ScalarToString converts a raw scalar (string, json.Number, float64,
// bool, or nil) to its string form.
func ScalarToString(s interface{}) string {
	switch t := s.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ScalarToFloat attempts to interpret a raw scalar as a float64.
func ScalarToFloat(s interface{}) (float64, bool) {
	switch t := s.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ScalarToBool applies truthiness coercion: nil/missing is false; a bool is
// itself; any other non-nil scalar is true.
func ScalarToBool(s interface{}) bool {
	if s == nil {
		return false
	}
	if b, ok := s.(bool); ok {
		return b
	}
	return true
}

// IsNullOrMissing reports whether v represents either Missing or an
// explicit scalar null.
func IsNullOrMissing(v *Value) bool {
	if v == nil {
		return true
	}
	return v.kind == KindScalar && v.scalar == nil
}
