package exprlang

import (
	"fmt"
	"strings"
	"time"

	"github.com/pradeepkk321/fhir-mapper/errs"
)

// callBuiltin dispatches a fn.* call. Every builtin returns null
// when its primary input argument is null, matching the language's
// null-propagating convention.
func callBuiltin(name string, args []interface{}) (interface{}, error) {
	switch name {
	case "uppercase":
		return applyStringFn(name, args, strings.ToUpper)
	case "lowercase":
		return applyStringFn(name, args, strings.ToLower)
	case "trim":
		return applyStringFn(name, args, strings.TrimSpace)
	case "substring":
		return fnSubstring(args)
	case "concat":
		return fnConcat(args)
	case "replace":
		return fnReplace(args)
	case "formatDate":
		return fnFormatDate(args)
	}
	return nil, errs.New(errs.KindExpression, fmt.Sprintf("unknown function fn.%s", name))
}

func applyStringFn(name string, args []interface{}, f func(string) string) (interface{}, error) {
	if len(args) != 1 {
		return nil, errs.New(errs.KindExpression, fmt.Sprintf("fn.%s takes exactly 1 argument", name))
	}
	if args[0] == nil {
		return nil, nil
	}
	return f(toDisplayString(args[0])), nil
}

func fnSubstring(args []interface{}) (interface{}, error) {
	if len(args) != 3 {
		return nil, errs.New(errs.KindExpression, "fn.substring takes exactly 3 arguments (value, start, end)")
	}
	if args[0] == nil {
		return nil, nil
	}
	s := toDisplayString(args[0])
	start, ok := toFloat(args[1])
	if !ok {
		return nil, errs.New(errs.KindExpression, "fn.substring start must be numeric")
	}
	end, ok := toFloat(args[2])
	if !ok {
		return nil, errs.New(errs.KindExpression, "fn.substring end must be numeric")
	}
	runes := []rune(s)
	si, ei := int(start), int(end)
	if si < 0 {
		si = 0
	}
	if ei > len(runes) {
		ei = len(runes)
	}
	if si >= ei || si > len(runes) {
		return "", nil
	}
	return string(runes[si:ei]), nil
}

func fnConcat(args []interface{}) (interface{}, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(toDisplayString(a))
	}
	return sb.String(), nil
}

func fnReplace(args []interface{}) (interface{}, error) {
	if len(args) != 3 {
		return nil, errs.New(errs.KindExpression, "fn.replace takes exactly 3 arguments (value, old, new)")
	}
	if args[0] == nil {
		return nil, nil
	}
	return strings.ReplaceAll(toDisplayString(args[0]), toDisplayString(args[1]), toDisplayString(args[2])), nil
}

// fnFormatDate reformats an RFC3339/date-only input using a target layout
// expressed with Go's reference-time pattern (e.g. "2006-01-02"). The second
// argument is a Go-style layout string rather than a strftime pattern.
func fnFormatDate(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, errs.New(errs.KindExpression, "fn.formatDate takes exactly 2 arguments (value, layout)")
	}
	if args[0] == nil {
		return nil, nil
	}
	raw := toDisplayString(args[0])
	layout := toDisplayString(args[1])

	for _, inLayout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(inLayout, raw); err == nil {
			return t.Format(layout), nil
		}
	}
	return nil, errs.New(errs.KindExpression, fmt.Sprintf("fn.formatDate: value %q is not a recognized date/time format", raw))
}
