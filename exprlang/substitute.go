package exprlang

import (
	"regexp"

	"github.com/pradeepkk321/fhir-mapper/mapping"
)

// ctxDefaultPattern matches a defaultValue string that is nothing but a bare
// $ctx.* reference: "$ctx.organizationId",
// "$ctx.settings['key']", "$ctx.someVariable". Anything else is treated as
// a literal default value, not a substitution target.
var ctxDefaultPattern = regexp.MustCompile(`^\$ctx(\.[A-Za-z_][A-Za-z0-9_]*|\[[^\]]+\])+$`)

// ResolveCtxDefault resolves a defaultValue according to : when raw
// is a string consisting solely of a $ctx.* reference, the referenced value
// itself (not a quoted literal) is returned. Any other raw value, including
// a string that merely contains a $ctx token among other text, is returned
// unchanged — expression-level $ctx substitution inside condition/transform
// expressions is handled by the evaluator's "ctx" variable binding instead.
func ResolveCtxDefault(raw interface{}, ctx *mapping.TransformationContext) interface{} {
	s, ok := raw.(string)
	if !ok || !ctxDefaultPattern.MatchString(s) {
		return raw
	}
	node, err := parse(s)
	if err != nil {
		return raw
	}
	result, err := evalNode(node, &env{vars: map[string]interface{}{"ctx": &ctxBinding{tc: ctx}}})
	if err != nil {
		return nil
	}
	return result
}
