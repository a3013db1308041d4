package exprlang

// Validate reports whether expr parses as a syntactically valid expression.
// It performs no evaluation, so it never needs bound variable values — this
// is what the validator pipeline uses for its parsability check (
// check 7), including on expressions containing $ctx.* tokens.
func Validate(expr string) error {
	_, err := parse(expr)
	return err
}
