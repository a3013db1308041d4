// Package lookup implements the code lookup table: a pair of indices built
// from a list of source/target code pairs, supporting forward lookup
// always and reverse lookup when the table is declared bidirectional.
package lookup

import (
	"fmt"

	"github.com/pradeepkk321/fhir-mapper/errs"
)

// Mapping is a single source-code to target-code translation entry.
type Mapping struct {
	SourceCode string `json:"sourceCode"`
	TargetCode string `json:"targetCode"`
	Display    string `json:"display,omitempty"`
}

// Table is a CodeLookupTable: id, vocabularies, directionality, optional
// defaults, and the mapping list it was built from. Tables are immutable
// after NewTable succeeds and are safe to share across goroutines.
type Table struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SourceSystem      string    `json:"sourceSystem"`
	TargetSystem      string    `json:"targetSystem"`
	Bidirectional     bool      `json:"bidirectional"`
	DefaultSourceCode *string   `json:"defaultSourceCode,omitempty"`
	DefaultTargetCode *string   `json:"defaultTargetCode,omitempty"`
	Mappings          []Mapping `json:"mappings"`

	bySource map[string]string
	byTarget map[string]string
}

// NewTable validates the table's invariants (id non-empty, at least one
// mapping, unique source codes, and — when bidirectional — unique target
// codes) and builds the forward/reverse indices.
func NewTable(raw Table) (*Table, error) {
	t := raw
	if t.ID == "" {
		return nil, errs.New(errs.KindConfig, "lookup table: id must not be empty")
	}
	if len(t.Mappings) == 0 {
		return nil, errs.New(errs.KindConfig, fmt.Sprintf("lookup table %q: must have at least one mapping", t.ID))
	}

	t.bySource = make(map[string]string, len(t.Mappings))
	for _, m := range t.Mappings {
		if m.SourceCode == "" || m.TargetCode == "" {
			return nil, errs.New(errs.KindConfig, fmt.Sprintf("lookup table %q: sourceCode and targetCode must both be non-empty", t.ID))
		}
		if _, dup := t.bySource[m.SourceCode]; dup {
			return nil, errs.New(errs.KindConfig, fmt.Sprintf("lookup table %q: duplicate sourceCode %q", t.ID, m.SourceCode))
		}
		t.bySource[m.SourceCode] = m.TargetCode
	}

	if t.Bidirectional {
		t.byTarget = make(map[string]string, len(t.Mappings))
		for _, m := range t.Mappings {
			if _, dup := t.byTarget[m.TargetCode]; dup {
				return nil, errs.New(errs.KindConfig, fmt.Sprintf("lookup table %q: duplicate targetCode %q in bidirectional table", t.ID, m.TargetCode))
			}
			t.byTarget[m.TargetCode] = m.SourceCode
		}
	}

	return &t, nil
}

// LookupTarget translates a source code to its target code. It returns
// (code, true) on a hit, (defaultTargetCode, true) when no mapping exists
// but a default is configured, or ("", false) on a hard miss.
func (t *Table) LookupTarget(code string) (string, bool) {
	if v, ok := t.bySource[code]; ok {
		return v, true
	}
	if t.DefaultTargetCode != nil {
		return *t.DefaultTargetCode, true
	}
	return "", false
}

// LookupSource translates a target code back to its source code. It
// returns a NotBidirectional error if the table was not declared
// bidirectional.
func (t *Table) LookupSource(code string) (string, bool, error) {
	if !t.Bidirectional {
		return "", false, errs.New(errs.KindNotBidirectional, fmt.Sprintf("lookup table %q is not bidirectional", t.ID))
	}
	if v, ok := t.byTarget[code]; ok {
		return v, true, nil
	}
	if t.DefaultSourceCode != nil {
		return *t.DefaultSourceCode, true, nil
	}
	return "", false, nil
}
