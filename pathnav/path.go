// Package pathnav interprets dotted paths with optional [i] subscripts over
// the tree.Value model: reads that never copy, and writes that
// auto-materialise intermediate maps and lists.
package pathnav

import (
	"strconv"
	"strings"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

// Segment is one dotted-path component: a map key, optionally followed by a
// literal non-negative list index.
type Segment struct {
	Name     string
	HasIndex bool
	Index    int
}

// Parse splits a path string like "name[0].given[1]" into its segments.
// Parse never fails on malformed input in the sense of returning an error;
// a segment with an unparsable index is treated as HasIndex=false with the
// bracket text kept as part of Name, which will simply fail to match
// anything useful downstream — callers that need strict validation should
// use Validate.
func Parse(path string) []Segment {
	parts := strings.Split(path, ".")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		seg := Segment{Name: p}
		if i := strings.IndexByte(p, '['); i >= 0 && strings.HasSuffix(p, "]") {
			idxStr := p[i+1 : len(p)-1]
			if n, err := strconv.Atoi(idxStr); err == nil && n >= 0 {
				seg.Name = p[:i]
				seg.HasIndex = true
				seg.Index = n
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// Validate reports whether path is well-formed: dot-separated name or
// name[i] segments with i a literal non-negative integer, no wildcards or
// predicates.
func Validate(path string) bool {
	if path == "" {
		return false
	}
	for _, p := range strings.Split(path, ".") {
		if p == "" {
			return false
		}
		name := p
		if i := strings.IndexByte(p, '['); i >= 0 {
			if !strings.HasSuffix(p, "]") {
				return false
			}
			idxStr := p[i+1 : len(p)-1]
			n, err := strconv.Atoi(idxStr)
			if err != nil || n < 0 {
				return false
			}
			name = p[:i]
		}
		if name == "" {
			return false
		}
	}
	return true
}

// Get reads the value addressed by path under root. It returns tree.Missing
// if any segment fails to resolve (absent key, out-of-range index, or the
// current node is not the container kind the segment expects). Get never
// mutates or copies the tree.
func Get(root *tree.Value, path string) *tree.Value {
	cur := root
	for _, seg := range Parse(path) {
		if cur == nil || !cur.IsMap() {
			return tree.Missing
		}
		cur = cur.Get(seg.Name)
		if seg.HasIndex {
			if cur == nil || !cur.IsList() {
				return tree.Missing
			}
			cur = cur.Index(seg.Index)
		}
	}
	return cur
}

// Set writes value at the address described by path under root,
// materialising intermediate maps and lists as needed. root must itself be
// a map (the document root). Returns a PathConflict error if an
// intermediate segment must descend through an existing scalar or through a
// container of the wrong kind.
func Set(root *tree.Value, path string, value *tree.Value) error {
	if root == nil || !root.IsMap() {
		return errs.New(errs.KindPathConflict, "Set requires a map root")
	}
	segs := Parse(path)
	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1
		if !cur.IsMap() {
			return errs.New(errs.KindPathConflict, "segment '"+seg.Name+"' expects a map container")
		}

		if !seg.HasIndex {
			if last {
				cur.Set(seg.Name, value)
				return nil
			}
			next := cur.Get(seg.Name)
			if tree.IsNullOrMissing(next) {
				next = tree.NewMap()
				cur.Set(seg.Name, next)
			} else if !next.IsMap() {
				return errs.New(errs.KindPathConflict, "segment '"+seg.Name+"' traverses a non-map value")
			}
			cur = next
			continue
		}

		// name[i]: descend into the map entry, then into the list index.
		listVal := cur.Get(seg.Name)
		if tree.IsNullOrMissing(listVal) {
			listVal = tree.NewList()
			cur.Set(seg.Name, listVal)
		} else if !listVal.IsList() {
			return errs.New(errs.KindPathConflict, "segment '"+seg.Name+"' traverses a non-list value")
		}

		if last {
			listVal.SetIndex(seg.Index, value)
			return nil
		}

		elem := listVal.Index(seg.Index)
		if tree.IsNullOrMissing(elem) {
			elem = tree.NewMap()
			listVal.SetIndex(seg.Index, elem)
		} else if !elem.IsMap() {
			return errs.New(errs.KindPathConflict, "segment '"+seg.Name+"["+strconv.Itoa(seg.Index)+"]' traverses a non-map value")
		}
		cur = elem
	}
	return nil
}
