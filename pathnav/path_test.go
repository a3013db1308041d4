package pathnav

import (
	"testing"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/tree"
)

func TestParse(t *testing.T) {
	segs := Parse("name[0].given[1]")
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Name != "name" || !segs[0].HasIndex || segs[0].Index != 0 {
		t.Errorf("got %+v, want name[0]", segs[0])
	}
	if segs[1].Name != "given" || !segs[1].HasIndex || segs[1].Index != 1 {
		t.Errorf("got %+v, want given[1]", segs[1])
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.b.c", true},
		{"a[0].b", true},
		{"", false},
		{"a..b", false},
		{"a[x]", false},
		{"a[-1]", false},
	}
	for _, c := range cases {
		if got := Validate(c.path); got != c.want {
			t.Errorf("Validate(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestGet_SimpleAndIndexed(t *testing.T) {
	root := tree.NewMap()
	names := tree.NewList()
	names.Append(tree.NewScalar("Jane"))
	names.Append(tree.NewScalar("Doe"))
	root.Set("name", names)

	if tree.Stringify(Get(root, "name[0]")) != "Jane" {
		t.Errorf("got %q, want Jane", tree.Stringify(Get(root, "name[0]")))
	}
	if !tree.IsNullOrMissing(Get(root, "name[5]")) {
		t.Error("expected an out-of-range index to be missing")
	}
	if !tree.IsNullOrMissing(Get(root, "missing.path")) {
		t.Error("expected a missing path to resolve to Missing")
	}
}

func TestSet_AutoMaterializesIntermediateContainers(t *testing.T) {
	root := tree.NewMap()
	if err := Set(root, "address.city", tree.NewScalar("Springfield")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Stringify(Get(root, "address.city")) != "Springfield" {
		t.Errorf("got %q, want Springfield", tree.Stringify(Get(root, "address.city")))
	}
}

func TestSet_AutoMaterializesListsAndElements(t *testing.T) {
	root := tree.NewMap()
	if err := Set(root, "name[0].given", tree.NewScalar("Jane")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Stringify(Get(root, "name[0].given")) != "Jane" {
		t.Errorf("got %q, want Jane", tree.Stringify(Get(root, "name[0].given")))
	}
}

func TestSet_PathConflictOnScalarTraversal(t *testing.T) {
	root := tree.NewMap()
	root.Set("address", tree.NewScalar("flat string"))

	err := Set(root, "address.city", tree.NewScalar("Springfield"))
	if err == nil {
		t.Fatal("expected a PathConflict error traversing through an existing scalar")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindPathConflict {
		t.Errorf("got kind %v, want PathConflict", kind)
	}
}

func TestSet_PathConflictOnListTypeMismatch(t *testing.T) {
	root := tree.NewMap()
	root.Set("name", tree.NewScalar("flat string"))

	err := Set(root, "name[0]", tree.NewScalar("Jane"))
	if err == nil {
		t.Fatal("expected a PathConflict error indexing into a non-list value")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindPathConflict {
		t.Errorf("got kind %v, want PathConflict", kind)
	}
}

func TestSet_IdempotentAutoMaterialization(t *testing.T) {
	root := tree.NewMap()
	if err := Set(root, "name[0].given", tree.NewScalar("Jane")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Set(root, "name[0].family", tree.NewScalar("Doe")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Stringify(Get(root, "name[0].given")) != "Jane" {
		t.Error("expected the first write to survive a second write to a sibling field")
	}
	if tree.Stringify(Get(root, "name[0].family")) != "Doe" {
		t.Error("expected the second write to land alongside the first")
	}
	if Get(root, "name").Len() != 1 {
		t.Error("expected writing to the same index twice to not grow the list further")
	}
}
