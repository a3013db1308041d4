package fhircatalog

import "testing"

func TestStore_ResourceAndChildTypeName(t *testing.T) {
	store := NewDefaultStore()

	def, ok := store.Resource("Patient")
	if !ok {
		t.Fatal("expected Patient to be registered")
	}

	typ, ok := store.ChildTypeName(def, "gender")
	if !ok || typ != "code" {
		t.Errorf("got (%q, %v), want (code, true)", typ, ok)
	}

	if _, ok := store.ChildTypeName(def, "nonsense"); ok {
		t.Error("expected nonsense to not resolve as a Patient child")
	}
}

func TestStore_PolymorphicSuffixMatch(t *testing.T) {
	store := NewDefaultStore()
	def, _ := store.Resource("Observation")

	typ, ok := store.ChildTypeName(def, "value")
	if !ok || typ != "Quantity" {
		t.Errorf("got (%q, %v), want (Quantity, true) for value[x] matched by value", typ, ok)
	}
}

func TestStore_UnknownResource(t *testing.T) {
	store := NewDefaultStore()
	if _, ok := store.Resource("NotARealResource"); ok {
		t.Error("expected unknown resource type to not resolve")
	}
}

func TestStore_ChildTypeNameNilDefinition(t *testing.T) {
	store := NewStore()
	if _, ok := store.ChildTypeName(nil, "anything"); ok {
		t.Error("expected nil definition to never resolve a child")
	}
}

func TestRegisterBaseDefinitions_AlwaysHasIDAndMeta(t *testing.T) {
	store := NewDefaultStore()
	for _, name := range []string{"Patient", "Observation", "Condition", "Encounter", "Procedure", "Immunization"} {
		def, ok := store.Resource(name)
		if !ok {
			t.Fatalf("expected %s to be registered", name)
		}
		if _, ok := store.ChildTypeName(def, "id"); !ok {
			t.Errorf("%s: expected id element", name)
		}
		if _, ok := store.ChildTypeName(def, "meta"); !ok {
			t.Errorf("%s: expected meta element", name)
		}
	}
}
