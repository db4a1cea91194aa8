package join

import (
	"errors"
	"testing"
)

type record struct {
	GUID string
	Name string
}

func TestBuildLookup_Resolve(t *testing.T) {
	items := []record{
		{GUID: "a", Name: "alpha"},
		{GUID: "b", Name: "beta"},
	}

	lookup, err := BuildLookup(items, func(r record) string { return r.GUID })
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}

	if lookup.Len() != 2 {
		t.Errorf("Len() = %d, want 2", lookup.Len())
	}

	got, ok := lookup.Resolve("a")
	if !ok {
		t.Fatal("Resolve(a) ok = false, want true")
	}
	if got.Name != "alpha" {
		t.Errorf("Resolve(a).Name = %q, want alpha", got.Name)
	}
}

func TestBuildLookup_EmptyInput(t *testing.T) {
	lookup, err := BuildLookup(nil, func(r record) string { return r.GUID })
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}
	if lookup.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lookup.Len())
	}
	if _, ok := lookup.Resolve("a"); ok {
		t.Error("Resolve(a) ok = true on empty lookup, want false")
	}
}

func TestResolve_UnknownKey(t *testing.T) {
	lookup, err := BuildLookup([]record{{GUID: "a", Name: "alpha"}}, func(r record) string { return r.GUID })
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}

	got, ok := lookup.Resolve("missing")
	if ok {
		t.Error("Resolve(missing) ok = true, want false")
	}
	if got.GUID != "" || got.Name != "" {
		t.Errorf("Resolve(missing) = %+v, want zero value", got)
	}
}

func TestBuildLookup_DuplicateLastWriteWins(t *testing.T) {
	items := []record{
		{GUID: "a", Name: "first"},
		{GUID: "a", Name: "second"},
	}

	lookup, err := BuildLookup(items, func(r record) string { return r.GUID })
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}

	if lookup.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lookup.Len())
	}
	got, _ := lookup.Resolve("a")
	if got.Name != "second" {
		t.Errorf("Resolve(a).Name = %q, want second (last write wins)", got.Name)
	}
}

func TestBuildLookup_StrictDuplicate(t *testing.T) {
	items := []record{
		{GUID: "a", Name: "first"},
		{GUID: "a", Name: "second"},
	}

	_, err := BuildLookup(items, func(r record) string { return r.GUID }, Strict())
	if err == nil {
		t.Fatal("BuildLookup() error = nil, want DuplicateKeyError")
	}

	var dupErr *DuplicateKeyError
	if !errors.As(err, &dupErr) {
		t.Fatalf("error type = %T, want *DuplicateKeyError", err)
	}
	if dupErr.Key != "a" {
		t.Errorf("DuplicateKeyError.Key = %q, want a", dupErr.Key)
	}
}

func TestBuildLookup_StrictNoDuplicates(t *testing.T) {
	items := []record{
		{GUID: "a", Name: "alpha"},
		{GUID: "b", Name: "beta"},
	}

	lookup, err := BuildLookup(items, func(r record) string { return r.GUID }, Strict())
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}
	if lookup.Len() != 2 {
		t.Errorf("Len() = %d, want 2", lookup.Len())
	}
}

func TestNameOr(t *testing.T) {
	lookup, err := BuildLookup([]record{{GUID: "a", Name: "alpha"}}, func(r record) string { return r.GUID })
	if err != nil {
		t.Fatalf("BuildLookup() error = %v", err)
	}

	nameFn := func(r record) string { return r.Name }

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"resolved", "a", "alpha"},
		{"unknown key", "missing", Unresolved},
		{"empty key", "", Unresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameOr(lookup, tt.key, nameFn); got != tt.want {
				t.Errorf("NameOr(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
