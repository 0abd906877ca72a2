package symbols

import (
	"testing"

	"svcore/diag"
	"svcore/source"
)

func TestDuplicateDefinitionIsADiagnosticNotAPanic(t *testing.T) {
	table := NewTable()
	scope := NewScope(table, NoHandle)
	diags := diag.NewBag(nil)

	v1 := &VariableSymbol{}
	h1 := Alloc(table, v1)
	scope.AddMember("a", h1, source.NoRange, diags)

	v2 := &VariableSymbol{}
	h2 := Alloc(table, v2)
	got := scope.AddMember("a", h2, source.NoRange, diags)

	if got != h1 {
		t.Fatalf("AddMember on a duplicate name should return the existing handle, got %v want %v", got, h1)
	}
	if diags.ErrorCount() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", diags.ErrorCount())
	}
}

func TestWildcardImportsNeverAppearInNameMap(t *testing.T) {
	table := NewTable()
	scope := NewScope(table, NoHandle)

	wi := &WildcardImportSymbol{PackageName: "pkg"}
	h := Alloc(table, wi)
	scope.AddWildcardImport(h)

	if _, ok := scope.members[""]; ok {
		t.Fatal("a wildcard import must never be keyed into the name map")
	}
	if len(scope.wildcards) != 1 {
		t.Fatalf("expected one wildcard import, got %d", len(scope.wildcards))
	}
}

// TestFindIsExactMatchOnly asserts the contract Find and LookupUnqualified
// each actually have: Find never traverses a wildcard import, no matter how
// it was populated, and LookupUnqualified is the only path that resolves a
// name through one.
func TestFindIsExactMatchOnly(t *testing.T) {
	table := NewTable()
	pkgScope := NewScope(table, NoHandle)
	pkg := &PackageSymbol{}
	pkgHandle := Alloc(table, pkg)
	pkg.Scope = *pkgScope

	target := &VariableSymbol{}
	targetHandle := Alloc(table, target)
	diags := diag.NewBag(nil)
	pkg.Scope.AddMember("x", targetHandle, source.NoRange, diags)

	wi := &WildcardImportSymbol{PackageName: "pkg"}
	wiHandle := Alloc(table, wi)
	wi.SetResolver(table, func(name string) Handle {
		if name == "pkg" {
			return pkgHandle
		}
		return NoHandle
	})

	mod := &ModuleSymbol{}
	modHandle := Alloc(table, mod)
	mod.Scope = *NewScope(table, NoHandle)
	mod.Scope.AddWildcardImport(wiHandle)

	if _, ok := mod.Scope.Find("x"); ok {
		t.Fatal("Find must not fall back to a wildcard import; it is an exact local match only")
	}

	got, ok := LookupUnqualified(table, modHandle, "x", func(h Handle) *Scope { return scopeOfSymbol(table, h) }, diags, source.NoRange)
	if !ok || got != targetHandle {
		t.Fatalf("LookupUnqualified should fall back to the wildcard-imported package; got %v, ok=%v", got, ok)
	}
}

// TestAmbiguousWildcardImportReportsEveryCandidate asserts that when two
// wildcard-imported packages both export the same name, LookupUnqualified
// reports the ambiguity instead of silently resolving to whichever package
// happened to be imported first.
func TestAmbiguousWildcardImportReportsEveryCandidate(t *testing.T) {
	table := NewTable()
	diags := diag.NewBag(nil)

	pkgA := &PackageSymbol{}
	pkgAHandle := Alloc(table, pkgA)
	pkgA.Scope = *NewScope(table, NoHandle)
	aTarget := &VariableSymbol{}
	pkgA.Scope.AddMember("x", Alloc(table, aTarget), source.NoRange, diags)

	pkgB := &PackageSymbol{}
	pkgBHandle := Alloc(table, pkgB)
	pkgB.Scope = *NewScope(table, NoHandle)
	bTarget := &VariableSymbol{}
	pkgB.Scope.AddMember("x", Alloc(table, bTarget), source.NoRange, diags)

	wiA := &WildcardImportSymbol{PackageName: "a"}
	wiAHandle := Alloc(table, wiA)
	wiA.SetResolver(table, func(name string) Handle {
		if name == "a" {
			return pkgAHandle
		}
		return NoHandle
	})

	wiB := &WildcardImportSymbol{PackageName: "b"}
	wiBHandle := Alloc(table, wiB)
	wiB.SetResolver(table, func(name string) Handle {
		if name == "b" {
			return pkgBHandle
		}
		return NoHandle
	})

	mod := &ModuleSymbol{}
	modHandle := Alloc(table, mod)
	mod.Scope = *NewScope(table, NoHandle)
	mod.Scope.AddWildcardImport(wiAHandle)
	mod.Scope.AddWildcardImport(wiBHandle)

	before := diags.ErrorCount()
	_, ok := LookupUnqualified(table, modHandle, "x", func(h Handle) *Scope { return scopeOfSymbol(table, h) }, diags, source.NoRange)
	if !ok {
		t.Fatal("expected a resolved handle even though the reference is ambiguous")
	}
	if diags.ErrorCount() != before+1 {
		t.Fatalf("expected exactly one AmbiguousImport diagnostic, got %d new errors", diags.ErrorCount()-before)
	}
}
