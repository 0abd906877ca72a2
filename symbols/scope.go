package symbols

import (
	"svcore/diag"
	"svcore/source"
)

// Scope is embedded by every symbol kind that can contain members (modules,
// interfaces, packages, modports, function/task bodies).
// Wildcard imports are kept out of the name map entirely — a sideband slice
// holds them in declaration order — so LookupUnqualified can walk explicit
// members first and only fall back to wildcard-imported packages when no
// local or explicit-import member matches, matching the original's
// "wildcard imports never appear directly in the symbol map" rule.
type Scope struct {
	table *Table

	members     map[string]Handle
	order       []Handle // declaration order, for deterministic iteration
	wildcards   []Handle // KindWildcardImport handles, in declaration order
	parent      Handle   // enclosing scope, NoHandle for the compilation root
}

// NewScope creates an empty Scope backed by t, nested inside parent (which
// may be NoHandle for a top-level scope).
func NewScope(t *Table, parent Handle) *Scope {
	return &Scope{table: t, members: make(map[string]Handle), parent: parent}
}

// AddMember inserts sym under name. If name is already taken, it reports
// DuplicateDefinition and returns the *existing* symbol rather than
// replacing it — matching both the original's and the teacher's
// duplicate-name-is-a-diagnostic-not-a-hard-error convention (depm.Define
// for the teacher, Scope::addMember for the original).
func (s *Scope) AddMember(name string, h Handle, defRange source.Range, diags *diag.Bag) Handle {
	if existing, ok := s.members[name]; ok {
		diags.Report(diag.DuplicateDefinition, diag.Error, defRange, name)
		return existing
	}
	s.members[name] = h
	s.order = append(s.order, h)
	return h
}

// AddWildcardImport records h (a KindWildcardImport symbol) in the sideband
// list. It is never added to members, so Find never finds it by name —
// only findWithWildcards, which LookupUnqualified falls back to, consults it.
func (s *Scope) AddWildcardImport(h Handle) {
	s.wildcards = append(s.wildcards, h)
}

// Members returns every explicitly-named member in declaration order.
func (s *Scope) Members() []Handle {
	return s.order
}

// Find looks up name directly in this scope's local member map only. It
// never traverses wildcard imports or the parent scope — callers that want
// that fall back to LookupUnqualified, which does.
func (s *Scope) Find(name string) (Handle, bool) {
	h, ok := s.members[name]
	return h, ok
}

// findWithWildcards tries Find, then falls back to the wildcard-imported
// packages recorded in this scope, in declaration order. Only
// LookupUnqualified's per-scope step calls this; Find itself stays exact.
//
// A local match always wins outright — wildcard imports never shadow an
// explicit member. Among the wildcard imports themselves, every package
// that exports name is collected before returning: if more than one does,
// that's an ambiguous reference and every candidate package is named in a
// single AmbiguousImport diagnostic at rng, rather than silently picking
// whichever wildcard happened to be declared first.
func (s *Scope) findWithWildcards(name string, diags *diag.Bag, rng source.Range) (Handle, bool) {
	if h, ok := s.Find(name); ok {
		return h, true
	}
	var matches []Handle
	var fromPackages []string
	for _, wh := range s.wildcards {
		wi, _ := s.table.Get(wh).(*WildcardImportSymbol)
		if wi == nil {
			continue
		}
		pkg := wi.Package(s.table)
		if pkg == nil {
			continue
		}
		if h, ok := pkg.Scope.Find(name); ok {
			matches = append(matches, h)
			fromPackages = append(fromPackages, wi.PackageName)
		}
	}
	if len(matches) == 0 {
		return NoHandle, false
	}
	if len(matches) > 1 && diags != nil {
		args := make([]interface{}, 0, len(fromPackages)+1)
		args = append(args, name)
		for _, pkgName := range fromPackages {
			args = append(args, pkgName)
		}
		diags.Report(diag.AmbiguousImport, diag.Error, rng, args...)
	}
	return matches[0], true
}

// LookupUnqualified implements §4.4's unqualified lookup order: local map,
// then wildcard imports in declaration order, then recurse to the parent
// scope. scopeOf resolves a Handle back to its *Scope for the walk.
func LookupUnqualified(t *Table, start Handle, name string, scopeOf func(Handle) *Scope, diags *diag.Bag, rng source.Range) (Handle, bool) {
	cur := start
	for cur != NoHandle {
		sc := scopeOf(cur)
		if sc == nil {
			break
		}
		if h, ok := sc.findWithWildcards(name, diags, rng); ok {
			return h, true
		}
		cur = sc.parent
	}
	return NoHandle, false
}

// LookupUnqualifiedFrom is LookupUnqualified for a caller that already
// holds a *Scope rather than a Handle into it — the binder resolves names
// against the scope it is currently binding in, not against some symbol
// that owns it.
func LookupUnqualifiedFrom(scope *Scope, name string, diags *diag.Bag, rng source.Range) (Handle, bool) {
	for scope != nil {
		if h, ok := scope.findWithWildcards(name, diags, rng); ok {
			return h, true
		}
		if scope.parent == NoHandle {
			return NoHandle, false
		}
		scope = scopeOfSymbol(scope.table, scope.parent)
	}
	return NoHandle, false
}

// Table exposes the Table a Scope is backed by, so callers outside this
// package that hold a *Scope can resolve the Handles it returns.
func (s *Scope) Table() *Table { return s.table }

// LookupQualified resolves the three qualified forms named in §4.4:
// `pkg::name`, `inst.member`, and `inst.modport.signal`. It does not walk
// parent scopes — a qualified name names its target scope explicitly.
func LookupQualified(t *Table, scope *Scope, path []string) (Handle, bool) {
	if len(path) == 0 {
		return NoHandle, false
	}
	h, ok := scope.Find(path[0])
	if !ok || len(path) == 1 {
		return h, ok
	}
	cur := h
	for _, part := range path[1:] {
		sc := scopeOfSymbol(t, cur)
		if sc == nil {
			return NoHandle, false
		}
		next, ok := sc.Find(part)
		if !ok {
			return NoHandle, false
		}
		cur = next
	}
	return cur, true
}

// ScopeOf is scopeOfSymbol exported for callers outside this package (the
// binder's member-access resolution) that need to walk from an already
// resolved Handle into whatever Scope it owns.
func ScopeOf(t *Table, h Handle) *Scope {
	return scopeOfSymbol(t, h)
}

// scopeOfSymbol extracts the Scope embedded in whatever symbol kind h
// refers to, if any. Symbol kinds with no members (ports, parameters,
// variables) return nil.
func scopeOfSymbol(t *Table, h Handle) *Scope {
	switch sym := t.Get(h).(type) {
	case *ModuleSymbol:
		return &sym.Scope
	case *InterfaceSymbol:
		return &sym.Scope
	case *PackageSymbol:
		return &sym.Scope
	case *ModportSymbol:
		return &sym.Scope
	default:
		return nil
	}
}
