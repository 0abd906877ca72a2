// Package binder resolves syntax.Node expression trees into bound
// expressions and constant values, and hosts the require*/eval* family of
// checks every binding operation goes through. Every method here mirrors
// the control flow of BindContext.cpp in the original implementation this
// module's specification was distilled from — addDiag, requireLValue,
// requireIntegral, requireNoUnknowns, requirePositive, requireGtZero,
// requireValidBitWidth, evalInteger, evalDimension, evalPackedDimension,
// evalRangeDimension, and resetFlags all correspond one to one with methods
// of the same name there.
package binder

import (
	"svcore/diag"
	"svcore/eval"
	"svcore/source"
	"svcore/symbols"
)

// Flags is a bitmask of contextual binding modes. Flags marked non-sticky
// below are cleared by Reset unless re-requested.
type Flags uint32

const FlagNone Flags = 0

const (
	// Constant requires every sub-expression to be evaluable at compile
	// time; set when binding a parameter initializer, dimension bound, or
	// any other constant-expression context.
	Constant Flags = 1 << iota
	// InsideConcatenation changes how an unsized literal's width is
	// inferred; non-sticky, since only the immediate children of a `{...}`
	// concatenation inherit it.
	InsideConcatenation
	// AllowDataType permits a sub-expression to bind to a data type instead
	// of a value, used by evalRangeDimension's associative-array detection;
	// non-sticky for the same reason as InsideConcatenation.
	AllowDataType
	// NonProcedural marks contexts (continuous assignments, module-level
	// parameter defaults) where procedural-only constructs are illegal.
	NonProcedural
)

const nonStickyFlags = InsideConcatenation | AllowDataType

// Context is an immutable value carrying the scope a binding operation
// resolves names against, plus the active Flags. Because it's a plain
// struct rather than a pointer, Reset naturally returns a modified copy
// instead of mutating shared state out from under a caller still holding
// the original.
type Context struct {
	Scope *symbols.Scope
	Flags Flags
	Diags *diag.Bag
	Eval  *eval.Context
}

// New creates a root Context over scope.
func New(scope *symbols.Scope, diags *diag.Bag) Context {
	return Context{Scope: scope, Diags: diags, Eval: eval.NewContext(0)}
}

// Reset clears the non-sticky flags and ORs in added, returning the
// resulting Context — the Go expression of the original's
// `resetFlags(added)`, which does the same thing to a mutable `flags`
// member; here there is no member to mutate, so the caller rebinds.
func (c Context) Reset(added Flags) Context {
	c.Flags = (c.Flags &^ nonStickyFlags) | added
	return c
}

// WithScope returns a copy of c bound against a different scope, used when
// descending into a nested construct (module body, function body) that has
// its own scope.
func (c Context) WithScope(scope *symbols.Scope) Context {
	c.Scope = scope
	return c
}

func (c Context) addDiag(code diag.Code, rng source.Range, args ...interface{}) {
	c.Diags.Report(code, diag.Error, rng, args...)
}
