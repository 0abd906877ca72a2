package symbols

import (
	"sync"

	"svcore/eval"
	"svcore/types"
)

// ModuleSymbol, InterfaceSymbol, and PackageSymbol are the three top-level
// scope-bearing declarations the parser produces one of per compilation
// unit member.
type ModuleSymbol struct {
	Symbol
	Scope      Scope
	Ports      []Handle
	Parameters []Handle
}

type InterfaceSymbol struct {
	Symbol
	Scope      Scope
	Ports      []Handle
	Parameters []Handle
	Modports   []Handle
}

type PackageSymbol struct {
	Symbol
	Scope Scope
}

// ModportSymbol is itself a Scope (a restricted view over an interface's
// signals), matching the original's ModportSymbol : public Symbol, public
// Scope.
type ModportSymbol struct {
	Symbol
	Scope     Scope
	Interface Handle
}

// TransparentMemberSymbol wraps a hoisted member (an enum value hoisted
// into its enclosing scope) so lookup finds it directly under its own name
// without the enclosing enum type appearing twice in the scope's member
// list — unwrapped at the lookup site, never duplicated.
type TransparentMemberSymbol struct {
	Symbol
	Wrapped Handle
}

// ExplicitImportSymbol is `import pkg::name;`. Its package/imported-symbol
// resolution is lazy and write-once, mirroring the original's mutable
// cached fields guarded by an `initialized` flag — expressed here with
// sync.Once since this module's resolution is synchronous and single
// threaded but the publish-once discipline is still worth keeping explicit.
type ExplicitImportSymbol struct {
	Symbol
	PackageName string
	ImportName  string

	once       sync.Once
	pkg        *PackageSymbol
	imported   Handle
}

// Resolve resolves and caches the target package and the imported member,
// looking the package up by name in the root scope reachable from
// resolveRoot the first time it is called.
func (e *ExplicitImportSymbol) Resolve(t *Table, resolveRoot func(name string) Handle) (*PackageSymbol, Handle) {
	e.once.Do(func() {
		h := resolveRoot(e.PackageName)
		pkg, _ := t.Get(h).(*PackageSymbol)
		e.pkg = pkg
		if pkg != nil {
			e.imported, _ = pkg.Scope.Find(e.ImportName)
		}
	})
	return e.pkg, e.imported
}

// WildcardImportSymbol is `import pkg::*;`. Its Name is always empty, so it
// can never collide with an ordinary member — a Scope keeps these in a
// sideband slice rather than its name map for exactly that reason.
type WildcardImportSymbol struct {
	Symbol
	PackageName string

	once sync.Once
	pkg  *PackageSymbol
}

// Package returns the package SetResolver resolved, or nil if SetResolver
// has not been called or found no package of that name.
func (w *WildcardImportSymbol) Package(t *Table) *PackageSymbol {
	return w.pkg
}

// SetResolver looks the target package up by name through resolveRoot and
// caches the result. Only the first call does the lookup, so a package
// registered after it is not found. Package, which findWithWildcards calls,
// takes no such callback, keeping Scope decoupled from Compilation.
func (w *WildcardImportSymbol) SetResolver(t *Table, resolveRoot func(name string) Handle) {
	w.once.Do(func() {
		h := resolveRoot(w.PackageName)
		w.pkg, _ = t.Get(h).(*PackageSymbol)
	})
}

// ParameterKind distinguishes port parameters (reorderable,
// overridable by instantiation) from body parameters (fixed order, never
// overridden by name-based port connection).
type ParameterKind int

const (
	ParamBody ParameterKind = iota
	ParamPort
	ParamLocal
)

// ParameterSymbol models both `parameter`/`localparam` declarations.
// Value is computed lazily from Override (if set by an instantiation) or
// Initializer, matching getValue() == eval(override ?? initializer).
type ParameterSymbol struct {
	Symbol
	Kind         ParameterKind
	Initializer  interface{} // *syntax.Node; kept as interface{} to avoid an import cycle with binder
	Override     interface{} // *syntax.Node, set by an instantiation
	computed     bool
	value        interface{} // eval.ConstantValue once computed
}

// IsLocalParam reports whether p is a localparam (never overridable).
func (p *ParameterSymbol) IsLocalParam() bool { return p.Kind == ParamLocal }

// IsPortParam reports whether p appeared in a parameter port list.
func (p *ParameterSymbol) IsPortParam() bool { return p.Kind == ParamPort }

// IsBodyParam is the complement of IsPortParam, matching the original's
// `!isPortParam()` definition rather than re-deriving it from Kind.
func (p *ParameterSymbol) IsBodyParam() bool { return !p.IsPortParam() }

// CachedValue returns the value a prior binder pass computed for p, if any.
// ParameterSymbol stores it as interface{} so this package, which binds
// nothing itself, never needs to import binder — only eval, for the value
// type the binder fills in.
func (p *ParameterSymbol) CachedValue() (eval.ConstantValue, bool) {
	if !p.computed {
		return eval.ConstantValue{}, false
	}
	v, _ := p.value.(eval.ConstantValue)
	return v, true
}

// SetValue publishes p's computed value exactly once, the same write-once
// discipline as PortSymbol.SetExternalConnection.
func (p *ParameterSymbol) SetValue(v eval.ConstantValue) {
	if p.computed {
		return
	}
	p.computed = true
	p.value = v
}

// PortDirection enumerates ANSI port directions.
type PortDirection int

const (
	DirInput PortDirection = iota
	DirOutput
	DirInout
	DirRef
)

// PortSymbol is one module/interface port. InternalSymbol and
// ExternalConnection are Handles rather than pointers so a PortSymbol never
// holds an owning reference back into the instance that connects it.
type PortSymbol struct {
	Symbol
	Direction          PortDirection
	InternalSymbol     Handle
	DefaultValue       interface{} // *syntax.Node

	externalOnce sync.Once
	externalConn Handle
}

// SetExternalConnection publishes the port's connection exactly once, the
// same write-once discipline as the original's lazily cached
// `externalConn`.
func (p *PortSymbol) SetExternalConnection(h Handle) {
	p.externalOnce.Do(func() {
		p.externalConn = h
	})
}

// ExternalConnection returns the previously published connection, or
// NoHandle if none has been set yet.
func (p *PortSymbol) ExternalConnection() Handle {
	return p.externalConn
}

// InterfacePortSymbol is a port typed by an interface (optionally
// restricted to one of its modports).
type InterfacePortSymbol struct {
	Symbol
	InterfaceDef Handle
	Modport      Handle // NoHandle if unrestricted
	Connection   Handle
}

// NetSymbol is a `wire`-family declaration.
type NetSymbol struct {
	Symbol
	NetType string
	Type    types.Type
}

// VariableLifetime distinguishes automatic (per-call, default inside a
// task/function) from static (persistent) storage.
type VariableLifetime int

const (
	LifetimeAutomatic VariableLifetime = iota
	LifetimeStatic
)

// VariableSymbol is a `logic`/`bit`/... declaration outside a port list.
type VariableSymbol struct {
	Symbol
	Lifetime VariableLifetime
	IsConst  bool
	Type     types.Type
}

// FormalArgumentSymbol is one function/task parameter.
type FormalArgumentSymbol struct {
	VariableSymbol
	Direction PortDirection
}

// SubroutineSymbol is a function or task declaration.
type SubroutineSymbol struct {
	Symbol
	Scope     Scope
	IsTask    bool
	Arguments []Handle
	ReturnVar Handle // NoHandle for a task
}

// ContinuousAssignSymbol represents one `assign lhs = rhs;` statement. Assign
// is kept as interface{} (really a *binder bound Expression) to avoid this
// package depending on binder, which itself depends on symbols.
type ContinuousAssignSymbol struct {
	Symbol
	Assign interface{}
}

// GenvarSymbol is a `genvar` declaration usable only inside `generate`.
type GenvarSymbol struct {
	Symbol
}

// EnumValueSymbol is one member of an `enum` declaration. It is always
// reached through a TransparentMemberSymbol wrapper registered under the
// member's name in the scope the enum was declared in, the same way a real
// enum constant is visible unqualified alongside the type itself.
type EnumValueSymbol struct {
	Symbol
	EnumType *types.EnumType
	Value    eval.ConstantValue
}

// TypeAliasSymbol is a `typedef` declaration, binding Name to Aliased.
type TypeAliasSymbol struct {
	Symbol
	Aliased types.Type
}
