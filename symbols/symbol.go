// Package symbols implements the hierarchical name table: Symbol kinds,
// Scope lookup (unqualified and qualified), explicit/wildcard imports, and
// the port/parameter/modport symbols a module or interface body declares.
// Grounded on the teacher's sem.Symbol/sem.ChaiPackage (explicit vs
// wildcard import handling) and on the original's MemberSymbols.h for the
// exact shape of TransparentMemberSymbol/ExplicitImportSymbol/
// WildcardImportSymbol/ParameterSymbol/PortSymbol.
package symbols

import (
	"sync"

	"svcore/source"
)

// Kind discriminates the concrete symbol types in this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindModule
	KindInterface
	KindPackage
	KindModport
	KindParameter
	KindPort
	KindInterfacePort
	KindNet
	KindVariable
	KindFormalArgument
	KindSubroutine
	KindGenvar
	KindExplicitImport
	KindWildcardImport
	KindTransparentMember
	KindEnumValue
	KindTypeAlias
	KindContinuousAssign
)

// Handle is a non-owning reference to a Symbol, stable for the lifetime of
// a Compilation. Using an index rather than a Go pointer for back-edges
// (port external connections, modport's parent interface) avoids reference
// cycles a garbage collector would otherwise have to untangle, and matches
// the original's preference for non-owning raw pointers in the same spots.
type Handle int

// NoHandle is the zero Handle, meaning "no symbol."
const NoHandle Handle = 0

// Symbol is the common header every concrete symbol kind embeds.
type Symbol struct {
	Self       Handle
	Kind       Kind
	Name       string
	DefRange   source.Range
	ParentScope Handle // not set by Scope.AddMember or the compilation builder; NoHandle unless a caller assigns it
}

// Table owns every Symbol allocated during a compilation, addressed by
// Handle.
type Table struct {
	mu      sync.Mutex
	symbols []interface{} // index 0 unused; Handle doubles as an index
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{symbols: make([]interface{}, 1)}
}

// Alloc reserves a Handle for sym, mutates sym.Self to match, and stores
// it. sym must be a pointer to a concrete symbol type embedding Symbol.
func Alloc(t *Table, sym interface{ setSelf(Handle) }) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := Handle(len(t.symbols))
	sym.setSelf(h)
	t.symbols = append(t.symbols, sym)
	return h
}

// Get returns the symbol stored at h, or nil if h is NoHandle or invalid.
func (t *Table) Get(h Handle) interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(h) <= 0 || int(h) >= len(t.symbols) {
		return nil
	}
	return t.symbols[h]
}

func (s *Symbol) setSelf(h Handle) { s.Self = h }
