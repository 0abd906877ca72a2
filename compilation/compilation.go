// Package compilation wires source, preprocess, syntax, symbols, binder,
// and eval together into the one entry point a caller actually drives:
// register a file, get back its parsed syntax tree and a populated symbol
// table, with every diagnostic collected along the way. It plays the role
// the teacher's build/ChaiPackage orchestration plays for a compiler
// front end, generalized from "one Chai package, one import graph" to
// "one or more SystemVerilog compilation units sharing a symbol table."
package compilation

import (
	"svcore/config"
	"svcore/diag"
	"svcore/preprocess"
	"svcore/source"
	"svcore/symbols"
	"svcore/syntax"
)

// Unit is one parsed translation unit: a buffer plus the syntax tree the
// parser produced for it. addBuffer has already built and bound its
// symbols by the time it returns the Unit.
type Unit struct {
	Buffer source.BufferID
	Tree   *syntax.Node
}

// Compilation owns the shared SourceManager, diagnostic Bag, and symbol
// Table for a group of translation units compiled together.
type Compilation struct {
	Manager *source.Manager
	Diags   *diag.Bag
	Symbols *symbols.Table
	Config  config.Config

	Units     []Unit
	RootScope *symbols.Scope
}

// New creates an empty Compilation using cfg (use config.Default() for no
// project file).
func New(cfg config.Config) *Compilation {
	mgr := source.NewManager()
	for _, d := range cfg.UserIncludeDirs {
		mgr.AddUserDirectory(d)
	}
	for _, d := range cfg.SystemIncludeDirs {
		mgr.AddSystemDirectory(d)
	}
	for _, d := range cfg.LibraryDirs {
		mgr.AddLibraryDirectory(d)
	}

	diags := diag.NewBag(cfg.SeverityOverrides)
	table := symbols.NewTable()

	return &Compilation{
		Manager:   mgr,
		Diags:     diags,
		Symbols:   table,
		Config:    cfg,
		RootScope: symbols.NewScope(table, symbols.NoHandle),
	}
}

// AddFile registers path's contents and parses it into a Unit, applying any
// predefined macros from the config before scanning.
func (c *Compilation) AddFile(path string) (*Unit, error) {
	id, err := c.Manager.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return c.addBuffer(id), nil
}

// AddText registers in-memory text under a synthetic name and parses it —
// the entry point tests use instead of touching the filesystem. A repeat
// name is reported as DuplicatePath rather than silently reusing the
// existing buffer, since AddText is meant to model a fresh compilation
// unit, not a cache lookup.
func (c *Compilation) AddText(name string, text string) *Unit {
	id, err := c.Manager.AssignText(name, []byte(text))
	if dup, ok := err.(*source.DuplicatePathError); ok {
		c.Diags.Report(diag.DuplicatePath, diag.Error, source.NoRange, dup.Path, dup.Existing)
		id = dup.Existing
	}
	return c.addBuffer(id)
}

func (c *Compilation) addBuffer(id source.BufferID) *Unit {
	pp := preprocess.NewPreprocessor(c.Manager, id, c.Diags)
	for name, value := range c.Config.Defines {
		pp.Define(name, value)
	}

	p := syntax.NewParser(pp, c.Diags)
	tree := p.ParseCompilationUnit()
	c.buildSymbols(tree)

	u := Unit{Buffer: id, Tree: tree}
	c.Units = append(c.Units, u)
	return &c.Units[len(c.Units)-1]
}

// HasErrors reports whether any Error/Fatal diagnostic has been reported
// across every stage run so far.
func (c *Compilation) HasErrors() bool {
	return c.Diags.HasErrors()
}
