// Package diag is the structured diagnostic model shared by every other
// package in this module. It deliberately stops at data: turning a
// Diagnostic into text for a terminal, an editor, or a log file is left to
// a caller, matching this module's rule that diagnostic rendering lives
// outside the core. See the progress package for the one place this module
// still prints anything, which is not part of the core API.
package diag

import "svcore/source"

// Severity classifies how serious a Diagnostic is.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code is a stable, named diagnostic identifier. New codes should be added
// here rather than synthesized from strings, so config severity overrides
// can refer to them reliably.
type Code string

const (
	ExpectedStatement           Code = "ExpectedStatement"
	ExpectedExpression          Code = "ExpectedExpression"
	ExpectedToken               Code = "ExpectedToken"
	DimensionRequiresConstRange Code = "DimensionRequiresConstRange"
	PackedDimsRequireFullRange  Code = "PackedDimsRequireFullRange"
	InvalidDimensionRange       Code = "InvalidDimensionRange"
	ValueOutOfRange             Code = "ValueOutOfRange"
	ValueMustBeIntegral         Code = "ValueMustBeIntegral"
	ValueMustNotBeUnknown       Code = "ValueMustNotBeUnknown"
	ValueMustBePositive         Code = "ValueMustBePositive"
	ValueExceedsMaxBitWidth     Code = "ValueExceedsMaxBitWidth"
	ExpressionNotAssignable     Code = "ExpressionNotAssignable"
	DuplicateDefinition         Code = "DuplicateDefinition"
	UnknownPackage              Code = "UnknownPackage"
	UnknownIdentifier           Code = "UnknownIdentifier"
	NotAMember                  Code = "NotAMember"
	AccessViolation             Code = "AccessViolation"
	HeaderNotFound              Code = "HeaderNotFound"
	DuplicatePath               Code = "DuplicatePath"
	MacroArgumentCountMismatch  Code = "MacroArgumentCountMismatch"
	UnterminatedConditional     Code = "UnterminatedConditional"
	PortConnectionArityMismatch Code = "PortConnectionArityMismatch"
	UnknownPortConnection       Code = "UnknownPortConnection"
	AmbiguousImport             Code = "AmbiguousImport"
)

// Diagnostic is one reported finding, tied to a primary source range and
// carrying whatever arguments a future formatter needs to render a message.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Range    source.Range
	Args     []interface{}
}

// New builds a Diagnostic with the given severity. Bag.Add applies any
// configured severity override when the diagnostic is recorded.
func New(code Code, sev Severity, rng source.Range, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: sev, Range: rng, Args: args}
}

// Bag accumulates diagnostics in the order they are reported, the way the
// teacher's report.reporter accumulates a running errorCount and warning
// list instead of failing fast.
type Bag struct {
	diags      []Diagnostic
	errorCount int
	overrides  map[Code]Severity
}

// NewBag creates an empty Bag. overrides may be nil.
func NewBag(overrides map[Code]Severity) *Bag {
	return &Bag{overrides: overrides}
}

// Add records d, applying any configured severity override for d.Code.
func (b *Bag) Add(d Diagnostic) {
	if sev, ok := b.overrides[d.Code]; ok {
		d.Severity = sev
	}
	b.diags = append(b.diags, d)
	if d.Severity == Error || d.Severity == Fatal {
		b.errorCount++
	}
}

// Report is a convenience wrapper around Add + New.
func (b *Bag) Report(code Code, sev Severity, rng source.Range, args ...interface{}) {
	b.Add(New(code, sev, rng, args...))
}

// All returns every diagnostic added so far, in report order.
func (b *Bag) All() []Diagnostic {
	return b.diags
}

// ErrorCount returns the number of Error- or Fatal-severity diagnostics
// added so far (after override).
func (b *Bag) ErrorCount() int {
	return b.errorCount
}

// HasErrors reports whether ErrorCount is nonzero.
func (b *Bag) HasErrors() bool {
	return b.errorCount > 0
}
