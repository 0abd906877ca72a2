package binder

import (
	"svcore/diag"
	"svcore/source"
	"svcore/syntax"
	"svcore/types"
)

// DimensionSpecifierKind is the minimal view over a `[...]` syntax node this
// file needs to classify it, kept narrow the same way Expression is:
// SpecQueue for `[$]` / `[$:N]`, SpecWildcard for `[*]`/`[$]`-as-index,
// SpecRange for `[a:b]`, SpecNone for a bare `[]` (dynamic array).
type DimensionSpecifierKind int

const (
	SpecNone DimensionSpecifierKind = iota
	SpecQueue
	SpecWildcard
	SpecRange
)

// DimensionSyntax wraps a parsed `[...]` clause: its specifier kind plus
// whatever sub-expressions the grammar allowed inside it.
type DimensionSyntax struct {
	Kind         DimensionSpecifierKind
	MaxSizeExpr  *syntax.Node // SpecQueue only, nil if unbounded
	RangeLeft    *syntax.Node // SpecRange: the left (or sole, for a [N] bit-select) bound
	RangeRight   *syntax.Node // SpecRange: the right bound, nil for a bit-select
	IsBitSelect  bool         // true for `[N]` (SimpleBitSelect) rather than `[a:b]`
	Range        source.Range
}

// BindExprFunc lets this file call back into the expression binder without
// importing it directly (the expression binder in turn needs Context,
// creating a cycle binder->binder is fine, but keeping this indirection
// documents exactly which single operation evalDimension depends on).
type BindExprFunc func(c Context, n *syntax.Node) Expression

// EvalDimension classifies syn per the original's evalDimension: Queue
// (optionally bounded, requiring the bound be >0), Wildcard -> Associative,
// Range -> delegates to EvalRangeDimension, and no specifier -> Dynamic.
// requireRange forces a non-Unknown result to actually be a Range/
// AbbreviatedRange, reporting DimensionRequiresConstRange otherwise.
func (c Context) EvalDimension(syn DimensionSyntax, requireRange bool, bindExpr BindExprFunc) types.Dimension {
	var dim types.Dimension

	switch syn.Kind {
	case SpecQueue:
		dim.Kind = types.DimQueue
		if syn.MaxSizeExpr != nil {
			expr := bindExpr(c, syn.MaxSizeExpr)
			if n, ok := c.EvalInteger(expr); ok {
				if c.RequireGtZero(&n, syn.Range) {
					dim.MaxSize = int(n)
					dim.HasMaxSize = true
				}
			}
		}
	case SpecWildcard:
		dim.Kind = types.DimAssociative
	case SpecRange:
		dim = c.EvalRangeDimension(syn, bindExpr)
	default:
		dim.Kind = types.DimDynamic
	}

	if requireRange && dim.Kind != types.DimRange && dim.Kind != types.DimAbbreviatedRange && dim.Kind != types.DimUnknown {
		c.addDiag(diag.DimensionRequiresConstRange, syn.Range)
	}

	return dim
}

// EvalRangeDimension implements the original's evalRangeDimension switch:
// a bit-select (`[N]`) either names a data type (bound with
// Constant|AllowDataType — "if this expression is actually a data type")
// and produces an Associative dimension over that type, or evaluates to an
// AbbreviatedRange {0, N-1}; a simple range select (`[a:b]`) evaluates both
// bounds directly into a Range {a, b}. Anything else is InvalidDimensionRange.
func (c Context) EvalRangeDimension(syn DimensionSyntax, bindExpr BindExprFunc) types.Dimension {
	if syn.IsBitSelect {
		sub := c.Reset(Constant | AllowDataType)
		expr := bindExpr(sub, syn.RangeLeft)
		if cv := expr.ConstantValue(); cv.IsDataType() {
			return types.Dimension{Kind: types.DimAssociative, IndexType: cv.DataType}
		}
		n, ok := c.EvalInteger(expr)
		if !ok || !c.RequireGtZero(&n, syn.Range) {
			return types.Dimension{Kind: types.DimUnknown}
		}
		return types.Dimension{Kind: types.DimAbbreviatedRange, Left: 0, Right: int(n) - 1}
	}

	if syn.RangeLeft != nil && syn.RangeRight != nil {
		leftExpr := bindExpr(c, syn.RangeLeft)
		rightExpr := bindExpr(c, syn.RangeRight)
		left, lok := c.EvalInteger(leftExpr)
		right, rok := c.EvalInteger(rightExpr)
		if !lok || !rok {
			return types.Dimension{Kind: types.DimUnknown}
		}
		return types.Dimension{Kind: types.DimRange, Left: int(left), Right: int(right)}
	}

	c.addDiag(diag.InvalidDimensionRange, syn.Range)
	return types.Dimension{Kind: types.DimUnknown}
}

// EvalPackedDimension binds a packed `[a:b]` clause (always a full range,
// never abbreviated) via EvalDimension with requireRange=true, reporting
// PackedDimsRequireFullRange if the result came back AbbreviatedRange —
// mirrors the VariableDimensionSyntax-based overload of evalPackedDimension.
func (c Context) EvalPackedDimension(syn DimensionSyntax, bindExpr BindExprFunc) types.Dimension {
	dim := c.EvalDimension(syn, true, bindExpr)
	if dim.Kind == types.DimAbbreviatedRange {
		c.addDiag(diag.PackedDimsRequireFullRange, syn.Range)
	}
	return dim
}

// EvalPackedElementSelect mirrors the ElementSelectSyntax-based overload of
// evalPackedDimension: the same full-range requirement applied to a
// `[a:b]`/`[a+:b]` bit/part-select rather than a declared dimension.
func (c Context) EvalPackedElementSelect(syn DimensionSyntax, bindExpr BindExprFunc) types.Dimension {
	return c.EvalPackedDimension(syn, bindExpr)
}
