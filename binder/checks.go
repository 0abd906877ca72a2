package binder

import (
	"svcore/diag"
	"svcore/eval"
	"svcore/source"
)

// Expression is the minimal bound-expression interface the require*/eval*
// checks operate on. The full expression representation (with operand
// trees, types, etc.) lives alongside these checks but is deliberately
// kept narrow here so this file reads the same as BindContext.cpp's own
// narrow dependency on Expression.
type Expression interface {
	Range() source.Range
	IsLValue() bool
	ConstantValue() eval.ConstantValue // zero value if not constant-evaluable
	IsConstant() bool
}

// RequireLValue checks expr.IsLValue(), reporting ExpressionNotAssignable
// and returning false otherwise — mirrors requireLValue.
func (c Context) RequireLValue(expr Expression) bool {
	if !expr.IsLValue() {
		c.addDiag(diag.ExpressionNotAssignable, expr.Range())
		return false
	}
	return true
}

// RequireIntegral checks that expr's constant value is not Bad and is an
// integer, reporting ValueMustBeIntegral otherwise — mirrors
// requireIntegral.
func (c Context) RequireIntegral(expr Expression) bool {
	cv := expr.ConstantValue()
	if cv.Bad() {
		return false
	}
	if !cv.IsInt {
		c.addDiag(diag.ValueMustBeIntegral, expr.Range())
		return false
	}
	return true
}

// RequireNoUnknowns checks that value has no X/Z bits, reporting
// ValueMustNotBeUnknown otherwise — mirrors requireNoUnknowns.
func (c Context) RequireNoUnknowns(value eval.Int4, rng source.Range) bool {
	if value.HasUnknown() {
		c.addDiag(diag.ValueMustNotBeUnknown, rng)
		return false
	}
	return true
}

// RequirePositive checks that a signed value is not negative, reporting
// ValueMustBePositive otherwise — mirrors requirePositive.
func (c Context) RequirePositive(value eval.Int4, rng source.Range) bool {
	if value.IsNegative() {
		c.addDiag(diag.ValueMustBePositive, rng)
		return false
	}
	return true
}

// RequireGtZero checks that an already-coerced int32 is strictly positive,
// reporting ValueMustBePositive otherwise — mirrors requireGtZero, which
// takes an optional<int32_t> in the original because its caller has
// usually just called evalInteger and may have gotten nothing at all.
func (c Context) RequireGtZero(value *int32, rng source.Range) bool {
	if value == nil {
		return false
	}
	if *value <= 0 {
		c.addDiag(diag.ValueMustBePositive, rng)
		return false
	}
	return true
}

// RequireValidBitWidth checks that width is within [1, eval.MaxBitWidth],
// reporting ValueExceedsMaxBitWidth (with eval.MaxBitWidth as a diagnostic
// argument, as the original does) otherwise — mirrors the width-direct
// overload of requireValidBitWidth.
func (c Context) RequireValidBitWidth(width int, rng source.Range) bool {
	if width < 1 || width > eval.MaxBitWidth {
		c.addDiag(diag.ValueExceedsMaxBitWidth, rng, eval.MaxBitWidth)
		return false
	}
	return true
}

// RequireValidBitWidthValue coerces value to an int32 bit width first,
// reporting ValueExceedsMaxBitWidth if it doesn't fit — mirrors the
// value-coerced overload of requireValidBitWidth.
func (c Context) RequireValidBitWidthValue(value eval.Int4, rng source.Range) (int, bool) {
	i, ok := value.AsInt32()
	if !ok || i < 1 || int(i) > eval.MaxBitWidth {
		c.addDiag(diag.ValueExceedsMaxBitWidth, rng, eval.MaxBitWidth)
		return 0, false
	}
	return int(i), true
}

// EvalInteger requires expr to be constant, integral, and free of unknown
// bits, then coerces it to an int32 — mirrors the expression overload of
// evalInteger. On overflow it reports ValueOutOfRange with the offending
// value and int32's bounds as arguments, exactly as the original does.
func (c Context) EvalInteger(expr Expression) (int32, bool) {
	if !expr.IsConstant() {
		return 0, false
	}
	cv := expr.ConstantValue()
	if cv.Bad() || !cv.IsInt {
		if !cv.Bad() {
			c.addDiag(diag.ValueMustBeIntegral, expr.Range())
		}
		return 0, false
	}
	if !c.RequireNoUnknowns(cv.Int, expr.Range()) {
		return 0, false
	}
	i, ok := cv.Int.AsInt32()
	if !ok {
		c.addDiag(diag.ValueOutOfRange, expr.Range(), cv.Int, minInt32, maxInt32)
		return 0, false
	}
	return i, true
}

const minInt32 = -1 << 31
const maxInt32 = 1<<31 - 1
