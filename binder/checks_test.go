package binder

import (
	"testing"

	"svcore/diag"
	"svcore/eval"
	"svcore/source"
)

// constExpr is a minimal Expression backed by a fixed constant value, used
// to drive the require*/eval* checks without a real bound expression tree.
type constExpr struct {
	rng      source.Range
	cv       eval.ConstantValue
	constant bool
	lvalue   bool
}

func (e constExpr) Range() source.Range              { return e.rng }
func (e constExpr) IsLValue() bool                   { return e.lvalue }
func (e constExpr) ConstantValue() eval.ConstantValue { return e.cv }
func (e constExpr) IsConstant() bool                 { return e.constant }

func newContext() Context {
	return New(nil, diag.NewBag(nil))
}

func TestRequireLValueReportsOnNonLValue(t *testing.T) {
	c := newContext()
	e := constExpr{lvalue: false}
	if c.RequireLValue(e) {
		t.Fatal("expected RequireLValue to fail for a non-lvalue")
	}
	if c.Diags.ErrorCount() != 1 {
		t.Fatalf("expected one diagnostic, got %d", c.Diags.ErrorCount())
	}
}

func TestRequireIntegralAcceptsIntConstant(t *testing.T) {
	c := newContext()
	e := constExpr{cv: eval.IntConstant(eval.FromInt64(5, 8))}
	if !c.RequireIntegral(e) {
		t.Fatal("expected RequireIntegral to accept an integer constant")
	}
}

func TestRequireIntegralRejectsDataType(t *testing.T) {
	c := newContext()
	e := constExpr{cv: eval.ConstantValue{IsInt: false}}
	if c.RequireIntegral(e) {
		t.Fatal("expected RequireIntegral to reject a non-integer constant")
	}
	if c.Diags.ErrorCount() != 1 {
		t.Fatalf("expected one diagnostic, got %d", c.Diags.ErrorCount())
	}
}

func TestEvalIntegerRejectsNonConstant(t *testing.T) {
	c := newContext()
	e := constExpr{constant: false}
	if _, ok := c.EvalInteger(e); ok {
		t.Fatal("expected EvalInteger to fail for a non-constant expression")
	}
}

func TestEvalIntegerCoercesKnownValue(t *testing.T) {
	c := newContext()
	e := constExpr{constant: true, cv: eval.IntConstant(eval.FromInt64(42, 32))}
	v, ok := c.EvalInteger(e)
	if !ok {
		t.Fatal("expected EvalInteger to succeed for a known 32-bit value")
	}
	if v != 42 {
		t.Fatalf("EvalInteger = %d, want 42", v)
	}
}

func TestEvalIntegerRejectsUnknownBits(t *testing.T) {
	c := newContext()
	v := eval.FromInt64(0, 8)
	v.Unknown.SetBit(&v.Unknown, 0, 1)
	e := constExpr{constant: true, cv: eval.IntConstant(v)}
	if _, ok := c.EvalInteger(e); ok {
		t.Fatal("expected EvalInteger to reject a value with unknown bits")
	}
}

func TestResetClearsNonStickyFlagsOnly(t *testing.T) {
	c := newContext()
	c.Flags = Constant | InsideConcatenation | AllowDataType
	c2 := c.Reset(FlagNone)
	if c2.Flags&Constant == 0 {
		t.Fatal("Constant is sticky and must survive Reset")
	}
	if c2.Flags&InsideConcatenation != 0 {
		t.Fatal("InsideConcatenation is non-sticky and must be cleared by Reset")
	}
	if c2.Flags&AllowDataType != 0 {
		t.Fatal("AllowDataType is non-sticky and must be cleared by Reset")
	}
}

func TestRequireValidBitWidthRejectsZeroAndOverMax(t *testing.T) {
	c := newContext()
	if c.RequireValidBitWidth(0, source.NoRange) {
		t.Fatal("width 0 should be rejected")
	}
	if c.RequireValidBitWidth(eval.MaxBitWidth+1, source.NoRange) {
		t.Fatal("a width over MaxBitWidth should be rejected")
	}
	if !c.RequireValidBitWidth(eval.MaxBitWidth, source.NoRange) {
		t.Fatal("MaxBitWidth itself should be accepted")
	}
}
