package binder

import (
	"testing"

	"svcore/diag"
	"svcore/preprocess"
	"svcore/source"
	"svcore/symbols"
	"svcore/syntax"
)

// parseExprText parses text as a standalone expression the way
// syntax.TestExpressionPrecedence does, so these tests bind a real syntax
// tree rather than a hand-built stand-in for one.
func parseExprText(t *testing.T, text string) (*syntax.Node, *diag.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := syntax.NewParser(pp, diags)
	return p.ParseExpression(), diags
}

func TestBindExpressionFoldsArithmetic(t *testing.T) {
	n, diags := parseExprText(t, "2 + 3 * 4")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	c := New(nil, diags)
	b := c.BindExpression(n)
	if !b.IsConstant() {
		t.Fatal("expected a constant result")
	}
	got, ok := b.ConstantValue().Int.AsInt32()
	if !ok || got != 14 {
		t.Fatalf("got %v (ok=%v), want 14", got, ok)
	}
}

func TestBindExpressionResolvesParameterIdentifier(t *testing.T) {
	table := symbols.NewTable()
	scope := symbols.NewScope(table, symbols.NoHandle)
	diags := diag.NewBag(nil)

	init, initDiags := parseExprText(t, "8")
	if initDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", initDiags.All())
	}
	param := &symbols.ParameterSymbol{Initializer: init}
	h := symbols.Alloc(table, param)
	scope.AddMember("W", h, source.NoRange, diags)

	n, nDiags := parseExprText(t, "W")
	if nDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", nDiags.All())
	}
	c := New(scope, diags)
	b := c.BindExpression(n)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if !b.IsConstant() {
		t.Fatal("expected a parameter reference to bind as constant")
	}
	got, ok := b.ConstantValue().Int.AsInt32()
	if !ok || got != 8 {
		t.Fatalf("got %v (ok=%v), want 8", got, ok)
	}
	if b.Symbol() != h {
		t.Fatalf("expected the bound expression to record the parameter's handle")
	}
}

func TestBindExpressionUndeclaredIdentifierReportsDiagnostic(t *testing.T) {
	table := symbols.NewTable()
	scope := symbols.NewScope(table, symbols.NoHandle)
	diags := diag.NewBag(nil)

	n, pDiags := parseExprText(t, "missing")
	if pDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", pDiags.All())
	}
	c := New(scope, diags)
	b := c.BindExpression(n)
	if b.IsConstant() {
		t.Fatal("an unresolved identifier should never be constant")
	}
	if diags.ErrorCount() != 1 {
		t.Fatalf("expected one diagnostic, got %d", diags.ErrorCount())
	}
}

func TestBindExpressionVariableIsLValueNotConstant(t *testing.T) {
	table := symbols.NewTable()
	scope := symbols.NewScope(table, symbols.NoHandle)
	diags := diag.NewBag(nil)
	h := symbols.Alloc(table, &symbols.VariableSymbol{})
	scope.AddMember("x", h, source.NoRange, diags)

	n, pDiags := parseExprText(t, "x")
	if pDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", pDiags.All())
	}
	c := New(scope, diags)
	b := c.BindExpression(n)
	if b.IsConstant() {
		t.Fatal("a plain variable reference must not be constant")
	}
	if !c.RequireLValue(b) {
		t.Fatal("a variable reference should satisfy RequireLValue")
	}
}

func TestBindExpressionConstantVariableIsNotLValue(t *testing.T) {
	table := symbols.NewTable()
	scope := symbols.NewScope(table, symbols.NoHandle)
	diags := diag.NewBag(nil)
	h := symbols.Alloc(table, &symbols.VariableSymbol{IsConst: true})
	scope.AddMember("x", h, source.NoRange, diags)

	n, pDiags := parseExprText(t, "x")
	if pDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", pDiags.All())
	}
	c := New(scope, diags)
	b := c.BindExpression(n)
	if c.RequireLValue(b) {
		t.Fatal("a const variable reference must fail RequireLValue")
	}
}

func TestBindExpressionEvalIntegerOnRealBinding(t *testing.T) {
	table := symbols.NewTable()
	scope := symbols.NewScope(table, symbols.NoHandle)
	diags := diag.NewBag(nil)
	param := &symbols.ParameterSymbol{}
	h := symbols.Alloc(table, param)
	scope.AddMember("N", h, source.NoRange, diags)

	init, pDiags := parseExprText(t, "4")
	if pDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", pDiags.All())
	}
	param.Initializer = init

	n, exprDiags := parseExprText(t, "N * 2 - 1")
	if exprDiags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", exprDiags.All())
	}
	c := New(scope, diags)
	b := c.BindExpression(n)
	v, ok := c.EvalInteger(b)
	if !ok {
		t.Fatal("expected EvalInteger to succeed on a fully constant expression")
	}
	if v != 7 {
		t.Fatalf("EvalInteger = %d, want 7", v)
	}
}

func TestBindExpressionSizedLiteralCarriesWidthAndUnknowns(t *testing.T) {
	n, diags := parseExprText(t, "8'b1x01_0101")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	c := New(nil, diags)
	b := c.BindExpression(n)
	if !b.IsConstant() {
		t.Fatal("expected a sized literal to bind as constant")
	}
	cv := b.ConstantValue()
	if cv.Int.Width != 8 {
		t.Fatalf("width = %d, want 8", cv.Int.Width)
	}
	if !cv.Int.HasUnknown() {
		t.Fatal("expected the literal's x digit to leave an unknown bit")
	}
}
