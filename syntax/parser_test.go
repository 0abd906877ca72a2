package syntax

import (
	"testing"

	"svcore/diag"
	"svcore/preprocess"
	"svcore/source"
)

func parse(t *testing.T, text string) (*Node, *diag.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := NewParser(pp, diags)
	return p.ParseCompilationUnit(), diags
}

func TestParseEmptyModule(t *testing.T) {
	tree, diags := parse(t, "module m; endmodule\n")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if len(tree.Children) != 2 { // module decl + EOF
		t.Fatalf("expected 2 top-level children, got %d", len(tree.Children))
	}
	if tree.Children[0].Kind != KindModuleDeclaration {
		t.Fatalf("expected KindModuleDeclaration, got %v", tree.Children[0].Kind)
	}
}

func TestParseModuleWithPortsAndParams(t *testing.T) {
	text := "module m #(parameter int W = 8) (input logic clk, output logic [W-1:0] q); endmodule\n"
	_, diags := parse(t, text)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
}

func TestExpressionPrecedence(t *testing.T) {
	// "a + b * c" should bind as a + (b * c), i.e. the top-level binary
	// expression's operator is '+' and its right operand is itself a
	// binary expression.
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte("a + b * c"))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := NewParser(pp, diags)
	expr := p.ParseExpression()

	if expr.Kind != KindBinaryExpression {
		t.Fatalf("expected top-level binary expression, got %v", expr.Kind)
	}
	op := expr.Children[1]
	if op.Token.Text != "+" {
		t.Fatalf("expected '+' at the top, got %q", op.Token.Text)
	}
	right := expr.Children[2]
	if right.Kind != KindBinaryExpression {
		t.Fatalf("expected 'b * c' to parse as a nested binary expression, got %v", right.Kind)
	}
}

func TestMissingSemicolonRecoversWithDiagnostic(t *testing.T) {
	_, diags := parse(t, "module m\n endmodule\n")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the missing semicolon after the module header")
	}
}

func TestRenderReproducesTokenText(t *testing.T) {
	text := "a+b*c"
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := NewParser(pp, diags)
	expr := p.ParseExpression()
	if got := expr.Render(mgr); got != text {
		t.Fatalf("Render() = %q, want %q", got, text)
	}
}

func TestRenderReproducesWhitespaceAndComments(t *testing.T) {
	text := "a /* times */ + \t b"
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := NewParser(pp, diags)
	expr := p.ParseExpression()
	if got := expr.Render(mgr); got != text {
		t.Fatalf("Render() = %q, want %q", got, text)
	}
}
