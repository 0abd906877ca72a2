package preprocess

import (
	"testing"

	"svcore/diag"
	"svcore/source"
	"svcore/token"
)

func tokens(t *testing.T, text string) []token.Token {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := NewPreprocessor(mgr, id, diags)

	var out []token.Token
	for {
		tok := pp.Next()
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok)
	}
	return out
}

func TestObjectLikeMacroExpandsToItsBody(t *testing.T) {
	toks := tokens(t, "`define WIDTH 8\nlogic [WIDTH-1:0] x;")
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.Text)
	}
	found := false
	for _, txt := range texts {
		if txt == "8" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the expansion of WIDTH to contain the literal 8, got %v", texts)
	}
}

func TestUndefRemovesMacro(t *testing.T) {
	toks := tokens(t, "`define FOO 1\n`undef FOO\nFOO")
	if len(toks) != 1 || toks[0].Text != "FOO" {
		t.Fatalf("expected the bare identifier FOO to survive undef unexpanded, got %v", toks)
	}
}

func TestIfdefSuppressesUndefinedBranch(t *testing.T) {
	toks := tokens(t, "`ifdef NOPE\nshould_not_appear\n`else\nshould_appear\n`endif\n")
	if len(toks) != 1 || toks[0].Text != "should_appear" {
		t.Fatalf("expected only the else-branch token, got %v", toks)
	}
}

func TestIfdefKeepsDefinedBranch(t *testing.T) {
	toks := tokens(t, "`define SIM\n`ifdef SIM\nalpha\n`else\nbeta\n`endif\n")
	if len(toks) != 1 || toks[0].Text != "alpha" {
		t.Fatalf("expected only the if-branch token, got %v", toks)
	}
}

func TestFunctionLikeMacroSubstitutesArguments(t *testing.T) {
	toks := tokens(t, "`define ADD(a, b) a + b\n`ADD(x, y)")
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.Text)
	}
	want := []string{"x", "+", "y"}
	if len(texts) != len(want) {
		t.Fatalf("expansion = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("expansion = %v, want %v", texts, want)
		}
	}
}

func TestMacroArgumentCountMismatchReportsDiagnostic(t *testing.T) {
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte("`define ADD(a, b) a + b\n`ADD(x)"))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := NewPreprocessor(mgr, id, diags)
	for {
		tok := pp.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the argument-count mismatch")
	}
}
