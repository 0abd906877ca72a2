package syntax

import (
	"testing"

	"svcore/diag"
	"svcore/preprocess"
	"svcore/source"
)

func parseStatement(t *testing.T, text string) (*Node, *diag.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	diags := diag.NewBag(nil)
	pp := preprocess.NewPreprocessor(mgr, id, diags)
	p := NewParser(pp, diags)
	return p.ParseStatement(), diags
}

func TestForceStatement(t *testing.T) {
	stmt, diags := parseStatement(t, "force a = b;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if stmt.Kind != KindForceStatement {
		t.Fatalf("expected KindForceStatement, got %v", stmt.Kind)
	}
	if len(stmt.Children) != 5 {
		t.Fatalf("expected 5 children (kw, lhs, =, rhs, ;), got %d", len(stmt.Children))
	}
}

func TestDeassignStatement(t *testing.T) {
	stmt, diags := parseStatement(t, "deassign a;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if stmt.Kind != KindDeassignStatement {
		t.Fatalf("expected KindDeassignStatement, got %v", stmt.Kind)
	}
}

func TestReleaseStatement(t *testing.T) {
	stmt, diags := parseStatement(t, "release a;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if stmt.Kind != KindReleaseStatement {
		t.Fatalf("expected KindReleaseStatement, got %v", stmt.Kind)
	}
}

func TestReleaseStatementAcceptsMemberAccessTarget(t *testing.T) {
	stmt, diags := parseStatement(t, "release a.b;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if stmt.Children[1].Kind != KindMemberAccessExpression {
		t.Fatalf("expected the release target to parse as a member access, got %v", stmt.Children[1].Kind)
	}
}
