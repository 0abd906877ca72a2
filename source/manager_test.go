package source

import (
	"os"
	"testing"
)

func TestLineColRoundTrip(t *testing.T) {
	mgr := NewManager()
	text := "module m;\n  logic a;\nendmodule\n"
	id, err := mgr.AssignText("t.sv", []byte(text))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{7, 1, 8},
		{10, 2, 1},
		{len(text), 4, 1},
	}

	for _, tc := range cases {
		loc := Location{Buffer: id, Offset: tc.offset}
		if got := mgr.GetLineNumber(loc); got != tc.line {
			t.Errorf("offset %d: line = %d, want %d", tc.offset, got, tc.line)
		}
		if got := mgr.GetColumnNumber(loc); got != tc.column {
			t.Errorf("offset %d: column = %d, want %d", tc.offset, got, tc.column)
		}
	}
}

func TestNoBufferIsInvalid(t *testing.T) {
	if NoLocation.Valid() {
		t.Fatal("NoLocation should be invalid")
	}
	loc := Location{Buffer: NoBuffer, Offset: 5}
	if loc.Valid() {
		t.Fatal("a location with BufferID 0 should be invalid")
	}
}

func TestAssignTextRoundTrip(t *testing.T) {
	mgr := NewManager()
	id, err := mgr.AssignText("virtual.sv", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(mgr.GetBuffer(id)) != "hello" {
		t.Fatalf("GetBuffer = %q, want %q", mgr.GetBuffer(id), "hello")
	}
	if mgr.GetFileName(id) != "virtual.sv" {
		t.Fatalf("GetFileName = %q", mgr.GetFileName(id))
	}
}

func TestRangeUnion(t *testing.T) {
	mgr := NewManager()
	id, err := mgr.AssignText("t.sv", []byte("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	a := Range{Start: Location{id, 2}, End: Location{id, 4}}
	b := Range{Start: Location{id, 3}, End: Location{id, 8}}
	u := a.Union(b)
	if u.Start.Offset != 2 || u.End.Offset != 8 {
		t.Fatalf("Union = %+v", u)
	}
}

func TestAssignTextRejectsDuplicatePath(t *testing.T) {
	mgr := NewManager()
	first, err := mgr.AssignText("dup.sv", []byte("module a; endmodule"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = mgr.AssignText("dup.sv", []byte("module b; endmodule"))
	if err == nil {
		t.Fatal("expected a second AssignText under the same path to fail")
	}
	dup, ok := err.(*DuplicatePathError)
	if !ok {
		t.Fatalf("expected a *DuplicatePathError, got %T", err)
	}
	if dup.Existing != first {
		t.Fatalf("DuplicatePathError.Existing = %v, want %v", dup.Existing, first)
	}
}

func TestAssignBufferRejectsDuplicatePath(t *testing.T) {
	mgr := NewManager()
	if _, err := mgr.AssignBuffer("dir/dup.sv", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.AssignBuffer("dir/dup.sv", []byte("b")); err == nil {
		t.Fatal("expected a second AssignBuffer under the same path to fail")
	}
}

func TestReadSourceDoesNotTreatARepeatReadAsDuplicate(t *testing.T) {
	mgr := NewManager()
	dir := t.TempDir()
	path := dir + "/x.sv"
	if err := os.WriteFile(path, []byte("module x; endmodule"), 0o644); err != nil {
		t.Fatal(err)
	}

	id1, err := mgr.ReadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := mgr.ReadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("ReadSource should cache by canonical path: got %v and %v", id1, id2)
	}
}
