package compilation

import (
	"testing"

	"svcore/config"
	"svcore/symbols"
)

func TestAddTextBuildsModuleSymbols(t *testing.T) {
	c := New(config.Default())
	c.AddText("m.sv", `
module counter #(parameter W = 8) (
	input logic clk,
	output logic [W-1:0] count
);
	logic [W-1:0] next;
	assign next = count;
endmodule
`)
	if c.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", c.Diags.All())
	}

	h, ok := c.RootScope.Find("counter")
	if !ok {
		t.Fatal("expected a counter module symbol in the root scope")
	}
	mod, ok := c.Symbols.Get(h).(*symbols.ModuleSymbol)
	if !ok {
		t.Fatalf("counter resolved to %T, want *symbols.ModuleSymbol", c.Symbols.Get(h))
	}
	if len(mod.Parameters) != 1 {
		t.Fatalf("got %d parameters, want 1", len(mod.Parameters))
	}
	if len(mod.Ports) != 2 {
		t.Fatalf("got %d ports, want 2", len(mod.Ports))
	}

	wh, ok := mod.Scope.Find("W")
	if !ok {
		t.Fatal("expected W visible in the module's own scope")
	}
	w, ok := c.Symbols.Get(wh).(*symbols.ParameterSymbol)
	if !ok {
		t.Fatalf("W resolved to %T, want *symbols.ParameterSymbol", c.Symbols.Get(wh))
	}
	v, ok := w.CachedValue()
	if !ok {
		t.Fatal("expected W's default to have been bound eagerly")
	}
	got, ok := v.Int.AsInt32()
	if !ok || got != 8 {
		t.Fatalf("W = %v (ok=%v), want 8", got, ok)
	}

	if _, ok := mod.Scope.Find("next"); !ok {
		t.Fatal("expected the body-declared variable next to be registered")
	}
	if _, ok := mod.Scope.Find("count"); !ok {
		t.Fatal("expected the port count to be registered")
	}
}

func TestAddTextBuildsEnumMembersAsTransparentMembers(t *testing.T) {
	c := New(config.Default())
	c.AddText("e.sv", `
package colors;
	typedef enum { RED, GREEN, BLUE = 5 } color_t;
endpackage
`)
	if c.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", c.Diags.All())
	}

	ph, ok := c.RootScope.Find("colors")
	if !ok {
		t.Fatal("expected a colors package symbol")
	}
	pkg, ok := c.Symbols.Get(ph).(*symbols.PackageSymbol)
	if !ok {
		t.Fatalf("colors resolved to %T, want *symbols.PackageSymbol", c.Symbols.Get(ph))
	}

	redH, ok := pkg.Scope.Find("RED")
	if !ok {
		t.Fatal("expected RED visible directly in the package scope")
	}
	wrapper, ok := c.Symbols.Get(redH).(*symbols.TransparentMemberSymbol)
	if !ok {
		t.Fatalf("RED resolved to %T, want *symbols.TransparentMemberSymbol", c.Symbols.Get(redH))
	}
	redValue, ok := c.Symbols.Get(wrapper.Wrapped).(*symbols.EnumValueSymbol)
	if !ok {
		t.Fatalf("RED's wrapped symbol is %T, want *symbols.EnumValueSymbol", c.Symbols.Get(wrapper.Wrapped))
	}
	if got, ok := redValue.Value.Int.AsInt32(); !ok || got != 0 {
		t.Fatalf("RED = %v (ok=%v), want 0", got, ok)
	}

	blueH, ok := pkg.Scope.Find("BLUE")
	if !ok {
		t.Fatal("expected BLUE visible directly in the package scope")
	}
	blueWrapper, ok := c.Symbols.Get(blueH).(*symbols.TransparentMemberSymbol)
	if !ok {
		t.Fatalf("BLUE resolved to %T, want *symbols.TransparentMemberSymbol", c.Symbols.Get(blueH))
	}
	blueValue, ok := c.Symbols.Get(blueWrapper.Wrapped).(*symbols.EnumValueSymbol)
	if !ok {
		t.Fatalf("BLUE's wrapped symbol is %T, want *symbols.EnumValueSymbol", c.Symbols.Get(blueWrapper.Wrapped))
	}
	if got, ok := blueValue.Value.Int.AsInt32(); !ok || got != 5 {
		t.Fatalf("BLUE = %v (ok=%v), want 5", got, ok)
	}

	if _, ok := pkg.Scope.Find("color_t"); !ok {
		t.Fatal("expected the color_t typedef to be registered")
	}
}

func TestAddTextBindsIdentifiersInsideInitialBlockThroughWildcardImport(t *testing.T) {
	c := New(config.Default())
	c.AddText("p.sv", `
package defs;
	localparam int B = 1;
endpackage
`)
	c.AddText("m.sv", `
module m;
	import defs::*;
	initial $display(B);
endmodule
`)
	if c.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", c.Diags.All())
	}
}

func TestAddTextReportsUnknownIdentifierInsideAlwaysBlock(t *testing.T) {
	c := New(config.Default())
	c.AddText("m.sv", `
module m;
	logic q;
	always @(*) q = nope;
endmodule
`)
	if !c.HasErrors() {
		t.Fatal("expected an unknown identifier referenced only inside an always block to be diagnosed")
	}
}

func TestAddTextReportsUnassignableContinuousAssign(t *testing.T) {
	c := New(config.Default())
	c.AddText("bad.sv", `
module m (input logic a, input logic b);
	assign a = b;
endmodule
`)
	if !c.HasErrors() {
		t.Fatal("expected assigning to an input port to report a diagnostic")
	}
}
