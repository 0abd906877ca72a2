package compilation

import (
	"svcore/binder"
	"svcore/eval"
	"svcore/symbols"
	"svcore/syntax"
	"svcore/token"
	"svcore/types"
)

// buildSymbols walks a parsed compilation unit and registers a symbol for
// every top-level module/interface/package declaration into c.RootScope,
// then populates each one's own Scope with its ports, parameters, nets,
// variables, and subroutines. Every constant expression met along the way
// (parameter defaults, packed-dimension bounds, enum member values) is
// bound and folded through the binder as it's encountered, not deferred to
// some later pass.
func (c *Compilation) buildSymbols(tree *syntax.Node) {
	if tree == nil {
		return
	}
	for _, member := range tree.Children {
		switch member.Kind {
		case syntax.KindModuleDeclaration:
			c.buildModule(member)
		case syntax.KindInterfaceDeclaration:
			c.buildInterface(member)
		case syntax.KindPackageDeclaration:
			c.buildPackage(member)
		}
	}
}

func (c *Compilation) buildModule(n *syntax.Node) symbols.Handle {
	mod := &symbols.ModuleSymbol{Symbol: symbols.Symbol{Kind: symbols.KindModule, Name: nameOf(n), DefRange: n.Range()}}
	mod.Scope = *symbols.NewScope(c.Symbols, symbols.NoHandle)
	h := symbols.Alloc(c.Symbols, mod)
	c.RootScope.AddMember(mod.Name, h, n.Range(), c.Diags)

	bctx := binder.New(&mod.Scope, c.Diags)
	for _, child := range n.Children {
		c.buildScopeMember(child, bctx, &mod.Ports, &mod.Parameters)
	}
	return h
}

func (c *Compilation) buildInterface(n *syntax.Node) symbols.Handle {
	iface := &symbols.InterfaceSymbol{Symbol: symbols.Symbol{Kind: symbols.KindInterface, Name: nameOf(n), DefRange: n.Range()}}
	iface.Scope = *symbols.NewScope(c.Symbols, symbols.NoHandle)
	h := symbols.Alloc(c.Symbols, iface)
	c.RootScope.AddMember(iface.Name, h, n.Range(), c.Diags)

	bctx := binder.New(&iface.Scope, c.Diags)
	for _, child := range n.Children {
		if child.Kind == syntax.KindModportDeclaration {
			iface.Modports = append(iface.Modports, c.buildModport(child, iface))
			continue
		}
		c.buildScopeMember(child, bctx, &iface.Ports, &iface.Parameters)
	}
	return h
}

func (c *Compilation) buildPackage(n *syntax.Node) symbols.Handle {
	pkg := &symbols.PackageSymbol{Symbol: symbols.Symbol{Kind: symbols.KindPackage, Name: nameOf(n), DefRange: n.Range()}}
	pkg.Scope = *symbols.NewScope(c.Symbols, symbols.NoHandle)
	h := symbols.Alloc(c.Symbols, pkg)
	c.RootScope.AddMember(pkg.Name, h, n.Range(), c.Diags)

	bctx := binder.New(&pkg.Scope, c.Diags)
	for _, child := range n.Children {
		c.buildScopeMember(child, bctx, nil, nil)
	}
	return h
}

// buildScopeMember handles the declaration kinds shared by module,
// interface, and package bodies. ports/params are nil for a package, which
// has neither.
func (c *Compilation) buildScopeMember(child *syntax.Node, bctx binder.Context, ports, params *[]symbols.Handle) {
	switch child.Kind {
	case syntax.KindParameterPortList:
		for _, p := range findChildren(child, syntax.KindParameterDeclaration) {
			h := c.buildParameter(p, bctx, symbols.ParamPort)
			if params != nil {
				*params = append(*params, h)
			}
		}
	case syntax.KindPortList:
		for _, p := range findChildren(child, syntax.KindAnsiPort) {
			h := c.buildPort(p, bctx)
			if ports != nil {
				*ports = append(*ports, h)
			}
		}
	case syntax.KindParameterDeclaration:
		inner := unwrapParameterDeclaration(child)
		h := c.buildParameter(inner, bctx, symbols.ParamBody)
		if params != nil {
			*params = append(*params, h)
		}
	case syntax.KindDataDeclaration:
		c.buildDataDeclaration(child, bctx)
	case syntax.KindNetDeclaration:
		c.buildNetDeclaration(child, bctx)
	case syntax.KindFunctionDeclaration, syntax.KindTaskDeclaration:
		c.buildSubroutine(child, bctx)
	case syntax.KindTypedefDeclaration:
		c.buildTypedef(child, bctx)
	case syntax.KindImportDeclaration:
		c.buildImport(child, bctx)
	case syntax.KindContinuousAssign:
		c.buildContinuousAssign(child, bctx)
	case syntax.KindGenerateBlock:
		c.bindStatementTree(child.Children[1], bctx)
	}
}

// bindStatementTree walks a procedural statement body (an always/initial/
// final block, or anything nested inside one) binding every expression it
// finds along the way, so an identifier referenced only inside `initial
// $display(x);` still gets resolved, diagnosed, and folded the same as one
// referenced from a continuous assignment or a parameter default. Statement
// structure itself (if/case/loop control flow, blocking vs. nonblocking
// assignment) isn't modeled here — only the expressions a statement carries
// are bound.
func (c *Compilation) bindStatementTree(n *syntax.Node, bctx binder.Context) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.KindIdentifierName, syntax.KindMemberAccessExpression, syntax.KindInvocationExpression,
		syntax.KindBinaryExpression, syntax.KindUnaryExpression, syntax.KindConditionalExpression,
		syntax.KindParenExpression, syntax.KindLiteralExpression:
		// BindExpression fully handles each of these kinds' own children, so
		// there's no need to keep walking once one is found. Select
		// expressions and anything else this switch doesn't list fall
		// through to the generic per-child recursion below instead, since
		// BindExpression's default case doesn't recurse into their operands
		// itself.
		bctx.BindExpression(n)
		return
	case syntax.KindToken:
		return
	}
	for _, ch := range n.Children {
		c.bindStatementTree(ch, bctx)
	}
}

// buildParameter registers a parameter/localparam declaration and, when it
// carries an initializer, binds it immediately so a bad default surfaces a
// diagnostic at the declaration rather than wherever some later expression
// happens to reference it first.
func (c *Compilation) buildParameter(n *syntax.Node, bctx binder.Context, kind symbols.ParameterKind) symbols.Handle {
	if hasKeyword(n, token.KwLocalparam) {
		kind = symbols.ParamLocal
	}
	param := &symbols.ParameterSymbol{
		Symbol: symbols.Symbol{Kind: symbols.KindParameter, Name: nameOf(n), DefRange: n.Range()},
		Kind:   kind,
	}
	if init := initializerExpr(n); init != nil {
		param.Initializer = init
	}
	h := symbols.Alloc(c.Symbols, param)
	bctx.Scope.AddMember(param.Name, h, n.Range(), c.Diags)
	if param.Initializer != nil {
		bindParameterEagerly(param, bctx)
	}
	return h
}

func bindParameterEagerly(param *symbols.ParameterSymbol, bctx binder.Context) {
	initNode, ok := param.Initializer.(*syntax.Node)
	if !ok || initNode == nil {
		return
	}
	bound := bctx.Reset(binder.Constant).BindExpression(initNode)
	if bound.IsConstant() {
		param.SetValue(bound.ConstantValue())
	}
}

func (c *Compilation) buildPort(n *syntax.Node, bctx binder.Context) symbols.Handle {
	dir := symbols.DirInput
	switch {
	case hasKeyword(n, token.KwOutput):
		dir = symbols.DirOutput
	case hasKeyword(n, token.KwInout):
		dir = symbols.DirInout
	case hasKeyword(n, token.KwRef):
		dir = symbols.DirRef
	}
	port := &symbols.PortSymbol{
		Symbol:    symbols.Symbol{Kind: symbols.KindPort, Name: nameOf(n), DefRange: n.Range()},
		Direction: dir,
	}
	if init := initializerExpr(n); init != nil {
		port.DefaultValue = init
	}
	v := &symbols.VariableSymbol{
		Symbol: symbols.Symbol{Kind: symbols.KindVariable, Name: port.Name, DefRange: n.Range()},
		Type:   c.resolveDataType(findDataTypeChild(n), bctx),
	}
	port.InternalSymbol = symbols.Alloc(c.Symbols, v)
	h := symbols.Alloc(c.Symbols, port)
	bctx.Scope.AddMember(port.Name, h, n.Range(), c.Diags)
	return h
}

func (c *Compilation) buildDataDeclaration(n *syntax.Node, bctx binder.Context) {
	ty := c.resolveDataType(findConcreteDataTypeChild(n), bctx)
	for _, decl := range findChildren(n, syntax.KindIdentifierName) {
		name := decl.Children[0].Token.Text
		v := &symbols.VariableSymbol{Symbol: symbols.Symbol{Kind: symbols.KindVariable, Name: name, DefRange: decl.Range()}, Type: ty}
		h := symbols.Alloc(c.Symbols, v)
		bctx.Scope.AddMember(name, h, decl.Range(), c.Diags)
		if init := initializerExpr(decl); init != nil {
			bctx.BindExpression(init)
		}
	}
}

func (c *Compilation) buildNetDeclaration(n *syntax.Node, bctx binder.Context) {
	ty := c.resolveDataType(findConcreteDataTypeChild(n), bctx)
	for _, decl := range findChildren(n, syntax.KindIdentifierName) {
		name := decl.Children[0].Token.Text
		net := &symbols.NetSymbol{Symbol: symbols.Symbol{Kind: symbols.KindNet, Name: name, DefRange: decl.Range()}, NetType: "wire", Type: ty}
		h := symbols.Alloc(c.Symbols, net)
		bctx.Scope.AddMember(name, h, decl.Range(), c.Diags)
		if init := initializerExpr(decl); init != nil {
			bctx.BindExpression(init)
		}
	}
}

func (c *Compilation) buildSubroutine(n *syntax.Node, bctx binder.Context) symbols.Handle {
	isTask := n.Kind == syntax.KindTaskDeclaration
	sub := &symbols.SubroutineSymbol{
		Symbol: symbols.Symbol{Kind: symbols.KindSubroutine, Name: nameOf(n), DefRange: n.Range()},
		IsTask: isTask,
	}
	sub.Scope = *symbols.NewScope(c.Symbols, symbols.NoHandle)
	h := symbols.Alloc(c.Symbols, sub)
	bctx.Scope.AddMember(sub.Name, h, n.Range(), c.Diags)

	subCtx := bctx.WithScope(&sub.Scope)
	if !isTask {
		if retTy := findDataTypeChild(n); retTy != nil {
			rv := &symbols.VariableSymbol{
				Symbol: symbols.Symbol{Kind: symbols.KindVariable, Name: sub.Name, DefRange: n.Range()},
				Type:   c.resolveDataType(retTy, subCtx),
			}
			sub.ReturnVar = symbols.Alloc(c.Symbols, rv)
		}
	}
	for _, arg := range findChildren(n, syntax.KindFormalArgument) {
		sub.Arguments = append(sub.Arguments, c.buildFormalArgument(arg, subCtx))
	}
	for _, member := range n.Children {
		if member.Kind == syntax.KindDataDeclaration {
			c.buildDataDeclaration(member, subCtx)
		}
	}
	return h
}

func (c *Compilation) buildFormalArgument(n *syntax.Node, bctx binder.Context) symbols.Handle {
	dir := symbols.DirInput
	switch {
	case hasKeyword(n, token.KwOutput):
		dir = symbols.DirOutput
	case hasKeyword(n, token.KwInout):
		dir = symbols.DirInout
	case hasKeyword(n, token.KwRef):
		dir = symbols.DirRef
	}
	arg := &symbols.FormalArgumentSymbol{
		VariableSymbol: symbols.VariableSymbol{
			Symbol: symbols.Symbol{Kind: symbols.KindFormalArgument, Name: nameOf(n), DefRange: n.Range()},
			Type:   c.resolveDataType(findDataTypeChild(n), bctx),
		},
		Direction: dir,
	}
	h := symbols.Alloc(c.Symbols, arg)
	bctx.Scope.AddMember(arg.Name, h, n.Range(), c.Diags)
	return h
}

func (c *Compilation) buildTypedef(n *syntax.Node, bctx binder.Context) symbols.Handle {
	ty := c.resolveDataType(findDataTypeChild(n), bctx)
	alias := &symbols.TypeAliasSymbol{
		Symbol:  symbols.Symbol{Kind: symbols.KindTypeAlias, Name: nameOf(n), DefRange: n.Range()},
		Aliased: ty,
	}
	h := symbols.Alloc(c.Symbols, alias)
	bctx.Scope.AddMember(alias.Name, h, n.Range(), c.Diags)
	return h
}

func (c *Compilation) buildImport(n *syntax.Node, bctx binder.Context) {
	pkgName := n.Children[1].Token.Text
	item := n.Children[3]
	if item.Kind == syntax.KindToken && item.Token.Kind == token.Star {
		wi := &symbols.WildcardImportSymbol{
			Symbol:      symbols.Symbol{Kind: symbols.KindWildcardImport, DefRange: n.Range()},
			PackageName: pkgName,
		}
		h := symbols.Alloc(c.Symbols, wi)
		rootScope := c.RootScope
		wi.SetResolver(c.Symbols, func(name string) symbols.Handle {
			found, _ := rootScope.Find(name)
			return found
		})
		bctx.Scope.AddWildcardImport(h)
		return
	}
	ei := &symbols.ExplicitImportSymbol{
		Symbol:      symbols.Symbol{Kind: symbols.KindExplicitImport, Name: item.Token.Text, DefRange: n.Range()},
		PackageName: pkgName,
		ImportName:  item.Token.Text,
	}
	h := symbols.Alloc(c.Symbols, ei)
	bctx.Scope.AddMember(ei.Name, h, n.Range(), c.Diags)
}

func (c *Compilation) buildModport(n *syntax.Node, iface *symbols.InterfaceSymbol) symbols.Handle {
	mp := &symbols.ModportSymbol{
		Symbol:    symbols.Symbol{Kind: symbols.KindModport, Name: nameOf(n), DefRange: n.Range()},
		Interface: iface.Self,
	}
	mp.Scope = *symbols.NewScope(c.Symbols, symbols.NoHandle)
	for _, item := range findChildren(n, syntax.KindModportItem) {
		sigName := item.Children[1].Token.Text
		if target, ok := iface.Scope.Find(sigName); ok {
			mp.Scope.AddMember(sigName, target, item.Range(), c.Diags)
		}
	}
	h := symbols.Alloc(c.Symbols, mp)
	iface.Scope.AddMember(mp.Name, h, n.Range(), c.Diags)
	return h
}

// buildContinuousAssign binds both sides of `assign lhs = rhs;`, checking
// the left side is assignable and caching the bound right side — the
// binding ContinuousAssignSymbol.Assign is documented to hold.
func (c *Compilation) buildContinuousAssign(n *syntax.Node, bctx binder.Context) {
	lhs := bctx.BindExpression(n.Children[1])
	bctx.RequireLValue(lhs)
	rhs := bctx.BindExpression(n.Children[3])
	assign := &symbols.ContinuousAssignSymbol{
		Symbol: symbols.Symbol{Kind: symbols.KindContinuousAssign, DefRange: n.Range()},
		Assign: rhs,
	}
	symbols.Alloc(c.Symbols, assign)
}

// resolveDataType turns a parsed type node into a types.Type, binding any
// constant sub-expressions (packed-dimension bounds, enum member values)
// through bctx as it goes. A nil node, or a type form this function doesn't
// recognize, resolves to nil.
func (c *Compilation) resolveDataType(node *syntax.Node, bctx binder.Context) types.Type {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case syntax.KindIntegerType:
		return c.resolveIntegerType(node, bctx)
	case syntax.KindEnumDeclaration:
		return c.resolveEnumType(node, bctx)
	case syntax.KindStructDeclaration:
		return c.resolveStructType(node, bctx)
	case syntax.KindIdentifierName:
		name := node.Children[0].Token.Text
		if bctx.Scope == nil {
			return nil
		}
		h, ok := symbols.LookupUnqualifiedFrom(bctx.Scope, name, c.Diags, node.Range())
		if !ok {
			return nil
		}
		if alias, ok := c.Symbols.Get(h).(*symbols.TypeAliasSymbol); ok {
			return alias.Aliased
		}
		return nil
	default:
		return nil
	}
}

func (c *Compilation) resolveIntegerType(node *syntax.Node, bctx binder.Context) *types.IntegralType {
	t := &types.IntegralType{Width: 1}
	for _, ch := range node.Children {
		if ch.Kind == syntax.KindToken {
			switch ch.Token.Kind {
			case token.KwLogic:
				t.Base = types.KindLogic
			case token.KwBit:
				t.Base = types.KindBit
			case token.KwReg:
				t.Base = types.KindReg
			case token.KwInt:
				t.Base, t.Width = types.KindInt, 32
			case token.KwInteger:
				t.Base, t.Width = types.KindInteger, 32
			case token.KwShortint:
				t.Base, t.Width = types.KindShortint, 16
			case token.KwLongint:
				t.Base, t.Width = types.KindLongint, 64
			case token.KwByte:
				t.Base, t.Width = types.KindByte, 8
			case token.KwSigned:
				t.Signed = true
			case token.KwUnsigned:
				t.Signed = false
			}
			continue
		}
		if ch.Kind == syntax.KindPackedArrayDimension {
			syn := binder.DimensionSyntax{
				Kind:       binder.SpecRange,
				RangeLeft:  ch.Children[1],
				RangeRight: ch.Children[3],
				Range:      ch.Range(),
			}
			dim := bctx.EvalPackedDimension(syn, bindExprAdapter)
			if dim.Kind == types.DimRange {
				width := dim.Left - dim.Right
				if width < 0 {
					width = -width
				}
				t.Dims = append(t.Dims, width+1)
			}
		}
	}
	if len(t.Dims) > 0 {
		total := 1
		for _, d := range t.Dims {
			total *= d
		}
		t.Width = total
	}
	return t
}

func bindExprAdapter(c binder.Context, n *syntax.Node) binder.Expression {
	return c.BindExpression(n)
}

// resolveEnumType constructs the enum's type and registers each member as a
// TransparentMemberSymbol wrapping an EnumValueSymbol directly into the
// scope the enum was declared in, so the member names are visible
// unqualified right alongside the type, the way a real SystemVerilog enum
// behaves.
func (c *Compilation) resolveEnumType(node *syntax.Node, bctx binder.Context) *types.EnumType {
	base := &types.IntegralType{Base: types.KindInt, Signed: true, Width: 32}
	if baseNode := findChild(node, syntax.KindIntegerType); baseNode != nil {
		base = c.resolveIntegerType(baseNode, bctx)
	}

	members := findChildren(node, syntax.KindEnumMember)
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Children[0].Token.Text
	}
	enumType := &types.EnumType{Base: base, Members: names}

	var ordinal int64 = -1
	for _, m := range members {
		name := m.Children[0].Token.Text
		ordinal++
		if init := initializerExpr(m); init != nil {
			bound := bctx.Reset(binder.Constant).BindExpression(init)
			if v, ok := bctx.EvalInteger(bound); ok {
				ordinal = int64(v)
			}
		}
		valueSym := &symbols.EnumValueSymbol{
			Symbol:   symbols.Symbol{Kind: symbols.KindEnumValue, Name: name, DefRange: m.Range()},
			EnumType: enumType,
			Value:    eval.IntConstant(eval.FromInt64(ordinal, base.Width)),
		}
		vh := symbols.Alloc(c.Symbols, valueSym)
		wrapper := &symbols.TransparentMemberSymbol{
			Symbol:  symbols.Symbol{Kind: symbols.KindTransparentMember, Name: name, DefRange: m.Range()},
			Wrapped: vh,
		}
		wh := symbols.Alloc(c.Symbols, wrapper)
		if bctx.Scope != nil {
			bctx.Scope.AddMember(name, wh, m.Range(), c.Diags)
		}
	}
	return enumType
}

func (c *Compilation) resolveStructType(node *syntax.Node, bctx binder.Context) *types.StructType {
	st := &types.StructType{
		IsUnion: hasKeyword(node, token.KwUnion),
		Packed:  hasKeyword(node, token.KwPacked),
	}
	for _, member := range findChildren(node, syntax.KindStructMember) {
		fieldTy := c.resolveDataType(findConcreteDataTypeChild(member), bctx)
		for _, nameNode := range findChildren(member, syntax.KindIdentifierName) {
			st.Fields = append(st.Fields, types.StructField{Name: nameNode.Children[0].Token.Text, Type: fieldTy})
		}
	}
	return st
}

// --- small structural helpers shared by the build* functions above ---

// nameOf returns the text of n's declared name: the unique direct child
// that is a bare identifier token, as opposed to a data-type child, which
// is always wrapped in a branch node even when the type itself is just a
// bare identifier naming a typedef.
func nameOf(n *syntax.Node) string {
	for _, ch := range n.Children {
		if ch.Kind == syntax.KindToken && ch.Token.Kind == token.Identifier {
			return ch.Token.Text
		}
	}
	return ""
}

func findChild(n *syntax.Node, kind syntax.Kind) *syntax.Node {
	for _, ch := range n.Children {
		if ch.Kind == kind {
			return ch
		}
	}
	return nil
}

func findChildren(n *syntax.Node, kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	for _, ch := range n.Children {
		if ch.Kind == kind {
			out = append(out, ch)
		}
	}
	return out
}

func hasKeyword(n *syntax.Node, kw token.Kind) bool {
	for _, ch := range n.Children {
		if ch.Kind == syntax.KindToken && ch.Token.Kind == kw {
			return true
		}
	}
	return false
}

// initializerExpr returns the expression following a direct `=` child of
// n, or nil if n has none — shared by parameter, port, variable, net, and
// enum-member declarations, which all attach an optional initializer the
// same way.
func initializerExpr(n *syntax.Node) *syntax.Node {
	for i, ch := range n.Children {
		if ch.Kind == syntax.KindToken && ch.Token.Kind == token.Assign && i+1 < len(n.Children) {
			return n.Children[i+1]
		}
	}
	return nil
}

// findDataTypeChild returns the direct child naming n's data type. Safe for
// any declaration shape where the declared name is a bare token rather
// than a branch (parameters, ports, formal arguments, typedefs) — in those
// shapes a KindIdentifierName child can only be the type.
func findDataTypeChild(n *syntax.Node) *syntax.Node {
	for _, ch := range n.Children {
		switch ch.Kind {
		case syntax.KindIntegerType, syntax.KindEnumDeclaration, syntax.KindStructDeclaration, syntax.KindIdentifierName:
			return ch
		}
	}
	return nil
}

// findConcreteDataTypeChild is findDataTypeChild restricted to the type
// forms that can't be confused with a declared name — used for data/net
// declarations and struct members, whose declarator lists wrap each
// declared name in its own KindIdentifierName branch, the same shape an
// implicit named-type reference would have.
func findConcreteDataTypeChild(n *syntax.Node) *syntax.Node {
	for _, ch := range n.Children {
		switch ch.Kind {
		case syntax.KindIntegerType, syntax.KindEnumDeclaration, syntax.KindStructDeclaration:
			return ch
		}
	}
	return nil
}

// unwrapParameterDeclaration undoes parseModuleMember's extra
// (decl, semi) wrapping around a module-body parameter declaration; a
// parameter-port-list declaration is never wrapped this way.
func unwrapParameterDeclaration(n *syntax.Node) *syntax.Node {
	if len(n.Children) > 0 && n.Children[0].Kind == syntax.KindParameterDeclaration {
		return n.Children[0]
	}
	return n
}
