package syntax

import "svcore/token"

// ParseCompilationUnit parses a whole buffer: a sequence of top-level
// module/interface/package declarations.
func (p *Parser) ParseCompilationUnit() *Node {
	var members []*Node
	for p.peek().Kind != token.EOF {
		members = append(members, p.parseTopLevelMember())
	}
	eof := NewLeaf(p.next())
	children := append(members, eof)
	return NewBranch(KindCompilationUnit, children...)
}

func (p *Parser) parseTopLevelMember() *Node {
	switch p.peek().Kind {
	case token.KwModule:
		return p.parseModuleDeclaration()
	case token.KwInterface:
		return p.parseInterfaceDeclaration()
	case token.KwPackage:
		return p.parsePackageDeclaration()
	default:
		skipped := p.skipToRecoveryPoint(func(k token.Kind) bool {
			return k == token.KwModule || k == token.KwInterface || k == token.KwPackage
		})
		if skipped != nil {
			return skipped
		}
		return NewLeaf(p.next())
	}
}

func (p *Parser) parseModuleDeclaration() *Node {
	kw := NewLeaf(p.next())
	name := p.want(token.Identifier)
	children := []*Node{kw, name}

	if p.got(token.Hash) {
		children = append(children, p.parseParameterPortList())
	}
	if p.got(token.LParen) {
		children = append(children, p.parsePortList())
	}
	children = append(children, p.want(token.Semicolon))

	for !p.got(token.KwEndmodule) && p.peek().Kind != token.EOF {
		children = append(children, p.parseModuleMember())
	}
	children = append(children, p.want(token.KwEndmodule))
	return NewBranch(KindModuleDeclaration, children...)
}

func (p *Parser) parseInterfaceDeclaration() *Node {
	kw := NewLeaf(p.next())
	name := p.want(token.Identifier)
	children := []*Node{kw, name}
	if p.got(token.Hash) {
		children = append(children, p.parseParameterPortList())
	}
	if p.got(token.LParen) {
		children = append(children, p.parsePortList())
	}
	children = append(children, p.want(token.Semicolon))
	for !p.got(token.KwEndinterface) && p.peek().Kind != token.EOF {
		children = append(children, p.parseModuleMember())
	}
	children = append(children, p.want(token.KwEndinterface))
	return NewBranch(KindInterfaceDeclaration, children...)
}

func (p *Parser) parsePackageDeclaration() *Node {
	kw := NewLeaf(p.next())
	name := p.want(token.Identifier)
	semi := p.want(token.Semicolon)
	children := []*Node{kw, name, semi}
	for !p.got(token.KwEndpackage) && p.peek().Kind != token.EOF {
		children = append(children, p.parseModuleMember())
	}
	children = append(children, p.want(token.KwEndpackage))
	return NewBranch(KindPackageDeclaration, children...)
}

func (p *Parser) parseParameterPortList() *Node {
	hash := NewLeaf(p.next())
	lp := p.want(token.LParen)
	params := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RParen) },
		func(pp *Parser) bool { return pp.got(token.RParen) },
		func(pp *Parser) *Node { return pp.parseParameterDeclaration(true) },
	)
	rp := p.want(token.RParen)
	children := []*Node{hash, lp}
	children = append(children, params...)
	children = append(children, rp)
	return NewBranch(KindParameterPortList, children...)
}

func (p *Parser) parseParameterDeclaration(isPort bool) *Node {
	var kw *Node
	if p.gotOneOf(token.KwParameter, token.KwLocalparam) {
		kw = NewLeaf(p.next())
	}
	ty := p.parseDataTypeOpt()
	name := p.want(token.Identifier)
	children := []*Node{}
	if kw != nil {
		children = append(children, kw)
	}
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, name)
	if p.got(token.Assign) {
		children = append(children, NewLeaf(p.next()), p.ParseExpression())
	}
	return NewBranch(KindParameterDeclaration, children...)
}

func (p *Parser) parsePortList() *Node {
	lp := NewLeaf(p.next())
	ports := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RParen) },
		func(pp *Parser) bool { return pp.got(token.RParen) },
		func(pp *Parser) *Node { return pp.parsePort() },
	)
	rp := p.want(token.RParen)
	children := []*Node{lp}
	children = append(children, ports...)
	children = append(children, rp)
	return NewBranch(KindPortList, children...)
}

func (p *Parser) parsePort() *Node {
	var dir *Node
	if p.gotOneOf(token.KwInput, token.KwOutput, token.KwInout, token.KwRef) {
		dir = NewLeaf(p.next())
	}
	ty := p.parseDataTypeOpt()
	name := p.want(token.Identifier)
	children := []*Node{}
	if dir != nil {
		children = append(children, dir)
	}
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, name)
	if p.got(token.Assign) {
		children = append(children, NewLeaf(p.next()), p.ParseExpression())
	}
	return NewBranch(KindAnsiPort, children...)
}

// parseDataTypeOpt speculatively consumes a leading data type, used
// wherever the grammar allows a declaration to omit its type and inherit
// one implicitly (ANSI ports, parameters). Returns nil if no type-looking
// token sequence is present at the current position.
func (p *Parser) parseDataTypeOpt() *Node {
	switch p.peek().Kind {
	case token.KwLogic, token.KwBit, token.KwReg, token.KwWire, token.KwInt, token.KwInteger,
		token.KwShortint, token.KwLongint, token.KwByte, token.KwReal, token.KwShortreal,
		token.KwTime, token.KwString, token.KwVoid:
		return p.parseIntegerOrBuiltinType()
	case token.KwEnum:
		return p.parseEnumType()
	case token.KwStruct, token.KwUnion:
		return p.parseStructType()
	case token.Identifier:
		if node, ok := p.Speculate(func() (*Node, bool) {
			name := NewBranch(KindIdentifierName, NewLeaf(p.next()))
			if !p.gotOneOf(token.Identifier, token.LBracket) {
				return nil, false
			}
			return name, true
		}); ok {
			return node
		}
		return nil
	default:
		return nil
	}
}

func (p *Parser) parseIntegerOrBuiltinType() *Node {
	kw := NewLeaf(p.next())
	children := []*Node{kw}
	if p.gotOneOf(token.KwSigned, token.KwUnsigned) {
		children = append(children, NewLeaf(p.next()))
	}
	for p.got(token.LBracket) {
		children = append(children, p.parsePackedDimension())
	}
	return NewBranch(KindIntegerType, children...)
}

// parseIntegerOrBuiltinTypeOpt is parseIntegerOrBuiltinType's speculative
// form, used where a base type is allowed but not required, e.g. the
// integer base type an enum may optionally carry before its member list.
func (p *Parser) parseIntegerOrBuiltinTypeOpt() *Node {
	switch p.peek().Kind {
	case token.KwLogic, token.KwBit, token.KwReg, token.KwWire, token.KwInt, token.KwInteger,
		token.KwShortint, token.KwLongint, token.KwByte, token.KwReal, token.KwShortreal,
		token.KwTime, token.KwString:
		return p.parseIntegerOrBuiltinType()
	default:
		return nil
	}
}

func (p *Parser) parseEnumType() *Node {
	kw := NewLeaf(p.next())
	children := []*Node{kw}
	if baseTy := p.parseIntegerOrBuiltinTypeOpt(); baseTy != nil {
		children = append(children, baseTy)
	}
	children = append(children, p.want(token.LBrace))
	members := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RBrace) },
		func(pp *Parser) bool { return pp.got(token.RBrace) },
		func(pp *Parser) *Node { return pp.parseEnumMember() },
	)
	children = append(children, members...)
	children = append(children, p.want(token.RBrace))
	return NewBranch(KindEnumDeclaration, children...)
}

func (p *Parser) parseEnumMember() *Node {
	name := p.want(token.Identifier)
	children := []*Node{name}
	if p.got(token.Assign) {
		children = append(children, NewLeaf(p.next()), p.ParseExpression())
	}
	return NewBranch(KindEnumMember, children...)
}

// parseStructType parses `struct`/`union`, optionally `packed`, followed by
// a brace-delimited member list; it is itself a data type, used the same
// way parseIntegerOrBuiltinType's result is, so it plugs directly into
// parseDataOrNetDeclaration's existing type-then-declarator-list shape.
func (p *Parser) parseStructType() *Node {
	kw := NewLeaf(p.next())
	children := []*Node{kw}
	if p.got(token.KwPacked) {
		children = append(children, NewLeaf(p.next()))
	}
	children = append(children, p.want(token.LBrace))
	for !p.got(token.RBrace) && p.peek().Kind != token.EOF {
		children = append(children, p.parseStructMember())
	}
	children = append(children, p.want(token.RBrace))
	return NewBranch(KindStructDeclaration, children...)
}

func (p *Parser) parseStructMember() *Node {
	ty := p.parseDataTypeOpt()
	names := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return pp.got(token.Identifier) },
		func(pp *Parser) bool { return pp.got(token.Semicolon) },
		func(pp *Parser) *Node { return NewBranch(KindIdentifierName, pp.want(token.Identifier)) },
	)
	semi := p.want(token.Semicolon)
	var children []*Node
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, names...)
	children = append(children, semi)
	return NewBranch(KindStructMember, children...)
}

// parseTypedefDeclaration parses `typedef <type> NAME;`, including the
// anonymous enum/struct/union form where <type> is itself an
// EnumDeclaration/StructDeclaration with no separate name of its own.
func (p *Parser) parseTypedefDeclaration() *Node {
	kw := NewLeaf(p.next())
	ty := p.parseDataTypeOpt()
	name := p.want(token.Identifier)
	semi := p.want(token.Semicolon)
	children := []*Node{kw}
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, name, semi)
	return NewBranch(KindTypedefDeclaration, children...)
}

func (p *Parser) parsePackedDimension() *Node {
	lb := NewLeaf(p.next())
	msb := p.ParseExpression()
	colon := p.want(token.Colon)
	lsb := p.ParseExpression()
	rb := p.want(token.RBracket)
	return NewBranch(KindPackedArrayDimension, lb, msb, colon, lsb, rb)
}

func (p *Parser) parseModuleMember() *Node {
	switch p.peek().Kind {
	case token.KwParameter, token.KwLocalparam:
		decl := p.parseParameterDeclaration(false)
		semi := p.want(token.Semicolon)
		return NewBranch(KindParameterDeclaration, decl, semi)
	case token.KwImport:
		return p.parseImportDeclaration()
	case token.KwModport:
		return p.parseModportDeclaration()
	case token.KwTypedef:
		return p.parseTypedefDeclaration()
	case token.KwAssign:
		return p.parseContinuousAssign()
	case token.KwAlways, token.KwAlwaysComb, token.KwAlwaysFF, token.KwAlwaysLatch, token.KwInitial, token.KwFinal:
		kw := NewLeaf(p.next())
		body := p.ParseStatement()
		return NewBranch(KindGenerateBlock, kw, body)
	case token.KwFunction:
		return p.parseFunctionDeclaration()
	case token.KwTask:
		return p.parseTaskDeclaration()
	default:
		return p.parseDataOrNetDeclaration()
	}
}

func (p *Parser) parseImportDeclaration() *Node {
	kw := NewLeaf(p.next())
	pkg := p.want(token.Identifier)
	cc := p.want(token.ColonColon)
	var item *Node
	if p.got(token.Star) {
		item = NewLeaf(p.next())
	} else {
		item = p.want(token.Identifier)
	}
	semi := p.want(token.Semicolon)
	return NewBranch(KindImportDeclaration, kw, pkg, cc, item, semi)
}

func (p *Parser) parseModportDeclaration() *Node {
	kw := NewLeaf(p.next())
	name := p.want(token.Identifier)
	lp := p.want(token.LParen)
	items := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RParen) },
		func(pp *Parser) bool { return pp.got(token.RParen) },
		func(pp *Parser) *Node { return pp.parseModportItem() },
	)
	rp := p.want(token.RParen)
	semi := p.want(token.Semicolon)
	children := []*Node{kw, name, lp}
	children = append(children, items...)
	children = append(children, rp, semi)
	return NewBranch(KindModportDeclaration, children...)
}

func (p *Parser) parseModportItem() *Node {
	dir := NewLeaf(p.next()) // input/output/inout
	name := p.want(token.Identifier)
	return NewBranch(KindModportItem, dir, name)
}

func (p *Parser) parseDataOrNetDeclaration() *Node {
	var kw *Node
	isNet := p.gotOneOf(token.KwWire)
	if isNet {
		kw = NewLeaf(p.next())
	}
	ty := p.parseDataTypeOpt()
	names := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return pp.got(token.Identifier) },
		func(pp *Parser) bool { return pp.got(token.Semicolon) },
		func(pp *Parser) *Node {
			name := pp.want(token.Identifier)
			if pp.got(token.Assign) {
				return NewBranch(KindIdentifierName, name, NewLeaf(pp.next()), pp.ParseExpression())
			}
			return NewBranch(KindIdentifierName, name)
		},
	)
	semi := p.want(token.Semicolon)
	children := []*Node{}
	if kw != nil {
		children = append(children, kw)
	}
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, names...)
	children = append(children, semi)
	if isNet {
		return NewBranch(KindNetDeclaration, children...)
	}
	return NewBranch(KindDataDeclaration, children...)
}

func (p *Parser) parseFunctionDeclaration() *Node {
	kw := NewLeaf(p.next())
	retTy := p.parseDataTypeOpt()
	name := p.want(token.Identifier)
	children := []*Node{kw}
	if retTy != nil {
		children = append(children, retTy)
	}
	children = append(children, name)
	if p.got(token.LParen) {
		lp := NewLeaf(p.next())
		args := ParseSeparatedList(p, token.Comma,
			func(pp *Parser) bool { return !pp.got(token.RParen) },
			func(pp *Parser) bool { return pp.got(token.RParen) },
			func(pp *Parser) *Node { return pp.parseFormalArgument() },
		)
		rp := p.want(token.RParen)
		children = append(children, lp)
		children = append(children, args...)
		children = append(children, rp)
	}
	children = append(children, p.want(token.Semicolon))
	for !p.got(token.KwEndfunction) && p.peek().Kind != token.EOF {
		children = append(children, p.parseModuleMemberOrStatement())
	}
	children = append(children, p.want(token.KwEndfunction))
	return NewBranch(KindFunctionDeclaration, children...)
}

func (p *Parser) parseTaskDeclaration() *Node {
	kw := NewLeaf(p.next())
	name := p.want(token.Identifier)
	children := []*Node{kw, name}
	if p.got(token.LParen) {
		lp := NewLeaf(p.next())
		args := ParseSeparatedList(p, token.Comma,
			func(pp *Parser) bool { return !pp.got(token.RParen) },
			func(pp *Parser) bool { return pp.got(token.RParen) },
			func(pp *Parser) *Node { return pp.parseFormalArgument() },
		)
		rp := p.want(token.RParen)
		children = append(children, lp)
		children = append(children, args...)
		children = append(children, rp)
	}
	children = append(children, p.want(token.Semicolon))
	for !p.got(token.KwEndtask) && p.peek().Kind != token.EOF {
		children = append(children, p.parseModuleMemberOrStatement())
	}
	children = append(children, p.want(token.KwEndtask))
	return NewBranch(KindTaskDeclaration, children...)
}

func (p *Parser) parseFormalArgument() *Node {
	var dir *Node
	if p.gotOneOf(token.KwInput, token.KwOutput, token.KwInout, token.KwRef, token.KwConst) {
		dir = NewLeaf(p.next())
	}
	ty := p.parseDataTypeOpt()
	name := p.want(token.Identifier)
	children := []*Node{}
	if dir != nil {
		children = append(children, dir)
	}
	if ty != nil {
		children = append(children, ty)
	}
	children = append(children, name)
	return NewBranch(KindFormalArgument, children...)
}

// parseModuleMemberOrStatement is used inside function/task bodies, which
// mix local variable declarations with statements.
func (p *Parser) parseModuleMemberOrStatement() *Node {
	switch p.peek().Kind {
	case token.KwLogic, token.KwBit, token.KwInt, token.KwInteger:
		return p.parseDataOrNetDeclaration()
	case token.KwTypedef:
		return p.parseTypedefDeclaration()
	default:
		return p.ParseStatement()
	}
}
