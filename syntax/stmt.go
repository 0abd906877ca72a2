package syntax

import "svcore/token"

// ParseStatement dispatches on the leading token kind, one case per
// construct in the statement grammar. Unrecognized leading tokens fall
// through to an expression/assignment statement, the grammar's catch-all.
func (p *Parser) ParseStatement() *Node {
	switch p.peek().Kind {
	case token.KwUnique, token.KwUnique0, token.KwPriority:
		return p.parseModifiedStatement()
	case token.KwBegin:
		return p.parseBlockStatement()
	case token.KwIf:
		return p.parseIfStatement()
	case token.KwCase, token.KwCasez, token.KwCasex:
		return p.parseCaseStatement()
	case token.KwFor:
		return p.parseForStatement()
	case token.KwForeach:
		return p.parseForeachStatement()
	case token.KwWhile:
		return p.parseWhileStatement()
	case token.KwRepeat:
		return p.parseRepeatStatement()
	case token.KwForever:
		return p.parseForeverStatement()
	case token.KwDo:
		return p.parseDoWhileStatement()
	case token.KwReturn:
		return p.parseReturnStatement()
	case token.KwBreak:
		return NewBranch(KindBreakStatement, NewLeaf(p.next()), p.want(token.Semicolon))
	case token.KwContinue:
		return NewBranch(KindContinueStatement, NewLeaf(p.next()), p.want(token.Semicolon))
	case token.KwAssign:
		return p.parseContinuousAssign()
	case token.KwForce:
		return p.parseForceStatement()
	case token.KwDeassign:
		return p.parseDeassignOrReleaseStatement(KindDeassignStatement)
	case token.KwRelease:
		return p.parseDeassignOrReleaseStatement(KindReleaseStatement)
	case token.KwAssert, token.KwAssume, token.KwCover, token.KwRestrict:
		return p.parseImmediateAssertion()
	case token.KwDisable:
		return p.parseDisableStatement()
	case token.KwFork:
		return p.parseForkJoinStatement()
	case token.KwWait:
		return p.parseWaitStatement()
	case token.KwWaitOrder:
		return p.parseWaitOrderStatement()
	case token.KwRandcase:
		return p.parseRandCaseStatement()
	case token.Semicolon:
		return NewBranch(KindEmptyStatement, NewLeaf(p.next()))
	case token.At, token.Hash, token.HashHash:
		return p.parseTimingControlStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

// parseModifiedStatement handles the unique/unique0/priority modifier that
// may prefix an if or case statement, disambiguating among them among case
// variants the way the unmodified dispatch in ParseStatement already does.
func (p *Parser) parseModifiedStatement() *Node {
	modifier := NewLeaf(p.next())
	switch p.peek().Kind {
	case token.KwCase, token.KwCasez, token.KwCasex:
		return NewBranch(KindCaseStatement, modifier, p.parseCaseStatement())
	default:
		return NewBranch(KindIfStatement, modifier, p.parseIfStatement())
	}
}

func (p *Parser) parseDisableStatement() *Node {
	kw := NewLeaf(p.next())
	var target *Node
	if p.got(token.KwFork) {
		target = NewLeaf(p.next())
	} else {
		target = p.parseName()
	}
	semi := p.want(token.Semicolon)
	return NewBranch(KindDisableStatement, kw, target, semi)
}

// parseForkJoinStatement parses fork...join/join_any/join_none, the
// concurrent-process block; its member statements run as parallel
// processes, joined by whichever of the three keywords closes it.
func (p *Parser) parseForkJoinStatement() *Node {
	kw := NewLeaf(p.next())
	var stmts []*Node
	for !p.gotOneOf(token.KwJoin, token.KwJoinAny, token.KwJoinNone) && p.peek().Kind != token.EOF {
		stmts = append(stmts, p.ParseStatement())
	}
	var join *Node
	if p.gotOneOf(token.KwJoinAny, token.KwJoinNone) {
		join = NewLeaf(p.next())
	} else {
		join = p.want(token.KwJoin)
	}
	children := append([]*Node{kw}, stmts...)
	children = append(children, join)
	return NewBranch(KindForkJoinStatement, children...)
}

func (p *Parser) parseWaitStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	cond := p.ParseExpression()
	rp := p.want(token.RParen)
	if p.got(token.Semicolon) {
		return NewBranch(KindWaitStatement, kw, lp, cond, rp, p.want(token.Semicolon))
	}
	body := p.ParseStatement()
	return NewBranch(KindWaitStatement, kw, lp, cond, rp, body)
}

func (p *Parser) parseWaitOrderStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	names := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RParen) },
		func(pp *Parser) bool { return pp.got(token.RParen) },
		func(pp *Parser) *Node { return pp.parseName() },
	)
	rp := p.want(token.RParen)
	children := append([]*Node{kw, lp}, names...)
	children = append(children, rp)
	if !p.got(token.Semicolon) {
		children = append(children, p.ParseStatement())
	} else {
		children = append(children, p.want(token.Semicolon))
	}
	return NewBranch(KindWaitOrderStatement, children...)
}

// parseRandCaseStatement parses randcase ... endcase, whose items are each
// weighted by a leading expression rather than matched against the case
// selector (there is none).
func (p *Parser) parseRandCaseStatement() *Node {
	kw := NewLeaf(p.next())
	var items []*Node
	for !p.got(token.KwEndcase) && p.peek().Kind != token.EOF {
		weight := p.ParseExpression()
		colon := p.want(token.Colon)
		stmt := p.ParseStatement()
		items = append(items, NewBranch(KindRandCaseItem, weight, colon, stmt))
	}
	endcase := p.want(token.KwEndcase)
	children := append([]*Node{kw}, items...)
	children = append(children, endcase)
	return NewBranch(KindRandCaseStatement, children...)
}

// parseName parses a bare identifier or hierarchical dotted name, the form
// disable/wait_order targets take.
func (p *Parser) parseName() *Node {
	base := NewBranch(KindIdentifierName, p.want(token.Identifier))
	for p.got(token.Dot) {
		dot := p.next()
		name := p.want(token.Identifier)
		base = NewBranch(KindMemberAccessExpression, base, NewLeaf(dot), name)
	}
	return base
}

func (p *Parser) parseBlockStatement() *Node {
	begin := NewLeaf(p.next())
	var stmts []*Node
	for !p.got(token.KwEnd) && p.peek().Kind != token.EOF {
		stmts = append(stmts, p.ParseStatement())
	}
	end := p.want(token.KwEnd)
	children := append([]*Node{begin}, stmts...)
	children = append(children, end)
	return NewBranch(KindBlockStatement, children...)
}

func (p *Parser) parseIfStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	cond := p.ParseExpression()
	rp := p.want(token.RParen)
	then := p.ParseStatement()
	children := []*Node{kw, lp, cond, rp, then}
	if p.got(token.KwElse) {
		elseKw := NewLeaf(p.next())
		elseStmt := p.ParseStatement()
		children = append(children, elseKw, elseStmt)
	}
	return NewBranch(KindIfStatement, children...)
}

func (p *Parser) parseCaseStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	expr := p.ParseExpression()
	rp := p.want(token.RParen)
	children := []*Node{kw, lp, expr, rp}
	for !p.got(token.KwEndcase) && p.peek().Kind != token.EOF {
		children = append(children, p.parseCaseItem())
	}
	children = append(children, p.want(token.KwEndcase))
	return NewBranch(KindCaseStatement, children...)
}

func (p *Parser) parseCaseItem() *Node {
	var labels []*Node
	if p.got(token.KwDefault) {
		labels = append(labels, NewLeaf(p.next()))
	} else {
		labels = ParseSeparatedList(p, token.Comma,
			func(pp *Parser) bool { return !pp.got(token.Colon) },
			func(pp *Parser) bool { return pp.got(token.Colon) },
			func(pp *Parser) *Node { return pp.ParseExpression() },
		)
	}
	colon := p.want(token.Colon)
	stmt := p.ParseStatement()
	children := append(labels, colon, stmt)
	return NewBranch(KindCaseItem, children...)
}

func (p *Parser) parseForStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	init := p.parseExpressionOrAssignStatement()
	cond := p.ParseExpression()
	semi := p.want(token.Semicolon)
	step := p.ParseExpression()
	rp := p.want(token.RParen)
	body := p.ParseStatement()
	return NewBranch(KindForLoopStatement, kw, lp, init, cond, semi, step, rp, body)
}

func (p *Parser) parseForeachStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	arr := p.ParseExpression()
	lbracket := p.want(token.LBracket)
	idx := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RBracket) },
		func(pp *Parser) bool { return pp.got(token.RBracket) },
		func(pp *Parser) *Node { return NewBranch(KindIdentifierName, pp.want(token.Identifier)) },
	)
	rbracket := p.want(token.RBracket)
	rp := p.want(token.RParen)
	body := p.ParseStatement()
	children := []*Node{kw, lp, arr, lbracket}
	children = append(children, idx...)
	children = append(children, rbracket, rp, body)
	return NewBranch(KindForeachLoopStatement, children...)
}

func (p *Parser) parseWhileStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	cond := p.ParseExpression()
	rp := p.want(token.RParen)
	body := p.ParseStatement()
	return NewBranch(KindWhileStatement, kw, lp, cond, rp, body)
}

func (p *Parser) parseRepeatStatement() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	count := p.ParseExpression()
	rp := p.want(token.RParen)
	body := p.ParseStatement()
	return NewBranch(KindRepeatStatement, kw, lp, count, rp, body)
}

func (p *Parser) parseForeverStatement() *Node {
	kw := NewLeaf(p.next())
	body := p.ParseStatement()
	return NewBranch(KindForeverStatement, kw, body)
}

func (p *Parser) parseDoWhileStatement() *Node {
	doKw := NewLeaf(p.next())
	body := p.ParseStatement()
	whileKw := p.want(token.KwWhile)
	lp := p.want(token.LParen)
	cond := p.ParseExpression()
	rp := p.want(token.RParen)
	semi := p.want(token.Semicolon)
	return NewBranch(KindDoWhileStatement, doKw, body, whileKw, lp, cond, rp, semi)
}

func (p *Parser) parseReturnStatement() *Node {
	kw := NewLeaf(p.next())
	if p.got(token.Semicolon) {
		return NewBranch(KindReturnStatement, kw, p.want(token.Semicolon))
	}
	expr := p.ParseExpression()
	semi := p.want(token.Semicolon)
	return NewBranch(KindReturnStatement, kw, expr, semi)
}

func (p *Parser) parseContinuousAssign() *Node {
	kw := NewLeaf(p.next())
	lhs := p.ParseExpression()
	eq := p.want(token.Assign)
	rhs := p.ParseExpression()
	semi := p.want(token.Semicolon)
	return NewBranch(KindContinuousAssign, kw, lhs, eq, rhs, semi)
}

// parseForceStatement parses `force lhs = rhs;`, which overrides whatever
// drives lhs until a matching release. Its shape mirrors a continuous
// assign, just under the force keyword and without the net's permanence.
func (p *Parser) parseForceStatement() *Node {
	kw := NewLeaf(p.next())
	lhs := p.ParseExpression()
	eq := p.want(token.Assign)
	rhs := p.ParseExpression()
	semi := p.want(token.Semicolon)
	return NewBranch(KindForceStatement, kw, lhs, eq, rhs, semi)
}

// parseDeassignOrReleaseStatement parses `deassign lhs;` or `release lhs;`,
// which share a shape: keyword, target lvalue, semicolon. kind picks which
// of the two node kinds to build.
func (p *Parser) parseDeassignOrReleaseStatement(kind Kind) *Node {
	kw := NewLeaf(p.next())
	lhs := p.ParseExpression()
	semi := p.want(token.Semicolon)
	return NewBranch(kind, kw, lhs, semi)
}

func (p *Parser) parseImmediateAssertion() *Node {
	kw := NewLeaf(p.next())
	lp := p.want(token.LParen)
	cond := p.ParseExpression()
	rp := p.want(token.RParen)
	children := []*Node{kw, lp, cond, rp}
	if !p.got(token.Semicolon) {
		children = append(children, p.ParseStatement())
	} else {
		children = append(children, p.want(token.Semicolon))
	}
	if p.got(token.KwElse) {
		children = append(children, NewLeaf(p.next()), p.ParseStatement())
	}
	return NewBranch(KindImmediateAssertion, children...)
}

// parseTimingControlStatement handles the three event/delay-control prefixes
// a statement may carry: `@(...)`/`@expr` (event control), the implicit
// `@*` event expression, and `#expr`/`##expr` (delay/cycle-delay control).
func (p *Parser) parseTimingControlStatement() *Node {
	ctrl := NewLeaf(p.next())
	var children []*Node
	children = append(children, ctrl)
	switch {
	case p.got(token.Star):
		children = append(children, NewLeaf(p.next()))
	case p.got(token.LParen):
		children = append(children, p.want(token.LParen))
		if p.gotOneOf(token.KwPosedge, token.KwNegedge, token.KwEdge) {
			children = append(children, NewLeaf(p.next()))
		}
		children = append(children, p.ParseExpression())
		children = append(children, p.want(token.RParen))
	default:
		children = append(children, p.ParseExpression())
	}
	children = append(children, p.ParseStatement())
	return NewBranch(KindTimingControlStatement, children...)
}

func (p *Parser) parseExpressionOrAssignStatement() *Node {
	expr := p.ParseExpression()
	if p.gotOneOf(token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AmpAssign, token.PipeAssign, token.CaretAssign,
		token.ShiftLeftAssign, token.ShiftRightAssign) {
		op := NewLeaf(p.next())
		rhs := p.ParseExpression()
		semi := p.want(token.Semicolon)
		return NewBranch(KindAssignStatement, expr, op, rhs, semi)
	}
	semi := p.want(token.Semicolon)
	return NewBranch(KindExpressionStatement, expr, semi)
}
