package syntax

import (
	"svcore/diag"
	"svcore/source"
	"svcore/token"
)

// binaryPower implements the binary-operator precedence levels of the
// expression grammar (2 for `||` up to 12 for `**`) via
// Pratt/precedence-climbing. Higher binds tighter. Levels follow the
// conventional SystemVerilog operator precedence table; assignment (handled
// separately in statement context) sits below them and the unary operators
// (handled in parseUnary) above them.
var binaryPower = map[token.Kind]int{
	token.LogicalOr: 2,
	token.LogicalAnd: 3,
	token.Pipe: 4,
	token.Caret: 5, token.TildeCaret: 5, token.CaretTilde: 5,
	token.Amp: 6,
	token.Equal: 7, token.NotEqual: 7, token.CaseEqual: 7, token.CaseNotEqual: 7,
	token.WildcardEqual: 7, token.WildcardNotEqual: 7,
	token.Less: 8, token.LessEqual: 8, token.Greater: 8, token.GreaterEqual: 8,
	token.ShiftLeft: 9, token.ShiftRight: 9, token.ArithShiftLeft: 9, token.ArithShiftRight: 9,
	token.Plus: 10, token.Minus: 10,
	token.Star: 11, token.Slash: 11, token.Percent: 11,
	token.StarStar: 12,
}

var rightAssoc = map[token.Kind]bool{
	token.StarStar: true,
}

var unaryOps = map[token.Kind]bool{
	token.Plus: true, token.Minus: true, token.Bang: true, token.Tilde: true,
	token.Amp: true, token.Pipe: true, token.Caret: true,
	token.TildeAmp: true, token.TildePipe: true, token.TildeCaret: true, token.CaretTilde: true,
	token.PlusPlus: true, token.MinusMinus: true,
}

const conditionalPower = 1 // `?:`, binds looser than `||`

// ParseExpression parses a full expression, including the `?:` conditional
// operator, which sits below every binary operator in binaryPower.
func (p *Parser) ParseExpression() *Node {
	return p.parseExpr(0)
}

func (p *Parser) parseExpr(minBP int) *Node {
	left := p.parseUnary()

	for {
		if p.got(token.Question) && conditionalPower >= minBP {
			left = p.parseConditional(left)
			continue
		}

		op := p.peek()
		bp, ok := binaryPower[op.Kind]
		if !ok || bp < minBP {
			break
		}
		p.next()
		nextMin := bp + 1
		if rightAssoc[op.Kind] {
			nextMin = bp
		}
		right := p.parseExpr(nextMin)
		left = NewBranch(KindBinaryExpression, left, NewLeaf(op), right)
	}

	return left
}

func (p *Parser) parseConditional(cond *Node) *Node {
	q := p.next() // '?'
	whenTrue := p.parseExpr(conditionalPower)
	colon := p.want(token.Colon)
	whenFalse := p.parseExpr(conditionalPower)
	return NewBranch(KindConditionalExpression, cond, NewLeaf(q), whenTrue, colon, whenFalse)
}

func (p *Parser) parseUnary() *Node {
	if unaryOps[p.peek().Kind] {
		op := p.next()
		operand := p.parseUnary()
		return NewBranch(KindUnaryExpression, NewLeaf(op), operand)
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(base *Node) *Node {
	for {
		switch p.peek().Kind {
		case token.LBracket:
			base = p.parseSelect(base)
		case token.Dot:
			dot := p.next()
			name := p.want(token.Identifier)
			base = NewBranch(KindMemberAccessExpression, base, NewLeaf(dot), name)
		case token.ColonColon:
			cc := p.next()
			name := p.want(token.Identifier)
			base = NewBranch(KindScopedName, base, NewLeaf(cc), name)
		case token.LParen:
			base = NewBranch(KindInvocationExpression, base, p.parseArgumentList())
		case token.PlusPlus, token.MinusMinus:
			op := p.next()
			base = NewBranch(KindPostfixExpression, base, NewLeaf(op))
		case token.Apostrophe:
			if p.peekAt(1).Kind != token.LParen {
				return base
			}
			apos := NewLeaf(p.next())
			lp := NewLeaf(p.next())
			inner := p.parseExpr(0)
			rp := p.want(token.RParen)
			base = NewBranch(KindCastExpression, base, apos, lp, inner, rp)
		case token.KwInside:
			kw := NewLeaf(p.next())
			set := p.parseBraceExpr()
			base = NewBranch(KindInsideExpression, base, kw, set)
		case token.KwMatches:
			kw := NewLeaf(p.next())
			pattern := p.parseUnary()
			base = NewBranch(KindBinaryExpression, base, kw, pattern)
		default:
			return base
		}
	}
}

func (p *Parser) parseSelect(base *Node) *Node {
	lbracket := NewLeaf(p.next())
	first := p.parseExpr(0)
	switch p.peek().Kind {
	case token.Colon:
		colon := NewLeaf(p.next())
		second := p.parseExpr(0)
		rbracket := p.want(token.RBracket)
		return NewBranch(KindRangeSelectExpression, base, lbracket, first, colon, second, rbracket)
	case token.PlusColon, token.MinusColon:
		op := p.next()
		width := p.parseExpr(0)
		rbracket := p.want(token.RBracket)
		return NewBranch(KindRangeSelectExpression, base, lbracket, first, NewLeaf(op), width, rbracket)
	default:
		rbracket := p.want(token.RBracket)
		return NewBranch(KindElementSelectExpression, base, lbracket, first, rbracket)
	}
}

func (p *Parser) parseArgumentList() *Node {
	lparen := NewLeaf(p.next())
	args := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RParen) },
		func(pp *Parser) bool { return pp.got(token.RParen) },
		func(pp *Parser) *Node { return pp.parseExpr(0) },
	)
	children := []*Node{lparen}
	children = append(children, args...)
	rparen := p.want(token.RParen)
	children = append(children, rparen)
	return NewBranch(KindArgumentList, children...)
}

func (p *Parser) parsePrimary() *Node {
	switch p.peek().Kind {
	case token.LParen:
		lp := NewLeaf(p.next())
		inner := p.parseExpr(0)
		rp := p.want(token.RParen)
		return NewBranch(KindParenExpression, lp, inner, rp)
	case token.LBrace:
		return p.parseStreamingOrBraceExpr()
	case token.Apostrophe:
		apos := NewLeaf(p.next())
		brace := p.parseBraceExpr()
		return NewBranch(KindAssignmentPatternExpression, apos, brace)
	case token.KwTagged:
		kw := NewLeaf(p.next())
		tag := p.want(token.Identifier)
		children := []*Node{kw, tag}
		if !p.atExpressionBoundary() {
			children = append(children, p.parseUnary())
		}
		return NewBranch(KindTaggedExpression, children...)
	case token.Identifier, token.SystemIdentifier:
		if p.peek().Text == "$root" {
			return NewBranch(KindRootName, NewLeaf(p.next()))
		}
		return NewBranch(KindIdentifierName, NewLeaf(p.next()))
	case token.IntLiteral, token.RealLiteral, token.StringLiteral, token.TimeLiteral:
		return NewBranch(KindLiteralExpression, NewLeaf(p.next()))
	case token.KwLogic, token.KwBit, token.KwReg, token.KwWire, token.KwInt, token.KwInteger,
		token.KwShortint, token.KwLongint, token.KwByte, token.KwReal, token.KwShortreal,
		token.KwTime, token.KwString:
		// A builtin type keyword used as the target of a cast expression,
		// e.g. int'(x); parsePostfix's Apostrophe case wraps it accordingly.
		return NewBranch(KindDataTypeExpression, NewLeaf(p.next()))
	default:
		loc := p.peek().Range.Start
		p.diags.Report(diag.ExpectedExpression, diag.Error, source.Range{Start: loc, End: loc})
		return Missing(loc, diag.ExpectedExpression)
	}
}

// atExpressionBoundary reports whether the current token can only end an
// enclosing construct, never begin an expression — used by `tagged NAME` to
// tell an argument-less tag apart from one carrying a value.
func (p *Parser) atExpressionBoundary() bool {
	return p.gotOneOf(token.Semicolon, token.Comma, token.RParen, token.RBrace, token.RBracket, token.Colon, token.EOF)
}

// parseStreamingOrBraceExpr disambiguates the streaming concatenation
// operator (`{<<{...}}`/`{>>{...}}`, optionally sized: `{<<4{...}}`) from an
// ordinary brace expression, which needs one token of lookahead past `{` to
// see the shift operator parseBraceExpr's own lookahead never inspects.
func (p *Parser) parseStreamingOrBraceExpr() *Node {
	lbrace := NewLeaf(p.next()) // consumes '{'
	if !p.gotOneOf(token.ShiftLeft, token.ShiftRight) {
		return p.finishBraceExpr(lbrace)
	}

	dir := NewLeaf(p.next())
	children := []*Node{lbrace, dir}
	if !p.got(token.LBrace) {
		children = append(children, p.parseExpr(0))
	}
	children = append(children, p.parseBraceExpr())
	children = append(children, p.want(token.RBrace))
	return NewBranch(KindStreamingExpression, children...)
}

// parseBraceExpr disambiguates `{a, b, c}` (concatenation) from `{N{a}}`
// (replication) by speculatively parsing a leading expression after the
// opening brace and checking whether a `{` follows it.
func (p *Parser) parseBraceExpr() *Node {
	return p.finishBraceExpr(NewLeaf(p.next()))
}

// finishBraceExpr parses the body of a brace expression whose opening '{'
// has already been consumed as lbrace, shared by parseBraceExpr and
// parseStreamingOrBraceExpr (which needs to inspect the token after '{'
// before deciding whether '{' started a streaming operator).
func (p *Parser) finishBraceExpr(lbrace *Node) *Node {
	if node, ok := p.Speculate(func() (*Node, bool) {
		count := p.parseExpr(0)
		if !p.got(token.LBrace) {
			return nil, false
		}
		inner := p.parseBraceExpr()
		return NewBranch(KindReplicationExpression, lbrace, count, inner), true
	}); ok {
		rbrace := p.want(token.RBrace)
		node.Children = append(node.Children, rbrace)
		return node
	}

	elems := ParseSeparatedList(p, token.Comma,
		func(pp *Parser) bool { return !pp.got(token.RBrace) },
		func(pp *Parser) bool { return pp.got(token.RBrace) },
		func(pp *Parser) *Node { return pp.parseExpr(0) },
	)
	children := []*Node{lbrace}
	children = append(children, elems...)
	children = append(children, p.want(token.RBrace))
	return NewBranch(KindConcatenationExpression, children...)
}
