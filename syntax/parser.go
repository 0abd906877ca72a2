package syntax

import (
	"svcore/diag"
	"svcore/preprocess"
	"svcore/source"
	"svcore/token"
)

// tokenSource is the minimal interface Parser needs from a preprocessed
// stream; satisfied by *preprocess.Preprocessor. Speculative lookahead needs
// no second source: it rewinds within Parser's own token buffer.
type tokenSource interface {
	Next() token.Token
}

// Parser drives a tokenSource through the grammar, following the teacher's
// combinator style (bootstrap/syntax/parser.go: got/want/assert/reject) but
// generalized from single-token LL(1) dispatch to Pratt expression parsing
// and a statement dispatch table.
type Parser struct {
	src   tokenSource
	diags *diag.Bag

	buf     []token.Token // tokens already pulled from src, for rewind
	pos     int           // index into buf of the next token to consume
	mark    int           // always -1; speculation uses checkpoint/rewind instead

	speculativeDepth int
}

// NewParser creates a Parser reading from pp and reporting into diags.
func NewParser(pp *preprocess.Preprocessor, diags *diag.Bag) *Parser {
	return &Parser{src: pp, diags: diags, mark: -1}
}

func (p *Parser) fill() {
	if p.pos >= len(p.buf) {
		p.buf = append(p.buf, p.src.Next())
	}
}

func (p *Parser) peek() token.Token {
	p.fill()
	return p.buf[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	for len(p.buf) <= p.pos+n {
		p.buf = append(p.buf, p.src.Next())
	}
	return p.buf[p.pos+n]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	p.pos++
	return t
}

// checkpoint returns a rewind position for speculative parsing.
func (p *Parser) checkpoint() int {
	return p.pos
}

// rewind resets the parser to a prior checkpoint. Because every token ever
// pulled from src stays in buf, rewinding never re-invokes the
// preprocessor.
func (p *Parser) rewind(cp int) {
	p.pos = cp
}

// got reports whether the next token has kind k, without consuming it.
func (p *Parser) got(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) gotOneOf(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// want consumes and returns a leaf for the next token if it has kind k;
// otherwise it synthesizes a Missing node and reports ExpectedToken.
func (p *Parser) want(k token.Kind) *Node {
	if p.got(k) {
		return NewLeaf(p.next())
	}
	loc := p.peek().Range.Start
	p.diags.Report(diag.ExpectedToken, diag.Error, source.Range{Start: loc, End: loc}, k)
	return Missing(loc, diag.ExpectedToken)
}

// skipToRecoveryPoint consumes tokens, wrapping them as KindSkipped, until
// isSync reports true or EOF is reached. Used by the separated-list driver
// and statement parsing to recover after an unexpected token.
func (p *Parser) skipToRecoveryPoint(isSync func(token.Kind) bool) *Node {
	var skipped []*Node
	for !isSync(p.peek().Kind) && p.peek().Kind != token.EOF {
		skipped = append(skipped, NewLeaf(p.next()))
	}
	if len(skipped) == 0 {
		return nil
	}
	n := NewBranch(KindSkipped, skipped...)
	n.Diagnostic = diag.ExpectedToken
	return n
}

// Speculate runs fn starting from the current position; if fn returns
// false, the parser rewinds as though fn never ran. Bounded to two nested
// attempts, matching the module's rule that disambiguation lookahead is
// cheap and shallow, never unbounded backtracking.
func (p *Parser) Speculate(fn func() (*Node, bool)) (*Node, bool) {
	if p.speculativeDepth >= 2 {
		return nil, false
	}
	p.speculativeDepth++
	defer func() { p.speculativeDepth-- }()

	cp := p.checkpoint()
	outer := p.diags
	p.diags = diag.NewBag(nil)
	node, ok := fn()
	inner := p.diags
	p.diags = outer
	if !ok {
		p.rewind(cp)
		return nil, false
	}
	for _, d := range inner.All() {
		outer.Add(d)
	}
	return node, true
}

// ParseSeparatedList is the generic driver every comma/semicolon separated
// construct in the grammar goes through: port lists, parameter lists, case
// items, concatenation elements. canStart reports whether the current token
// could begin another element; isEnd reports whether the list is over;
// parseElement produces one element (or a Missing/Skipped recovery node).
func ParseSeparatedList[T any](
	p *Parser,
	delim token.Kind,
	canStart func(*Parser) bool,
	isEnd func(*Parser) bool,
	parseElement func(*Parser) T,
) []T {
	var items []T
	for !isEnd(p) && p.peek().Kind != token.EOF {
		if !canStart(p) {
			p.skipToRecoveryPoint(func(k token.Kind) bool {
				return k == delim || isEnd(p)
			})
			if isEnd(p) || p.peek().Kind == token.EOF {
				break
			}
		}
		items = append(items, parseElement(p))
		if p.got(delim) {
			p.next()
			continue
		}
		if !isEnd(p) {
			break
		}
	}
	return items
}
