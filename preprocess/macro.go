package preprocess

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/dlclark/regexp2"

	"svcore/diag"
	"svcore/source"
	"svcore/token"
)

// Macro is one `define'd name: either object-like (Params == nil) or
// function-like (Params non-nil, possibly empty for `FOO()`).
type Macro struct {
	Name   string
	Params []string
	Body   []token.Token
}

// MacroIndex is an Aho-Corasick prefilter over the set of currently defined
// macro names. Next consults it before probing the macro table on every
// identifier, so an identifier that cannot possibly be (or contain, since
// the matcher only tests containment) a macro name never pays for the map
// lookup. Modeled on the multi-pattern prefilter used to screen rule
// keywords before a full regex match in the pack's prefilter.Prefilter.
type MacroIndex struct {
	matcher *ahocorasick.Matcher
	names   []string
}

// NewMacroIndex builds a MacroIndex from the given macro names.
func NewMacroIndex(names []string) *MacroIndex {
	return &MacroIndex{matcher: ahocorasick.NewStringMatcher(names), names: names}
}

// MayContainMacro reports whether line might reference one of the indexed
// macro names. False negatives are impossible; false positives are allowed
// and simply fall through to full substring handling.
func (mi *MacroIndex) MayContainMacro(line []byte) bool {
	if len(mi.names) == 0 {
		return false
	}
	return len(mi.matcher.Match(line)) > 0
}

// pasteRegexp recognizes token-paste (``` `` ```) operators inside a macro
// body, capturing the operand text on each side so the expander can splice
// them into one token. Built with regexp2, whose named capture groups
// (left and right) expandPastes reads back by name.
var pasteRegexp = regexp2.MustCompile("(?<left>[A-Za-z0-9_]+)`{2}(?<right>[A-Za-z0-9_]+)", regexp2.None)

// expandPastes rewrites `` left``right `` occurrences in raw macro-body text
// into a single pasted identifier, returning the rewritten text. Argument
// substitution happens before this runs, so by the time expandPastes sees
// the text, both operands are already concrete.
func expandPastes(text string) (string, error) {
	m, err := pasteRegexp.FindStringMatch(text)
	if err != nil {
		return text, err
	}
	if m == nil {
		return text, nil
	}
	var b strings.Builder
	last := 0
	for m != nil {
		left := m.GroupByName("left")
		right := m.GroupByName("right")
		if left == nil || right == nil {
			break
		}
		b.WriteString(text[last:m.Index])
		b.WriteString(left.String())
		b.WriteString(right.String())
		last = m.Index + m.Length
		m, err = pasteRegexp.FindNextMatch(m)
		if err != nil {
			return text, err
		}
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// Preprocessor drives a Lexer for one buffer, folding trivia into the
// following token's Leading slice, intercepting backtick directives, and
// substituting macro invocations by splicing expansion buffers registered
// with the Manager.
type Preprocessor struct {
	mgr     *source.Manager
	lex     *Lexer
	diags   *diag.Bag
	macros  map[string]*Macro
	index   *MacroIndex
	condStack []condFrame
	pending []token.Token
}

type condFrame struct {
	active bool // whether the branch currently being scanned should emit tokens
	taken  bool // whether some branch in this `if chain has already been taken
}

// NewPreprocessor creates a Preprocessor over buffer id.
func NewPreprocessor(mgr *source.Manager, id source.BufferID, diags *diag.Bag) *Preprocessor {
	return &Preprocessor{
		mgr:    mgr,
		lex:    NewLexer(mgr, id),
		diags:  diags,
		macros: make(map[string]*Macro),
		index:  NewMacroIndex(nil),
	}
}

// Define registers a predefined macro (e.g. from a `-D` command-line flag
// or a project config's `defines` table) as though it had appeared in a
// `` `define `` directive with no parameters.
func (p *Preprocessor) Define(name, value string) {
	p.macros[name] = &Macro{Name: name, Body: []token.Token{{Kind: token.Identifier, Text: value}}}
	p.rebuildIndex()
}

func (p *Preprocessor) rebuildIndex() {
	names := make([]string, 0, len(p.macros))
	for n := range p.macros {
		names = append(names, n)
	}
	p.index = NewMacroIndex(names)
}

func (p *Preprocessor) suppressed() bool {
	for _, f := range p.condStack {
		if !f.active {
			return true
		}
	}
	return false
}

// Next returns the next significant token, with leading trivia collected
// and any macro invocation already expanded.
func (p *Preprocessor) Next() token.Token {
	var leading []token.Trivia
	for {
		if len(p.pending) > 0 {
			t := p.pending[0]
			p.pending = p.pending[1:]
			t.Leading = append(leading, t.Leading...)
			return t
		}

		raw := p.lex.NextRaw()

		if raw.Kind == token.DirectiveText {
			if p.handleDirective(raw) {
				continue
			}
			if m, ok := p.macros[strings.TrimPrefix(raw.Text, "`")]; ok && !p.suppressed() {
				p.expandInvocation(m)
				continue
			}
		}

		if token.IsTrivia(raw.Kind) {
			leading = append(leading, token.Trivia{Kind: raw.Kind, Range: raw.Range})
			continue
		}

		if p.suppressed() {
			if raw.Kind == token.EOF {
				tok := raw
				tok.Leading = leading
				return tok
			}
			leading = nil
			continue
		}

		if raw.Kind == token.Identifier && p.index.MayContainMacro([]byte(raw.Text)) {
			if m, ok := p.macros[raw.Text]; ok {
				p.expandInvocation(m)
				continue
			}
		}

		raw.Leading = leading
		return raw
	}
}

// handleDirective processes a backtick directive already scanned as a
// DirectiveText token (its Text is the directive name, without the
// backtick). It returns true if the directive was consumed and scanning
// should continue, false if raw should be treated as an ordinary token
// (unrecognized directive).
func (p *Preprocessor) handleDirective(raw token.Token) bool {
	name := strings.TrimPrefix(raw.Text, "`")
	switch name {
	case "define":
		p.parseDefine()
		return true
	case "undef":
		p.skipWhitespace()
		ident := p.lex.NextRaw()
		delete(p.macros, ident.Text)
		p.rebuildIndex()
		return true
	case "ifdef", "ifndef":
		p.skipWhitespace()
		ident := p.lex.NextRaw()
		_, defined := p.macros[ident.Text]
		if name == "ifndef" {
			defined = !defined
		}
		p.condStack = append(p.condStack, condFrame{active: defined && !p.suppressed(), taken: defined})
		return true
	case "elsif":
		p.skipWhitespace()
		ident := p.lex.NextRaw()
		if len(p.condStack) == 0 {
			p.diags.Report(diag.UnterminatedConditional, diag.Error, raw.Range)
			return true
		}
		top := &p.condStack[len(p.condStack)-1]
		_, defined := p.macros[ident.Text]
		top.active = !top.taken && defined
		if defined {
			top.taken = true
		}
		return true
	case "else":
		if len(p.condStack) == 0 {
			p.diags.Report(diag.UnterminatedConditional, diag.Error, raw.Range)
			return true
		}
		top := &p.condStack[len(p.condStack)-1]
		top.active = !top.taken
		top.taken = true
		return true
	case "endif":
		if len(p.condStack) == 0 {
			p.diags.Report(diag.UnterminatedConditional, diag.Error, raw.Range)
			return true
		}
		p.condStack = p.condStack[:len(p.condStack)-1]
		return true
	case "include":
		p.parseInclude()
		return true
	default:
		return false
	}
}

func (p *Preprocessor) skipWhitespace() {
	for {
		t := p.lex.NextRaw()
		if !token.IsTrivia(t.Kind) {
			p.lex.pos = t.Range.Start.Offset
			return
		}
	}
}

func (p *Preprocessor) parseDefine() {
	p.skipWhitespace()
	nameTok := p.lex.NextRaw()
	m := &Macro{Name: nameTok.Text}

	if p.lex.peek() == '(' {
		p.lex.eat()
		for p.lex.peek() != ')' && !p.lex.atEnd() {
			p.skipWhitespaceInline()
			param := p.lex.NextRaw()
			if param.Kind == token.Identifier {
				m.Params = append(m.Params, param.Text)
			}
			p.skipWhitespaceInline()
			if p.lex.peek() == ',' {
				p.lex.eat()
			}
		}
		if p.lex.peek() == ')' {
			p.lex.eat()
		}
		if m.Params == nil {
			m.Params = []string{}
		}
	}

	for !p.lex.atEnd() && p.lex.peek() != '\n' {
		if p.lex.peek() == '`' && p.lex.peekAt(1) == '"' {
			m.Body = append(m.Body, p.scanStringify())
			continue
		}
		t := p.lex.NextRaw()
		if t.Kind == token.EOF {
			break
		}
		if !token.IsTrivia(t.Kind) {
			m.Body = append(m.Body, t)
		}
	}

	p.macros[m.Name] = m
	p.rebuildIndex()
}

// stringifyBody marks a Literal as the content of a `` `"..."` `` stringify
// span rather than an ordinary string literal occurring in a macro body.
// Base is otherwise unused by StringLiteral tokens, which makeToken always
// leaves at its zero value, so -1 never collides with a real literal.
const stringifyBody = -1

// scanStringify consumes a `` `"..."` `` span starting at the current
// position and records its unsubstituted inner text, so expandInvocation
// can later splice in the actual argument text before quoting it.
func (p *Preprocessor) scanStringify() token.Token {
	p.lex.mark()
	p.lex.eat() // `
	p.lex.eat() // "
	innerStart := p.lex.pos
	for !p.lex.atEnd() && !(p.lex.peek() == '`' && p.lex.peekAt(1) == '"') {
		p.lex.eat()
	}
	inner := string(p.lex.text[innerStart:p.lex.pos])
	if !p.lex.atEnd() {
		p.lex.eat() // `
		p.lex.eat() // "
	}
	tok := p.lex.makeToken(token.StringLiteral)
	tok.Text = inner
	tok.Literal = token.Literal{Text: inner, Base: stringifyBody}
	return tok
}

func (p *Preprocessor) skipWhitespaceInline() {
	for p.lex.peek() == ' ' || p.lex.peek() == '\t' {
		p.lex.eat()
	}
}

// parseInclude resolves an `` `include "path" `` or `` `include <path> ``
// directive against the Manager's registered search directories, which
// registers the header as a buffer. The header's tokens are not spliced into
// this Preprocessor's output; a resolution failure reports HeaderNotFound.
func (p *Preprocessor) parseInclude() {
	p.skipWhitespaceInline()
	isSystem := p.lex.peek() == '<'
	var closing byte = '"'
	if isSystem {
		closing = '>'
	}
	p.lex.eat()
	start := p.lex.pos
	for !p.lex.atEnd() && p.lex.peek() != closing {
		p.lex.eat()
	}
	path := string(p.lex.text[start:p.lex.pos])
	if !p.lex.atEnd() {
		p.lex.eat()
	}

	if _, err := p.mgr.ReadHeader(path, p.lex.buffer, isSystem); err != nil {
		p.diags.Report(diag.HeaderNotFound, diag.Error, p.lex.span(), path)
	}
}

func (p *Preprocessor) expandInvocation(m *Macro) {
	var args [][]token.Token
	if m.Params != nil {
		p.skipWhitespaceInline()
		if p.lex.peek() == '(' {
			p.lex.eat()
			depth := 1
			var cur []token.Token
			for depth > 0 && !p.lex.atEnd() {
				t := p.lex.NextRaw()
				if token.IsTrivia(t.Kind) {
					continue
				}
				if t.Kind == token.LParen {
					depth++
				} else if t.Kind == token.RParen {
					depth--
					if depth == 0 {
						args = append(args, cur)
						break
					}
				} else if t.Kind == token.Comma && depth == 1 {
					args = append(args, cur)
					cur = nil
					continue
				}
				cur = append(cur, t)
			}
		}
	}

	if m.Params != nil && len(args) != len(m.Params) {
		p.diags.Report(diag.MacroArgumentCountMismatch, diag.Error, p.lex.span(), m.Name, len(m.Params), len(args))
	}

	substituted := make([]token.Token, 0, len(m.Body))
	for _, bt := range m.Body {
		if bt.Kind == token.StringLiteral && bt.Literal.Base == stringifyBody {
			substituted = append(substituted, stringifyToken(bt, m.Params, args))
			continue
		}
		if bt.Kind == token.Identifier {
			if idx := paramIndex(m.Params, bt.Text); idx >= 0 && idx < len(args) {
				substituted = append(substituted, args[idx]...)
				continue
			}
		}
		substituted = append(substituted, bt)
	}

	// Register the substituted tokens under a synthetic expansion buffer so
	// their locations still resolve back to this invocation, then reparse
	// their concatenated text through a fresh Lexer/Preprocessor pair to
	// fold in any token-paste operators.
	var text strings.Builder
	for i, t := range substituted {
		if i > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(t.Text)
	}
	pasted, _ := expandPastes(text.String())

	invocationRange := p.lex.span()
	expID := p.mgr.AssignExpansion("<expansion of `"+m.Name+">", []byte(pasted), invocationRange.Start, source.Range{})

	sub := NewPreprocessor(p.mgr, expID, p.diags)
	sub.macros = p.macros
	sub.index = p.index
	for {
		t := sub.Next()
		if t.Kind == token.EOF {
			break
		}
		p.pending = append(p.pending, t)
	}
}

// stringifyToken renders a stringify span into a StringLiteral token,
// substituting any formal parameter name it contains with the invocation's
// actual argument text before quoting, per the `" `" operator's contract.
func stringifyToken(bt token.Token, params []string, args [][]token.Token) token.Token {
	text := bt.Literal.Text
	for i, name := range params {
		if i >= len(args) {
			continue
		}
		var argText strings.Builder
		for j, at := range args[i] {
			if j > 0 {
				argText.WriteByte(' ')
			}
			argText.WriteString(at.Text)
		}
		text = replaceWord(text, name, argText.String())
	}
	quoted := `"` + text + `"`
	return token.Token{Kind: token.StringLiteral, Range: bt.Range, Text: quoted, Literal: token.Literal{Text: quoted}}
}

// replaceWord substitutes whole-word occurrences of name in text with value,
// leaving identifier-like substrings that merely contain name untouched.
func replaceWord(text, name, value string) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if isIdentStart(text[i]) {
			j := i
			for j < len(text) && isIdentChar(text[j]) {
				j++
			}
			if text[i:j] == name {
				b.WriteString(value)
			} else {
				b.WriteString(text[i:j])
			}
			i = j
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}
