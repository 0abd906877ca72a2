package binder

import (
	"math/big"
	"strings"

	"svcore/diag"
	"svcore/eval"
	"svcore/source"
	"svcore/symbols"
	"svcore/syntax"
	"svcore/token"
)

// BoundExpression is the Expression BindExpression produces. It carries a
// folded constant value when one could be computed, whether the expression
// names an assignable location, and the resolved symbol behind an
// identifier (symbols.NoHandle for everything else).
type BoundExpression struct {
	rng      source.Range
	value    eval.ConstantValue
	constant bool
	lvalue   bool
	symbol   symbols.Handle
}

func (b *BoundExpression) Range() source.Range              { return b.rng }
func (b *BoundExpression) IsLValue() bool                    { return b.lvalue }
func (b *BoundExpression) ConstantValue() eval.ConstantValue { return b.value }
func (b *BoundExpression) IsConstant() bool                  { return b.constant }

// Symbol returns the symbol an identifier expression resolved to, or
// symbols.NoHandle for every other expression kind.
func (b *BoundExpression) Symbol() symbols.Handle { return b.symbol }

// BindExpression binds a parsed expression tree against c.Scope, folding
// constants along the way, so the require*/eval* checks in checks.go can
// operate on the result exactly as they would on any other Expression.
// Node kinds it doesn't understand (selects, concatenations, casts, ...)
// bind to a non-constant, non-lvalue placeholder rather than panicking —
// those forms don't yet participate in constant folding.
func (c Context) BindExpression(n *syntax.Node) *BoundExpression {
	if n == nil {
		return &BoundExpression{symbol: symbols.NoHandle}
	}
	if c.Eval != nil && !c.Eval.Step() {
		return &BoundExpression{rng: n.Range(), value: eval.IntConstant(eval.BadValue()), constant: true, symbol: symbols.NoHandle}
	}
	switch n.Kind {
	case syntax.KindParenExpression:
		inner := c.BindExpression(n.Children[1])
		return &BoundExpression{
			rng:      n.Range(),
			value:    inner.value,
			constant: inner.constant,
			lvalue:   inner.lvalue,
			symbol:   inner.symbol,
		}
	case syntax.KindLiteralExpression:
		return c.bindLiteral(n)
	case syntax.KindIdentifierName:
		return c.bindIdentifier(n)
	case syntax.KindUnaryExpression:
		return c.bindUnary(n)
	case syntax.KindBinaryExpression:
		return c.bindBinary(n)
	case syntax.KindConditionalExpression:
		return c.bindConditional(n)
	case syntax.KindMemberAccessExpression:
		return c.bindMemberAccess(n)
	case syntax.KindInvocationExpression:
		return c.bindInvocation(n)
	default:
		return &BoundExpression{rng: n.Range(), symbol: symbols.NoHandle}
	}
}

func (c Context) bindLiteral(n *syntax.Node) *BoundExpression {
	tok := n.Children[0].Token
	b := &BoundExpression{rng: n.Range(), symbol: symbols.NoHandle}
	if tok.Kind == token.IntLiteral {
		b.value = eval.IntConstant(parseIntLiteral(tok))
		b.constant = true
	}
	// Real/string/time literals bind but never fold to an integer constant
	// value; nothing this module checks needs them to.
	return b
}

func (c Context) bindIdentifier(n *syntax.Node) *BoundExpression {
	tok := n.Children[0].Token
	rng := n.Range()
	// A system identifier ($display, $bits, ...) never resolves against a
	// user scope; it's bound only as the callee of an invocation.
	if tok.Kind == token.SystemIdentifier {
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	if c.Eval != nil {
		if v, ok := c.Eval.Local(tok.Text); ok {
			return &BoundExpression{rng: rng, value: v, constant: true, symbol: symbols.NoHandle}
		}
	}
	if c.Scope == nil {
		c.addDiag(diag.UnknownIdentifier, rng, tok.Text)
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	h, ok := symbols.LookupUnqualifiedFrom(c.Scope, tok.Text, c.Diags, rng)
	if !ok {
		c.addDiag(diag.UnknownIdentifier, rng, tok.Text)
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	return c.bindResolvedIdentifier(rng, h)
}

// bindMemberAccess resolves `base.member`: base is bound first (folding and
// diagnosing it exactly as any other sub-expression), then member is looked
// up directly in whatever Scope base's resolved symbol owns — a package,
// interface, module, or modport. A base that isn't scope-bearing (a plain
// variable, say) can't have members resolved this way and binds to a
// placeholder without reporting a second diagnostic on top of whatever
// binding base already reported.
func (c Context) bindMemberAccess(n *syntax.Node) *BoundExpression {
	base := c.BindExpression(n.Children[0])
	nameTok := n.Children[2].Token
	rng := n.Range()
	if base.symbol == symbols.NoHandle || c.Scope == nil {
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	sc := symbols.ScopeOf(c.Scope.Table(), base.symbol)
	if sc == nil {
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	h, ok := sc.Find(nameTok.Text)
	if !ok {
		c.addDiag(diag.NotAMember, rng, nameTok.Text)
		return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
	}
	return c.bindResolvedIdentifier(rng, h)
}

// bindInvocation binds a function/task/system-call invocation: the callee,
// then each argument in order. A call frame is pushed before the arguments
// are bound and popped once they are, so a constant-function argument that
// happens to share a name with one of the callee's formal arguments resolves
// to the value bound for that frame rather than whatever same-named symbol
// is visible in the enclosing scope — bindIdentifier checks the active
// frame's locals before falling back to ordinary scope lookup. The
// invocation's own result is never folded to a constant; this module
// doesn't evaluate a called function's body.
func (c Context) bindInvocation(n *syntax.Node) *BoundExpression {
	rng := n.Range()
	callee := c.BindExpression(n.Children[0])
	if c.Eval != nil {
		c.Eval.PushFrame()
		defer c.Eval.PopFrame()
	}
	var sub *symbols.SubroutineSymbol
	if callee.symbol != symbols.NoHandle && c.Scope != nil {
		sub, _ = c.Scope.Table().Get(callee.symbol).(*symbols.SubroutineSymbol)
	}
	argIndex := 0
	for _, ch := range n.Children[1].Children {
		if ch.Kind == syntax.KindToken {
			continue // '(' ',' ')'
		}
		arg := c.BindExpression(ch)
		if sub != nil && argIndex < len(sub.Arguments) && c.Eval != nil && arg.IsConstant() {
			if formal, ok := c.Scope.Table().Get(sub.Arguments[argIndex]).(*symbols.FormalArgumentSymbol); ok {
				c.Eval.SetLocal(formal.Name, arg.ConstantValue())
			}
		}
		argIndex++
	}
	return &BoundExpression{rng: rng, symbol: symbols.NoHandle}
}

func (c Context) bindResolvedIdentifier(rng source.Range, h symbols.Handle) *BoundExpression {
	b := &BoundExpression{rng: rng, symbol: h}
	switch s := c.Scope.Table().Get(h).(type) {
	case *symbols.ParameterSymbol:
		c.bindParameterValue(b, s)
	case *symbols.TransparentMemberSymbol:
		wrapped := c.bindResolvedIdentifier(rng, s.Wrapped)
		b.value, b.constant = wrapped.value, wrapped.constant
	case *symbols.VariableSymbol:
		b.lvalue = !s.IsConst
	case *symbols.NetSymbol:
		b.lvalue = true
	case *symbols.PortSymbol:
		b.lvalue = s.Direction != symbols.DirInput
	case *symbols.FormalArgumentSymbol:
		b.lvalue = s.Direction != symbols.DirInput
	case *symbols.GenvarSymbol:
		b.lvalue = true
	case *symbols.EnumValueSymbol:
		b.value, b.constant = s.Value, true
	}
	return b
}

// bindParameterValue resolves s's value from its cache, or by binding its
// Override (if an instantiation supplied one) or Initializer as a constant
// expression and caching the result, mirroring getValue() ==
// eval(override ?? initializer).
func (c Context) bindParameterValue(b *BoundExpression, s *symbols.ParameterSymbol) {
	if v, ok := s.CachedValue(); ok {
		b.value, b.constant = v, true
		return
	}
	initNode, _ := s.Initializer.(*syntax.Node)
	if override, ok := s.Override.(*syntax.Node); ok && override != nil {
		initNode = override
	}
	if initNode == nil {
		return
	}
	bound := c.Reset(Constant).BindExpression(initNode)
	if !bound.IsConstant() {
		return
	}
	s.SetValue(bound.ConstantValue())
	b.value, b.constant = bound.ConstantValue(), true
}

func (c Context) bindUnary(n *syntax.Node) *BoundExpression {
	opTok := n.Children[0].Token
	operand := c.BindExpression(n.Children[1])
	b := &BoundExpression{rng: n.Range(), symbol: symbols.NoHandle}
	if !operand.IsConstant() || !operand.ConstantValue().IsInt {
		return b
	}
	v := operand.ConstantValue().Int
	switch opTok.Kind {
	case token.Plus:
		b.value, b.constant = eval.IntConstant(v), true
	case token.Minus:
		b.value, b.constant = eval.IntConstant(eval.Sub(eval.FromInt64(0, v.Width), v)), true
	case token.Bang:
		if v.HasUnknown() {
			return b
		}
		b.value, b.constant = eval.IntConstant(boolInt4(isZero(v))), true
	case token.Tilde:
		b.value, b.constant = eval.IntConstant(bitwiseNot(v)), true
	}
	// Reduction operators and ++/-- don't fold here; nothing this module's
	// checks exercise needs them to.
	return b
}

func (c Context) bindBinary(n *syntax.Node) *BoundExpression {
	left := c.BindExpression(n.Children[0])
	opTok := n.Children[1].Token
	right := c.BindExpression(n.Children[2])
	b := &BoundExpression{rng: n.Range(), symbol: symbols.NoHandle}
	if !left.IsConstant() || !right.IsConstant() {
		return b
	}
	lv, rv := left.ConstantValue(), right.ConstantValue()
	if !lv.IsInt || !rv.IsInt {
		return b
	}
	switch opTok.Kind {
	case token.Plus:
		b.value, b.constant = eval.IntConstant(eval.Add(lv.Int, rv.Int)), true
	case token.Minus:
		b.value, b.constant = eval.IntConstant(eval.Sub(lv.Int, rv.Int)), true
	case token.Star:
		b.value, b.constant = eval.IntConstant(eval.Mul(lv.Int, rv.Int)), true
	case token.Slash:
		b.value, b.constant = eval.IntConstant(eval.Div(lv.Int, rv.Int)), true
	case token.Percent:
		b.value, b.constant = eval.IntConstant(eval.Mod(lv.Int, rv.Int)), true
	case token.Amp:
		b.value, b.constant = eval.IntConstant(eval.And(lv.Int, rv.Int)), true
	case token.Pipe:
		b.value, b.constant = eval.IntConstant(eval.Or(lv.Int, rv.Int)), true
	case token.Caret:
		b.value, b.constant = eval.IntConstant(eval.Xor(lv.Int, rv.Int)), true
	case token.CaseEqual:
		b.value, b.constant = eval.IntConstant(boolInt4(eval.CaseEquals(lv.Int, rv.Int))), true
	case token.CaseNotEqual:
		b.value, b.constant = eval.IntConstant(boolInt4(!eval.CaseEquals(lv.Int, rv.Int))), true
	case token.Equal:
		b.value, b.constant = bindLogicalEquality(lv.Int, rv.Int, false)
	case token.NotEqual:
		b.value, b.constant = bindLogicalEquality(lv.Int, rv.Int, true)
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		b.value, b.constant = bindComparison(opTok.Kind, lv.Int, rv.Int)
	case token.LogicalAnd, token.LogicalOr:
		isAnd := opTok.Kind == token.LogicalAnd
		l1, r1 := new(big.Int).AndNot(&lv.Int.Bits, &lv.Int.Unknown).Sign() != 0, new(big.Int).AndNot(&rv.Int.Bits, &rv.Int.Unknown).Sign() != 0
		l0, r0 := !l1 && lv.Int.Unknown.Sign() == 0, !r1 && rv.Int.Unknown.Sign() == 0
		switch {
		case isAnd && (l0 || r0), !isAnd && (l1 || r1):
			b.value, b.constant = eval.IntConstant(boolInt4(!isAnd)), true
		case (l0 || l1) && (r0 || r1):
			b.value, b.constant = eval.IntConstant(boolInt4(isAnd)), true
		default:
			b.value, b.constant = eval.IntConstant(unknownBit()), true
		}
	}
	// Shift, power, and wildcard-equality operators don't fold here yet.
	return b
}

func bindLogicalEquality(a, bv eval.Int4, negate bool) (eval.ConstantValue, bool) {
	eq, ok := eval.LogicalEquals(a, bv)
	if !ok {
		return eval.IntConstant(unknownBit()), true
	}
	if negate {
		eq = !eq
	}
	return eval.IntConstant(boolInt4(eq)), true
}

func bindComparison(op token.Kind, a, bv eval.Int4) (eval.ConstantValue, bool) {
	if a.HasUnknown() || bv.HasUnknown() {
		return eval.IntConstant(unknownBit()), true
	}
	cmp := signedValue(a).Cmp(signedValue(bv))
	var result bool
	switch op {
	case token.Less:
		result = cmp < 0
	case token.LessEqual:
		result = cmp <= 0
	case token.Greater:
		result = cmp > 0
	case token.GreaterEqual:
		result = cmp >= 0
	}
	return eval.IntConstant(boolInt4(result)), true
}

func (c Context) bindConditional(n *syntax.Node) *BoundExpression {
	cond := c.BindExpression(n.Children[0])
	whenTrue := c.BindExpression(n.Children[2])
	whenFalse := c.BindExpression(n.Children[4])
	b := &BoundExpression{rng: n.Range(), symbol: symbols.NoHandle}
	if !cond.IsConstant() || !cond.ConstantValue().IsInt {
		return b
	}
	cv := cond.ConstantValue().Int
	if cv.HasUnknown() {
		return b
	}
	if !isZero(cv) {
		b.value, b.constant = whenTrue.ConstantValue(), whenTrue.IsConstant()
	} else {
		b.value, b.constant = whenFalse.ConstantValue(), whenFalse.IsConstant()
	}
	return b
}

// parseIntLiteral re-derives a four-valued eval.Int4 from an IntLiteral
// token's exact source text, the way token.Literal's doc comment says the
// binder should — Base/HasSize/Size only record what the lexer already
// split off (the width, sign, and radix letter), not a parsed value.
func parseIntLiteral(tok token.Token) eval.Int4 {
	lit := tok.Literal
	if !lit.HasSize {
		return decimalDigitsToInt4(lit.Text, 32, false)
	}
	idx := strings.IndexByte(lit.Text, '\'')
	if idx < 0 {
		return eval.BadValue()
	}
	rest := lit.Text[idx+1:]
	signed := false
	if len(rest) > 0 && (rest[0] == 's' || rest[0] == 'S') {
		signed = true
		rest = rest[1:]
	}
	if len(rest) > 0 {
		rest = rest[1:] // radix letter; lit.Base already records which one
	}
	width := lit.Size
	if width <= 0 {
		width = 32
	}
	switch lit.Base {
	case 2:
		return basedDigitsToInt4(rest, width, signed, 1)
	case 8:
		return basedDigitsToInt4(rest, width, signed, 3)
	case 16:
		return basedDigitsToInt4(rest, width, signed, 4)
	default:
		return decimalDigitsToInt4(rest, width, signed)
	}
}

func decimalDigitsToInt4(digits string, width int, signed bool) eval.Int4 {
	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return eval.BadValue()
	}
	if isAllOneOf(digits, "xX") || isAllOneOf(digits, "zZ") {
		return unknownInt4(width, signed)
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return eval.BadValue()
	}
	return fromBigInt(v, width, signed)
}

// basedDigitsToInt4 decodes a binary/octal/hex digit string, right to left,
// bitsPerDigit bits at a time, treating x/X/z/Z/? digits as fully unknown —
// SystemVerilog allows per-digit unknowns in based literals, unlike decimal
// ones, which only allow a single whole-value x or z.
func basedDigitsToInt4(digits string, width int, signed bool, bitsPerDigit int) eval.Int4 {
	var bits, unknown big.Int
	pos := 0
	for i := len(digits) - 1; i >= 0; i-- {
		ch := digits[i]
		if ch == '_' {
			continue
		}
		if isFourValueDigit(ch) {
			for b := 0; b < bitsPerDigit; b++ {
				if pos+b < width {
					unknown.SetBit(&unknown, pos+b, 1)
				}
			}
		} else {
			v := hexDigitValue(ch)
			for b := 0; b < bitsPerDigit; b++ {
				if pos+b < width && (v>>uint(b))&1 == 1 {
					bits.SetBit(&bits, pos+b, 1)
				}
			}
		}
		pos += bitsPerDigit
	}
	return eval.Int4{Width: width, Signed: signed, Bits: bits, Unknown: unknown}
}

func fromBigInt(v *big.Int, width int, signed bool) eval.Int4 {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
	mask.Sub(mask, big.NewInt(1))
	var r eval.Int4
	r.Width = width
	r.Signed = signed
	r.Bits.And(v, mask)
	return r
}

func unknownInt4(width int, signed bool) eval.Int4 {
	full := new(big.Int).Lsh(big.NewInt(1), uint(width))
	full.Sub(full, big.NewInt(1))
	var r eval.Int4
	r.Width = width
	r.Signed = signed
	r.Unknown.Set(full)
	return r
}

func bitwiseNot(a eval.Int4) eval.Int4 {
	full := new(big.Int).Lsh(big.NewInt(1), uint(a.Width))
	full.Sub(full, big.NewInt(1))
	var ones eval.Int4
	ones.Width = a.Width
	ones.Bits.Set(full)
	return eval.Xor(a, ones)
}

func signedValue(a eval.Int4) *big.Int {
	v := new(big.Int).Set(&a.Bits)
	if a.Signed && a.Width > 0 && a.Bits.Bit(a.Width-1) == 1 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(a.Width))
		v.Sub(v, full)
	}
	return v
}

func boolInt4(v bool) eval.Int4 {
	if v {
		return eval.FromInt64(1, 1)
	}
	return eval.FromInt64(0, 1)
}

func unknownBit() eval.Int4 {
	var r eval.Int4
	r.Width = 1
	r.Unknown.SetBit(&r.Unknown, 0, 1)
	return r
}

func isZero(a eval.Int4) bool {
	return a.Bits.Sign() == 0 && a.Unknown.Sign() == 0
}

func isAllOneOf(s, set string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(set, rune(s[i])) {
			return false
		}
	}
	return true
}

func hexDigitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return 0
	}
}

func isFourValueDigit(ch byte) bool {
	return ch == 'x' || ch == 'X' || ch == 'z' || ch == 'Z' || ch == '?'
}
