// Package syntax builds the concrete syntax tree: recursive-descent parsing
// with Pratt-style precedence climbing for expressions, a statement
// dispatch table, bounded speculative lookahead for declaration/expression
// disambiguation, and a generic separated-list driver with error recovery.
// Node generalizes the teacher's ASTBranch/ASTLeaf split (src/syntax/ast.go)
// into a single type so every syntax construct, not just a fixed AST
// backbone, can be represented uniformly and re-rendered losslessly.
package syntax

import (
	"svcore/source"
	"svcore/token"
)

// Kind discriminates syntax nodes the way token.Kind discriminates tokens.
type Kind int

const (
	KindToken Kind = iota // leaf wrapping a single token.Token

	KindCompilationUnit
	KindModuleDeclaration
	KindInterfaceDeclaration
	KindPackageDeclaration
	KindPortList
	KindPort
	KindAnsiPort
	KindParameterDeclaration
	KindParameterPortList
	KindDataDeclaration
	KindNetDeclaration
	KindContinuousAssign
	KindModportDeclaration
	KindModportItem
	KindImportDeclaration
	KindGenerateBlock
	KindFunctionDeclaration
	KindTaskDeclaration
	KindFormalArgument

	KindBlockStatement
	KindIfStatement
	KindCaseStatement
	KindCaseItem
	KindForLoopStatement
	KindForeachLoopStatement
	KindWhileStatement
	KindRepeatStatement
	KindForeverStatement
	KindDoWhileStatement
	KindExpressionStatement
	KindAssignStatement
	KindReturnStatement
	KindBreakStatement
	KindContinueStatement
	KindImmediateAssertion
	KindEventControl
	KindTimingControlStatement
	KindDisableStatement
	KindWaitStatement
	KindWaitOrderStatement
	KindForkJoinStatement
	KindRandCaseStatement
	KindRandCaseItem
	KindEmptyStatement
	KindForceStatement
	KindDeassignStatement
	KindReleaseStatement

	KindBinaryExpression
	KindUnaryExpression
	KindPrefixExpression
	KindPostfixExpression
	KindConditionalExpression
	KindParenExpression
	KindElementSelectExpression
	KindRangeSelectExpression
	KindMemberAccessExpression
	KindScopedName
	KindInvocationExpression
	KindArgumentList
	KindConcatenationExpression
	KindReplicationExpression
	KindAssignmentPatternExpression
	KindIdentifierName
	KindLiteralExpression
	KindDataTypeExpression
	KindCastExpression
	KindInsideExpression
	KindTaggedExpression
	KindStreamingExpression
	KindRootName

	KindIntegerType
	KindPackedArrayDimension
	KindUnpackedArrayDimension
	KindQueueDimension
	KindWildcardDimension
	KindRangeDimension

	KindEnumDeclaration
	KindEnumMember
	KindStructDeclaration
	KindStructMember
	KindTypedefDeclaration

	KindSeparatedList
	KindMissing
	KindSkipped
)

// Node is either a leaf wrapping one token.Token (Kind == KindToken) or a
// branch with a Kind and ordered children. Both cases satisfy the same
// type so the parser, the render-to-text pass, and any visitor can treat
// the tree uniformly.
type Node struct {
	Kind     Kind
	Token    token.Token // valid iff Kind == KindToken
	Children []*Node

	// Diagnostic explains a KindMissing/KindSkipped node's presence.
	Diagnostic interface{}
}

// NewLeaf wraps a single token as a Node.
func NewLeaf(t token.Token) *Node {
	return &Node{Kind: KindToken, Token: t}
}

// NewBranch builds a Node of the given kind over children, in order.
func NewBranch(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Missing synthesizes a placeholder for a required token that was not
// found, carrying diag so later rendering/diagnosis can explain the gap.
func Missing(at source.Location, diagnostic interface{}) *Node {
	return &Node{
		Kind:       KindMissing,
		Token:      token.Token{Kind: token.Missing, Range: source.Range{Start: at, End: at}},
		Diagnostic: diagnostic,
	}
}

// Range returns the source range spanned by n, computed from its first and
// last descendant tokens. A Node with no tokens (an empty branch, or a
// KindMissing placeholder, whose Token field is not consulted) returns
// source.NoRange.
func (n *Node) Range() source.Range {
	first := n.firstToken()
	last := n.lastToken()
	if first == nil || last == nil {
		return source.NoRange
	}
	return source.Range{Start: first.Range.Start, End: last.Range.End}
}

func (n *Node) firstToken() *token.Token {
	if n.Kind == KindToken {
		return &n.Token
	}
	for _, c := range n.Children {
		if t := c.firstToken(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Node) lastToken() *token.Token {
	if n.Kind == KindToken {
		return &n.Token
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if t := n.Children[i].lastToken(); t != nil {
			return t
		}
	}
	return nil
}

// Render reproduces the source text n was parsed from, byte for byte: every
// token's leading trivia (whitespace, comments, skipped text) is resolved
// against mgr and emitted ahead of the token's own text, in order. mgr must
// be the same Manager the tokens' Trivia.Range and Token.Range locations
// were recorded against.
func (n *Node) Render(mgr *source.Manager) string {
	var b []byte
	n.render(mgr, &b)
	return string(b)
}

func (n *Node) render(mgr *source.Manager, b *[]byte) {
	if n.Kind == KindToken {
		for _, tr := range n.Token.Leading {
			*b = append(*b, triviaText(mgr, tr)...)
		}
		*b = append(*b, []byte(n.Token.Text)...)
		return
	}
	for _, c := range n.Children {
		c.render(mgr, b)
	}
}

// triviaText resolves one Trivia's recorded Range back into source bytes.
func triviaText(mgr *source.Manager, tr token.Trivia) []byte {
	if mgr == nil {
		return nil
	}
	buf := mgr.GetBuffer(tr.Range.Start.Buffer)
	start, end := tr.Range.Start.Offset, tr.Range.End.Offset
	if buf == nil || start < 0 || end > len(buf) || start > end {
		return nil
	}
	return buf[start:end]
}
