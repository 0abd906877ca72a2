// Package token defines the token-stream contract the parser is written
// against. The lexer and preprocessor that produce this stream live in the
// preprocess package; this package only fixes the vocabulary they speak,
// the way the teacher's syntax.Token separates "what a token is" from "how
// the scanner finds one."
package token

import "svcore/source"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Identifier
	SystemIdentifier // $display, $bits, ...
	IntLiteral       // four-valued sized or unsized integer literal
	RealLiteral
	StringLiteral
	TimeLiteral

	// Punctuation / operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Question
	Colon
	ColonColon
	Semicolon
	Comma
	Dot
	Assign
	Equal
	NotEqual
	CaseEqual
	CaseNotEqual
	WildcardEqual
	WildcardNotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	LogicalAnd
	LogicalOr
	TildeAmp
	TildePipe
	TildeCaret
	CaretTilde
	ShiftLeft
	ShiftRight
	ArithShiftLeft
	ArithShiftRight
	PlusPlus
	MinusMinus
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	AmpAssign
	PipeAssign
	CaretAssign
	ShiftLeftAssign
	ShiftRightAssign
	StarStar
	Apostrophe
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	At
	Hash
	HashHash
	DollarSign
	Arrow      // ->
	StarGT     // *>
	EqArrow    // =>
	PlusColon  // +:
	MinusColon // -:

	// Keywords (curated subset sufficient for the constructs this module
	// implements).
	KwModule
	KwEndmodule
	KwInterface
	KwEndinterface
	KwPackage
	KwEndpackage
	KwProgram
	KwEndprogram
	KwParameter
	KwLocalparam
	KwLogic
	KwBit
	KwReg
	KwWire
	KwInt
	KwInteger
	KwShortint
	KwLongint
	KwByte
	KwReal
	KwShortreal
	KwTime
	KwString
	KwEnum
	KwStruct
	KwUnion
	KwPacked
	KwTypedef
	KwFunction
	KwEndfunction
	KwTask
	KwEndtask
	KwAlways
	KwAlwaysComb
	KwAlwaysFF
	KwAlwaysLatch
	KwInitial
	KwFinal
	KwIf
	KwElse
	KwCase
	KwCasez
	KwCasex
	KwEndcase
	KwDefault
	KwFor
	KwForeach
	KwWhile
	KwRepeat
	KwForever
	KwDo
	KwBreak
	KwContinue
	KwReturn
	KwAssert
	KwAssume
	KwCover
	KwRestrict
	KwExpect
	KwImport
	KwExport
	KwModport
	KwGenerate
	KwEndgenerate
	KwGenvar
	KwBegin
	KwEnd
	KwFork
	KwJoin
	KwJoinAny
	KwJoinNone
	KwInput
	KwOutput
	KwInout
	KwRef
	KwConst
	KwVar
	KwStatic
	KwAutomatic
	KwSigned
	KwUnsigned
	KwAssign
	KwDeassign
	KwForce
	KwRelease
	KwPosedge
	KwNegedge
	KwEdge
	KwUnique
	KwUnique0
	KwPriority
	KwNew
	KwThis
	KwSuper
	KwNull
	KwVoid
	KwClass
	KwEndclass
	KwExtends
	KwVirtual
	KwPure
	KwLocal
	KwProtected
	KwExtern
	KwDisable
	KwWait
	KwWaitOrder
	KwRandcase
	KwTagged
	KwMatches
	KwInside
	KwTrue
	KwFalse

	// Trivia: never significant to the grammar, carried alongside tokens so
	// an exact source rendering (round-trip property) stays possible.
	Whitespace
	LineComment
	BlockComment
	DirectiveText

	Missing // synthesized by the parser when a required token is absent
	Skipped // trivia wrapping text the parser discarded during recovery
)

// Literal carries the decoded payload of IntLiteral/RealLiteral/
// StringLiteral/TimeLiteral tokens; everything else leaves it zero.
type Literal struct {
	// Text is the exact source spelling, kept so re-lexing is never needed
	// to render a token back to text.
	Text string

	// IntValue and friends are filled in by the preprocessor/lexer for the
	// literal kinds that need structured values; the binder re-derives a
	// four-valued eval.Int4 from Text rather than trusting this cache when
	// precision matters, since literal size is unbounded.
	Base    int // 0 (unsized decimal), 2, 8, 10, or 16
	HasSize bool
	Size    int
}

// Trivia is a span of non-significant text (whitespace, comments, directive
// remnants) attached to the token that follows it.
type Trivia struct {
	Kind  Kind
	Range source.Range
}

// Token is one lexical unit, with any leading trivia attached so the parser
// never has to special-case comments/whitespace while still being able to
// reproduce them (render property, §8 of the distilled spec).
type Token struct {
	Kind    Kind
	Range   source.Range
	Text    string
	Literal Literal
	Leading []Trivia

	// Diagnostic is set on Missing/Skipped tokens to explain the gap.
	Diagnostic interface{}
}

// IsKeyword reports whether k is one of the Kw* kinds.
func IsKeyword(k Kind) bool {
	return k >= KwModule && k <= KwFalse
}

// IsTrivia reports whether k is a non-grammatical trivia kind.
func IsTrivia(k Kind) bool {
	return k == Whitespace || k == LineComment || k == BlockComment || k == DirectiveText
}
