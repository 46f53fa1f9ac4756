package compiler

import "vellum/internal/lexer"

// Precedence orders binding strength from loosest to tightest, the way a
// single classic Pratt precedence table does (spec section 4.3: "a
// precedence table of (prefix, infix, precedence) entries per token").
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment        // = += -= ... ??=
	PrecElvis             // ??
	PrecOr                // or
	PrecAnd                // and
	PrecBitOr              // |
	PrecBitXor             // ^
	PrecBitAnd             // &
	PrecEquality           // == !=
	PrecComparison         // < > <= >=
	PrecShift              // << >>
	PrecRange              // ..
	PrecTerm               // + -
	PrecFactor              // * / // %
	PrecPower              // **
	PrecUnary              // ! - ~ ++ --
	PrecCall                // . () [] invoke
	PrecPrimary
)

type prefixFn func(c *Compiler, canAssign bool)
type infixFn func(c *Compiler, canAssign bool)

type ParseRule struct {
	Prefix     prefixFn
	Infix      infixFn
	Precedence Precedence
}

var rules map[lexer.TokenType]ParseRule

func init() {
	rules = map[lexer.TokenType]ParseRule{
		lexer.TokenLParen:    {(*Compiler).grouping, (*Compiler).call, PrecCall},
		lexer.TokenDot:       {nil, (*Compiler).dot, PrecCall},
		lexer.TokenLBracket:  {(*Compiler).listLiteral, (*Compiler).index, PrecCall},
		lexer.TokenLBrace:    {(*Compiler).dictLiteral, nil, PrecNone},

		lexer.TokenMinus:     {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		lexer.TokenPlus:      {nil, (*Compiler).binary, PrecTerm},
		lexer.TokenSlash:     {nil, (*Compiler).binary, PrecFactor},
		lexer.TokenSlashSlash: {nil, (*Compiler).binary, PrecFactor},
		lexer.TokenStar:      {nil, (*Compiler).binary, PrecFactor},
		lexer.TokenPercent:   {nil, (*Compiler).binary, PrecFactor},
		lexer.TokenStarStar:  {nil, (*Compiler).binary, PrecPower},

		lexer.TokenAmp:    {nil, (*Compiler).binary, PrecBitAnd},
		lexer.TokenPipe:   {nil, (*Compiler).binary, PrecBitOr},
		lexer.TokenCaret:  {nil, (*Compiler).binary, PrecBitXor},
		lexer.TokenLShift: {nil, (*Compiler).binary, PrecShift},
		lexer.TokenRShift: {nil, (*Compiler).binary, PrecShift},
		lexer.TokenTilde:  {(*Compiler).unary, nil, PrecUnary},

		lexer.TokenBang:         {(*Compiler).unary, nil, PrecUnary},
		lexer.TokenBangEqual:    {nil, (*Compiler).binary, PrecEquality},
		lexer.TokenEqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		lexer.TokenGreater:      {nil, (*Compiler).binary, PrecComparison},
		lexer.TokenGreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		lexer.TokenLess:         {nil, (*Compiler).binary, PrecComparison},
		lexer.TokenLessEqual:    {nil, (*Compiler).binary, PrecComparison},

		lexer.TokenDotDot: {nil, (*Compiler).rangeLiteral, PrecRange},
		lexer.TokenElvis:  {nil, (*Compiler).elvis, PrecElvis},

		lexer.TokenPlusPlus:   {(*Compiler).prefixIncDec, nil, PrecUnary},
		lexer.TokenMinusMinus: {(*Compiler).prefixIncDec, nil, PrecUnary},

		lexer.TokenIdent:     {(*Compiler).variable, nil, PrecNone},
		lexer.TokenSelf:      {(*Compiler).self, nil, PrecNone},
		lexer.TokenParent:    {(*Compiler).parentExpr, nil, PrecNone},
		lexer.TokenNumber:    {(*Compiler).number, nil, PrecNone},
		lexer.TokenString:    {(*Compiler).stringLit, nil, PrecNone},
		lexer.TokenTrue:      {(*Compiler).literal, nil, PrecNone},
		lexer.TokenFalse:     {(*Compiler).literal, nil, PrecNone},
		lexer.TokenNil:       {(*Compiler).literal, nil, PrecNone},
		lexer.TokenDef:       {(*Compiler).lambda, nil, PrecNone},

		lexer.TokenAnd: {nil, (*Compiler).and, PrecAnd},
		lexer.TokenOr:  {nil, (*Compiler).or, PrecOr},
	}
}

func (c *Compiler) ruleFor(t lexer.TokenType) ParseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return ParseRule{nil, nil, PrecNone}
}
