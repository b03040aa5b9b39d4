package parser

import "fmt"

// TokenType enumerates lexical categories recognised by the TOG lexer.
type TokenType int

const (
	tokenEOF TokenType = iota

	tokenIdentifier
	tokenInt
	tokenFloat
	tokenString
	tokenBool

	// Keywords
	tokenFn
	tokenLet
	tokenStruct
	tokenEnum
	tokenTrait
	tokenImpl
	tokenFor
	tokenIn
	tokenIf
	tokenElse
	tokenWhile
	tokenMatch
	tokenReturn
	tokenBreak
	tokenContinue
	tokenNone

	// Operators and punctuation
	tokenAssign       // =
	tokenEqualEqual   // ==
	tokenBangEqual    // !=
	tokenPlus         // +
	tokenMinus        // -
	tokenStar         // *
	tokenSlash        // /
	tokenPercent      // %
	tokenLess         // <
	tokenLessEqual    // <=
	tokenGreater      // >
	tokenGreaterEqual // >=
	tokenBang         // !
	tokenAndAnd       // &&
	tokenOrOr         // ||
	tokenArrow        // ->
	tokenFatArrow     // =>

	tokenDot        // .
	tokenComma      // ,
	tokenSemicolon  // ;
	tokenColon      // :
	tokenColonColon // ::
	tokenLParen     // (
	tokenRParen     // )
	tokenLBrace     // {
	tokenRBrace     // }
	tokenLBracket   // [
	tokenRBracket   // ]
)

var tokenNames = map[TokenType]string{
	tokenEOF:          "EOF",
	tokenIdentifier:   "identifier",
	tokenInt:          "integer",
	tokenFloat:        "float",
	tokenString:       "string",
	tokenBool:         "bool",
	tokenFn:           "fn",
	tokenLet:          "let",
	tokenStruct:       "struct",
	tokenEnum:         "enum",
	tokenTrait:        "trait",
	tokenImpl:         "impl",
	tokenFor:          "for",
	tokenIn:           "in",
	tokenIf:           "if",
	tokenElse:         "else",
	tokenWhile:        "while",
	tokenMatch:        "match",
	tokenReturn:       "return",
	tokenBreak:        "break",
	tokenContinue:     "continue",
	tokenNone:         "none",
	tokenAssign:       "=",
	tokenEqualEqual:   "==",
	tokenBangEqual:    "!=",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenPercent:      "%",
	tokenLess:         "<",
	tokenLessEqual:    "<=",
	tokenGreater:      ">",
	tokenGreaterEqual: ">=",
	tokenBang:         "!",
	tokenAndAnd:       "&&",
	tokenOrOr:         "||",
	tokenArrow:        "->",
	tokenFatArrow:     "=>",
	tokenDot:          ".",
	tokenComma:        ",",
	tokenSemicolon:    ";",
	tokenColon:        ":",
	tokenColonColon:   "::",
	tokenLParen:       "(",
	tokenRParen:       ")",
	tokenLBrace:       "{",
	tokenRBrace:       "}",
	tokenLBracket:     "[",
	tokenRBracket:     "]",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "unknown"
}

var keywords = map[string]TokenType{
	"fn":       tokenFn,
	"let":      tokenLet,
	"struct":   tokenStruct,
	"enum":     tokenEnum,
	"trait":    tokenTrait,
	"impl":     tokenImpl,
	"for":      tokenFor,
	"in":       tokenIn,
	"if":       tokenIf,
	"else":     tokenElse,
	"while":    tokenWhile,
	"match":    tokenMatch,
	"return":   tokenReturn,
	"break":    tokenBreak,
	"continue": tokenContinue,
	"none":     tokenNone,
}

// Position tracks a source location within a TOG source file.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position refers to real source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string      // raw source text of the token
	Value  interface{} // decoded literal: int64, float64, string or bool
	Pos    Position
}

// Describe renders the token for diagnostics.
func (t Token) Describe() string {
	switch t.Type {
	case tokenIdentifier:
		return fmt.Sprintf("identifier %q", t.Lexeme)
	case tokenInt, tokenFloat, tokenBool:
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	case tokenString:
		return fmt.Sprintf("string %q", t.Value)
	case tokenEOF:
		return "end of input"
	default:
		return fmt.Sprintf("%q", t.Type.String())
	}
}
