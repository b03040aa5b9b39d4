package parser

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize converts TOG source text into tokens terminated by an EOF token.
func Tokenize(src string) ([]Token, error) {
	lx := newLexer(src)
	var tokens []Token
	for {
		tok, err := lx.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

func (lx *lexer) readRune() (rune, runeState, error) {
	state := lx.mark()
	if lx.pos >= len(lx.src) {
		return 0, state, io.EOF
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == utf8.RuneError && w == 1 {
		return 0, state, newLexError(positionFromState(state), "invalid UTF-8 encoding")
	}
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, nil
}

func (lx *lexer) peekRune() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) peekRuneAt(n int) rune {
	offset := lx.pos
	for i := 0; i < n; i++ {
		if offset >= len(lx.src) {
			return 0
		}
		_, w := utf8.DecodeRuneInString(lx.src[offset:])
		offset += w
	}
	if offset >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[offset:])
	return r
}

func (lx *lexer) match(expected rune) bool {
	if lx.peekRune() != expected || lx.pos >= len(lx.src) {
		return false
	}
	lx.readRune()
	return true
}

func (lx *lexer) skipWhitespace() error {
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/' && lx.peekRune() == '/':
			lx.skipLine()
		case r == '/' && lx.peekRune() == '*':
			lx.readRune()
			if err := lx.skipBlockComment(state); err != nil {
				return err
			}
		default:
			lx.restore(state)
			return nil
		}
	}
}

func (lx *lexer) skipLine() {
	for {
		r, _, err := lx.readRune()
		if err != nil || r == '\n' {
			return
		}
	}
}

func (lx *lexer) skipBlockComment(start runeState) error {
	for {
		r, _, err := lx.readRune()
		if err == io.EOF {
			return newIncompleteError(positionFromState(start), "unterminated block comment")
		}
		if err != nil {
			return err
		}
		if r == '*' && lx.match('/') {
			return nil
		}
	}
}

func (lx *lexer) nextToken() (Token, error) {
	if err := lx.skipWhitespace(); err != nil {
		return Token{}, err
	}

	start := lx.mark()
	r, _, err := lx.readRune()
	if err == io.EOF {
		return Token{Type: tokenEOF, Pos: positionFromState(start)}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {
	case isIdentifierStart(r):
		return lx.scanIdentifier(start), nil
	case isDigit(r):
		return lx.scanNumber(start)
	case r == '"':
		return lx.scanString(start)
	}

	var tt TokenType
	switch r {
	case '+':
		tt = tokenPlus
	case '-':
		tt = tokenMinus
		if lx.match('>') {
			tt = tokenArrow
		}
	case '*':
		tt = tokenStar
	case '/':
		tt = tokenSlash
	case '%':
		tt = tokenPercent
	case '.':
		tt = tokenDot
	case ',':
		tt = tokenComma
	case ';':
		tt = tokenSemicolon
	case ':':
		tt = tokenColon
		if lx.match(':') {
			tt = tokenColonColon
		}
	case '(':
		tt = tokenLParen
	case ')':
		tt = tokenRParen
	case '{':
		tt = tokenLBrace
	case '}':
		tt = tokenRBrace
	case '[':
		tt = tokenLBracket
	case ']':
		tt = tokenRBracket
	case '=':
		tt = tokenAssign
		if lx.match('=') {
			tt = tokenEqualEqual
		} else if lx.match('>') {
			tt = tokenFatArrow
		}
	case '!':
		tt = tokenBang
		if lx.match('=') {
			tt = tokenBangEqual
		}
	case '<':
		tt = tokenLess
		if lx.match('=') {
			tt = tokenLessEqual
		}
	case '>':
		tt = tokenGreater
		if lx.match('=') {
			tt = tokenGreaterEqual
		}
	case '&':
		if !lx.match('&') {
			return Token{}, newLexError(positionFromState(start), "unexpected character '&' (did you mean &&?)")
		}
		tt = tokenAndAnd
	case '|':
		if !lx.match('|') {
			return Token{}, newLexError(positionFromState(start), "unexpected character '|' (did you mean ||?)")
		}
		tt = tokenOrOr
	default:
		return Token{}, newLexError(positionFromState(start), "unexpected character %q", r)
	}
	return lx.token(tt, start), nil
}

func (lx *lexer) token(tt TokenType, start runeState) Token {
	return Token{
		Type:   tt,
		Lexeme: lx.src[start.pos:lx.pos],
		Pos:    positionFromState(start),
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (lx *lexer) scanIdentifier(start runeState) Token {
	for isIdentifierPart(lx.peekRune()) && lx.pos < len(lx.src) {
		lx.readRune()
	}
	tok := lx.token(tokenIdentifier, start)
	switch tok.Lexeme {
	case "true", "false":
		tok.Type = tokenBool
		tok.Value = tok.Lexeme == "true"
	default:
		if kw, ok := keywords[tok.Lexeme]; ok {
			tok.Type = kw
		}
	}
	return tok
}

func (lx *lexer) scanNumber(start runeState) (Token, error) {
	isFloat := false
	for isDigit(lx.peekRune()) {
		lx.readRune()
	}
	// A dot only continues the number when a digit follows, so `5.abs()` stays a method call.
	if lx.peekRune() == '.' && isDigit(lx.peekRuneAt(1)) {
		isFloat = true
		lx.readRune()
		for isDigit(lx.peekRune()) {
			lx.readRune()
		}
	}
	if p := lx.peekRune(); p == 'e' || p == 'E' {
		next := lx.peekRuneAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peekRuneAt(2))) {
			isFloat = true
			lx.readRune()
			if next == '+' || next == '-' {
				lx.readRune()
			}
			for isDigit(lx.peekRune()) {
				lx.readRune()
			}
		}
	}

	tok := lx.token(tokenInt, start)
	if isFloat {
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return Token{}, newLexError(tok.Pos, "invalid float literal %s", tok.Lexeme)
		}
		tok.Type = tokenFloat
		tok.Value = f
		return tok, nil
	}
	i, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return Token{}, newLexError(tok.Pos, "invalid integer literal %s", tok.Lexeme)
	}
	tok.Value = i
	return tok, nil
}

func (lx *lexer) scanString(start runeState) (Token, error) {
	var builder strings.Builder
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			return Token{}, newIncompleteError(positionFromState(start), "unterminated string literal")
		}
		if err != nil {
			return Token{}, err
		}
		if r == '"' {
			break
		}
		if r == '\n' {
			return Token{}, newLexError(positionFromState(state), "newline in string literal")
		}
		if r == '\\' {
			esc, escState, err := lx.readRune()
			if err == io.EOF {
				return Token{}, newIncompleteError(positionFromState(start), "unterminated escape sequence")
			}
			if err != nil {
				return Token{}, err
			}
			switch esc {
			case 'n':
				builder.WriteRune('\n')
			case 't':
				builder.WriteRune('\t')
			case 'r':
				builder.WriteRune('\r')
			case '0':
				builder.WriteRune(0)
			case '\\':
				builder.WriteRune('\\')
			case '"':
				builder.WriteRune('"')
			default:
				return Token{}, newLexError(positionFromState(escState), "invalid escape sequence \\%c", esc)
			}
			continue
		}
		builder.WriteRune(r)
	}
	tok := lx.token(tokenString, start)
	tok.Value = builder.String()
	return tok, nil
}

func positionFromState(state runeState) Position {
	return Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
