package parser

// Parse translates source text into a Program AST.
func Parse(src string) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens builds a Program from a token stream produced by Tokenize.
func ParseTokens(tokens []Token) (*Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != tokenEOF {
		var pos Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: tokenEOF, Pos: pos})
	}
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

type parser struct {
	tokens   []Token
	pos      int
	noStruct bool // inside an if/while condition, for iterable or match scrutinee
}

func (p *parser) curr() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) check(tt TokenType) bool {
	return p.curr().Type == tt
}

func (p *parser) advance() Token {
	tok := p.curr()
	if tok.Type != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if !p.check(tt) {
		return Token{}, p.errorf(quoteToken(tt))
	}
	return p.advance(), nil
}

func (p *parser) errorf(expected string) error {
	tok := p.curr()
	return &ParseError{
		Expected: expected,
		Found:    tok.Describe(),
		Pos:      tok.Pos,
		AtEOF:    tok.Type == tokenEOF,
	}
}

func quoteToken(tt TokenType) string {
	switch tt {
	case tokenIdentifier, tokenInt, tokenFloat, tokenString, tokenBool, tokenEOF:
		return tt.String()
	}
	return "\"" + tt.String() + "\""
}

func (p *parser) skipSemicolons() {
	for p.accept(tokenSemicolon) {
	}
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	p.skipSemicolons()
	for !p.check(tokenEOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
		p.skipSemicolons()
	}
	return prog, nil
}

func (p *parser) parseItem() (Item, error) {
	switch p.curr().Type {
	case tokenFn:
		// fn(...) at the top level is an anonymous function expression.
		if p.peekAt(1).Type == tokenIdentifier {
			return p.parseFuncDecl(false)
		}
	case tokenStruct:
		return p.parseStructDecl()
	case tokenEnum:
		return p.parseEnumDecl()
	case tokenTrait:
		return p.parseTraitDecl()
	case tokenImpl:
		return p.parseImplDecl()
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &StmtItem{Stmt: stmt}, nil
}

func (p *parser) parseFuncDecl(method bool) (*FuncDecl, error) {
	fnTok, err := p.expect(tokenFn)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	params, hasSelf, err := p.parseParams(method)
	if err != nil {
		return nil, err
	}
	ret, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{
		Name:       nameTok.Lexeme,
		Params:     params,
		HasSelf:    hasSelf,
		ReturnType: ret,
		Body:       body,
		Posn:       fnTok.Pos,
	}, nil
}

// parseParams reads a parenthesised parameter list. In methods a leading
// self parameter is dropped from the list and reported separately.
func (p *parser) parseParams(method bool) ([]Param, bool, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, false, err
	}
	var params []Param
	hasSelf := false
	for !p.check(tokenRParen) {
		nameTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, false, err
		}
		param := Param{Name: nameTok.Lexeme, Posn: nameTok.Pos}
		if p.accept(tokenColon) {
			typ, err := p.parseType()
			if err != nil {
				return nil, false, err
			}
			param.Type = typ
		}
		if method && len(params) == 0 && !hasSelf && param.Name == "self" {
			hasSelf = true
		} else {
			params = append(params, param)
		}
		if !p.accept(tokenComma) {
			break
		}
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, false, err
	}
	return params, hasSelf, nil
}

func (p *parser) parseReturnType() (*TypeExpr, error) {
	if !p.accept(tokenArrow) {
		return nil, nil
	}
	return p.parseType()
}

func (p *parser) parseType() (*TypeExpr, error) {
	tok := p.curr()
	switch tok.Type {
	case tokenNone:
		p.advance()
		return &TypeExpr{Name: "none", Posn: tok.Pos}, nil
	case tokenLBracket:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBracket); err != nil {
			return nil, err
		}
		return &TypeExpr{Name: "array", Elem: elem, Posn: tok.Pos}, nil
	case tokenIdentifier:
		p.advance()
		typ := &TypeExpr{Name: tok.Lexeme, Posn: tok.Pos}
		if tok.Lexeme == "array" && p.accept(tokenLBracket) {
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBracket); err != nil {
				return nil, err
			}
			typ.Elem = elem
		}
		return typ, nil
	}
	return nil, p.errorf("type")
}

func (p *parser) parseStructDecl() (Item, error) {
	structTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	decl := &StructDecl{Name: nameTok.Lexeme, Posn: structTok.Pos}
	for !p.check(tokenRBrace) {
		if p.check(tokenFn) {
			method, err := p.parseFuncDecl(true)
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
			p.skipSemicolons()
			continue
		}
		fieldTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		field := FieldDecl{Name: fieldTok.Lexeme, Posn: fieldTok.Pos}
		if p.accept(tokenColon) {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			field.Type = typ
		}
		decl.Fields = append(decl.Fields, field)
		if !p.accept(tokenComma) && !p.accept(tokenSemicolon) && !p.check(tokenRBrace) && !p.check(tokenFn) {
			return nil, p.errorf("\",\" or \"}\"")
		}
	}
	p.advance()
	return decl, nil
}

func (p *parser) parseEnumDecl() (Item, error) {
	enumTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	decl := &EnumDecl{Name: nameTok.Lexeme, Posn: enumTok.Pos}
	for !p.check(tokenRBrace) {
		variantTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		variant := VariantDecl{Name: variantTok.Lexeme, Posn: variantTok.Pos}
		if p.accept(tokenLParen) {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRParen); err != nil {
				return nil, err
			}
			variant.Payload = typ
		}
		decl.Variants = append(decl.Variants, variant)
		if !p.accept(tokenComma) && !p.check(tokenRBrace) {
			return nil, p.errorf("\",\" or \"}\"")
		}
	}
	p.advance()
	return decl, nil
}

func (p *parser) parseTraitDecl() (Item, error) {
	traitTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	decl := &TraitDecl{Name: nameTok.Lexeme, Posn: traitTok.Pos}
	for !p.check(tokenRBrace) {
		fnTok, err := p.expect(tokenFn)
		if err != nil {
			return nil, err
		}
		methodTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		params, hasSelf, err := p.parseParams(true)
		if err != nil {
			return nil, err
		}
		ret, err := p.parseReturnType()
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, MethodSig{
			Name:       methodTok.Lexeme,
			Params:     params,
			HasSelf:    hasSelf,
			ReturnType: ret,
			Posn:       fnTok.Pos,
		})
		p.skipSemicolons()
	}
	p.advance()
	return decl, nil
}

func (p *parser) parseImplDecl() (Item, error) {
	implTok := p.advance()
	first, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	decl := &ImplDecl{Type: first, Posn: implTok.Pos}
	if p.accept(tokenFor) {
		target, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.Trait = first
		decl.Type = target
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	for !p.check(tokenRBrace) {
		method, err := p.parseFuncDecl(true)
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, method)
		p.skipSemicolons()
	}
	p.advance()
	return decl, nil
}

// parseTypeName reads the target of an impl block; builtin types are allowed.
func (p *parser) parseTypeName() (string, error) {
	if p.accept(tokenNone) {
		return "none", nil
	}
	tok, err := p.expect(tokenIdentifier)
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

func (p *parser) parseBlock() (*BlockExpr, error) {
	braceTok, err := p.expect(tokenLBrace)
	if err != nil {
		return nil, err
	}
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	block := &BlockExpr{Posn: braceTok.Pos}
	p.skipSemicolons()
	for !p.check(tokenRBrace) {
		if p.check(tokenEOF) {
			return nil, p.errorf("\"}\"")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		p.skipSemicolons()
	}
	p.advance()
	return block, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	tok := p.curr()
	switch tok.Type {
	case tokenLet:
		return p.parseLetStmt()
	case tokenReturn:
		return p.parseReturnStmt()
	case tokenWhile:
		return p.parseWhileStmt()
	case tokenFor:
		return p.parseForStmt()
	case tokenBreak:
		p.advance()
		p.accept(tokenSemicolon)
		return &BreakStmt{Posn: tok.Pos}, nil
	case tokenContinue:
		p.advance()
		p.accept(tokenSemicolon)
		return &ContinueStmt{Posn: tok.Pos}, nil
	case tokenIf, tokenMatch, tokenLBrace:
		// Block-like expressions end the statement at their closing brace.
		expr, err := p.parseBlockLike()
		if err != nil {
			return nil, err
		}
		if p.check(tokenDot) {
			expr, err = p.parsePostfixFrom(expr)
			if err != nil {
				return nil, err
			}
			return p.finishExprStmt(expr)
		}
		return &ExprStmt{Expr: expr, Semi: p.accept(tokenSemicolon), Posn: tok.Pos}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.check(tokenAssign) {
		switch expr.(type) {
		case *IdentifierExpr, *FieldExpr, *IndexExpr:
		default:
			return nil, p.errorf("assignable expression before \"=\"")
		}
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.accept(tokenSemicolon)
		return &AssignStmt{Target: expr, Value: value, Posn: tok.Pos}, nil
	}
	return p.finishExprStmt(expr)
}

func (p *parser) finishExprStmt(expr Expr) (Stmt, error) {
	stmt := &ExprStmt{Expr: expr, Posn: expr.Pos()}
	stmt.Semi = p.accept(tokenSemicolon)
	if !stmt.Semi && !p.check(tokenRBrace) && !p.check(tokenEOF) && p.startsBinaryOrPostfix() {
		return nil, p.errorf("\";\"")
	}
	return stmt, nil
}

// startsBinaryOrPostfix reports tokens that cannot begin a new statement.
func (p *parser) startsBinaryOrPostfix() bool {
	switch p.curr().Type {
	case tokenRParen, tokenRBracket, tokenComma, tokenColon, tokenColonColon, tokenFatArrow, tokenArrow, tokenElse, tokenIn, tokenAssign:
		return true
	}
	return false
}

func (p *parser) parseLetStmt() (Stmt, error) {
	letTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	stmt := &LetStmt{Name: nameTok.Lexeme, Posn: letTok.Pos}
	if p.accept(tokenColon) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		stmt.Type = typ
	}
	if _, err := p.expect(tokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	p.accept(tokenSemicolon)
	return stmt, nil
}

func (p *parser) parseReturnStmt() (Stmt, error) {
	retTok := p.advance()
	stmt := &ReturnStmt{Posn: retTok.Pos}
	switch p.curr().Type {
	case tokenSemicolon, tokenRBrace, tokenEOF:
	default:
		result, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Result = result
	}
	p.accept(tokenSemicolon)
	return stmt, nil
}

func (p *parser) parseWhileStmt() (Stmt, error) {
	whileTok := p.advance()
	cond, err := p.parseNoStructExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	p.accept(tokenSemicolon)
	return &WhileStmt{Cond: cond, Body: body, Posn: whileTok.Pos}, nil
}

func (p *parser) parseForStmt() (Stmt, error) {
	forTok := p.advance()
	varTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseNoStructExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	p.accept(tokenSemicolon)
	return &ForStmt{Var: varTok.Lexeme, Iterable: iterable, Body: body, Posn: forTok.Pos}, nil
}

func (p *parser) parseNoStructExpr() (Expr, error) {
	saved := p.noStruct
	p.noStruct = true
	defer func() { p.noStruct = saved }()
	return p.parseExpression()
}

func (p *parser) parseExpression() (Expr, error) {
	return p.parseBinary(0)
}

var binaryLevels = [][]TokenType{
	{tokenOrOr},
	{tokenAndAnd},
	{tokenEqualEqual, tokenBangEqual},
	{tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual},
	{tokenPlus, tokenMinus},
	{tokenStar, tokenSlash, tokenPercent},
}

func (p *parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.atLevel(level) {
		opTok := p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Op:    opTok.Type.String(),
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) atLevel(level int) bool {
	tt := p.curr().Type
	for _, op := range binaryLevels[level] {
		if tt == op {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (Expr, error) {
	if p.check(tokenBang) || p.check(tokenMinus) {
		opTok := p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Op:   opTok.Type.String(),
			Expr: expr,
			Posn: opTok.Pos,
		}, nil
	}
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixFrom(expr)
}

func (p *parser) parsePostfixFrom(expr Expr) (Expr, error) {
	for {
		switch p.curr().Type {
		case tokenLParen:
			p.advance()
			args, err := p.parseExprList(tokenRParen)
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Args: args, Posn: expr.Pos()}
		case tokenLBracket:
			lbracket := p.advance()
			index, err := p.parseInner()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Object: expr, Index: index, Posn: lbracket.Pos}
		case tokenDot:
			dot := p.advance()
			nameTok, err := p.expect(tokenIdentifier)
			if err != nil {
				return nil, err
			}
			if p.check(tokenLParen) {
				p.advance()
				args, err := p.parseExprList(tokenRParen)
				if err != nil {
					return nil, err
				}
				expr = &MethodCallExpr{Receiver: expr, Method: nameTok.Lexeme, Args: args, Posn: dot.Pos}
				continue
			}
			expr = &FieldExpr{Object: expr, Field: nameTok.Lexeme, Posn: dot.Pos}
		default:
			return expr, nil
		}
	}
}

// parseInner parses a bracketed sub-expression, where struct literals are
// unambiguous again.
func (p *parser) parseInner() (Expr, error) {
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()
	return p.parseExpression()
}

// parseExprList reads comma separated expressions up to and including end.
func (p *parser) parseExprList(end TokenType) ([]Expr, error) {
	var exprs []Expr
	for !p.check(end) {
		expr, err := p.parseInner()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if !p.accept(tokenComma) {
			break
		}
	}
	if _, err := p.expect(end); err != nil {
		return nil, err
	}
	return exprs, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.curr()
	switch tok.Type {
	case tokenInt:
		p.advance()
		return &IntLit{Value: tok.Value.(int64), Posn: tok.Pos}, nil
	case tokenFloat:
		p.advance()
		return &FloatLit{Value: tok.Value.(float64), Posn: tok.Pos}, nil
	case tokenString:
		p.advance()
		return &StringLit{Value: tok.Value.(string), Posn: tok.Pos}, nil
	case tokenBool:
		p.advance()
		return &BoolLit{Value: tok.Value.(bool), Posn: tok.Pos}, nil
	case tokenNone:
		p.advance()
		return &NoneLit{Posn: tok.Pos}, nil
	case tokenIdentifier:
		return p.parseIdentifierExpr()
	case tokenLParen:
		p.advance()
		expr, err := p.parseInner()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case tokenLBracket:
		p.advance()
		elems, err := p.parseExprList(tokenRBracket)
		if err != nil {
			return nil, err
		}
		return &ArrayExpr{Elements: elems, Posn: tok.Pos}, nil
	case tokenLBrace, tokenIf, tokenMatch:
		return p.parseBlockLike()
	case tokenFn:
		return p.parseFuncLit()
	}
	return nil, p.errorf("expression")
}

func (p *parser) parseBlockLike() (Expr, error) {
	switch p.curr().Type {
	case tokenIf:
		return p.parseIfExpr()
	case tokenMatch:
		return p.parseMatchExpr()
	}
	return p.parseBlock()
}

func (p *parser) parseIdentifierExpr() (Expr, error) {
	if p.peekAt(1).Type == tokenColonColon {
		enum, variant, err := p.parseVariantPath()
		if err != nil {
			return nil, err
		}
		expr := &VariantExpr{Enum: enum.Lexeme, Variant: variant.Lexeme, Posn: enum.Pos}
		if p.accept(tokenLParen) {
			args, err := p.parseExprList(tokenRParen)
			if err != nil {
				return nil, err
			}
			expr.Args = args
		}
		return expr, nil
	}
	if !p.noStruct && p.looksLikeStructLit() {
		return p.parseStructLit()
	}
	tok := p.advance()
	return &IdentifierExpr{Name: tok.Lexeme, Posn: tok.Pos}, nil
}

// parseVariantPath reads Type::Variant for both expressions and patterns.
func (p *parser) parseVariantPath() (Token, Token, error) {
	enum, err := p.expect(tokenIdentifier)
	if err != nil {
		return Token{}, Token{}, err
	}
	if _, err := p.expect(tokenColonColon); err != nil {
		return Token{}, Token{}, err
	}
	variant, err := p.expect(tokenIdentifier)
	if err != nil {
		return Token{}, Token{}, err
	}
	return enum, variant, nil
}

// looksLikeStructLit peeks past `Name {` for `field :` or an immediate `}`
// without consuming.
func (p *parser) looksLikeStructLit() bool {
	if p.peekAt(1).Type != tokenLBrace {
		return false
	}
	switch p.peekAt(2).Type {
	case tokenRBrace:
		return true
	case tokenIdentifier:
		return p.peekAt(3).Type == tokenColon
	}
	return false
}

func (p *parser) parseStructLit() (Expr, error) {
	nameTok := p.advance()
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	lit := &StructLit{Type: nameTok.Lexeme, Posn: nameTok.Pos}
	for !p.check(tokenRBrace) {
		fieldTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseInner()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, FieldInit{Name: fieldTok.Lexeme, Value: value, Posn: fieldTok.Pos})
		if !p.accept(tokenComma) {
			break
		}
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *parser) parseIfExpr() (Expr, error) {
	ifTok := p.advance()
	cond, err := p.parseNoStructExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	expr := &IfExpr{Cond: cond, Then: then, Posn: ifTok.Pos}
	if p.accept(tokenElse) {
		if p.check(tokenIf) {
			elseIf, err := p.parseIfExpr()
			if err != nil {
				return nil, err
			}
			expr.Else = elseIf
		} else {
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			expr.Else = block
		}
	}
	return expr, nil
}

func (p *parser) parseMatchExpr() (Expr, error) {
	matchTok := p.advance()
	scrutinee, err := p.parseNoStructExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	expr := &MatchExpr{Scrutinee: scrutinee, Posn: matchTok.Pos}
	for !p.check(tokenRBrace) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenFatArrow); err != nil {
			return nil, err
		}
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		expr.Arms = append(expr.Arms, MatchArm{Pattern: pat, Body: body, Posn: pat.Pos()})
		if p.accept(tokenComma) {
			continue
		}
		if _, isBlock := body.(*BlockExpr); !isBlock && !p.check(tokenRBrace) {
			return nil, p.errorf("\",\" or \"}\"")
		}
	}
	p.advance()
	return expr, nil
}

func (p *parser) parsePattern() (Pattern, error) {
	tok := p.curr()
	switch tok.Type {
	case tokenIdentifier:
		if p.peekAt(1).Type == tokenColonColon {
			return p.parseVariantPattern()
		}
		p.advance()
		if tok.Lexeme == "_" {
			return &WildcardPattern{Posn: tok.Pos}, nil
		}
		return &BindingPattern{Name: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenInt:
		p.advance()
		return &IntLit{Value: tok.Value.(int64), Posn: tok.Pos}, nil
	case tokenFloat:
		p.advance()
		return &FloatLit{Value: tok.Value.(float64), Posn: tok.Pos}, nil
	case tokenString:
		p.advance()
		return &StringLit{Value: tok.Value.(string), Posn: tok.Pos}, nil
	case tokenBool:
		p.advance()
		return &BoolLit{Value: tok.Value.(bool), Posn: tok.Pos}, nil
	case tokenNone:
		p.advance()
		return &NoneLit{Posn: tok.Pos}, nil
	case tokenMinus:
		next := p.peekAt(1)
		switch next.Type {
		case tokenInt:
			p.advance()
			p.advance()
			return &IntLit{Value: -next.Value.(int64), Posn: tok.Pos}, nil
		case tokenFloat:
			p.advance()
			p.advance()
			return &FloatLit{Value: -next.Value.(float64), Posn: tok.Pos}, nil
		}
	}
	return nil, p.errorf("pattern")
}

func (p *parser) parseVariantPattern() (Pattern, error) {
	enum, variant, err := p.parseVariantPath()
	if err != nil {
		return nil, err
	}
	pat := &VariantPattern{Enum: enum.Lexeme, Variant: variant.Lexeme, Posn: enum.Pos}
	if p.accept(tokenLParen) {
		binder, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		pat.HasPayload = true
		pat.Binder = binder.Lexeme
	}
	return pat, nil
}

func (p *parser) parseFuncLit() (Expr, error) {
	fnTok := p.advance()
	params, _, err := p.parseParams(false)
	if err != nil {
		return nil, err
	}
	ret, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncLit{Params: params, ReturnType: ret, Body: body, Posn: fnTok.Pos}, nil
}
