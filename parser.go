package exin

// Parser is a pure LL(1) recursive-descent parser. Each grammar
// non-terminal is one method, driven by a one-token cursor with
// advance/peekAhead/atKeyword/atSymbol/expect*/errExpected helpers.
type Parser struct {
	lex    *lexer
	cur    *Token
	loader *moduleLoader

	// importing guards against a double import (a compile-time error),
	// shared across the whole recursive parse chain.
	importing map[string]bool
}

func newParser(lex *lexer, loader *moduleLoader) (*Parser, error) {
	if loader == nil {
		loader = newModuleLoader(nil)
	}
	p := &Parser{lex: lex, loader: loader, importing: make(map[string]bool)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.nextToken()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) peekAhead() (*Token, error) {
	return p.lex.peekToken()
}

func (p *Parser) atKeyword(kw string) bool {
	return p.cur.Typ == TokenKeyword && p.cur.Val == kw
}

func (p *Parser) atSymbol(sym string) bool {
	return p.cur.Typ == TokenSymbol && p.cur.Val == sym
}

func (p *Parser) errExpected(want string) error {
	return raise(SyntaxError, p.cur.Pos, "expected %s instead of %s", want, p.cur.String())
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return p.errExpected(kw)
	}
	return p.advance()
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.atSymbol(sym) {
		return p.errExpected(sym)
	}
	return p.advance()
}

func (p *Parser) expectType(t TokenType) (*Token, error) {
	if p.cur.Typ != t {
		return nil, p.errExpected(t.String())
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return tok, nil
}

func (p *Parser) expectNewline() error {
	if p.cur.Typ != TokenNewline {
		return p.errExpected("NEWLINE")
	}
	return p.advance()
}

// parseProgram parses a whole module: a flat sequence of top-level
// statements terminated by ENDMARKER, which yields no node of its own.
func parseProgram(lex *lexer, loader *moduleLoader) (*Program, error) {
	p, err := newParser(lex, loader)
	if err != nil {
		return nil, err
	}
	pos := p.cur.Pos
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != TokenEOF {
		return nil, p.errExpected("ENDMARKER")
	}
	return &Program{base: base{Pos: pos}, Stmts: stmts}, nil
}

// parseStatements collects statements until ENDMARKER or DEDENT, whichever
// a caller's context terminates on.
func (p *Parser) parseStatements() ([]Node, error) {
	var stmts []Node
	for p.cur.Typ != TokenEOF && p.cur.Typ != TokenDedent {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s == nil {
			break
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// parseBlock consumes `NEWLINE INDENT statement+ DEDENT`.
func (p *Parser) parseBlock() ([]Node, error) {
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	if p.cur.Typ != TokenIndent {
		return nil, p.errExpected("INDENT")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != TokenDedent {
		return nil, p.errExpected("DEDENT")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStatement dispatches on the current token type.
func (p *Parser) parseStatement() (Node, error) {
	switch {
	case p.cur.Typ == TokenEOF:
		return nil, nil
	case p.cur.Typ == TokenKeyword:
		switch p.cur.Val {
		case "char", "int", "float", "str", "list":
			return p.parseVarDecl()
		case "def":
			return p.parseFuncDecl()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "do":
			return p.parseDoWhile()
		case "for":
			return p.parseFor()
		case "print":
			return p.parsePrint()
		case "return":
			return p.parseReturn()
		case "input":
			return p.parseInput()
		case "import":
			return p.parseImport()
		case "pass":
			return p.parseZeroArgStmt(func(b base) Node { return &Pass{base: b} })
		case "break":
			return p.parseZeroArgStmt(func(b base) Node { return &Break{base: b} })
		case "continue":
			return p.parseZeroArgStmt(func(b base) Node { return &Continue{base: b} })
		}
	}
	return p.parseExprStmt()
}

func (p *Parser) parseZeroArgStmt(build func(base) Node) (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return build(base{Pos: pos}), nil
}

// parseVarDecl parses `type name [= expr] (, name [= expr])*`, producing a
// single VarDecl or, for multiple comma-separated names, a DeclList.
func (p *Parser) parseVarDecl() (Node, error) {
	pos := p.cur.Pos
	kind, _ := declKindFromKeyword(p.cur.Val)
	if err := p.advance(); err != nil {
		return nil, err
	}

	var decls []*VarDecl
	for {
		nameTok, err := p.expectType(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		var init Node
		if p.atSymbol("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			init, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, &VarDecl{base: base{Pos: nameTok.Pos}, Type: kind, Name: nameTok.Val, Init: init})
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	return &DeclList{base: base{Pos: pos}, Decls: decls}, nil
}

func (p *Parser) parseFuncDecl() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expectType(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var params []string
	if !p.atSymbol(")") {
		for {
			t, err := p.expectType(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			params = append(params, t.Val)
			if p.atSymbol(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{base: base{Pos: pos}, Name: nameTok.Val, Params: params, Body: body}, nil
}

func (p *Parser) parseIf() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock []Node
	if p.atKeyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &If{base: base{Pos: pos}, Cond: cond, Then: thenBlock, Else: elseBlock}, nil
}

func (p *Parser) parseWhile() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{base: base{Pos: pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return &DoWhile{base: base{Pos: pos}, Body: body, Cond: cond}, nil
}

func (p *Parser) parseFor() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expectType(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	seq, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &For{base: base{Pos: pos}, Var: nameTok.Val, Seq: seq, Body: body}, nil
}

// parsePrint parses `print [-raw] e1, e2, ...`. The `-raw` flag is only
// recognised as the literal two-token sequence `- raw` immediately after
// `print`; any other use parses as unary negation of a variable named raw.
func (p *Parser) parsePrint() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	raw := false
	if p.atSymbol("-") {
		nt, err := p.peekAhead()
		if err != nil {
			return nil, err
		}
		if nt.Typ == TokenIdentifier && nt.Val == "raw" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			raw = true
		}
	}
	args, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return &Print{base: base{Pos: pos}, Raw: raw, Args: args}, nil
}

func (p *Parser) parseReturn() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var val Node
	if p.cur.Typ != TokenNewline {
		var err error
		val, err = p.parseAssignment()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return &Return{base: base{Pos: pos}, Value: val}, nil
}

// parseInput parses `[prompt] id (, [prompt] id)*`. A prompt, when
// present, is a string literal; a missing identifier after a prompt is a
// syntax error.
func (p *Parser) parseInput() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var pairs []InputPair
	for {
		var prompt Node
		if p.cur.Typ == TokenString {
			prompt = &Literal{base: base{Pos: p.cur.Pos}, Kind: KindStr, Lexeme: p.cur.Val}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		nameTok, err := p.expectType(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, InputPair{Prompt: prompt, Name: nameTok.Val})
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return &Input{base: base{Pos: pos}, Pairs: pairs}, nil
}

// moduleFileExt is the source file suffix import resolves against.
const moduleFileExt = ".ex"

// parseImport loads, lexes and parses the named module file recursively,
// attaching its AST as the import statement's body. A second import of
// the same module name anywhere in the parse chain is a compile-time
// NameError. The outer lexer's reader and indent state are saved and
// restored around the recursive parse so the outer cursor is undisturbed.
// The module file itself is located via p.loader, which tries a
// configured search path before falling back to the importing file's own
// directory.
func (p *Parser) parseImport() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expectType(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}

	if p.importing[nameTok.Val] {
		return nil, raise(NameError, pos, "module %q already imported", nameTok.Val)
	}
	p.importing[nameTok.Val] = true

	path, err := p.loader.resolve(pos.Module, nameTok.Val)
	if err != nil {
		return nil, err
	}
	r, err := newReaderFromFile(path)
	if err != nil {
		return nil, err
	}

	saved := p.lex.save()
	p.lex.beginModule(r)
	body, err := p.parseImportedStatements()
	p.lex.load(saved)
	if err != nil {
		return nil, err
	}

	return &Import{base: base{Pos: pos}, ModuleName: nameTok.Val, Body: body}, nil
}

// parseImportedStatements parses a freshly opened module's full content as
// a sub-parse sharing this parser's import guard and loader, and requires
// it to end at ENDMARKER.
func (p *Parser) parseImportedStatements() ([]Node, error) {
	sub := &Parser{lex: p.lex, loader: p.loader, importing: p.importing}
	if err := sub.advance(); err != nil {
		return nil, err
	}
	stmts, err := sub.parseStatements()
	if err != nil {
		return nil, err
	}
	if sub.cur.Typ != TokenEOF {
		return nil, sub.errExpected("ENDMARKER")
	}
	return stmts, nil
}

func (p *Parser) parseExprStmt() (Node, error) {
	pos := p.cur.Pos
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return &ExprStmt{base: base{Pos: pos}, Expr: expr}, nil
}
