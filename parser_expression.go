package exin

// Expression parsing implements a precedence ladder, one method per level:
// assignment -> logicalOr -> logicalAnd -> equality -> relational ->
// additive -> multiplicative -> unary -> primary(+trailer).

// parseExpression is the entry point for a single expression (as opposed
// to a comma-separated list — see parseExprList).
func (p *Parser) parseExpression() (Node, error) {
	return p.parseAssignment()
}

// parseExprList parses one or more assignment-level expressions separated
// by commas, used for print argument lists, call and method arguments and
// list literal elements. The grammar's "comma" level never produces a value of
// its own; it is purely a separator at these call sites.
func (p *Parser) parseExprList() ([]Node, error) {
	first, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	list := []Node{first}
	for p.atSymbol(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	return list, nil
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

// parseAssignment implements `=` and the shorthand forms as a
// right-associative, chainable expression-level operator (`a = b =
// c = 3` parses as `a = (b = (c = 3))`).
func (p *Parser) parseAssignment() (Node, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ == TokenSymbol && assignOps[p.cur.Val] {
		pos := p.cur.Pos
		op := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{Pos: pos}, Target: left, Value: right, Op: op}, nil
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (Node, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: "or"}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: "and"}
	}
	return left, nil
}

// parseEquality handles the equality/membership level: `== != <> in`.
func (p *Parser) parseEquality() (Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atSymbol("==") || p.atSymbol("!="):
			pos := p.cur.Pos
			op := p.cur.Val
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: op}
		case p.atKeyword("in"):
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: "in"}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseRelational() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("<") || p.atSymbol("<=") || p.atSymbol(">") || p.atSymbol(">=") {
		pos := p.cur.Pos
		op := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: op}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("+") || p.atSymbol("-") {
		pos := p.cur.Pos
		op := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: op}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("*") || p.atSymbol("/") || p.atSymbol("%") {
		pos := p.cur.Pos
		op := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Pos: pos}, Left: left, Right: right, Op: op}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.atSymbol("+") || p.atSymbol("-") || p.atSymbol("!") {
		pos := p.cur.Pos
		op := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{base: base{Pos: pos}, Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses a literal, list constructor, identifier (bare
// reference or call), or parenthesized expression, then attaches the
// trailer: zero or more `[index]`/`[start:end]` subscripts followed by at
// most one `.method(args)` call.
func (p *Parser) parsePrimary() (Node, error) {
	node, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("[") {
		node, err = p.parseSubscript(node)
		if err != nil {
			return nil, err
		}
	}
	if p.atSymbol(".") {
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
		var args []Node
		if !p.atSymbol(")") {
			args, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		attachTrailer(node, &MethodCall{Name: nameTok.Val, Args: args})
	}
	return node, nil
}

// attachTrailer records a method trailer on the concrete node, since the
// Node interface itself exposes Trailer() but not a setter — base.Method
// is reached directly through the embedded field.
func attachTrailer(n Node, m *MethodCall) {
	switch t := n.(type) {
	case *Literal:
		t.Method = m
	case *ListLit:
		t.Method = m
	case *Reference:
		t.Method = m
	case *Call:
		t.Method = m
	case *Index:
		t.Method = m
	case *Slice:
		t.Method = m
	case *Assign:
		t.Method = m
	case *Binary:
		t.Method = m
	case *Unary:
		t.Method = m
	}
}

// parseSubscript parses one `[index]` or `[start:end]` trailer, with
// absent start defaulting to 0 and absent end to the sequence length
// (resolved at evaluation time).
func (p *Parser) parseSubscript(seq Node) (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}

	var start Node
	if !p.atSymbol(":") {
		var err error
		start, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if p.atSymbol(":") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var end Node
		if !p.atSymbol("]") {
			var err error
			end, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectSymbol("]"); err != nil {
			return nil, err
		}
		return &Slice{base: base{Pos: pos}, Seq: seq, Start: start, End: end}, nil
	}

	if err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	return &Index{base: base{Pos: pos}, Seq: seq, Idx: start}, nil
}

func (p *Parser) parseAtom() (Node, error) {
	pos := p.cur.Pos
	switch p.cur.Typ {
	case TokenChar:
		lexeme := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{base: base{Pos: pos}, Kind: KindChar, Lexeme: lexeme}, nil
	case TokenInt:
		lexeme := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{base: base{Pos: pos}, Kind: KindInt, Lexeme: lexeme}, nil
	case TokenFloat:
		lexeme := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{base: base{Pos: pos}, Kind: KindFloat, Lexeme: lexeme}, nil
	case TokenString:
		lexeme := p.cur.Val
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{base: base{Pos: pos}, Kind: KindStr, Lexeme: lexeme}, nil
	case TokenIdentifier:
		return p.parseIdentifierAtom()
	case TokenSymbol:
		if p.cur.Val == "(" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
		if p.cur.Val == "[" {
			return p.parseListLit()
		}
	}
	return nil, p.errExpected("expression")
}

func (p *Parser) parseListLit() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elements []Node
	if !p.atSymbol("]") {
		var err error
		elements, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	return &ListLit{base: base{Pos: pos}, Elements: elements}, nil
}

// parseIdentifierAtom parses a bare reference or a `name(args)` call,
// tagging calls into the built-in registry `builtin=true` at parse time;
// the registry is consulted by name only.
func (p *Parser) parseIdentifierAtom() (Node, error) {
	pos := p.cur.Pos
	name := p.cur.Val
	if err := p.advance(); err != nil {
		return nil, err
	}
	if !p.atSymbol("(") {
		return &Reference{base: base{Pos: pos}, Name: name}, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []Node
	if !p.atSymbol(")") {
		var err error
		args, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &Call{base: base{Pos: pos}, Name: name, Args: args, Builtin: isBuiltinName(name)}, nil
}
