package exin

import "strconv"

// Checker is the first pass over a parsed program: it binds function names,
// pushes/pops scope around function bodies, resolves every reference, and
// validates call arity and literal convertibility, so that no such check
// needs repeating during evaluation.
type Checker struct {
	global *Scope
}

// Check runs the semantic checker over a fully parsed program.
func Check(prog *Program) error {
	c := &Checker{global: newScope(nil)}
	return c.checkStmts(prog.Stmts, c.global)
}

// checkStmts hoists function declarations appearing in this statement
// list (enabling forward and mutual reference) before checking every
// statement in textual order, including descending into each FuncDecl's
// body exactly once. This sidesteps the need to re-check a callee's body
// from inside a call expression, so self- and mutually-recursive calls
// never risk the unbounded recursion the `checked` latch on Call guards
// against defensively.
func (c *Checker) checkStmts(stmts []Node, scope *Scope) error {
	for _, s := range stmts {
		fd, ok := s.(*FuncDecl)
		if !ok {
			continue
		}
		if isBuiltinName(fd.Name) {
			return raise(NameError, fd.Pos, "cannot redefine built-in %q", fd.Name)
		}
		if !scope.Declare(&Identifier{Name: fd.Name, Kind: IdentFunction, Func: fd}) {
			return raise(NameError, fd.Pos, "function %q already declared", fd.Name)
		}
	}
	for _, s := range stmts {
		if err := c.checkStmt(s, scope); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(n Node, scope *Scope) error {
	switch s := n.(type) {
	case *VarDecl:
		return c.checkVarDecl(s, scope)
	case *DeclList:
		for _, d := range s.Decls {
			if err := c.checkVarDecl(d, scope); err != nil {
				return err
			}
		}
		return nil
	case *FuncDecl:
		return c.checkFuncDecl(s, scope)
	case *If:
		if err := c.checkExpr(s.Cond, scope); err != nil {
			return err
		}
		if err := c.checkStmts(s.Then, scope); err != nil {
			return err
		}
		return c.checkStmts(s.Else, scope)
	case *While:
		if err := c.checkExpr(s.Cond, scope); err != nil {
			return err
		}
		return c.checkStmts(s.Body, scope)
	case *DoWhile:
		if err := c.checkStmts(s.Body, scope); err != nil {
			return err
		}
		return c.checkExpr(s.Cond, scope)
	case *For:
		if err := c.checkExpr(s.Seq, scope); err != nil {
			return err
		}
		if _, ok := scope.Lookup(s.Var); !ok {
			scope.Declare(&Identifier{Name: s.Var, Kind: IdentVariable, Value: NewNone()})
		}
		return c.checkStmts(s.Body, scope)
	case *Print:
		for _, a := range s.Args {
			if err := c.checkExpr(a, scope); err != nil {
				return err
			}
		}
		return nil
	case *Input:
		for _, pair := range s.Pairs {
			if pair.Prompt != nil {
				if err := c.checkExpr(pair.Prompt, scope); err != nil {
					return err
				}
			}
			id, ok := scope.Lookup(pair.Name)
			if !ok || id.Kind != IdentVariable {
				return raise(NameError, s.Pos, "%q is not a declared variable", pair.Name)
			}
		}
		return nil
	case *Return:
		if s.Value != nil {
			return c.checkExpr(s.Value, scope)
		}
		return nil
	case *Import:
		return c.checkStmts(s.Body, scope)
	case *Pass, *Break, *Continue:
		return nil
	case *ExprStmt:
		return c.checkExpr(s.Expr, scope)
	}
	return raise(DesignError, n.Position(), "unchecked statement type %T", n)
}

func zeroValueFor(k ValueKind) *Value {
	switch k {
	case KindChar:
		return NewChar(0)
	case KindInt:
		return NewInt(0)
	case KindFloat:
		return NewFloat(0)
	case KindStr:
		return NewStr("")
	case KindList:
		return NewList(nil)
	default:
		return NewNone()
	}
}

func (c *Checker) checkVarDecl(d *VarDecl, scope *Scope) error {
	if isBuiltinName(d.Name) {
		return raise(NameError, d.Pos, "cannot declare variable with built-in name %q", d.Name)
	}
	if _, exists := scope.LookupLocal(d.Name); exists {
		return raise(NameError, d.Pos, "%q already declared in this scope", d.Name)
	}
	if d.Init != nil {
		if err := c.checkExpr(d.Init, scope); err != nil {
			return err
		}
	}
	scope.Declare(&Identifier{Name: d.Name, Kind: IdentVariable, Value: zeroValueFor(d.Type)})
	return nil
}

// checkFuncDecl pushes a fresh local scope parented directly on global —
// never on the scope a nested declaration happens to sit inside — which
// is what keeps lookups a strict two-level model regardless of where in
// the source a `def` textually appears.
func (c *Checker) checkFuncDecl(fd *FuncDecl, scope *Scope) error {
	local := newScope(c.global)
	for _, param := range fd.Params {
		if isBuiltinName(param) {
			return raise(NameError, fd.Pos, "parameter %q shadows a built-in", param)
		}
		if !local.Declare(&Identifier{Name: param, Kind: IdentVariable, Value: NewNone()}) {
			return raise(NameError, fd.Pos, "duplicate parameter %q", param)
		}
	}
	return c.checkStmts(fd.Body, local)
}

func (c *Checker) checkExpr(n Node, scope *Scope) error {
	switch e := n.(type) {
	case *Literal:
		if err := c.checkLiteral(e); err != nil {
			return err
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *ListLit:
		for _, el := range e.Elements {
			if err := c.checkExpr(el, scope); err != nil {
				return err
			}
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Reference:
		id, ok := scope.Lookup(e.Name)
		if !ok {
			return raise(NameError, e.Pos, "undeclared identifier %q", e.Name)
		}
		if id.Kind != IdentVariable {
			return raise(TypeError, e.Pos, "%q is not a variable", e.Name)
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Call:
		return c.checkCall(e, scope)
	case *Index:
		if err := c.checkExpr(e.Seq, scope); err != nil {
			return err
		}
		if err := c.checkExpr(e.Idx, scope); err != nil {
			return err
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Slice:
		if err := c.checkExpr(e.Seq, scope); err != nil {
			return err
		}
		if e.Start != nil {
			if err := c.checkExpr(e.Start, scope); err != nil {
				return err
			}
		}
		if e.End != nil {
			if err := c.checkExpr(e.End, scope); err != nil {
				return err
			}
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Assign:
		if err := c.checkLValue(e.Target, scope); err != nil {
			return err
		}
		if err := c.checkExpr(e.Value, scope); err != nil {
			return err
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Binary:
		if err := c.checkExpr(e.Left, scope); err != nil {
			return err
		}
		if err := c.checkExpr(e.Right, scope); err != nil {
			return err
		}
		return c.checkTrailer(e.Trailer(), scope)
	case *Unary:
		if err := c.checkExpr(e.Operand, scope); err != nil {
			return err
		}
		return c.checkTrailer(e.Trailer(), scope)
	}
	return raise(DesignError, n.Position(), "unchecked expression type %T", n)
}

func (c *Checker) checkLValue(n Node, scope *Scope) error {
	switch t := n.(type) {
	case *Reference:
		id, ok := scope.Lookup(t.Name)
		if !ok {
			return raise(NameError, t.Pos, "undeclared identifier %q", t.Name)
		}
		if id.Kind != IdentVariable {
			return raise(TypeError, t.Pos, "%q is not a variable", t.Name)
		}
		return nil
	case *Index:
		return c.checkExpr(t, scope)
	default:
		return raise(TypeError, n.Position(), "invalid assignment target")
	}
}

// checkLiteral parses the literal's lexeme at check time so a malformed
// numeric literal surfaces ValueError during checking rather than
// evaluation.
func (c *Checker) checkLiteral(l *Literal) error {
	switch l.Kind {
	case KindInt:
		if _, err := strconv.ParseInt(l.Lexeme, 10, 64); err != nil {
			return raise(ValueError, l.Pos, "invalid int literal %q", l.Lexeme)
		}
	case KindFloat:
		if _, err := strconv.ParseFloat(l.Lexeme, 64); err != nil {
			return raise(ValueError, l.Pos, "invalid float literal %q", l.Lexeme)
		}
	}
	return nil
}

func (c *Checker) checkCall(e *Call, scope *Scope) error {
	if e.checked {
		return nil
	}
	if e.Builtin {
		arity, ok := builtinArity[e.Name]
		if !ok {
			return raise(DesignError, e.Pos, "builtin %q missing from registry", e.Name)
		}
		if len(e.Args) != arity {
			return raise(SyntaxError, e.Pos, "%s() takes %d argument(s), got %d", e.Name, arity, len(e.Args))
		}
	} else {
		id, ok := scope.Lookup(e.Name)
		if !ok {
			return raise(NameError, e.Pos, "call to undeclared function %q", e.Name)
		}
		if id.Kind != IdentFunction {
			return raise(TypeError, e.Pos, "%q is not a function", e.Name)
		}
		if len(e.Args) != len(id.Func.Params) {
			return raise(SyntaxError, e.Pos, "function %q takes %d argument(s), got %d", e.Name, len(id.Func.Params), len(e.Args))
		}
	}
	e.checked = true
	for _, a := range e.Args {
		if err := c.checkExpr(a, scope); err != nil {
			return err
		}
	}
	return c.checkTrailer(e.Trailer(), scope)
}

func (c *Checker) checkTrailer(m *MethodCall, scope *Scope) error {
	if m == nil {
		return nil
	}
	for _, a := range m.Args {
		if err := c.checkExpr(a, scope); err != nil {
			return err
		}
	}
	return nil
}
