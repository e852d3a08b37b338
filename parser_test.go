package exin

import (
	"os"
	"testing"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	lex := newLexer(newReader("test", src), DefaultOptions())
	prog, err := parseProgram(lex, newModuleLoader(nil))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	lex := newLexer(newReader("test", src), DefaultOptions())
	_, err := parseProgram(lex, newModuleLoader(nil))
	if err == nil {
		t.Fatalf("expected a parse error, got none")
	}
	return err
}

// TestParserChainedAssignmentRightAssociative checks that `a = b = c = 3`
// parses as `a = (b = (c = 3))`.
func TestParserChainedAssignmentRightAssociative(t *testing.T) {
	prog := parse(t, "a = b = c = 3\n")
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	es, ok := prog.Stmts[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Stmts[0])
	}
	outer, ok := es.Expr.(*Assign)
	if !ok {
		t.Fatalf("expected Assign, got %T", es.Expr)
	}
	if ref, ok := outer.Target.(*Reference); !ok || ref.Name != "a" {
		t.Fatalf("expected outer target 'a', got %#v", outer.Target)
	}
	mid, ok := outer.Value.(*Assign)
	if !ok {
		t.Fatalf("expected nested Assign, got %T", outer.Value)
	}
	if ref, ok := mid.Target.(*Reference); !ok || ref.Name != "b" {
		t.Fatalf("expected middle target 'b', got %#v", mid.Target)
	}
	inner, ok := mid.Value.(*Assign)
	if !ok {
		t.Fatalf("expected innermost Assign, got %T", mid.Value)
	}
	if ref, ok := inner.Target.(*Reference); !ok || ref.Name != "c" {
		t.Fatalf("expected innermost target 'c', got %#v", inner.Target)
	}
	lit, ok := inner.Value.(*Literal)
	if !ok || lit.Lexeme != "3" {
		t.Fatalf("expected literal 3, got %#v", inner.Value)
	}
}

func TestParserSliceDefaults(t *testing.T) {
	prog := parse(t, "a[:]\na[1:]\na[:2]\na[1:2]\n")
	for i, want := range []struct{ hasStart, hasEnd bool }{
		{false, false}, {true, false}, {false, true}, {true, true},
	} {
		es := prog.Stmts[i].(*ExprStmt)
		sl, ok := es.Expr.(*Slice)
		if !ok {
			t.Fatalf("stmt %d: expected Slice, got %T", i, es.Expr)
		}
		if (sl.Start != nil) != want.hasStart || (sl.End != nil) != want.hasEnd {
			t.Fatalf("stmt %d: start/end presence mismatch: got (%v,%v) want (%v,%v)",
				i, sl.Start != nil, sl.End != nil, want.hasStart, want.hasEnd)
		}
	}
}

func TestParserSingleIndexNotSlice(t *testing.T) {
	prog := parse(t, "a[1]\n")
	es := prog.Stmts[0].(*ExprStmt)
	if _, ok := es.Expr.(*Index); !ok {
		t.Fatalf("expected Index, got %T", es.Expr)
	}
}

func TestParserMethodTrailer(t *testing.T) {
	prog := parse(t, "a.append(1)\n")
	es := prog.Stmts[0].(*ExprStmt)
	ref, ok := es.Expr.(*Reference)
	if !ok {
		t.Fatalf("expected Reference, got %T", es.Expr)
	}
	if ref.Trailer() == nil || ref.Trailer().Name != "append" || len(ref.Trailer().Args) != 1 {
		t.Fatalf("expected a one-arg 'append' trailer, got %#v", ref.Trailer())
	}
}

func TestParserSubscriptThenMethodTrailer(t *testing.T) {
	prog := parse(t, "a[0].len()\n")
	es := prog.Stmts[0].(*ExprStmt)
	idx, ok := es.Expr.(*Index)
	if !ok {
		t.Fatalf("expected Index, got %T", es.Expr)
	}
	if idx.Trailer() == nil || idx.Trailer().Name != "len" {
		t.Fatalf("expected a 'len' trailer on the Index node, got %#v", idx.Trailer())
	}
}

func TestParserVarDeclList(t *testing.T) {
	prog := parse(t, "int a,b,c\n")
	dl, ok := prog.Stmts[0].(*DeclList)
	if !ok {
		t.Fatalf("expected DeclList, got %T", prog.Stmts[0])
	}
	if len(dl.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(dl.Decls))
	}
	for _, d := range dl.Decls {
		if d.Type != KindInt {
			t.Fatalf("expected KindInt, got %v", d.Type)
		}
	}
}

func TestParserSingleVarDeclIsNotAList(t *testing.T) {
	prog := parse(t, "int a\n")
	if _, ok := prog.Stmts[0].(*VarDecl); !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Stmts[0])
	}
}

func TestParserFuncDeclAndCall(t *testing.T) {
	prog := parse(t, "def f(x, y):\n\treturn x + y\nf(1, 2)\n")
	fd, ok := prog.Stmts[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", prog.Stmts[0])
	}
	if fd.Name != "f" || len(fd.Params) != 2 {
		t.Fatalf("unexpected func decl: %#v", fd)
	}
	es := prog.Stmts[1].(*ExprStmt)
	call, ok := es.Expr.(*Call)
	if !ok {
		t.Fatalf("expected Call, got %T", es.Expr)
	}
	if call.Name != "f" || call.Builtin || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %#v", call)
	}
}

func TestParserBuiltinTaggedAtParseTime(t *testing.T) {
	prog := parse(t, "type(1)\n")
	es := prog.Stmts[0].(*ExprStmt)
	call := es.Expr.(*Call)
	if !call.Builtin {
		t.Fatalf("expected type() to be tagged builtin at parse time")
	}
}

func TestParserIfElse(t *testing.T) {
	prog := parse(t, "if 1:\n\tpass\nelse:\n\tpass\n")
	ifn, ok := prog.Stmts[0].(*If)
	if !ok {
		t.Fatalf("expected If, got %T", prog.Stmts[0])
	}
	if len(ifn.Then) != 1 || len(ifn.Else) != 1 {
		t.Fatalf("expected one statement per branch, got then=%d else=%d", len(ifn.Then), len(ifn.Else))
	}
}

func TestParserDoWhile(t *testing.T) {
	prog := parse(t, "do:\n\tpass\nwhile 1\n")
	dw, ok := prog.Stmts[0].(*DoWhile)
	if !ok {
		t.Fatalf("expected DoWhile, got %T", prog.Stmts[0])
	}
	if len(dw.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(dw.Body))
	}
}

func TestParserForLoop(t *testing.T) {
	prog := parse(t, "for i in [1,2,3]:\n\tpass\n")
	f, ok := prog.Stmts[0].(*For)
	if !ok {
		t.Fatalf("expected For, got %T", prog.Stmts[0])
	}
	if f.Var != "i" {
		t.Fatalf("expected loop var 'i', got %q", f.Var)
	}
}

func TestParserMissingColonIsSyntaxError(t *testing.T) {
	err := parseErr(t, "if 1\n\tpass\n")
	assertErrorKind(t, err, SyntaxError)
}

func TestParserDoubleImportIsNameError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/greet.ex", []byte("print \"hi\"\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	lex := newLexer(newReader(dir+"/main.ex", "import greet\nimport greet\n"), DefaultOptions())
	_, err := parseProgram(lex, newModuleLoader([]string{dir}))
	assertErrorKind(t, err, NameError)
}

func TestParserUnresolvedImportIsSystemError(t *testing.T) {
	err := parseErr(t, "import nonexistent\n")
	assertErrorKind(t, err, SystemError)
}

func TestParserMissingInputIdentifierIsSyntaxError(t *testing.T) {
	// A missing identifier after a prompt is a syntax error rather than a
	// silent no-op.
	err := parseErr(t, "input \"prompt\"\n")
	assertErrorKind(t, err, SyntaxError)
}
