package exin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkSrc(t *testing.T, src string) error {
	t.Helper()
	lex := newLexer(newReader("test", src), DefaultOptions())
	prog, err := parseProgram(lex, newModuleLoader(nil))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Check(prog)
}

func TestCheckerUndeclaredReferenceIsNameError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "print a\n"), NameError)
}

func TestCheckerDuplicateDeclarationIsNameError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "int a\nint a\n"), NameError)
}

func TestCheckerRedeclareBuiltinIsNameError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "int type\n"), NameError)
}

func TestCheckerFunctionRedeclaresBuiltinIsNameError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "def chr(x):\n\treturn x\n"), NameError)
}

func TestCheckerCallToUndeclaredFunctionIsNameError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "f(1)\n"), NameError)
}

func TestCheckerCallOnVariableIsTypeError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "int f\nf(1)\n"), TypeError)
}

func TestCheckerArityMismatchIsSyntaxError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "def f(x, y):\n\treturn x\nf(1)\n"), SyntaxError)
}

func TestCheckerBuiltinArityMismatchIsSyntaxError(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "type(1, 2)\n"), SyntaxError)
}

func TestCheckerInvalidIntLiteralIsValueError(t *testing.T) {
	// The lexer accepts digit runs greedily, so an out-of-range int literal
	// is syntactically valid but fails strconv.ParseInt at check time.
	assertErrorKind(t, checkSrc(t, "int a\na = 99999999999999999999\n"), ValueError)
}

func TestCheckerInputTargetMustBeVariable(t *testing.T) {
	assertErrorKind(t, checkSrc(t, "input a\n"), NameError)
}

func TestCheckerForwardFunctionReferenceOK(t *testing.T) {
	// Function declarations hoist into the enclosing scope before any
	// statement is checked, so forward and mutually recursive calls
	// resolve regardless of textual order.
	require.NoError(t, checkSrc(t, "def a():\n\treturn b()\ndef b():\n\treturn 1\n"))
}

func TestCheckerValidProgramOK(t *testing.T) {
	src := "int a\nfloat b\nstr s\nlist l\n" +
		"a = 1\nb = 2.0\ns = \"x\"\nl = [1,2,3]\n" +
		"if a == 1:\n\tprint a\nelse:\n\tprint b\n" +
		"for i in l:\n\tprint i\n" +
		"def f(x):\n\treturn x + 1\n" +
		"print f(a)\n"
	require.NoError(t, checkSrc(t, src))
}
