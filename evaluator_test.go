package exin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runProgram compiles and runs src against no stdin input, returning
// whatever it printed.
func runProgram(t *testing.T, src string) (string, error) {
	t.Helper()
	out, _, err := runProgramWithExitCode(t, src, "")
	return out, err
}

func runProgramWithInput(t *testing.T, src, stdin string) (string, error) {
	t.Helper()
	out, _, err := runProgramWithExitCode(t, src, stdin)
	return out, err
}

// runProgramWithExitCode compiles and runs src, returning what it printed
// plus the exit code Run derives from the last expression-statement value.
func runProgramWithExitCode(t *testing.T, src, stdin string) (string, int, error) {
	t.Helper()
	cp, err := CompileString("test", src, nil, DefaultOptions())
	if err != nil {
		return "", 0, err
	}
	var buf bytes.Buffer
	exitCode, err := cp.Run(strings.NewReader(stdin), &buf)
	return buf.String(), exitCode, err
}

func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err := runProgram(t, src)
	require.NoError(t, err, "running %q", src)
	return out
}

// TestEvaluatorArithmeticCoercionLaw checks that int/int truncates,
// int/float promotes to float, and char participates as the
// lowest-ranked numeric type.
func TestEvaluatorArithmeticCoercionLaw(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1 / 2\n", "0\n"},
		{"print 1 / 2.0\n", "0.5\n"},
		{"print 'a' + 1\n", "98\n"},
		{"float f\nf = 1\nprint f + 1\n", "2\n"},
	}
	for _, c := range cases {
		if got := mustRun(t, c.src); got != c.want {
			t.Errorf("%q => %q, want %q", c.src, got, c.want)
		}
	}
}

func TestEvaluatorDivisionByZero(t *testing.T) {
	_, err := runProgram(t, "print 1 / 0\n")
	assertErrorKind(t, err, DivisionByZeroError)
}

func TestEvaluatorModOnFloatIsNotAllowed(t *testing.T) {
	_, err := runProgram(t, "print 1.0 % 2\n")
	assertErrorKind(t, err, ModNotAllowedError)
}

// TestEvaluatorNegativeIndexSlicing checks negative start/end indices and
// out-of-range bounds on a string slice.
func TestEvaluatorNegativeIndexSlicing(t *testing.T) {
	got := mustRun(t, `str s
s = "abcdef"
print s[-3:]
print s[:-3]
print s[-100:100]
`)
	want := "def\nabc\nabcdef\n"
	require.Equal(t, want, got)
}

// TestEvaluatorListConcatAndRepeat checks list `+` concatenation and `*`
// repetition.
func TestEvaluatorListConcatAndRepeat(t *testing.T) {
	got := mustRun(t, `list a
list b
a = [1,2]
b = [3,4]
print a + b
print a * 3
`)
	want := "[1,2,3,4]\n[1,2,1,2,1,2]\n"
	require.Equal(t, want, got)
}

// TestEvaluatorFibonacci builds a Fibonacci sequence with a for loop over
// a literal list and list.append.
func TestEvaluatorFibonacci(t *testing.T) {
	got := mustRun(t, `list fib
int i, a, b, t
fib = []
a = 0
b = 1
for i in [0,1,2,3,4,5,6,7,8,9]:
	fib.append(a)
	t = a + b
	a = b
	b = t
print fib
`)
	want := "[0,1,1,2,3,5,8,13,21,34]\n"
	require.Equal(t, want, got)
}

// TestEvaluatorChainedAssignment checks that `a = b = c = d` assigns
// right-to-left and every target ends up with the same value.
func TestEvaluatorChainedAssignment(t *testing.T) {
	got := mustRun(t, `int a, b, c, d
d = 9
a = b = c = d
print a
print b
print c
`)
	want := "9\n9\n9\n"
	require.Equal(t, want, got)
}

// TestEvaluatorBreakContinue checks that continue skips the rest of a
// loop body and break exits the loop.
func TestEvaluatorBreakContinue(t *testing.T) {
	got := mustRun(t, `int i
i = 0
while i < 10:
	i = i + 1
	if i % 2 == 0:
		continue
	if i > 7:
		break
	print i
`)
	want := "1\n3\n5\n7\n"
	require.Equal(t, want, got)
}

func TestEvaluatorNestedBreakOnlyExitsInnerLoop(t *testing.T) {
	got := mustRun(t, `int i, j
for i in [1,2]:
	for j in [1,2,3]:
		if j == 2:
			break
		print i * 10 + j
`)
	want := "11\n21\n"
	require.Equal(t, want, got)
}

func TestEvaluatorDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	got := mustRun(t, `int i
i = 5
do:
	print i
while i < 0
`)
	if got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}

// TestEvaluatorCallByValue checks that arguments are deep-copied on call,
// so mutating a list parameter inside a function never affects the
// caller's list.
func TestEvaluatorCallByValue(t *testing.T) {
	got := mustRun(t, `list a
def mutate(l):
	l.append(99)
	return l
a = [1,2]
print mutate(a)
print a
`)
	want := "[1,2,99]\n[1,2]\n"
	require.Equal(t, want, got)
}

func TestEvaluatorForwardAndMutualRecursion(t *testing.T) {
	got := mustRun(t, `def isEven(n):
	if n == 0:
		return 1
	return isOdd(n - 1)
def isOdd(n):
	if n == 0:
		return 0
	return isEven(n - 1)
print isEven(10)
print isOdd(10)
`)
	want := "1\n0\n"
	require.Equal(t, want, got)
}

func TestEvaluatorFunctionWithoutReturnYieldsZero(t *testing.T) {
	got := mustRun(t, `def f():
	pass
print f()
`)
	if got != "0\n" {
		t.Fatalf("got %q, want %q", got, "0\n")
	}
}

// TestEvaluatorScopingLocalsDoNotLeak checks that a variable declared in a
// function body is not visible to top-level code after the call returns.
func TestEvaluatorScopingLocalsDoNotLeak(t *testing.T) {
	_, err := runProgram(t, `def f():
	int x
	x = 1
	return x
f()
print x
`)
	assertErrorKind(t, err, NameError)
}

func TestEvaluatorListMethods(t *testing.T) {
	got := mustRun(t, `list a
a = [1,2,3]
a.append(4)
a.insert(0, 0)
print a
print a.remove(2)
print a
print a.len()
`)
	want := "[0,1,2,3,4]\n2\n[0,1,3,4]\n4\n"
	require.Equal(t, want, got)
}

func TestEvaluatorListIndexAssignment(t *testing.T) {
	got := mustRun(t, `list a
a = [1,2,3]
a[1] = 99
print a
a[-1] += 1
print a
`)
	want := "[1,99,3]\n[1,99,4]\n"
	require.Equal(t, want, got)
}

func TestEvaluatorIndexOutOfRangeIsIndexError(t *testing.T) {
	_, err := runProgram(t, `list a
a = [1,2]
print a[5]
`)
	assertErrorKind(t, err, IndexError)
}

func TestEvaluatorPrintRawSuppressesSeparatorsAndNewline(t *testing.T) {
	got := mustRun(t, `print -raw "a", "b", "c"
`)
	if got != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
}

func TestEvaluatorAndOrDoNotShortCircuit(t *testing.T) {
	// and/or are non-short-circuiting, so both operands are always
	// evaluated; this only matters observably for side effects, but we can
	// still confirm the boolean results are correct for every combination.
	got := mustRun(t, `print 0 and 1
print 1 and 1
print 0 or 0
print 0 or 1
`)
	want := "0\n1\n0\n1\n"
	require.Equal(t, want, got)
}

func TestEvaluatorEqualityNeverErrorsOnMismatchedTypes(t *testing.T) {
	got := mustRun(t, `print 1 == "1"
print [1] != 1
`)
	want := "0\n1\n"
	require.Equal(t, want, got)
}

func TestEvaluatorInputReadsDeclaredType(t *testing.T) {
	got, err := runProgramWithInput(t, `int a
str s
input "give a number: " a
input s
print a + 1
print s
`, "41\nhello\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "give a number: 42\nhello\n"
	require.Equal(t, want, got)
}

// TestEvaluatorRefcountSoundness checks that after a program that
// allocates, reassigns and releases values runs to completion, no value
// remains live beyond what was live before it ran.
func TestEvaluatorRefcountSoundness(t *testing.T) {
	before := liveValues
	_, err := runProgram(t, `list a
int i
a = [1,2,3]
for i in a:
	a.append(i * 2)
a[0] = 100
print a
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liveValues != before {
		t.Fatalf("live value count leaked: before=%d after=%d", before, liveValues)
	}
}

func TestEvaluatorDeterministicReRun(t *testing.T) {
	src := `list a
int i
a = []
for i in [1,2,3,4,5]:
	a.append(i * i)
print a
`
	first := mustRun(t, src)
	second := mustRun(t, src)
	if first != second {
		t.Fatalf("evaluation is not deterministic: %q vs %q", first, second)
	}
}

func TestEvaluatorTypeNameBuiltin(t *testing.T) {
	got := mustRun(t, `print type(1)
print type(1.0)
print type("x")
print type([1])
`)
	want := "int\nfloat\nstr\nlist\n"
	require.Equal(t, want, got)
}

func TestEvaluatorChrOrdBuiltins(t *testing.T) {
	got := mustRun(t, `print chr(65)
print ord("A")
`)
	want := "A\n65\n"
	require.Equal(t, want, got)
}

// TestEvaluatorExitCodeIsLastExpressionStatementValue checks that Run's
// returned exit code comes from the last expression statement evaluated,
// falling back to 0 when that value isn't numeric or none ever ran.
func TestEvaluatorExitCodeIsLastExpressionStatementValue(t *testing.T) {
	_, code, err := runProgramWithExitCode(t, "int a\na = 40\na + 2\n", "")
	require.NoError(t, err)
	require.Equal(t, 42, code)

	_, code, err = runProgramWithExitCode(t, `print "hi"
"not numeric"
`, "")
	require.NoError(t, err)
	require.Equal(t, 0, code)

	_, code, err = runProgramWithExitCode(t, `print "no expression statements here"
`, "")
	require.NoError(t, err)
	require.Equal(t, 0, code)
}
