package exin

import (
	"io"
	"os"

	"github.com/erikdelange/exin-go/internal/tracelog"
)

// Version identifies this implementation, reported by the `-v` command-line
// option.
const Version = "0.1"

// CompiledProgram is a fully parsed and checked module, ready to run. It
// wraps the parse tree so callers outside this package never touch AST
// node types directly.
type CompiledProgram struct {
	prog *Program
}

// Compile loads, lexes, parses and checks the module at path, resolving any
// `import` against searchPath (which may be empty). It returns a
// CompiledProgram ready for Run, or the first SyntaxError/NameError/
// TypeError/ValueError encountered.
func Compile(path string, searchPath []string, opts Options) (*CompiledProgram, error) {
	r, err := newReaderFromFile(path)
	if err != nil {
		return nil, err
	}
	return compileFromReader(r, searchPath, opts)
}

// CompileString parses src as a module named name (used only for error
// messages and as the base for relative imports), primarily for tests and
// embedders that don't want to touch the filesystem.
func CompileString(name, src string, searchPath []string, opts Options) (*CompiledProgram, error) {
	r := newReader(name, src)
	return compileFromReader(r, searchPath, opts)
}

func compileFromReader(r *reader, searchPath []string, opts Options) (*CompiledProgram, error) {
	tracelog.Configure(opts.Debug)
	lex := newLexer(r, opts)
	prog, err := parseProgram(lex, newModuleLoader(searchPath))
	if err != nil {
		return nil, err
	}
	if err := Check(prog); err != nil {
		return nil, err
	}
	return &CompiledProgram{prog: prog}, nil
}

// AST returns the program's parse tree, for the `-d` debug bitmask's
// AST-dump bits; it is the only way outside this package to reach the
// otherwise-unexported *Program.
func (cp *CompiledProgram) AST() *Program { return cp.prog }

// Must panics if err is non-nil, otherwise returns cp, for call sites that
// treat a compile failure as unrecoverable (e.g. embedding a fixed module
// at startup).
func Must(cp *CompiledProgram, err error) *CompiledProgram {
	if err != nil {
		panic(err)
	}
	return cp
}

// Run executes a compiled program, reading `input` statements from in and
// writing `print` statements to out. It returns the numeric value of the
// last expression statement evaluated, or 0 if none evaluated or the last
// one wasn't numeric; on error the returned code is always 0, since
// exit-code mapping from a returned *Error lives in cmd/exin, keeping
// this package free of os.Exit calls.
func (cp *CompiledProgram) Run(in io.Reader, out io.Writer) (int, error) {
	ev := NewEvaluator(in, out)
	return ev.Run(cp.prog)
}

// RunFile is a one-shot convenience entry point: compile then run against
// the process's own stdin/stdout.
func RunFile(path string, searchPath []string, opts Options) (int, error) {
	cp, err := Compile(path, searchPath, opts)
	if err != nil {
		return 0, err
	}
	return cp.Run(os.Stdin, os.Stdout)
}
