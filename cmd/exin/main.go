// Command exin is the command-line entry point: it parses arguments,
// loads the named module, drives exin.Compile/Run, and maps a returned
// *exin.Error to a process exit code. Flag parsing uses
// github.com/pborman/getopt/v2, which favours single-dash attached-value
// options (`-tN`) exactly like this command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pborman/getopt/v2"

	"github.com/erikdelange/exin-go"
	"github.com/erikdelange/exin-go/internal/dump"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	help := getopt.BoolLong("help", 'h', "print usage and exit")
	version := getopt.BoolLong("version", 'v', "print version and exit")
	tabWidth := getopt.IntLong("tabwidth", 't', 4, "tab width in spaces")
	debug := getopt.IntLong("debug", 'd', 0, "debug bitmask")

	getopt.SetParameters("module_file")
	if err := getopt.CommandLine.Getopt(append([]string{"exin"}, argv...), nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.Usage()
		return int(SyntaxErrorExit)
	}

	if *help {
		getopt.Usage()
		return 0
	}
	if *version {
		fmt.Println("exin", exin.Version)
		return 0
	}

	args := getopt.Args()
	if len(args) != 1 {
		getopt.Usage()
		return int(SyntaxErrorExit)
	}
	module := args[0]

	opts := exin.Options{TabWidth: *tabWidth, Debug: *debug}

	cp, err := exin.Compile(module, nil, opts)
	if err != nil {
		return report(err)
	}

	if opts.Debug&exin.DebugASTAndStop != 0 {
		dump.AST(os.Stdout, cp.AST())
		return 0
	}
	if opts.Debug&exin.DebugASTAndRun != 0 {
		dump.AST(os.Stdout, cp.AST())
	}

	exitCode, runErr := cp.Run(os.Stdin, os.Stdout)

	if opts.Debug&exin.DebugDumpStdout != 0 {
		dump.Stdout(cp.AST())
	}
	if opts.Debug&exin.DebugDumpFiles != 0 {
		_ = dump.ToFiles(".exin-dump", map[string]interface{}{"ast": cp.AST()})
	}

	if runErr != nil {
		return report(runErr)
	}
	return exitCode
}

// SyntaxErrorExit is the exit code used for command-line usage errors,
// matching the SyntaxError kind since a malformed invocation is, in
// spirit, a syntax error in the program's invocation.
const SyntaxErrorExit = 3

// report prints the diagnostic (file, line, offending source line with
// leading whitespace stripped) and returns the error number that doubles
// as the process exit code.
func report(err error) int {
	fmt.Fprintln(os.Stderr, err)
	var e *exin.Error
	if errors.As(err, &e) {
		if line, available := e.RawLine(); available {
			fmt.Fprintln(os.Stderr, line)
		}
		return int(e.Kind)
	}
	return int(SyntaxErrorExit)
}
