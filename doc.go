// Package exin implements the core of a tree-walking interpreter for a
// small, strongly-typed imperative language that mixes traditional
// procedural features with Python-style significant indentation.
//
// The package exposes the five tightly coupled subsystems that define the
// language's semantics: a module reader, an indentation-aware lexer, a
// recursive-descent parser, a semantic checker and a tree-walking
// evaluator with its own reference-counted value model and two-level scope
// stack. Compile and Run are the two entry points most callers need:
//
//	cp, err := exin.Compile("program.ex", nil, exin.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	exitCode, err := cp.Run(os.Stdin, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Command-line parsing and debug dumping are kept in cmd/exin and
// internal/dump so this package stays a small, embeddable library; the
// built-in functions type, chr and ord live in this package.
package exin
