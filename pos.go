package exin

// Pos records the source position carried by every AST node: the module
// name, the 1-based line number and the beginning-of-line byte offset, so
// error reporting can recover and echo the offending line.
type Pos struct {
	Module string
	Line   int
	Bol    int
}
