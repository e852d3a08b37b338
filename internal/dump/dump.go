// Package dump implements debug-dump formatting, reachable through the
// `-d` debug bitmask (bits 4/8 for printing the AST, bits 16/32 for
// dumping to stdout or to files after the program exits). It formats
// values with kylelemons/godebug's `pretty` subpackage; checking the
// bitmask is left to the caller.
package dump

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kylelemons/godebug/pretty"
)

// AST pretty-prints any parsed/checked tree (the concrete *exin.Program or
// a Node within it) to w, for debug bits 4 ("print AST and stop") and 8
// ("print AST and execute").
func AST(w *os.File, v interface{}) {
	fmt.Fprintln(w, pretty.Sprint(v))
}

// Stdout implements debug bit 16: dump v to stdout after the program has
// finished running.
func Stdout(v interface{}) {
	fmt.Println(pretty.Sprint(v))
}

// ToFiles implements debug bit 32: dump each named value to its own file
// under dir (created if necessary), one file per key in values.
func ToFiles(dir string, values map[string]interface{}) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, v := range values {
		path := filepath.Join(dir, name+".dump")
		if err := os.WriteFile(path, []byte(pretty.Sprint(v)), 0o644); err != nil {
			return err
		}
	}
	return nil
}
