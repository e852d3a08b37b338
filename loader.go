package exin

import (
	"os"
	"path/filepath"
)

// moduleLoader resolves an imported module name to a file path, trying each
// entry of a search path in order before falling back to resolving relative
// to the importing file's own directory. An ordered search path lets a
// program import modules from more than one location, e.g. a project
// directory plus a shared library directory.
type moduleLoader struct {
	searchPath []string
}

// newModuleLoader builds a loader over the given search path. An empty
// search path resolves every import relative to the importing file's own
// directory, then the working directory.
func newModuleLoader(searchPath []string) *moduleLoader {
	return &moduleLoader{searchPath: searchPath}
}

// resolve finds the file backing the module named "name", imported from
// the file "from" (empty for the program's own top-level source). It tries
// each search-path directory in order, then falls back to a path relative
// to from's directory, then the bare name in the working directory.
func (l *moduleLoader) resolve(from, name string) (string, error) {
	filename := name + moduleFileExt

	for _, dir := range l.searchPath {
		candidate := filepath.Join(dir, filename)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if from != "" {
		candidate := filepath.Join(filepath.Dir(from), filename)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if fileExists(filename) {
		return filename, nil
	}

	return "", raise(SystemError, Pos{Module: name}, "module %q not found on search path", name)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
