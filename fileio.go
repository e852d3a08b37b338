package exin

import "os"

// readFile loads the full contents of a module file. Kept as its own tiny
// seam (rather than an inline os.ReadFile call in reader.go) so module
// loading for recursive imports and tests can be exercised uniformly.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
