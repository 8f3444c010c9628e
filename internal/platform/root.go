package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootMarkers are the entries that identify a vault root, in lookup order.
var RootMarkers = []string{".todoroll", ".obsidian", ".git"}

// FindRoot recursively looks upwards for a vault root indicator.
// If found, returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range RootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("vault root not found from %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
