package fs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename, so readers never see a partial note.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s atomically: %w", filename, err)
	}

	// atomic.WriteFile keeps the mode of a replaced file but not of a new one.
	if err := os.Chmod(filename, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", filename, err)
	}

	return nil
}
