package core

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NotePattern matches the bare filename of a dated todo note.
const NotePattern = "todo-[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9].md"

// IsTodoNote reports whether name is a dated todo note filename.
func IsTodoNote(name string) bool {
	ok, err := doublestar.Match(NotePattern, name)
	return err == nil && ok
}

// NoteDate extracts the embedded ISO date of a todo note filename.
func NoteDate(name string) string {
	if !IsTodoNote(name) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(name, NotePrefix), NoteExt)
}

// LocatePrevious picks the newest dated note under TodoFolder, skipping the
// archive and the note named targetName.
func LocatePrevious(files []File, targetName string) (File, bool) {
	var (
		best  File
		found bool
	)
	for _, f := range files {
		if !strings.HasPrefix(f.Path, TodoFolder+"/") || strings.HasPrefix(f.Path, ArchiveFolder+"/") {
			continue
		}
		if f.Name == targetName || !IsTodoNote(f.Name) {
			continue
		}
		if !found || newer(f, best) {
			best, found = f, true
		}
	}
	return best, found
}

// newer orders by embedded date; equal dates fall back to the path so the
// choice does not depend on listing order.
func newer(a, b File) bool {
	da, db := NoteDate(a.Name), NoteDate(b.Name)
	if da != db {
		return da > db
	}
	return a.Path > b.Path
}
