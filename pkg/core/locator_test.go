package core_test

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/todoroll/pkg/core"
)

func files(paths ...string) []core.File {
	out := make([]core.File, len(paths))
	for i, p := range paths {
		out[i] = core.File{Path: p, Name: path.Base(p)}
	}
	return out
}

func TestLocatePrevious(t *testing.T) {
	tests := []struct {
		name   string
		files  []core.File
		target string
		want   string
		found  bool
	}{
		{
			name:   "Picks Newest",
			files:  files("Tasks/todo-2025-01-06.md", "Tasks/todo-2024-12-30.md", "Tasks/todo-2024-12-23.md"),
			target: "todo-2025-01-13.md",
			want:   "Tasks/todo-2025-01-06.md",
			found:  true,
		},
		{
			name:   "Excludes Target",
			files:  files("Tasks/todo-2025-01-13.md", "Tasks/todo-2025-01-06.md"),
			target: "todo-2025-01-13.md",
			want:   "Tasks/todo-2025-01-06.md",
			found:  true,
		},
		{
			name:   "Excludes Archive",
			files:  files("Tasks/Archive/todo-2025-01-10.md", "Tasks/todo-2024-12-30.md"),
			target: "todo-2025-01-13.md",
			want:   "Tasks/todo-2024-12-30.md",
			found:  true,
		},
		{
			name:   "Ignores Other Folders And Names",
			files:  files("todo-2025-01-12.md", "Notes/todo-2025-01-12.md", "Tasks/todo-2025-1-12.md", "Tasks/todo-2025-01-12.txt", "Tasks/readme.md", "Tasks/todo-2025-01-12-1.md"),
			target: "todo-2025-01-13.md",
			found:  false,
		},
		{
			name:   "Only Archived Or Target",
			files:  files("Tasks/todo-2025-01-13.md", "Tasks/Archive/todo-2025-01-06.md"),
			target: "todo-2025-01-13.md",
			found:  false,
		},
		{
			name:   "Newer Than Target Still Eligible",
			files:  files("Tasks/todo-2025-02-01.md", "Tasks/todo-2025-01-06.md"),
			target: "todo-2025-01-13.md",
			want:   "Tasks/todo-2025-02-01.md",
			found:  true,
		},
		{
			name:   "Subfolder Counts As Todo Folder",
			files:  files("Tasks/old/todo-2025-01-07.md", "Tasks/todo-2025-01-06.md"),
			target: "todo-2025-01-13.md",
			want:   "Tasks/old/todo-2025-01-07.md",
			found:  true,
		},
		{
			name:   "Empty",
			target: "todo-2025-01-13.md",
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := core.LocatePrevious(tt.files, tt.target)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got.Path)
			}
		})
	}
}

func TestLocatePrevious_OrderIndependent(t *testing.T) {
	a := files("Tasks/todo-2025-01-06.md", "Tasks/todo-2025-01-05.md", "Tasks/x/todo-2025-01-06.md")
	b := []core.File{a[2], a[1], a[0]}

	gotA, _ := core.LocatePrevious(a, "todo-2025-01-13.md")
	gotB, _ := core.LocatePrevious(b, "todo-2025-01-13.md")
	assert.Equal(t, gotA, gotB)
}

func TestNoteDate(t *testing.T) {
	assert.Equal(t, "2025-01-06", core.NoteDate("todo-2025-01-06.md"))
	assert.Equal(t, "", core.NoteDate("todo-2025-01-06-1.md"))
	assert.True(t, core.IsTodoNote("todo-1999-12-31.md"))
	assert.False(t, core.IsTodoNote("Todo-1999-12-31.md"))
}
