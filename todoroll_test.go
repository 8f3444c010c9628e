package todoroll_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/todoroll"
	"github.com/aretw0/todoroll/pkg/adapters/fs"
	"github.com/aretw0/todoroll/pkg/core"
)

func TestOpen_LockTimeout(t *testing.T) {
	dir := t.TempDir()
	note := "| Task | Prio | Due | Done |\n|---|---|---|---|\n| ship it | 1 | Fri | |\n"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Tasks"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Tasks", "todo-2025-01-06.md"), []byte(note), 0644))

	var watcherErrs []error
	v, err := todoroll.Open(context.Background(), dir,
		todoroll.WithAutoInit(true),
		todoroll.WithVersioning(false),
		todoroll.WithNotifier(quiet{}),
		todoroll.WithClock(func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local) }),
		todoroll.WithLockTimeout(50*time.Millisecond),
		todoroll.WithWatcherErrorHandler(func(err error) { watcherErrs = append(watcherErrs, err) }),
	)
	require.NoError(t, err)

	// Another process holds the vault.
	require.NoError(t, os.WriteFile(v.Repo.SystemPath(fs.LockFile), []byte("1"), 0644))

	start := time.Now()
	res, err := v.Service.Roll(context.Background(), todoroll.DefaultSettings(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for vault lock")
	assert.Equal(t, core.OutcomeFailed, res.Outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.FileExists(t, filepath.Join(dir, "Tasks", "todo-2025-01-06.md"))
	assert.Empty(t, watcherErrs)
}
