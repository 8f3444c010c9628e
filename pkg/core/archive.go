package core

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// MaxArchiveProbes bounds the suffix search of ArchivePath.
const MaxArchiveProbes = 10000

// ArchivePath returns the first free archive destination for a note name:
// Tasks/Archive/<base>.md, then <base>-1.md, <base>-2.md and so on.
func ArchivePath(ctx context.Context, st Storage, name string) (string, error) {
	base := strings.TrimSuffix(name, path.Ext(name))
	for i := 0; i < MaxArchiveProbes; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := base
		if i > 0 {
			candidate += "-" + strconv.Itoa(i)
		}
		p := path.Join(ArchiveFolder, candidate+NoteExt)
		exists, err := st.Exists(ctx, p)
		if err != nil {
			return "", fmt.Errorf("probe %s: %w", p, err)
		}
		if !exists {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w for %s after %d attempts", ErrArchiveExhausted, name, MaxArchiveProbes)
}
