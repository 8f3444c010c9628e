package fs

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/todoroll/pkg/core"
)

// JournalFile is the name of the rollover journal inside the system directory.
const JournalFile = "journal.yaml"

// Pending returns the journaled rollover, if any.
func (r *Repository) Pending(ctx context.Context) (core.JournalEntry, bool, error) {
	data, err := os.ReadFile(r.SystemPath(JournalFile))
	if os.IsNotExist(err) {
		return core.JournalEntry{}, false, nil
	}
	if err != nil {
		return core.JournalEntry{}, false, fmt.Errorf("failed to read journal: %w", err)
	}

	var entry core.JournalEntry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		return core.JournalEntry{}, false, fmt.Errorf("failed to parse journal: %w", err)
	}
	if entry.Archive == "" || entry.Target == "" {
		return core.JournalEntry{}, false, nil
	}
	return entry, true, nil
}

// Record persists e, replacing any previous entry.
func (r *Repository) Record(ctx context.Context, e core.JournalEntry) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := os.MkdirAll(r.systemPath(), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}
	return writeFileAtomic(r.SystemPath(JournalFile), data, 0644)
}

// Clear removes the journal.
func (r *Repository) Clear(ctx context.Context) error {
	err := os.Remove(r.SystemPath(JournalFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}
