package core

import "context"

// Storage defines the contract the rollover needs from a note store.
// Paths are vault-relative and slash separated (e.g. "Tasks/todo-2025-01-13.md").
// Adhering to this interface keeps the core independent of the
// underlying storage mechanism (filesystem, in-memory, remote vaults).
type Storage interface {
	// ID identifies the vault. Rollovers are serialized per ID.
	ID() string

	// Exists reports whether anything (file or folder) occupies path.
	Exists(ctx context.Context, path string) (bool, error)

	// ReadText returns the content of the file at path.
	// It returns ErrNotFound or ErrNotAFile when path is missing or a folder.
	ReadText(ctx context.Context, path string) (string, error)

	// WriteText replaces the content of an existing file.
	WriteText(ctx context.Context, path, content string) error

	// CreateFile creates a new file. An occupied path yields AlreadyExisted and no error.
	CreateFile(ctx context.Context, path, content string) (CreateResult, error)

	// CreateFolder creates a folder (and parents). An existing folder yields AlreadyExisted.
	CreateFolder(ctx context.Context, path string) (CreateResult, error)

	// Move renames a file. It must never overwrite an existing destination.
	Move(ctx context.Context, from, to string) error

	// ListMarkdown returns every Markdown note in the vault.
	ListMarkdown(ctx context.Context) ([]File, error)
}

// Locker is implemented by storages that can hold a cross-process lock
// for the duration of a rollover.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Versioned is implemented by storages that record history (e.g. Git).
type Versioned interface {
	// Commit records the rollover changes with the given message.
	Commit(ctx context.Context, msg string) error
}

// Journal persists the in-flight state of a rollover so an interrupted run
// can be completed later.
type Journal interface {
	Pending(ctx context.Context) (JournalEntry, bool, error)
	Record(ctx context.Context, e JournalEntry) error
	Clear(ctx context.Context) error
}

// Notifier shows transient user-facing messages. It is fire-and-forget.
type Notifier interface {
	Notify(msg string)
}

// SettingsStore loads and persists rollover settings.
type SettingsStore interface {
	// Load returns the persisted settings merged over DefaultSettings.
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
