package todoroll

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/todoroll/internal/platform"
	"github.com/aretw0/todoroll/pkg/core"
)

// --- Types ---

// Settings is the rollover configuration snapshot.
type Settings = core.Settings

// GenerationMode selects how often a new todo note is started.
type GenerationMode = core.GenerationMode

// Result describes a single rollover run.
type Result = core.Result

// Vault bundles the rollover service with its storage and settings store.
type Vault = platform.Vault

const (
	ModeDaily      = core.ModeDaily
	ModeWeekly     = core.ModeWeekly
	ModeEveryNDays = core.ModeEveryNDays
	ModeOnClick    = core.ModeOnClick
)

// DefaultSettings returns weekly rollover anchored on 2024-01-01.
func DefaultSettings() Settings {
	return core.DefaultSettings()
}

// --- Configuration ---

// Option defines a functional option for configuring a vault.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the vault directory.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables committing rollovers to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage adapter.
func WithStorage(st core.Storage) Option {
	return platform.WithStorage(st)
}

// WithSettingsStore overrides where rollover settings are persisted.
func WithSettingsStore(s core.SettingsStore) Option {
	return platform.WithSettingsStore(s)
}

// WithNotifier sets where rollover notifications are shown.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithClock overrides the time source of the rollover service.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".todoroll").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer allows specifying the per-subscriber event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithLockTimeout bounds the wait for another process holding the vault lock.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithWatcherErrorHandler receives settings watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithReadOnly opens the vault without allowing rollovers.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a rollover service for the vault at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Open wires the service, storage and settings store for the vault at path.
func Open(ctx context.Context, path string, opts ...Option) (*Vault, error) {
	return platform.Open(ctx, path, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
