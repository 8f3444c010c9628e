package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/todoroll/pkg/core"
)

// options holds the internal configuration for a todoroll vault.
type options struct {
	storage  core.Storage
	settings core.SettingsStore
	notifier core.Notifier
	logger   *slog.Logger
	clock    func() time.Time
	config   map[string]interface{}
}

// Option defines a functional option for configuring a vault.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithAutoInit enables automatic initialization of the vault (creates the
// directory, and the git repo when versioning is requested).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables committing rollovers to git.
// When unset, versioning is enabled only if the vault already is a git repository.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage allows injecting a custom storage adapter (e.g. mock, remote vault).
// If provided, the default filesystem adapter will be skipped.
func WithStorage(st core.Storage) Option {
	return func(o *options) {
		o.storage = st
	}
}

// WithSettingsStore overrides where rollover settings are persisted.
// Defaults to settings.json in the vault system directory.
func WithSettingsStore(s core.SettingsStore) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithNotifier sets where rollover notifications are shown.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithClock overrides the time source of the rollover service.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".todoroll").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithEventBuffer allows specifying the per-subscriber event buffer.
// Zero means default.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithLockTimeout bounds the wait for the cross-process vault lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["lock_timeout"] = d
	}
}

// WithWatcherErrorHandler registers a callback for settings watcher errors,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Rollovers fail with ErrReadOnly.
// 2. Initialization (Mkdir, Git Init) is skipped.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the "Sandbox" safety mechanism when running via `go run`.
// By default (true), todoroll forces a temporary directory to prevent accidental data loss.
// Setting this to false allows operating on the real filesystem even during `go run`.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
