// Package trigger installs the mechanisms that invoke the rollover: a
// one-shot check once the vault is indexed, an hourly recurring check and,
// in onClick mode, a manual trigger.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/todoroll/pkg/core"
)

const (
	// DefaultInterval is the period of the recurring check.
	DefaultInterval = time.Hour
	// DefaultReadyTimeout bounds the wait for the ready signal.
	DefaultReadyTimeout = 5 * time.Second
)

var (
	// ErrNotInstalled is returned by Click and Reinstall before Start.
	ErrNotInstalled = errors.New("triggers not installed")
	// ErrAlreadyInstalled is returned by Start when triggers are installed.
	ErrAlreadyInstalled = errors.New("triggers already installed")
	// ErrClickDisabled is returned by Click outside onClick mode.
	ErrClickDisabled = errors.New("manual trigger is only available in onClick mode")
)

// Roller runs a rollover. core.Service implements it.
type Roller interface {
	Roll(ctx context.Context, settings core.Settings, force bool) (core.Result, error)
}

// Installer owns the triggers for one vault. Settings changes go through
// Reinstall, which tears everything down before installing again.
type Installer struct {
	roller       Roller
	logger       *slog.Logger
	ready        <-chan struct{}
	readyTimeout time.Duration
	interval     time.Duration

	mu         sync.Mutex
	installed  bool
	settings   core.Settings
	workers    []worker.Worker
	click      bool
	reinstalls int

	// statsMu is separate from mu: checks run inside workers that teardown
	// waits for while holding mu.
	statsMu    sync.Mutex
	lastCheck  time.Time
	lastReason string
	checks     atomic.Int64
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithReady sets the signal that the vault content is indexed. Without it
// the one-shot check waits for the ready timeout.
func WithReady(ready <-chan struct{}) Option {
	return func(i *Installer) {
		i.ready = ready
	}
}

// WithReadyTimeout sets the fallback delay of the one-shot check.
func WithReadyTimeout(d time.Duration) Option {
	return func(i *Installer) {
		if d > 0 {
			i.readyTimeout = d
		}
	}
}

// WithInterval sets the period of the recurring check.
func WithInterval(d time.Duration) Option {
	return func(i *Installer) {
		if d > 0 {
			i.interval = d
		}
	}
}

// New creates an Installer. Nothing runs until Start.
func New(roller Roller, opts ...Option) *Installer {
	i := &Installer{
		roller:       roller,
		logger:       slog.New(slog.DiscardHandler),
		readyTimeout: DefaultReadyTimeout,
		interval:     DefaultInterval,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start installs the triggers for settings.
func (i *Installer) Start(ctx context.Context, settings core.Settings) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed {
		return ErrAlreadyInstalled
	}
	return i.install(ctx, settings.Normalize())
}

// Reinstall tears down the current triggers and installs new ones for settings.
func (i *Installer) Reinstall(ctx context.Context, settings core.Settings) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.installed {
		return ErrNotInstalled
	}
	i.teardown(ctx)
	i.reinstalls++
	return i.install(ctx, settings.Normalize())
}

// Stop removes every trigger. It is safe to call more than once.
func (i *Installer) Stop(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.teardown(ctx)
	return nil
}

// Click runs a forced rollover. It is only available in onClick mode.
func (i *Installer) Click(ctx context.Context) (core.Result, error) {
	i.mu.Lock()
	installed, click, settings := i.installed, i.click, i.settings
	i.mu.Unlock()

	if !installed {
		return core.Result{}, ErrNotInstalled
	}
	if !click {
		return core.Result{}, ErrClickDisabled
	}
	return i.run(ctx, settings, true, "click")
}

// Settings returns the snapshot the triggers were installed with.
func (i *Installer) Settings() core.Settings {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.settings
}

// install must be called with mu held.
func (i *Installer) install(ctx context.Context, settings core.Settings) error {
	i.settings = settings
	i.installed = true

	log := i.logger.With("mode", settings.GenerationMode)

	if !settings.GenerationMode.Automatic() {
		i.click = true
		log.Info("manual trigger installed")
		return nil
	}

	check := func(ctx context.Context, reason string) {
		_, _ = i.run(ctx, settings, false, reason)
	}

	ready := i.ready
	if ready == nil {
		// Never closes: the fallback timeout fires instead.
		ready = make(chan struct{})
	}

	workers := []worker.Worker{
		newReadyWorker(ready, i.readyTimeout, check),
		newTickerWorker(i.interval, check),
	}
	for _, w := range workers {
		if err := w.Start(ctx); err != nil {
			i.workers = append(i.workers, w)
			i.teardown(ctx)
			return fmt.Errorf("failed to start trigger: %w", err)
		}
		i.workers = append(i.workers, w)
	}

	log.Info("automatic triggers installed", "interval", i.interval, "ready_timeout", i.readyTimeout)
	return nil
}

// teardown must be called with mu held.
func (i *Installer) teardown(ctx context.Context) {
	for _, w := range i.workers {
		if err := w.Stop(ctx); err != nil {
			i.logger.Warn("failed to stop trigger", "error", err)
		}
	}
	i.workers = nil
	i.click = false
	i.installed = false
}

func (i *Installer) run(ctx context.Context, settings core.Settings, force bool, reason string) (core.Result, error) {
	i.checks.Add(1)
	i.statsMu.Lock()
	i.lastCheck = time.Now()
	i.lastReason = reason
	i.statsMu.Unlock()

	res, err := i.roller.Roll(ctx, settings, force)
	log := i.logger.With("reason", reason, "run", res.Run)
	switch {
	case errors.Is(err, core.ErrRolloverInProgress):
		log.Debug("rollover skipped, another run holds the vault")
	case err != nil:
		log.Error("rollover check failed", "error", err)
	default:
		log.Debug("rollover check done", "outcome", res.Outcome, "target", res.Target)
	}
	return res, err
}

// InstallerState exposes the installed triggers for observability.
type InstallerState struct {
	Installed  bool                `json:"installed"`
	Mode       core.GenerationMode `json:"mode"`
	Manual     bool                `json:"manual"`
	Workers    []worker.State      `json:"workers,omitempty"`
	Checks     int64               `json:"checks"`
	Reinstalls int                 `json:"reinstalls"`
	LastCheck  time.Time           `json:"last_check,omitzero"`
	LastReason string              `json:"last_reason,omitempty"`
}

// State implements introspection.Introspectable.
func (i *Installer) State() any {
	i.mu.Lock()
	defer i.mu.Unlock()

	states := make([]worker.State, 0, len(i.workers))
	for _, w := range i.workers {
		states = append(states, w.State())
	}

	i.statsMu.Lock()
	defer i.statsMu.Unlock()
	return InstallerState{
		Installed:  i.installed,
		Mode:       i.settings.GenerationMode,
		Manual:     i.click,
		Workers:    states,
		Checks:     i.checks.Load(),
		Reinstalls: i.reinstalls,
		LastCheck:  i.lastCheck,
		LastReason: i.lastReason,
	}
}

// ComponentType implements introspection.Component.
func (i *Installer) ComponentType() string {
	return "trigger-installer"
}

var _ introspection.Introspectable = (*Installer)(nil)
var _ introspection.Component = (*Installer)(nil)
