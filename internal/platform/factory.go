package platform

import (
	"context"

	"github.com/aretw0/todoroll/pkg/adapters/fs"
	"github.com/aretw0/todoroll/pkg/adapters/notify"
	"github.com/aretw0/todoroll/pkg/adapters/settings"
	"github.com/aretw0/todoroll/pkg/core"
)

// Vault bundles everything wired for one vault.
type Vault struct {
	Service  *core.Service
	Settings core.SettingsStore
	// Repo is nil when a custom storage was injected.
	Repo *fs.Repository
}

// Open wires a rollover service for the vault at uri.
//
//	v, err := platform.Open(ctx, "./notes", platform.WithVersioning(false))
func Open(ctx context.Context, uri string, opts ...Option) (*Vault, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	v := &Vault{Settings: o.settings}

	st := o.storage
	if st == nil {
		repo, err := Init(ctx, uri, opts...)
		if err != nil {
			return nil, err
		}
		v.Repo = repo
		st = repo
	}

	if v.Settings == nil {
		path := settings.FileName
		if v.Repo != nil {
			path = v.Repo.SystemPath(settings.FileName)
		}
		v.Settings = settings.NewStore(path, settings.WithLogger(o.logger))
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = notify.NewLogger(o.logger)
	}

	svcOpts := []core.ServiceOption{
		core.WithNotifier(notifier),
	}
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithLogger(o.logger))
	}
	if o.clock != nil {
		svcOpts = append(svcOpts, core.WithClock(o.clock))
	}
	if size, ok := o.config["event_buffer"].(int); ok && size > 0 {
		svcOpts = append(svcOpts, core.WithEventBuffer(size))
	}

	v.Service = core.NewService(st, svcOpts...)
	return v, nil
}

// New returns only the rollover service for the vault at uri.
func New(uri string, opts ...Option) (*core.Service, error) {
	v, err := Open(context.Background(), uri, opts...)
	if err != nil {
		return nil, err
	}
	return v.Service, nil
}

// Ready returns the signal the trigger installer waits for. Injected
// storages are considered ready immediately.
func (v *Vault) Ready() <-chan struct{} {
	if v.Repo != nil {
		return v.Repo.Ready()
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}
