package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	Notes         int        `json:"notes"`
	Versioned     bool       `json:"versioned"`
	ReadOnly      bool       `json:"read_only"`
	Ready         bool       `json:"ready"`
	WatcherActive bool       `json:"watcher_active"`
	LastCommit    *time.Time `json:"last_commit,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ready := false
	select {
	case <-r.ready:
		ready = true
	default:
	}

	return RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		Notes:         r.notes,
		Versioned:     r.versioned,
		ReadOnly:      r.config.ReadOnly,
		Ready:         ready,
		WatcherActive: r.watcherActive,
		LastCommit:    r.lastCommit,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}
