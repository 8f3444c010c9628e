package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StorageID   string     `json:"storage_id"`
	StorageType string     `json:"storage_type"`
	Runs        int        `json:"runs"`
	Subscribers int        `json:"subscribers"`
	Journaled   bool       `json:"journaled"`
	Versioned   bool       `json:"versioned"`
	LastOutcome Outcome    `json:"last_outcome,omitempty"`
	LastTarget  string     `json:"last_target,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "storage"
	if comp, ok := s.st.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}
	_, versioned := s.st.(Versioned)

	state := ServiceState{
		StorageID:   s.st.ID(),
		StorageType: storageType,
		Runs:        s.runs,
		Subscribers: len(s.subscribers),
		Journaled:   s.journal != nil,
		Versioned:   versioned,
	}
	if s.last != nil {
		at := s.last.At
		state.LastOutcome = s.last.Outcome
		state.LastTarget = s.last.Target
		state.LastRun = &at
	}
	if s.lastErr != nil {
		state.LastError = s.lastErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "rollover-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
