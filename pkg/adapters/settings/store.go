// Package settings persists rollover Settings as a JSON file that may carry
// comments and trailing commas.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/aretw0/todoroll/pkg/core"
)

// FileName is the settings file inside the vault system directory.
const FileName = "settings.json"

// Store loads and saves Settings at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store for the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// persisted mirrors core.Settings with optional fields so a partial file
// can be merged over the defaults.
type persisted struct {
	GenerationMode *string `json:"generationMode,omitempty"`
	NDays          *int    `json:"nDays,omitempty"`
	AnchorISODate  *string `json:"anchorISODate,omitempty"`
}

// Load reads the settings file and merges it over core.DefaultSettings.
// A missing file yields the defaults. An unknown generation mode is rejected.
func (s *Store) Load(ctx context.Context) (core.Settings, error) {
	out := core.DefaultSettings()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debug("settings file not found, using defaults", "path", s.path)
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to read settings: %w", err)
	}

	p, err := decode(data)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", core.ErrInvalidSettings, s.path, err)
	}

	if p.GenerationMode != nil {
		mode, err := core.ParseMode(*p.GenerationMode)
		if err != nil {
			return out, err
		}
		out.GenerationMode = mode
	}
	if p.NDays != nil {
		out.NDays = *p.NDays
	}
	if p.AnchorISODate != nil {
		out.AnchorISODate = *p.AnchorISODate
	}

	if err := out.Validate(); err != nil {
		s.logger.Warn("settings normalized", "path", s.path, "error", err)
	}
	return out.Normalize(), nil
}

func decode(data []byte) (persisted, error) {
	var p persisted
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(std, &p); err != nil {
		return p, err
	}
	return p, nil
}

// Save writes the normalized settings atomically.
func (s *Store) Save(ctx context.Context, settings core.Settings) error {
	if _, err := core.ParseMode(string(settings.GenerationMode)); err != nil {
		return err
	}
	settings = settings.Normalize()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	s.logger.Debug("settings saved", "path", s.path, "mode", settings.GenerationMode)
	return nil
}

var _ core.SettingsStore = (*Store)(nil)
