package core

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// GenerationMode selects how often a new todo note is started.
type GenerationMode string

const (
	ModeDaily      GenerationMode = "daily"
	ModeWeekly     GenerationMode = "weekly"
	ModeEveryNDays GenerationMode = "everyNDays"
	// ModeOnClick only rolls over when triggered manually.
	ModeOnClick GenerationMode = "onClick"
)

// Modes lists every supported generation mode.
var Modes = []GenerationMode{ModeDaily, ModeWeekly, ModeEveryNDays, ModeOnClick}

// FallbackAnchor is used when AnchorISODate fails strict parsing.
const FallbackAnchor = "2024-01-01"

// Settings is an immutable snapshot of the rollover configuration.
// Changes produce a new value that is handed to the trigger installer.
type Settings struct {
	GenerationMode GenerationMode `json:"generationMode"`
	NDays          int            `json:"nDays"`
	AnchorISODate  string         `json:"anchorISODate"`
}

// DefaultSettings returns the configuration used for missing fields.
func DefaultSettings() Settings {
	return Settings{
		GenerationMode: ModeWeekly,
		NDays:          7,
		AnchorISODate:  FallbackAnchor,
	}
}

// Normalize enforces NDays >= 1 and a known mode in canonical spelling. The anchor is left as is;
// PeriodStart falls back on FallbackAnchor when it does not parse.
func (s Settings) Normalize() Settings {
	if s.NDays < 1 {
		s.NDays = 1
	}
	if m, err := ParseMode(string(s.GenerationMode)); err != nil {
		s.GenerationMode = DefaultSettings().GenerationMode
	} else {
		s.GenerationMode = m
	}
	return s
}

// Validate reports settings a user should be told about.
func (s Settings) Validate() error {
	if _, err := ParseMode(string(s.GenerationMode)); err != nil {
		return err
	}
	if s.NDays < 1 {
		return fmt.Errorf("%w: nDays must be at least 1, got %d", ErrInvalidSettings, s.NDays)
	}
	if _, err := ParseDate(s.AnchorISODate); err != nil {
		return fmt.Errorf("%w: anchorISODate: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Automatic reports whether the mode is driven by timers rather than clicks.
func (m GenerationMode) Automatic() bool {
	return m != ModeOnClick
}

// ParseMode resolves a mode name case-insensitively. Unknown names return
// ErrInvalidSettings with the closest known mode as a suggestion.
func ParseMode(name string) (GenerationMode, error) {
	name = strings.TrimSpace(name)
	for _, m := range Modes {
		if strings.EqualFold(name, string(m)) {
			return m, nil
		}
	}
	if hint := suggestMode(name); hint != "" {
		return "", fmt.Errorf("%w: unknown generation mode %q (did you mean %q?)", ErrInvalidSettings, name, hint)
	}
	return "", fmt.Errorf("%w: unknown generation mode %q", ErrInvalidSettings, name)
}

func suggestMode(name string) string {
	if name == "" {
		return ""
	}
	candidates := make([]string, len(Modes))
	for i, m := range Modes {
		candidates[i] = strings.ToLower(string(m))
	}
	matches := fuzzy.Find(strings.ToLower(name), candidates)
	if len(matches) == 0 {
		return ""
	}
	return string(Modes[matches[0].Index])
}
