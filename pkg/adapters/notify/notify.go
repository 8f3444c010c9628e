// Package notify provides core.Notifier implementations for the CLI and daemon.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/todoroll/pkg/core"
)

const (
	prefixSuccess = "[SUCCESS]"
	prefixFail    = "[FAIL]"
)

// Logger forwards notifications to a slog.Logger. Failures are logged at
// error level, everything else at info.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger notifier. A nil logger uses slog.Default.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l}
}

// Notify implements core.Notifier.
func (n *Logger) Notify(msg string) {
	if strings.HasPrefix(msg, prefixFail) {
		n.logger.Error("notification", "message", msg)
		return
	}
	n.logger.Info("notification", "message", msg)
}

// Terminal prints styled, timestamped notifications to a writer.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	now     func() time.Time
	success lipgloss.Style
	fail    lipgloss.Style
	plain   lipgloss.Style
	stamp   lipgloss.Style
}

// NewTerminal returns a Terminal notifier. Colors are enabled only when w
// is a terminal that supports them.
func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:       w,
		now:     time.Now,
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		plain:   r.NewStyle(),
		stamp:   r.NewStyle().Faint(true),
	}
}

// Notify implements core.Notifier.
func (n *Terminal) Notify(msg string) {
	style := n.plain
	switch {
	case strings.HasPrefix(msg, prefixSuccess):
		style = n.success
	case strings.HasPrefix(msg, prefixFail):
		style = n.fail
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "%s %s\n", n.stamp.Render(n.now().Format("15:04:05")), style.Render(msg))
}

// Multi fans a notification out to several notifiers.
type Multi []core.Notifier

// Notify implements core.Notifier.
func (m Multi) Notify(msg string) {
	for _, n := range m {
		if n != nil {
			n.Notify(msg)
		}
	}
}

var (
	_ core.Notifier = (*Logger)(nil)
	_ core.Notifier = (*Terminal)(nil)
	_ core.Notifier = Multi(nil)
)
