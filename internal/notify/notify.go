// Package notify tells the user what a generation is doing.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/flashcards/internal/logging"
)

// Kind is the severity of a notification.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Error   Kind = "error"
)

// BadgeColor is the card count badge background.
const BadgeColor = "#4285f4"

// Notification is one user-facing status message.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier delivers notifications and card count changes. Delivery is
// cosmetic: callers log errors and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	CardCountChanged(ctx context.Context, total int)
}

type discard struct{}

func (discard) Notify(context.Context, Notification) error { return nil }
func (discard) CardCountChanged(context.Context, int)      {}

// Discard returns a notifier that drops everything.
func Discard() Notifier { return discard{} }

// Terminal writes styled notification lines.
type Terminal struct {
	w      io.Writer
	logger *slog.Logger
	styles map[Kind]lipgloss.Style
	badge  lipgloss.Style
}

// NewTerminal writes to w, or stderr when w is nil.
func NewTerminal(w io.Writer, logger *slog.Logger) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{
		w:      w,
		logger: logging.Default(logger).With("component", "notify"),
		styles: map[Kind]lipgloss.Style{
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		},
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(BadgeColor)).
			Padding(0, 1),
	}
}

func (t *Terminal) Notify(_ context.Context, n Notification) error {
	style, ok := t.styles[n.Kind]
	if !ok {
		style = t.styles[Info]
	}
	_, err := fmt.Fprintln(t.w, style.Render(n.Message))
	return err
}

// CardCountChanged prints the total as a badge.
func (t *Terminal) CardCountChanged(_ context.Context, total int) {
	if _, err := fmt.Fprintln(t.w, t.badge.Render(strconv.Itoa(total))+" cards"); err != nil {
		t.logger.Warn("badge update failed", "err", err)
	}
}

// Send delivers n and logs a failure instead of returning it.
func Send(ctx context.Context, nt Notifier, logger *slog.Logger, kind Kind, msg string) {
	if nt == nil {
		return
	}
	if err := nt.Notify(ctx, Notification{Kind: kind, Message: msg}); err != nil {
		logging.Default(logger).Warn("notification failed", "kind", kind, "err", err)
	}
}

// Recorder keeps every notification in memory. Useful for servers that
// return notifications with a response, and for tests.
type Recorder struct {
	Notifications []Notification
	Totals        []int
}

func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.Notifications = append(r.Notifications, n)
	return nil
}

func (r *Recorder) CardCountChanged(_ context.Context, total int) {
	r.Totals = append(r.Totals, total)
}
