package console

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

var (
	accent  = lipgloss.AdaptiveColor{Light: "#0B7285", Dark: "#3BC9DB"}
	success = lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#69DB7C"}
	warning = lipgloss.AdaptiveColor{Light: "#E67700", Dark: "#FFD43B"}
	failure = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF6B6B"}
	dim     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}
)

// Styles renders console text. The zero value renders plain text.
type Styles struct {
	enabled bool

	banner  lipgloss.Style
	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
}

// NewStyles returns styles that colour output when enabled is true.
func NewStyles(enabled bool) Styles {
	return Styles{
		enabled: enabled,
		banner:  lipgloss.NewStyle().Foreground(accent),
		title:   lipgloss.NewStyle().Bold(true),
		success: lipgloss.NewStyle().Foreground(success),
		warning: lipgloss.NewStyle().Foreground(warning),
		failure: lipgloss.NewStyle().Foreground(failure).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(dim),
	}
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func (s Styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s Styles) Banner(text string) string  { return s.render(s.banner, text) }
func (s Styles) Title(text string) string   { return s.render(s.title, text) }
func (s Styles) Success(text string) string { return s.render(s.success, text) }
func (s Styles) Warning(text string) string { return s.render(s.warning, text) }
func (s Styles) Failure(text string) string { return s.render(s.failure, text) }
func (s Styles) Dim(text string) string     { return s.render(s.dim, text) }

// Status colours a driver status: green Updated, yellow Outdated, red otherwise.
func (s Styles) Status(status drivers.Status) string {
	text := string(status)
	if text == "" {
		text = string(drivers.StatusUnknown)
	}
	switch status {
	case drivers.StatusUpdated:
		return s.Success(text)
	case drivers.StatusOutdated:
		return s.Warning(text)
	default:
		return s.render(s.failure.UnsetBold(), text)
	}
}
