package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Code    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1B8A3A", Dark: "#3FD16B"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B26B00", Dark: "#F2B53C"}
	colorError   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
)

// NewStyles builds the terminal styles for renderer re.
func NewStyles(re *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: re.NewStyle().Bold(true).Foreground(colorAccent).Underline(true),
		Header2: re.NewStyle().Bold(true).Foreground(colorAccent),
		Bold:    re.NewStyle().Bold(true),
		Muted:   re.NewStyle().Foreground(colorMuted),
		Success: re.NewStyle().Foreground(colorSuccess),
		Warning: re.NewStyle().Foreground(colorWarning),
		Error:   re.NewStyle().Foreground(colorError),
		Info:    re.NewStyle().Foreground(colorAccent),
		Code:    re.NewStyle().Foreground(colorAccent).Italic(true),

		StatusSuccess: re.NewStyle().Foreground(colorSuccess).SetString("✓"),
		StatusFailed:  re.NewStyle().Foreground(colorError).SetString("✗"),
	}
}

// PlainStyles renders text unchanged, for pipes and files.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1:       plain,
		Header2:       plain,
		Bold:          plain,
		Muted:         plain,
		Success:       plain,
		Warning:       plain,
		Error:         plain,
		Info:          plain,
		Code:          plain,
		StatusSuccess: plain.SetString("✓"),
		StatusFailed:  plain.SetString("✗"),
	}
}
