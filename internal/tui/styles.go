package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/evlease/internal/version"
)

// Application branding constants
const (
	AppName   = "EVLEASE"
	GitHubURL = "github.com/muurk/evlease"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 72  // Minimum supported terminal width
	MaxContentWidth   = 120 // Maximum content width before capping
	DefaultBoxPadding = 2   // Default padding inside boxes
)

// Color palette
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#3E6AE1") // Blue
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	AccentColor    = lipgloss.Color("#E82127") // Red, urgent countdowns
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	// Neutral colors
	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#3E6AE1") // Blue (same as primary)
	HighlightColor = lipgloss.Color("#43BF6D") // Green (same as secondary)
)

// Common styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Label style for small uppercase captions
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Bold(true)

	// Menu item style (unselected)
	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	// Menu item style (selected)
	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(HighlightColor).
				Bold(true)

	// Disabled menu item style
	DisabledMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Foreground(SubtleColor)

	// Card style for grouped content
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 2).
			MarginBottom(1)

	// Banner style for informational notices
	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Foreground(TextColor).
			Padding(1, 2)

	// Urgent text, e.g. "DUE TODAY"
	UrgentStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	// Done text, e.g. completed checklist items
	DoneStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	// Warning text
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// Modal box style
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 3)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// User message label in the assistant transcript
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// Assistant message label in the assistant transcript
	ModelLabelStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render(text)
}

// RenderCheck renders a checklist line
func RenderCheck(label string, done bool) string {
	if done {
		return DoneStyle.Render("[✓] " + label)
	}
	return "[ ] " + label
}

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent(status string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)

	parts := []string{left, " ", right}
	if status != "" {
		parts = append(parts, "  ", lipgloss.NewStyle().Foreground(SubtleColor).Render(status))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderApplicationContainer wraps every screen: header, content, and a
// footer with the screen's help text, inside a bordered full-screen panel.
//
//	func (m Model) View() string {
//	    content := m.buildContent()
//	    return RenderApplicationContainer(content, m.Help.View(m.Keys), status, m.Width, m.Height)
//	}
func RenderApplicationContainer(content, footerText, status string, terminalWidth, terminalHeight int) string {
	terminalWidth = max(terminalWidth, MinTerminalWidth)
	terminalHeight = max(terminalHeight, 12)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth-4).
		Padding(1, 2)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(status)),
		contentStyle.Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// SafeModalWidth returns requestedWidth capped so a modal never overflows
func SafeModalWidth(requestedWidth, terminalWidth int) int {
	maxWidth := max(terminalWidth-4, 40)
	return min(requestedWidth, maxWidth)
}

// RenderModal centers modal content on a dimmed screen
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		max(terminalWidth, MinTerminalWidth),
		max(terminalHeight, 12),
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
