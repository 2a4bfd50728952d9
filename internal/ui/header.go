package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Param is a labelled value shown in headers and result boxes. Params keep
// the order they are given in.
type Param struct {
	Key   string
	Value string
}

// P is shorthand for building a Param.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// RenderHeader renders a command header box: the title in capitals, the
// command path underneath and then the params below a divider.
func RenderHeader(title, command string, params []Param, width int) string {
	width = clampWidth(width)

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(title))
	commandLine := HeaderCommandStyle.Render(command)
	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(params) > 0 {
		dividerWidth := max(width-6, 10) // Account for border and padding
		divider := RenderHorizontalDivider(dividerWidth, "─")

		keyWidth := 0
		for _, p := range params {
			keyWidth = max(keyWidth, lipgloss.Width(p.Key)+1)
		}
		lines := make([]string, 0, len(params))
		for _, p := range params {
			key := HeaderParamKeyStyle.Render(padRight(p.Key+":", keyWidth))
			lines = append(lines, key+" "+HeaderParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, content, divider, strings.Join(lines, "\n"))
	}

	return HeaderBorderStyle(width).Render(content)
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
