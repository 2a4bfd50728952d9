package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step is one line of a multi-step operation
type Step struct {
	Number  int        // 1-based
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional note, e.g. "blocked: checklist incomplete"
}

// Progress is a bar plus step list for a scripted run
type Progress struct {
	Label string
	Steps []Step
	Width int
	bar   progress.Model
}

// NewProgress creates a progress display with one pending step per name
func NewProgress(label string, names ...string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name}
	}
	p := &Progress{Label: label, Steps: steps}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := min(max(width-20, 20), 50) // Leave room for percentage and step count
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// Update sets a step's status and note. Out of range steps are ignored.
func (p *Progress) Update(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	p.Steps[stepNumber-1].Status = status
	p.Steps[stepNumber-1].Message = message
}

// Step returns a copy of step n (1-based)
func (p *Progress) Step(stepNumber int) Step {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return Step{}
	}
	return p.Steps[stepNumber-1]
}

// Percent is the share of steps that are complete or skipped
func (p *Progress) Percent() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	return float64(done) / float64(len(p.Steps))
}

// Current is the number of the running step, or of the last finished one
func (p *Progress) Current() int {
	current := 0
	for _, s := range p.Steps {
		switch s.Status {
		case StepRunning:
			return s.Number
		case StepComplete, StepFailed, StepSkipped:
			current = s.Number
		}
	}
	return current
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	percent := p.Percent()
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(fmt.Sprintf("%s  %3.0f%%  [%d/%d]",
		p.bar.ViewAs(percent), percent*100, p.Current(), len(p.Steps))))
	b.WriteString("\n\n")

	lines := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		lines = append(lines, StepLine(s, len(p.Steps)))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepLine renders a single step as "  [n/total] name   marker  (note)"
func StepLine(step Step, total int) string {
	var (
		marker string
		style  lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", step.Number, total))
	b.WriteString(style.Render(step.Name))

	// Keep markers in one column
	const nameColumn = 45
	b.WriteString(strings.Repeat(" ", max(nameColumn-lipgloss.Width(step.Name), 1)))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}
