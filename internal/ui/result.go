package ui

import (
	"strings"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is a boxed outcome shown at the end of a command
type Result struct {
	Type            ResultType
	Title           string  // e.g., "Lease closed"
	Details         []Param // Shown in order
	Error           error   // Failure results only
	Troubleshooting []string
	Width           int
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	var (
		title string
		color = SuccessColor
	)
	switch r.Type {
	case ResultFailure:
		title = ErrorTitleStyle.Render("   " + FailureMarker + "  FAILED  ─  " + r.Title)
		color = ErrorColor
	case ResultWarning:
		title = WarningTitleStyle.Render("   " + WarningMarker + "  WARNING  ─  " + r.Title)
		color = WarningColor
	default:
		title = SuccessTitleStyle.Render("   " + SuccessMarker + "  SUCCESS  ─  " + r.Title)
	}

	lines := []string{"", title, ""}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}

	if len(r.Details) > 0 {
		for _, d := range r.Details {
			lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
		}
		lines = append(lines, "")
	}

	if len(r.Troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range r.Troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}
		lines = append(lines, TroubleshootingBoxStyle(width).Render(strings.Join(tips, "\n")), "")
	}

	return resultBoxStyle(color, width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details []Param, width int) string {
	return (&Result{Type: ResultSuccess, Title: title, Details: details, Width: width}).Render()
}

// RenderErrorBox renders an error result box with troubleshooting
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	return (&Result{Type: ResultFailure, Title: title, Error: err, Troubleshooting: troubleshooting, Width: width}).Render()
}

// RenderWarningBox renders a warning result box
func RenderWarningBox(title string, details []Param, width int) string {
	return (&Result{Type: ResultWarning, Title: title, Details: details, Width: width}).Render()
}
