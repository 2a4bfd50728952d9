// Package ui renders styled, non-interactive output for the evlease CLI.
//
// Commands other than the TUI print a header, a list of steps and a result
// box, then exit. Everything goes through a Printer so output can be captured
// in tests:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Lease Return Demo", "evlease demo", ui.P("Speed", "4x"))
//	p.PrintStep(ui.Step{Number: 1, Name: "Apply T-0 preset", Status: ui.StepComplete}, 9)
//	if p.Confirm("Authorize payment of $450.00 to Tesla Finance?") {
//	    ...
//	}
//	p.PrintSuccess("Lease closed", ui.P("Total", "$450.00"))
//
// Widths are taken from the terminal via golang.org/x/term and clamped to
// MinTerminalWidth..MaxContentWidth. Colors come from lipgloss, which drops
// them automatically when stdout is not a terminal.
//
// # Logging Integration
//
// Zap logging is silent unless EVLEASE_LOG_LEVEL is set, so the curated
// output here is not interleaved with log lines.
package ui
