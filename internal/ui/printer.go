package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes styled CLI output. It is the non-interactive counterpart
// of the TUI: commands print a header, steps and a result box, then exit.
type Printer struct {
	out   io.Writer
	in    io.Reader
	width int
}

// NewPrinter creates a Printer writing to w and reading answers from stdin.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		in:    os.Stdin,
		width: GetTerminalWidth(),
	}
}

// WithInput sets where Confirm reads answers from
func (p *Printer) WithInput(r io.Reader) *Printer {
	p.in = r
	return p
}

// WithWidth overrides the detected terminal width
func (p *Printer) WithWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

// Width returns the width used for boxes
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintStep prints one step line
func (p *Printer) PrintStep(step Step, total int) {
	p.Println(StepLine(step, total))
}

// PrintProgress prints a progress bar and step list
func (p *Printer) PrintProgress(progress *Progress) {
	progress.SetWidth(p.width)
	p.Println(progress.Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(RenderSuccessBox(title, details, p.width))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(RenderWarningBox(title, details, p.width))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
}

// Confirm asks a y/N question on the printer's input
func (p *Printer) Confirm(prompt string) bool {
	return Confirm(p.in, p.out, prompt)
}
