package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm writes prompt followed by " [y/N]: " to out and reads one line from
// in. Only "y" or "yes" (any case) confirm; anything else, including EOF,
// declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, PromptStyle.Render(prompt+" [y/N]: "))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
