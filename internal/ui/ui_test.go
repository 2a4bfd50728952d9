package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Pay now?")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Pay now? [y/N]:") {
			t.Errorf("prompt = %q, want it to contain the question", out.String())
		}
	}
}

func TestPrinterConfirmUsesInput(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out).WithInput(strings.NewReader("y\n"))
	if !p.Confirm("Continue?") {
		t.Error("Confirm() = false, want true")
	}
}

func TestRenderHeaderKeepsParamOrder(t *testing.T) {
	got := RenderHeader("Lease status", "evlease status",
		[]Param{P("Phase", "ReturnWindow"), P("Days left", "58"), P("Mileage", "24,850 / 30,000")}, 80)

	if !strings.Contains(got, "LEASE STATUS") {
		t.Error("header missing upper-cased title")
	}
	if !strings.Contains(got, "evlease status") {
		t.Error("header missing command")
	}
	phase := strings.Index(got, "Phase:")
	days := strings.Index(got, "Days left:")
	miles := strings.Index(got, "Mileage:")
	if phase < 0 || days < 0 || miles < 0 {
		t.Fatalf("header missing params:\n%s", got)
	}
	if !(phase < days && days < miles) {
		t.Errorf("params out of order:\n%s", got)
	}
}

func TestResultBoxes(t *testing.T) {
	success := RenderSuccessBox("Lease closed", []Param{P("Total", "$450.00")}, 80)
	if !strings.Contains(success, "SUCCESS") || !strings.Contains(success, "$450.00") {
		t.Errorf("success box = %q", success)
	}

	failure := RenderErrorBox("Payment failed", errors.New("declined"), []string{"Try again"}, 80)
	for _, want := range []string{"FAILED", "Error: declined", "Troubleshooting:", "Try again"} {
		if !strings.Contains(failure, want) {
			t.Errorf("error box missing %q:\n%s", want, failure)
		}
	}

	warning := RenderWarningBox("Mileage high", nil, 80)
	if !strings.Contains(warning, "WARNING") {
		t.Errorf("warning box = %q", warning)
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("Demo", "one", "two", "three", "four")

	if got := p.Percent(); got != 0 {
		t.Errorf("Percent() = %v, want 0", got)
	}

	p.Update(1, StepComplete, "")
	p.Update(2, StepSkipped, "")
	p.Update(3, StepRunning, "")
	p.Update(9, StepComplete, "") // ignored

	if got := p.Percent(); got != 0.5 {
		t.Errorf("Percent() = %v, want 0.5", got)
	}
	if got := p.Current(); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}

	p.Update(3, StepFailed, "blocked")
	if got := p.Step(3); got.Status != StepFailed || got.Message != "blocked" {
		t.Errorf("Step(3) = %+v", got)
	}
	if got := p.Current(); got != 3 {
		t.Errorf("Current() after failure = %d, want 3", got)
	}

	out := p.Render()
	if !strings.Contains(out, "[3/4]") || !strings.Contains(out, "(blocked)") {
		t.Errorf("Render() =\n%s", out)
	}
}

func TestStepLineMarkers(t *testing.T) {
	tests := []struct {
		status StepStatus
		marker string
	}{
		{StepComplete, StepMarkerComplete},
		{StepRunning, StepMarkerRunning},
		{StepPending, StepMarkerPending},
		{StepFailed, FailureMarker},
		{StepSkipped, StepMarkerSkipped},
	}
	for _, tt := range tests {
		line := StepLine(Step{Number: 2, Name: "Finalize return", Status: tt.status}, 9)
		if !strings.HasPrefix(line, "  [2/9] ") {
			t.Errorf("StepLine() = %q, want [2/9] prefix", line)
		}
		if !strings.Contains(line, tt.marker) {
			t.Errorf("StepLine(%v) = %q, want marker %q", tt.status, line, tt.marker)
		}
	}
}

func TestClampWidth(t *testing.T) {
	tests := []struct{ in, want int }{
		{10, MinTerminalWidth},
		{80, 80},
		{500, MaxContentWidth},
	}
	for _, tt := range tests {
		if got := clampWidth(tt.in); got != tt.want {
			t.Errorf("clampWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
