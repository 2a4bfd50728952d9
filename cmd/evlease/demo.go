package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/lease"
	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/sequence"
	"github.com/muurk/evlease/internal/ui"
)

// Demo command flags
var (
	demoYes   bool
	demoSpeed float64
)

// demoCmd runs the return-day scenario end to end
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the lease return scenario",
	Long: `Run the full lease return on real timers and print each step:

  1. Jump to return day
  2. Start the return flow
  3. Try to finalize with an incomplete checklist (refused)
  4. Complete the pre-inspection walkthrough
  5. Check off keys and personal items
  6. Finalize the return and wait for processing
  7. Receive the final bill
  8. Pay the final bill (asks for confirmation unless --yes)
  9. Answer the satisfaction survey

Timed stages are divided by --speed.`,
	Example: `  # Interactive run at 10x speed (default)
  evlease demo

  # Unattended run at real speed
  evlease demo --yes --speed 1`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVarP(&demoYes, "yes", "y", false, "Authorize the payment without asking")
	demoCmd.Flags().Float64Var(&demoSpeed, "speed", 10, "Divide timed stages by this factor (minimum 1)")

	rootCmd.AddCommand(demoCmd)
}

var demoSteps = []string{
	"Jump to return day (T-0)",
	"Start return flow",
	"Finalize with incomplete checklist",
	"Pre-inspection walkthrough",
	"Keys and personal items",
	"Finalize return",
	"Final bill generated",
	"Pay final bill",
	"Satisfaction survey",
}

// errDeclined ends the demo early without failing the command
var errDeclined = errors.New("payment not authorized")

type demo struct {
	ctrl     *lease.Controller
	sched    *sequence.ChannelScheduler
	printer  *ui.Printer
	progress *ui.Progress
	timeout  time.Duration
}

func runDemo(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	sched := sequence.NewChannelScheduler()
	defer sched.Close()
	ctrl := newController(settings, sched, demoSpeed)
	defer ctrl.Close()

	printer := ui.NewPrinter(cmd.OutOrStdout()).WithInput(cmd.InOrStdin())
	d := &demo{
		ctrl:     ctrl,
		sched:    sched,
		printer:  printer,
		progress: ui.NewProgress("Lease return", demoSteps...).SetWidth(printer.Width()),
		timeout:  30 * time.Second,
	}

	printer.PrintHeader("Lease Return Demo", "evlease demo",
		ui.P("Speed", fmt.Sprintf("%gx", max(demoSpeed, 1))),
		ui.P("Location", lease.ReturnLocation),
		ui.P("Authorize", map[bool]string{true: "automatic", false: "ask"}[demoYes]),
	)
	printer.Newline()

	err = d.run()
	printer.Newline()
	printer.PrintProgress(d.progress)
	printer.Newline()

	switch {
	case errors.Is(err, errDeclined):
		printer.PrintWarning("Demo stopped before payment",
			ui.P("Phase", ctrl.Phase().String()),
			ui.P("Final bill", lease.FormatCents(lease.BillTotal())),
		)
		return nil
	case err != nil:
		printer.PrintError("Demo failed", err,
			"Run with EVLEASE_LOG_LEVEL=debug to see every controller action",
			"Check the timings section of the config file",
		)
		return err
	}

	printer.PrintSuccess("Lease closed",
		ui.P("Phase", ctrl.Phase().String()),
		ui.P("Paid", lease.FormatCents(lease.BillTotal())+" to "+lease.PaymentPayee),
		ui.P("Survey", fmt.Sprintf("%d/5", ctrl.Survey().Score)),
	)
	return nil
}

func (d *demo) run() error {
	c := d.ctrl
	steps := []func() (string, error){
		func() (string, error) {
			if !c.ApplyPreset(lease.PresetT0) || c.Phase() != lease.ReturnDay {
				return "", fmt.Errorf("expected %s, got %s", lease.ReturnDay, c.Phase())
			}
			return c.StatusLine(), nil
		},
		func() (string, error) {
			if !c.StartReturnFlow() {
				return "", errors.New("return flow did not start")
			}
			return "checklist open", nil
		},
		func() (string, error) {
			if c.FinalizeReturn() {
				return "", errors.New("finalize accepted with an incomplete checklist")
			}
			return "blocked: checklist incomplete", nil
		},
		func() (string, error) {
			if !c.SelectSubScreen(lease.Inspection) {
				return "", errors.New("inspection not available")
			}
			for c.SubScreen() == lease.Inspection {
				if !c.CompleteInspectionWalkthrough() {
					return "", fmt.Errorf("walkthrough stuck at step %d", c.WalkthroughStep())
				}
			}
			return "estimate " + lease.FormatCents(lease.EstimateRange[0]) + " - " + lease.FormatCents(lease.EstimateRange[1]), nil
		},
		func() (string, error) {
			c.StartReturnFlow()
			c.SetChecklistFlag(lease.FlagHasKeys, true)
			c.SetChecklistFlag(lease.FlagPersonalItemsRemoved, true)
			if !c.ChecklistReady() {
				return "", errors.New("checklist still incomplete")
			}
			return "checklist complete", nil
		},
		func() (string, error) {
			if !c.FinalizeReturn() {
				return "", errors.New("finalize refused")
			}
			if err := d.await("return processing", func() bool { return c.Phase() == lease.PostReturn }); err != nil {
				return "", err
			}
			return c.PostReturnSummary().Headline, nil
		},
		func() (string, error) {
			if !c.MarkBillReady() {
				return "", errors.New("bill could not be marked ready")
			}
			return lease.FormatCents(lease.BillTotal()) + " due", nil
		},
		func() (string, error) {
			if !c.InitiatePayment(d.confirmer()) {
				return "", errDeclined
			}
			if err := d.await("payment", c.Paid); err != nil {
				return "", err
			}
			return "paid", nil
		},
		func() (string, error) {
			if err := d.await("survey", c.ShowSurvey); err != nil {
				return "", err
			}
			c.SubmitSurveyScore(5, "Smooth return")
			c.DismissSurvey()
			return "5/5 submitted", nil
		},
	}

	for i, step := range steps {
		n := i + 1
		d.progress.Update(n, ui.StepRunning, "")
		msg, err := step()
		if err != nil {
			status := ui.StepFailed
			if errors.Is(err, errDeclined) {
				status = ui.StepSkipped
			}
			d.progress.Update(n, status, err.Error())
			d.printer.PrintStep(d.progress.Step(n), len(steps))
			if status == ui.StepSkipped {
				for rest := n + 1; rest <= len(steps); rest++ {
					d.progress.Update(rest, ui.StepSkipped, "")
				}
			}
			return err
		}
		d.progress.Update(n, ui.StepComplete, msg)
		d.printer.PrintStep(d.progress.Step(n), len(steps))
	}
	return nil
}

// confirmer asks on the terminal unless --yes was given
func (d *demo) confirmer() lease.Confirmer {
	if demoYes {
		return lease.Approve
	}
	return func(prompt string) bool {
		return d.printer.Confirm(prompt)
	}
}

// await runs scheduler callbacks on this goroutine until done reports true
func (d *demo) await(what string, done func() bool) error {
	deadline := time.NewTimer(d.timeout)
	defer deadline.Stop()
	for !done() {
		select {
		case fn := <-d.sched.Fired():
			fn()
		case <-deadline.C:
			return fmt.Errorf("timed out waiting for %s", what)
		}
	}
	return nil
}
