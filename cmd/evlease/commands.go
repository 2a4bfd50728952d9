package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/lease"
	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/sequence"
	"github.com/muurk/evlease/internal/telemetry"
	"github.com/muurk/evlease/internal/tui"
	"github.com/muurk/evlease/internal/ui"
	"github.com/muurk/evlease/internal/vehicle"
)

// Command flags
var (
	logLevel    string
	offline     bool
	presetName  string
	askLease    bool
	scanTimeout int
)

func init() {
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level written to the log file (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&offline, "offline", false, "Do not connect to a vehicle telemetry stream")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)
}

func runApp(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		return errors.New("the app needs an interactive terminal; try 'evlease status' or 'evlease demo --yes'")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	logPath, err := config.GetLogPath()
	if err != nil {
		return err
	}
	if err := logging.InitializeToFile(logLevel, logPath); err != nil {
		return err
	}
	defer logging.Sync()

	sched := sequence.NewChannelScheduler()
	defer sched.Close()

	ctrl := newController(settings, sched, 1)
	defer ctrl.Close()

	opts := tui.Options{
		Controller: ctrl,
		Scheduler:  sched,
		Vehicle:    vehicle.FromConfig(settings.Vehicle),
		Advisor:    newAdvisor(settings),
	}
	if !offline {
		opts.Connect = telemetryConnector(settings.Telemetry)
	}

	p := tea.NewProgram(tui.NewAppModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("app error: %w", err)
	}
	return nil
}

// statusCmd prints the lease state the app would show
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lease status",
	Long: `Print the lease phase, countdown, mileage and what the lease screens
currently offer, computed from the configured lease.

Use --preset to see the state at a point in the lease lifecycle.`,
	Example: `  # Status from the config file
  evlease status

  # Status on return day
  evlease status --preset T-0`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&presetName, "preset", "", "Jump to a preset first (Pre-60, T-60, T-0, T+1)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	ctrl := newController(settings, nil, 1)
	if presetName != "" {
		p, err := lease.ParsePreset(presetName)
		if err != nil {
			return err
		}
		ctrl.ApplyPreset(p)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Lease Status", "evlease status",
		ui.P("Phase", ctrl.Phase().String()),
		ui.P("Status", ctrl.StatusLine()),
	)
	printer.Newline()
	printer.Println(statusTable(ctrl).String())

	if items := ctrl.MenuItems(); len(items) > 0 {
		printer.Newline()
		menu := uitable.New()
		menu.MaxColWidth = 50
		menu.AddRow("MENU", "", "REACHABLE")
		for _, item := range items {
			menu.AddRow(item.Title, item.Subtitle, yesNo(ctrl.Reachable(item.Target)))
		}
		printer.Println(menu.String())
	}

	if ctrl.MileageWarning() {
		printer.Newline()
		printer.PrintWarning("Nearing mileage allowance",
			ui.P("Used", fmt.Sprintf("%.0f%%", ctrl.MileageRatio()*100)),
			ui.P("Remaining", lease.FormatMiles(ctrl.RemainingMiles())+" mi"),
		)
	}
	return nil
}

func statusTable(ctrl *lease.Controller) *uitable.Table {
	r := ctrl.Record()
	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow("Term:", fmt.Sprintf("%d months (%s to %s)", r.TermMonths, r.StartDate, r.MaturityDate))
	tbl.AddRow("Days left:", fmt.Sprintf("%d", r.DaysLeft))
	tbl.AddRow("Mileage:", fmt.Sprintf("%s / %s mi (%.1f%%)",
		lease.FormatMiles(r.CurrentMileage), lease.FormatMiles(r.AllowedMileage), ctrl.MileageRatio()*100))
	tbl.AddRow("Inspection:", yesNo(r.IsInspectionComplete))
	tbl.AddRow("Retention choice:", r.SelectedOption.String())
	scheduled := "no"
	if r.IsScheduled {
		scheduled = r.ScheduledDate
	}
	tbl.AddRow("Scheduled:", scheduled)
	tbl.AddRow("Return action:", yesNo(ctrl.ReturnActionAvailable()))
	tbl.AddRow("Returned:", yesNo(r.IsReturned))
	return tbl
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// askCmd sends one question to the assistant
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the Tesla AI assistant",
	Long: `Ask the assistant a question about the vehicle, or with --lease about
the lease. The API key is read from the environment variable named in the
config file (API_KEY by default). Without one the assistant replies with
a fallback message.`,
	Example: `  # Vehicle question
  evlease ask "How can I maximize my range today?"

  # Lease question
  evlease ask --lease "Should I buy out my lease?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askLease, "lease", false, "Ask about the lease instead of the vehicle")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	prompt := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.Advisor.Timeout()+5*time.Second)
	defer cancel()

	var (
		reply advisor.Message
		ok    bool
	)
	if askLease {
		reply, ok = newController(settings, nil, 1).RequestAdvice(ctx, prompt)
	} else {
		conv := advisor.NewConversation(newAdvisor(settings))
		reply, ok = conv.Ask(ctx, prompt, vehicle.FromConfig(settings.Vehicle).Subject())
	}
	if !ok {
		return fmt.Errorf("question is empty")
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if reply.Fallback {
		printer.PrintWarning("Assistant unavailable", ui.P("Reply", reply.Text))
		return nil
	}
	printer.Println(wordwrap.String(reply.Text, printer.Width()))
	return nil
}

// scanCmd discovers vehicle telemetry servers
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for vehicles on the network",
	Long: `Scan for vehicle telemetry servers using mDNS/DNS-SD discovery.

Vehicles started with 'evlease-vehicle serve' advertise themselves as
_evlease._tcp. Every vehicle that answers within the timeout is listed with
its telemetry URL.`,
	Example: `  # Scan for 5 seconds (default)
  evlease scan

  # Longer scan for slow networks
  evlease scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	fmt.Printf("Scanning for vehicles (timeout: %ds)...\n\n", scanTimeout)

	scanner := telemetry.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	endpoints, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if len(endpoints) == 0 {
		printer.PrintError("No vehicles found", telemetry.ErrNotFound,
			"Start a simulated vehicle with 'evlease-vehicle serve'",
			"Check that multicast traffic is allowed on this network",
			"Try increasing --timeout",
			"Set telemetry.url in the config file to skip discovery",
		)
		return nil
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.AddRow("NAME", "MODEL", "ADDRESS", "URL", "VERSION")
	for _, e := range endpoints {
		tbl.AddRow(e.Name, e.Model, fmt.Sprintf("%s:%d", e.IP, e.Port), e.URL(), e.Version)
	}
	printer.Printf("Found %d vehicle(s):\n\n", len(endpoints))
	printer.Println(tbl.String())
	return nil
}

// configCmd inspects the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		data, err := settings.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, created, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		printer := ui.NewPrinter(cmd.OutOrStdout())
		if !created {
			printer.PrintWarning("Config file already exists", ui.P("Path", path))
			return nil
		}
		printer.PrintSuccess("Config file created", ui.P("Path", path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
