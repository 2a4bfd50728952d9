// Evlease-vehicle is a simulated vehicle that streams its state to the
// evlease app.
//
// It runs the vehicle simulator and publishes a telemetry frame over WebSocket
// on every tick. The server advertises itself over mDNS so the app can find it
// without a configured URL.
//
// Usage:
//
//	evlease-vehicle serve [flags]
//
// See 'evlease-vehicle serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/telemetry"
	"github.com/muurk/evlease/internal/vehicle"
	"github.com/muurk/evlease/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "evlease-vehicle",
	Short: "Simulated vehicle telemetry server",
	Long: `A simulated electric vehicle that streams its state over WebSocket.

The vehicle starts from the vehicle section of the evlease config file.
While driving it drains the battery and adds to the odometer; while
charging it refills the battery. Every connected evlease app receives the
new state on each tick.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host     string
	port     int
	interval time.Duration
	noMDNS   bool
	driving  bool
	charging bool
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the telemetry server",
	Long: `Start streaming simulated vehicle state.

Subscribers connect to ws://<host>:<port>/telemetry. The current state is
also available as JSON at /snapshot, and /healthz reports the subscriber
count.

Unless --no-mdns is given the server registers _evlease._tcp so that
'evlease scan' and the app's auto-discovery can find it.`,
	Example: `  # Parked vehicle on the default port
  evlease-vehicle serve

  # Driving, one frame every 250ms
  evlease-vehicle serve --drive --interval 250ms

  # Charging on a custom port without mDNS
  evlease-vehicle serve --charge --port 9000 --no-mdns`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", telemetry.DefaultPort, "Server port")
	serveCmd.Flags().DurationVar(&interval, "interval", telemetry.DefaultInterval, "Time between telemetry frames")
	serveCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the server over mDNS")
	serveCmd.Flags().BoolVar(&driving, "drive", false, "Start the vehicle driving")
	serveCmd.Flags().BoolVar(&charging, "charge", false, "Start the vehicle charging")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	serveCmd.MarkFlagsMutuallyExclusive("drive", "charge")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	sim := vehicle.NewSimulator(vehicle.FromConfig(settings.Vehicle))
	sim.SetDriving(driving)
	sim.SetCharging(charging)

	srv, err := telemetry.New(&telemetry.Config{
		Host:      host,
		Port:      port,
		Interval:  interval,
		Advertise: !noMDNS,
		LogLevel:  logLevel,
	}, sim)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evlease-vehicle %s (commit: %s)\n", version.Version, version.Commit)
	},
}
