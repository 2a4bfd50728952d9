// Evlease is the vehicle owner's terminal app for an EV lease.
//
// It shows the vehicle, tracks the lease term and mileage, and walks the owner
// through returning the car: pre-inspection, retention offers, scheduling,
// the return-day checklist, the final bill, payment and a short survey.
//
// Usage:
//
//	evlease [command] [flags]
//
// Running without arguments launches the full-screen app.
// See 'evlease --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/evlease/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "evlease",
	Short: "EV lease management",
	Long: `A terminal app for managing an electric vehicle lease.

Shows live vehicle state, the lease countdown and mileage, and guides the
return of the vehicle at the end of the term. A Tesla AI assistant answers
questions about the vehicle or the lease when an API key is configured.

If no command is specified, the interactive app will launch automatically.`,
	Version: version.Version,
	RunE:    runApp,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evlease %s (commit: %s)\n", version.Version, version.Commit)
	},
}
