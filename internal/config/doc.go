// Package config provides user configuration management for evlease.
//
// This package manages a YAML-based configuration file that seeds the lease
// record and vehicle state the app starts with, the timings of the scripted
// return and payment sequences, the assistant backend, and where live vehicle
// telemetry comes from. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/evlease/config.yaml or $HOME/.config/evlease/config.yaml
//   - macOS: $HOME/.config/evlease/config.yaml
//   - Windows: %LOCALAPPDATA%\evlease\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores the assistant API key. The file only
// names the environment variable to read it from (advisor.api_key_env).
//
// # Seeds, Not State
//
// Lease progress is never written back. Every run starts from the lease and
// vehicle sections; the debug presets in the app are the way to jump phases.
//
// # Usage Example
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(settings.Lease.DaysLeft, settings.Advisor.Model)
//
//	// Write a default file for editing
//	path, created, err := config.CreateDefaultConfig()
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
