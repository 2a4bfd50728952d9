// Package logging provides structured logging for evlease.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used across the app, the vehicle server and the CLI.
//
// # Log Levels
//
//   - Debug: ignored lease actions, telemetry frame details
//   - Info: accepted lease actions, phase changes, advice exchanges
//   - Warn: advice failures (the user sees the fallback message)
//   - Error: server startup failures, broken subscriber connections
//
// # Silent By Default
//
// Nothing is logged unless a level is passed to Initialize or the
// EVLEASE_LOG_LEVEL environment variable is set. The TUI calls
// InitializeToFile so log output never interleaves with the alternate screen:
//
//	if err := logging.InitializeToFile("debug", "/tmp/evlease.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Domain Helpers
//
//	logging.LogLeaseAction("finalize_return", false, "ReturnDay")
//	logging.LogPhaseChange("ReturnDay", "PostReturn", -1, "return finalized")
//	logging.LogAdviceExchange(model, len(prompt), latency, fallback, err)
//	logging.LogTelemetry(subscriberID, "subscribed")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
