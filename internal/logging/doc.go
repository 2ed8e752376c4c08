// Package logging provides structured logging for lcdpkt.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used across the packet builder: general leveled logging,
// advisories, button transitions and packet dumps.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Button transitions, raw transport bytes, cell renders
//   - Info: Layer commits, finished packets, sender commands
//   - Warn: Advisories (unknown directives, truncation, rejected values)
//   - Error: Transport failures, startup failures
//
// # Advisories
//
// An advisory is a diagnostic that is logged but never blocks the operator.
// Advisory entries carry advisory=true so they can be filtered:
//
//	logging.Advisory("Truncating packet",
//	    zap.Int("natural", 42),
//	    zap.Int("size", 20),
//	)
//
// # Configuration
//
// Logging is silent unless a level is given, because the emulated display
// owns the terminal. Interactive sessions should send output to a file:
//
//	LCDPKT_LOG_LEVEL=debug LCDPKT_LOG_FILE=/tmp/lcdpkt.log lcdpkt
//
// Initialize at startup:
//
//	if err := logging.InitializeWithOptions(logging.Options{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
