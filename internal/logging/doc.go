// Package logging provides structured logging for the prep binaries.
//
// It wraps zap with package-level helpers so callers never pass a logger
// around. Logging is silent by default: nothing is written until a level is
// set through PREP_LOG_LEVEL or the --log-level flag.
//
// # Output
//
// The interactive UI owns the terminal. Set PREP_LOG_FILE (or --log-file) to
// send log lines to a file while the UI is running; otherwise they go to
// stderr. prep-server logs to stderr with the console encoder.
//
// # Usage
//
//	if err := logging.InitializeWithOptions(logging.Options{
//	    Level:   "debug",
//	    File:    "/tmp/prep.log",
//	    Console: true,
//	}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("Upload complete", zap.Int("bytes", n))
//
// # Correlation
//
// Every controller carries a session ID. LogTransition, LogDiscarded and the
// HTTP helpers take it as their first argument so one session's lines can be
// grepped out of a shared log.
package logging
