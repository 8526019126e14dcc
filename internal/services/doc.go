// Package services defines shared utilities consumed by the engine, the
// ffmpeg orchestrator, and the prober.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper so probe, encode, and
//     configuration failures can be told apart with errors.Is.
//
// Use these helpers when adding new failure paths so callers (the CLI, the
// history ledger, metrics) classify errors uniformly.
package services
