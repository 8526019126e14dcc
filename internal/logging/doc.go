// Package logging builds the slog loggers used by the engine and the CLI.
//
// Two formats are supported: a one-line console format tagged with the
// request stage and a shortened correlation id, and JSON. Both write to stderr
// by default. WithContext copies the stage and request id from a context onto
// a logger; NewComponentLogger names the emitting subsystem.
package logging
