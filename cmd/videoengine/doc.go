// Package main hosts the videoengine CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds an engine per
// invocation, and exposes encoding, probing, dry-run planning, configuration
// scaffolding, the history ledger, and host readiness checks. Encoding logic
// lives in internal/engine; commands here translate flags into engine calls
// and render results.
package main
