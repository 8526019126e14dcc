// Package preflight provides readiness checks for the binaries and
// filesystem paths the video engine depends on.
//
// The CLI "videoengine doctor" command runs RunAll and CheckSystemDeps and
// renders the results as a table. The encode command runs the same checks
// before loading a source so a missing ffmpeg fails fast.
//
// History checks are gated by the [history] enabled toggle.
package preflight
