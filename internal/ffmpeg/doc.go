// Package ffmpeg builds and runs the ffmpeg command lines that encode a
// request into h264, h265 or vp9.
//
// Key types:
//   - Builder: turns a Job and a PassPlan into one or two ArgumentVectors
//   - Workspace: the per-request set of temp files (input, pass log, output)
//   - Executor: runs an ArgumentVector; failures surface as *ProcessError
//   - Orchestrator: decides single or two-pass, runs the passes in order and
//     returns the encoded bytes
//
// Per-codec tunables are declared in ordered tables so that the produced
// argument vectors are byte-identical for identical input.
package ffmpeg
