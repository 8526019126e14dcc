// Package engine is the request-level facade over probing, geometry and
// encoding.
//
// An Engine is loaded with a source buffer, collects crop, rotate, resize and
// format calls, and produces encoded bytes on Read. Each Engine owns one
// ffmpeg.Workspace; Close releases it. Engines are not safe for concurrent
// use; run one per request.
//
// Route decides, from the buffer's content type and the [engine] settings,
// whether a buffer belongs to the ffmpeg engine at all.
package engine
