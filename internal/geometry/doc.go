// Package geometry turns crop, rotate and resize requests into output
// dimensions and the ffmpeg filter graph that produces them.
//
// The filter graph always carries three clauses in a fixed order:
// rotate, crop, scale. Crop boxes are interpreted in rotated coordinates.
package geometry
