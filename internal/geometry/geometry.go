package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"videoengine/internal/services"
)

// Size is a frame width and height in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Box is a crop rectangle. Right and Bottom are exclusive edges. The zero Box
// selects the full frame.
type Box struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// IsZero reports whether the box requests no crop.
func (b Box) IsZero() bool {
	return b == Box{}
}

// Request collects the transforms recorded for a single encode.
type Request struct {
	Crop   Box
	Rotate int
	Resize Size
}

// FilterGraph is the resolved rotate, crop and scale chain.
type FilterGraph struct {
	Rotate int
	Crop   Box
	Scale  Size
}

// String renders the graph as an ffmpeg -vf value.
func (g FilterGraph) String() string {
	clauses := []string{g.rotateClause(), g.cropClause(), g.scaleClause()}
	return strings.Join(clauses, ",")
}

func (g FilterGraph) rotateClause() string {
	if g.Rotate == 0 {
		return "rotate=0"
	}
	clause := "rotate=" + strconv.Itoa(g.Rotate) + "*PI/180"
	if swapsAxes(g.Rotate) {
		clause += ":ow=ih:oh=iw"
	}
	return clause
}

func (g FilterGraph) cropClause() string {
	width := g.Crop.Right - g.Crop.Left
	height := g.Crop.Bottom - g.Crop.Top
	return fmt.Sprintf("crop=%d:%d:%d:%d", width, height, g.Crop.Left, g.Crop.Top)
}

func (g FilterGraph) scaleClause() string {
	return fmt.Sprintf("scale=%d:%d:flags=lanczos", g.Scale.Width, g.Scale.Height)
}

// Result holds the dimensions produced by Resolve.
type Result struct {
	Width   int
	Height  int
	Rotated Size
	Cropped Size
	Filter  FilterGraph
}

// Resolve validates req against the source frame size and computes the output
// geometry. Invalid requests are reported as services.ErrConfiguration.
func Resolve(src Size, req Request) (Result, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return Result{}, configError("source", fmt.Sprintf("invalid source size %s", src))
	}
	if !ValidRotation(req.Rotate) {
		return Result{}, configError("rotate", fmt.Sprintf("unsupported rotation %d (want 0, 90, 180 or 270)", req.Rotate))
	}
	if req.Resize.Width < 0 || req.Resize.Height < 0 {
		return Result{}, configError("resize", fmt.Sprintf("negative target size %s", req.Resize))
	}

	rotated := src
	if swapsAxes(req.Rotate) {
		rotated = Size{Width: src.Height, Height: src.Width}
	}

	crop := Box{Right: rotated.Width, Bottom: rotated.Height}
	if !req.Crop.IsZero() {
		crop = Box{
			Left:   clamp(req.Crop.Left, 0, rotated.Width),
			Top:    clamp(req.Crop.Top, 0, rotated.Height),
			Right:  clamp(req.Crop.Right, 0, rotated.Width),
			Bottom: clamp(req.Crop.Bottom, 0, rotated.Height),
		}
		if crop.Right <= crop.Left || crop.Bottom <= crop.Top {
			return Result{}, configError("crop", fmt.Sprintf("crop box %d,%d,%d,%d has no area inside %s",
				req.Crop.Left, req.Crop.Top, req.Crop.Right, req.Crop.Bottom, rotated))
		}
	}
	cropped := Size{Width: crop.Right - crop.Left, Height: crop.Bottom - crop.Top}

	scale := req.Resize
	switch {
	case scale.Width == 0 && scale.Height == 0:
		scale = cropped
	case scale.Width == 0:
		scale.Width = proportional(scale.Height, cropped.Width, cropped.Height)
	case scale.Height == 0:
		scale.Height = proportional(scale.Width, cropped.Height, cropped.Width)
	}

	return Result{
		Width:   scale.Width,
		Height:  scale.Height,
		Rotated: rotated,
		Cropped: cropped,
		Filter:  FilterGraph{Rotate: req.Rotate, Crop: crop, Scale: scale},
	}, nil
}

// ValidRotation reports whether degrees is a supported right-angle rotation.
func ValidRotation(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	default:
		return false
	}
}

func swapsAxes(degrees int) bool {
	return degrees == 90 || degrees == 270
}

// proportional scales known by num/den, rounding to the nearest pixel and
// never returning less than one.
func proportional(known, num, den int) int {
	value := int(math.Round(float64(known) * float64(num) / float64(den)))
	return max(value, 1)
}

func clamp(value, low, high int) int {
	return min(max(value, low), high)
}

func configError(op, msg string) error {
	return services.Wrap(services.ErrConfiguration, "geometry", op, msg, nil)
}
