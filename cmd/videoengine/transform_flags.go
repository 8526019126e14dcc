package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"videoengine/internal/engine"
)

const defaultQuality = 80

// transformFlags carries the per-request transforms shared by encode and plan.
type transformFlags struct {
	codec   string
	crop    string
	rotate  int
	width   int
	height  int
	quality int
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.codec, "codec", "", "Output codec (h264, h265, vp9); defaults from the output extension")
	cmd.Flags().StringVar(&f.crop, "crop", "", "Crop box as left,top,right,bottom in rotated-frame pixels")
	cmd.Flags().IntVar(&f.rotate, "rotate", 0, "Clockwise rotation in degrees (0, 90, 180, 270)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Output width; 0 derives it from the aspect ratio")
	cmd.Flags().IntVar(&f.height, "height", 0, "Output height; 0 derives it from the aspect ratio")
	cmd.Flags().IntVar(&f.quality, "quality", defaultQuality, "Quality hint (0-100)")
}

// apply records the transforms on a loaded engine.
func (f *transformFlags) apply(eng *engine.Engine) error {
	if name := strings.TrimSpace(f.codec); name != "" {
		if err := eng.SetFormat(name); err != nil {
			return err
		}
	}
	if strings.TrimSpace(f.crop) != "" {
		box, err := parseCrop(f.crop)
		if err != nil {
			return err
		}
		eng.Crop(box[0], box[1], box[2], box[3])
	}
	if f.rotate != 0 {
		eng.Rotate(f.rotate)
	}
	if f.width != 0 || f.height != 0 {
		eng.Resize(f.width, f.height)
	}
	return nil
}

func parseCrop(value string) ([4]int, error) {
	var box [4]int
	parts := strings.Split(value, ",")
	if len(parts) != len(box) {
		return box, fmt.Errorf("crop %q: expected left,top,right,bottom", value)
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return box, fmt.Errorf("crop %q: %w", value, err)
		}
		box[i] = n
	}
	return box, nil
}
