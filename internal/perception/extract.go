// Package perception turns a sequence's raw detections into the kart
// objects visible in one view, scaled into a target image resolution, and
// selects the ego kart.
package perception

import (
	"math"

	"github.com/banshee-data/kartqa/internal/scene"
)

// Default target resolution and box filter.
const (
	DefaultImageWidth  = 150
	DefaultImageHeight = 100
	DefaultMinBoxSize  = 5
)

// Config controls scaling and filtering. Zero fields are not defaulted;
// use DefaultConfig and override.
type Config struct {
	ImageWidth   int
	ImageHeight  int
	SourceWidth  int
	SourceHeight int
	MinBoxSize   int
}

// DefaultConfig returns the 150×100 target used for dataset generation.
func DefaultConfig() Config {
	return Config{
		ImageWidth:   DefaultImageWidth,
		ImageHeight:  DefaultImageHeight,
		SourceWidth:  scene.SourceWidth,
		SourceHeight: scene.SourceHeight,
		MinBoxSize:   DefaultMinBoxSize,
	}
}

// WithImageSize returns a copy of c targeting a different resolution.
func (c Config) WithImageSize(width, height int) Config {
	c.ImageWidth = width
	c.ImageHeight = height
	return c
}

// Point is a position in target image pixels.
type Point struct {
	X, Y float64
}

// Box is a kart detection scaled into target pixels.
type Box struct {
	InstanceID     int
	X1, Y1, X2, Y2 int
}

// Center returns the midpoint of the box corners.
func (b Box) Center() Point {
	return Point{
		X: float64(b.X1+b.X2) / 2,
		Y: float64(b.Y1+b.Y2) / 2,
	}
}

// KartObject is one kart visible in a view.
type KartObject struct {
	InstanceID int
	Name       string
	Center     Point
	IsEgo      bool
}

// ScaleBoxes returns the kart boxes of a view that survive scaling and
// filtering, in detection order. An out of range view yields no boxes.
func ScaleBoxes(info *scene.SequenceInfo, view int, cfg Config) ([]Box, error) {
	if info.Detections == nil {
		return nil, scene.MissingField("detections")
	}
	dets, ok := info.View(view)
	if !ok {
		return nil, nil
	}

	scaleX := float64(cfg.ImageWidth) / float64(cfg.SourceWidth)
	scaleY := float64(cfg.ImageHeight) / float64(cfg.SourceHeight)

	var boxes []Box
	for _, d := range dets {
		if d.Class != scene.ClassKart {
			continue
		}

		// int() truncates toward zero, matching the reference tooling.
		b := Box{
			InstanceID: d.InstanceID,
			X1:         int(d.X1 * scaleX),
			Y1:         int(d.Y1 * scaleY),
			X2:         int(d.X2 * scaleX),
			Y2:         int(d.Y2 * scaleY),
		}

		if b.X2-b.X1 < cfg.MinBoxSize || b.Y2-b.Y1 < cfg.MinBoxSize {
			continue
		}
		if b.X2 < 0 || b.X1 > cfg.ImageWidth || b.Y2 < 0 || b.Y1 > cfg.ImageHeight {
			continue
		}

		boxes = append(boxes, b)
	}
	return boxes, nil
}

// ExtractKarts returns the karts visible in a view with exactly one marked as
// ego when any are present: the one nearest the frame centre, first wins on
// ties.
func ExtractKarts(info *scene.SequenceInfo, view int, cfg Config) ([]KartObject, error) {
	boxes, err := ScaleBoxes(info, view, cfg)
	if err != nil || len(boxes) == 0 {
		return nil, err
	}
	if info.Karts == nil {
		return nil, scene.MissingField("karts")
	}

	cx := float64(cfg.ImageWidth) / 2
	cy := float64(cfg.ImageHeight) / 2

	karts := make([]KartObject, 0, len(boxes))
	ego := -1
	minDist := math.Inf(1)
	for _, b := range boxes {
		name, ok := info.KartName(b.InstanceID)
		if !ok {
			return nil, scene.MissingField("karts")
		}

		center := b.Center()
		dx, dy := center.X-cx, center.Y-cy
		if dist := math.Sqrt(dx*dx + dy*dy); dist < minDist {
			minDist = dist
			ego = len(karts)
		}

		karts = append(karts, KartObject{
			InstanceID: b.InstanceID,
			Name:       name,
			Center:     center,
		})
	}

	if ego >= 0 {
		karts[ego].IsEgo = true
	}
	return karts, nil
}

// Ego returns the ego kart, if any.
func Ego(karts []KartObject) (KartObject, bool) {
	for _, k := range karts {
		if k.IsEgo {
			return k, true
		}
	}
	return KartObject{}, false
}
