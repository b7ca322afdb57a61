package qa

import (
	"fmt"
	"math"

	"github.com/banshee-data/kartqa/internal/perception"
	"github.com/banshee-data/kartqa/internal/scene"
)

// captionThresholds returns the minimum horizontal and vertical offsets a
// kart needs before a directional sentence is emitted for that axis.
func captionThresholds(cfg Config) (horizontal, vertical float64) {
	w := float64(cfg.Perception.ImageWidth)
	h := float64(cfg.Perception.ImageHeight)
	return math.Max(cfg.CaptionMinThreshold, w*cfg.CaptionThresholdFraction),
		math.Max(cfg.CaptionMinThreshold, h*cfg.CaptionThresholdFraction)
}

// GenerateCaptions builds the caption sentences for one view.
func GenerateCaptions(info *scene.SequenceInfo, view int, cfg Config) ([]string, error) {
	karts, err := perception.ExtractKarts(info, view, cfg.Perception)
	if err != nil {
		return nil, err
	}

	if len(karts) == 0 {
		return []string{
			fmt.Sprintf("The track is %s.", info.Track),
			"There are 0 karts in the scene.",
		}, nil
	}

	var captions []string
	ego, hasEgo := perception.Ego(karts)
	if hasEgo {
		captions = append(captions, fmt.Sprintf("%s is the ego car.", ego.Name))
	}
	captions = append(captions,
		fmt.Sprintf("There are %d karts in the scene.", len(karts)),
		fmt.Sprintf("The track is %s.", info.Track),
	)

	if !hasEgo || len(karts) < 2 {
		return captions, nil
	}

	hThresh, vThresh := captionThresholds(cfg)
	for _, k := range karts {
		if k.IsEgo {
			continue
		}

		switch {
		case k.Center.X < ego.Center.X-hThresh:
			captions = append(captions, fmt.Sprintf("%s is left of the ego car.", k.Name))
		case k.Center.X > ego.Center.X+hThresh:
			captions = append(captions, fmt.Sprintf("%s is right of the ego car.", k.Name))
		}

		switch {
		case k.Center.Y < ego.Center.Y-vThresh:
			captions = append(captions, fmt.Sprintf("%s is in front of the ego car.", k.Name))
		case k.Center.Y > ego.Center.Y+vThresh:
			captions = append(captions, fmt.Sprintf("%s is behind the ego car.", k.Name))
		}
	}
	return captions, nil
}
