// Package qa assembles question/answer pairs and caption sentences for one
// view of a sequence from its extracted karts and track name.
package qa

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/kartqa/internal/monitoring"
	"github.com/banshee-data/kartqa/internal/normalize"
	"github.com/banshee-data/kartqa/internal/perception"
	"github.com/banshee-data/kartqa/internal/relation"
	"github.com/banshee-data/kartqa/internal/scene"
)

// Config drives both assemblers.
type Config struct {
	Perception perception.Config

	// Caption sentences need the offset on an axis to exceed
	// max(CaptionMinThreshold, CaptionThresholdFraction × dimension).
	CaptionMinThreshold      float64
	CaptionThresholdFraction float64

	// StrictNormalization turns normalizer fallbacks into errors.
	StrictNormalization bool
}

// DefaultConfig matches the dataset generation defaults.
func DefaultConfig() Config {
	return Config{
		Perception:               perception.DefaultConfig(),
		CaptionMinThreshold:      2.0,
		CaptionThresholdFraction: 0.02,
	}
}

// Pair is one question/answer for a view.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Stats accumulates per-call diagnostics. A nil *Stats is ignored.
type Stats struct {
	Fallbacks int
}

func (s *Stats) fallback() {
	if s != nil {
		s.Fallbacks++
	}
}

// normalizeAnswer applies the normalizer and surfaces fallbacks: they are
// logged and counted, and rejected in strict mode.
func normalizeAnswer(answer string, cfg Config, stats *Stats) (string, error) {
	r := normalize.Canonicalize(answer)
	if !r.Fallback {
		return r.Text, nil
	}
	stats.fallback()
	if cfg.StrictNormalization {
		return "", fmt.Errorf("%w: %q", normalize.ErrUnrecognizedDirection, r.Text)
	}
	monitoring.Warnf("qa: normalizer fallback for answer %q", answer)
	return r.Text, nil
}

// GenerateQAPairs builds the question/answer pairs for one view.
func GenerateQAPairs(info *scene.SequenceInfo, view int, cfg Config) ([]Pair, error) {
	return generateQAPairs(info, view, cfg, nil)
}

// GenerateQAPairsWithStats is GenerateQAPairs that also records normalizer
// fallbacks into stats.
func GenerateQAPairsWithStats(info *scene.SequenceInfo, view int, cfg Config, stats *Stats) ([]Pair, error) {
	return generateQAPairs(info, view, cfg, stats)
}

func generateQAPairs(info *scene.SequenceInfo, view int, cfg Config, stats *Stats) ([]Pair, error) {
	karts, err := perception.ExtractKarts(info, view, cfg.Perception)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	ego, hasEgo := perception.Ego(karts)
	if hasEgo {
		pairs = append(pairs, Pair{"What kart is the ego car?", ego.Name})
	}
	pairs = append(pairs,
		Pair{"How many karts are there in the scenario?", strconv.Itoa(len(karts))},
		Pair{"What track is this?", info.Track},
	)
	if !hasEgo {
		return pairs, nil
	}

	var counts relation.Counts
	for _, k := range karts {
		if k.IsEgo {
			continue
		}
		rel := relation.Classify(ego, k)

		lr, err := normalizeAnswer(string(rel.Horizontal), cfg, stats)
		if err != nil {
			return nil, err
		}
		fb, err := normalizeAnswer(string(rel.Vertical), cfg, stats)
		if err != nil {
			return nil, err
		}
		combined, err := normalizeAnswer(fb+" and "+lr, cfg, stats)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs,
			Pair{fmt.Sprintf("Is %s to the left or right of the ego car?", k.Name), lr},
			Pair{fmt.Sprintf("Is %s in front of or behind the ego car?", k.Name), fb},
			Pair{fmt.Sprintf("Where is %s relative to the ego car?", k.Name), combined},
		)
		counts.Add(rel)
	}

	pairs = append(pairs,
		Pair{"How many karts are to the left of the ego car?", strconv.Itoa(counts.Left)},
		Pair{"How many karts are to the right of the ego car?", strconv.Itoa(counts.Right)},
		Pair{"How many karts are in front of the ego car?", strconv.Itoa(counts.Front)},
		Pair{"How many karts are behind the ego car?", strconv.Itoa(counts.Back)},
	)
	return pairs, nil
}
