// Package report summarises a generated QA dataset: answer balance per
// question family and how many karts each view holds.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/kartqa/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Family groups questions generated from the same template.
type Family string

const (
	FamilyEgo        Family = "ego"
	FamilyCount      Family = "count"
	FamilyTrack      Family = "track"
	FamilyLeftRight  Family = "left_right"
	FamilyFrontBack  Family = "front_back"
	FamilyRelative   Family = "relative"
	FamilyCountLeft  Family = "count_left"
	FamilyCountRight Family = "count_right"
	FamilyCountFront Family = "count_front"
	FamilyCountBack  Family = "count_back"
	FamilyOther      Family = "other"
)

// Families lists the known families in generation order.
var Families = []Family{
	FamilyEgo, FamilyCount, FamilyTrack,
	FamilyLeftRight, FamilyFrontBack, FamilyRelative,
	FamilyCountLeft, FamilyCountRight, FamilyCountFront, FamilyCountBack,
	FamilyOther,
}

var exactFamilies = map[string]Family{
	"What kart is the ego car?":                       FamilyEgo,
	"How many karts are there in the scenario?":       FamilyCount,
	"What track is this?":                             FamilyTrack,
	"How many karts are to the left of the ego car?":  FamilyCountLeft,
	"How many karts are to the right of the ego car?": FamilyCountRight,
	"How many karts are in front of the ego car?":     FamilyCountFront,
	"How many karts are behind the ego car?":          FamilyCountBack,
}

// Classify returns the family of a question.
func Classify(question string) Family {
	if f, ok := exactFamilies[question]; ok {
		return f
	}
	switch {
	case strings.HasPrefix(question, "Is ") && strings.HasSuffix(question, " to the left or right of the ego car?"):
		return FamilyLeftRight
	case strings.HasPrefix(question, "Is ") && strings.HasSuffix(question, " in front of or behind the ego car?"):
		return FamilyFrontBack
	case strings.HasPrefix(question, "Where is ") && strings.HasSuffix(question, " relative to the ego car?"):
		return FamilyRelative
	}
	return FamilyOther
}

// AnswerCount is one bar of an answer distribution.
type AnswerCount struct {
	Answer string
	Count  int
}

// ViewStats describes karts per view.
type ViewStats struct {
	Views  int
	Mean   float64
	StdDev float64 // sample standard deviation, 0 for fewer than two views
	Max    float64
	// Histogram maps a kart count to the number of views with that count.
	Histogram map[int]int
}

// Summary is the result of Summarize.
type Summary struct {
	Pairs   int
	Images  int
	Answers map[Family][]AnswerCount
	Tracks  []AnswerCount
	Karts   ViewStats
}

// Summarize computes the answer distribution per family and kart count
// statistics across views.
func Summarize(pairs []dataset.QAEntry) Summary {
	answers := make(map[Family]map[string]int)
	tracks := make(map[string]int)
	images := make(map[string]bool)
	var kartCounts []float64
	hist := make(map[int]int)

	for _, p := range pairs {
		images[p.ImageFile] = true
		f := Classify(p.Question)
		if answers[f] == nil {
			answers[f] = make(map[string]int)
		}
		answers[f][p.Answer]++

		switch f {
		case FamilyTrack:
			tracks[p.Answer]++
		case FamilyCount:
			n, err := strconv.Atoi(p.Answer)
			if err != nil {
				continue
			}
			kartCounts = append(kartCounts, float64(n))
			hist[n]++
		}
	}

	s := Summary{
		Pairs:   len(pairs),
		Images:  len(images),
		Answers: make(map[Family][]AnswerCount, len(answers)),
		Tracks:  sortCounts(tracks),
		Karts:   ViewStats{Views: len(kartCounts), Histogram: hist},
	}
	for f, counts := range answers {
		s.Answers[f] = sortCounts(counts)
	}

	if len(kartCounts) > 0 {
		s.Karts.Mean = stat.Mean(kartCounts, nil)
		s.Karts.Max = floats.Max(kartCounts)
	}
	if len(kartCounts) > 1 {
		s.Karts.StdDev = stat.StdDev(kartCounts, nil)
	}
	return s
}

// sortCounts orders by descending count, then answer.
func sortCounts(m map[string]int) []AnswerCount {
	out := make([]AnswerCount, 0, len(m))
	for a, n := range m {
		out = append(out, AnswerCount{Answer: a, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Answer < out[j].Answer
	})
	return out
}
