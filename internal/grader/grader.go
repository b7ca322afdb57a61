// Package grader compares generated QA and caption datasets against the
// golden reference files and reports what is correct, wrong or missing.
package grader

import (
	"fmt"
	"strings"

	"github.com/banshee-data/kartqa/internal/dataset"
	"github.com/google/go-cmp/cmp"
)

// QAOptions tunes CompareQA.
type QAOptions struct {
	// RemapValidToTrain rewrites golden "valid/..." image paths to
	// "train/..." so a golden validation set can be checked against a
	// dataset generated from the train split.
	RemapValidToTrain bool
}

// QAMismatch is a golden pair whose generated answer differs.
type QAMismatch struct {
	Golden    dataset.QAEntry
	Generated dataset.QAEntry
	Diff      string
}

// QAReport is the outcome of CompareQA.
type QAReport struct {
	Golden    int
	Generated int
	Correct   int
	Wrong     []QAMismatch
	Missing   []dataset.QAEntry
}

// Accuracy is Correct over the golden count, or 0 for an empty golden set.
func (r QAReport) Accuracy() float64 {
	if r.Golden == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Golden)
}

// MapValidToTrain replaces a leading "valid" path element with "train".
func MapValidToTrain(imageFile string) string {
	parts := strings.Split(imageFile, "/")
	if parts[0] != "valid" {
		return imageFile
	}
	parts[0] = "train"
	return strings.Join(parts, "/")
}

type qaKey struct {
	question  string
	imageFile string
}

// CompareQA matches every golden pair with the first generated pair that has
// the same question and image file.
func CompareQA(golden, generated []dataset.QAEntry, opts QAOptions) QAReport {
	first := make(map[qaKey]int, len(generated))
	for i, g := range generated {
		k := qaKey{g.Question, g.ImageFile}
		if _, seen := first[k]; !seen {
			first[k] = i
		}
	}

	report := QAReport{Golden: len(golden), Generated: len(generated)}
	for _, want := range golden {
		image := want.ImageFile
		if opts.RemapValidToTrain {
			image = MapValidToTrain(image)
		}
		i, ok := first[qaKey{want.Question, image}]
		if !ok {
			report.Missing = append(report.Missing, want)
			continue
		}
		got := generated[i]
		if got.Answer == want.Answer {
			report.Correct++
			continue
		}
		report.Wrong = append(report.Wrong, QAMismatch{
			Golden:    want,
			Generated: got,
			Diff:      cmp.Diff(want.Answer, got.Answer),
		})
	}
	return report
}

// GoldenCaption is one multiple-choice caption record.
type GoldenCaption struct {
	ImageFile    string   `json:"image_file"`
	Candidates   []string `json:"candidates"`
	CorrectIndex int      `json:"correct_index"`
}

// Correct returns the caption at CorrectIndex.
func (g GoldenCaption) Correct() (string, error) {
	if g.CorrectIndex < 0 || g.CorrectIndex >= len(g.Candidates) {
		return "", fmt.Errorf("golden caption for %s: correct_index %d out of range [0,%d)",
			g.ImageFile, g.CorrectIndex, len(g.Candidates))
	}
	return g.Candidates[g.CorrectIndex], nil
}

// CaptionMismatch is a golden record whose correct caption was not generated
// for its image.
type CaptionMismatch struct {
	ImageFile string
	Expected  string
	Generated []string
}

// CaptionReport is the outcome of ValidateCaptions.
type CaptionReport struct {
	Golden    int
	Generated int
	Correct   int
	Wrong     []CaptionMismatch
	Missing   []GoldenCaption
}

// Accuracy is Correct over the golden count, or 0 for an empty golden set.
func (r CaptionReport) Accuracy() float64 {
	if r.Golden == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Golden)
}

// ValidateCaptions checks that each golden record's correct caption appears
// among the captions generated for the same image.
func ValidateCaptions(golden []GoldenCaption, generated []dataset.CaptionEntry) (CaptionReport, error) {
	byImage := make(map[string][]string)
	for _, e := range generated {
		byImage[e.ImageFile] = append(byImage[e.ImageFile], e.Caption)
	}

	report := CaptionReport{Golden: len(golden), Generated: len(generated)}
	for _, g := range golden {
		want, err := g.Correct()
		if err != nil {
			return report, err
		}
		captions, ok := byImage[g.ImageFile]
		if !ok {
			report.Missing = append(report.Missing, g)
			continue
		}
		if contains(captions, want) {
			report.Correct++
			continue
		}
		report.Wrong = append(report.Wrong, CaptionMismatch{
			ImageFile: g.ImageFile,
			Expected:  want,
			Generated: captions,
		})
	}
	return report, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
