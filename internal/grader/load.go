package grader

import (
	"fmt"

	"github.com/banshee-data/kartqa/internal/dataset"
	"github.com/banshee-data/kartqa/internal/fsutil"
)

// LoadQAFile reads a QA dataset, golden or generated.
func LoadQAFile(fsys fsutil.FileSystem, path string) ([]dataset.QAEntry, error) {
	return dataset.ReadQA(fsys, path)
}

// FindGeneratedQA returns the first "*_qa_pairs.json" file in dir in byte order.
func FindGeneratedQA(fsys fsutil.FileSystem, dir string) (string, error) {
	matches, err := fsutil.Glob(fsys, dir, "*_qa_pairs.json")
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no *_qa_pairs.json found under %s", dir)
	}
	return matches[0], nil
}

// LoadGoldenCaptions reads a multiple-choice caption reference file.
func LoadGoldenCaptions(fsys fsutil.FileSystem, path string) ([]GoldenCaption, error) {
	var golden []GoldenCaption
	if err := dataset.ReadJSON(fsys, path, &golden); err != nil {
		return nil, err
	}
	return golden, nil
}

// LoadCaptionDir concatenates every "*_captions.json" file in dir.
func LoadCaptionDir(fsys fsutil.FileSystem, dir string) ([]dataset.CaptionEntry, error) {
	files, err := fsutil.Glob(fsys, dir, "*_captions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var all []dataset.CaptionEntry
	for _, f := range files {
		entries, err := dataset.ReadCaptions(fsys, f)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}
