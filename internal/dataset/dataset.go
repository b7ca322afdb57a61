// Package dataset walks a split directory of sequence records and writes the
// QA and caption training files derived from every view that has an image.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/kartqa/internal/config"
	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/monitoring"
	"github.com/banshee-data/kartqa/internal/qa"
	"github.com/banshee-data/kartqa/internal/scene"
	"github.com/banshee-data/kartqa/internal/timeutil"
)

// DefaultQAOutput is the QA dataset filename written inside the split directory.
const DefaultQAOutput = "balanced_qa_pairs.json"

var defaultCaptionOutputs = map[string]string{
	"train": "train_captions.json",
	"valid": "valid_captions.json",
}

// CaptionOutputName returns the default caption filename for split.
func CaptionOutputName(split string) string {
	if name, ok := defaultCaptionOutputs[split]; ok {
		return name
	}
	return split + "_captions.json"
}

// QAEntry is one record of the QA dataset.
type QAEntry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ImageFile string `json:"image_file"`
}

// CaptionEntry is one record of the caption dataset.
type CaptionEntry struct {
	ImageFile string `json:"image_file"`
	Caption   string `json:"caption"`
}

// BuildOptions configures a builder run.
type BuildOptions struct {
	Root   string // dataset root containing one directory per split
	Split  string
	Output string // filename inside the split directory; empty selects the default

	Params config.Params

	// ShowProgress draws a progress bar on stderr.
	ShowProgress bool

	// Clock stamps the manifest; nil uses the wall clock.
	Clock timeutil.Clock
}

// Result summarises a builder run.
type Result struct {
	OutputPath   string
	ManifestPath string
	Sequences    int
	Views        int
	SkippedViews int
	Entries      int
	Fallbacks    int
	Elapsed      time.Duration
}

func (o BuildOptions) splitDir() string {
	return filepath.Join(o.Root, o.Split)
}

// viewFunc derives the entries for one view; imageFile is "<split>/<image>".
type viewFunc func(info *scene.SequenceInfo, view int, imageFile string, stats *qa.Stats) (int, error)

// walk visits every (sequence, view) pair with an image, in sorted info-file
// order and ascending view order.
func walk(ctx context.Context, fsys fsutil.FileSystem, opts BuildOptions, desc string, fn viewFunc) (Result, error) {
	var res Result
	splitDir := opts.splitDir()
	if !fsutil.IsDir(fsys, splitDir) {
		return res, fmt.Errorf("split directory %s does not exist", splitDir)
	}

	infoFiles, err := fsutil.Glob(fsys, splitDir, "*"+scene.InfoSuffix)
	if err != nil {
		return res, fmt.Errorf("failed to list sequences in %s: %w", splitDir, err)
	}

	bar := newProgress(len(infoFiles), desc, opts.ShowProgress)
	defer bar.Finish()

	var stats qa.Stats
	for _, infoPath := range infoFiles {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		info, err := scene.Load(fsys, infoPath)
		if err != nil {
			return res, err
		}
		res.Sequences++

		base := scene.SequenceBase(infoPath)
		for view := 0; view < opts.Params.ViewCount; view++ {
			imageName := scene.ImageName(base, view, opts.Params.ImageExt)
			if !fsys.Exists(filepath.Join(splitDir, imageName)) {
				res.SkippedViews++
				continue
			}
			n, err := fn(info, view, opts.Split+"/"+imageName, &stats)
			if err != nil {
				return res, fmt.Errorf("%s view %d: %w", infoPath, view, err)
			}
			res.Views++
			res.Entries += n
		}
		_ = bar.Add(1)
	}
	res.Fallbacks = stats.Fallbacks
	return res, nil
}

// BuildQA writes the QA dataset for one split.
func BuildQA(ctx context.Context, fsys fsutil.FileSystem, opts BuildOptions) (Result, error) {
	clock := timeutil.OrReal(opts.Clock)
	start := clock.Now()
	cfg := opts.Params.QAConfig()

	entries := []QAEntry{}
	res, err := walk(ctx, fsys, opts, "[cyan][QA][reset] "+opts.Split, func(info *scene.SequenceInfo, view int, imageFile string, stats *qa.Stats) (int, error) {
		pairs, err := qa.GenerateQAPairsWithStats(info, view, cfg, stats)
		if err != nil {
			return 0, err
		}
		for _, p := range pairs {
			entries = append(entries, QAEntry{Question: p.Question, Answer: p.Answer, ImageFile: imageFile})
		}
		return len(pairs), nil
	})
	if err != nil {
		return res, err
	}

	output := opts.Output
	if output == "" {
		output = DefaultQAOutput
	}
	return finish(fsys, opts, "qa", output, entries, res, start)
}

// BuildCaptions writes the caption dataset for one split.
func BuildCaptions(ctx context.Context, fsys fsutil.FileSystem, opts BuildOptions) (Result, error) {
	clock := timeutil.OrReal(opts.Clock)
	start := clock.Now()
	cfg := opts.Params.QAConfig()

	entries := []CaptionEntry{}
	res, err := walk(ctx, fsys, opts, "[cyan][CAP][reset] "+opts.Split, func(info *scene.SequenceInfo, view int, imageFile string, _ *qa.Stats) (int, error) {
		captions, err := qa.GenerateCaptions(info, view, cfg)
		if err != nil {
			return 0, err
		}
		for _, c := range captions {
			entries = append(entries, CaptionEntry{ImageFile: imageFile, Caption: c})
		}
		return len(captions), nil
	})
	if err != nil {
		return res, err
	}

	output := opts.Output
	if output == "" {
		output = CaptionOutputName(opts.Split)
	}
	return finish(fsys, opts, "captions", output, entries, res, start)
}

func finish(fsys fsutil.FileSystem, opts BuildOptions, kind, output string, entries any, res Result, start time.Time) (Result, error) {
	res.OutputPath = filepath.Join(opts.splitDir(), output)
	if err := WriteJSON(fsys, res.OutputPath, entries); err != nil {
		return res, err
	}
	clock := timeutil.OrReal(opts.Clock)
	res.Elapsed = clock.Since(start)

	if opts.Params.WriteManifest {
		m := newManifest(kind, opts, res, clock.Now())
		res.ManifestPath = ManifestPath(res.OutputPath)
		if err := WriteJSON(fsys, res.ManifestPath, m); err != nil {
			return res, err
		}
	}

	monitoring.Logf("dataset: wrote %d %s entries from %d views (%d skipped) to %s",
		res.Entries, kind, res.Views, res.SkippedViews, res.OutputPath)
	if res.Fallbacks > 0 {
		monitoring.Warnf("dataset: %d answers fell back to unnormalized text", res.Fallbacks)
	}
	return res, nil
}
