package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/kartqa/internal/config"
	"github.com/banshee-data/kartqa/internal/dataset"
	"github.com/banshee-data/kartqa/internal/monitoring"
	"github.com/banshee-data/kartqa/internal/qa"
	"github.com/banshee-data/kartqa/internal/scene"
	"github.com/banshee-data/kartqa/internal/security"
	"github.com/banshee-data/kartqa/internal/visualiser"
)

// derivation is one of the two dataset kinds, QA pairs or captions.
type derivation struct {
	name  string
	check func(info *scene.SequenceInfo, view int, cfg qa.Config) ([]string, error)
	build func(ctx context.Context, c *cli, opts dataset.BuildOptions) (dataset.Result, error)
}

var qaDerivation = derivation{
	name: "qa",
	check: func(info *scene.SequenceInfo, view int, cfg qa.Config) ([]string, error) {
		pairs, err := qa.GenerateQAPairs(info, view, cfg)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, 2*len(pairs))
		for _, p := range pairs {
			lines = append(lines, "Q: "+p.Question, "A: "+p.Answer)
		}
		return lines, nil
	},
	build: func(ctx context.Context, c *cli, opts dataset.BuildOptions) (dataset.Result, error) {
		return dataset.BuildQA(ctx, c.fsys, opts)
	},
}

var captionDerivation = derivation{
	name: "caption",
	check: func(info *scene.SequenceInfo, view int, cfg qa.Config) ([]string, error) {
		return qa.GenerateCaptions(info, view, cfg)
	},
	build: func(ctx context.Context, c *cli, opts dataset.BuildOptions) (dataset.Result, error) {
		return dataset.BuildCaptions(ctx, c.fsys, opts)
	},
}

func (c *cli) handleQA(args []string) error {
	return c.handleDerivation(qaDerivation, args)
}

func (c *cli) handleCaption(args []string) error {
	return c.handleDerivation(captionDerivation, args)
}

func (c *cli) handleDerivation(d derivation, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(c.stderr, "Usage: kartqa %s <check|build> [options]\n", d.name)
		return errUsage
	}
	switch args[0] {
	case "check":
		return c.handleCheck(d, args[1:])
	case "build":
		return c.handleBuild(d, args[1:])
	default:
		fmt.Fprintf(c.stderr, "Unknown %s subcommand: %s\n", d.name, args[0])
		return errUsage
	}
}

func (c *cli) handleCheck(d derivation, args []string) error {
	fs := flag.NewFlagSet(d.name+" check", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	infoPath := fs.String("info", "", "Sequence record (*_info.json, required)")
	view := fs.Int("view", 0, "View index")
	plotPath := fs.String("plot", "", "Write an annotated PNG of the view to this path")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "info", *infoPath); err != nil {
		return err
	}

	params, logger, err := c.setup(&common)
	if err != nil {
		return err
	}

	info, err := scene.Load(c.fsys, *infoPath)
	if err != nil {
		return err
	}

	base := scene.SequenceBase(*infoPath)
	imagePath := filepath.Join(filepath.Dir(*infoPath), scene.ImageName(base, *view, params.ImageExt))
	fmt.Fprintf(c.stdout, "Sequence: %s  View: %d  Image: %s\n", base, *view, imagePath)
	if ref, err := scene.ParseFrameRef(imagePath); err == nil {
		logger.WithFields(monitoring.Fields{"frame": ref.FrameID, "view": ref.View}).Debug("checking view")
	}

	lines, err := d.check(info, *view, params.QAConfig())
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(c.stdout, l)
	}

	if *plotPath != "" {
		return c.plotView(info, *view, imagePath, *plotPath, params)
	}
	return nil
}

// plotView renders the view over its image when the image exists, otherwise
// over a blank frame of the configured size.
func (c *cli) plotView(info *scene.SequenceInfo, view int, imagePath, out string, params config.Params) error {
	if err := security.ValidateOutputPath(out); err != nil {
		return err
	}

	opts := visualiser.Options{Perception: params.PerceptionConfig()}
	if c.fsys.Exists(imagePath) {
		img, err := scene.LoadImage(c.fsys, imagePath)
		if err != nil {
			return err
		}
		opts.Background = img
	} else {
		monitoring.Warnf("image %s not found; plotting boxes only", imagePath)
	}
	if ref, err := scene.ParseFrameRef(imagePath); err == nil {
		opts.Title = fmt.Sprintf("Frame %d, View %d", ref.FrameID, view)
	}

	if err := visualiser.RenderView(c.fsys, info, view, out, opts); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Plot written to %s\n", out)
	return nil
}

func (c *cli) handleBuild(d derivation, args []string) error {
	fs := flag.NewFlagSet(d.name+" build", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	root := fs.String("root", "data", "Dataset root directory")
	split := fs.String("split", "train", "Split directory under root")
	output := fs.String("output", "", "Output filename inside the split directory")
	progress := fs.Bool("progress", false, "Show a progress bar")
	if err := parse(fs, args); err != nil {
		return err
	}

	params, logger, err := c.setup(&common)
	if err != nil {
		return err
	}

	if *output != "" && filepath.Base(*output) != *output {
		return fmt.Errorf("-output must be a filename, got %q", *output)
	}

	res, err := d.build(c.ctx, c, dataset.BuildOptions{
		Root:         *root,
		Split:        *split,
		Output:       *output,
		Params:       params,
		ShowProgress: *progress,
	})
	if err != nil {
		return err
	}

	logger.WithFields(monitoring.Fields{
		"split":     *split,
		"sequences": res.Sequences,
		"views":     res.Views,
		"skipped":   res.SkippedViews,
		"fallbacks": res.Fallbacks,
		"elapsed":   res.Elapsed.Round(time.Millisecond).String(),
	}).Info("dataset built")
	fmt.Fprintf(c.stdout, "Saved %d entries to %s\n", res.Entries, res.OutputPath)
	return nil
}
