package main

import (
	"flag"
	"fmt"

	"github.com/banshee-data/kartqa/internal/grader"
	"github.com/fatih/color"
)

func (c *cli) handleGrade(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.stderr, "Usage: kartqa grade <qa|captions> [options]")
		return errUsage
	}
	switch args[0] {
	case "qa":
		return c.handleGradeQA(args[1:])
	case "captions":
		return c.handleGradeCaptions(args[1:])
	default:
		fmt.Fprintf(c.stderr, "Unknown grade subcommand: %s\n", args[0])
		return errUsage
	}
}

func (c *cli) handleGradeQA(args []string) error {
	fs := flag.NewFlagSet("grade qa", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	golden := fs.String("golden", "", "Golden QA file (required)")
	generated := fs.String("generated", "", "Generated QA file")
	generatedDir := fs.String("generated-dir", "", "Use the first *_qa_pairs.json in this directory")
	remap := fs.Bool("remap-valid", false, "Map golden valid/ image paths to train/")
	details := fs.Bool("details", true, "List wrong and missing pairs")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "golden", *golden); err != nil {
		return err
	}
	if *generated == "" && *generatedDir == "" {
		fmt.Fprintln(c.stderr, "Error: one of -generated or -generated-dir is required")
		fs.Usage()
		return errUsage
	}
	if _, _, err := c.setup(&common); err != nil {
		return err
	}

	path := *generated
	if path == "" {
		var err error
		if path, err = grader.FindGeneratedQA(c.fsys, *generatedDir); err != nil {
			return err
		}
	}

	want, err := grader.LoadQAFile(c.fsys, *golden)
	if err != nil {
		return err
	}
	got, err := grader.LoadQAFile(c.fsys, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Comparing golden %s against generated %s\n", *golden, path)
	report := grader.CompareQA(want, got, grader.QAOptions{RemapValidToTrain: *remap})
	report.Print(c.stdout, grader.PrintOptions{NoColor: color.NoColor, Details: *details})
	return nil
}

func (c *cli) handleGradeCaptions(args []string) error {
	fs := flag.NewFlagSet("grade captions", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	golden := fs.String("golden", "", "Golden multiple-choice caption file (required)")
	generatedDir := fs.String("generated-dir", "", "Directory of *_captions.json files (required)")
	details := fs.Bool("details", true, "List wrong and missing images")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "golden", *golden); err != nil {
		return err
	}
	if err := requireFlag(fs, "generated-dir", *generatedDir); err != nil {
		return err
	}
	if _, _, err := c.setup(&common); err != nil {
		return err
	}

	want, err := grader.LoadGoldenCaptions(c.fsys, *golden)
	if err != nil {
		return err
	}
	got, err := grader.LoadCaptionDir(c.fsys, *generatedDir)
	if err != nil {
		return err
	}

	report, err := grader.ValidateCaptions(want, got)
	if err != nil {
		return err
	}
	report.Print(c.stdout, grader.PrintOptions{NoColor: color.NoColor, Details: *details})
	return nil
}
