package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/kartqa/internal/dataset"
	"github.com/banshee-data/kartqa/internal/report"
	"github.com/banshee-data/kartqa/internal/security"
)

func (c *cli) handleReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	qaPath := fs.String("qa", "", "QA dataset file (required)")
	out := fs.String("out", "", "HTML output path (default <title>_report.html)")
	title := fs.String("title", "", "Page title")
	assets := fs.String("assets-host", "", "Override the echarts assets host")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "qa", *qaPath); err != nil {
		return err
	}
	if _, _, err := c.setup(&common); err != nil {
		return err
	}
	if *out == "" {
		name := *title
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(*qaPath), filepath.Ext(*qaPath))
		}
		*out = security.SanitizeFilename(name) + "_report.html"
	}
	if err := security.ValidateOutputPath(*out); err != nil {
		return err
	}

	pairs, err := dataset.ReadQA(c.fsys, *qaPath)
	if err != nil {
		return err
	}
	s := report.Summarize(pairs)

	f, err := c.fsys.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *out, err)
	}
	if err := report.RenderHTML(s, f, report.HTMLOptions{Title: *title, AssetsHost: *assets}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}

	fmt.Fprintf(c.stdout, "%d pairs over %d images; %.2f karts per view (sd %.2f, max %.0f)\n",
		s.Pairs, s.Images, s.Karts.Mean, s.Karts.StdDev, s.Karts.Max)
	fmt.Fprintf(c.stdout, "Report written to %s\n", *out)
	return nil
}
