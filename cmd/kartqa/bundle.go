package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/kartqa/internal/bundle"
	"github.com/banshee-data/kartqa/internal/security"
	"github.com/fatih/color"
	"github.com/mitchellh/colorstring"
)

func (c *cli) handleBundle(args []string) error {
	fs := flag.NewFlagSet("bundle", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var common commonFlags
	common.register(fs)
	homework := fs.String("homework", "homework", "Homework directory to package")
	id := fs.String("id", "", "Submission id, used as the zip name (required)")
	outDir := fs.String("out", ".", "Directory to write <id>.zip into")
	list := fs.Bool("list", true, "Print every archived path")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "id", *id); err != nil {
		return err
	}
	if _, _, err := c.setup(&common); err != nil {
		return err
	}
	if err := security.ValidateOutputPath(filepath.Join(*outDir, *id+".zip")); err != nil {
		return err
	}

	res, err := bundle.Create(c.fsys, bundle.Options{HomeworkDir: *homework, SubmissionID: *id, OutDir: *outDir})
	if err != nil {
		return err
	}

	if *list {
		for _, e := range res.Entries {
			fmt.Fprintln(c.stdout, e.Path)
		}
	}

	cs := colorstring.Colorize{Colors: colorstring.DefaultColors, Disable: color.NoColor, Reset: true}
	if res.Oversize {
		fmt.Fprintln(c.stdout, cs.Color("[yellow]Warning: The created zip file is larger than expected!"))
	}
	abs, err := filepath.Abs(res.Path)
	if err != nil {
		abs = res.Path
	}
	fmt.Fprintf(c.stdout, cs.Color("[green]Submission created:[reset] %s %.2f MB\n"), abs, res.SizeMB())
	return nil
}
