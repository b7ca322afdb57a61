package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/version"
)

// cli carries the process dependencies so commands can run under test.
type cli struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	fsys   fsutil.FileSystem
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{ctx: ctx, stdout: os.Stdout, stderr: os.Stderr, fsys: fsutil.OSFileSystem{}}
	code := c.run(os.Args[1:])
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
func (c *cli) run(args []string) int {
	if len(args) < 1 {
		c.printUsage()
		return 1
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "qa":
		err = c.handleQA(rest)
	case "caption":
		err = c.handleCaption(rest)
	case "grade":
		err = c.handleGrade(rest)
	case "bundle":
		err = c.handleBundle(rest)
	case "report":
		err = c.handleReport(rest)
	case "version":
		fmt.Fprintln(c.stdout, version.String())
	case "help", "-h", "--help":
		c.printUsage()
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n\n", command)
		c.printUsage()
		return 1
	}

	if err != nil {
		if err != errUsage {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stdout, `kartqa - QA and caption dataset tools for kart simulator renders

Usage: kartqa <command> [subcommand] [options]

Commands:
  qa check       Print the QA pairs for one view (optionally plot it)
  qa build       Build the QA dataset for a split
  caption check  Print the captions for one view (optionally plot it)
  caption build  Build the caption dataset for a split
  grade qa       Compare a generated QA file against a golden file
  grade captions Check generated captions against multiple-choice records
  bundle         Zip a homework directory for submission
  report         Render an HTML summary of a QA dataset
  version        Show kartqa version
  help           Show this help message

Common Flags:
  -config <file>      Dataset configuration (.json)
  -env-file <file>    dotenv file with KARTQA_* overrides (default .env)
  -log-level <level>  debug, info, warn or error (default info)
  -log-file <file>    Also write logs to a rotating file
  -no-color           Disable coloured output

Examples:
  kartqa qa check -info data/train/00000_info.json -view 0 -plot view.png
  kartqa qa build -root data -split train -progress
  kartqa caption build -root data -split valid
  kartqa grade qa -golden data/valid_grader/balanced_qa_pairs.json -generated-dir data/train -remap-valid
  kartqa grade captions -golden data/valid_grader/all_mc_qas.json -generated-dir data/valid
  kartqa bundle -homework homework -id jd4242
  kartqa report -qa data/train/balanced_qa_pairs.json -title "train split"`)
}
