package grader

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/colorstring"
)

// PrintOptions controls report rendering.
type PrintOptions struct {
	// NoColor disables colour codes. Colour is also off whenever
	// color.NoColor reports a non-terminal stdout.
	NoColor bool
	// Details lists every wrong and missing record, not just the totals.
	Details bool
}

func (o PrintOptions) colorize() colorstring.Colorize {
	return colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: o.NoColor || color.NoColor,
		Reset:   true,
	}
}

// Print writes a summary of the QA comparison to w.
func (r QAReport) Print(w io.Writer, opts PrintOptions) {
	c := opts.colorize()
	fmt.Fprintf(w, "Number of qa_pairs golden: %d\n", r.Golden)
	fmt.Fprintf(w, "Number of qa_pairs generated: %d\n", r.Generated)

	if opts.Details {
		for _, m := range r.Wrong {
			fmt.Fprintf(w, c.Color("[red]Wrong answer:[reset] %q for %s (%s)\n"),
				m.Generated.Answer, m.Golden.Question, m.Golden.ImageFile)
			fmt.Fprintf(w, "%s", indent(m.Diff))
		}
		for _, m := range r.Missing {
			fmt.Fprintf(w, c.Color("[yellow]Not found:[reset] %s (%s)\n"), m.Question, m.ImageFile)
		}
	}

	fmt.Fprintf(w, c.Color("Missing: [yellow]%d[reset]  Wrong: [red]%d[reset]  Correct: [green]%d[reset] of %d (%.1f%%)\n"),
		len(r.Missing), len(r.Wrong), r.Correct, r.Golden, 100*r.Accuracy())
}

// Print writes a summary of the caption validation to w.
func (r CaptionReport) Print(w io.Writer, opts PrintOptions) {
	c := opts.colorize()
	fmt.Fprintf(w, "Number of captions golden: %d\n", r.Golden)
	fmt.Fprintf(w, "Number of captions generated: %d\n", r.Generated)

	if opts.Details {
		for _, m := range r.Wrong {
			fmt.Fprintf(w, c.Color("[red]Wrong answer for image[reset] %s\n"), m.ImageFile)
			fmt.Fprintf(w, "  Expected: %s\n", m.Expected)
			fmt.Fprintf(w, "  Generated: %s\n", strings.Join(m.Generated, " | "))
		}
		for _, m := range r.Missing {
			fmt.Fprintf(w, c.Color("[yellow]Not found:[reset] %s\n"), m.ImageFile)
		}
	}

	fmt.Fprintf(w, c.Color("Number of missing images: [yellow]%d[reset]\n"), len(r.Missing))
	fmt.Fprintf(w, c.Color("Number of correct caption matches: [green]%d[reset] of %d (%.1f%%)\n"),
		r.Correct, r.Golden, 100*r.Accuracy())
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "    " + strings.Join(lines, "\n    ") + "\n"
}
