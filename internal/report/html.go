package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// answerFamilies are charted individually; the rest have one answer per
// view and are summarised by the histogram.
var answerFamilies = []Family{
	FamilyLeftRight, FamilyFrontBack, FamilyRelative,
	FamilyCountLeft, FamilyCountRight, FamilyCountFront, FamilyCountBack,
}

// HTMLOptions configures RenderHTML.
type HTMLOptions struct {
	Title string
	// AssetsHost overrides the echarts asset location; empty keeps the
	// library default.
	AssetsHost string
}

func newBar(title, subtitle string, o HTMLOptions) *charts.Bar {
	bar := charts.NewBar()
	init := opts.Initialization{Width: "900px", Height: "420px"}
	if o.AssetsHost != "" {
		init.AssetsHost = o.AssetsHost
	}
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	return bar
}

func countsBar(title string, counts []AnswerCount, o HTMLOptions) *charts.Bar {
	x := make([]string, 0, len(counts))
	y := make([]opts.BarData, 0, len(counts))
	total := 0
	for _, c := range counts {
		x = append(x, c.Answer)
		y = append(y, opts.BarData{Value: c.Count})
		total += c.Count
	}
	bar := newBar(title, fmt.Sprintf("%d answers", total), o)
	bar.SetXAxis(x).
		AddSeries("answers", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// RenderHTML writes an HTML page of bar charts for s to w.
func RenderHTML(s Summary, w io.Writer, o HTMLOptions) error {
	if o.Title == "" {
		o.Title = "kartqa dataset report"
	}

	page := components.NewPage()
	page.SetPageTitle(o.Title)
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}

	keys := make([]int, 0, len(s.Karts.Histogram))
	for k := range s.Karts.Histogram {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	x := make([]string, 0, len(keys))
	y := make([]opts.BarData, 0, len(keys))
	for _, k := range keys {
		x = append(x, strconv.Itoa(k))
		y = append(y, opts.BarData{Value: s.Karts.Histogram[k]})
	}
	views := newBar("Karts per view",
		fmt.Sprintf("views=%d mean=%.2f sd=%.2f max=%.0f", s.Karts.Views, s.Karts.Mean, s.Karts.StdDev, s.Karts.Max), o)
	views.SetXAxis(x).
		AddSeries("views", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	page.AddCharts(views)

	if len(s.Tracks) > 0 {
		page.AddCharts(countsBar("Views per track", s.Tracks, o))
	}
	for _, f := range answerFamilies {
		counts := s.Answers[f]
		if len(counts) == 0 {
			continue
		}
		page.AddCharts(countsBar(string(f), counts, o))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
