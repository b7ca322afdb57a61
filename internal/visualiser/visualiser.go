// Package visualiser renders one view of a sequence with its kart boxes,
// names and ego highlight so derived answers can be checked by eye.
package visualiser

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/perception"
	"github.com/banshee-data/kartqa/internal/scene"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	kartColor  = color.RGBA{G: 255, A: 255}
	egoColor   = color.RGBA{R: 255, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Options configures RenderView.
type Options struct {
	// Background is drawn under the boxes. When set its bounds replace the
	// target size in Perception.
	Background image.Image
	Perception perception.Config
	Title      string

	// Output size; 6x4 inches when zero.
	Width, Height vg.Length
}

func (o Options) perceptionConfig() perception.Config {
	cfg := o.Perception
	if o.Background != nil {
		b := o.Background.Bounds()
		cfg = cfg.WithImageSize(b.Dx(), b.Dy())
	}
	return cfg
}

// kartBox is a surviving box with the kart it belongs to.
type kartBox struct {
	perception.Box
	Name  string
	IsEgo bool
}

func viewBoxes(info *scene.SequenceInfo, view int, cfg perception.Config) ([]kartBox, error) {
	boxes, err := perception.ScaleBoxes(info, view, cfg)
	if err != nil {
		return nil, err
	}
	karts, err := perception.ExtractKarts(info, view, cfg)
	if err != nil {
		return nil, err
	}
	// ExtractKarts emits one kart per surviving box, in the same order.
	out := make([]kartBox, len(boxes))
	for i, b := range boxes {
		out[i] = kartBox{Box: b, Name: karts[i].Name, IsEgo: karts[i].IsEgo}
	}
	return out, nil
}

// BuildPlot draws the surviving kart boxes of a view in target pixel space.
// Image y runs downwards, so boxes are flipped onto the plot's y axis.
func BuildPlot(info *scene.SequenceInfo, view int, opts Options) (*plot.Plot, error) {
	cfg := opts.perceptionConfig()
	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", cfg.ImageWidth, cfg.ImageHeight)
	}

	boxes, err := viewBoxes(info, view, cfg)
	if err != nil {
		return nil, err
	}

	w, h := float64(cfg.ImageWidth), float64(cfg.ImageHeight)

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s, view %d", info.Track, view)
	}
	p.HideAxes()

	if opts.Background != nil {
		p.Add(plotter.NewImage(opts.Background, 0, 0, w, h))
	}

	labelPts := make(plotter.XYs, 0, len(boxes))
	names := make([]string, 0, len(boxes))
	for _, b := range boxes {
		outline, err := plotter.NewLine(plotter.XYs{
			{X: float64(b.X1), Y: h - float64(b.Y1)},
			{X: float64(b.X2), Y: h - float64(b.Y1)},
			{X: float64(b.X2), Y: h - float64(b.Y2)},
			{X: float64(b.X1), Y: h - float64(b.Y2)},
			{X: float64(b.X1), Y: h - float64(b.Y1)},
		})
		if err != nil {
			return nil, err
		}
		outline.Color = kartColor
		outline.Width = vg.Points(1)
		if b.IsEgo {
			outline.Color = egoColor
			outline.Width = vg.Points(2)
			p.Legend.Add("ego: "+b.Name, outline)
		}
		p.Add(outline)

		labelPts = append(labelPts, plotter.XY{X: float64(b.X1), Y: h - float64(b.Y1)})
		names = append(names, b.Name)
	}

	if len(names) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelPts, Labels: names})
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = labelColor
		}
		p.Add(labels)
	}

	// Clip to the frame; partly visible boxes would otherwise widen the axes.
	p.X.Min, p.X.Max = 0, w
	p.Y.Min, p.Y.Max = 0, h

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// RenderView draws one view and writes it to path as a PNG.
func RenderView(fsys fsutil.FileSystem, info *scene.SequenceInfo, view int, path string, opts Options) error {
	p, err := BuildPlot(info, view, opts)
	if err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 6 * vg.Inch
	}
	if height == 0 {
		height = 4 * vg.Inch
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render view %d: %w", view, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
