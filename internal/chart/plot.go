package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoPoints is returned when drawing a chart without data
var ErrNoPoints = errors.New("chart has no points")

// WritePNG draws c as a PNG image
func WritePNG(w io.Writer, c Chart) error {
	if len(c.Points) == 0 {
		return ErrNoPoints
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XAxis
	p.Y.Label.Text = c.YAxis
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(c.Points))
	for i, pt := range c.Points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}

	col := parseHexColor(c.Color)

	switch c.Kind {
	case KindLine:
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("creating line: %w", err)
		}
		line.Color = col
		line.Width = vg.Points(2)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Color = col
		p.Add(line, points)
		p.NominalX(c.Labels()...)
	case KindScatter:
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("creating scatter: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(5)
		scatter.GlyphStyle.Color = col
		p.Add(scatter)
	default:
		return fmt.Errorf("unknown chart kind: %q", c.Kind)
	}

	if c.BeginAtZero {
		p.Y.Min = 0
	}

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

// SavePNG draws c into the file at path
func SavePNG(path string, c Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	if err := WritePNG(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseHexColor parses "#rrggbb", falling back to black
func parseHexColor(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return color.Black
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
