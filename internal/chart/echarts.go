package chart

import (
	"fmt"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

// DefaultAssetsHost serves echarts.min.js
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// tooltipFormatter shows the tooltip text carried in each data item's name
const tooltipFormatter = `function (params) { return params.name; }`

// Snippet is a chart ready to embed in a page
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

// HTML renders a chart onto the DOM element with id target
func (c Chart) HTML(target string) (Snippet, error) {
	switch c.Kind {
	case KindLine:
		return lineSnippet(c, target), nil
	case KindScatter:
		return scatterSnippet(c, target), nil
	default:
		return Snippet{}, fmt.Errorf("unknown chart kind: %q", c.Kind)
	}
}

func globalOptions(c Chart, target string) []charts.GlobalOpts {
	yAxis := opts.YAxis{Name: c.YAxis, Type: "value"}
	if c.BeginAtZero {
		yAxis.Min = 0
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: target,
			Width:   "100%",
			Height:  "360px",
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithYAxisOpts(yAxis),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	}
}

func lineSnippet(c Chart, target string) Snippet {
	line := charts.NewLine()
	line.SetGlobalOptions(append(globalOptions(c, target),
		charts.WithXAxisOpts(opts.XAxis{Name: c.XAxis, Type: "category"}),
	)...)

	data := make([]opts.LineData, len(c.Points))
	for i, p := range c.Points {
		data[i] = opts.LineData{Name: p.Tooltip, Value: p.Y}
	}

	line.SetXAxis(c.Labels()).
		AddSeries(c.SeriesName, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: c.Color}))

	return toSnippet(line.RenderSnippet())
}

func scatterSnippet(c Chart, target string) Snippet {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(globalOptions(c, target),
		charts.WithXAxisOpts(opts.XAxis{Name: c.XAxis, Type: "value"}),
	)...)

	data := make([]opts.ScatterData, len(c.Points))
	for i, p := range c.Points {
		data[i] = opts.ScatterData{
			Name:       p.Tooltip,
			Value:      []float64{p.X, p.Y},
			SymbolSize: 16,
		}
	}

	scatter.AddSeries(c.SeriesName, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: c.Color}))

	return toSnippet(scatter.RenderSnippet())
}

// Snippets are generated by go-echarts from our own option values.
func toSnippet(s render.ChartSnippet) Snippet {
	return Snippet{
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}
}
