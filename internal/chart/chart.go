// Package chart draws the required-versus-current bar chart.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"fertilizer-guide/internal/nutrient"
)

var (
	RequiredColor = color.RGBA{R: 0x44, G: 0xAF, B: 0xF8, A: 0xFF}
	MatchColor    = color.RGBA{R: 0xDA, G: 0xF7, B: 0xA6, A: 0xFF}
	MismatchColor = color.RGBA{R: 0xFF, G: 0x57, B: 0x33, A: 0xFF}
)

const (
	width    = 6.4 * vg.Inch
	height   = 4.8 * vg.Inch
	barWidth = vg.Length(36)
)

// CurrentColor is green when the reading equals the requirement, red otherwise.
func CurrentColor(required, current float64) color.Color {
	if required == current {
		return MatchColor
	}
	return MismatchColor
}

// Build assembles the plot without rendering it.
func Build(crop string, req nutrient.Requirement, reading nutrient.Reading) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Nutrient Levels for " + crop
	p.X.Label.Text = "Nutrients"
	p.Y.Label.Text = "Levels"
	p.Y.Min = 0

	required := make(plotter.Values, len(nutrient.Order))
	names := make([]string, len(nutrient.Order))
	for i, n := range nutrient.Order {
		required[i] = req.Level(n)
		names[i] = string(n)
	}

	reqBars, err := plotter.NewBarChart(required, barWidth)
	if err != nil {
		return nil, fmt.Errorf("required bars: %w", err)
	}
	reqBars.Color = RequiredColor
	reqBars.LineStyle.Width = vg.Length(0)
	reqBars.Offset = -barWidth / 2
	p.Add(reqBars)
	p.Legend.Add("Required", reqBars)

	// One chart per current bar so each can carry its own color.
	for i, n := range nutrient.Order {
		bar, err := plotter.NewBarChart(plotter.Values{reading.Level(n)}, barWidth)
		if err != nil {
			return nil, fmt.Errorf("current bar %s: %w", n, err)
		}
		bar.XMin = float64(i)
		bar.Color = CurrentColor(req.Level(n), reading.Level(n))
		bar.LineStyle.Width = vg.Length(0)
		bar.Offset = barWidth / 2
		p.Add(bar)
		if i == 0 {
			p.Legend.Add("Current", bar)
		}
	}

	p.NominalX(names...)
	p.Legend.Top = true
	return p, nil
}

// Render returns the chart as PNG bytes.
func Render(crop string, req nutrient.Requirement, reading nutrient.Reading) ([]byte, error) {
	p, err := Build(crop, req, reading)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBase64 returns the PNG encoded with standard base64, as embedded in
// JSON responses and data URIs.
func RenderBase64(crop string, req nutrient.Requirement, reading nutrient.Reading) (string, error) {
	png, err := Render(crop, req, reading)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
