package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	SummaryImageName = "summary.png"
	SummaryJSONName  = "summary.json"

	Width  = 800
	Height = 600

	margin = 20
)

var (
	background = color.White
	foreground = color.Black
)

// line is one row of text drawn at an integer magnification of the
// 7x13 base face. y is the baseline.
type line struct {
	text  string
	y     int
	scale int
}

// Renderer writes the refresh summary as summary.png and summary.json.
type Renderer struct {
	store storage.Store
}

func New(store storage.Store) *Renderer {
	return &Renderer{store: store}
}

func (r *Renderer) Render(ctx context.Context, summary country.RefreshSummary) error {
	img := Draw(summary)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode summary image: %w", err)
	}
	if err := r.store.Put(ctx, SummaryImageName, buf.Bytes(), "image/png"); err != nil {
		return fmt.Errorf("failed to store summary image: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary json: %w", err)
	}
	if err := r.store.Put(ctx, SummaryJSONName, data, "application/json"); err != nil {
		return fmt.Errorf("failed to store summary json: %w", err)
	}
	return nil
}

// Lines returns the text of the summary image, top to bottom.
func Lines(summary country.RefreshSummary) []string {
	out := []string{
		"Countries Summary",
		"Last refreshed: " + summary.LastRefreshedAt.UTC().Format(time.RFC3339),
		fmt.Sprintf("Total countries: %d", summary.TotalCountries),
		"Top 5 countries by estimated GDP:",
	}
	for i, entry := range summary.Top5 {
		out = append(out, fmt.Sprintf("%d. %s - %s", i+1, entry.Name, humanize.Commaf(roundTo2(entry.EstimatedGDP))))
	}
	return out
}

// Draw lays the summary out on a white 800x600 canvas.
func Draw(summary country.RefreshSummary) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	text := Lines(summary)
	layout := []line{
		{text: text[0], y: 60, scale: 3},
		{text: text[1], y: 100, scale: 2},
		{text: text[2], y: 150, scale: 2},
		{text: text[3], y: 210, scale: 2},
	}
	for i, t := range text[4:] {
		layout = append(layout, line{text: t, y: 250 + i*40, scale: 2})
	}

	for _, l := range layout {
		drawText(img, l)
	}
	return img
}

func drawText(dst *image.RGBA, l line) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, l.text).Ceil()
	if w == 0 {
		return
	}
	h := face.Height

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(foreground),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(l.text)

	top := l.y - face.Ascent*l.scale
	target := image.Rect(margin, top, margin+w*l.scale, top+h*l.scale)
	draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
