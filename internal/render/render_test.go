package render_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/render"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() country.RefreshSummary {
	return country.RefreshSummary{
		TotalCountries:  250,
		LastRefreshedAt: time.Date(2025, 10, 22, 18, 0, 0, 0, time.UTC),
		Top5: []country.GDPEntry{
			{Name: "United States of America", EstimatedGDP: 612345678901.239},
			{Name: "China", EstimatedGDP: 512345678901},
			{Name: "Japan", EstimatedGDP: 1234.5},
		},
	}
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{
		"Countries Summary",
		"Last refreshed: 2025-10-22T18:00:00Z",
		"Total countries: 250",
		"Top 5 countries by estimated GDP:",
		"1. United States of America - 612,345,678,901.24",
		"2. China - 512,345,678,901",
		"3. Japan - 1,234.5",
	}, render.Lines(sampleSummary()))
}

func TestLines_Empty(t *testing.T) {
	lines := render.Lines(country.RefreshSummary{})
	assert.Len(t, lines, 4)
	assert.Equal(t, "Total countries: 0", lines[2])
}

func TestDraw(t *testing.T) {
	img := render.Draw(sampleSummary())
	assert.Equal(t, render.Width, img.Bounds().Dx())
	assert.Equal(t, render.Height, img.Bounds().Dy())

	// the title row carries ink, the bottom corner stays blank
	inked := false
	for x := 20; x < 400 && !inked; x++ {
		for y := 30; y < 70; y++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked, "expected title glyphs")

	r, g, b, _ := img.At(render.Width-1, render.Height-1).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestRenderer_Render(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	r := render.New(store)
	ctx := context.Background()

	require.NoError(t, r.Render(ctx, sampleSummary()))
	require.NoError(t, r.Render(ctx, sampleSummary()), "overwriting is allowed")

	data, err := store.Get(ctx, render.SummaryImageName)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	raw, err := store.Get(ctx, render.SummaryJSONName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"total_countries\": 250")

	var got country.RefreshSummary
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, sampleSummary(), got)
}

type failingStore struct{ err error }

func (f failingStore) Put(context.Context, string, []byte, string) error { return f.err }
func (f failingStore) Get(context.Context, string) ([]byte, error)       { return nil, f.err }

func TestRenderer_Render_StoreError(t *testing.T) {
	boom := errors.New("bucket gone")
	err := render.New(failingStore{err: boom}).Render(context.Background(), sampleSummary())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to store summary image")
}
