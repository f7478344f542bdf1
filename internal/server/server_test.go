package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/channels"
	apperr "github.com/AbdulWasayUl/go-country-currency/internal/errors"
	"github.com/AbdulWasayUl/go-country-currency/internal/render"
	"github.com/AbdulWasayUl/go-country-currency/internal/server"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/internal/workpool"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/AbdulWasayUl/go-country-currency/services/country/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubUpstream struct {
	countries []country.RawCountry
	rates     country.RateTable
}

func (s stubUpstream) FetchCountries(context.Context) []country.RawCountry { return s.countries }
func (s stubUpstream) FetchExchangeRates(context.Context) country.RateTable { return s.rates }

type fixture struct {
	app       *fiber.App
	store     *mocks.Store
	artifacts *storage.FileStore
	svc       *country.Service
}

func newFixture(t *testing.T, up country.Upstream) *fixture {
	t.Helper()

	ch := channels.New()
	wp := workpool.New(ch, 2)
	wp.Start(context.Background())

	artifacts, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	store := new(mocks.Store)
	svc := country.NewService(up, store, render.New(artifacts), wp)
	t.Cleanup(func() {
		svc.Wait()
		wp.Stop()
		ch.WG.Wait()
	})

	return &fixture{
		app:       server.New(svc, artifacts),
		store:     store,
		artifacts: artifacts,
		svc:       svc,
	}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func population(n int64) *int64 { return &n }

func TestRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, stubUpstream{
			countries: []country.RawCountry{
				{Name: "Nigeria", Population: population(206139589), Currencies: []country.RawCurrency{{Code: "NGN"}}},
				{Name: "Antarctica", Population: population(1000)},
			},
			rates: country.RateTable{"NGN": 1600.23},
		})
		f.store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		resp, body := f.do(t, http.MethodPost, "/countries/refresh", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Countries data refreshed successfully", body["message"])
		assert.Equal(t, float64(2), body["total_countries"])
		_, err := time.Parse(time.RFC3339, body["last_refreshed_at"].(string))
		assert.NoError(t, err)

		// the summary image becomes available once rendering finishes
		f.svc.Wait()
		resp, _ = f.do(t, http.MethodGet, "/countries/image/summary", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		f := newFixture(t, stubUpstream{countries: []country.RawCountry{}})

		resp, body := f.do(t, http.MethodPost, "/countries/refresh", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "External data source unavailable", body["error"])
		assert.Equal(t, "Could not fetch data from exchange rates API", body["details"])
		f.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestList(t *testing.T) {
	f := newFixture(t, stubUpstream{})
	region := "Africa"
	f.store.On("List", mock.Anything, country.Filter{Region: "Africa", CurrencyCode: "NGN"}, country.SortGDPDesc).
		Return([]country.Country{{Name: "Nigeria", Region: &region, Population: 206139589}}, nil)
	f.store.On("List", mock.Anything, country.Filter{}, country.SortNameAsc).
		Return([]country.Country{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/countries?region=Africa&currency=NGN&sort=gdp_desc", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Nigeria", list[0]["name"])
	assert.Equal(t, "Africa", list[0]["region"])
	assert.Nil(t, list[0]["currency_code"])
	assert.NotContains(t, list[0], "name_key")
	assert.Contains(t, list[0], "id")

	req = httptest.NewRequest(http.MethodGet, "/countries?sort=bogus", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(raw))
}

func TestGetAndDelete(t *testing.T) {
	f := newFixture(t, stubUpstream{})
	f.store.On("GetByName", mock.Anything, "United Kingdom").
		Return(&country.Country{Name: "United Kingdom", Population: 67000000}, nil)
	f.store.On("GetByName", mock.Anything, "Atlantis").
		Return(nil, apperr.NewNotFound("Country"))
	f.store.On("DeleteByName", mock.Anything, "france").Return(nil)
	f.store.On("DeleteByName", mock.Anything, "Atlantis").Return(apperr.NewNotFound("Country"))

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   map[string]any
	}{
		{"get escaped name", http.MethodGet, "/countries/United%20Kingdom", 200, nil},
		{"get missing", http.MethodGet, "/countries/Atlantis", 404, map[string]any{"error": "Country not found"}},
		{"delete", http.MethodDelete, "/countries/france", 200, map[string]any{"message": "Country deleted successfully"}},
		{"delete missing", http.MethodDelete, "/countries/Atlantis", 404, map[string]any{"error": "Country not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, body)
			} else {
				assert.Equal(t, "United Kingdom", body["name"])
			}
		})
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t, stubUpstream{})
	f.store.On("Insert", mock.Anything, mock.MatchedBy(func(c country.Country) bool { return c.Name == "Tuvalu" })).
		Return(&country.Country{Name: "Tuvalu", Population: 11000}, nil)
	f.store.On("Insert", mock.Anything, mock.MatchedBy(func(c country.Country) bool { return c.Name == "France" })).
		Return(nil, apperr.NewValidation(map[string]string{"name": "Country already exists"}))

	resp, body := f.do(t, http.MethodPost, "/countries", `{"name":"Tuvalu","population":11000,"currency_code":"aud"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Tuvalu", body["name"])

	resp, body = f.do(t, http.MethodPost, "/countries", `{"name":"France","population":1,"currency_code":"EUR"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{
		"error":   "Validation failed",
		"details": map[string]any{"name": "Country already exists"},
	}, body)

	resp, body = f.do(t, http.MethodPost, "/countries", `{"capital":"Nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{
		"name":          "is required",
		"population":    "is required",
		"currency_code": "is required",
	}, body["details"])

	resp, _ = f.do(t, http.MethodPost, "/countries", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	f := newFixture(t, stubUpstream{})
	ts := time.Date(2025, 10, 22, 18, 0, 0, 0, time.UTC)
	f.store.On("Count", mock.Anything).Return(int64(250), nil)
	f.store.On("MostRecentRefresh", mock.Anything).Return(&ts, nil)

	resp, body := f.do(t, http.MethodGet, "/countries/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{
		"total_countries":   float64(250),
		"last_refreshed_at": "2025-10-22T18:00:00Z",
	}, body)
}

func TestSummaryImage(t *testing.T) {
	f := newFixture(t, stubUpstream{})

	resp, body := f.do(t, http.MethodGet, "/countries/image/summary", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Summary image not found"}, body)

	png := []byte("\x89PNG\r\n\x1a\n")
	require.NoError(t, f.artifacts.Put(context.Background(), render.SummaryImageName, png, "image/png"))

	req := httptest.NewRequest(http.MethodGet, "/countries/image/summary", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, png, raw)
}

func TestUnexpectedErrorsAreMasked(t *testing.T) {
	f := newFixture(t, stubUpstream{})
	f.store.On("Count", mock.Anything).Return(int64(0), errors.New("socket closed by peer"))

	resp, body := f.do(t, http.MethodGet, "/countries/status", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Internal server error"}, body)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, stubUpstream{})

	resp, _ := f.do(t, http.MethodGet, "/countries/nowhere/else", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Len(t, resp.Header.Get(fiber.HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/countries/nowhere/else", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))
}
