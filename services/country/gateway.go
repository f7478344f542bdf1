package country

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/api"
	"github.com/AbdulWasayUl/go-country-currency/internal/config"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/models"
)

const defaultFetchTimeout = 10 * time.Second

// Gateway reads the two upstreams. A failed fetch is logged and reported as
// a nil result, never as an error.
type Gateway struct {
	Client       *api.Client
	CountriesURL string
	RatesURL     string
	Timeout      time.Duration
}

// NewGateway builds an unthrottled gateway; a refresh makes one call per upstream.
func NewGateway(cfg config.UpstreamConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &Gateway{
		Client:       api.NewClient(models.RateLimitSettings{}),
		CountriesURL: cfg.CountriesURL,
		RatesURL:     cfg.RatesURL,
		Timeout:      timeout,
	}
}

func (g *Gateway) FetchCountries(ctx context.Context) []RawCountry {
	data, err := g.fetch(ctx, g.CountriesURL)
	if err != nil {
		logger.Error("Error fetching countries: %v", err)
		return nil
	}

	countries, err := ParseCountries(data)
	if err != nil {
		logger.Error("Error fetching countries: %v", err)
		return nil
	}
	return countries
}

func (g *Gateway) FetchExchangeRates(ctx context.Context) RateTable {
	data, err := g.fetch(ctx, g.RatesURL)
	if err != nil {
		logger.Error("Error fetching exchange rates: %v", err)
		return nil
	}

	rates, err := ParseExchangeRates(data)
	if err != nil {
		logger.Error("Error fetching exchange rates: %v", err)
		return nil
	}
	return rates
}

func (g *Gateway) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()
	return g.Client.Do(ctx, url, nil)
}

func ParseCountries(data []byte) ([]RawCountry, error) {
	var resp []RawCountry
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse country data: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("country payload is null")
	}
	return resp, nil
}

func ParseExchangeRates(data []byte) (RateTable, error) {
	var resp ExchangeRatesAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse exchange rate data: %w", err)
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, fmt.Errorf("exchange rate API reported result %q", resp.Result)
	}
	if resp.Rates == nil {
		return nil, fmt.Errorf("exchange rate payload has no rates")
	}
	return RateTable(resp.Rates), nil
}
