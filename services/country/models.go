package country

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RawCurrency is one entry of a country's currency list as served by restcountries v2.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is one element of the restcountries v2 /all payload. Population
// is a pointer so that an absent value can be told apart from zero.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population *int64        `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

type ExchangeRatesAPIResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// RateTable maps a currency code to its rate against the base currency.
type RateTable map[string]float64

// Country is the persisted per-country record.
type Country struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	NameKey         string             `bson:"name_key" json:"-"`
	Capital         *string            `bson:"capital" json:"capital"`
	Region          *string            `bson:"region" json:"region"`
	Population      int64              `bson:"population" json:"population"`
	CurrencyCode    *string            `bson:"currency_code" json:"currency_code"`
	ExchangeRate    *float64           `bson:"exchange_rate" json:"exchange_rate"`
	EstimatedGDP    *float64           `bson:"estimated_gdp" json:"estimated_gdp"`
	FlagURL         *string            `bson:"flag_url" json:"flag_url"`
	LastRefreshedAt time.Time          `bson:"last_refreshed_at" json:"last_refreshed_at"`
}

// fields is every stored attribute except _id, with name_key derived from name.
func (c Country) fields() bson.D {
	return bson.D{
		{Key: "name", Value: c.Name},
		{Key: "name_key", Value: NameKey(c.Name)},
		{Key: "capital", Value: c.Capital},
		{Key: "region", Value: c.Region},
		{Key: "population", Value: c.Population},
		{Key: "currency_code", Value: c.CurrencyCode},
		{Key: "exchange_rate", Value: c.ExchangeRate},
		{Key: "estimated_gdp", Value: c.EstimatedGDP},
		{Key: "flag_url", Value: c.FlagURL},
		{Key: "last_refreshed_at", Value: c.LastRefreshedAt},
	}
}

// NameKey is the case-insensitive identity of a country name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateInput is the body accepted for a manually created country.
type CreateInput struct {
	Name         string   `json:"name"`
	Capital      string   `json:"capital"`
	Region       string   `json:"region"`
	Population   *int64   `json:"population"`
	CurrencyCode string   `json:"currency_code"`
	ExchangeRate *float64 `json:"exchange_rate"`
	FlagURL      string   `json:"flag_url"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Region       string
	CurrencyCode string
}

type SortKey string

const (
	SortGDPDesc        SortKey = "gdp_desc"
	SortGDPAsc         SortKey = "gdp_asc"
	SortPopulationDesc SortKey = "population_desc"
	SortPopulationAsc  SortKey = "population_asc"
	SortNameAsc        SortKey = "name_asc"
)

// ParseSort maps a query value to a SortKey; anything unknown sorts by name.
func ParseSort(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortGDPDesc, SortGDPAsc, SortPopulationDesc, SortPopulationAsc, SortNameAsc:
		return k
	default:
		return SortNameAsc
	}
}

// GDPEntry is one line of the summary ranking.
type GDPEntry struct {
	Name         string  `json:"name"`
	EstimatedGDP float64 `json:"estimated_gdp"`
}

// RefreshSummary is handed to the renderer after a successful refresh.
type RefreshSummary struct {
	TotalCountries  int        `json:"total_countries"`
	LastRefreshedAt time.Time  `json:"last_refreshed_at"`
	Top5            []GDPEntry `json:"top5"`
}

type RefreshResult struct {
	TotalCountries  int       `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

type Status struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}
