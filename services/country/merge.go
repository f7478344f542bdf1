package country

import (
	"math/rand/v2"
	"strings"
	"time"
)

// The GDP multiplier is drawn uniformly from [MinMultiplier, MaxMultiplier].
const (
	MinMultiplier = 1000
	MaxMultiplier = 2000
)

// Rand supplies the GDP multiplier. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// EstimateGDP returns population × multiplier ÷ rate for a fresh multiplier.
func EstimateGDP(population int64, rate float64, rnd Rand) float64 {
	multiplier := MinMultiplier + rnd.IntN(MaxMultiplier-MinMultiplier+1)
	return float64(population) * float64(multiplier) / rate
}

// Merge joins countries to rates by their first currency code and stamps
// every record with refreshedAt. Entries without a name or population are
// dropped; for repeated names the last entry wins.
func Merge(countries []RawCountry, rates RateTable, refreshedAt time.Time, rnd Rand) []Country {
	records := make([]Country, 0, len(countries))
	index := make(map[string]int, len(countries))

	for _, raw := range countries {
		name := strings.TrimSpace(raw.Name)
		if name == "" || raw.Population == nil || *raw.Population < 0 {
			continue
		}

		rec := Country{
			Name:            name,
			NameKey:         NameKey(name),
			Capital:         optional(raw.Capital),
			Region:          optional(raw.Region),
			Population:      *raw.Population,
			FlagURL:         optional(raw.Flag),
			LastRefreshedAt: refreshedAt,
		}

		if len(raw.Currencies) > 0 {
			rec.CurrencyCode = optional(raw.Currencies[0].Code)
		}
		if rec.CurrencyCode != nil {
			if rate, ok := rates[*rec.CurrencyCode]; ok && rate > 0 {
				rec.ExchangeRate = &rate
				gdp := EstimateGDP(rec.Population, rate, rnd)
				rec.EstimatedGDP = &gdp
			}
		}

		if i, seen := index[rec.NameKey]; seen {
			records[i] = rec
			continue
		}
		index[rec.NameKey] = len(records)
		records = append(records, rec)
	}

	return records
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
