package country

import (
	"sort"
	"time"
)

const topN = 5

// Summarize ranks the refreshed records by estimated GDP. Records without
// an estimate are left out of the ranking but still counted.
func Summarize(records []Country, refreshedAt time.Time) RefreshSummary {
	ranked := make([]GDPEntry, 0, len(records))
	for _, rec := range records {
		if rec.EstimatedGDP == nil {
			continue
		}
		ranked = append(ranked, GDPEntry{Name: rec.Name, EstimatedGDP: *rec.EstimatedGDP})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EstimatedGDP != ranked[j].EstimatedGDP {
			return ranked[i].EstimatedGDP > ranked[j].EstimatedGDP
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return RefreshSummary{
		TotalCountries:  len(records),
		LastRefreshedAt: refreshedAt,
		Top5:            ranked,
	}
}
