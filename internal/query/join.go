package query

import (
	"sort"

	"github.com/jgoulah/netdash/pkg/models"
)

// Join inner-joins the two tables on (country, year). Keys present in only
// one table are dropped; that is expected for countries or years one
// source does not cover. The result is ordered by country, then year.
func Join(usage map[models.Key]models.UsageRecord, indicators map[models.Key]models.IndicatorRecord) []models.JoinedRecord {
	out := make([]models.JoinedRecord, 0, min(len(usage), len(indicators)))
	for key, u := range usage {
		ind, ok := indicators[key]
		if !ok {
			continue
		}
		out = append(out, merge(u, ind))
	}
	sortRecords(out)
	return out
}

// JoinIndicators is Join driven from the indicator side. It yields the same
// rows as Join.
func JoinIndicators(indicators map[models.Key]models.IndicatorRecord, usage map[models.Key]models.UsageRecord) []models.JoinedRecord {
	out := make([]models.JoinedRecord, 0, min(len(usage), len(indicators)))
	for key, ind := range indicators {
		u, ok := usage[key]
		if !ok {
			continue
		}
		out = append(out, merge(u, ind))
	}
	sortRecords(out)
	return out
}

func merge(u models.UsageRecord, ind models.IndicatorRecord) models.JoinedRecord {
	return models.JoinedRecord{
		Country:             u.Country,
		CountryCode:         u.CountryCode,
		Year:                u.Year,
		UsageMetric:         u.UsageMetric,
		GDPPerCapita:        ind.GDPPerCapita,
		Population:          ind.Population,
		PopulationMissing:   ind.PopulationMissing,
		AccessToElectricity: ind.AccessToElectricity,
	}
}

func sortRecords(rows []models.JoinedRecord) {
	sort.Slice(rows, func(i, j int) bool { return models.Less(rows[i].Key(), rows[j].Key()) })
}
