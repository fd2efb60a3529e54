package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jgoulah/netdash/pkg/models"
)

// RegionCatalogue names regions and lists their member countries
type RegionCatalogue interface {
	Names() []string
	Countries(region string) ([]string, error)
}

// RegionAverage summarises one region for one year
type RegionAverage struct {
	Region       string  `json:"region"`
	Countries    int     `json:"countries"`
	AverageUsage float64 `json:"average_usage"`
	// Population sums the members with a known population. WeightedUsage
	// is NaN when none is known.
	Population    int64   `json:"population"`
	WeightedUsage float64 `json:"weighted_usage"`
}

// RegionAverages returns the mean usage of every region with rows in year,
// highest first. Regions without rows that year are left out.
func RegionAverages(rows []models.JoinedRecord, regions RegionCatalogue, year int) ([]RegionAverage, error) {
	byCountry := make(map[string]models.JoinedRecord)
	for _, r := range rows {
		if r.Year == year {
			byCountry[r.Country] = r
		}
	}

	var out []RegionAverage
	for _, name := range regions.Names() {
		countries, err := regions.Countries(name)
		if err != nil {
			return nil, err
		}

		var usage, known, weights []float64
		avg := RegionAverage{Region: name, WeightedUsage: math.NaN()}
		for _, c := range countries {
			r, ok := byCountry[c]
			if !ok {
				continue
			}
			usage = append(usage, r.UsageMetric)
			if !r.PopulationMissing && r.Population > 0 {
				known = append(known, r.UsageMetric)
				weights = append(weights, float64(r.Population))
				avg.Population += r.Population
			}
		}
		if len(usage) == 0 {
			continue
		}

		avg.Countries = len(usage)
		avg.AverageUsage = stat.Mean(usage, nil)
		if len(known) > 0 {
			avg.WeightedUsage = stat.Mean(known, weights)
		}
		out = append(out, avg)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageUsage > out[j].AverageUsage })
	return out, nil
}
