// Package analysis derives the dashboard views from joined rows. Every
// function is pure and works on rows already narrowed by the query layer.
package analysis

import (
	"errors"
	"sort"

	"github.com/jgoulah/netdash/pkg/models"
)

var ErrNotEnoughData = errors.New("not enough data")

// Point is one (x, y) sample of a series
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// CountryValue pairs a country with a value
type CountryValue struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// Overview holds the headline figures for the latest year in the rows
type Overview struct {
	Year         int          `json:"year"`
	AverageUsage float64      `json:"average_usage"`
	Top          CountryValue `json:"top"`
	Lowest       CountryValue `json:"lowest"`
	Countries    int          `json:"countries"`
}

// Summary computes the headline figures. ok is false for empty input.
func Summary(rows []models.JoinedRecord) (Overview, bool) {
	if len(rows) == 0 {
		return Overview{}, false
	}
	latest := rows[0].Year
	for _, r := range rows {
		if r.Year > latest {
			latest = r.Year
		}
	}

	ov := Overview{Year: latest}
	var sum float64
	for _, r := range rows {
		if r.Year != latest {
			continue
		}
		if ov.Countries == 0 || r.UsageMetric > ov.Top.Value {
			ov.Top = CountryValue{Country: r.Country, Value: r.UsageMetric}
		}
		if ov.Countries == 0 || r.UsageMetric < ov.Lowest.Value {
			ov.Lowest = CountryValue{Country: r.Country, Value: r.UsageMetric}
		}
		sum += r.UsageMetric
		ov.Countries++
	}
	ov.AverageUsage = sum / float64(ov.Countries)
	return ov, true
}

// GlobalTrend returns the mean usage per year, ascending by year
func GlobalTrend(rows []models.JoinedRecord) []Point {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range rows {
		sums[r.Year] += r.UsageMetric
		counts[r.Year]++
	}

	out := make([]Point, 0, len(sums))
	for year, sum := range sums {
		out = append(out, Point{Year: year, Value: sum / float64(counts[year])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// YoYGrowth returns the percent change between consecutive points of an
// ascending series. The first point has no predecessor and is dropped, as
// is any point whose predecessor is zero.
func YoYGrowth(series []Point) []Point {
	var out []Point
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, Point{Year: series[i].Year, Value: (series[i].Value - prev) / prev * 100})
	}
	return out
}

// CountrySeries returns one country's usage over time
func CountrySeries(rows []models.JoinedRecord, country string) []Point {
	var out []Point
	for _, r := range rows {
		if r.Country == country {
			out = append(out, Point{Year: r.Year, Value: r.UsageMetric})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Ranking returns the n highest-usage countries (descending) and the n
// lowest (ascending) for one year
func Ranking(rows []models.JoinedRecord, year, n int) (top, bottom []CountryValue) {
	var all []CountryValue
	for _, r := range rows {
		if r.Year == year {
			all = append(all, CountryValue{Country: r.Country, Value: r.UsageMetric})
		}
	}
	if len(all) == 0 || n <= 0 {
		return nil, nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].Country < all[j].Country
	})
	k := min(n, len(all))
	top = append([]CountryValue(nil), all[:k]...)

	bottom = make([]CountryValue, 0, k)
	for i := len(all) - 1; i >= len(all)-k; i-- {
		bottom = append(bottom, all[i])
	}
	return top, bottom
}

// Years returns the distinct years present, ascending
func Years(rows []models.JoinedRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}
