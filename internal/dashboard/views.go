package dashboard

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/netdash/internal/analysis"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
)

//go:generate templ generate

// NoDataMessage is shown in place of charts and tables when a filter matches nothing
const NoDataMessage = "No data for the selected filters"

type navItem struct {
	Path  string
	Label string
}

var navItems = []navItem{
	{"/", "Home"},
	{"/country", "Country Analysis"},
	{"/compare", "Compare Countries"},
	{"/ranking", "Country Ranking"},
	{"/economy", "Economic Insights"},
	{"/regions", "Regional Insights"},
	{"/correlations", "Correlation Analysis"},
}

// option is one entry of a select control
type option struct {
	Value    string
	Label    string
	Selected bool
}

func regionOptions(regions []string, current string) []option {
	out := []option{{Value: query.AllRegions, Label: "All regions", Selected: query.IsAllRegions(current)}}
	current = strings.TrimSpace(current)
	for _, name := range regions {
		out = append(out, option{Value: name, Label: name, Selected: strings.EqualFold(name, current)})
	}
	return out
}

func countryOptions(countries []string, chosen ...string) []option {
	set := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		set[c] = true
	}
	out := make([]option, 0, len(countries))
	for _, c := range countries {
		out = append(out, option{Value: c, Label: c, Selected: set[c]})
	}
	return out
}

// yearOptions lists the years newest first
func yearOptions(years []int, year int) []option {
	out := make([]option, 0, len(years))
	for i := len(years) - 1; i >= 0; i-- {
		y := strconv.Itoa(years[i])
		out = append(out, option{Value: y, Label: y, Selected: years[i] == year})
	}
	return out
}

// HomeView is everything the overview page needs
type HomeView struct {
	Regions   []string
	Filter    query.Filter
	FirstYear int
	LastYear  int
	Overview  analysis.Overview
	Rows      []models.JoinedRecord
}

type card struct {
	Label string
	Value string
}

func (v HomeView) cards() []card {
	ov := v.Overview
	return []card{
		{fmt.Sprintf("Average usage %d", ov.Year), fmt.Sprintf("%.1f%%", ov.AverageUsage)},
		{"Highest", fmt.Sprintf("%s (%.1f%%)", ov.Top.Country, ov.Top.Value)},
		{"Lowest", fmt.Sprintf("%s (%.1f%%)", ov.Lowest.Country, ov.Lowest.Value)},
		{"Countries", humanize.Comma(int64(ov.Countries))},
	}
}

// tableRows caps the home table at tableLimit rows
func (v HomeView) tableRows() []models.JoinedRecord {
	return v.Rows[:min(len(v.Rows), tableLimit)]
}

func (v HomeView) truncation() string {
	return fmt.Sprintf("Showing the first %s of %s rows.", humanize.Comma(tableLimit), humanize.Comma(int64(len(v.Rows))))
}

// CountryView backs the single-country page
type CountryView struct {
	Countries []string
	Country   string
	Filter    query.Filter
	Series    []analysis.Point
}

func (v CountryView) chartURL() string {
	qs := filterQuery(v.Filter)
	qs.Set("name", v.Country)
	return "/charts/country.svg?" + qs.Encode()
}

// CompareView backs the multi-country page
type CompareView struct {
	Countries []string
	Selected  []string
	Filter    query.Filter
	HasData   bool
}

func (v CompareView) chartURL() string {
	qs := filterQuery(v.Filter)
	for _, c := range v.Selected {
		qs.Add("country", c)
	}
	return "/charts/compare.svg?" + qs.Encode()
}

// RankingView backs the top and bottom ranking page
type RankingView struct {
	Years  []int
	Year   int
	Filter query.Filter
	Top    []analysis.CountryValue
	Bottom []analysis.CountryValue
}

// EconomyView backs the GDP scatter page
type EconomyView struct {
	Years  []int
	Year   int
	Filter query.Filter
	Points []analysis.ScatterPoint
}

func (v EconomyView) caption() string {
	return fmt.Sprintf("%d countries in %d. Dot colour follows access to electricity.", len(v.Points), v.Year)
}

// RegionsView backs the per-region comparison page
type RegionsView struct {
	Years    []int
	Year     int
	Averages []analysis.RegionAverage
}

// CorrelationView backs the correlation matrix page
type CorrelationView struct {
	Years  []int
	Year   int
	Filter query.Filter
	Labels []string
	Matrix [][]float64
}

func documentTitle(title string) string {
	return title + " · Internet Usage Dashboard"
}

func fixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func money(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fixed(v, 1)
}

func usage(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fixed(v, 2)
}

func population(r models.JoinedRecord) string {
	if r.PopulationMissing {
		return "n/a"
	}
	return humanize.Comma(r.Population)
}

func correlation(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fixed(v, 2)
}

func filterQuery(f query.Filter) url.Values {
	qs := url.Values{}
	qs.Set("region", f.Region)
	qs.Set("start", strconv.Itoa(f.StartYear))
	qs.Set("end", strconv.Itoa(f.EndYear))
	return qs
}

func chartURL(path string, f query.Filter) string {
	return path + "?" + filterQuery(f).Encode()
}

func yearChartURL(path string, year int, region string) string {
	qs := url.Values{}
	qs.Set("year", strconv.Itoa(year))
	qs.Set("region", region)
	return path + "?" + qs.Encode()
}
