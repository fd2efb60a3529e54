package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jgoulah/netdash/internal/analysis"
	"github.com/jgoulah/netdash/internal/chart"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	first, last, _ := s.engine.YearRange()
	ov, _ := analysis.Summary(rows)

	view := HomeView{
		Regions:   s.engine.Regions().Names(),
		Filter:    f,
		FirstYear: first,
		LastYear:  last,
		Overview:  ov,
		Rows:      rows,
	}
	templ.Handler(Page("Global Internet Usage", "/", Home(view))).ServeHTTP(w, r)
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	countries := s.engine.Countries()
	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultCountry(countries)
	}

	view := CountryView{
		Countries: countries,
		Country:   name,
		Filter:    f,
		Series:    analysis.CountrySeries(rows, name),
	}
	templ.Handler(Page("Country Analysis", "/country", Country(view))).ServeHTTP(w, r)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	selectedCountries := r.URL.Query()["country"]
	hasData := false
	for _, c := range selectedCountries {
		if len(analysis.CountrySeries(rows, c)) > 0 {
			hasData = true
			break
		}
	}

	view := CompareView{
		Countries: s.engine.Countries(),
		Selected:  selectedCountries,
		Filter:    f,
		HasData:   hasData,
	}
	templ.Handler(Page("Compare Countries", "/compare", Compare(view))).ServeHTTP(w, r)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	year, err := selectedYear(r, rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	top, bottom := analysis.Ranking(rows, year, rankingSize)

	view := RankingView{
		Years:  analysis.Years(rows),
		Year:   year,
		Filter: f,
		Top:    top,
		Bottom: bottom,
	}
	templ.Handler(Page("Country Ranking", "/ranking", Ranking(view))).ServeHTTP(w, r)
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	year, err := selectedYear(r, rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	points, _ := analysis.Scatter(rows, year)

	view := EconomyView{
		Years:  analysis.Years(rows),
		Year:   year,
		Filter: f,
		Points: points,
	}
	templ.Handler(Page("Economic Insights", "/economy", Economy(view))).ServeHTTP(w, r)
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	year, err := selectedYear(r, rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matrix, err := analysis.Correlations(rows, year)
	if err != nil && !errors.Is(err, analysis.ErrNotEnoughData) {
		s.fail(w, r, err)
		return
	}

	view := CorrelationView{
		Years:  analysis.Years(rows),
		Year:   year,
		Filter: f,
		Labels: analysis.CorrelationLabels,
		Matrix: matrix,
	}
	templ.Handler(Page("Correlation Analysis", "/correlations", Correlations(view))).ServeHTTP(w, r)
}

func (s *Server) regionAverages(r *http.Request) ([]int, int, []analysis.RegionAverage, error) {
	_, rows, err := s.rows(r)
	if err != nil {
		return nil, 0, nil, err
	}
	year, err := selectedYear(r, rows)
	if err != nil {
		return nil, 0, nil, err
	}
	averages, err := analysis.RegionAverages(rows, s.engine.Regions(), year)
	if err != nil {
		return nil, 0, nil, err
	}
	return analysis.Years(rows), year, averages, nil
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	years, year, averages, err := s.regionAverages(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := RegionsView{
		Years:    years,
		Year:     year,
		Averages: averages,
	}
	templ.Handler(Page("Regional Insights", "/regions", Regions(view))).ServeHTTP(w, r)
}

// apiRecord is the JSON form of a joined row. Missing indicators encode as null.
type apiRecord struct {
	Country             string   `json:"country"`
	CountryCode         string   `json:"country_code,omitempty"`
	Year                int      `json:"year"`
	UsageMetric         float64  `json:"usage_metric"`
	GDPPerCapita        *float64 `json:"gdp_per_capita"`
	Population          *int64   `json:"population"`
	AccessToElectricity *float64 `json:"access_to_electricity"`
}

type apiResponse struct {
	Filter  query.Filter `json:"filter"`
	Count   int          `json:"count"`
	Records []apiRecord  `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := apiResponse{Filter: f, Count: len(rows), Records: make([]apiRecord, 0, len(rows))}
	for _, row := range rows {
		resp.Records = append(resp.Records, apiRecord{
			Country:             row.Country,
			CountryCode:         row.CountryCode,
			Year:                row.Year,
			UsageMetric:         row.UsageMetric,
			GDPPerCapita:        finite(row.GDPPerCapita),
			Population:          knownPopulation(row),
			AccessToElectricity: finite(row.AccessToElectricity),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Printf("encoding records: %v", err)
	}
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	trend := analysis.GlobalTrend(rows)
	s.svg(w, r, func(buf *bytes.Buffer) error {
		return chart.Line(buf, chart.LineSpec{
			Title:  "Global Average Internet Usage",
			XLabel: "Year",
			YLabel: "Usage (%)",
			Series: []chart.Series{series("Global average", trend)},
		})
	})
}

func (s *Server) handleGrowthChart(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	growth := analysis.YoYGrowth(analysis.GlobalTrend(rows))
	s.svg(w, r, func(buf *bytes.Buffer) error {
		return chart.Bars(buf, chart.BarSpec{
			Title: "Year-over-Year Growth (%)",
			Bars:  pointBars(growth),
		})
	})
}

func (s *Server) handleCountryChart(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultCountry(s.engine.Countries())
	}
	own := analysis.CountrySeries(rows, name)
	s.svg(w, r, func(buf *bytes.Buffer) error {
		if len(own) == 0 {
			return chart.ErrNoData
		}
		return chart.Line(buf, chart.LineSpec{
			Title:  name + " vs Global Average",
			XLabel: "Year",
			YLabel: "Usage (%)",
			Series: []chart.Series{
				series(name, own),
				series("Global average", analysis.GlobalTrend(rows)),
			},
		})
	})
}

func (s *Server) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var lines []chart.Series
	for _, c := range r.URL.Query()["country"] {
		lines = append(lines, series(c, analysis.CountrySeries(rows, c)))
	}
	s.svg(w, r, func(buf *bytes.Buffer) error {
		return chart.Line(buf, chart.LineSpec{
			Title:  "Internet Usage Comparison",
			XLabel: "Year",
			YLabel: "Usage (%)",
			Series: lines,
		})
	})
}

func (s *Server) handleRankingChart(top bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, rows, err := s.rows(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		year, err := selectedYear(r, rows)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		limit, err := intParam(r, "limit", rankingSize)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		highest, lowest := analysis.Ranking(rows, year, limit)

		title, vals := "Top Countries by Internet Usage", highest
		if !top {
			title, vals = "Bottom Countries by Internet Usage", lowest
		}
		title += " (" + strconv.Itoa(year) + ")"

		bars := make([]chart.Bar, 0, len(vals))
		for _, cv := range vals {
			bars = append(bars, chart.Bar{Label: cv.Country, Value: cv.Value})
		}
		s.svg(w, r, func(buf *bytes.Buffer) error {
			return chart.Bars(buf, chart.BarSpec{Title: title, Bars: bars})
		})
	}
}

func (s *Server) handleRegionsChart(w http.ResponseWriter, r *http.Request) {
	_, year, averages, err := s.regionAverages(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bars := make([]chart.Bar, 0, len(averages))
	for _, a := range averages {
		bars = append(bars, chart.Bar{Label: a.Region, Value: a.AverageUsage})
	}
	s.svg(w, r, func(buf *bytes.Buffer) error {
		return chart.Bars(buf, chart.BarSpec{
			Title: "Average Internet Usage by Region (" + strconv.Itoa(year) + ")",
			Bars:  bars,
		})
	})
}

func (s *Server) handleScatterChart(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	year, err := selectedYear(r, rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	points, gdpCap := analysis.Scatter(rows, year)

	spec := chart.ScatterSpec{
		Title:  "GDP per Capita vs Internet Usage (" + strconv.Itoa(year) + ")",
		XLabel: "GDP per capita (USD)",
		YLabel: "Usage (%)",
		XMax:   gdpCap,
	}
	for _, p := range points {
		spec.X = append(spec.X, p.GDP)
		spec.Y = append(spec.Y, p.Usage)
		spec.Color = append(spec.Color, p.Electricity)
	}
	s.svg(w, r, func(buf *bytes.Buffer) error {
		return chart.Scatter(buf, spec)
	})
}

// svg renders into a buffer so a failed chart never sends a partial body.
// ErrNoData becomes 204 No Content.
func (s *Server) svg(w http.ResponseWriter, r *http.Request, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	err := render(&buf)
	if errors.Is(err, chart.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Printf("writing %s: %v", r.URL.Path, err)
	}
}

func series(name string, pts []analysis.Point) chart.Series {
	out := chart.Series{Name: name}
	for _, p := range pts {
		out.X = append(out.X, float64(p.Year))
		out.Y = append(out.Y, p.Value)
	}
	return out
}

func pointBars(pts []analysis.Point) []chart.Bar {
	bars := make([]chart.Bar, 0, len(pts))
	for _, p := range pts {
		bars = append(bars, chart.Bar{Label: strconv.Itoa(p.Year), Value: p.Value})
	}
	return bars
}

func defaultCountry(countries []string) string {
	if slices.Contains(countries, preferredCountry) {
		return preferredCountry
	}
	if len(countries) > 0 {
		return countries[0]
	}
	return ""
}

func finite(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func knownPopulation(r models.JoinedRecord) *int64 {
	if r.PopulationMissing {
		return nil
	}
	return &r.Population
}
