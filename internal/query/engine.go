package query

import (
	"sort"

	"github.com/jgoulah/netdash/internal/dataset"
	"github.com/jgoulah/netdash/pkg/models"
)

// Filter selects joined rows by region and an inclusive year range
type Filter struct {
	Region    string `json:"region"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// Contains reports whether year lies in [StartYear, EndYear]
func (f Filter) Contains(year int) bool {
	return year >= f.StartYear && year <= f.EndYear
}

// Engine answers filter queries against the joined table. It is read-only
// after construction and safe to share between requests.
type Engine struct {
	rows      []models.JoinedRecord
	regions   Regions
	countries []string
	minYear   int
	maxYear   int
}

// NewEngine joins the loaded tables and indexes the result
func NewEngine(tables *dataset.Tables, regions Regions) *Engine {
	return NewEngineFromRows(Join(tables.Usage, tables.Indicators), regions)
}

// NewEngineFromRows builds an engine over already joined rows
func NewEngineFromRows(rows []models.JoinedRecord, regions Regions) *Engine {
	sorted := make([]models.JoinedRecord, len(rows))
	copy(sorted, rows)
	sortRecords(sorted)

	e := &Engine{rows: sorted, regions: regions}
	seen := make(map[string]bool)
	for i, r := range sorted {
		if !seen[r.Country] {
			seen[r.Country] = true
			e.countries = append(e.countries, r.Country)
		}
		if i == 0 || r.Year < e.minYear {
			e.minYear = r.Year
		}
		if i == 0 || r.Year > e.maxYear {
			e.maxYear = r.Year
		}
	}
	sort.Strings(e.countries)
	return e
}

// Query returns the rows whose country is in f.Region and whose year is in
// the inclusive range, ordered by country then year. A range with
// StartYear > EndYear matches nothing. No matches is not an error.
func (e *Engine) Query(f Filter) ([]models.JoinedRecord, error) {
	match, err := e.regions.matcher(f.Region)
	if err != nil {
		return nil, err
	}

	out := []models.JoinedRecord{}
	if f.StartYear > f.EndYear {
		return out, nil
	}
	for _, r := range e.rows {
		if f.Contains(r.Year) && match(r.Country) {
			out = append(out, r)
		}
	}
	return out, nil
}

// All returns every joined row
func (e *Engine) All() []models.JoinedRecord {
	out := make([]models.JoinedRecord, len(e.rows))
	copy(out, e.rows)
	return out
}

// Len returns the number of joined rows
func (e *Engine) Len() int {
	return len(e.rows)
}

// Countries returns the distinct countries present after the join
func (e *Engine) Countries() []string {
	out := make([]string, len(e.countries))
	copy(out, e.countries)
	return out
}

// YearRange returns the first and last year present. ok is false when the
// join is empty.
func (e *Engine) YearRange() (first, last int, ok bool) {
	if len(e.rows) == 0 {
		return 0, 0, false
	}
	return e.minYear, e.maxYear, true
}

// Regions returns the region catalogue used for filtering
func (e *Engine) Regions() Regions {
	return e.regions
}

// DefaultFilter covers every region and the full year range
func (e *Engine) DefaultFilter() Filter {
	return Filter{Region: AllRegions, StartYear: e.minYear, EndYear: e.maxYear}
}
