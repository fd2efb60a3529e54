package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jgoulah/netdash/pkg/models"
)

// Tables holds both datasets keyed by (country, year). It is never mutated
// after Load returns.
type Tables struct {
	Usage      map[models.Key]models.UsageRecord
	Indicators map[models.Key]models.IndicatorRecord
}

// Load reads the usage and indicator files. Any failure is a *LoadError.
func Load(usagePath, indicatorPath string) (*Tables, error) {
	usage, err := LoadUsage(usagePath)
	if err != nil {
		return nil, err
	}
	indicators, err := LoadIndicators(indicatorPath)
	if err != nil {
		return nil, err
	}
	return &Tables{Usage: usage, Indicators: indicators}, nil
}

// UsageRecords returns the usage table ordered by country, then year
func (t *Tables) UsageRecords() []models.UsageRecord {
	out := make([]models.UsageRecord, 0, len(t.Usage))
	for _, r := range t.Usage {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return models.Less(out[i].Key(), out[j].Key()) })
	return out
}

// IndicatorRecords returns the indicator table ordered by country, then year
func (t *Tables) IndicatorRecords() []models.IndicatorRecord {
	out := make([]models.IndicatorRecord, 0, len(t.Indicators))
	for _, r := range t.Indicators {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return models.Less(out[i].Key(), out[j].Key()) })
	return out
}

// LoadUsage reads an internet usage file from disk
func LoadUsage(path string) (map[models.Key]models.UsageRecord, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadUsage(f, path)
}

// LoadIndicators reads an economic indicators file from disk
func LoadIndicators(path string) (map[models.Key]models.IndicatorRecord, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadIndicators(f, path)
}

func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrMissingFile}
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return f, nil
}

// ReadUsage parses usage data in either the long layout
// (country,year,usage_metric) or the wide World Bank layout
// (Country Name,Country Code,2000,2001,...). source names the input in errors.
func ReadUsage(r io.Reader, source string) (map[models.Key]models.UsageRecord, error) {
	cr := newReader(r)
	header, err := readHeader(cr, source)
	if err != nil {
		return nil, err
	}

	switch {
	case equalColumns(header, "country", "year", "usage_metric"):
		return readUsageLong(cr, source)
	case isWideUsage(header):
		return readUsageWide(cr, source, header)
	default:
		return nil, loadErr(source, 1, ErrBadHeader,
			"want country,year,usage_metric or Country Name,Country Code,<years...>, got %s", strings.Join(header, ","))
	}
}

func readUsageLong(cr *csv.Reader, source string) (map[models.Key]models.UsageRecord, error) {
	out := make(map[models.Key]models.UsageRecord)
	seen := make(map[models.Key]struct{})
	for {
		row, line, err := readRow(cr, source)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		country := strings.TrimSpace(row[0])
		if country == "" {
			return nil, loadErr(source, line, ErrMalformedRow, "empty country")
		}
		year, err := parseYear(row[1])
		if err != nil {
			return nil, loadErr(source, line, ErrMalformedRow, "year %q", row[1])
		}
		key := models.Key{Country: country, Year: year}
		if _, dup := seen[key]; dup {
			return nil, loadErr(source, line, ErrDuplicateKey, "%s %d", country, year)
		}
		seen[key] = struct{}{}

		usage, ok := parseUsage(row[2])
		if !ok {
			continue
		}
		out[key] = models.UsageRecord{Country: country, Year: year, UsageMetric: usage}
	}
}

func readUsageWide(cr *csv.Reader, source string, header []string) (map[models.Key]models.UsageRecord, error) {
	years := make([]int, len(header))
	columns := make(map[int]int, len(header))
	for i := 2; i < len(header); i++ {
		years[i], _ = strconv.Atoi(header[i])
		if prev, dup := columns[years[i]]; dup {
			return nil, loadErr(source, 1, ErrDuplicateKey, "year %d in columns %d and %d", years[i], prev+1, i+1)
		}
		columns[years[i]] = i
	}

	out := make(map[models.Key]models.UsageRecord)
	seen := make(map[string]int)
	for {
		row, line, err := readRow(cr, source)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		country := strings.TrimSpace(row[0])
		if country == "" {
			return nil, loadErr(source, line, ErrMalformedRow, "empty country")
		}
		if Aggregates[country] {
			continue
		}
		if prev, dup := seen[country]; dup {
			return nil, loadErr(source, line, ErrDuplicateKey, "%s already defined on line %d", country, prev)
		}
		seen[country] = line

		code := strings.TrimSpace(row[1])
		for i := 2; i < len(row); i++ {
			usage, ok := parseUsage(row[i])
			if !ok {
				continue
			}
			rec := models.UsageRecord{Country: country, CountryCode: code, Year: years[i], UsageMetric: usage}
			out[rec.Key()] = rec
		}
	}
}

// ReadIndicators parses indicator data in either the long layout
// (country,year,gdp_per_capita,population) or the World Bank layout, which
// must carry country_name, year, gdp_per_capita and population_total and may
// carry access_to_electricity.
func ReadIndicators(r io.Reader, source string) (map[models.Key]models.IndicatorRecord, error) {
	cr := newReader(r)
	header, err := readHeader(cr, source)
	if err != nil {
		return nil, err
	}

	cols := indicatorColumns{country: -1, year: -1, gdp: -1, population: -1, electricity: -1}
	worldBank := false
	switch {
	case equalColumns(header, "country", "year", "gdp_per_capita", "population"):
		cols = indicatorColumns{country: 0, year: 1, gdp: 2, population: 3, electricity: -1}
	default:
		for i, h := range header {
			switch h {
			case "country_name":
				cols.country = i
			case "year":
				cols.year = i
			case "gdp_per_capita":
				cols.gdp = i
			case "population_total":
				cols.population = i
			case "access_to_electricity":
				cols.electricity = i
			}
		}
		if cols.country < 0 || cols.year < 0 || cols.gdp < 0 || cols.population < 0 {
			return nil, loadErr(source, 1, ErrBadHeader,
				"want country,year,gdp_per_capita,population or a World Bank header with country_name,year,gdp_per_capita,population_total, got %s",
				strings.Join(header, ","))
		}
		worldBank = true
	}

	out := make(map[models.Key]models.IndicatorRecord)
	for {
		row, line, err := readRow(cr, source)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		country := strings.TrimSpace(row[cols.country])
		if country == "" {
			return nil, loadErr(source, line, ErrMalformedRow, "empty country")
		}
		if worldBank && Aggregates[country] {
			continue
		}
		year, err := parseYear(row[cols.year])
		if err != nil {
			return nil, loadErr(source, line, ErrMalformedRow, "year %q", row[cols.year])
		}

		pop, known, err := parsePopulation(row[cols.population])
		if err != nil {
			return nil, loadErr(source, line, ErrMalformedRow, "%v", err)
		}
		rec := models.IndicatorRecord{
			Country:             country,
			Year:                year,
			GDPPerCapita:        parseFloat(row[cols.gdp]),
			Population:          pop,
			PopulationMissing:   !known,
			AccessToElectricity: math.NaN(),
		}
		if cols.electricity >= 0 {
			rec.AccessToElectricity = parseFloat(row[cols.electricity])
		}

		if _, dup := out[rec.Key()]; dup {
			return nil, loadErr(source, line, ErrDuplicateKey, "%s %d", country, year)
		}
		out[rec.Key()] = rec
	}
}

type indicatorColumns struct {
	country, year, gdp, population, electricity int
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

// readHeader reads and normalizes the header row. The reader then enforces
// the header's field count on every following row.
func readHeader(cr *csv.Reader, source string) ([]string, error) {
	header, err := cr.Read()
	if err == io.EOF {
		return nil, loadErr(source, 0, ErrBadHeader, "empty file")
	}
	if err != nil {
		return nil, loadErr(source, 1, ErrMalformedRow, "%v", err)
	}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, nil
}

func readRow(cr *csv.Reader, source string) ([]string, int, error) {
	row, err := cr.Read()
	if err == io.EOF {
		return nil, 0, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, perr.StartLine, loadErr(source, perr.StartLine, ErrMalformedRow, "%v", perr.Err)
		}
		return nil, 0, loadErr(source, 0, ErrMalformedRow, "%v", err)
	}
	line, _ := cr.FieldPos(0)
	return row, line, nil
}

func equalColumns(header []string, want ...string) bool {
	if len(header) != len(want) {
		return false
	}
	for i := range want {
		if header[i] != want[i] {
			return false
		}
	}
	return true
}

func isWideUsage(header []string) bool {
	if len(header) < 3 || header[0] != "country name" || header[1] != "country code" {
		return false
	}
	for _, h := range header[2:] {
		if len(h) != 4 {
			return false
		}
		if _, err := strconv.Atoi(h); err != nil {
			return false
		}
	}
	return true
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	// Exports from dataframe tools often write years as floats
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// parseUsage strips everything but digits and dots before parsing. ok is
// false when nothing numeric remains, which drops the cell.
func parseUsage(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// maxPopulation is the first float64 that no longer fits an int64
const maxPopulation = float64(1 << 63)

// parsePopulation rounds to the nearest person. known is false for an empty
// or non-numeric cell; a value outside [0, 2^63) is an error.
func parsePopulation(s string) (pop int64, known bool, err error) {
	v := parseFloat(s)
	if math.IsNaN(v) {
		return 0, false, nil
	}
	if v < 0 || v >= maxPopulation {
		return 0, false, fmt.Errorf("population %q out of range", strings.TrimSpace(s))
	}
	return int64(math.Round(v)), true, nil
}
