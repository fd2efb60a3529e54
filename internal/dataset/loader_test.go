package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/pkg/models"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadLongLayouts(t *testing.T) {
	usage := writeFile(t, "usage.csv", "country,year,usage_metric\nGermany,2012,82.3\nFrance,2020,84.8\n")
	ind := writeFile(t, "ind.csv", "country,year,gdp_per_capita,population\nGermany,2012,44000.5,80425823\nUSA,2012,51784,314339099\n")

	tables, err := Load(usage, ind)
	require.NoError(t, err)

	assert.Len(t, tables.Usage, 2)
	assert.Equal(t, 82.3, tables.Usage[models.Key{Country: "Germany", Year: 2012}].UsageMetric)

	de := tables.Indicators[models.Key{Country: "Germany", Year: 2012}]
	assert.Equal(t, 44000.5, de.GDPPerCapita)
	assert.Equal(t, int64(80425823), de.Population)
	assert.True(t, math.IsNaN(de.AccessToElectricity))

	recs := tables.UsageRecords()
	require.Len(t, recs, 2)
	assert.Equal(t, "France", recs[0].Country)
	assert.Equal(t, "Germany", recs[1].Country)
}

func TestReadUsageWideLayout(t *testing.T) {
	body := "\ufeffCountry Name,Country Code,2000,2001,2002\n" +
		"Germany,DEU,30.2,\"31,5\",..\n" +
		"World,WLD,6.7,8.0,10.6\n" +
		"Chad,TCD,0.04,0.05,0.2\n"

	got, err := ReadUsage(strings.NewReader(body), "wide.csv")
	require.NoError(t, err)

	// World is an aggregate, Germany 2002 is missing
	assert.Len(t, got, 5)
	de := got[models.Key{Country: "Germany", Year: 2001}]
	assert.Equal(t, "DEU", de.CountryCode)
	assert.Equal(t, 315.0, de.UsageMetric)
	_, ok := got[models.Key{Country: "Germany", Year: 2002}]
	assert.False(t, ok)
	_, ok = got[models.Key{Country: "World", Year: 2000}]
	assert.False(t, ok)
}

func TestReadIndicatorsWorldBankLayout(t *testing.T) {
	body := "country_name,country_id,year,gdp_per_capita,access_to_electricity,population_total\n" +
		"Kenya,KEN,2015,1336.9,41.6,47878339\n" +
		"Kenya,KEN,2016,,45.0,49051686.0\n" +
		"Euro area,EMU,2015,34000,100,340000000\n"

	got, err := ReadIndicators(strings.NewReader(body), "econ.csv")
	require.NoError(t, err)
	require.Len(t, got, 2)

	k15 := got[models.Key{Country: "Kenya", Year: 2015}]
	assert.Equal(t, 41.6, k15.AccessToElectricity)
	k16 := got[models.Key{Country: "Kenya", Year: 2016}]
	assert.True(t, math.IsNaN(k16.GDPPerCapita))
	assert.Equal(t, int64(49051686), k16.Population)
	assert.False(t, k16.PopulationMissing)
}

func TestReadIndicatorsMissingPopulation(t *testing.T) {
	body := "country_name,year,gdp_per_capita,population_total\n" +
		"Eritrea,2020,600,\n" +
		"Eritrea,2019,590,n/a\n" +
		"Kenya,2020,1900,53000000\n"

	got, err := ReadIndicators(strings.NewReader(body), "econ.csv")
	require.NoError(t, err)

	for _, year := range []int{2019, 2020} {
		er := got[models.Key{Country: "Eritrea", Year: year}]
		assert.True(t, er.PopulationMissing, "year %d", year)
		assert.Zero(t, er.Population)
	}
	assert.False(t, got[models.Key{Country: "Kenya", Year: 2020}].PopulationMissing)
}

func TestReadIndicatorsPopulationOutOfRange(t *testing.T) {
	for _, pop := range []string{"1e30", "-5", "inf"} {
		t.Run(pop, func(t *testing.T) {
			body := "country,year,gdp_per_capita,population\nUSA,2012,51784,1\nUSA,2013,52000," + pop + "\n"
			_, err := ReadIndicators(strings.NewReader(body), "ind.csv")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRow)

			var lerr *LoadError
			require.True(t, errors.As(err, &lerr))
			assert.Equal(t, 3, lerr.Line)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		usage    string
		want     error
		wantLine int
	}{
		{
			name:     "duplicate key",
			usage:    "country,year,usage_metric\nGermany,2012,82.3\nGermany,2012,80.1\n",
			want:     ErrDuplicateKey,
			wantLine: 3,
		},
		{
			name:     "duplicate key with missing value",
			usage:    "country,year,usage_metric\nGermany,2012,82.3\nGermany,2012,\n",
			want:     ErrDuplicateKey,
			wantLine: 3,
		},
		{
			name:     "bad header",
			usage:    "nation,year,usage\nGermany,2012,82.3\n",
			want:     ErrBadHeader,
			wantLine: 1,
		},
		{
			name:  "empty file",
			usage: "",
			want:  ErrBadHeader,
		},
		{
			name:     "bad year",
			usage:    "country,year,usage_metric\nGermany,twenty,82.3\n",
			want:     ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "wrong field count",
			usage:    "country,year,usage_metric\nGermany,2012\n",
			want:     ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "duplicate country in wide layout",
			usage:    "Country Name,Country Code,2000\nChad,TCD,1\nChad,TCD,2\n",
			want:     ErrDuplicateKey,
			wantLine: 3,
		},
		{
			name:     "repeated year column in wide layout",
			usage:    "Country Name,Country Code,2012,2012\nGermany,DEU,82.3,80.1\n",
			want:     ErrDuplicateKey,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "usage.csv", tt.usage)
			_, err := LoadUsage(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var lerr *LoadError
			require.True(t, errors.As(err, &lerr))
			assert.Equal(t, path, lerr.Path)
			assert.Equal(t, tt.wantLine, lerr.Line)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	ind := writeFile(t, "ind.csv", "country,year,gdp_per_capita,population\n")
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), ind)

	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestIndicatorDuplicateKey(t *testing.T) {
	body := "country,year,gdp_per_capita,population\nUSA,2012,1,2\nUSA,2012,3,4\n"
	_, err := ReadIndicators(strings.NewReader(body), "ind.csv")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "ind.csv:3")
}

func TestIndicatorBadHeader(t *testing.T) {
	_, err := ReadIndicators(strings.NewReader("country,year,gdp\nUSA,2012,1\n"), "ind.csv")
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestParseUsage(t *testing.T) {
	v, ok := parseUsage(" 45.5% ")
	assert.True(t, ok)
	assert.Equal(t, 45.5, v)

	_, ok = parseUsage("..")
	assert.False(t, ok)

	_, ok = parseUsage("n/a")
	assert.False(t, ok)
}

func TestParsePopulation(t *testing.T) {
	pop, known, err := parsePopulation("49051686.4")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, int64(49051686), pop)

	_, known, err = parsePopulation("")
	require.NoError(t, err)
	assert.False(t, known)

	_, _, err = parsePopulation("9.3e18")
	assert.Error(t, err)
}

func TestParseYearAcceptsWholeFloats(t *testing.T) {
	y, err := parseYear("2012.0")
	require.NoError(t, err)
	assert.Equal(t, 2012, y)

	_, err = parseYear("2012.5")
	assert.Error(t, err)
}
