package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/pkg/models"
)

var rows = []models.JoinedRecord{
	{Country: "Chad", Year: 2010, UsageMetric: 2, GDPPerCapita: 900, Population: 11_000_000, AccessToElectricity: 6},
	{Country: "Chad", Year: 2011, UsageMetric: 3, GDPPerCapita: 950, Population: 12_000_000, AccessToElectricity: 7},
	{Country: "Denmark", Year: 2010, UsageMetric: 88, GDPPerCapita: 58000, Population: 5_500_000, AccessToElectricity: 100},
	{Country: "Denmark", Year: 2011, UsageMetric: 90, GDPPerCapita: 61000, Population: 5_600_000, AccessToElectricity: 100},
	{Country: "Peru", Year: 2011, UsageMetric: 36, GDPPerCapita: math.NaN(), Population: 29_000_000, AccessToElectricity: 88},
}

func TestSummary(t *testing.T) {
	ov, ok := Summary(rows)
	require.True(t, ok)
	assert.Equal(t, 2011, ov.Year)
	assert.Equal(t, 3, ov.Countries)
	assert.InDelta(t, 43.0, ov.AverageUsage, 1e-9)
	assert.Equal(t, CountryValue{Country: "Denmark", Value: 90}, ov.Top)
	assert.Equal(t, CountryValue{Country: "Chad", Value: 3}, ov.Lowest)

	_, ok = Summary(nil)
	assert.False(t, ok)
}

func TestGlobalTrendAndGrowth(t *testing.T) {
	trend := GlobalTrend(rows)
	require.Len(t, trend, 2)
	assert.Equal(t, 2010, trend[0].Year)
	assert.InDelta(t, 45.0, trend[0].Value, 1e-9)
	assert.InDelta(t, 43.0, trend[1].Value, 1e-9)

	growth := YoYGrowth(trend)
	require.Len(t, growth, 1)
	assert.Equal(t, 2011, growth[0].Year)
	assert.InDelta(t, -4.444444, growth[0].Value, 1e-5)

	assert.Empty(t, YoYGrowth([]Point{{Year: 2000, Value: 0}, {Year: 2001, Value: 5}}))
	assert.Empty(t, YoYGrowth(nil))
}

func TestCountrySeries(t *testing.T) {
	assert.Equal(t, []Point{{Year: 2010, Value: 88}, {Year: 2011, Value: 90}}, CountrySeries(rows, "Denmark"))
	assert.Empty(t, CountrySeries(rows, "Narnia"))
}

func TestRanking(t *testing.T) {
	top, bottom := Ranking(rows, 2011, 2)
	assert.Equal(t, []CountryValue{{"Denmark", 90}, {"Peru", 36}}, top)
	assert.Equal(t, []CountryValue{{"Chad", 3}, {"Peru", 36}}, bottom)

	top, bottom = Ranking(rows, 2011, 10)
	assert.Len(t, top, 3)
	assert.Len(t, bottom, 3)

	top, bottom = Ranking(rows, 1999, 10)
	assert.Nil(t, top)
	assert.Nil(t, bottom)
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{2010, 2011}, Years(rows))
}

func TestScatterFillsMissing(t *testing.T) {
	pts, capGDP := Scatter(rows, 2011)
	require.Len(t, pts, 3)
	assert.Equal(t, "Peru", pts[2].Country)
	assert.Equal(t, 0.0, pts[2].GDP)
	assert.Greater(t, capGDP, 50000.0)
	assert.LessOrEqual(t, capGDP, 61000.0)
}

func TestQuantile(t *testing.T) {
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
	assert.Equal(t, 3.0, Quantile([]float64{5, 1, 3}, 0.5))
	assert.InDelta(t, 2.5, Quantile([]float64{1, 2, 3, 4}, 0.5), 1e-9)
	assert.Equal(t, 4.0, Quantile([]float64{1, 2, 3, 4}, 1))
}

func TestCorrelations(t *testing.T) {
	m, err := Correlations(rows, 2011)
	require.NoError(t, err)
	require.Len(t, m, len(CorrelationLabels))
	for i := range m {
		assert.InDelta(t, 1.0, m[i][i], 1e-9)
		for j := range m {
			assert.InDelta(t, m[i][j], m[j][i], 1e-12)
		}
	}
	// Peru is skipped for its missing GDP, leaving Chad and Denmark
	assert.InDelta(t, 1.0, m[0][1], 1e-9)
	assert.InDelta(t, -1.0, m[0][3], 1e-9)

	_, err = Correlations(rows, 2009)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCorrelationsSkipMissingPopulation(t *testing.T) {
	year := []models.JoinedRecord{
		{Country: "A", Year: 2020, UsageMetric: 10, GDPPerCapita: 1000, Population: 10, AccessToElectricity: 50},
		{Country: "B", Year: 2020, UsageMetric: 20, GDPPerCapita: 3000, Population: 20, AccessToElectricity: 70},
		{Country: "C", Year: 2020, UsageMetric: 30, GDPPerCapita: 2000, PopulationMissing: true, AccessToElectricity: 90},
	}
	m, err := Correlations(year, 2020)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m[0][3], 1e-9)
	assert.InDelta(t, 1.0, m[0][1], 1e-9)

	_, err = Correlations(year[1:], 2020)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1, 1}, []float64{1, 2})))
	assert.True(t, math.IsNaN(Pearson(nil, nil)))
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2}, []float64{1})))
	assert.InDelta(t, 0.8, Pearson([]float64{1, 2, 3, 4}, []float64{1, 3, 2, 4}), 1e-12)
}
