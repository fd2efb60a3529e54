package database

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/internal/dataset"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
)

func newTables(seed int64) *dataset.Tables {
	rng := rand.New(rand.NewSource(seed))
	t := &dataset.Tables{
		Usage:      make(map[models.Key]models.UsageRecord),
		Indicators: make(map[models.Key]models.IndicatorRecord),
	}
	for _, c := range []string{"Brazil", "Chad", "France", "Germany", "Japan", "Kenya", "Peru"} {
		for y := 2005; y <= 2015; y++ {
			k := models.Key{Country: c, Year: y}
			if rng.Intn(3) > 0 {
				t.Usage[k] = models.UsageRecord{Country: c, CountryCode: c[:3], Year: y, UsageMetric: float64(rng.Intn(10000)) / 100}
			}
			if rng.Intn(3) > 0 {
				t.Indicators[k] = models.IndicatorRecord{
					Country:             c,
					Year:                y,
					GDPPerCapita:        float64(rng.Intn(8000000)) / 100,
					Population:          rng.Int63n(300_000_000),
					AccessToElectricity: float64(rng.Intn(100)),
				}
			}
		}
	}
	return t
}

func openLoaded(t *testing.T, tables *dataset.Tables) *DB {
	t.Helper()
	db, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.LoadTables(context.Background(), tables))
	return db
}

func TestJoinedMatchesEngine(t *testing.T) {
	ctx := context.Background()
	tables := newTables(7)
	regions := query.DefaultRegions()
	engine := query.NewEngine(tables, regions)
	db := openLoaded(t, tables)

	filters := []query.Filter{
		{Region: "all", StartYear: 2000, EndYear: 2020},
		{Region: "Europe", StartYear: 2008, EndYear: 2012},
		{Region: "africa", StartYear: 2010, EndYear: 2010},
		{Region: "Oceania", StartYear: 2005, EndYear: 2015},
		{Region: "", StartYear: 2012, EndYear: 2009},
	}
	for _, f := range filters {
		want, err := engine.Query(f)
		require.NoError(t, err)
		got, err := db.Joined(ctx, regions, f)
		require.NoError(t, err)
		assert.Equal(t, want, got, "filter %+v", f)
	}
}

func TestJoinedUnknownRegion(t *testing.T) {
	db := openLoaded(t, newTables(1))
	_, err := db.Joined(context.Background(), query.DefaultRegions(), query.Filter{Region: "Mu", StartYear: 2015, EndYear: 2010})
	assert.ErrorIs(t, err, query.ErrUnknownRegion)
}

func TestMissingValuesRoundTripAsNaN(t *testing.T) {
	k := models.Key{Country: "Chad", Year: 2012}
	tables := &dataset.Tables{
		Usage: map[models.Key]models.UsageRecord{k: {Country: "Chad", Year: 2012, UsageMetric: 2.1}},
		Indicators: map[models.Key]models.IndicatorRecord{k: {
			Country: "Chad", Year: 2012, GDPPerCapita: math.NaN(), Population: 12_000_000, AccessToElectricity: math.NaN(),
		}},
	}
	db := openLoaded(t, tables)

	got, err := db.Joined(context.Background(), query.DefaultRegions(), query.Filter{StartYear: 2012, EndYear: 2012})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0].GDPPerCapita))
	assert.True(t, math.IsNaN(got[0].AccessToElectricity))
	assert.Equal(t, int64(12_000_000), got[0].Population)
	assert.Equal(t, "", got[0].CountryCode)
	assert.False(t, got[0].PopulationMissing)
}

func TestMissingPopulationStoredAsNull(t *testing.T) {
	k := models.Key{Country: "Eritrea", Year: 2020}
	tables := &dataset.Tables{
		Usage: map[models.Key]models.UsageRecord{k: {Country: "Eritrea", Year: 2020, UsageMetric: 1.3}},
		Indicators: map[models.Key]models.IndicatorRecord{k: {
			Country: "Eritrea", Year: 2020, GDPPerCapita: 600, PopulationMissing: true, AccessToElectricity: 52,
		}},
	}
	db := openLoaded(t, tables)

	res, err := db.Run(context.Background(), "SELECT population FROM indicators")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NULL"}}, res.Rows)

	got, err := db.Joined(context.Background(), query.DefaultRegions(), query.Filter{StartYear: 2020, EndYear: 2020})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].PopulationMissing)
	assert.Zero(t, got[0].Population)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	tables := newTables(3)
	db := openLoaded(t, tables)

	res, err := db.Run(ctx, "SELECT COUNT(*) AS n FROM joined")
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.Columns)
	require.Len(t, res.Rows, 1)

	want := len(query.Join(tables.Usage, tables.Indicators))
	assert.Equal(t, []string{itoa(want)}, res.Rows[0])

	res, err = db.Run(ctx, "  with c AS (SELECT country FROM usage) SELECT DISTINCT country FROM c ORDER BY country LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Brazil"}}, res.Rows)
}

func TestRunIsReadOnly(t *testing.T) {
	ctx := context.Background()
	db := openLoaded(t, newTables(3))

	_, err := db.Run(ctx, "DELETE FROM usage")
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = db.Run(ctx, "WITH x AS (SELECT 1) DELETE FROM usage")
	assert.Error(t, err)

	res, err := db.Run(ctx, "SELECT COUNT(*) FROM usage")
	require.NoError(t, err)
	assert.NotEqual(t, "0", res.Rows[0][0])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "2.5", formatValue(2.5))
}

func itoa(n int) string {
	return formatValue(int64(n))
}
