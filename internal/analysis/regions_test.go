package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
)

func TestRegionAverages(t *testing.T) {
	regions := query.NewRegions(map[string][]string{
		"Sahel":   {"Chad", "Niger", "Mali"},
		"Nordics": {"Denmark", "Norway"},
		"Andes":   {"Peru", "Bolivia"},
		"Empty":   {"Atlantis"},
	})
	rows := []models.JoinedRecord{
		{Country: "Chad", Year: 2011, UsageMetric: 3, Population: 12_000_000},
		{Country: "Niger", Year: 2011, UsageMetric: 1, Population: 4_000_000},
		{Country: "Mali", Year: 2011, UsageMetric: 5, PopulationMissing: true},
		{Country: "Denmark", Year: 2011, UsageMetric: 90, Population: 5_600_000},
		{Country: "Denmark", Year: 2010, UsageMetric: 88, Population: 5_500_000},
		{Country: "Peru", Year: 2011, UsageMetric: 36, PopulationMissing: true},
	}

	got, err := RegionAverages(rows, regions, 2011)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Nordics", got[0].Region)
	assert.Equal(t, 1, got[0].Countries)
	assert.InDelta(t, 90.0, got[0].AverageUsage, 1e-9)

	assert.Equal(t, "Andes", got[1].Region)
	assert.True(t, math.IsNaN(got[1].WeightedUsage))
	assert.Zero(t, got[1].Population)

	sahel := got[2]
	assert.Equal(t, 3, sahel.Countries)
	assert.InDelta(t, 3.0, sahel.AverageUsage, 1e-9)
	assert.Equal(t, int64(16_000_000), sahel.Population)
	// (3*12 + 1*4) / 16
	assert.InDelta(t, 2.5, sahel.WeightedUsage, 1e-9)
}

func TestRegionAveragesNoRows(t *testing.T) {
	got, err := RegionAverages(rows, query.DefaultRegions(), 1990)
	require.NoError(t, err)
	assert.Empty(t, got)
}
