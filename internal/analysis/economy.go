package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jgoulah/netdash/pkg/models"
)

// ScatterPoint is one country's GDP against its usage
type ScatterPoint struct {
	Country     string  `json:"country"`
	GDP         float64 `json:"gdp_per_capita"`
	Usage       float64 `json:"usage_metric"`
	Population  int64   `json:"population"`
	Electricity float64 `json:"access_to_electricity"`
}

// Scatter returns the GDP-vs-usage points for one year with missing values
// filled as 0, and the 99th percentile GDP used to clip the x axis.
func Scatter(rows []models.JoinedRecord, year int) ([]ScatterPoint, float64) {
	var pts []ScatterPoint
	var gdps []float64
	for _, r := range rows {
		if r.Year != year {
			continue
		}
		p := ScatterPoint{
			Country:     r.Country,
			GDP:         zeroNaN(r.GDPPerCapita),
			Usage:       r.UsageMetric,
			Population:  r.Population,
			Electricity: zeroNaN(r.AccessToElectricity),
		}
		pts = append(pts, p)
		gdps = append(gdps, p.GDP)
	}
	return pts, Quantile(gdps, 0.99)
}

// Quantile returns the q-th quantile using linear interpolation between the
// closest ranks (h = q*(n-1)). It returns 0 for an empty slice.
// stat.Quantile's LinInterp places h at q*n, which moves the clip point.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// CorrelationLabels names the variables of a correlation matrix, in order
var CorrelationLabels = []string{"Internet Usage", "GDP per Capita", "Access to Electricity", "Population Total"}

// Correlations returns the Pearson correlation matrix of usage, GDP,
// electricity access and population for one year. Rows with any missing
// value, population included, are skipped. A variable with zero variance
// correlates as NaN.
func Correlations(rows []models.JoinedRecord, year int) ([][]float64, error) {
	var cols [4][]float64
	for _, r := range rows {
		if r.Year != year {
			continue
		}
		vals := [4]float64{r.UsageMetric, r.GDPPerCapita, r.AccessToElectricity, float64(r.Population)}
		if r.PopulationMissing || hasNaN(vals[:]) {
			continue
		}
		for i, v := range vals {
			cols[i] = append(cols[i], v)
		}
	}
	if len(cols[0]) < 2 {
		return nil, ErrNotEnoughData
	}

	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			m[i][j] = Pearson(cols[i], cols[j])
			m[j][i] = m[i][j]
		}
	}
	return m, nil
}

// Pearson returns the correlation coefficient of two equal-length samples
func Pearson(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) || constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func constant(v []float64) bool {
	return floats.Min(v) == floats.Max(v)
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func hasNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
