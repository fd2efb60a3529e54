package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	rows := []models.JoinedRecord{
		{Country: "Germany", Year: 2019, UsageMetric: 88.1, GDPPerCapita: 46800, Population: 83_100_000, AccessToElectricity: 100},
		{Country: "Germany", Year: 2020, UsageMetric: 89.8, GDPPerCapita: 46200, Population: 83_200_000, AccessToElectricity: 100},
		{Country: "France", Year: 2019, UsageMetric: 83.3, GDPPerCapita: 40500, Population: 67_200_000, AccessToElectricity: 100},
		{Country: "France", Year: 2020, UsageMetric: 84.8, GDPPerCapita: 39000, Population: 67_400_000, AccessToElectricity: 100},
		{Country: "Kenya", Year: 2019, UsageMetric: 23.0, GDPPerCapita: 1900, Population: 51_900_000, AccessToElectricity: 69.7},
		{Country: "Kenya", Year: 2020, UsageMetric: 29.5, GDPPerCapita: math.NaN(), Population: 53_000_000, AccessToElectricity: 71.4},
		{Country: "Cote d'Ivoire", Year: 2020, UsageMetric: 36.3, GDPPerCapita: 2300, Population: 26_800_000, AccessToElectricity: 69.9},
		{Country: "United States", Year: 2019, UsageMetric: 89.4, GDPPerCapita: 65100, Population: 328_300_000, AccessToElectricity: 100},
		{Country: "United States", Year: 2020, UsageMetric: 90.9, GDPPerCapita: 63500, Population: 331_500_000, AccessToElectricity: 100},
	}
	engine := query.NewEngineFromRows(rows, query.DefaultRegions())
	return NewServer(engine, log.New(io.Discard, "", 0)).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHomeRendersOverview(t *testing.T) {
	rec := get(t, testHandler(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Global Internet Usage")
	assert.Contains(t, body, "United States (90.9%)")
	assert.Contains(t, body, "Kenya (29.5%)")
	assert.Contains(t, body, "/charts/trend.svg?")
	assert.Contains(t, body, "Cote d&#39;Ivoire")
	assert.Contains(t, body, "83,200,000")
	assert.NotContains(t, body, NoDataMessage)
}

func TestHomeFiltersByRegion(t *testing.T) {
	rec := get(t, testHandler(t), "/?region=europe&start=2020&end=2020")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<td>Germany</td><td>2020</td>")
	assert.Contains(t, body, "<td>France</td><td>2020</td>")
	assert.NotContains(t, body, "<td>Germany</td><td>2019</td>")
	assert.NotContains(t, body, "Kenya")
}

func TestHomeEmptySelection(t *testing.T) {
	h := testHandler(t)
	for _, target := range []string{
		"/?start=1990&end=1995",
		"/?start=2020&end=2019",
		"/?region=Oceania",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), NoDataMessage, target)
		assert.NotContains(t, rec.Body.String(), "<img", target)
	}
}

func TestBadRequests(t *testing.T) {
	h := testHandler(t)
	for _, target := range []string{
		"/?start=abc",
		"/?end=20x0",
		"/?region=Atlantis",
		"/charts/trend.svg?region=Atlantis",
		"/ranking?year=latest",
		"/api/records?start=soon",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestChartsRenderSVG(t *testing.T) {
	h := testHandler(t)
	for _, target := range []string{
		"/charts/trend.svg",
		"/charts/growth.svg",
		"/charts/country.svg?name=Kenya",
		"/charts/compare.svg?country=Germany&country=Kenya",
		"/charts/ranking-top.svg?year=2020",
		"/charts/ranking-bottom.svg?year=2019&limit=2",
		"/charts/scatter.svg?year=2020",
		"/charts/regions.svg?year=2020",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"), target)
		assert.Contains(t, rec.Body.String(), "<svg", target)
	}
}

func TestChartsWithoutDataReturnNoContent(t *testing.T) {
	h := testHandler(t)
	for _, target := range []string{
		"/charts/trend.svg?start=1990&end=1991",
		"/charts/growth.svg?start=2020&end=2020",
		"/charts/country.svg?name=Atlantis",
		"/charts/compare.svg",
		"/charts/ranking-top.svg?year=1990",
		"/charts/scatter.svg?region=Oceania",
		"/charts/regions.svg?year=1990",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusNoContent, rec.Code, target)
		assert.Empty(t, rec.Body.String(), target)
	}
}

func TestCountryPageDefaultsToUnitedStates(t *testing.T) {
	rec := get(t, testHandler(t), "/country")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="United States" selected>United States</option>`)
	assert.Contains(t, body, "name=United+States")
}

func TestComparePage(t *testing.T) {
	h := testHandler(t)

	rec := get(t, h, "/compare")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select one or more countries")

	rec = get(t, h, "/compare?country=Germany&country=France")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "country=Germany&amp;country=France")
}

func TestRankingPage(t *testing.T) {
	rec := get(t, testHandler(t), "/ranking")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="2020" selected>2020</option>`)
	assert.Contains(t, body, "<td>United States</td><td>90.90</td>")
	assert.Contains(t, body, "Top 5")
}

func TestEconomyAndCorrelationPages(t *testing.T) {
	h := testHandler(t)

	rec := get(t, h, "/economy?year=2020")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "5 countries in 2020")

	rec = get(t, h, "/correlations?year=2019")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<th>GDP per Capita</th>")
	assert.Contains(t, body, "<td>1.00</td>")

	rec = get(t, h, "/correlations?year=1990")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough complete rows")
}

func TestRegionsPage(t *testing.T) {
	h := testHandler(t)

	rec := get(t, h, "/regions")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Regional Insights")
	assert.Contains(t, body, `<a href="/regions" class="active">`)
	assert.Contains(t, body, `<option value="2020" selected>2020</option>`)
	assert.Contains(t, body, "<td>Europe</td><td>2</td><td>87.30</td><td>87.56</td><td>150,600,000</td>")
	assert.Contains(t, body, "<td>North America</td><td>1</td><td>90.90</td>")
	assert.Contains(t, body, "/charts/regions.svg?region=all&amp;year=2020")
	assert.NotContains(t, body, "<td>Oceania</td>")

	rec = get(t, h, "/regions?year=1990")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), NoDataMessage)
	assert.NotContains(t, rec.Body.String(), "<img")
}

func TestRecordsAPI(t *testing.T) {
	rec := get(t, testHandler(t), "/api/records?region=Africa&start=2020&end=2020")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Count   int              `json:"count"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "Cote d'Ivoire", resp.Records[0]["country"])
	assert.Equal(t, "Kenya", resp.Records[1]["country"])
	assert.Nil(t, resp.Records[1]["gdp_per_capita"])
	assert.Equal(t, 71.4, resp.Records[1]["access_to_electricity"])
}

func TestRecordsAPIMissingPopulationIsNull(t *testing.T) {
	rows := []models.JoinedRecord{
		{Country: "Eritrea", Year: 2020, UsageMetric: 1.3, GDPPerCapita: 600, AccessToElectricity: 52, PopulationMissing: true},
		{Country: "Kenya", Year: 2020, UsageMetric: 29.5, GDPPerCapita: 1900, Population: 53_000_000, AccessToElectricity: 71.4},
	}
	h := NewServer(query.NewEngineFromRows(rows, query.DefaultRegions()), log.New(io.Discard, "", 0)).Handler()

	rec := get(t, h, "/api/records")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Nil(t, resp.Records[0]["population"])
	assert.Equal(t, 53e6, resp.Records[1]["population"])

	rec = get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Eritrea</td><td>2020</td><td>1.30</td><td>$600</td><td>n/a</td>")
}

func TestPagesEscapeCountryNames(t *testing.T) {
	rows := []models.JoinedRecord{
		{Country: `<b>"Bold" & Co</b>`, Year: 2020, UsageMetric: 50, GDPPerCapita: 1000, Population: 1000, AccessToElectricity: 90},
	}
	h := NewServer(query.NewEngineFromRows(rows, query.DefaultRegions()), log.New(io.Discard, "", 0)).Handler()

	for _, target := range []string{"/", "/country", "/ranking"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		body := rec.Body.String()
		assert.NotContains(t, body, "<b>", target)
		assert.Contains(t, body, "&lt;b&gt;&#34;Bold&#34; &amp; Co&lt;/b&gt;", target)
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, testHandler(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := get(t, testHandler(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	engine := query.NewEngineFromRows(nil, query.DefaultRegions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewServer(engine, log.New(io.Discard, "", 0)).ListenAndServe(ctx, "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestEmptyEngineRendersNoData(t *testing.T) {
	engine := query.NewEngineFromRows(nil, query.DefaultRegions())
	h := NewServer(engine, nil).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), NoDataMessage)

	rec = get(t, h, "/charts/trend.svg")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
