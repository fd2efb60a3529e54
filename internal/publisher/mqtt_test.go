package publisher

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/netdash/internal/config"
	"github.com/jgoulah/netdash/pkg/models"
)

func TestBuildMessagesKeepsLatestYear(t *testing.T) {
	rows := []models.JoinedRecord{
		{Country: "Korea, Rep.", Year: 2019, UsageMetric: 96.2, GDPPerCapita: 31000, Population: 51_000_000, AccessToElectricity: 100},
		{Country: "Korea, Rep.", Year: 2021, UsageMetric: 97.6, GDPPerCapita: 34000, Population: 51_700_000, AccessToElectricity: 100},
		{Country: "Chad", Year: 2020, UsageMetric: 10.4, GDPPerCapita: math.NaN(), Population: 16_000_000, AccessToElectricity: math.NaN()},
	}

	msgs, err := BuildMessages("netdash/", rows)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "netdash/chad/state", msgs[0].Topic)
	assert.Equal(t, "netdash/korea_rep/state", msgs[1].Topic)

	var chad map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &chad))
	assert.Nil(t, chad["gdp_per_capita"])
	assert.Nil(t, chad["access_to_electricity"])
	assert.Equal(t, 10.4, chad["usage_metric"])

	var korea Payload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &korea))
	assert.Equal(t, 2021, korea.Year)
	require.NotNil(t, korea.GDPPerCapita)
	assert.Equal(t, 34000.0, *korea.GDPPerCapita)
	require.NotNil(t, korea.Population)
	assert.Equal(t, int64(51_700_000), *korea.Population)
}

func TestBuildMessagesMissingPopulationIsNull(t *testing.T) {
	msgs, err := BuildMessages("netdash", []models.JoinedRecord{
		{Country: "Eritrea", Year: 2020, UsageMetric: 1.3, GDPPerCapita: 600, PopulationMissing: true, AccessToElectricity: 52},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &got))
	assert.Contains(t, got, "population")
	assert.Nil(t, got["population"])
}

func TestBuildMessagesTopicFallbacks(t *testing.T) {
	rows := []models.JoinedRecord{
		{Country: "Curaçao", CountryCode: "CUW", Year: 2020, UsageMetric: 70},
		{Country: "中国", CountryCode: "CHN", Year: 2020, UsageMetric: 70},
		{Country: "日本", Year: 2020, UsageMetric: 90},
		{Country: "Korea, Rep.", Year: 2020, UsageMetric: 97},
		{Country: "Korea Rep", Year: 2020, UsageMetric: 97},
	}

	msgs, err := BuildMessages("netdash", rows)
	require.NoError(t, err)
	require.Len(t, msgs, len(rows))

	topics := make(map[string]bool)
	for _, m := range msgs {
		assert.NotContains(t, m.Topic, "//")
		assert.False(t, topics[m.Topic], "topic %s used twice", m.Topic)
		topics[m.Topic] = true
	}
	assert.True(t, topics["netdash/curacao/state"])
	assert.True(t, topics["netdash/chn/state"])
	assert.True(t, topics["netdash/country_"+nameID("日本")+"/state"])
	assert.True(t, topics["netdash/korea_rep_"+nameID("Korea, Rep.")+"/state"])
	assert.True(t, topics["netdash/korea_rep_"+nameID("Korea Rep")+"/state"])
}

func TestBuildMessagesEmpty(t *testing.T) {
	msgs, err := BuildMessages("netdash", nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "germany", Slug("Germany"))
	assert.Equal(t, "congo_dem_rep", Slug("Congo, Dem. Rep."))
	assert.Equal(t, "cote_d_ivoire", Slug("Cote d'Ivoire"))
	assert.Equal(t, "hong_kong_sar_china", Slug(" Hong Kong SAR, China "))
	assert.Equal(t, "curacao", Slug("Curaçao"))
	assert.Equal(t, "sao_tome_and_principe", Slug("São Tomé and Príncipe"))
	assert.Equal(t, "", Slug("中国"))
}

func TestNewRequiresBroker(t *testing.T) {
	_, err := New(config.MQTTConfig{})
	assert.Error(t, err)

	_, err = New(config.MQTTConfig{Enabled: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker address is required")
}
