package publisher

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jgoulah/netdash/internal/config"
	"github.com/jgoulah/netdash/pkg/models"
)

// Publisher sends per-country snapshots to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New connects to the configured broker
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("netdash-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	// Create and connect client
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.GetTopicPrefix(),
	}, nil
}

// Payload is the retained state message for one country
type Payload struct {
	Country             string   `json:"country"`
	CountryCode         string   `json:"country_code,omitempty"`
	Year                int      `json:"year"`
	UsageMetric         float64  `json:"usage_metric"`
	GDPPerCapita        *float64 `json:"gdp_per_capita"`
	Population          *int64   `json:"population"`
	AccessToElectricity *float64 `json:"access_to_electricity"`
}

// Message is a topic and its encoded payload
type Message struct {
	Topic   string
	Payload []byte
}

// BuildMessages keeps each country's most recent row and encodes it for
// <prefix>/<country slug>/state. Messages are ordered by topic.
func BuildMessages(prefix string, rows []models.JoinedRecord) ([]Message, error) {
	latest := make(map[string]models.JoinedRecord)
	for _, r := range rows {
		if cur, ok := latest[r.Country]; !ok || r.Year > cur.Year {
			latest[r.Country] = r
		}
	}

	slugs := topicSlugs(latest)
	msgs := make([]Message, 0, len(latest))
	for _, r := range latest {
		var pop *int64
		if !r.PopulationMissing {
			pop = &r.Population
		}
		body, err := json.Marshal(Payload{
			Country:             r.Country,
			CountryCode:         r.CountryCode,
			Year:                r.Year,
			UsageMetric:         r.UsageMetric,
			GDPPerCapita:        optional(r.GDPPerCapita),
			Population:          pop,
			AccessToElectricity: optional(r.AccessToElectricity),
		})
		if err != nil {
			return nil, fmt.Errorf("encoding payload for %s: %w", r.Country, err)
		}
		msgs = append(msgs, Message{
			Topic:   fmt.Sprintf("%s/%s/state", strings.TrimSuffix(prefix, "/"), slugs[r.Country]),
			Payload: body,
		})
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Topic < msgs[j].Topic })
	return msgs, nil
}

// Publish sends the latest row of every country as a retained message and
// returns how many were delivered
func (p *Publisher) Publish(rows []models.JoinedRecord) (int, error) {
	msgs, err := BuildMessages(p.topicPrefix, rows)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range msgs {
		token := p.client.Publish(m.Topic, 1, true, m.Payload)
		if !token.WaitTimeout(10 * time.Second) {
			return sent, fmt.Errorf("publishing %s: timed out", m.Topic)
		}
		if err := token.Error(); err != nil {
			return sent, fmt.Errorf("publishing %s: %w", m.Topic, err)
		}
		sent++
	}
	return sent, nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// topicSlugs maps every country to a unique, non-empty topic segment. A name
// with no usable characters falls back to its country code, then to an id
// derived from the name. Countries whose slugs collide get that id appended.
func topicSlugs(latest map[string]models.JoinedRecord) map[string]string {
	out := make(map[string]string, len(latest))
	owners := make(map[string][]string)
	for country, r := range latest {
		s := Slug(country)
		if s == "" {
			s = Slug(r.CountryCode)
		}
		if s == "" {
			s = "country_" + nameID(country)
		}
		out[country] = s
		owners[s] = append(owners[s], country)
	}
	for s, countries := range owners {
		if len(countries) < 2 {
			continue
		}
		for _, c := range countries {
			out[c] = s + "_" + nameID(c)
		}
	}
	return out
}

func nameID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:8]
}

// stripMarks returns a new chain for each use. Chains are stateful.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Slug folds accents to ASCII, lowercases a country name and replaces every
// run of characters other than letters and digits with a single underscore
func Slug(name string) string {
	if folded, _, err := transform.String(stripMarks(), name); err == nil {
		name = folded
	}
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
