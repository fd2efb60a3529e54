package models

// Key identifies a row in either dataset
type Key struct {
	Country string
	Year    int
}

// UsageRecord represents one country's internet usage for one year
type UsageRecord struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code,omitempty"` // ISO alpha-3, only set by the wide layout
	Year        int     `json:"year"`
	UsageMetric float64 `json:"usage_metric"` // Percent of population using the internet
}

// Key returns the (country, year) key of the record
func (r UsageRecord) Key() Key {
	return Key{Country: r.Country, Year: r.Year}
}

// IndicatorRecord represents one country's economic indicators for one year.
// Missing float values are NaN. A missing population is 0 with
// PopulationMissing set.
type IndicatorRecord struct {
	Country             string  `json:"country"`
	Year                int     `json:"year"`
	GDPPerCapita        float64 `json:"gdp_per_capita"`
	Population          int64   `json:"population"`
	PopulationMissing   bool    `json:"-"`
	AccessToElectricity float64 `json:"access_to_electricity"`
}

// Key returns the (country, year) key of the record
func (r IndicatorRecord) Key() Key {
	return Key{Country: r.Country, Year: r.Year}
}

// JoinedRecord is a usage row matched with the indicator row of the same key
type JoinedRecord struct {
	Country             string  `json:"country"`
	CountryCode         string  `json:"country_code,omitempty"`
	Year                int     `json:"year"`
	UsageMetric         float64 `json:"usage_metric"`
	GDPPerCapita        float64 `json:"gdp_per_capita"`
	Population          int64   `json:"population"`
	PopulationMissing   bool    `json:"-"`
	AccessToElectricity float64 `json:"access_to_electricity"`
}

// Key returns the (country, year) key of the record
func (r JoinedRecord) Key() Key {
	return Key{Country: r.Country, Year: r.Year}
}

// Less orders records by country name, then year
func Less(a, b Key) bool {
	if a.Country != b.Country {
		return a.Country < b.Country
	}
	return a.Year < b.Year
}
