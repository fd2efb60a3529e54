package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AllRegions selects every country. The empty string means the same.
const AllRegions = "all"

var ErrUnknownRegion = errors.New("unknown region")

// defaultRegions uses World Bank country names so they line up with the
// published datasets.
var defaultRegions = map[string][]string{
	"Europe": {
		"Albania", "Austria", "Belarus", "Belgium", "Bosnia and Herzegovina", "Bulgaria",
		"Croatia", "Cyprus", "Czechia", "Denmark", "Estonia", "Finland", "France",
		"Germany", "Greece", "Hungary", "Iceland", "Ireland", "Italy", "Latvia",
		"Lithuania", "Luxembourg", "Malta", "Moldova", "Montenegro", "Netherlands",
		"North Macedonia", "Norway", "Poland", "Portugal", "Romania", "Russian Federation",
		"Serbia", "Slovak Republic", "Slovenia", "Spain", "Sweden", "Switzerland",
		"Ukraine", "United Kingdom",
	},
	"Asia": {
		"Afghanistan", "Bangladesh", "Bhutan", "Cambodia", "China", "Hong Kong SAR, China",
		"India", "Indonesia", "Japan", "Kazakhstan", "Korea, Rep.", "Kyrgyz Republic",
		"Lao PDR", "Malaysia", "Maldives", "Mongolia", "Myanmar", "Nepal", "Pakistan",
		"Philippines", "Singapore", "Sri Lanka", "Tajikistan", "Thailand", "Turkmenistan",
		"Uzbekistan", "Viet Nam",
	},
	"Africa": {
		"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi", "Cameroon",
		"Chad", "Congo, Dem. Rep.", "Congo, Rep.", "Cote d'Ivoire", "Ethiopia", "Gabon",
		"Ghana", "Guinea", "Kenya", "Madagascar", "Malawi", "Mali", "Morocco",
		"Mozambique", "Namibia", "Niger", "Nigeria", "Rwanda", "Senegal", "Sierra Leone",
		"Somalia", "South Africa", "Sudan", "Tanzania", "Togo", "Tunisia", "Uganda",
		"Zambia", "Zimbabwe",
	},
	"North America": {
		"Canada", "Costa Rica", "Cuba", "Dominican Republic", "El Salvador", "Guatemala",
		"Haiti", "Honduras", "Jamaica", "Mexico", "Nicaragua", "Panama", "United States",
	},
	"South America": {
		"Argentina", "Bolivia", "Brazil", "Chile", "Colombia", "Ecuador", "Guyana",
		"Paraguay", "Peru", "Suriname", "Uruguay", "Venezuela, RB",
	},
	"Oceania": {
		"Australia", "Fiji", "New Zealand", "Papua New Guinea", "Samoa", "Solomon Islands",
		"Tonga", "Vanuatu",
	},
	"Middle East": {
		"Bahrain", "Egypt, Arab Rep.", "Iran, Islamic Rep.", "Iraq", "Israel", "Jordan",
		"Kuwait", "Lebanon", "Oman", "Qatar", "Saudi Arabia", "Syrian Arab Republic",
		"Turkiye", "United Arab Emirates", "Yemen, Rep.",
	},
}

// Regions maps region names to their member countries. Region lookups
// ignore case, country membership does not.
type Regions struct {
	byName map[string]region
}

type region struct {
	name      string
	countries map[string]bool
}

// NewRegions builds a catalogue from name -> countries
func NewRegions(m map[string][]string) Regions {
	return Regions{byName: map[string]region{}}.Merge(m)
}

// DefaultRegions returns the built-in catalogue
func DefaultRegions() Regions {
	return NewRegions(defaultRegions)
}

// Merge returns a copy of r with m's regions added. A region already present
// is replaced.
func (r Regions) Merge(m map[string][]string) Regions {
	out := Regions{byName: make(map[string]region, len(r.byName)+len(m))}
	for k, v := range r.byName {
		out.byName[k] = v
	}
	for name, countries := range m {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, AllRegions) {
			continue
		}
		set := make(map[string]bool, len(countries))
		for _, c := range countries {
			set[strings.TrimSpace(c)] = true
		}
		out.byName[strings.ToLower(name)] = region{name: name, countries: set}
	}
	return out
}

// Names returns the region names in ascending order
func (r Regions) Names() []string {
	names := make([]string, 0, len(r.byName))
	for _, reg := range r.byName {
		names = append(names, reg.name)
	}
	sort.Strings(names)
	return names
}

// Countries returns the sorted member countries of a region
func (r Regions) Countries(name string) ([]string, error) {
	reg, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	out := make([]string, 0, len(reg.countries))
	for c := range reg.countries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// Contains reports whether country belongs to the region. The "all"
// region contains every country.
func (r Regions) Contains(name, country string) (bool, error) {
	match, err := r.matcher(name)
	if err != nil {
		return false, err
	}
	return match(country), nil
}

// matcher resolves a region name once so filtering does a single map lookup
// per row.
func (r Regions) matcher(name string) (func(country string) bool, error) {
	name = strings.TrimSpace(name)
	if IsAllRegions(name) {
		return func(string) bool { return true }, nil
	}
	reg, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	return func(country string) bool { return reg.countries[country] }, nil
}

// IsAllRegions reports whether name selects every country
func IsAllRegions(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, AllRegions)
}
