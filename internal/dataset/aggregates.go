package dataset

// Aggregates lists the World Bank pseudo-countries that appear next to real
// countries in the published datasets. Rows for them are dropped when a file
// is read in the World Bank layout.
var Aggregates = map[string]bool{
	"Africa Eastern and Southern":                          true,
	"Africa Western and Central":                           true,
	"Arab World":                                           true,
	"Caribbean small states":                               true,
	"Central Europe and the Baltics":                       true,
	"Early-demographic dividend":                           true,
	"East Asia & Pacific":                                  true,
	"East Asia & Pacific (IDA & IBRD countries)":           true,
	"East Asia & Pacific (excluding high income)":          true,
	"Euro area":                                            true,
	"Europe & Central Asia":                                true,
	"Europe & Central Asia (IDA & IBRD countries)":         true,
	"Europe & Central Asia (excluding high income)":        true,
	"European Union":                                       true,
	"Fragile and conflict affected situations":             true,
	"Heavily indebted poor countries (HIPC)":               true,
	"High income":                                          true,
	"IBRD only":                                            true,
	"IDA & IBRD total":                                     true,
	"IDA blend":                                            true,
	"IDA only":                                             true,
	"IDA total":                                            true,
	"Late-demographic dividend":                            true,
	"Latin America & Caribbean":                            true,
	"Latin America & Caribbean (excluding high income)":    true,
	"Latin America & the Caribbean (IDA & IBRD countries)": true,
	"Least developed countries: UN classification":         true,
	"Low & middle income":                                  true,
	"Low income":                                           true,
	"Lower middle income":                                  true,
	"Middle East & North Africa":                           true,
	"Middle East & North Africa (IDA & IBRD countries)":    true,
	"Middle East & North Africa (excluding high income)":   true,
	"Middle income":                                        true,
	"North America":                                        true,
	"Not classified":                                       true,
	"OECD members":                                         true,
	"Other small states":                                   true,
	"Pacific island small states":                          true,
	"Post-demographic dividend":                            true,
	"Pre-demographic dividend":                             true,
	"Small states":                                         true,
	"South Asia":                                           true,
	"South Asia (IDA & IBRD)":                              true,
	"Sub-Saharan Africa":                                   true,
	"Sub-Saharan Africa (IDA & IBRD countries)":            true,
	"Sub-Saharan Africa (excluding high income)":           true,
	"Upper middle income":                                  true,
	"World":                                                true,
}
