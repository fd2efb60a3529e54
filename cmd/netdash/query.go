package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/netdash/pkg/models"
)

var queryFlags filterFlags

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List joined rows for a region and year range",
	Long:  `Displays the joined usage and indicator rows matching the region and inclusive year range.`,
	RunE:  runQuery,
}

func init() {
	queryFlags.register(queryCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	_, engine, err := loadEngine(out)
	if err != nil {
		return err
	}

	f := queryFlags.filter(cmd, engine)
	rows, err := engine.Query(f)
	if err != nil {
		return fmt.Errorf("querying %s: %w", f.Region, err)
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No data for region %s between %d and %d\n", f.Region, f.StartYear, f.EndYear)
		return nil
	}

	fmt.Fprintf(out, "\n%s, %d-%d:\n", f.Region, f.StartYear, f.EndYear)
	fmt.Fprintln(out, "------------------------------------------------------------------------------------")
	fmt.Fprintf(out, "%-32s  %4s  %8s  %12s  %15s  %7s\n", "Country", "Year", "Usage %", "GDP/capita", "Population", "Elec %")
	fmt.Fprintln(out, "------------------------------------------------------------------------------------")

	var total float64
	for _, r := range rows {
		fmt.Fprintf(out, "%-32s  %4d  %8.2f  %12s  %15s  %7s\n",
			r.Country, r.Year, r.UsageMetric, formatFloat(r.GDPPerCapita, 0),
			formatPopulation(r), formatFloat(r.AccessToElectricity, 1))
		total += r.UsageMetric
	}

	fmt.Fprintln(out, "------------------------------------------------------------------------------------")
	fmt.Fprintf(out, "Average usage: %.2f%% (%d rows)\n", total/float64(len(rows)), len(rows))
	return nil
}

// formatPopulation prints the population with thousands separators, or n/a
// when missing
func formatPopulation(r models.JoinedRecord) string {
	if r.PopulationMissing {
		return "n/a"
	}
	return humanize.Comma(r.Population)
}

// formatFloat prints a value with thousands separators, or n/a when missing
func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return humanize.CommafWithDigits(v, decimals)
}
