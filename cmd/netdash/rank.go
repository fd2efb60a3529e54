package main

import (
	"fmt"
	"io"

	"github.com/jgoulah/netdash/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	rankYear   int
	rankLimit  int
	rankRegion string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show the highest and lowest internet usage for a year",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().IntVar(&rankYear, "year", 0, "Year to rank (default: latest year in the data)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 10, "Number of countries in each list")
	rankCmd.Flags().StringVar(&rankRegion, "region", "all", "Region to rank within")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	_, engine, err := loadEngine(out)
	if err != nil {
		return err
	}

	f := engine.DefaultFilter()
	f.Region = rankRegion
	rows, err := engine.Query(f)
	if err != nil {
		return fmt.Errorf("querying %s: %w", f.Region, err)
	}

	year := rankYear
	if year == 0 {
		year = f.EndYear
	}
	top, bottom := analysis.Ranking(rows, year, rankLimit)
	if len(top) == 0 {
		fmt.Fprintf(out, "No data for %d\n", year)
		return nil
	}

	printRanking(out, fmt.Sprintf("Top %d in %d", len(top), year), top)
	printRanking(out, fmt.Sprintf("Bottom %d in %d", len(bottom), year), bottom)
	return nil
}

func printRanking(out io.Writer, title string, vals []analysis.CountryValue) {
	fmt.Fprintf(out, "\n%s:\n", title)
	fmt.Fprintln(out, "----------------------------------------------")
	for i, cv := range vals {
		fmt.Fprintf(out, "%3d. %-32s  %6.2f%%\n", i+1, cv.Country, cv.Value)
	}
}
