package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var regionsVerbose bool

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions available for filtering",
	Long:  `Lists the built-in regions plus any defined in the config file. Does not read the CSV files.`,
	RunE:  runRegions,
}

func init() {
	regionsCmd.Flags().BoolVarP(&regionsVerbose, "verbose", "v", false, "Also list each region's countries")
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	regions := buildRegions(cfg)
	for _, name := range regions.Names() {
		countries, err := regions.Countries(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-16s %3d countries\n", name, len(countries))
		if regionsVerbose {
			fmt.Fprintf(out, "  %s\n", strings.Join(countries, ", "))
		}
	}
	return nil
}
