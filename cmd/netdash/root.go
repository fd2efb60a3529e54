package main

import (
	"fmt"
	"io"

	"github.com/jgoulah/netdash/internal/config"
	"github.com/jgoulah/netdash/internal/dataset"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	usagePath      string
	indicatorsPath string
)

var rootCmd = &cobra.Command{
	Use:   "netdash",
	Short: "Explore internet usage against economic indicators",
	Long: `NetDash loads an internet usage CSV and an economic indicators CSV,
joins them on (country, year) and lets you filter the result by region and
year range, either in a browser dashboard or from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&usagePath, "usage", "", "internet usage CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&indicatorsPath, "indicators", "", "economic indicators CSV (overrides config)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file and applies the path flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if usagePath != "" {
		cfg.UsageCSV = usagePath
	}
	if indicatorsPath != "" {
		cfg.IndicatorsCSV = indicatorsPath
	}
	return cfg, nil
}

// saveConfig saves the configuration file
func saveConfig(cfg *config.Config) error {
	return config.Save(getConfigPath(), cfg)
}

// buildRegions applies the configured regions on top of (or instead of) the
// built-in catalogue
func buildRegions(cfg *config.Config) query.Regions {
	if cfg.ReplaceDefaultRegions && len(cfg.Regions) > 0 {
		return query.NewRegions(cfg.Regions)
	}
	return query.DefaultRegions().Merge(cfg.Regions)
}

// loadTables reads both CSV files named by the config
func loadTables(out io.Writer, cfg *config.Config) (*dataset.Tables, error) {
	fmt.Fprintf(out, "Loading %s and %s...\n", cfg.GetUsageCSV(), cfg.GetIndicatorsCSV())
	tables, err := dataset.Load(cfg.GetUsageCSV(), cfg.GetIndicatorsCSV())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✓ Loaded %d usage rows and %d indicator rows\n", len(tables.Usage), len(tables.Indicators))
	return tables, nil
}

// loadEngine loads config and data and builds the query engine
func loadEngine(out io.Writer) (*config.Config, *query.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	tables, err := loadTables(out, cfg)
	if err != nil {
		return nil, nil, err
	}
	engine := query.NewEngine(tables, buildRegions(cfg))
	fmt.Fprintf(out, "✓ Joined %d rows across %d countries\n", engine.Len(), len(engine.Countries()))
	return cfg, engine, nil
}

// filterFlags holds the region and year-range flags shared by several commands
type filterFlags struct {
	region string
	start  int
	end    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", query.AllRegions, "Region to include (all for every country)")
	cmd.Flags().IntVar(&f.start, "start", 0, "First year to include (default: earliest year in the data)")
	cmd.Flags().IntVar(&f.end, "end", 0, "Last year to include (default: latest year in the data)")
}

// filter resolves unset years against the engine's year range
func (f *filterFlags) filter(cmd *cobra.Command, engine *query.Engine) query.Filter {
	out := engine.DefaultFilter()
	out.Region = f.region
	if cmd.Flags().Changed("start") {
		out.StartYear = f.start
	}
	if cmd.Flags().Changed("end") {
		out.EndYear = f.end
	}
	return out
}
