package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jgoulah/netdash/internal/database"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <select statement>",
	Short: "Run a read-only SQL query over the loaded data",
	Long: `Loads both CSV files into an in-memory SQLite database and runs a single
SELECT against it. Tables: usage, indicators, and the joined view.`,
	Example: `  netdash sql "SELECT country, usage_metric FROM joined WHERE year = 2020 ORDER BY usage_metric DESC LIMIT 5"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tables, err := loadTables(out, cfg)
	if err != nil {
		return err
	}

	db, err := database.New()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.LoadTables(cmd.Context(), tables); err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}

	res, err := db.Run(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "(%d rows)\n", len(res.Rows))
	return nil
}
