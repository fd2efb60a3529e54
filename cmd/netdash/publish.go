package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/netdash/internal/publisher"
	"github.com/spf13/cobra"
)

var (
	publishFlags  filterFlags
	publishDryRun bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the latest figures per country to MQTT",
	Long: `Filters the joined rows by region and year range, then publishes each country's
most recent row as a retained JSON message on <topic_prefix>/<country>/state.`,
	RunE: runPublish,
}

func init() {
	publishFlags.register(publishCmd)
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Print the messages instead of publishing them")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, engine, err := loadEngine(out)
	if err != nil {
		return err
	}

	f := publishFlags.filter(cmd, engine)
	rows, err := engine.Query(f)
	if err != nil {
		return fmt.Errorf("querying %s: %w", f.Region, err)
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "No data for region %s between %d and %d\n", f.Region, f.StartYear, f.EndYear)
		return nil
	}

	if publishDryRun {
		msgs, err := publisher.BuildMessages(cfg.MQTT.GetTopicPrefix(), rows)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			fmt.Fprintf(out, "%s %s\n", m.Topic, m.Payload)
		}
		fmt.Fprintf(out, "\nDry run: %d messages not published\n", len(msgs))
		return nil
	}

	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Fprintf(out, "Publishing to %s under %s/...\n", cfg.MQTT.Broker, cfg.MQTT.GetTopicPrefix())
	sent, err := pub.Publish(rows)
	if err != nil {
		return fmt.Errorf("published %d messages before failing: %w", sent, err)
	}

	fmt.Fprintf(out, "✓ Published %d countries\n", sent)
	return nil
}
