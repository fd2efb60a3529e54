package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long:  `Creates the config file (./config.yaml unless --config is given) with every default spelled out, ready to edit.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.UsageCSV = cfg.GetUsageCSV()
	cfg.IndicatorsCSV = cfg.GetIndicatorsCSV()
	cfg.ListenAddr = cfg.GetListenAddr()
	cfg.MQTT.TopicPrefix = cfg.MQTT.GetTopicPrefix()

	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", path)
	return nil
}
