package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string

	cfg    *common.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "takeoff",
	Short: "Quantity take-off for German tender documents",
	Long: `takeoff reads floor plans and bills of quantities (LV) and extracts
the numbers a tender calculation starts from.

  - Room areas (NRF) per room, weighted by balcony and terrace factors
  - LV positions with quantity, unit and prices
  - Quantity deviations between LV and measured take-off
  - XLSX export of stored jobs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfigFile(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		// human readable logs on a terminal; stdout stays reserved for results
		c.Log.Format = "console"
		if err := c.Validate(); err != nil {
			return err
		}
		l, err := common.NewLogger(c.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (yaml, json or toml; keys as environment variables)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn", "log level (debug, info, warn, error)",
	)

	rootCmd.AddCommand(areasCmd, lvCmd, lineCmd, jobCmd, exportCmd, riskCmd, ingestCmd)
}
