package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/swissgeo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "swissgeo",
	Short:        "Swiss canton, district and postal community lookups",
	Long:         "Loads the Swiss political community (GDE) and postal community (PLZ6) registers, indexes them by canton, district and zip code, and answers queries from the command line or over HTTP.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
