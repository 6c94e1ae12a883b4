package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/swissgeo/internal/geoindex"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entity counts of the loaded index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		idx, err := loadIndex(cmd.Context(), cfg, "query")
		if err != nil {
			return err
		}
		return writeStats(cmd.OutOrStdout(), idx.Stats(), statsFormat)
	},
}

func writeStats(w io.Writer, st geoindex.Stats, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(st), "stats: encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(st), "stats: encode yaml")
	default:
		return eris.Errorf("stats: unknown format %q (want json or yaml)", format)
	}
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(statsCmd)
}
