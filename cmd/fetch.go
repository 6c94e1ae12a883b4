package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/swissgeo/internal/fetcher"
	"github.com/sells-group/swissgeo/internal/importer"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the configured source files into the data directory",
	Long:  "Downloads every source that has a url configured. Files whose ETag did not change since the last fetch are skipped.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})

		results, err := importer.Fetch(cmd.Context(), f, cfg.Data)
		if len(results) > 0 {
			formatFetchResults(cmd.OutOrStdout(), results)
		}
		if err != nil {
			return eris.Wrap(err, "fetch")
		}
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No sources to fetch.")
		}
		return nil
	},
}

func formatFetchResults(w io.Writer, results []importer.FetchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tSTATUS\tBYTES\tPATH")
	for _, r := range results {
		status := "unchanged"
		if r.Changed {
			status = "downloaded"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Dataset, status, r.Bytes, r.Path)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
