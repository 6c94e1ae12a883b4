package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/swissgeo/internal/geoindex"
	"github.com/sells-group/swissgeo/internal/model"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the geography index",
	Long:  "Loads both registers and answers a single canton, district or zip code question.",
}

// withIndex adapts a query that needs a loaded index into a cobra RunE.
func withIndex(fn func(w io.Writer, idx *geoindex.Index, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context(), cfg, "query")
		if err != nil {
			return err
		}
		return fn(cmd.OutOrStdout(), idx, args)
	}
}

// -- query canton-communities --

var queryCantonCommunitiesCmd = &cobra.Command{
	Use:   "canton-communities <canton-code>",
	Short: "Count political communities in a canton",
	Args:  cobra.ExactArgs(1),
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, args []string) error {
		n, err := idx.CountPoliticalCommunitiesInCanton(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	}),
}

// -- query canton-districts --

var queryCantonDistrictsCmd = &cobra.Command{
	Use:   "canton-districts <canton-code>",
	Short: "Count districts in a canton",
	Args:  cobra.ExactArgs(1),
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, args []string) error {
		n, err := idx.CountDistrictsInCanton(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	}),
}

// -- query district-communities --

var queryDistrictCommunitiesCmd = &cobra.Command{
	Use:   "district-communities <district-number>",
	Short: "Count political communities in a district",
	Args:  cobra.ExactArgs(1),
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, args []string) error {
		n, err := idx.CountPoliticalCommunitiesInDistrict(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	}),
}

// -- query zip-district --

var zipDistrictAll bool

var queryZipDistrictCmd = &cobra.Command{
	Use:   "zip-district <zip-code>",
	Short: "Show the district a zip code belongs to",
	Long:  "Prints one district name for the zip code. A zip code spanning several districts prints the alphabetically first one unless --all is set.",
	Args:  cobra.ExactArgs(1),
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, args []string) error {
		if !zipDistrictAll {
			name, err := idx.DistrictNameForZip(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(w, name)
			return nil
		}

		names, err := idx.AllDistrictNamesForZip(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return nil
	}),
}

// -- query last-update --

var queryLastUpdateCmd = &cobra.Command{
	Use:   "last-update <postal-community-name>",
	Short: "Show the latest change date of the communities behind a postal name",
	Args:  cobra.ExactArgs(1),
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, args []string) error {
		d, err := idx.LastUpdateForPostalCommunityName(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, d.Format(model.DateLayout))
		return nil
	}),
}

// -- query cantons --

var queryCantonsCmd = &cobra.Command{
	Use:   "cantons",
	Short: "List cantons",
	Args:  cobra.NoArgs,
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, _ []string) error {
		formatCantons(w, idx.Cantons())
		return nil
	}),
}

// -- query without-postal --

var queryWithoutPostalCmd = &cobra.Command{
	Use:   "without-postal",
	Short: "List political communities no postal community refers to",
	Args:  cobra.NoArgs,
	RunE: withIndex(func(w io.Writer, idx *geoindex.Index, _ []string) error {
		formatCommunities(w, idx.PoliticalCommunitiesWithoutPostalCommunity())
		return nil
	}),
}

func formatCantons(w io.Writer, cantons []model.Canton) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tDISTRICTS\tCOMMUNITIES")
	for _, c := range cantons {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.Code, c.Name, len(c.DistrictNumbers), len(c.PoliticalCommunityNumbers))
	}
	tw.Flush() //nolint:errcheck
}

func formatCommunities(w io.Writer, communities []model.PoliticalCommunity) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tNAME\tCANTON\tDISTRICT\tLAST UPDATE")
	for _, pc := range communities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			pc.Number, pc.Name, pc.CantonCode, pc.DistrictNumber, pc.LastUpdate.Format(model.DateLayout))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	queryZipDistrictCmd.Flags().BoolVar(&zipDistrictAll, "all", false, "print every district the zip code spans")

	queryCmd.AddCommand(
		queryCantonCommunitiesCmd,
		queryCantonDistrictsCmd,
		queryDistrictCommunitiesCmd,
		queryZipDistrictCmd,
		queryLastUpdateCmd,
		queryCantonsCmd,
		queryWithoutPostalCmd,
	)
	rootCmd.AddCommand(queryCmd)
}
