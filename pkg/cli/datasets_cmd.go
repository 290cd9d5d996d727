package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newDatasetsCmd(newClient func() *Client) *cobra.Command {
	datasetsCmd := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect available datasets",
	}

	var (
		maxResults int
		skip       int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dss, total, err := newClient().ListDatasets(cmd.Context(), maxResults, skip)
			if err != nil {
				return err
			}
			return printDatasetList(cmd, dss, total)
		},
	}
	listCmd.Flags().IntVar(&maxResults, "max-results", 50, "Maximum datasets to return")
	listCmd.Flags().IntVar(&skip, "skip", 0, "Datasets to skip")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one dataset's manifest entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := newClient().GetDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printDataset(cmd, ds)
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema <id>",
		Short: "Show the columns a dataset exposes once loaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := newClient().GetDatasetSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), schema)
			}
			w := cmd.OutOrStdout()
			tw := newTabWriter(w)
			writeRow(tw, "DATASET", "COLUMNS", "EXAMPLE")
			writeRow(tw, schema.DatasetID, strings.Join(schema.Columns, ","), schema.ExampleQuery)
			return tw.Flush()
		},
	}

	datasetsCmd.AddCommand(listCmd, getCmd, schemaCmd)
	return datasetsCmd
}
