package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newQueryCmd(newClient func() *Client) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Submit and inspect ad-hoc queries",
	}

	var (
		datasetIDs []string
		format     string
		limit      int
		wait       bool
	)
	submitCmd := &cobra.Command{
		Use:   "submit <sql>",
		Short: "Submit a query against one or more datasets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			rec, err := client.SubmitQuery(cmd.Context(), args[0], datasetIDs, format, limit)
			if err != nil {
				return err
			}
			if wait {
				rec, err = client.WaitForResult(cmd.Context(), rec.ID, 500*time.Millisecond)
				if err != nil {
					return err
				}
			}
			return printRecord(cmd, rec)
		},
	}
	submitCmd.Flags().StringSliceVarP(&datasetIDs, "dataset", "d", nil, "Dataset ID bound positionally as dataset_1, dataset_2, ... (repeatable)")
	submitCmd.Flags().StringVarP(&format, "format", "f", "json", "Result format (json, csv, table)")
	submitCmd.Flags().IntVar(&limit, "limit", 0, "Row cap applied to the result (0 = server default)")
	submitCmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the query reaches a terminal status")
	_ = submitCmd.MarkFlagRequired("dataset")

	resultCmd := &cobra.Command{
		Use:   "result <id>",
		Short: "Fetch a query record and its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newClient().GetResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRecord(cmd, rec)
		},
	}

	var (
		maxResults int
		skip       int
	)
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "List query history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, total, err := newClient().ListResults(cmd.Context(), maxResults, skip)
			if err != nil {
				return err
			}
			return printRecordList(cmd, recs, total)
		},
	}
	resultsCmd.Flags().IntVar(&maxResults, "max-results", 50, "Maximum records to return")
	resultsCmd.Flags().IntVar(&skip, "skip", 0, "Records to skip")

	cancelCmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an in-flight query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newClient().CancelQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "query %s: %s\n", rec.ID, rec.Status)
			return nil
		},
	}

	queryCmd.AddCommand(submitCmd, resultCmd, resultsCmd, cancelCmd)
	return queryCmd
}
