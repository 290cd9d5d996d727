package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// getOutputFormat returns the effective output format from the root
// command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeRow(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func printRecord(cmd *cobra.Command, rec *QueryRecord) error {
	w := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(w, rec)
	}

	tw := newTabWriter(w)
	writeRow(tw, "ID", rec.ID)
	writeRow(tw, "STATUS", rec.Status)
	writeRow(tw, "FORMAT", rec.OutputFormat)
	if rec.RowCount != nil {
		writeRow(tw, "ROWS", fmt.Sprintf("%d", *rec.RowCount))
	}
	if rec.DurationMs != nil {
		writeRow(tw, "DURATION", fmt.Sprintf("%dms", *rec.DurationMs))
	}
	if rec.ErrorMessage != nil {
		writeRow(tw, "ERROR", *rec.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(rec.Result) > 0 {
		// csv results arrive as a JSON string; unwrap for readability.
		if rec.OutputFormat == "csv" {
			var raw string
			if err := json.Unmarshal(rec.Result, &raw); err == nil {
				fmt.Fprintln(w, raw)
				return nil
			}
		}
		fmt.Fprintln(w, string(rec.Result))
	}
	return nil
}

func printRecordList(cmd *cobra.Command, recs []QueryRecord, total int64) error {
	w := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(w, map[string]interface{}{"items": recs, "total": total})
	}

	tw := newTabWriter(w)
	writeRow(tw, "ID", "STATUS", "FORMAT", "CREATED", "QUERY")
	for i := range recs {
		rec := &recs[i]
		writeRow(tw, rec.ID, rec.Status, rec.OutputFormat,
			rec.CreatedAt.Format("2006-01-02 15:04:05"), truncate(rec.Query, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "total: %d\n", total)
	return nil
}

func printDataset(cmd *cobra.Command, ds *Dataset) error {
	w := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(w, ds)
	}

	tw := newTabWriter(w)
	writeRow(tw, "ID", ds.ID)
	writeRow(tw, "NAME", ds.Name)
	writeRow(tw, "STORAGE KEY", ds.StorageKey)
	writeRow(tw, "CONTENT TYPE", ds.ContentType)
	writeRow(tw, "SIZE", fmt.Sprintf("%d", ds.SizeBytes))
	return tw.Flush()
}

func printDatasetList(cmd *cobra.Command, dss []Dataset, total int64) error {
	w := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(w, map[string]interface{}{"items": dss, "total": total})
	}

	tw := newTabWriter(w)
	writeRow(tw, "ID", "NAME", "SIZE", "CREATED")
	for i := range dss {
		ds := &dss[i]
		writeRow(tw, ds.ID, ds.Name, fmt.Sprintf("%d", ds.SizeBytes),
			ds.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "total: %d\n", total)
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
