package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>...",
	Short: "Submit CSV or JSON files for import",
	Long: `Submit one file, or up to five files as a batch.

Examples:
  heroimport submit heroes.csv
  heroimport submit a.csv b.json --user alice`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmitCmd,
}

var progressCmd = &cobra.Command{
	Use:   "progress <import-id>",
	Short: "Show import progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressCmd,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List imports visible to the current user",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCmd,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all import history (administrators only)",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClearCmd,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)

	progressCmd.Flags().BoolP("watch", "w", false, "Poll until the import finishes")
	progressCmd.Flags().Duration("interval", time.Second, "Polling interval for --watch")
}

func runSubmitCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userName)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		resp, err := client.Submit(args[0])
		if err != nil {
			return fmt.Errorf("submit failed: %w", err)
		}
		if jsonOutput {
			return printJSON(out, resp)
		}
		fmt.Fprintf(out, "Import #%d started for %s\n", resp.ImportID, resp.FileName)
		return nil
	}

	resp, err := client.SubmitBatch(args)
	if err != nil {
		return fmt.Errorf("batch submit failed: %w", err)
	}
	if jsonOutput {
		return printJSON(out, resp)
	}
	printBatch(out, len(args), resp)
	return nil
}

func printBatch(w io.Writer, submitted int, resp *BatchResponse) {
	for _, imp := range resp.Imports {
		if imp.Error != "" {
			fmt.Fprintf(w, "  %-30s FAILED   %s\n", truncate(imp.FileName, 30), imp.Error)
			continue
		}
		fmt.Fprintf(w, "  %-30s #%-7d %s\n", truncate(imp.FileName, 30), imp.ImportID, imp.Status)
	}
	if skipped := submitted - len(resp.Imports); skipped > 0 {
		fmt.Fprintf(w, "%d file(s) skipped (empty or not CSV/JSON)\n", skipped)
	}
}

func runProgressCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid import ID: %s", args[0])
	}
	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")

	client := NewClient(serverURL, userName)
	out := cmd.OutOrStdout()

	for {
		p, err := client.Progress(id)
		if err != nil {
			return fmt.Errorf("progress fetch failed: %w", err)
		}
		if jsonOutput {
			if err := printJSON(out, p); err != nil {
				return err
			}
		} else {
			printProgress(out, p)
		}
		if !watch || p.Finished() {
			return nil
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
}

func printProgress(w io.Writer, p *ProgressResponse) {
	fmt.Fprintf(w, "#%d %s  %s  %s %3d%%  (%d/%d, %d ok, %d failed)\n",
		p.ImportID, p.FileName, p.Status, progressBar(p.Percent, 20), p.Percent,
		p.Processed, p.Total, p.Success, p.Failed)
	if p.ErrorMessage != "" {
		fmt.Fprintf(w, "  error: %s\n", p.ErrorMessage)
	}
}

func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	bar := make([]byte, width)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '.'
		}
	}
	return "[" + string(bar) + "]"
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userName)
	resp, err := client.History()
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printHistory(cmd.OutOrStdout(), resp)
	return nil
}

func printHistory(w io.Writer, h *HistoryResponse) {
	if len(h.Items) == 0 {
		fmt.Fprintln(w, "No imports")
		return
	}

	fmt.Fprintf(w, "%-6s %-24s %-10s %-10s %8s %8s  %s\n", "ID", "FILE", "STATUS", "USER", "OK", "FAILED", "STARTED")
	for _, j := range h.Items {
		fmt.Fprintf(w, "%-6d %-24s %-10s %-10s %8d %8d  %s\n",
			j.ID, truncate(j.FileName, 24), j.Status, truncate(j.Owner, 10),
			j.SuccessCount, j.FailCount, j.StartTime.Local().Format("2006-01-02 15:04"))
		if j.ErrorMessage != "" {
			fmt.Fprintf(w, "       %s\n", j.ErrorMessage)
		}
	}
	fmt.Fprintf(w, "\n%d import(s)\n", h.Total)
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userName)
	resp, err := client.ClearHistory()
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d removed)\n", resp.Message, resp.Cleared)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
