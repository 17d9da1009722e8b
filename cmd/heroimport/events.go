package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/heroimport/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().Int("offset", 0, "Number of events to skip")
	eventsCmd.Flags().Int64("import", 0, "Show the timeline of one import")
}

var eventRegistry = events.DefaultRegistry()

func runEventsCmd(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	importID, _ := cmd.Flags().GetInt64("import")

	client := NewClient(serverURL, userName)
	var (
		resp *ListEventsResponse
		err  error
	)
	if importID > 0 {
		resp, err = client.ImportEvents(importID)
	} else {
		resp, err = client.Events(limit, offset)
	}
	if err != nil {
		return fmt.Errorf("events fetch failed: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printEvents(cmd.OutOrStdout(), resp)
	return nil
}

func printEvents(w io.Writer, resp *ListEventsResponse) {
	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	for _, e := range resp.Items {
		line := fmt.Sprintf("%s  %-24s %s #%d  %s", e.OccurredAt, e.EventType, e.EntityType, e.EntityID, eventDetail(e))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "\nShowing %d of %d events\n", len(resp.Items), resp.Total)
}

// eventDetail summarizes a known event payload, or returns "".
func eventDetail(e EventResponse) string {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return ""
	}
	ev, err := eventRegistry.Unmarshal(events.RawEvent{EventType: e.EventType, Payload: string(e.Payload)})
	if err != nil {
		return ""
	}
	switch v := ev.(type) {
	case *events.ImportCreated:
		return fmt.Sprintf("%s (%s) by %s", v.FileName, v.Format, v.Owner)
	case *events.ImportProgressed:
		return fmt.Sprintf("%s %d%%", v.FileName, v.Percent)
	case *events.ImportCompleted:
		return fmt.Sprintf("%s: %d/%d ok", v.FileName, v.Success, v.Total)
	case *events.ImportFailed:
		return fmt.Sprintf("%s: %s", v.FileName, v.ErrorMessage)
	case *events.HumanCreated:
		return v.Name
	case *events.HistoryCleared:
		return fmt.Sprintf("%d cleared by %s", v.Count, v.ClearedBy)
	}
	return ""
}
