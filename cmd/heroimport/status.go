package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Server health and worker pool usage",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userName)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), status)
	}
	printStatus(cmd.OutOrStdout(), serverURL, status)
	return nil
}

func printStatus(w io.Writer, server string, s *StatusResponse) {
	fmt.Fprintf(w, "Server:   %s (%s)\n", server, s.Status)
	if s.Version != "" {
		fmt.Fprintf(w, "Version:  %s\n", s.Version)
	}
	fmt.Fprintf(w, "Workers:  %d/%d busy, %d waiting\n", s.Pool.Active, s.Pool.Size, s.Pool.Waiting)
	fmt.Fprintf(w, "Tracked:  %d import(s)\n", s.TrackedImports)
}
