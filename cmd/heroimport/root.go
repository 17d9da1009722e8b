package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
	userName   string
)

var rootCmd = &cobra.Command{
	Use:   "heroimport",
	Short: "CLI client for the heroimport server",
	Long: `heroimport - CLI client for bulk human record imports

Submit CSV or JSON files, follow their progress and manage
import history.

Run 'heroimportd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8585", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "user", "Act as this user")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("heroimport {{.Version}}\n")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("heroimport %s\n", version)
		},
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
