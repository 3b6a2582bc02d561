// fitlinkctl is a terminal client for a running FitLink server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagURL    string
	flagAPIKey string
)

var rootCmd = &cobra.Command{
	Use:   "fitlinkctl",
	Short: "Command-line client for the FitLink health server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file is optional; real env vars still apply without one.
		_ = godotenv.Load()
		if flagURL == "" {
			flagURL = os.Getenv("FITLINK_URL")
		}
		if flagURL == "" {
			flagURL = "http://localhost:8080"
		}
		if flagAPIKey == "" {
			flagAPIKey = os.Getenv("FITLINK_API_KEY")
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "FitLink server URL (default $FITLINK_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (default $FITLINK_API_KEY)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
