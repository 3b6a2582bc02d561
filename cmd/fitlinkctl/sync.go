package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <export.json>...",
	Short: "Push health export files to the server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			var result struct {
				MetricsInserted  int64    `json:"metrics_inserted"`
				MetricsSkipped   int64    `json:"metrics_skipped"`
				RejectedNames    []string `json:"rejected_names"`
				SleepInserted    int      `json:"sleep_sessions_inserted"`
				WorkoutsInserted int      `json:"workouts_inserted"`
				SetsInserted     int64    `json:"sets_inserted"`
			}
			if err := c.post("/api/v1/ingest", payload, &result); err != nil {
				return fmt.Errorf("uploading %s: %w", path, err)
			}

			fmt.Printf("%s %s: %d samples, %d sleep sessions, %d workouts (%d sets)\n",
				color.GreenString("✓"), path, result.MetricsInserted,
				result.SleepInserted, result.WorkoutsInserted, result.SetsInserted)
			if result.MetricsSkipped > 0 {
				fmt.Printf("  %d duplicate samples skipped\n", result.MetricsSkipped)
			}
			if len(result.RejectedNames) > 0 {
				color.Yellow("  rejected metrics: %s", strings.Join(result.RejectedNames, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
