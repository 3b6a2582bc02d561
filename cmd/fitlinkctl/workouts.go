package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var workoutsDays int

var workoutsCmd = &cobra.Command{
	Use:   "workouts",
	Short: "List recent workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		end := time.Now()
		start := end.AddDate(0, 0, -workoutsDays)
		path := fmt.Sprintf("/api/v1/workouts?start=%s&end=%s",
			start.Format("2006-01-02"), end.Format(time.RFC3339))

		var workouts []struct {
			Name           string    `json:"name"`
			StartTime      time.Time `json:"start_time"`
			DurationSec    float64   `json:"duration_sec"`
			ExerciseCount  int       `json:"exercise_count"`
			ActiveCalories *float64  `json:"active_calories"`
			AvgHeartRate   *float64  `json:"avg_heart_rate"`
		}
		if err := c.get(path, &workouts); err != nil {
			return err
		}

		if len(workouts) == 0 {
			fmt.Printf("No workouts in the last %d days.\n", workoutsDays)
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		for _, wk := range workouts {
			line := fmt.Sprintf("%s  %s  %s",
				wk.StartTime.Local().Format("Mon Jan 02 15:04"),
				bold(wk.Name),
				(time.Duration(wk.DurationSec) * time.Second).Round(time.Minute))
			if wk.ExerciseCount > 0 {
				line += fmt.Sprintf(", %d exercises", wk.ExerciseCount)
			}
			if wk.ActiveCalories != nil {
				line += fmt.Sprintf(", %.0f kcal", *wk.ActiveCalories)
			}
			if wk.AvgHeartRate != nil {
				line += fmt.Sprintf(", avg HR %.0f", *wk.AvgHeartRate)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	workoutsCmd.Flags().IntVar(&workoutsDays, "days", 14, "how many days back to list")
	rootCmd.AddCommand(workoutsCmd)
}
