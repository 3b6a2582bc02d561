package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's snapshot and any active workout session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		var snap struct {
			WaterOunces     float64   `json:"water_ounces"`
			WaterGoalOunces float64   `json:"water_goal_ounces"`
			LastWorkoutName string    `json:"last_workout_name"`
			LastWorkoutSec  float64   `json:"last_workout_duration_sec"`
			Steps           float64   `json:"steps"`
			ActiveCalories  float64   `json:"active_calories"`
			SleepHours      float64   `json:"sleep_hours"`
			RecoveryScore   int       `json:"recovery_score"`
			RecoveryLabel   string    `json:"recovery_label"`
			UpdatedAt       time.Time `json:"updated_at"`
		}
		if err := c.get("/api/v1/snapshot", &snap); err != nil {
			return err
		}

		header := color.New(color.FgCyan, color.Bold)
		label := color.New(color.FgYellow, color.Bold).SprintFunc()

		header.Println("Today")
		fmt.Printf("  %s: %d (%s)\n", label("Recovery"), snap.RecoveryScore, snap.RecoveryLabel)
		fmt.Printf("  %s: %.0f\n", label("Steps"), snap.Steps)
		fmt.Printf("  %s: %.0f kcal\n", label("Active calories"), snap.ActiveCalories)
		fmt.Printf("  %s: %.1f h\n", label("Sleep"), snap.SleepHours)
		fmt.Printf("  %s: %.0f / %.0f oz\n", label("Water"), snap.WaterOunces, snap.WaterGoalOunces)
		if snap.LastWorkoutName != "" {
			fmt.Printf("  %s: %s (%s)\n", label("Last workout"), snap.LastWorkoutName,
				(time.Duration(snap.LastWorkoutSec) * time.Second).Round(time.Minute))
		}

		var sess struct {
			Active      bool   `json:"active"`
			WorkoutName string `json:"workout_name"`
			Exercise    string `json:"exercise"`
			CurrentSet  int    `json:"current_set"`
			TotalSets   int    `json:"total_sets"`
			ElapsedSec  int    `json:"elapsed_sec"`
			Paused      bool   `json:"paused"`
			SetsLogged  int    `json:"sets_logged"`
		}
		if err := c.get("/api/v1/session", &sess); err != nil {
			return err
		}

		fmt.Println()
		if !sess.Active {
			fmt.Println("No active workout session.")
			return nil
		}

		header.Println("Active session")
		state := "running"
		if sess.Paused {
			state = color.YellowString("paused")
		}
		fmt.Printf("  %s: %s (%s)\n", label("Workout"), sess.WorkoutName, state)
		fmt.Printf("  %s: %s (set %d/%d)\n", label("Exercise"), sess.Exercise, sess.CurrentSet, sess.TotalSets)
		fmt.Printf("  %s: %s, %d sets logged\n", label("Elapsed"),
			(time.Duration(sess.ElapsedSec) * time.Second).Round(time.Second), sess.SetsLogged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
