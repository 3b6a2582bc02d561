package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type sessionStatus struct {
	Active      bool   `json:"active"`
	WorkoutName string `json:"workout_name"`
	Exercise    string `json:"exercise"`
	CurrentSet  int    `json:"current_set"`
	TotalSets   int    `json:"total_sets"`
	Resting     bool   `json:"resting"`
	Paused      bool   `json:"paused"`
	SetsLogged  int    `json:"sets_logged"`
}

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Control the live workout session",
}

var workoutStartCountdown bool

var workoutStartCmd = &cobra.Command{
	Use:   "start <plan.json>",
	Short: "Start a workout session from a plan file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading plan: %w", err)
		}
		var plan map[string]any
		if err := json.Unmarshal(data, &plan); err != nil {
			return fmt.Errorf("parsing plan: %w", err)
		}
		plan["showCountdown"] = workoutStartCountdown

		c := newClient()
		var st sessionStatus
		if err := c.post("/api/v1/session/start", plan, &st); err != nil {
			return err
		}
		fmt.Printf("%s Started %s: %s, set %d/%d\n", color.GreenString("✓"),
			color.New(color.Bold).Sprint(st.WorkoutName), st.Exercise, st.CurrentSet, st.TotalSets)
		return nil
	},
}

func sessionActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			var st sessionStatus
			if err := c.post("/api/v1/session/action", map[string]string{"action": action}, &st); err != nil {
				return err
			}
			if !st.Active {
				fmt.Printf("Workout ended, %d sets logged.\n", st.SetsLogged)
				return nil
			}
			state := "running"
			if st.Paused {
				state = "paused"
			} else if st.Resting {
				state = "resting"
			}
			fmt.Printf("%s: %s, set %d/%d (%s)\n", st.WorkoutName, st.Exercise, st.CurrentSet, st.TotalSets, state)
			return nil
		},
	}
}

var workoutSetCmd = &cobra.Command{
	Use:   "set <weight-kg> <reps>",
	Short: "Log the current set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("weight must be a number, got %q", args[0])
		}
		reps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("reps must be an integer, got %q", args[1])
		}

		c := newClient()
		body := map[string]any{"weightKg": weight, "reps": reps, "completedAt": time.Now()}
		var st sessionStatus
		if err := c.post("/api/v1/session/set", body, &st); err != nil {
			return err
		}
		fmt.Printf("%s %.1f kg × %d logged (%d total). Next: %s set %d/%d\n",
			color.GreenString("✓"), weight, reps, st.SetsLogged, st.Exercise, st.CurrentSet, st.TotalSets)
		return nil
	},
}

func init() {
	workoutStartCmd.Flags().BoolVar(&workoutStartCountdown, "countdown", true, "show the 3-2-1 countdown")

	workoutCmd.AddCommand(workoutStartCmd)
	workoutCmd.AddCommand(sessionActionCmd("pause", "Pause the session", "pause"))
	workoutCmd.AddCommand(sessionActionCmd("resume", "Resume a paused session", "resume"))
	workoutCmd.AddCommand(sessionActionCmd("skip-rest", "Skip the running rest timer", "skip_rest"))
	workoutCmd.AddCommand(sessionActionCmd("skip-exercise", "Skip to the next exercise", "skip_exercise"))
	workoutCmd.AddCommand(sessionActionCmd("end", "End the session", "end_workout"))
	workoutCmd.AddCommand(workoutSetCmd)
	rootCmd.AddCommand(workoutCmd)
}
