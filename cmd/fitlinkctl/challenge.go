package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type challengeView struct {
	Name       string    `json:"name"`
	Metric     string    `json:"metric"`
	Goal       float64   `json:"goal"`
	InviteCode string    `json:"invite_code"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Create, join, and rank group challenges",
}

var (
	challengeMetric string
	challengeGoal   float64
	challengeDays   int
	challengeName   string
)

var challengeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a challenge and print its invite code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		now := time.Now()
		body := map[string]any{
			"name":         args[0],
			"metric":       challengeMetric,
			"goal":         challengeGoal,
			"starts_at":    now,
			"ends_at":      now.AddDate(0, 0, challengeDays),
			"display_name": challengeName,
		}
		var created challengeView
		if err := c.post("/api/v1/challenges", body, &created); err != nil {
			return err
		}
		fmt.Printf("Created %s (%s, %d days)\n", color.New(color.Bold).Sprint(created.Name),
			created.Metric, challengeDays)
		fmt.Printf("Invite code: %s\n", color.New(color.FgCyan, color.Bold).Sprint(created.InviteCode))
		return nil
	},
}

var challengeJoinCmd = &cobra.Command{
	Use:   "join <invite-code>",
	Short: "Join a challenge by invite code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		body := map[string]string{"invite_code": args[0], "display_name": challengeName}
		var joined challengeView
		if err := c.post("/api/v1/challenges/join", body, &joined); err != nil {
			return err
		}
		fmt.Printf("%s Joined %s (%s, ends %s)\n", color.GreenString("✓"),
			color.New(color.Bold).Sprint(joined.Name), joined.Metric,
			joined.EndsAt.Local().Format("Jan 02"))
		return nil
	},
}

var challengeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List challenges you are in",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var challenges []challengeView
		if err := c.get("/api/v1/challenges", &challenges); err != nil {
			return err
		}
		if len(challenges) == 0 {
			fmt.Println("You are not in any challenges.")
			return nil
		}
		bold := color.New(color.Bold).SprintFunc()
		for _, ch := range challenges {
			fmt.Printf("%s  %s  %s  ends %s\n", ch.InviteCode, bold(ch.Name), ch.Metric,
				ch.EndsAt.Local().Format("Jan 02"))
		}
		return nil
	},
}

var challengeBoardCmd = &cobra.Command{
	Use:   "board <invite-code>",
	Short: "Show the leaderboard for a challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var entries []struct {
			DisplayName string  `json:"display_name"`
			Total       float64 `json:"total"`
			Rank        int     `json:"rank"`
		}
		if err := c.get("/api/v1/challenges/"+args[0]+"/leaderboard", &entries); err != nil {
			return err
		}
		for _, e := range entries {
			line := fmt.Sprintf("%2d. %-20s %.0f", e.Rank, e.DisplayName, e.Total)
			if e.Rank == 1 {
				line = color.YellowString(line)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	challengeCreateCmd.Flags().StringVar(&challengeMetric, "metric", "step_count", "metric to compete on")
	challengeCreateCmd.Flags().Float64Var(&challengeGoal, "goal", 0, "optional target total")
	challengeCreateCmd.Flags().IntVar(&challengeDays, "days", 7, "challenge length in days")
	challengeCreateCmd.Flags().StringVar(&challengeName, "as", "Me", "display name on the leaderboard")
	challengeJoinCmd.Flags().StringVar(&challengeName, "as", "Me", "display name on the leaderboard")

	challengeCmd.AddCommand(challengeCreateCmd)
	challengeCmd.AddCommand(challengeJoinCmd)
	challengeCmd.AddCommand(challengeListCmd)
	challengeCmd.AddCommand(challengeBoardCmd)
	rootCmd.AddCommand(challengeCmd)
}
