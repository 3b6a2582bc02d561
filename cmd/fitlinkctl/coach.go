package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type coachReply struct {
	Response struct {
		Content string `json:"content"`
		Model   string `json:"model"`
	} `json:"response"`
	Stale bool `json:"stale"`
}

var insightsCmd = &cobra.Command{
	Use:   "insights [question]",
	Short: "Ask the AI coach about your recent training",
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		if prompt == "" {
			prompt = "How has my training been going lately?"
		}
		return askCoach("/api/v1/coach/insights", prompt)
	},
}

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Get a short daily tip from the AI coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		return askCoach("/api/v1/coach/tip", "Give me a short fitness tip for today.")
	},
}

func askCoach(path, prompt string) error {
	c := newClient()
	var reply coachReply
	if err := c.post(path, map[string]string{"prompt": prompt}, &reply); err != nil {
		return err
	}

	fmt.Println(reply.Response.Content)
	if reply.Stale {
		fmt.Println()
		color.Yellow("(cached response; the coach service is currently unavailable)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(tipCmd)
}
