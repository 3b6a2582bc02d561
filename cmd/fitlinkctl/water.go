package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water <ounces>",
	Short: "Log water intake in ounces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ounces, err := strconv.ParseFloat(args[0], 64)
		if err != nil || ounces <= 0 {
			return fmt.Errorf("ounces must be a positive number, got %q", args[0])
		}

		c := newClient()
		var snap struct {
			WaterOunces     float64 `json:"water_ounces"`
			WaterGoalOunces float64 `json:"water_goal_ounces"`
		}
		if err := c.post("/api/v1/water", map[string]float64{"ounces": ounces}, &snap); err != nil {
			return err
		}

		fmt.Printf("%s %.0f oz logged. Today: %.0f / %.0f oz\n",
			color.GreenString("✓"), ounces, snap.WaterOunces, snap.WaterGoalOunces)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
}
