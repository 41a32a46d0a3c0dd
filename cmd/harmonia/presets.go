// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the style presets",
	Long: `Presets lists each style's onset sensitivity, minimum note duration,
merge limit and quantization grid. With --bpm the grid is shown as
adjusted for that tempo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog(cmd)
		if err != nil {
			return err
		}
		bpm, _ := cmd.Flags().GetFloat64("bpm")

		fmt.Fprintf(os.Stdout, "%-10s  %-11s  %-12s  %-11s  %-8s  %s\n",
			"Style", "Sensitivity", "Min duration", "Merge limit", "Quantize", "Grid")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
		for _, name := range cat.Names() {
			p := cat.ForStyle(name, bpm)
			fmt.Fprintf(os.Stdout, "%-10s  %-11g  %-12g  %-11g  %-8t  1/%d\n",
				name, p.Sensitivity, p.MinDuration, p.MergeLimit, p.Quantize, p.Grid)
		}
		return nil
	},
}

func init() {
	presetsCmd.Flags().Float64("bpm", 0, "show grids adjusted for this tempo")

	rootCmd.AddCommand(presetsCmd)
}
