// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harmonia/internal/analysis"
	"github.com/pdiddy/harmonia/internal/export"
	"github.com/pdiddy/harmonia/internal/pipeline"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <analysis-file>",
	Short: "Transcribe one analysis file into a harmonized score",
	Long: `Transcribe reads the pitch track and onsets of one recording (YAML or
JSON from the analysis front end), snaps the melody to the song's key,
quantizes it, derives alto and tenor voices, and writes the score.

The score goes to stdout unless --out is given. Stage progress and
warnings go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	a, err := analysis.Load(args[0])
	if err != nil {
		return err
	}
	if key, _ := cmd.Flags().GetString("key"); key != "" {
		a.Key = key
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		a.Mode = mode
	}
	if bpm, _ := cmd.Flags().GetFloat64("bpm"); bpm > 0 {
		a.BPM = bpm
	}

	cfg, err := transcriptionConfig(cmd, a.BPM)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(context.Background(), analysis.Input(a), cfg, os.Stderr)
	if err != nil {
		return err
	}
	doc := export.NewDocument(a.Source, res)

	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	switch {
	case out != "":
		if err := export.WriteFile(out, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	case format == "json":
		if err := export.WriteJSON(os.Stdout, doc); err != nil {
			return err
		}
	default:
		if err := export.WriteYAML(os.Stdout, doc); err != nil {
			return err
		}
	}

	if midiPath, _ := cmd.Flags().GetString("midi"); midiPath != "" {
		choir, _ := cmd.Flags().GetBool("choir")
		opts := export.MIDIOptions{Choir: choir, Chords: true}
		if err := export.WriteMIDIFile(midiPath, res, opts); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", midiPath)
	}

	r := res.Report
	if r.RecoveredEvents > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d event(s) could not be voiced and were written as rests\n", r.RecoveredEvents)
	}
	return nil
}

func init() {
	transcribeCmd.Flags().String("out", "", "write the score to this file (.yaml or .json)")
	transcribeCmd.Flags().String("format", "yaml", "stdout format: yaml or json")
	transcribeCmd.Flags().String("midi", "", "also write a Standard MIDI File to this path")
	transcribeCmd.Flags().Bool("choir", false, "add a combined choir track to the MIDI file")
	transcribeCmd.Flags().String("key", "", "override the detected key (e.g. F#, Bb)")
	transcribeCmd.Flags().String("mode", "", "override the detected mode: major or minor")
	transcribeCmd.Flags().Float64("bpm", 0, "override the detected tempo")
	addTuningFlags(transcribeCmd)

	rootCmd.AddCommand(transcribeCmd)
}
