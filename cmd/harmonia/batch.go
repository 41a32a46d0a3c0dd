// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harmonia/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Transcribe many analysis files concurrently",
	Long: `Batch transcribes every analysis file given (directories are expanded
to their .yaml, .yml and .json files) and writes one score per input to
--out-dir, named after the input file. Inputs that share a file name get
-2, -3, ... suffixes. A failing file is reported and skipped.

Style presets are applied without tempo adjustment, since each file
carries its own tempo. --grid 0 picks a grid from each file's tempo.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	paths, err := batch.Collect(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no analysis files found")
	}

	cfg, err := transcriptionConfig(cmd, 0)
	if err != nil {
		return err
	}

	opts := batch.Options{}
	opts.OutDir, _ = cmd.Flags().GetString("out-dir")
	opts.Workers, _ = cmd.Flags().GetInt("workers")
	opts.Format, _ = cmd.Flags().GetString("format")
	opts.MIDI, _ = cmd.Flags().GetBool("midi")
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")
	opts.AutoGrid = autoGrid(cmd)

	summary, err := batch.Run(context.Background(), paths, cfg, opts, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d transcribed, %d failed\n", summary.Transcribed, summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed transcription", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("out-dir", "output/scores", "directory for score documents")
	batchCmd.Flags().Int("workers", 4, "number of files transcribed concurrently")
	batchCmd.Flags().String("format", "yaml", "score format: yaml or json")
	batchCmd.Flags().Bool("midi", false, "also write a Standard MIDI File per input")
	batchCmd.Flags().Bool("verbose", false, "print stage progress for every file")
	addTuningFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}
