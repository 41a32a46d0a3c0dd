// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/harmonia/internal/preset"
	"github.com/pdiddy/harmonia/internal/rhythm"
	"github.com/pdiddy/harmonia/pkg/types"
)

func presetNames() []string {
	return preset.Names()
}

// catalog returns the built-in presets plus any from --presets-file (or
// the presets_file config key).
func catalog(cmd *cobra.Command) (preset.Catalog, error) {
	path, _ := cmd.Flags().GetString("presets-file")
	if path == "" {
		path = viper.GetString("presets_file")
	}
	if path == "" {
		return preset.Builtin(), nil
	}
	extra, err := preset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return preset.Builtin().With(extra), nil
}

// overlayViper copies every tunable set in the config file or
// environment onto cfg.
func overlayViper(cfg *types.TranscriptionConfig) {
	floats := map[string]*float64{
		"onset.primary.pre_max":    &cfg.Onset.Primary.PreMax,
		"onset.primary.post_max":   &cfg.Onset.Primary.PostMax,
		"onset.primary.pre_avg":    &cfg.Onset.Primary.PreAvg,
		"onset.primary.post_avg":   &cfg.Onset.Primary.PostAvg,
		"onset.primary.delta":      &cfg.Onset.Primary.Delta,
		"onset.primary.wait":       &cfg.Onset.Primary.Wait,
		"segment.min_duration":     &cfg.Segment.MinDuration,
		"segment.voiced_threshold": &cfg.Segment.VoicedThreshold,
		"segment.silence_rms":      &cfg.Segment.SilenceRMS,
		"snap.tolerance":           &cfg.Snap.Tolerance,
		"snap.force_snap_rms":      &cfg.Snap.ForceSnapRMS,
		"rhythm.merge_limit":       &cfg.Rhythm.MergeLimit,
		"chord_duration":           &cfg.ChordDuration,
	}
	for key, dst := range floats {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}

	ints := map[string]*int{
		"rhythm.grid":           &cfg.Rhythm.Grid,
		"harmony.alto_ceiling":  &cfg.Harmony.AltoCeiling,
		"harmony.tenor_shift":   &cfg.Harmony.TenorShift,
		"harmony.tenor_ceiling": &cfg.Harmony.TenorCeiling,
		"harmony.alto_floor":    &cfg.Harmony.AltoFloor,
		"harmony.tenor_floor":   &cfg.Harmony.TenorFloor,
	}
	for key, dst := range ints {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	if viper.IsSet("rhythm.quantize") {
		cfg.Rhythm.Quantize = viper.GetBool("rhythm.quantize")
	}
}

// transcriptionConfig resolves the run configuration: defaults, then the
// config file and environment, then the style preset adjusted for bpm,
// then explicit flags. A non-positive bpm skips the tempo adjustment.
// With --grid 0 the grid is recommended from bpm; when bpm is unknown the
// earlier layers' grid stands and callers resolve it later (see autoGrid).
func transcriptionConfig(cmd *cobra.Command, bpm float64) (types.TranscriptionConfig, error) {
	cfg := types.DefaultTranscriptionConfig()
	overlayViper(&cfg)

	style, _ := cmd.Flags().GetString("style")
	if style == "" {
		style = viper.GetString("style")
	}
	if style != "" {
		cat, err := catalog(cmd)
		if err != nil {
			return cfg, err
		}
		p, err := cat.Resolve(style, bpm)
		if err != nil {
			return cfg, err
		}
		cfg = preset.Apply(cfg, p)
	}

	flags := cmd.Flags()
	switch {
	case autoGrid(cmd):
		if bpm > 0 {
			cfg.Rhythm.Grid = rhythm.RecommendGrid(bpm)
		}
	case flags.Lookup("grid") != nil && flags.Changed("grid"):
		cfg.Rhythm.Grid, _ = flags.GetInt("grid")
	}
	if flags.Lookup("no-quantize") != nil && flags.Changed("no-quantize") {
		off, _ := flags.GetBool("no-quantize")
		cfg.Rhythm.Quantize = !off
	}
	if flags.Lookup("tolerance") != nil && flags.Changed("tolerance") {
		cfg.Snap.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if flags.Lookup("merge-limit") != nil && flags.Changed("merge-limit") {
		cfg.Rhythm.MergeLimit, _ = flags.GetFloat64("merge-limit")
	}

	return cfg, cfg.Validate()
}

// autoGrid reports whether --grid 0 asked for a tempo-based grid.
func autoGrid(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	if flags.Lookup("grid") == nil || !flags.Changed("grid") {
		return false
	}
	grid, _ := flags.GetInt("grid")
	return grid == 0
}

// addTuningFlags registers the per-run overrides shared by transcribe and
// batch.
func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().Int("grid", 16, "quantization grid: 4, 8, 16 or 32 (0 picks one from the tempo)")
	cmd.Flags().Bool("no-quantize", false, "keep unquantized durations")
	cmd.Flags().Float64("tolerance", 0.15, "relative distance accepted when snapping to the scale")
	cmd.Flags().Float64("merge-limit", 3, "agglomeration limit in beats for repeated notes")
}
