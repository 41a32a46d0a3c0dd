// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// OnsetParams is one parameter set for the onset peak picker. Window
// lengths and Wait are in seconds; Delta is the threshold above the local
// mean of the normalized onset envelope.
type OnsetParams struct {
	PreMax  float64 `json:"pre_max" yaml:"pre_max"`
	PostMax float64 `json:"post_max" yaml:"post_max"`
	PreAvg  float64 `json:"pre_avg" yaml:"pre_avg"`
	PostAvg float64 `json:"post_avg" yaml:"post_avg"`

	// Delta is the onset sensitivity (default 0.035).
	Delta float64 `json:"delta" yaml:"delta"`

	Wait float64 `json:"wait" yaml:"wait"`
}

// OnsetConfig holds settings for onset detection.
type OnsetConfig struct {
	// Primary is the parameter set tried first.
	Primary OnsetParams `json:"primary" yaml:"primary"`
}

// SegmentConfig holds settings for the pitch segmenter.
type SegmentConfig struct {
	// MinDuration is the shortest interior segment kept, in seconds
	// (default 0.02).
	MinDuration float64 `json:"min_duration" yaml:"min_duration"`

	// VoicedThreshold is the voicing confidence a frame must exceed to
	// contribute to a segment's frequency (default 0.4).
	VoicedThreshold float64 `json:"voiced_threshold" yaml:"voiced_threshold"`

	// SilenceRMS marks a segment unvoiced when its RMS falls below it
	// (default 0, disabled).
	SilenceRMS float64 `json:"silence_rms" yaml:"silence_rms"`
}

// SnapConfig holds settings for the scale snapper.
type SnapConfig struct {
	// Tolerance is the largest relative distance accepted as an in-scale
	// note (default 0.15).
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`

	// ForceSnapRMS is the energy above which an out-of-tolerance segment is
	// still snapped to its nearest scale pitch (default 0.01).
	ForceSnapRMS float64 `json:"force_snap_rms" yaml:"force_snap_rms"`
}

// RhythmConfig holds settings for the note merger and rhythm quantizer.
type RhythmConfig struct {
	// MergeLimit is the agglomeration limit in beats (default 3). The
	// merge cap in quarter notes is MergeLimit * 60 / BPM.
	MergeLimit float64 `json:"merge_limit" yaml:"merge_limit"`

	// Quantize enables grid snapping (default true).
	Quantize bool `json:"quantize" yaml:"quantize"`

	// Grid is the subdivision per whole note: 4, 8, 16 or 32 (default 16).
	Grid int `json:"grid" yaml:"grid"`
}

// HarmonyConfig holds the voice-leading constants for the derived voices.
type HarmonyConfig struct {
	// AltoCeiling is the MIDI number above which the alto drops an octave
	// (default 65).
	AltoCeiling int `json:"alto_ceiling" yaml:"alto_ceiling"`

	// TenorShift is how many octaves the tenor starts below the melody
	// (default 1).
	TenorShift int `json:"tenor_shift" yaml:"tenor_shift"`

	// TenorCeiling is the MIDI number above which the tenor drops one more
	// octave (default 60).
	TenorCeiling int `json:"tenor_ceiling" yaml:"tenor_ceiling"`

	// AltoFloor and TenorFloor are the lowest MIDI numbers each voice may
	// reach; lower notes are raised by octaves (defaults 48 and 36).
	AltoFloor  int `json:"alto_floor" yaml:"alto_floor"`
	TenorFloor int `json:"tenor_floor" yaml:"tenor_floor"`
}

// TranscriptionConfig holds every tunable of a transcription run.
type TranscriptionConfig struct {
	Onset   OnsetConfig   `json:"onset" yaml:"onset"`
	Segment SegmentConfig `json:"segment" yaml:"segment"`
	Snap    SnapConfig    `json:"snap" yaml:"snap"`
	Rhythm  RhythmConfig  `json:"rhythm" yaml:"rhythm"`
	Harmony HarmonyConfig `json:"harmony" yaml:"harmony"`

	// ChordDuration is the length in quarter notes of each beat-chord event
	// (default 2).
	ChordDuration float64 `json:"chord_duration" yaml:"chord_duration"`
}

// DefaultTranscriptionConfig returns the documented defaults.
func DefaultTranscriptionConfig() TranscriptionConfig {
	return TranscriptionConfig{
		Onset: OnsetConfig{
			Primary: OnsetParams{
				PreMax:  0.03,
				PostMax: 0.02,
				PreAvg:  0.04,
				PostAvg: 0.03,
				Delta:   0.035,
				Wait:    0.03,
			},
		},
		Segment: SegmentConfig{
			MinDuration:     0.02,
			VoicedThreshold: 0.4,
		},
		Snap: SnapConfig{
			Tolerance:    0.15,
			ForceSnapRMS: 0.01,
		},
		Rhythm: RhythmConfig{
			MergeLimit: 3,
			Quantize:   true,
			Grid:       16,
		},
		Harmony: HarmonyConfig{
			AltoCeiling:  65,
			TenorShift:   1,
			TenorCeiling: 60,
			AltoFloor:    48,
			TenorFloor:   36,
		},
		ChordDuration: 2,
	}
}

// ValidGrid reports whether g is a supported subdivision.
func ValidGrid(g int) bool {
	switch g {
	case 4, 8, 16, 32:
		return true
	}
	return false
}

// Validate reports an out-of-range value wrapped in ErrInvalidConfig.
func (c TranscriptionConfig) Validate() error {
	p := c.Onset.Primary
	for name, v := range map[string]float64{
		"onset.primary.pre_max":  p.PreMax,
		"onset.primary.post_max": p.PostMax,
		"onset.primary.pre_avg":  p.PreAvg,
		"onset.primary.post_avg": p.PostAvg,
		"onset.primary.delta":    p.Delta,
		"onset.primary.wait":     p.Wait,
		"segment.min_duration":   c.Segment.MinDuration,
		"segment.silence_rms":    c.Segment.SilenceRMS,
		"snap.force_snap_rms":    c.Snap.ForceSnapRMS,
		"rhythm.merge_limit":     c.Rhythm.MergeLimit,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidConfig, name, v)
		}
	}
	if c.Segment.VoicedThreshold < 0 || c.Segment.VoicedThreshold >= 1 {
		return fmt.Errorf("%w: segment.voiced_threshold must be in [0, 1), got %g", ErrInvalidConfig, c.Segment.VoicedThreshold)
	}
	if c.Snap.Tolerance <= 0 || c.Snap.Tolerance > 1 {
		return fmt.Errorf("%w: snap.tolerance must be in (0, 1], got %g", ErrInvalidConfig, c.Snap.Tolerance)
	}
	if !ValidGrid(c.Rhythm.Grid) {
		return fmt.Errorf("%w: rhythm.grid must be 4, 8, 16 or 32, got %d", ErrInvalidConfig, c.Rhythm.Grid)
	}
	h := c.Harmony
	if h.TenorShift < 0 {
		return fmt.Errorf("%w: harmony.tenor_shift must not be negative, got %d", ErrInvalidConfig, h.TenorShift)
	}
	for name, v := range map[string]int{
		"harmony.alto_ceiling":  h.AltoCeiling,
		"harmony.tenor_ceiling": h.TenorCeiling,
		"harmony.alto_floor":    h.AltoFloor,
		"harmony.tenor_floor":   h.TenorFloor,
	} {
		if v < 0 || v > 127 {
			return fmt.Errorf("%w: %s must be a MIDI number 0-127, got %d", ErrInvalidConfig, name, v)
		}
	}
	if c.ChordDuration <= 0 {
		return fmt.Errorf("%w: chord_duration must be positive, got %g", ErrInvalidConfig, c.ChordDuration)
	}
	return nil
}
