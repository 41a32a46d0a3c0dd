// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the transcription stages in order: onset
// detection, segmentation, scale snapping, merging, quantization,
// harmonization and score assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/harmonia/internal/harmony"
	"github.com/pdiddy/harmonia/internal/onset"
	"github.com/pdiddy/harmonia/internal/rhythm"
	"github.com/pdiddy/harmonia/internal/score"
	"github.com/pdiddy/harmonia/internal/segment"
	"github.com/pdiddy/harmonia/internal/snap"
	"github.com/pdiddy/harmonia/internal/theory"
	"github.com/pdiddy/harmonia/pkg/types"
)

// Stage names used in StageError.
const (
	StageConfig   = "config"
	StageScale    = "scale"
	StageOnset    = "onset"
	StageSegment  = "segment"
	StageSnap     = "snap"
	StageQuantize = "quantize"
)

// StageError reports which stage stopped the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Input is everything one run needs besides configuration.
type Input struct {
	Stream   types.PitchStream
	Detector onset.Detector

	// Key and Mode spell the session scale, e.g. "F#" and "minor".
	Key  string
	Mode string

	BPM float64

	// ChordRoots optionally adds a beat-chord voice.
	ChordRoots []int
}

// Report counts what happened along the way.
type Report struct {
	Onsets          int  `json:"onsets" yaml:"onsets"`
	OnsetFallback   bool `json:"onset_fallback" yaml:"onset_fallback"`
	Segments        int  `json:"segments" yaml:"segments"`
	Notes           int  `json:"notes" yaml:"notes"`
	Rests           int  `json:"rests" yaml:"rests"`
	ForcedSnaps     int  `json:"forced_snaps" yaml:"forced_snaps"`
	MergedEvents    int  `json:"merged_events" yaml:"merged_events"`
	RecoveredEvents int  `json:"recovered_events" yaml:"recovered_events"`

	// OutOfScale counts pitched voice events whose class is not in the
	// session scale. Always zero unless a stage breaks scale membership.
	OutOfScale int `json:"out_of_scale" yaml:"out_of_scale"`
}

// Result is the output of a run.
type Result struct {
	Score  types.Score   `json:"score" yaml:"score"`
	Voices []types.Voice `json:"voices" yaml:"voices"`

	// Chords is the beat-chord voice, present only when chord roots were
	// supplied.
	Chords *types.Voice `json:"chords,omitempty" yaml:"chords,omitempty"`

	Report Report `json:"report" yaml:"report"`
}

// Run transcribes one pitch stream into harmonized voices and an
// assembled score. Progress lines go to w. Fatal failures are returned as
// *StageError; local problems are recovered and counted in the Report.
func Run(ctx context.Context, in Input, cfg types.TranscriptionConfig, w io.Writer) (*Result, error) {
	if w == nil {
		w = io.Discard
	}
	if err := cfg.Validate(); err != nil {
		return nil, stageErr(StageConfig, err)
	}
	if in.BPM <= 0 {
		return nil, stageErr(StageConfig, fmt.Errorf("%w: bpm must be positive, got %g", types.ErrInvalidConfig, in.BPM))
	}
	if in.Detector == nil {
		return nil, stageErr(StageOnset, errors.New("no onset detector"))
	}

	scale, err := theory.ParseScale(in.Key, in.Mode)
	if err != nil {
		return nil, stageErr(StageScale, err)
	}
	snapper, err := snap.New(scale, cfg.Snap)
	if err != nil {
		return nil, stageErr(StageSnap, err)
	}

	if len(in.Stream.Samples) == 0 || segment.StreamDuration(in.Stream) <= 0 {
		return nil, stageErr(StageSegment, types.ErrEmptyInput)
	}

	var rep Report

	det, err := onset.DetectWithFallback(ctx, in.Detector, cfg.Onset.Primary, w)
	if err != nil {
		return nil, stageErr(StageOnset, err)
	}
	rep.Onsets = len(det.Onsets)
	rep.OnsetFallback = det.UsedFallback
	fmt.Fprintf(w, "onsets: %d detected\n", rep.Onsets)
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageOnset, err)
	}

	segs, err := segment.Segment(in.Stream, det.Onsets, cfg.Segment)
	if err != nil {
		return nil, stageErr(StageSegment, err)
	}
	rep.Segments = len(segs)
	fmt.Fprintf(w, "segmented: %d segments\n", rep.Segments)

	events, stats := snapper.Events(segs, in.BPM)
	rep.ForcedSnaps = stats.Forced
	fmt.Fprintf(w, "snapped to %s: %d notes, %d rests, %d forced\n", scale, stats.InTolerance+stats.Forced, stats.Rests(), stats.Forced)

	merged := rhythm.Merge(events, rhythm.MergeCap(cfg.Rhythm.MergeLimit, in.BPM))
	rep.MergedEvents = len(events) - len(merged)

	quantized, err := rhythm.Quantize(merged, cfg.Rhythm.Grid, cfg.Rhythm.Quantize)
	if err != nil {
		return nil, stageErr(StageQuantize, err)
	}
	if cfg.Rhythm.Quantize {
		fmt.Fprintf(w, "quantized: %d events to 1/%d grid\n", len(quantized), cfg.Rhythm.Grid)
	}

	harm := harmony.Generate(quantized, cfg.Harmony, w)
	assembled, recovered := score.Assemble(harm.Voices, w)
	rep.RecoveredEvents = harm.Recovered + recovered

	rep.OutOfScale = outOfScale(harm.Voices, scale)
	if rep.OutOfScale > 0 {
		fmt.Fprintf(w, "warning: %d pitched events outside %s\n", rep.OutOfScale, scale)
	}

	for _, e := range harm.Voices[0].Events {
		if e.Rest {
			rep.Rests++
		} else {
			rep.Notes++
		}
	}

	res := &Result{
		Score: types.Score{
			ID:     uuid.NewString(),
			Scale:  scale,
			BPM:    in.BPM,
			Events: assembled,
		},
		Voices: harm.Voices,
		Report: rep,
	}
	if len(in.ChordRoots) > 0 {
		chords := score.ChordTrack(in.ChordRoots, cfg.ChordDuration)
		res.Chords = &chords
	}

	fmt.Fprintf(w, "assembled: %d score events, %.2f quarters\n", len(assembled), res.Score.Duration())
	return res, nil
}

// outOfScale counts the pitched events of voices outside scale.
func outOfScale(voices []types.Voice, scale types.Scale) int {
	n := 0
	for _, v := range voices {
		for _, e := range v.Events {
			if !e.Rest && !theory.InScale(scale, e.Pitch.Class) {
				n++
			}
		}
	}
	return n
}
