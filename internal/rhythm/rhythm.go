// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rhythm consolidates repeated notes and snaps durations to a
// metric grid.
package rhythm

import (
	"fmt"
	"math"

	"github.com/pdiddy/harmonia/pkg/types"
)

// MergeCap converts an agglomeration limit in beats into the merge cap
// compared against accumulated quarter-note durations: limit * 60 / bpm.
func MergeCap(limit, bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return limit * 60 / bpm
}

// Merge folds each event into its predecessor when both sound the same
// pitch (or are both rests) and the predecessor's accumulated duration is
// still below maxQuarters. Total duration is preserved. The input is not
// modified.
func Merge(events []types.NoteEvent, maxQuarters float64) []types.NoteEvent {
	if len(events) == 0 {
		return nil
	}
	out := []types.NoteEvent{events[0]}
	for _, e := range events[1:] {
		cur := &out[len(out)-1]
		if cur.SameSound(e) && cur.Duration < maxQuarters {
			cur.Duration += e.Duration
			continue
		}
		out = append(out, e)
	}
	return out
}

// GridUnit returns the grid step in quarter notes for a subdivision of
// the whole note: 4 / grid.
func GridUnit(grid int) float64 {
	return 4 / float64(grid)
}

// Quantize rounds every duration to the nearest multiple of the grid
// unit, lifting anything that would round to zero up to one unit. When
// enabled is false the events are returned unchanged.
func Quantize(events []types.NoteEvent, grid int, enabled bool) ([]types.NoteEvent, error) {
	if !enabled {
		return events, nil
	}
	if !types.ValidGrid(grid) {
		return nil, fmt.Errorf("%w: grid must be 4, 8, 16 or 32, got %d", types.ErrInvalidConfig, grid)
	}
	unit := GridUnit(grid)
	out := make([]types.NoteEvent, len(events))
	for i, e := range events {
		e.Duration = QuantizeDuration(e.Duration, unit)
		out[i] = e
	}
	return out, nil
}

// QuantizeDuration rounds d to the nearest multiple of unit, never below
// one unit.
func QuantizeDuration(d, unit float64) float64 {
	q := math.Round(d/unit) * unit
	if q < unit {
		return unit
	}
	return q
}

// RecommendGrid suggests a subdivision for a tempo: coarser grids for
// slow songs, finer ones for fast songs.
func RecommendGrid(bpm float64) int {
	switch {
	case bpm < 60:
		return 8
	case bpm < 100:
		return 16
	default:
		return 32
	}
}

// Total sums the durations of events.
func Total(events []types.NoteEvent) float64 {
	var sum float64
	for _, e := range events {
		sum += e.Duration
	}
	return sum
}
