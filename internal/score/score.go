// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score merges parallel voices into a single sequence of rests,
// notes and chords.
package score

import (
	"fmt"
	"io"
	"math"

	"github.com/pdiddy/harmonia/pkg/types"
)

// epsilon absorbs float drift when voices are walked in lock-step.
const epsilon = 1e-9

// cursor tracks the position inside one voice.
type cursor struct {
	events    []types.NoteEvent
	idx       int
	remaining float64
}

func newCursor(v types.Voice) *cursor {
	c := &cursor{events: v.Events}
	c.skipEmpty()
	return c
}

// skipEmpty moves past zero-length events.
func (c *cursor) skipEmpty() {
	for c.idx < len(c.events) && c.events[c.idx].Duration <= epsilon {
		c.idx++
	}
	if c.idx < len(c.events) {
		c.remaining = c.events[c.idx].Duration
	}
}

func (c *cursor) done() bool {
	return c.idx >= len(c.events)
}

func (c *cursor) current() types.NoteEvent {
	return c.events[c.idx]
}

func (c *cursor) advance(d float64) {
	c.remaining -= d
	if c.remaining <= epsilon {
		c.idx++
		c.skipEmpty()
	}
}

// Assemble walks the voices in lock-step and emits one score event per
// vertical slice. Each slice lasts until the next event boundary in any
// voice; with voices of identical timing that is one slice per event
// index. A voice that runs out early counts as resting.
//
// A slice whose voices all rest becomes a Rest. One distinct pitch
// becomes a Note, two or more become a Chord listing the distinct pitches
// in voice order. A slice holding a malformed pitch becomes a Rest of the
// same duration and a warning is written to w.
func Assemble(voices []types.Voice, w io.Writer) ([]types.ScoreEvent, int) {
	if w == nil {
		w = io.Discard
	}
	cursors := make([]*cursor, len(voices))
	for i, v := range voices {
		cursors[i] = newCursor(v)
	}

	var out []types.ScoreEvent
	var recovered int
	for {
		step := math.Inf(1)
		for _, c := range cursors {
			if !c.done() {
				step = math.Min(step, c.remaining)
			}
		}
		if math.IsInf(step, 1) {
			return out, recovered
		}

		var slice []types.NoteEvent
		for _, c := range cursors {
			if !c.done() {
				slice = append(slice, c.current())
			}
		}
		ev, err := Slice(slice, step)
		if err != nil {
			fmt.Fprintf(w, "warning: slice %d: %v, writing rest\n", len(out), err)
			ev = types.ScoreEvent{Kind: types.KindRest, Duration: step}
			recovered++
		}
		out = append(out, ev)

		for _, c := range cursors {
			if !c.done() {
				c.advance(step)
			}
		}
	}
}

// Slice classifies the simultaneous events of one vertical slice.
func Slice(events []types.NoteEvent, duration float64) (types.ScoreEvent, error) {
	var pitches []types.Pitch
	seen := make(map[types.Pitch]bool)
	for _, e := range events {
		if e.Rest {
			continue
		}
		if !e.Pitch.Valid() {
			return types.ScoreEvent{}, fmt.Errorf("%w: %s", types.ErrUnparseablePitch, e.Pitch)
		}
		if !seen[e.Pitch] {
			seen[e.Pitch] = true
			pitches = append(pitches, e.Pitch)
		}
	}

	switch len(pitches) {
	case 0:
		return types.ScoreEvent{Kind: types.KindRest, Duration: duration}, nil
	case 1:
		return types.ScoreEvent{Kind: types.KindNote, Pitches: pitches, Duration: duration}, nil
	default:
		return types.ScoreEvent{Kind: types.KindChord, Pitches: pitches, Duration: duration}, nil
	}
}
