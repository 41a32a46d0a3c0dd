// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harmony derives the alto and tenor voices from a melody by
// octave transposition within fixed register bounds.
package harmony

import (
	"fmt"
	"io"

	"github.com/pdiddy/harmonia/internal/theory"
	"github.com/pdiddy/harmonia/pkg/types"
)

// Voice names, top to bottom.
const (
	Melody = "Soprano"
	Alto   = "Alto"
	Tenor  = "Tenor"
)

// Result holds the three voices in score order plus how many melody notes
// could not be voiced and became rests.
type Result struct {
	Voices    []types.Voice
	Recovered int
}

// Generate produces the melody, alto and tenor voices. Each voice has
// exactly one event per melody event with the same duration; rests stay
// rests in every voice. A melody pitch that cannot be voiced becomes a
// rest in all three voices and a warning is written to w.
func Generate(melody []types.NoteEvent, cfg types.HarmonyConfig, w io.Writer) Result {
	if w == nil {
		w = io.Discard
	}
	sop := make([]types.NoteEvent, len(melody))
	alto := make([]types.NoteEvent, len(melody))
	tenor := make([]types.NoteEvent, len(melody))
	var recovered int

	for i, e := range melody {
		if e.Rest {
			sop[i], alto[i], tenor[i] = types.RestOf(e.Duration), types.RestOf(e.Duration), types.RestOf(e.Duration)
			continue
		}
		a, t, err := Voice(e.Pitch, cfg)
		if err != nil {
			fmt.Fprintf(w, "warning: event %d: %v, writing rest\n", i, err)
			sop[i], alto[i], tenor[i] = types.RestOf(e.Duration), types.RestOf(e.Duration), types.RestOf(e.Duration)
			recovered++
			continue
		}
		sop[i] = types.Note(e.Pitch, e.Duration)
		alto[i] = types.Note(a, e.Duration)
		tenor[i] = types.Note(t, e.Duration)
	}

	return Result{
		Voices: []types.Voice{
			{Name: Melody, Events: sop},
			{Name: Alto, Events: alto},
			{Name: Tenor, Events: tenor},
		},
		Recovered: recovered,
	}
}

// Voice returns the alto and tenor pitches for one melody pitch.
//
// The alto doubles the melody, dropping an octave when above
// cfg.AltoCeiling. The tenor starts cfg.TenorShift octaves below the
// melody and drops one more when still above cfg.TenorCeiling. Either
// voice is then raised by octaves until it reaches its floor.
func Voice(melody types.Pitch, cfg types.HarmonyConfig) (alto, tenor types.Pitch, err error) {
	m, err := theory.MIDI(melody)
	if err != nil {
		return alto, tenor, err
	}

	altoShift := 0
	if m > cfg.AltoCeiling {
		altoShift = -1
	}
	alto, err = placeAbove(melody, altoShift, cfg.AltoFloor)
	if err != nil {
		return alto, tenor, fmt.Errorf("alto: %w", err)
	}

	tenorShift := -cfg.TenorShift
	if m+12*tenorShift > cfg.TenorCeiling {
		tenorShift--
	}
	tenor, err = placeAbove(melody, tenorShift, cfg.TenorFloor)
	if err != nil {
		return alto, tenor, fmt.Errorf("tenor: %w", err)
	}
	return alto, tenor, nil
}

// placeAbove shifts p by octaves and then raises it until its MIDI number
// is at least floor. The shift is applied arithmetically so intermediate
// positions below MIDI 0 are allowed; only the final pitch must be valid.
func placeAbove(p types.Pitch, octaves, floor int) (types.Pitch, error) {
	for p.MIDI()+12*octaves < floor {
		octaves++
	}
	return theory.Transpose(p, octaves)
}
