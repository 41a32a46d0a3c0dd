// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import "github.com/pdiddy/harmonia/pkg/types"

// ChordVoice names the beat-chord track.
const ChordVoice = "Chords"

// chordOctave is where chord roots are placed.
const chordOctave = 3

// ChordTrack turns per-beat chord roots into a voice of single root notes
// at octave 3, one event of the given duration per beat. Roots outside
// 0-11 become rests.
func ChordTrack(roots []int, duration float64) types.Voice {
	events := make([]types.NoteEvent, len(roots))
	for i, r := range roots {
		c := types.PitchClass(r)
		if !c.Valid() {
			events[i] = types.RestOf(duration)
			continue
		}
		events[i] = types.Note(types.Pitch{Class: c, Octave: chordOctave}, duration)
	}
	return types.Voice{Name: ChordVoice, Events: events}
}
