// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchMIDI(t *testing.T) {
	tests := []struct {
		pitch Pitch
		want  int
		name  string
	}{
		{Pitch{Class: 0, Octave: 4}, 60, "C4"},
		{Pitch{Class: 9, Octave: 4}, 69, "A4"},
		{Pitch{Class: 0, Octave: -1}, 0, "C-1"},
		{Pitch{Class: 7, Octave: 9}, 127, "G9"},
		{Pitch{Class: 1, Octave: 3}, 49, "C#3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pitch.MIDI())
			assert.Equal(t, tt.name, tt.pitch.String())
			assert.True(t, tt.pitch.Valid())
		})
	}
}

func TestPitchValid(t *testing.T) {
	assert.False(t, Pitch{Class: 12, Octave: 4}.Valid())
	assert.False(t, Pitch{Class: -1, Octave: 4}.Valid())
	assert.False(t, Pitch{Class: 8, Octave: 9}.Valid(), "G#9 is MIDI 128")
	assert.False(t, Pitch{Class: 11, Octave: -2}.Valid())
}

func TestPitchFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, Pitch{Class: 9, Octave: 4}.Frequency(), 1e-9)
	assert.InDelta(t, 261.6256, Pitch{Class: 0, Octave: 4}.Frequency(), 1e-3)
	assert.InDelta(t, 220.0, Pitch{Class: 9, Octave: 3}.Frequency(), 1e-9)
}

func TestNoteEventSameSound(t *testing.T) {
	c4 := Pitch{Class: 0, Octave: 4}
	d4 := Pitch{Class: 2, Octave: 4}

	assert.True(t, Note(c4, 1).SameSound(Note(c4, 0.25)))
	assert.False(t, Note(c4, 1).SameSound(Note(d4, 1)))
	assert.True(t, RestOf(1).SameSound(RestOf(2)))
	assert.False(t, RestOf(1).SameSound(Note(Pitch{}, 1)), "rest never matches C-1")
}

func TestVoiceAndScoreDuration(t *testing.T) {
	v := Voice{Name: "Soprano", Events: []NoteEvent{
		Note(Pitch{Class: 0, Octave: 4}, 1),
		RestOf(0.5),
		Note(Pitch{Class: 2, Octave: 4}, 0.25),
	}}
	assert.InDelta(t, 1.75, v.Duration(), 1e-12)

	s := Score{Events: []ScoreEvent{{Kind: KindRest, Duration: 2}, {Kind: KindNote, Duration: 1}}}
	assert.InDelta(t, 3.0, s.Duration(), 1e-12)
}

func TestScaleString(t *testing.T) {
	assert.Equal(t, "A minor", Scale{Root: 9, Mode: ModeMinor}.String())
	assert.Equal(t, "F# major", Scale{Root: 6, Mode: ModeMajor}.String())
}

func TestDefaultTranscriptionConfigValid(t *testing.T) {
	cfg := DefaultTranscriptionConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Rhythm.Grid)
	assert.True(t, cfg.Rhythm.Quantize)
	assert.Equal(t, 0.035, cfg.Onset.Primary.Delta)
	assert.Equal(t, 65, cfg.Harmony.AltoCeiling)
}

func TestTranscriptionConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TranscriptionConfig)
	}{
		{"grid not a power of two", func(c *TranscriptionConfig) { c.Rhythm.Grid = 12 }},
		{"zero grid", func(c *TranscriptionConfig) { c.Rhythm.Grid = 0 }},
		{"zero tolerance", func(c *TranscriptionConfig) { c.Snap.Tolerance = 0 }},
		{"tolerance above one", func(c *TranscriptionConfig) { c.Snap.Tolerance = 1.5 }},
		{"negative min duration", func(c *TranscriptionConfig) { c.Segment.MinDuration = -1 }},
		{"threshold of one", func(c *TranscriptionConfig) { c.Segment.VoicedThreshold = 1 }},
		{"negative delta", func(c *TranscriptionConfig) { c.Onset.Primary.Delta = -0.1 }},
		{"floor out of range", func(c *TranscriptionConfig) { c.Harmony.AltoFloor = 200 }},
		{"negative tenor shift", func(c *TranscriptionConfig) { c.Harmony.TenorShift = -1 }},
		{"zero chord duration", func(c *TranscriptionConfig) { c.ChordDuration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTranscriptionConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidGrid(t *testing.T) {
	for _, g := range []int{4, 8, 16, 32} {
		assert.True(t, ValidGrid(g), g)
	}
	for _, g := range []int{0, 2, 12, 64, -16} {
		assert.False(t, ValidGrid(g), g)
	}
}
