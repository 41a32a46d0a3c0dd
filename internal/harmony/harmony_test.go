// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harmony

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harmonia/internal/theory"
	"github.com/pdiddy/harmonia/pkg/types"
)

func pitch(t *testing.T, name string) types.Pitch {
	t.Helper()
	p, err := theory.ParsePitch(name)
	require.NoError(t, err)
	return p
}

func defaultConfig() types.HarmonyConfig {
	return types.DefaultTranscriptionConfig().Harmony
}

func TestVoice(t *testing.T) {
	tests := []struct {
		melody string
		alto   string
		tenor  string
	}{
		{"C4", "C4", "C3"},
		{"E4", "E4", "E3"},
		// 65 is not above the alto ceiling.
		{"F4", "F4", "F3"},
		{"F#4", "F#3", "F#3"},
		{"A4", "A3", "A3"},
		// The tenor lands on 60 and stays.
		{"C5", "C4", "C4"},
		{"D5", "D4", "D3"},
		{"G5", "G4", "G3"},
		// Both voices sit on their floors.
		{"C3", "C3", "C2"},
		{"C2", "C3", "C2"},
		{"B1", "B3", "B2"},
	}
	for _, tt := range tests {
		t.Run(tt.melody, func(t *testing.T) {
			alto, tenor, err := Voice(pitch(t, tt.melody), defaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.alto, alto.String())
			assert.Equal(t, tt.tenor, tenor.String())
		})
	}
}

func TestVoiceRegisterBounds(t *testing.T) {
	cfg := defaultConfig()
	for m := 24; m <= 96; m++ {
		p, err := theory.FromMIDI(m)
		require.NoError(t, err)
		alto, tenor, err := Voice(p, cfg)
		require.NoError(t, err, p.String())

		assert.GreaterOrEqual(t, alto.MIDI(), cfg.AltoFloor, p.String())
		assert.GreaterOrEqual(t, tenor.MIDI(), cfg.TenorFloor, p.String())
		assert.Equal(t, p.Class, alto.Class)
		assert.Equal(t, p.Class, tenor.Class)
		assert.LessOrEqual(t, tenor.MIDI(), alto.MIDI(), p.String())
	}
}

func TestVoiceMalformed(t *testing.T) {
	_, _, err := Voice(types.Pitch{Class: 14, Octave: 4}, defaultConfig())
	assert.ErrorIs(t, err, types.ErrUnparseablePitch)
}

func TestGenerate(t *testing.T) {
	melody := []types.NoteEvent{
		types.Note(pitch(t, "C4"), 1),
		types.RestOf(0.5),
		types.Note(pitch(t, "A4"), 2),
	}

	res := Generate(melody, defaultConfig(), nil)
	require.Len(t, res.Voices, 3)
	assert.Equal(t, Melody, res.Voices[0].Name)
	assert.Equal(t, Alto, res.Voices[1].Name)
	assert.Equal(t, Tenor, res.Voices[2].Name)
	assert.Zero(t, res.Recovered)

	assert.Equal(t, melody, res.Voices[0].Events)
	assert.Equal(t, []types.NoteEvent{
		types.Note(pitch(t, "C4"), 1), types.RestOf(0.5), types.Note(pitch(t, "A3"), 2),
	}, res.Voices[1].Events)
	assert.Equal(t, []types.NoteEvent{
		types.Note(pitch(t, "C3"), 1), types.RestOf(0.5), types.Note(pitch(t, "A3"), 2),
	}, res.Voices[2].Events)

	for _, v := range res.Voices {
		require.Len(t, v.Events, len(melody))
		for i := range melody {
			assert.Equal(t, melody[i].Duration, v.Events[i].Duration)
		}
	}
}

func TestGenerateRecoversMalformedPitch(t *testing.T) {
	melody := []types.NoteEvent{
		types.Note(pitch(t, "E4"), 1),
		types.Note(types.Pitch{Class: 99, Octave: 4}, 0.5),
	}
	var buf bytes.Buffer

	res := Generate(melody, defaultConfig(), &buf)
	assert.Equal(t, 1, res.Recovered)
	for _, v := range res.Voices {
		assert.Equal(t, types.RestOf(0.5), v.Events[1], v.Name)
	}
	assert.Contains(t, buf.String(), "warning: event 1")
}

func TestGenerateEmpty(t *testing.T) {
	res := Generate(nil, defaultConfig(), nil)
	require.Len(t, res.Voices, 3)
	for _, v := range res.Voices {
		assert.Empty(t, v.Events)
	}
}
