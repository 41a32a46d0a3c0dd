// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/pkg/types"
)

var (
	c4 = types.Pitch{Class: 0, Octave: 4}
	c3 = types.Pitch{Class: 0, Octave: 3}
	e4 = types.Pitch{Class: 4, Octave: 4}
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Score: types.Score{
			ID:    "run-1",
			Scale: types.Scale{Root: 0, Mode: types.ModeMajor},
			BPM:   120,
			Events: []types.ScoreEvent{
				{Kind: types.KindChord, Pitches: []types.Pitch{c4, c3}, Duration: 1},
				{Kind: types.KindRest, Duration: 0.5},
				{Kind: types.KindNote, Pitches: []types.Pitch{e4}, Duration: 2},
			},
		},
		Voices: []types.Voice{
			{Name: "Soprano", Events: []types.NoteEvent{types.Note(c4, 1), types.RestOf(0.5), types.Note(e4, 2)}},
			{Name: "Alto", Events: []types.NoteEvent{types.Note(c4, 1), types.RestOf(0.5), types.Note(e4, 2)}},
			{Name: "Tenor", Events: []types.NoteEvent{types.Note(c3, 1), types.RestOf(0.5), types.Note(e4, 2)}},
		},
		Chords: &types.Voice{Name: "Chords", Events: []types.NoteEvent{types.Note(c3, 2), types.RestOf(2)}},
		Report: pipeline.Report{Segments: 3, Notes: 2, Rests: 1},
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("take-1", sampleResult())

	assert.Equal(t, "run-1", doc.ID)
	assert.Equal(t, "take-1", doc.Source)
	assert.Equal(t, "C major", doc.Key)
	require.Len(t, doc.Voices, 3)
	assert.Equal(t, []EventDoc{{"C4", 1}, {"rest", 0.5}, {"E4", 2}}, doc.Voices[0].Events)
	require.NotNil(t, doc.Chords)
	assert.Equal(t, "C3", doc.Chords.Events[0].Pitch)
	assert.Equal(t, []SliceDoc{
		{Kind: types.KindChord, Pitches: []string{"C4", "C3"}, Duration: 1},
		{Kind: types.KindRest, Duration: 0.5},
		{Kind: types.KindNote, Pitches: []string{"E4"}, Duration: 2},
	}, doc.Score)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, NewDocument("take-1", sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "key: C major")
	assert.Contains(t, out, "pitch: C4")
	assert.Contains(t, out, "kind: chord")

	var back Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, NewDocument("take-1", sampleResult()), back)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewDocument("", sampleResult())))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "run-1", raw["id"])
	assert.NotContains(t, raw, "source")
	assert.Len(t, raw["voices"], 3)
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument("take-1", sampleResult())

	jsonPath := filepath.Join(dir, "score.json")
	require.NoError(t, WriteFile(jsonPath, doc))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	yamlPath := filepath.Join(dir, "score.yaml")
	require.NoError(t, WriteFile(yamlPath, doc))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id: run-1")

	assert.Error(t, WriteFile(filepath.Join(dir, "missing", "score.yaml"), doc))
}

// noteOns counts note-on messages per track.
func noteOns(t *testing.T, s *smf.SMF) []int {
	t.Helper()
	counts := make([]int, len(s.Tracks))
	for i, tr := range s.Tracks {
		for _, ev := range tr {
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				counts[i]++
			}
		}
	}
	return counts
}

func TestWriteMIDI(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, sampleResult(), MIDIOptions{}))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 4, "tempo track plus three voices")
	assert.Equal(t, []int{0, 2, 2, 2}, noteOns(t, s))

	var bpm float64
	found := false
	for _, ev := range s.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			found = true
		}
	}
	require.True(t, found)
	assert.InDelta(t, 120.0, bpm, 0.01)
}

func TestWriteMIDIOptionalTracks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, sampleResult(), MIDIOptions{Choir: true, Chords: true}))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 6)
	counts := noteOns(t, s)
	assert.Equal(t, 1, counts[4], "chord track")
	assert.Equal(t, 3, counts[5], "choir track sounds every chord tone")
}

func TestVoiceTrackTiming(t *testing.T) {
	tr, err := voiceTrack(sampleResult().Voices[0], 0)
	require.NoError(t, err)

	var deltas []uint32
	for _, ev := range tr {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel) {
			deltas = append(deltas, ev.Delta)
		}
	}
	// C4 on, off after a quarter, E4 on after an eighth rest, off after a half.
	assert.Equal(t, []uint32{0, 960, 480, 1920}, deltas)
}

func TestBuildMIDIMalformedPitch(t *testing.T) {
	res := sampleResult()
	res.Voices[0].Events[0] = types.Note(types.Pitch{Class: 30, Octave: 4}, 1)

	_, err := BuildMIDI(res, MIDIOptions{})
	assert.ErrorIs(t, err, types.ErrUnparseablePitch)
}
