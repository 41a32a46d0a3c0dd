// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rhythm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harmonia/pkg/types"
)

var (
	c4 = types.Pitch{Class: 0, Octave: 4}
	d4 = types.Pitch{Class: 2, Octave: 4}
)

func TestMergeCap(t *testing.T) {
	assert.InDelta(t, 1.5, MergeCap(3, 120), 1e-12)
	assert.InDelta(t, 3.0, MergeCap(3, 60), 1e-12)
	assert.Zero(t, MergeCap(3, 0))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []types.NoteEvent
		cap  float64
		want []types.NoteEvent
	}{
		{
			name: "empty",
			in:   nil,
			cap:  1.5,
			want: nil,
		},
		{
			name: "repeated pitch merged",
			in:   []types.NoteEvent{types.Note(c4, 0.5), types.Note(c4, 0.5)},
			cap:  1.5,
			want: []types.NoteEvent{types.Note(c4, 1.0)},
		},
		{
			name: "merge stops at the cap",
			in: []types.NoteEvent{
				types.Note(c4, 1.0), types.Note(c4, 1.0), types.Note(c4, 1.0),
			},
			cap: 1.5,
			want: []types.NoteEvent{
				types.Note(c4, 2.0), types.Note(c4, 1.0),
			},
		},
		{
			name: "different pitches untouched",
			in:   []types.NoteEvent{types.Note(c4, 0.5), types.Note(d4, 0.5), types.Note(c4, 0.5)},
			cap:  1.5,
			want: []types.NoteEvent{types.Note(c4, 0.5), types.Note(d4, 0.5), types.Note(c4, 0.5)},
		},
		{
			name: "rests merge with rests",
			in:   []types.NoteEvent{types.RestOf(0.25), types.RestOf(0.25), types.Note(c4, 1)},
			cap:  1.5,
			want: []types.NoteEvent{types.RestOf(0.5), types.Note(c4, 1)},
		},
		{
			name: "zero cap disables merging",
			in:   []types.NoteEvent{types.Note(c4, 0.5), types.Note(c4, 0.5)},
			cap:  0,
			want: []types.NoteEvent{types.Note(c4, 0.5), types.Note(c4, 0.5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.in, tt.cap)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, Total(tt.in), Total(got), 1e-12)
		})
	}
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	in := []types.NoteEvent{types.Note(c4, 0.5), types.Note(c4, 0.5)}
	_ = Merge(in, 2)
	assert.Equal(t, 0.5, in[0].Duration)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		grid int
		in   []float64
		want []float64
	}{
		{"sixteenth grid rounds", 16, []float64{0.3, 0.9, 1.12}, []float64{0.25, 1.0, 1.0}},
		{"tiny note lifted to one unit", 16, []float64{0.05}, []float64{0.25}},
		{"eighth grid", 8, []float64{0.7, 1.3}, []float64{0.5, 1.5}},
		{"quarter grid", 4, []float64{0.4, 2.6}, []float64{1.0, 3.0}},
		{"thirty-second grid", 32, []float64{0.1}, []float64{0.125}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]types.NoteEvent, len(tt.in))
			for i, d := range tt.in {
				in[i] = types.Note(c4, d)
			}
			got, err := Quantize(in, tt.grid, true)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.InDelta(t, w, got[i].Duration, 1e-12)
				assert.Equal(t, c4, got[i].Pitch)
			}
		})
	}
}

func TestQuantizeDisabledIsIdentity(t *testing.T) {
	in := []types.NoteEvent{types.Note(c4, 0.3), types.RestOf(0.07)}
	got, err := Quantize(in, 12, false)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestQuantizeInvalidGrid(t *testing.T) {
	_, err := Quantize([]types.NoteEvent{types.Note(c4, 1)}, 12, true)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, grid := range []int{4, 8, 16, 32} {
		var in []types.NoteEvent
		for d := 0.01; d < 5; d += 0.037 {
			in = append(in, types.Note(c4, d))
		}
		once, err := Quantize(in, grid, true)
		require.NoError(t, err)
		twice, err := Quantize(once, grid, true)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "grid %d", grid)

		unit := GridUnit(grid)
		for _, e := range once {
			assert.GreaterOrEqual(t, e.Duration, unit)
			assert.Zero(t, math.Mod(e.Duration, unit))
		}
	}
}

func TestRecommendGrid(t *testing.T) {
	tests := []struct {
		bpm  float64
		want int
	}{
		{40, 8}, {59.9, 8}, {60, 16}, {99, 16}, {100, 32}, {180, 32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendGrid(tt.bpm), "bpm %g", tt.bpm)
	}
}
