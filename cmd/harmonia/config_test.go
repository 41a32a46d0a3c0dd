// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harmonia/pkg/types"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	c := &cobra.Command{Use: "test"}
	c.Flags().String("style", "", "")
	c.Flags().String("presets-file", "", "")
	addTuningFlags(c)
	return c
}

func TestTranscriptionConfigDefaults(t *testing.T) {
	cfg, err := transcriptionConfig(newTestCmd(t), 100)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTranscriptionConfig(), cfg)
}

func TestTranscriptionConfigLayers(t *testing.T) {
	c := newTestCmd(t)
	viper.Set("snap.tolerance", 0.2)
	viper.Set("harmony.alto_floor", 50)
	require.NoError(t, c.Flags().Set("style", "rock"))

	cfg, err := transcriptionConfig(c, 140)
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Snap.Tolerance)
	assert.Equal(t, 50, cfg.Harmony.AltoFloor)
	assert.Equal(t, 16, cfg.Rhythm.Grid, "rock raised to 16 above 120 BPM")
	assert.Equal(t, 0.05, cfg.Onset.Primary.Delta)

	require.NoError(t, c.Flags().Set("grid", "32"))
	require.NoError(t, c.Flags().Set("no-quantize", "true"))
	cfg, err = transcriptionConfig(c, 140)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Rhythm.Grid, "flags win over the preset")
	assert.False(t, cfg.Rhythm.Quantize)
}

func TestTranscriptionConfigInvalid(t *testing.T) {
	c := newTestCmd(t)
	require.NoError(t, c.Flags().Set("grid", "5"))

	_, err := transcriptionConfig(c, 100)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestTranscriptionConfigPresetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chant:\n  sensitivity: 0.02\n  min_duration: 0.2\n  merge_limit: 8\n  quantize: true\n  grid: 4\n"), 0o644))

	c := newTestCmd(t)
	require.NoError(t, c.Flags().Set("presets-file", path))
	require.NoError(t, c.Flags().Set("style", "chant"))

	cfg, err := transcriptionConfig(c, 90)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rhythm.Grid)
	assert.Equal(t, 8.0, cfg.Rhythm.MergeLimit)
}

func TestTranscriptionConfigUnknownStyle(t *testing.T) {
	c := newTestCmd(t)
	require.NoError(t, c.Flags().Set("style", "polka"))

	_, err := transcriptionConfig(c, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown style "polka"`)
}

func TestTranscriptionConfigAutoGrid(t *testing.T) {
	tests := []struct {
		name string
		bpm  float64
		want int
	}{
		{"slow", 50, 8},
		{"moderate", 90, 16},
		{"fast", 140, 32},
		{"tempo unknown keeps the configured grid", 0, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCmd(t)
			require.NoError(t, c.Flags().Set("grid", "0"))
			assert.True(t, autoGrid(c))

			cfg, err := transcriptionConfig(c, tt.bpm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Rhythm.Grid)
		})
	}

	assert.False(t, autoGrid(newTestCmd(t)))
}
