// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis reads the documents produced by the audio analysis
// front end and turns them into pipeline inputs.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harmonia/internal/onset"
	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/pkg/types"
)

// Load reads an analysis document from a YAML or JSON file. When the
// document names no source, the file name without extension is used.
func Load(path string) (types.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("reading analysis %s: %w", path, err)
	}
	a, err := Decode(data)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("analysis %s: %w", path, err)
	}
	if a.Source == "" {
		a.Source = SourceName(path)
	}
	return a, nil
}

// SourceName derives a source label from a file path.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Decode parses an analysis document. JSON input is accepted as YAML.
func Decode(data []byte) (types.Analysis, error) {
	var a types.Analysis
	if err := yaml.Unmarshal(data, &a); err != nil {
		return types.Analysis{}, fmt.Errorf("parsing: %w", err)
	}
	if err := Validate(a); err != nil {
		return types.Analysis{}, err
	}
	return a, nil
}

// Validate checks the fields the pipeline cannot do without.
func Validate(a types.Analysis) error {
	if strings.TrimSpace(a.Key) == "" {
		return fmt.Errorf("%w: missing key", types.ErrUnknownScale)
	}
	if a.BPM <= 0 {
		return fmt.Errorf("%w: bpm must be positive, got %g", types.ErrInvalidConfig, a.BPM)
	}
	if len(a.Stream.Samples) == 0 {
		return types.ErrEmptyInput
	}
	if env := a.Onsets.Envelope; env != nil && env.FrameRate <= 0 {
		return fmt.Errorf("onset envelope frame rate must be positive, got %g", env.FrameRate)
	}
	return nil
}

// Detector picks the onset detector for a document: peak picking over
// the envelope when one is present, otherwise the precomputed lists.
func Detector(a types.Analysis) onset.Detector {
	if a.Onsets.Envelope != nil {
		return onset.PeakPicker{Envelope: *a.Onsets.Envelope}
	}
	return onset.Static{Primary: a.Onsets.Primary, Fallback: a.Onsets.Fallback}
}

// Input converts a document into a pipeline input. An empty mode means
// major.
func Input(a types.Analysis) pipeline.Input {
	mode := a.Mode
	if strings.TrimSpace(mode) == "" {
		mode = string(types.ModeMajor)
	}
	return pipeline.Input{
		Stream:     a.Stream,
		Detector:   Detector(a),
		Key:        a.Key,
		Mode:       mode,
		BPM:        a.BPM,
		ChordRoots: a.ChordRoots,
	}
}
