// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preset provides named parameter bundles tuned for singing styles
// and overlays them onto a transcription configuration.
package preset

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harmonia/pkg/types"
)

// DefaultStyle is used when a requested style is unknown.
const DefaultStyle = "vocal"

// Preset is the subset of tunables a singing style adjusts.
type Preset struct {
	// Sensitivity is the onset peak-picking delta.
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`

	// MinDuration is the shortest interior segment kept, in seconds.
	MinDuration float64 `json:"min_duration" yaml:"min_duration"`

	// MergeLimit is the agglomeration limit in beats.
	MergeLimit float64 `json:"merge_limit" yaml:"merge_limit"`

	Quantize bool `json:"quantize" yaml:"quantize"`
	Grid     int  `json:"grid" yaml:"grid"`
}

// Catalog maps lower-case style names to presets.
type Catalog map[string]Preset

var builtin = Catalog{
	"vocal":     {Sensitivity: 0.04, MinDuration: 0.03, MergeLimit: 3, Quantize: true, Grid: 16},
	"a_capella": {Sensitivity: 0.03, MinDuration: 0.05, MergeLimit: 2, Quantize: false, Grid: 16},
	"pop":       {Sensitivity: 0.05, MinDuration: 0.04, MergeLimit: 2, Quantize: true, Grid: 16},
	"rock":      {Sensitivity: 0.05, MinDuration: 0.05, MergeLimit: 2, Quantize: true, Grid: 8},
	"jazz":      {Sensitivity: 0.035, MinDuration: 0.04, MergeLimit: 1, Quantize: false, Grid: 16},
	"classical": {Sensitivity: 0.025, MinDuration: 0.04, MergeLimit: 1, Quantize: false, Grid: 16},
	"folk":      {Sensitivity: 0.045, MinDuration: 0.06, MergeLimit: 3, Quantize: true, Grid: 8},
	"slow":      {Sensitivity: 0.05, MinDuration: 0.1, MergeLimit: 6, Quantize: true, Grid: 8},
	"fast":      {Sensitivity: 0.03, MinDuration: 0.03, MergeLimit: 1, Quantize: true, Grid: 32},
}

// Builtin returns a copy of the built-in catalog.
func Builtin() Catalog {
	return builtin.With(nil)
}

// With returns a copy of c with extra's entries added or replaced.
func (c Catalog) With(extra Catalog) Catalog {
	out := make(Catalog, len(c)+len(extra))
	for n, p := range c {
		out[n] = p
	}
	for n, p := range extra {
		out[strings.ToLower(n)] = p
	}
	return out
}

// Names lists the catalog's styles in alphabetical order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named preset.
func (c Catalog) Lookup(name string) (Preset, bool) {
	p, ok := c[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ForStyle returns the preset for name, falling back to DefaultStyle, and
// adjusts its grid for the tempo: at most 8 below 60 BPM, at least 16
// above 120 BPM. A non-positive bpm skips the adjustment.
func (c Catalog) ForStyle(name string, bpm float64) Preset {
	p, ok := c.Lookup(name)
	if !ok {
		p = builtin[DefaultStyle]
	}
	return AdjustForTempo(p, bpm)
}

// Resolve returns the named preset adjusted for bpm. Unlike ForStyle, an
// unknown name is an error.
func (c Catalog) Resolve(name string, bpm float64) (Preset, error) {
	p, ok := c.Lookup(name)
	if !ok {
		return Preset{}, fmt.Errorf("unknown style %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return AdjustForTempo(p, bpm), nil
}

// Names lists the built-in styles.
func Names() []string { return builtin.Names() }

// ForStyle resolves a built-in style for a tempo.
func ForStyle(name string, bpm float64) Preset { return builtin.ForStyle(name, bpm) }

// AdjustForTempo clamps the preset grid for slow and fast tempos.
func AdjustForTempo(p Preset, bpm float64) Preset {
	switch {
	case bpm <= 0:
	case bpm < 60:
		p.Grid = min(p.Grid, 8)
	case bpm > 120:
		p.Grid = max(p.Grid, 16)
	}
	return p
}

// Apply overlays p onto cfg and returns the result.
func Apply(cfg types.TranscriptionConfig, p Preset) types.TranscriptionConfig {
	cfg.Onset.Primary.Delta = p.Sensitivity
	cfg.Segment.MinDuration = p.MinDuration
	cfg.Rhythm.MergeLimit = p.MergeLimit
	cfg.Rhythm.Quantize = p.Quantize
	cfg.Rhythm.Grid = p.Grid
	return cfg
}

// LoadFile reads user presets from a YAML file mapping style names to
// presets. Names are lower-cased. Each preset's grid is validated.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets %s: %w", path, err)
	}
	var raw map[string]Preset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing presets %s: %w", path, err)
	}
	out := make(Catalog, len(raw))
	for name, p := range raw {
		if !types.ValidGrid(p.Grid) {
			return nil, fmt.Errorf("%w: preset %q grid %d", types.ErrInvalidConfig, name, p.Grid)
		}
		out[strings.ToLower(name)] = p
	}
	return out, nil
}
