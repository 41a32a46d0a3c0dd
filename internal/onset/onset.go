// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package onset finds note onsets in a recording. Detection runs with the
// configured primary parameters and, when that yields too few onsets,
// exactly once more with a fixed, more permissive parameter set.
package onset

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pdiddy/harmonia/pkg/types"
)

// MinOnsets is the count below which the fallback parameters are tried.
const MinOnsets = 10

// FallbackParams is the permissive parameter set used after a sparse
// primary detection.
var FallbackParams = types.OnsetParams{
	PreMax:  0.01,
	PostMax: 0.01,
	PreAvg:  0.03,
	PostAvg: 0.03,
	Delta:   0.03,
	Wait:    0.01,
}

// Detector abstracts the onset detector so analysis front ends and tests
// can supply their own. Detect returns onset times in seconds.
type Detector interface {
	Detect(ctx context.Context, params types.OnsetParams) ([]float64, error)
}

// Detection is the outcome of DetectWithFallback.
type Detection struct {
	// Onsets are the detected times, sorted and without duplicates.
	Onsets []float64

	// UsedFallback reports whether the fallback parameters produced Onsets.
	UsedFallback bool
}

// DetectWithFallback runs d with primary and, if fewer than MinOnsets
// onsets come back, once more with FallbackParams. The fallback result
// replaces the primary one even if it is still sparse. A failing fallback
// keeps the primary onsets and writes a warning to w.
func DetectWithFallback(ctx context.Context, d Detector, primary types.OnsetParams, w io.Writer) (Detection, error) {
	if w == nil {
		w = io.Discard
	}

	onsets, err := d.Detect(ctx, primary)
	if err != nil {
		return Detection{}, fmt.Errorf("detecting onsets: %w", err)
	}
	onsets = normalize(onsets)
	if len(onsets) >= MinOnsets {
		return Detection{Onsets: onsets}, nil
	}

	fmt.Fprintf(w, "warning: only %d onsets detected, retrying with fallback parameters\n", len(onsets))
	retry, err := d.Detect(ctx, FallbackParams)
	if err != nil {
		fmt.Fprintf(w, "warning: fallback onset detection failed: %v\n", err)
		return Detection{Onsets: onsets}, nil
	}
	return Detection{Onsets: normalize(retry), UsedFallback: true}, nil
}

// Boundaries turns onsets into segment boundaries for a recording of the
// given duration: 0 first, duration last, interior onsets strictly inside
// (0, duration) in ascending order without duplicates.
func Boundaries(onsets []float64, duration float64) []float64 {
	out := []float64{0}
	for _, t := range normalize(onsets) {
		if t > 0 && t < duration {
			out = append(out, t)
		}
	}
	return append(out, duration)
}

// normalize returns a sorted copy of onsets with NaNs and duplicates
// removed.
func normalize(onsets []float64) []float64 {
	out := make([]float64, 0, len(onsets))
	for _, t := range onsets {
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			out = append(out, t)
		}
	}
	sort.Float64s(out)
	uniq := out[:0]
	for i, t := range out {
		if i == 0 || t != out[i-1] {
			uniq = append(uniq, t)
		}
	}
	return uniq
}
