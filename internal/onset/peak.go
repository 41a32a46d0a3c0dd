// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package onset

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/harmonia/pkg/types"
)

// PeakPicker detects onsets as local peaks of an onset-strength envelope.
//
// The envelope is first normalized to [0, 1]. Frame n is an onset when it
// is the maximum of the window [n-PreMax, n+PostMax], exceeds the mean of
// [n-PreAvg, n+PostAvg] by at least Delta, and lies more than Wait after
// the previous onset. Window lengths are converted from seconds to frames
// with the envelope's frame rate.
type PeakPicker struct {
	Envelope types.OnsetEnvelope
}

// Detect implements Detector.
func (p PeakPicker) Detect(ctx context.Context, params types.OnsetParams) ([]float64, error) {
	rate := p.Envelope.FrameRate
	if rate <= 0 {
		return nil, fmt.Errorf("onset envelope frame rate must be positive, got %g", rate)
	}
	env := normalizeEnvelope(p.Envelope.Strength)
	if len(env) == 0 {
		return nil, nil
	}

	frames := func(sec float64) int {
		return int(math.Round(sec * rate))
	}
	preMax, postMax := frames(params.PreMax), frames(params.PostMax)
	preAvg, postAvg := frames(params.PreAvg), frames(params.PostAvg)
	wait := frames(params.Wait)

	var onsets []float64
	last := -wait - 1
	for n := range env {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if env[n] < windowMax(env, n-preMax, n+postMax) {
			continue
		}
		if env[n] < windowMean(env, n-preAvg, n+postAvg)+params.Delta {
			continue
		}
		if n-last <= wait {
			continue
		}
		onsets = append(onsets, float64(n)/rate)
		last = n
	}
	return onsets, nil
}

// normalizeEnvelope rescales env to [0, 1]. A flat envelope becomes all
// zeros.
func normalizeEnvelope(env []float64) []float64 {
	if len(env) == 0 {
		return nil
	}
	lo, hi := env[0], env[0]
	for _, v := range env {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(env))
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range env {
		out[i] = (v - lo) / span
	}
	return out
}

func clampWindow(n, lo, hi int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

func windowMax(env []float64, lo, hi int) float64 {
	lo, hi = clampWindow(len(env), lo, hi)
	m := env[lo]
	for i := lo + 1; i <= hi; i++ {
		m = math.Max(m, env[i])
	}
	return m
}

func windowMean(env []float64, lo, hi int) float64 {
	lo, hi = clampWindow(len(env), lo, hi)
	var sum float64
	for i := lo; i <= hi; i++ {
		sum += env[i]
	}
	return sum / float64(hi-lo+1)
}
