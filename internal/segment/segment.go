// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment cuts a pitch stream into spans between onset boundaries
// and summarizes each span by its median voiced frequency and RMS energy.
package segment

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/harmonia/internal/numeric"
	"github.com/pdiddy/harmonia/internal/onset"
	"github.com/pdiddy/harmonia/pkg/types"
)

// span is a half-open interval [start, end) in seconds.
type span struct {
	start, end float64
}

// StreamDuration returns the recording length: the declared duration, or
// the last sample time when none is declared.
func StreamDuration(stream types.PitchStream) float64 {
	if stream.Duration > 0 {
		return stream.Duration
	}
	if n := len(stream.Samples); n > 0 {
		return stream.Samples[n-1].Time
	}
	return 0
}

// Segment partitions stream at the given onsets.
//
// Boundaries are 0, the interior onsets, and the stream duration. A span
// whose end does not lie after its start at sample resolution is dropped.
// Interior spans shorter than cfg.MinDuration are dropped too; the first
// and last spans are always kept. A dropped span is absorbed by the
// preceding kept span (or by the next one when none precedes it), so the
// kept spans still tile [0, duration].
//
// A span is voiced when at least one of its frames is voiced with
// confidence above cfg.VoicedThreshold and a positive frequency, and its
// RMS is not below cfg.SilenceRMS. Its frequency is the median of those
// frames.
func Segment(stream types.PitchStream, onsets []float64, cfg types.SegmentConfig) ([]types.RawSegment, error) {
	duration := StreamDuration(stream)
	if len(stream.Samples) == 0 || duration <= 0 {
		return nil, types.ErrEmptyInput
	}

	samples := stream.Samples
	if !sort.SliceIsSorted(samples, func(i, j int) bool { return samples[i].Time < samples[j].Time }) {
		samples = append([]types.PitchSample(nil), samples...)
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time < samples[j].Time })
	}

	spans := retainedSpans(onset.Boundaries(onsets, duration), stream.SampleRate, cfg.MinDuration)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: no segment longer than one sample", types.ErrEmptyInput)
	}

	out := make([]types.RawSegment, len(spans))
	for i, sp := range spans {
		out[i] = summarize(samples, sp, i == len(spans)-1, cfg)
	}
	return out, nil
}

// retainedSpans applies the zero-length and minimum-duration rules to the
// spans between consecutive boundaries.
func retainedSpans(bounds []float64, sampleRate int, minDur float64) []span {
	last := len(bounds) - 2
	var kept []span
	pending := math.NaN()

	for i := 0; i <= last; i++ {
		start, end := bounds[i], bounds[i+1]
		edge := i == 0 || i == last

		keep := !zeroLength(start, end, sampleRate) && (edge || !tooShort(start, end, sampleRate, minDur))
		switch {
		case keep:
			if !math.IsNaN(pending) {
				start = pending
				pending = math.NaN()
			}
			kept = append(kept, span{start, end})
		case len(kept) > 0:
			kept[len(kept)-1].end = end
		case math.IsNaN(pending):
			pending = start
		}
	}
	return kept
}

func zeroLength(start, end float64, sampleRate int) bool {
	if sampleRate > 0 {
		return sampleIndex(end, sampleRate) <= sampleIndex(start, sampleRate)
	}
	return end <= start
}

func tooShort(start, end float64, sampleRate int, minDur float64) bool {
	if sampleRate > 0 {
		return sampleIndex(end, sampleRate)-sampleIndex(start, sampleRate) < int(float64(sampleRate)*minDur)
	}
	return end-start < minDur
}

func sampleIndex(t float64, sampleRate int) int {
	return int(t * float64(sampleRate))
}

// summarize computes the frequency, voicing and energy of one span from
// the frames whose time falls inside it. The final span also takes frames
// at or past the end of the recording.
func summarize(samples []types.PitchSample, sp span, final bool, cfg types.SegmentConfig) types.RawSegment {
	lo := sort.Search(len(samples), func(i int) bool { return samples[i].Time >= sp.start })
	hi := len(samples)
	if !final {
		hi = sort.Search(len(samples), func(i int) bool { return samples[i].Time >= sp.end })
	}

	var freqs, energy []float64
	for _, s := range samples[lo:hi] {
		energy = append(energy, s.RMS*s.RMS)
		if s.Voiced && s.Confidence > cfg.VoicedThreshold && s.Frequency > 0 && !math.IsNaN(s.Frequency) {
			freqs = append(freqs, s.Frequency)
		}
	}

	seg := types.RawSegment{Start: sp.start, End: sp.end, RMS: math.Sqrt(numeric.Mean(energy))}
	if f, ok := numeric.Median(freqs); ok && seg.RMS >= cfg.SilenceRMS {
		seg.Frequency = f
		seg.Voiced = true
	}
	return seg
}
