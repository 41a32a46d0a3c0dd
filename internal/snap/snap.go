// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snap maps each segment's frequency to the nearest pitch of the
// session scale, or to a rest.
package snap

import (
	"fmt"
	"math"

	"github.com/pdiddy/harmonia/internal/theory"
	"github.com/pdiddy/harmonia/pkg/types"
)

// Candidate octave range, inclusive.
const (
	MinOctave = 2
	MaxOctave = 5
)

// Candidate is one in-scale pitch with its equal-tempered frequency.
type Candidate struct {
	Pitch     types.Pitch
	Frequency float64
}

// Candidates enumerates the scale's pitches across octaves MinOctave to
// MaxOctave, ordered by octave and then by scale degree.
func Candidates(scale types.Scale) ([]Candidate, error) {
	classes, err := theory.Classes(scale)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(classes)*(MaxOctave-MinOctave+1))
	for oct := MinOctave; oct <= MaxOctave; oct++ {
		for _, c := range classes {
			p := types.Pitch{Class: c, Octave: oct}
			out = append(out, Candidate{Pitch: p, Frequency: p.Frequency()})
		}
	}
	return out, nil
}

// Nearest returns the candidate with the smallest relative distance
// |candidate - freq| / freq, and that distance. Ties go to the earlier
// candidate. A non-positive freq matches nothing and yields an infinite
// distance. cands must not be empty.
func Nearest(freq float64, cands []Candidate) (Candidate, float64) {
	best, bestDist := cands[0], math.Inf(1)
	if freq <= 0 {
		return best, bestDist
	}
	for _, c := range cands {
		d := math.Abs(c.Frequency-freq) / freq
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Outcome says how a segment was resolved.
type Outcome int

const (
	// Unvoiced segments become rests.
	Unvoiced Outcome = iota
	// InTolerance segments snap to the nearest pitch.
	InTolerance
	// Forced segments lie outside tolerance but carry enough energy to be
	// snapped anyway.
	Forced
	// Rejected segments lie outside tolerance with too little energy.
	Rejected
)

// Decision is the snapper's verdict for one segment.
type Decision struct {
	Event    types.NoteEvent
	Outcome  Outcome
	Distance float64
}

// Snapper resolves segments against one scale.
type Snapper struct {
	cands []Candidate
	cfg   types.SnapConfig
}

// New builds a Snapper for scale.
func New(scale types.Scale, cfg types.SnapConfig) (*Snapper, error) {
	cands, err := Candidates(scale)
	if err != nil {
		return nil, err
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: snap tolerance must be positive", types.ErrInvalidConfig)
	}
	return &Snapper{cands: cands, cfg: cfg}, nil
}

// Decide resolves one segment whose length in quarter notes is quarters.
func (s *Snapper) Decide(seg types.RawSegment, quarters float64) Decision {
	if !seg.Voiced || seg.Frequency <= 0 {
		return Decision{Event: types.RestOf(quarters), Outcome: Unvoiced}
	}
	c, dist := Nearest(seg.Frequency, s.cands)
	switch {
	case dist < s.cfg.Tolerance:
		return Decision{Event: types.Note(c.Pitch, quarters), Outcome: InTolerance, Distance: dist}
	case seg.RMS > s.cfg.ForceSnapRMS:
		return Decision{Event: types.Note(c.Pitch, quarters), Outcome: Forced, Distance: dist}
	default:
		return Decision{Event: types.RestOf(quarters), Outcome: Rejected, Distance: dist}
	}
}

// Stats counts decisions by outcome.
type Stats struct {
	Unvoiced    int
	InTolerance int
	Forced      int
	Rejected    int
}

// Rests returns the number of segments that became rests.
func (s Stats) Rests() int {
	return s.Unvoiced + s.Rejected
}

// Events resolves every segment, converting seconds to quarter notes at
// bpm, and reports the outcome counts.
func (s *Snapper) Events(segs []types.RawSegment, bpm float64) ([]types.NoteEvent, Stats) {
	events := make([]types.NoteEvent, 0, len(segs))
	var st Stats
	for _, seg := range segs {
		d := s.Decide(seg, seg.Seconds()*bpm/60)
		switch d.Outcome {
		case Unvoiced:
			st.Unvoiced++
		case InTolerance:
			st.InTolerance++
		case Forced:
			st.Forced++
		case Rejected:
			st.Rejected++
		}
		events = append(events, d.Event)
	}
	return events, st
}
