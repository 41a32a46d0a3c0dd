// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/pkg/types"
)

// TicksPerQuarter is the MIDI time resolution.
const TicksPerQuarter = 960

// velocity of every written note.
const velocity = 90

// ChoirTrack names the track that carries the assembled score.
const ChoirTrack = "Choir"

// MIDIOptions selects optional tracks.
type MIDIOptions struct {
	// Choir adds a track with the assembled score slices.
	Choir bool

	// Chords adds the beat-chord voice when the result has one.
	Chords bool
}

// BuildMIDI renders res as a format 1 Standard MIDI File: a tempo track
// followed by one track per voice on its own channel.
func BuildMIDI(res *pipeline.Result, opts MIDIOptions) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(res.Score.Scale.String()))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(res.Score.BPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return nil, fmt.Errorf("adding tempo track: %w", err)
	}

	voices := append([]types.Voice(nil), res.Voices...)
	if opts.Chords && res.Chords != nil {
		voices = append(voices, *res.Chords)
	}
	for i, v := range voices {
		tr, err := voiceTrack(v, uint8(i%16))
		if err != nil {
			return nil, fmt.Errorf("voice %s: %w", v.Name, err)
		}
		if err := s.Add(tr); err != nil {
			return nil, fmt.Errorf("adding track %s: %w", v.Name, err)
		}
	}

	if opts.Choir {
		tr, err := choirTrack(res.Score.Events, uint8(len(voices)%16))
		if err != nil {
			return nil, fmt.Errorf("choir: %w", err)
		}
		if err := s.Add(tr); err != nil {
			return nil, fmt.Errorf("adding choir track: %w", err)
		}
	}
	return s, nil
}

// WriteMIDI encodes res as a Standard MIDI File.
func WriteMIDI(w io.Writer, res *pipeline.Result, opts MIDIOptions) error {
	s, err := BuildMIDI(res, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi: %w", err)
	}
	return nil
}

// WriteMIDIFile writes res to path as a Standard MIDI File.
func WriteMIDIFile(path string, res *pipeline.Result, opts MIDIOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteMIDI(f, res, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ticks converts quarter notes to MIDI ticks.
func ticks(quarters float64) uint32 {
	return uint32(math.Round(quarters * TicksPerQuarter))
}

// key returns the MIDI key of p.
func key(p types.Pitch) (uint8, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %s", types.ErrUnparseablePitch, p)
	}
	return uint8(p.MIDI()), nil
}

func voiceTrack(v types.Voice, ch uint8) (smf.Track, error) {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(v.Name))

	var pending uint32
	for _, e := range v.Events {
		d := ticks(e.Duration)
		if e.Rest {
			pending += d
			continue
		}
		k, err := key(e.Pitch)
		if err != nil {
			return nil, err
		}
		tr.Add(pending, midi.NoteOn(ch, k, velocity))
		tr.Add(d, midi.NoteOff(ch, k))
		pending = 0
	}
	tr.Close(pending)
	return tr, nil
}

func choirTrack(events []types.ScoreEvent, ch uint8) (smf.Track, error) {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(ChoirTrack))

	var pending uint32
	for _, e := range events {
		d := ticks(e.Duration)
		if e.Kind == types.KindRest || len(e.Pitches) == 0 {
			pending += d
			continue
		}
		keys := make([]uint8, len(e.Pitches))
		for i, p := range e.Pitches {
			k, err := key(p)
			if err != nil {
				return nil, err
			}
			keys[i] = k
		}
		for i, k := range keys {
			if i == 0 {
				tr.Add(pending, midi.NoteOn(ch, k, velocity))
			} else {
				tr.Add(0, midi.NoteOn(ch, k, velocity))
			}
		}
		for i, k := range keys {
			if i == 0 {
				tr.Add(d, midi.NoteOff(ch, k))
			} else {
				tr.Add(0, midi.NoteOff(ch, k))
			}
		}
		pending = 0
	}
	tr.Close(pending)
	return tr, nil
}
