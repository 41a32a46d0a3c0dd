// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the transcription stages:
// pitches and scales, note events, voices, score events, and the
// configuration that tunes every stage.
package types

import (
	"fmt"
	"math"
)

// PitchClass is a pitch class number where 0 is C and 11 is B.
type PitchClass int

// pitchClassNames spells each pitch class with sharps.
var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Valid reports whether c lies in [0, 11].
func (c PitchClass) Valid() bool {
	return c >= 0 && c < 12
}

// String returns the sharp spelling of the class, or "?" when invalid.
func (c PitchClass) String() string {
	if !c.Valid() {
		return "?"
	}
	return pitchClassNames[c]
}

// Mode selects the interval pattern of a Scale.
type Mode string

const (
	ModeMajor Mode = "major"
	ModeMinor Mode = "minor"
)

// Scale is a tonal center plus a mode.
type Scale struct {
	Root PitchClass `json:"root" yaml:"root"`
	Mode Mode       `json:"mode" yaml:"mode"`
}

// String renders the scale as e.g. "A minor".
func (s Scale) String() string {
	return fmt.Sprintf("%s %s", s.Root, s.Mode)
}

// Pitch is a pitch class at a given octave in scientific pitch notation,
// so middle C is {Class: 0, Octave: 4}.
type Pitch struct {
	Class  PitchClass `json:"class" yaml:"class"`
	Octave int        `json:"octave" yaml:"octave"`
}

// MIDI returns the MIDI note number, (octave+1)*12 + class.
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + int(p.Class)
}

// Valid reports whether the pitch has a real class and maps into the
// MIDI range 0-127.
func (p Pitch) Valid() bool {
	if !p.Class.Valid() {
		return false
	}
	m := p.MIDI()
	return m >= 0 && m <= 127
}

// String renders the pitch as e.g. "C#4".
func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Class, p.Octave)
}

// Frequency returns the equal-tempered frequency in Hz with A4 = 440.
func (p Pitch) Frequency() float64 {
	return 440 * math.Pow(2, float64(p.MIDI()-69)/12)
}

// NoteEvent is either a sounded pitch or a rest, with a duration in
// quarter notes. Rest events carry the zero Pitch.
type NoteEvent struct {
	Rest     bool    `json:"rest,omitempty" yaml:"rest,omitempty"`
	Pitch    Pitch   `json:"pitch" yaml:"pitch"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Note builds a sounded event.
func Note(p Pitch, duration float64) NoteEvent {
	return NoteEvent{Pitch: p, Duration: duration}
}

// RestOf builds a rest event.
func RestOf(duration float64) NoteEvent {
	return NoteEvent{Rest: true, Duration: duration}
}

// SameSound reports whether two events are both rests or share a pitch.
// Durations are ignored.
func (e NoteEvent) SameSound(o NoteEvent) bool {
	if e.Rest || o.Rest {
		return e.Rest == o.Rest
	}
	return e.Pitch == o.Pitch
}

// String renders the event as e.g. "C4:1" or "rest:0.5".
func (e NoteEvent) String() string {
	if e.Rest {
		return fmt.Sprintf("rest:%g", e.Duration)
	}
	return fmt.Sprintf("%s:%g", e.Pitch, e.Duration)
}

// Voice is a named, ordered sequence of note events.
type Voice struct {
	Name   string      `json:"name" yaml:"name"`
	Events []NoteEvent `json:"events" yaml:"events"`
}

// Duration returns the summed duration of the voice in quarter notes.
func (v Voice) Duration() float64 {
	var total float64
	for _, e := range v.Events {
		total += e.Duration
	}
	return total
}

// ScoreEventKind classifies a vertical slice of the score.
type ScoreEventKind string

const (
	KindRest  ScoreEventKind = "rest"
	KindNote  ScoreEventKind = "note"
	KindChord ScoreEventKind = "chord"
)

// ScoreEvent is one vertical slice: a rest, a single note, or a chord of
// two or more distinct pitches in voice order.
type ScoreEvent struct {
	Kind     ScoreEventKind `json:"kind" yaml:"kind"`
	Pitches  []Pitch        `json:"pitches,omitempty" yaml:"pitches,omitempty"`
	Duration float64        `json:"duration" yaml:"duration"`
}

// Score is the assembled output of a transcription run.
type Score struct {
	// ID identifies the run that produced the score.
	ID string `json:"id" yaml:"id"`

	Scale Scale   `json:"scale" yaml:"scale"`
	BPM   float64 `json:"bpm" yaml:"bpm"`

	// Events are the merged vertical slices of all voices.
	Events []ScoreEvent `json:"events" yaml:"events"`
}

// Duration returns the summed duration of the score in quarter notes.
func (s Score) Duration() float64 {
	var total float64
	for _, e := range s.Events {
		total += e.Duration
	}
	return total
}
