// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package theory implements the music-theory vocabulary the transcription
// stages share: pitch-name parsing, MIDI conversion, octave transposition,
// and diatonic scale construction.
package theory

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/harmonia/pkg/types"
)

// letterOffsets maps natural note letters to semitones above C.
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// modeIntervals lists the semitone offsets of each scale degree.
var modeIntervals = map[types.Mode][7]int{
	types.ModeMajor: {0, 2, 4, 5, 7, 9, 11},
	types.ModeMinor: {0, 2, 3, 5, 7, 8, 10},
}

// modeAliases maps accepted mode spellings to a Mode.
var modeAliases = map[string]types.Mode{
	"major":   types.ModeMajor,
	"maj":     types.ModeMajor,
	"ionian":  types.ModeMajor,
	"minor":   types.ModeMinor,
	"min":     types.ModeMinor,
	"aeolian": types.ModeMinor,
}

// splitName separates a note spelling into its semitone offset from C and
// the remainder of the string. The spelling is a letter A-G followed by
// any run of '#' or 'b' accidentals.
func splitName(s string) (int, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("empty note name")
	}
	offset, ok := letterOffsets[byte(unicode.ToUpper(rune(s[0])))]
	if !ok {
		return 0, "", fmt.Errorf("invalid note letter %q", s[0])
	}
	i := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			offset++
			continue
		case 'b':
			offset--
			continue
		}
		break
	}
	return offset, s[i:], nil
}

// ParsePitchClass parses a note spelling without octave such as "F#" or
// "Bb". Enharmonic spellings collapse to the same class.
func ParsePitchClass(s string) (types.PitchClass, error) {
	offset, rest, err := splitName(s)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("trailing %q in pitch class %q", rest, s)
	}
	return types.PitchClass(((offset % 12) + 12) % 12), nil
}

// ParsePitch parses scientific pitch notation such as "C#4", "Bb3" or
// "C-1". Failures wrap types.ErrUnparseablePitch.
func ParsePitch(s string) (types.Pitch, error) {
	offset, rest, err := splitName(s)
	if err != nil {
		return types.Pitch{}, fmt.Errorf("%w: %v", types.ErrUnparseablePitch, err)
	}
	if rest == "" {
		return types.Pitch{}, fmt.Errorf("%w: missing octave in %q", types.ErrUnparseablePitch, s)
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return types.Pitch{}, fmt.Errorf("%w: invalid octave in %q", types.ErrUnparseablePitch, s)
	}
	return FromMIDI((octave+1)*12 + offset)
}

// FromMIDI converts a MIDI note number to a Pitch spelled with sharps.
func FromMIDI(n int) (types.Pitch, error) {
	if n < 0 || n > 127 {
		return types.Pitch{}, fmt.Errorf("%w: MIDI number %d out of range", types.ErrUnparseablePitch, n)
	}
	return types.Pitch{Class: types.PitchClass(n % 12), Octave: n/12 - 1}, nil
}

// MIDI returns the MIDI number of p, or an error when p is malformed.
func MIDI(p types.Pitch) (int, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %s (class %d, octave %d)", types.ErrUnparseablePitch, p, int(p.Class), p.Octave)
	}
	return p.MIDI(), nil
}

// Transpose moves p by whole octaves. The result must stay in MIDI range.
func Transpose(p types.Pitch, octaves int) (types.Pitch, error) {
	if !p.Valid() {
		return types.Pitch{}, fmt.Errorf("%w: cannot transpose %s", types.ErrUnparseablePitch, p)
	}
	q := types.Pitch{Class: p.Class, Octave: p.Octave + octaves}
	if !q.Valid() {
		return types.Pitch{}, fmt.Errorf("%w: %s shifted %d octaves leaves MIDI range", types.ErrUnparseablePitch, p, octaves)
	}
	return q, nil
}

// ParseMode accepts "major", "minor" and their common abbreviations,
// case-insensitively.
func ParseMode(s string) (types.Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: mode %q", types.ErrUnknownScale, s)
	}
	return m, nil
}

// ParseScale builds a Scale from a key spelling and a mode name.
// Failures wrap types.ErrUnknownScale.
func ParseScale(key, mode string) (types.Scale, error) {
	root, err := ParsePitchClass(key)
	if err != nil {
		return types.Scale{}, fmt.Errorf("%w: key %q: %v", types.ErrUnknownScale, key, err)
	}
	m, err := ParseMode(mode)
	if err != nil {
		return types.Scale{}, err
	}
	return types.Scale{Root: root, Mode: m}, nil
}

// Classes returns the seven pitch classes of s in degree order.
func Classes(s types.Scale) ([]types.PitchClass, error) {
	intervals, ok := modeIntervals[s.Mode]
	if !ok || !s.Root.Valid() {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownScale, s)
	}
	out := make([]types.PitchClass, len(intervals))
	for i, iv := range intervals {
		out[i] = types.PitchClass((int(s.Root) + iv) % 12)
	}
	return out, nil
}

// InScale reports whether class c belongs to s.
func InScale(s types.Scale, c types.PitchClass) bool {
	classes, err := Classes(s)
	if err != nil {
		return false
	}
	for _, sc := range classes {
		if sc == c {
			return true
		}
	}
	return false
}
