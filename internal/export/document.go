// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes transcription results as YAML or JSON score
// documents and as Standard MIDI Files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/pkg/types"
)

// restName is how rests are spelled in documents.
const restName = "rest"

// Document is the human-readable form of a Result, with pitches spelled
// as names such as "C#4".
type Document struct {
	ID     string          `json:"id" yaml:"id"`
	Source string          `json:"source,omitempty" yaml:"source,omitempty"`
	Key    string          `json:"key" yaml:"key"`
	BPM    float64         `json:"bpm" yaml:"bpm"`
	Voices []VoiceDoc      `json:"voices" yaml:"voices"`
	Chords *VoiceDoc       `json:"chords,omitempty" yaml:"chords,omitempty"`
	Score  []SliceDoc      `json:"score" yaml:"score"`
	Report pipeline.Report `json:"report" yaml:"report"`
}

// VoiceDoc is one voice in a Document.
type VoiceDoc struct {
	Name   string     `json:"name" yaml:"name"`
	Events []EventDoc `json:"events" yaml:"events"`
}

// EventDoc is one note or rest in a VoiceDoc.
type EventDoc struct {
	Pitch    string  `json:"pitch" yaml:"pitch"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// SliceDoc is one assembled score event.
type SliceDoc struct {
	Kind     types.ScoreEventKind `json:"kind" yaml:"kind"`
	Pitches  []string             `json:"pitches,omitempty" yaml:"pitches,omitempty"`
	Duration float64              `json:"duration" yaml:"duration"`
}

// NewDocument renders res for output. source labels the recording.
func NewDocument(source string, res *pipeline.Result) Document {
	doc := Document{
		ID:     res.Score.ID,
		Source: source,
		Key:    res.Score.Scale.String(),
		BPM:    res.Score.BPM,
		Report: res.Report,
	}
	for _, v := range res.Voices {
		doc.Voices = append(doc.Voices, voiceDoc(v))
	}
	if res.Chords != nil {
		c := voiceDoc(*res.Chords)
		doc.Chords = &c
	}
	for _, e := range res.Score.Events {
		s := SliceDoc{Kind: e.Kind, Duration: e.Duration}
		for _, p := range e.Pitches {
			s.Pitches = append(s.Pitches, p.String())
		}
		doc.Score = append(doc.Score, s)
	}
	return doc
}

func voiceDoc(v types.Voice) VoiceDoc {
	vd := VoiceDoc{Name: v.Name, Events: make([]EventDoc, len(v.Events))}
	for i, e := range v.Events {
		name := restName
		if !e.Rest {
			name = e.Pitch.String()
		}
		vd.Events[i] = EventDoc{Pitch: name, Duration: e.Duration}
	}
	return vd
}

// WriteYAML encodes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteFile writes doc to path, choosing JSON for a .json extension and
// YAML otherwise.
func WriteFile(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	write := WriteYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		write = WriteJSON
	}
	if err := write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
