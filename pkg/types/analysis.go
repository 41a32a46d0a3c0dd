// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PitchSample is one frame of the pitch tracker's output.
type PitchSample struct {
	// Time is the frame position in seconds.
	Time float64 `json:"time" yaml:"time"`

	// Frequency is the estimated fundamental in Hz. Zero means the tracker
	// produced no estimate for this frame.
	Frequency float64 `json:"frequency" yaml:"frequency"`

	// Voiced is the tracker's voicing decision.
	Voiced bool `json:"voiced" yaml:"voiced"`

	// Confidence is the voicing probability in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// RMS is the frame's root-mean-square energy.
	RMS float64 `json:"rms" yaml:"rms"`
}

// PitchStream is the time-ordered pitch track of one recording.
type PitchStream struct {
	// SampleRate of the source audio. When positive, segment boundaries are
	// compared at sample resolution.
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`

	// Duration of the recording in seconds. When zero the last sample time
	// is used.
	Duration float64 `json:"duration" yaml:"duration"`

	Samples []PitchSample `json:"samples" yaml:"samples"`
}

// OnsetEnvelope is an onset-strength curve sampled at a fixed frame rate.
type OnsetEnvelope struct {
	// FrameRate is frames per second.
	FrameRate float64 `json:"frame_rate" yaml:"frame_rate"`

	Strength []float64 `json:"strength" yaml:"strength"`
}

// OnsetData carries whatever onset information the analysis front end
// produced: an envelope for local peak picking, or onset times already
// detected with the primary and fallback parameter sets.
type OnsetData struct {
	Envelope *OnsetEnvelope `json:"envelope,omitempty" yaml:"envelope,omitempty"`
	Primary  []float64      `json:"primary,omitempty" yaml:"primary,omitempty"`
	Fallback []float64      `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Analysis is the document exchanged with the audio analysis front end.
type Analysis struct {
	// Source names the recording the analysis came from.
	Source string `json:"source" yaml:"source"`

	// Key is the tonal center spelled as a note name (e.g. "F#", "Bb").
	Key string `json:"key" yaml:"key"`

	// Mode is "major" or "minor".
	Mode string `json:"mode" yaml:"mode"`

	BPM    float64     `json:"bpm" yaml:"bpm"`
	Stream PitchStream `json:"stream" yaml:"stream"`
	Onsets OnsetData   `json:"onsets" yaml:"onsets"`

	// ChordRoots are per-beat chord root pitch classes (0-11). Values outside
	// that range mark beats without a chord. Optional.
	ChordRoots []int `json:"chord_roots,omitempty" yaml:"chord_roots,omitempty"`
}

// RawSegment is a span between two consecutive onset boundaries with its
// summary pitch and energy.
type RawSegment struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`

	// Frequency is the median of the confidently voiced frame frequencies.
	// Meaningful only when Voiced is true.
	Frequency float64 `json:"frequency" yaml:"frequency"`

	Voiced bool    `json:"voiced" yaml:"voiced"`
	RMS    float64 `json:"rms" yaml:"rms"`
}

// Seconds returns the span length.
func (s RawSegment) Seconds() float64 {
	return s.End - s.Start
}
