// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the transcription pipeline over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pdiddy/harmonia/internal/analysis"
	"github.com/pdiddy/harmonia/internal/export"
	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/internal/preset"
	"github.com/pdiddy/harmonia/pkg/types"
)

// maxBodyBytes caps the size of an analysis document.
const maxBodyBytes = 32 << 20

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server holds the configuration shared by all requests.
type Server struct {
	cfg     types.TranscriptionConfig
	presets preset.Catalog
	log     io.Writer
}

// NewServer builds a Server. A nil catalog means the built-in presets; a
// nil log discards request lines.
func NewServer(cfg types.TranscriptionConfig, presets preset.Catalog, log io.Writer) *Server {
	if presets == nil {
		presets = preset.Builtin()
	}
	if log == nil {
		log = io.Discard
	}
	return &Server{cfg: cfg, presets: presets, log: log}
}

// Router returns the HTTP handler with CORS enabled for all origins.
//
//	POST /transcribe   analysis JSON in, score document out
//	                   ?style=<preset> applies a style preset
//	                   ?format=midi returns a Standard MIDI File
//	GET  /presets      the preset catalog
//	GET  /healthz      liveness
func (s *Server) Router() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/transcribe", s.handleTranscribe).Methods(http.MethodPost)
	r.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return cors.Default().Handler(r)
}

// NewRouter is shorthand for NewServer(cfg, nil, nil).Router().
func NewRouter(cfg types.TranscriptionConfig) http.Handler {
	return NewServer(cfg, nil, nil).Router()
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var a types.Analysis
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding analysis: %w", err))
		return
	}
	if err := analysis.Validate(a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg := s.cfg
	if style := r.URL.Query().Get("style"); style != "" {
		p, err := s.presets.Resolve(style, a.BPM)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cfg = preset.Apply(cfg, p)
	}

	res, err := pipeline.Run(r.Context(), analysis.Input(a), cfg, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fmt.Fprintf(s.log, "transcribed %s: %d score events\n", a.Source, len(res.Score.Events))

	if r.URL.Query().Get("format") == "midi" {
		var buf bytes.Buffer
		if err := export.WriteMIDI(&buf, res, export.MIDIOptions{Choir: true, Chords: true}); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "audio/midi")
		_, _ = w.Write(buf.Bytes())
		return
	}

	writeJSON(w, http.StatusOK, export.NewDocument(a.Source, res))
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.presets)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Detail: err.Error()})
}
