// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch transcribes many analysis files concurrently, writing a
// score document (and optionally a MIDI file) per input.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/harmonia/internal/analysis"
	"github.com/pdiddy/harmonia/internal/export"
	"github.com/pdiddy/harmonia/internal/pipeline"
	"github.com/pdiddy/harmonia/internal/rhythm"
	"github.com/pdiddy/harmonia/pkg/types"
)

// Options controls a batch run.
type Options struct {
	// Workers bounds concurrency (default 4).
	Workers int

	// OutDir receives <name>.yaml (or .json) and <name>.mid files, where
	// name is the input file name without extension. Repeated names get
	// -2, -3, ... suffixes in path order.
	OutDir string

	// Format is "yaml" (default) or "json".
	Format string

	// MIDI also writes a Standard MIDI File per input.
	MIDI bool

	// Verbose copies each run's stage progress into w.
	Verbose bool

	// AutoGrid replaces the configured grid with one recommended for each
	// file's tempo.
	AutoGrid bool
}

// Summary holds counts from a batch run.
type Summary struct {
	Transcribed int
	Failed      int
}

// Total returns the number of files processed.
func (s Summary) Total() int {
	return s.Transcribed + s.Failed
}

// HasFailures reports whether any file failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run transcribes every path with cfg. Failures are reported to w and
// counted; they do not stop the other files. Progress lines for one file
// are written together.
func Run(ctx context.Context, paths []string, cfg types.TranscriptionConfig, opts Options, w io.Writer) (Summary, error) {
	if w == nil {
		w = io.Discard
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	if opts.OutDir == "" {
		return Summary{}, fmt.Errorf("batch: output directory required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	sorted := uniquePaths(paths)
	names := outputNames(sorted)

	var (
		mu      sync.Mutex
		summary Summary
	)
	p := pool.New().WithMaxGoroutines(workers)
	for _, path := range sorted {
		p.Go(func() {
			var log bytes.Buffer
			name := names[path]
			err := name.err
			if err == nil {
				err = transcribeOne(ctx, path, name.base, cfg, opts, &log)
			}

			mu.Lock()
			defer mu.Unlock()
			if opts.Verbose {
				_, _ = w.Write(log.Bytes())
			}
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", path, err)
				summary.Failed++
				return
			}
			if name.base != analysis.SourceName(path) {
				fmt.Fprintf(w, "transcribed %s as %s\n", path, name.base)
			} else {
				fmt.Fprintf(w, "transcribed %s\n", path)
			}
			summary.Transcribed++
		})
	}
	p.Wait()

	return summary, ctx.Err()
}

// outputName is the base name a file's outputs are written under.
type outputName struct {
	base string
	err  error
}

// uniquePaths returns the cleaned paths sorted, without repeats.
func uniquePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// outputNames assigns every path a distinct base name inside the output
// directory. Names are compared case-insensitively so outputs do not
// collide on case-folding filesystems.
func outputNames(paths []string) map[string]outputName {
	names := make(map[string]outputName, len(paths))
	taken := make(map[string]bool, len(paths))
	for _, path := range paths {
		base, err := safeName(analysis.SourceName(path))
		if err != nil {
			names[path] = outputName{err: err}
			continue
		}
		name := base
		for i := 2; taken[strings.ToLower(name)]; i++ {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		taken[strings.ToLower(name)] = true
		names[path] = outputName{base: name}
	}
	return names
}

// safeName reduces s to a single path element.
func safeName(s string) (string, error) {
	name := filepath.Base(strings.TrimSpace(s))
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("no usable output name in %q", s)
	}
	return name, nil
}

// transcribeOne runs the pipeline for a single file and writes its outputs
// under OutDir/name.
func transcribeOne(ctx context.Context, path, name string, cfg types.TranscriptionConfig, opts Options, log io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a, err := analysis.Load(path)
	if err != nil {
		return err
	}
	if opts.AutoGrid {
		cfg.Rhythm.Grid = rhythm.RecommendGrid(a.BPM)
	}
	res, err := pipeline.Run(ctx, analysis.Input(a), cfg, log)
	if err != nil {
		return err
	}

	ext := ".yaml"
	if opts.Format == "json" {
		ext = ".json"
	}
	base := filepath.Join(opts.OutDir, name)
	if err := export.WriteFile(base+ext, export.NewDocument(a.Source, res)); err != nil {
		return err
	}
	if opts.MIDI {
		if err := export.WriteMIDIFile(base+".mid", res, export.MIDIOptions{Choir: true, Chords: true}); err != nil {
			return err
		}
	}
	return nil
}

// Collect expands directories into the analysis files they contain
// (.yaml, .yml, .json) and passes other paths through.
func Collect(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch filepath.Ext(e.Name()) {
			case ".yaml", ".yml", ".json":
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	return out, nil
}
