// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

var (
	// ErrEmptyInput reports a pitch stream with no samples or zero duration.
	ErrEmptyInput = errors.New("empty pitch stream")

	// ErrUnknownScale reports a key or mode that cannot be parsed.
	ErrUnknownScale = errors.New("unknown scale")

	// ErrInvalidConfig reports a configuration value outside its range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnparseablePitch reports a pitch with no valid class or MIDI number.
	ErrUnparseablePitch = errors.New("unparseable pitch")
)
