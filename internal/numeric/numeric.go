// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package numeric provides small generic helpers over numeric slices.
package numeric

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Number is any integer or floating-point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum adds the values of xs.
func Sum[T Number](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

// Median returns the median of xs as a float64, averaging the two middle
// values for even lengths. It reports false when xs is empty. xs is not
// modified.
func Median[T Number](xs []T) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(xs))
	for i, x := range xs {
		sorted[i] = float64(x)
	}
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Mean returns the arithmetic mean of xs, or zero for an empty slice.
func Mean[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(Sum(xs)) / float64(len(xs))
}
