// Package core provides the pure numeric primitives every index variant
// builds on: dot product, norm, cosine similarity, Euclidean distance, and
// a finiteness check applied at every boundary that accepts caller-supplied
// vector data.
package core

import (
	"math"

	"github.com/kowari-db/kowari/kerrors"
)

// Dot returns the sum of the pairwise products of a and b.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, kerrors.DimensionMismatchf(len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Norm returns the Euclidean (L2) length of v.
func Norm(v []float32) float64 {
	sum, _ := Dot(v, v) // len(v) == len(v) always
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity between a and b, in [-1, 1]. When
// either vector has zero norm the result is 0 rather than NaN.
func Cosine(a, b []float32) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Euclidean returns the Euclidean (L2) distance between a and b.
func Euclidean(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, kerrors.DimensionMismatchf(len(a), len(b))
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// AllFinite reports whether every component of v is finite, rejecting NaN
// and ±Inf.
func AllFinite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
