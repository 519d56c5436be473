package domain

import (
	"errors"
	"fmt"
	"math"
)

// VectorDims is the dimension of an AudioFeatureVector.
const VectorDims = 10

// ErrMissingFeature indicates a raw feature map lacks one of the vector dimensions.
var ErrMissingFeature = errors.New("domain: missing audio feature")

// AudioFeatureVector is the similarity-search key of a track. Components follow
// FeatureNames order and lie in [0,1].
type AudioFeatureVector [VectorDims]float64

// FeatureRange is the (Min, Max) used to scale one raw feature.
type FeatureRange struct {
	Min float64
	Max float64
}

type featureSpec struct {
	name string
	rng  FeatureRange
}

// Order is positional: the engine compares vectors component by component.
var featureTable = [VectorDims]featureSpec{
	{"danceability", FeatureRange{0.00, 0.99}},
	{"energy", FeatureRange{0.00, 1.00}},
	{"valence", FeatureRange{0.00, 1.00}},
	{"acousticness", FeatureRange{0.00, 1.00}},
	{"instrumentalness", FeatureRange{0.00, 1.00}},
	{"speechiness", FeatureRange{0.00, 0.96}},
	{"liveness", FeatureRange{0.00, 1.00}},
	{"tempo", FeatureRange{0.00, 243.37}},
	{"loudness", FeatureRange{-49.53, 4.53}},
	{"popularity", FeatureRange{0.00, 100.00}},
}

// FeatureNames returns the vector dimensions in order.
func FeatureNames() []string {
	names := make([]string, 0, VectorDims)
	for _, f := range featureTable {
		names = append(names, f.name)
	}
	return names
}

// RangeOf returns the normalization range of a feature.
func RangeOf(name string) (FeatureRange, bool) {
	for _, f := range featureTable {
		if f.name == name {
			return f.rng, true
		}
	}
	return FeatureRange{}, false
}

// Scale maps v into [0,1] relative to the range, clamping out-of-range input.
// A degenerate range yields 0.
func (r FeatureRange) Scale(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	n := (v - r.Min) / (r.Max - r.Min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// Normalize builds the AudioFeatureVector for one record. Every dimension is
// required; a missing or NaN one returns ErrMissingFeature.
func Normalize(raw map[string]float64) (AudioFeatureVector, error) {
	var vec AudioFeatureVector
	for i, f := range featureTable {
		v, ok := raw[f.name]
		if !ok || math.IsNaN(v) {
			return AudioFeatureVector{}, fmt.Errorf("%w: %s", ErrMissingFeature, f.name)
		}
		vec[i] = f.rng.Scale(v)
	}
	return vec, nil
}

// Slice returns the vector as a slice, as sent to the engine.
func (v AudioFeatureVector) Slice() []float64 {
	out := make([]float64, VectorDims)
	copy(out, v[:])
	return out
}
