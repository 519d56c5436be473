package ingest

import (
	"errors"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// Profile measures the observed distribution of every vector feature in a
// dataset next to its configured normalization range. Blank and unparsable
// values are ignored per feature; malformed rows are ignored entirely.
func Profile(src io.Reader) ([]domain.FeatureProfile, error) {
	reader, err := NewReader(src)
	if err != nil {
		return nil, err
	}

	names := domain.FeatureNames()
	samples := make(map[string][]float64, len(names))
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrMalformedRecord) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			v, ok := rec.Get(name)
			if !ok {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			samples[name] = append(samples[name], f)
		}
	}

	profiles := make([]domain.FeatureProfile, 0, len(names))
	for _, name := range names {
		rng, _ := domain.RangeOf(name)
		p := domain.FeatureProfile{Feature: name, Configured: rng}
		if xs := samples[name]; len(xs) > 0 {
			p.Count = len(xs)
			p.Min = floats.Min(xs)
			p.Max = floats.Max(xs)
			p.Mean, p.StdDev = stat.MeanStdDev(xs, nil)
			if math.IsNaN(p.StdDev) {
				p.StdDev = 0
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
