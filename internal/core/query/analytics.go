package query

import (
	"fmt"
	"strings"
)

// Metric sub-aggregation names shared by the analytics builders and parsers.
const (
	AggAvgDanceability = "avg_danceability"
	AggAvgEnergy       = "avg_energy"
	AggAvgValence      = "avg_valence"
	AggAvgPopularity   = "avg_popularity"
	AggAvgTempo        = "avg_tempo"
	AggTrackCount      = "track_count"
	AggWeightedScore   = "weighted_score"

	ArtistsAggName = "all_artists"
)

// ArtistCandidates is the number of artist buckets the engine considers
// before the minimum-track filter and client-side truncation.
const ArtistCandidates = 500

// GenreKey ties one aggregation name to the genre it was built for.
type GenreKey struct {
	Key   string
	Genre string
}

// GenreAggregation is a genre comparison request together with the key table
// needed to read its response back in request order.
type GenreAggregation struct {
	Request Request
	Keys    []GenreKey
}

// GenreComparison builds one genre-scoped bucket per genre, each averaging
// the comparison features. Keys are positional so genres that collapse to the
// same identifier after sanitizing never collide.
func GenreComparison(genres []string) (GenreAggregation, error) {
	if err := CheckGenres(genres); err != nil {
		return GenreAggregation{}, err
	}

	aggs := make(Object, len(genres))
	keys := make([]GenreKey, 0, len(genres))
	for i, genre := range genres {
		key := genreAggKey(i, genre)
		keys = append(keys, GenreKey{Key: key, Genre: genre})
		aggs[key] = Object{
			"filter": term(FieldGenre, genre),
			"aggs": Object{
				AggAvgDanceability: avg(FieldDanceability),
				AggAvgEnergy:       avg(FieldEnergy),
				AggAvgValence:      avg(FieldValence),
				AggAvgPopularity:   avg(FieldPopularity),
				AggAvgTempo:        avg(FieldTempo),
				AggTrackCount:      Object{"value_count": Object{"field": FieldTrackID}},
			},
		}
	}

	return GenreAggregation{
		Request: Request{Op: "compare_genres", Size: 0, Aggs: aggs},
		Keys:    keys,
	}, nil
}

func genreAggKey(i int, genre string) string {
	return fmt.Sprintf("genre_%d_%s", i, sanitizeAggName(genre))
}

// sanitizeAggName maps characters outside [A-Za-z0-9_] to '_'; aggregation
// names may not contain '[', ']' or '>' and the rest only hurt readability.
func sanitizeAggName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// ArtistRanking ranks the artists of a genre by average popularity. Artists
// with fewer than minTracks tracks in the genre are removed by the engine.
// With weighted set each bucket also carries avg_popularity * log10(count+1).
func ArtistRanking(genre string, minTracks int, weighted bool) Request {
	sub := Object{
		AggAvgPopularity: avg(FieldPopularity),
		"popularity_filter": Object{
			"bucket_selector": Object{
				"buckets_path": Object{
					"avg_pop":     AggAvgPopularity,
					"track_count": "_count",
				},
				"script": fmt.Sprintf("params.track_count >= %d", minTracks),
			},
		},
	}
	if weighted {
		sub[AggWeightedScore] = Object{
			"bucket_script": Object{
				"buckets_path": Object{
					"avg_pop":     AggAvgPopularity,
					"track_count": "_count",
				},
				"script": "params.avg_pop * Math.log10(params.track_count + 1)",
			},
		}
	}

	return Request{
		Op:    "top_artists",
		Size:  0,
		Query: term(FieldGenre, genre),
		Aggs: Object{
			ArtistsAggName: Object{
				"terms": Object{
					"field": FieldArtistsKw,
					"size":  ArtistCandidates,
					"order": Object{AggAvgPopularity: "desc"},
				},
				"aggs": sub,
			},
		},
	}
}

func avg(field string) Object {
	return Object{"avg": Object{"field": field}}
}
