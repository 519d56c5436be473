package shape

import (
	"encoding/json"
	"fmt"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

type metric struct {
	Value *float64 `json:"value"`
}

// orZero treats an empty bucket's null metric as 0.
func (m metric) orZero() float64 {
	if m.Value == nil {
		return 0
	}
	return *m.Value
}

type termsAgg[B any] struct {
	Buckets []B `json:"buckets"`
}

type albumBucket struct {
	Key      any `json:"key"`
	DocCount int `json:"doc_count"`
}

type artistBucket struct {
	Key           any     `json:"key"`
	DocCount      int     `json:"doc_count"`
	AvgPopularity metric  `json:"avg_popularity"`
	WeightedScore *metric `json:"weighted_score"`
}

type genreBucket struct {
	DocCount        int    `json:"doc_count"`
	AvgDanceability metric `json:"avg_danceability"`
	AvgEnergy       metric `json:"avg_energy"`
	AvgValence      metric `json:"avg_valence"`
	AvgPopularity   metric `json:"avg_popularity"`
	AvgTempo        metric `json:"avg_tempo"`
	TrackCount      metric `json:"track_count"`
}

// decodeAgg reads a named aggregation. A missing aggregation reports false.
func decodeAgg(resp query.Response, name string, out any) (bool, error) {
	raw, ok := resp.Aggregations[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("shape: decode aggregation %q: %w", name, err)
	}
	return true, nil
}

func bucketKey(key any) string {
	switch k := key.(type) {
	case nil:
		return "Unknown"
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}

// ArtistAlbums maps album buckets of query.ArtistAlbums.
func ArtistAlbums(artist string, resp query.Response) (domain.ArtistAlbums, error) {
	var agg termsAgg[albumBucket]
	if _, err := decodeAgg(resp, query.AlbumsAggName, &agg); err != nil {
		return domain.ArtistAlbums{}, err
	}

	albums := make([]domain.Album, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		albums = append(albums, domain.Album{
			Artist:   artist,
			Name:     bucketKey(b.Key),
			NbTracks: b.DocCount,
		})
	}

	return domain.ArtistAlbums{
		Artist:      artist,
		TotalAlbums: len(albums),
		Albums:      albums,
	}, nil
}

// GenreComparison reads the per-genre buckets back through the key table
// built with the request, so each GenreStats carries the genre exactly as
// requested and in request order. Keys absent from the response are skipped.
func GenreComparison(keys []query.GenreKey, resp query.Response) (domain.GenreComparison, error) {
	stats := make([]domain.GenreStats, 0, len(keys))
	for _, k := range keys {
		var b genreBucket
		found, err := decodeAgg(resp, k.Key, &b)
		if err != nil {
			return domain.GenreComparison{}, err
		}
		if !found {
			continue
		}
		stats = append(stats, domain.GenreStats{
			Genre:           k.Genre,
			TrackCount:      int(b.TrackCount.orZero()),
			AvgDanceability: b.AvgDanceability.orZero(),
			AvgEnergy:       b.AvgEnergy.orZero(),
			AvgValence:      b.AvgValence.orZero(),
			AvgPopularity:   b.AvgPopularity.orZero(),
			AvgTempo:        b.AvgTempo.orZero(),
		})
	}
	return domain.GenreComparison{Genres: stats}, nil
}

// TopArtists ranks the artist buckets of query.ArtistRanking in engine order.
// Buckets under minTracks are dropped before ranking in case the engine
// ignored the selector; ranks then run 1..size.
func TopArtists(genre string, resp query.Response, size, minTracks int) (domain.TopArtists, error) {
	var agg termsAgg[artistBucket]
	if _, err := decodeAgg(resp, query.ArtistsAggName, &agg); err != nil {
		return domain.TopArtists{}, err
	}

	artists := make([]domain.Artist, 0, size)
	for _, b := range agg.Buckets {
		if len(artists) >= size {
			break
		}
		if b.DocCount < minTracks {
			continue
		}
		a := domain.Artist{
			Rank:          len(artists) + 1,
			Name:          bucketKey(b.Key),
			TrackCount:    b.DocCount,
			AvgPopularity: round1(b.AvgPopularity.orZero()),
		}
		if b.WeightedScore != nil && b.WeightedScore.Value != nil {
			w := round1(*b.WeightedScore.Value)
			a.WeightedScore = &w
		}
		artists = append(artists, a)
	}

	return domain.TopArtists{Genre: genre, TopArtists: artists}, nil
}
