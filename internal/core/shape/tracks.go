package shape

import (
	"fmt"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

// DisplayCap bounds the tracks returned by partial-title and filter searches
// regardless of how many the engine fetched.
const DisplayCap = 10

// Track maps one hit to a domain.Track.
func Track(hit query.Hit) domain.Track {
	return trackFromSource(hit.ID, hit.Source)
}

// TrackFromDocument maps a fetched document to a domain.Track.
func TrackFromDocument(doc query.Document) domain.Track {
	return trackFromSource(doc.ID, doc.Source)
}

func trackFromSource(docID string, src map[string]any) domain.Track {
	id := sourceString(src, query.FieldTrackID)
	if id == "" {
		id = docID
	}
	return domain.Track{
		ID:         id,
		Name:       sourceString(src, query.FieldTrackName),
		Album:      sourceString(src, query.FieldAlbumName),
		Popularity: sourceInt(src, query.FieldPopularity),
		Genre:      sourceString(src, query.FieldGenre),
		Artists:    sourceString(src, query.FieldArtists),
	}
}

// Tracks maps hits in order, keeping at most limit when limit > 0.
func Tracks(hits []query.Hit, limit int) []domain.Track {
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	tracks := make([]domain.Track, 0, len(hits))
	for _, hit := range hits {
		tracks = append(tracks, Track(hit))
	}
	return tracks
}

// SearchResult wraps a search response. TotalTracks is the engine total, not
// the number of tracks kept.
func SearchResult(resp query.Response, limit int, filters domain.Filters) domain.SearchResult {
	return domain.SearchResult{
		TotalTracks: resp.Total(),
		Results:     Tracks(resp.Hits.Hits, limit),
		Filters:     filters,
	}
}

// ArtistTracks wraps an artist track search; the result serializes its
// tracks under "tracks" alongside the artist name.
func ArtistTracks(artist string, resp query.Response) domain.SearchResult {
	res := SearchResult(resp, 0, domain.Filters{"artist": artist})
	res.Artist = artist
	return res
}

// Similar builds a similarity result from KNN hits. The source track is
// dropped wherever it appears, scores are shifted from the engine's [1,2]
// range down to [0,1], and at most size tracks are kept in score order.
func Similar(hits []query.Hit, sourceID string, size int) domain.SearchResult {
	tracks := make([]domain.Track, 0, size)
	for _, hit := range hits {
		if len(tracks) >= size {
			break
		}
		t := Track(hit)
		if hit.ID == sourceID || t.ID == sourceID {
			continue
		}
		sim := 0.0
		if hit.Score != nil {
			sim = clamp01(*hit.Score - 1.0)
		}
		t.Similarity = &sim
		tracks = append(tracks, t)
	}

	return domain.SearchResult{
		TotalTracks: len(tracks),
		Results:     tracks,
		Filters:     domain.Filters{"similarity_search": true},
	}
}

// Vector extracts the stored audio vector of a document.
func Vector(doc query.Document) ([]float64, error) {
	raw, ok := doc.Source[query.FieldAudioVector].([]any)
	if !ok {
		return nil, fmt.Errorf("shape: document %s has no %s", doc.ID, query.FieldAudioVector)
	}
	if len(raw) != domain.VectorDims {
		return nil, fmt.Errorf("shape: document %s %s has %d dims, want %d", doc.ID, query.FieldAudioVector, len(raw), domain.VectorDims)
	}

	vec := make([]float64, 0, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("shape: document %s %s[%d] is not a number", doc.ID, query.FieldAudioVector, i)
		}
		vec = append(vec, f)
	}
	return vec, nil
}
