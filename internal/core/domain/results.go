package domain

import "encoding/json"

// Search strategy names echoed back in result filters.
const (
	SearchTypePhrase        = "phrase"
	SearchTypePartial       = "partial"
	SearchTypeFuzzy         = "fuzzy"
	SearchTypeSmart         = "smart"
	SearchTypeFuzzyFallback = "fuzzy_fallback"

	StatusNoMatches = "no_matches"
)

// Filters echoes the parameters and strategy that produced a result.
// Values may be nil to report an unset filter.
type Filters map[string]any

// SearchResult is the envelope for every track-list response.
// When Artist is set the tracks serialize under "tracks" instead of "results".
type SearchResult struct {
	TotalTracks int
	Results     []Track
	Filters     Filters
	Artist      string
}

type searchResultJSON struct {
	Artist      string   `json:"artist,omitempty"`
	TotalTracks int      `json:"total_tracks"`
	Results     *[]Track `json:"results,omitempty"`
	Tracks      *[]Track `json:"tracks,omitempty"`
	Filters     Filters  `json:"filters,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	tracks := r.Results
	if tracks == nil {
		tracks = []Track{}
	}

	out := searchResultJSON{
		Artist:      r.Artist,
		TotalTracks: r.TotalTracks,
		Filters:     r.Filters,
	}
	if r.Artist != "" {
		out.Tracks = &tracks
	} else {
		out.Results = &tracks
	}

	return json.Marshal(out)
}

// Status returns the status marker from the filters, if any.
func (r SearchResult) Status() string {
	s, _ := r.Filters["status"].(string)
	return s
}

// SearchType returns the strategy that produced the result, if recorded.
func (r SearchResult) SearchType() string {
	s, _ := r.Filters["search_type"].(string)
	return s
}

// ArtistAlbums lists the albums of one artist.
type ArtistAlbums struct {
	Artist      string  `json:"artist"`
	TotalAlbums int     `json:"total_albums"`
	Albums      []Album `json:"albums"`
}

// GenreComparison holds one GenreStats per requested genre, in request order.
type GenreComparison struct {
	Genres []GenreStats `json:"genres"`
}

// TopArtists is a per-genre artist ranking.
type TopArtists struct {
	Genre      string   `json:"genre"`
	TopArtists []Artist `json:"top_artists"`
}
