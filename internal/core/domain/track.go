package domain

// Track represents a catalog track as returned to callers.
// Similarity is only set on similarity-search results.
type Track struct {
	ID         string   `json:"track_id"`
	Name       string   `json:"track_name"`
	Album      string   `json:"album_name"`
	Popularity int      `json:"popularity"`
	Genre      string   `json:"track_genre"`
	Artists    string   `json:"artists"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Album is a per-artist album bucket with its track count.
type Album struct {
	Artist   string `json:"artist"`
	Name     string `json:"name"`
	NbTracks int    `json:"nb_tracks"`
}

// GenreStats holds averaged audio features for one genre.
type GenreStats struct {
	Genre           string  `json:"genre"`
	TrackCount      int     `json:"track_count"`
	AvgDanceability float64 `json:"avg_danceability"`
	AvgEnergy       float64 `json:"avg_energy"`
	AvgValence      float64 `json:"avg_valence"`
	AvgPopularity   float64 `json:"avg_popularity"`
	AvgTempo        float64 `json:"avg_tempo"`
}

// Artist is one ranked entry of a per-genre artist ranking.
// Rank is 1-based.
type Artist struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"artist"`
	TrackCount    int      `json:"track_count"`
	AvgPopularity float64  `json:"avg_popularity"`
	WeightedScore *float64 `json:"weighted_score,omitempty"`
}
