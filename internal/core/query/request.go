// Package query builds engine-native search descriptors for the track index
// and decodes the engine's raw responses. Builders are pure: they never
// perform I/O and are safe for concurrent use.
package query

// Index field names.
const (
	FieldTrackID      = "track_id"
	FieldTrackName    = "track_name"
	FieldAlbumName    = "album_name"
	FieldAlbumKeyword = "album_name.keyword"
	FieldArtists      = "artists"
	FieldArtistsKw    = "artists.keyword"
	FieldGenre        = "track_genre"
	FieldPopularity   = "popularity"
	FieldDanceability = "danceability"
	FieldEnergy       = "energy"
	FieldValence      = "valence"
	FieldTempo        = "tempo"
	FieldAudioVector  = "audio_vector"
)

// FuzzinessAuto lets the engine pick the edit distance from the term length.
const FuzzinessAuto = "AUTO"

// Object is a JSON object fragment of a request body.
type Object = map[string]any

// Request is a search request body. Op names the operation for logs and
// metrics and is not sent to the engine.
type Request struct {
	Op    string `json:"-"`
	Size  int    `json:"size"`
	Query Object `json:"query,omitempty"`
	Aggs  Object `json:"aggs,omitempty"`
	KNN   Object `json:"knn,omitempty"`
}
