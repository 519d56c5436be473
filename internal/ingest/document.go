package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// Document is the indexed form of one track. Optional metadata the dataset
// left blank is omitted; the ten vector features are always present.
type Document struct {
	TrackID          string    `json:"track_id,omitempty"`
	Artists          string    `json:"artists,omitempty"`
	AlbumName        string    `json:"album_name,omitempty"`
	TrackName        string    `json:"track_name,omitempty"`
	Popularity       int       `json:"popularity"`
	DurationMs       *int64    `json:"duration_ms,omitempty"`
	Explicit         *bool     `json:"explicit,omitempty"`
	Danceability     float64   `json:"danceability"`
	Energy           float64   `json:"energy"`
	Key              *int      `json:"key,omitempty"`
	Loudness         float64   `json:"loudness"`
	Mode             *int      `json:"mode,omitempty"`
	Speechiness      float64   `json:"speechiness"`
	Acousticness     float64   `json:"acousticness"`
	Instrumentalness float64   `json:"instrumentalness"`
	Liveness         float64   `json:"liveness"`
	Valence          float64   `json:"valence"`
	Tempo            float64   `json:"tempo"`
	TimeSignature    *int      `json:"time_signature,omitempty"`
	Genre            string    `json:"track_genre,omitempty"`
	AudioVector      []float64 `json:"audio_vector"`
}

// RawFeatures parses the vector features present in rec. Blank features are
// left out so the normalizer reports them as missing.
func RawFeatures(rec Record) (map[string]float64, error) {
	raw := make(map[string]float64, domain.VectorDims)
	for _, name := range domain.FeatureNames() {
		v, ok := rec.Get(name)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q is not a number", ErrMalformedRecord, rec.Line, name, v)
		}
		raw[name] = f
	}
	return raw, nil
}

// BuildDocument converts a dataset row into a Document with its audio
// vector. Rows missing a vector feature or holding unparsable values return
// an error wrapping ErrMalformedRecord.
func BuildDocument(rec Record) (Document, error) {
	raw, err := RawFeatures(rec)
	if err != nil {
		return Document{}, err
	}
	vec, err := domain.Normalize(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, rec.Line, err)
	}

	doc := Document{
		Popularity:       int(raw["popularity"]),
		Danceability:     raw["danceability"],
		Energy:           raw["energy"],
		Loudness:         raw["loudness"],
		Speechiness:      raw["speechiness"],
		Acousticness:     raw["acousticness"],
		Instrumentalness: raw["instrumentalness"],
		Liveness:         raw["liveness"],
		Valence:          raw["valence"],
		Tempo:            raw["tempo"],
		AudioVector:      vec.Slice(),
	}
	doc.TrackID, _ = rec.Get("track_id")
	doc.Artists, _ = rec.Get("artists")
	doc.AlbumName, _ = rec.Get("album_name")
	doc.TrackName, _ = rec.Get("track_name")
	doc.Genre, _ = rec.Get("track_genre")

	if doc.DurationMs, err = optionalInt64(rec, "duration_ms"); err != nil {
		return Document{}, err
	}
	if doc.Explicit, err = optionalBool(rec, "explicit"); err != nil {
		return Document{}, err
	}
	if doc.Key, err = optionalInt(rec, "key"); err != nil {
		return Document{}, err
	}
	if doc.Mode, err = optionalInt(rec, "mode"); err != nil {
		return Document{}, err
	}
	if doc.TimeSignature, err = optionalInt(rec, "time_signature"); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func optionalInt64(rec Record, column string) (*int64, error) {
	v, ok := rec.Get(column)
	if !ok {
		return nil, nil
	}
	// Integer columns sometimes arrive as "4.0".
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %s %q is not a number", ErrMalformedRecord, rec.Line, column, v)
	}
	n := int64(f)
	return &n, nil
}

func optionalInt(rec Record, column string) (*int, error) {
	n, err := optionalInt64(rec, column)
	if err != nil || n == nil {
		return nil, err
	}
	i := int(*n)
	return &i, nil
}

func optionalBool(rec Record, column string) (*bool, error) {
	v, ok := rec.Get(column)
	if !ok {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %s %q is not a boolean", ErrMalformedRecord, rec.Line, column, v)
	}
	return &b, nil
}
