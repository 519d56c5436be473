package query

// Attributes is a conjunctive exact-match filter. Empty fields are not
// constrained; an empty Attributes matches every track.
type Attributes struct {
	Genre string
	Album string
}

// Empty reports whether no attribute is constrained.
func (a Attributes) Empty() bool {
	return a.Genre == "" && a.Album == ""
}

func term(field, value string) Object {
	return Object{"term": Object{field: value}}
}

// Filter returns tracks matching every set attribute exactly.
func Filter(attrs Attributes, size int) Request {
	filters := make([]Object, 0, 2)
	if attrs.Genre != "" {
		filters = append(filters, term(FieldGenre, attrs.Genre))
	}
	if attrs.Album != "" {
		filters = append(filters, term(FieldAlbumKeyword, attrs.Album))
	}

	return Request{
		Op:   "filter",
		Size: size,
		Query: Object{
			"bool": Object{"filter": filters},
		},
	}
}

// FuzzyAlbum approximates an album name: every token must match within an
// automatic edit distance. A non-empty genre is still applied exactly.
func FuzzyAlbum(genre, album string, size int) Request {
	filters := make([]Object, 0, 1)
	if genre != "" {
		filters = append(filters, term(FieldGenre, genre))
	}

	return Request{
		Op:   "filter_fuzzy_album",
		Size: size,
		Query: Object{
			"bool": Object{
				"filter": filters,
				"must": []Object{{
					"match": Object{
						FieldAlbumName: Object{
							"query":     album,
							"fuzziness": FuzzinessAuto,
							"operator":  "and",
						},
					},
				}},
			},
		},
	}
}

// ArtistTracks returns tracks whose artists field matches artist.
func ArtistTracks(artist string, size int) Request {
	return Request{
		Op:    "artist_tracks",
		Size:  size,
		Query: Object{"match": Object{FieldArtists: artist}},
	}
}

// AlbumsAggName is the aggregation holding the per-album buckets of ArtistAlbums.
const AlbumsAggName = "albums"

// ArtistAlbums buckets an artist's tracks by exact album name, returning no
// documents.
func ArtistAlbums(artist string, size int) Request {
	return Request{
		Op:    "artist_albums",
		Size:  0,
		Query: Object{"match": Object{FieldArtists: artist}},
		Aggs: Object{
			AlbumsAggName: Object{
				"terms": Object{
					"field": FieldAlbumKeyword,
					"size":  size,
				},
			},
		},
	}
}
