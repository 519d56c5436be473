package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

func score(v float64) *float64 { return &v }

func aggs(t *testing.T, raw map[string]string) query.Response {
	t.Helper()
	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		require.True(t, json.Valid([]byte(v)), k)
		out[k] = json.RawMessage(v)
	}
	return query.Response{Aggregations: out}
}

func TestTrack(t *testing.T) {
	tests := []struct {
		name string
		hit  query.Hit
		want domain.Track
	}{
		{
			name: "full source",
			hit: query.Hit{ID: "doc1", Source: map[string]any{
				"track_id": "t1", "track_name": "Hold On", "album_name": "Hold On",
				"popularity": float64(82), "track_genre": "acoustic", "artists": "Chord Overstreet",
			}},
			want: domain.Track{ID: "t1", Name: "Hold On", Album: "Hold On", Popularity: 82, Genre: "acoustic", Artists: "Chord Overstreet"},
		},
		{
			name: "missing fields fall back",
			hit:  query.Hit{ID: "doc2", Source: map[string]any{"popularity": "55"}},
			want: domain.Track{ID: "doc2", Popularity: 55},
		},
		{
			name: "nil source",
			hit:  query.Hit{ID: "doc3"},
			want: domain.Track{ID: "doc3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Track(tc.hit))
		})
	}
}

func TestSearchResult_KeepsEngineTotal(t *testing.T) {
	hits := make([]query.Hit, 0, 15)
	for i := 0; i < 15; i++ {
		hits = append(hits, query.Hit{ID: string(rune('a' + i))})
	}
	resp := query.Response{Hits: query.Hits{Total: query.TotalHits{Value: 230}, Hits: hits}}

	res := SearchResult(resp, DisplayCap, domain.Filters{"q": "x"})

	assert.Equal(t, 230, res.TotalTracks)
	assert.Len(t, res.Results, DisplayCap)
	assert.Equal(t, "a", res.Results[0].ID)

	all := SearchResult(resp, 0, nil)
	assert.Len(t, all.Results, 15)
}

func TestArtistTracks(t *testing.T) {
	resp := query.Response{Hits: query.Hits{Total: query.TotalHits{Value: 1}, Hits: []query.Hit{{ID: "t1"}}}}

	res := ArtistTracks("Queen", resp)

	assert.Equal(t, "Queen", res.Artist)
	assert.Equal(t, domain.Filters{"artist": "Queen"}, res.Filters)
	assert.Len(t, res.Results, 1)
}

func TestSimilar(t *testing.T) {
	hits := []query.Hit{
		{ID: "src", Score: score(2.0)},
		{ID: "a", Score: score(1.9)},
		{ID: "b", Score: score(2.4)},
		{ID: "c", Score: score(0.7)},
		{ID: "d"},
		{ID: "e", Score: score(1.5)},
	}

	res := Similar(hits, "src", 4)

	require.Len(t, res.Results, 4)
	assert.Equal(t, 4, res.TotalTracks)
	assert.Equal(t, domain.Filters{"similarity_search": true}, res.Filters)

	ids := make([]string, 0, 4)
	for _, tr := range res.Results {
		require.NotNil(t, tr.Similarity)
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.InDelta(t, 0.9, *res.Results[0].Similarity, 1e-9)
	assert.Equal(t, 1.0, *res.Results[1].Similarity, "clamped above")
	assert.Equal(t, 0.0, *res.Results[2].Similarity, "clamped below")
	assert.Equal(t, 0.0, *res.Results[3].Similarity, "unscored")
}

func TestSimilar_SourceBySourceID(t *testing.T) {
	hits := []query.Hit{
		{ID: "es-generated", Score: score(2), Source: map[string]any{"track_id": "src"}},
		{ID: "other", Score: score(1.5)},
	}

	res := Similar(hits, "src", 10)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "other", res.Results[0].ID)
}

func TestVector(t *testing.T) {
	good := make([]any, domain.VectorDims)
	for i := range good {
		good[i] = float64(i) / 10
	}

	vec, err := Vector(query.Document{ID: "t1", Source: map[string]any{"audio_vector": good}})
	require.NoError(t, err)
	assert.Len(t, vec, domain.VectorDims)
	assert.Equal(t, 0.9, vec[9])

	_, err = Vector(query.Document{ID: "t1", Source: map[string]any{}})
	assert.Error(t, err)

	_, err = Vector(query.Document{ID: "t1", Source: map[string]any{"audio_vector": good[:3]}})
	assert.ErrorContains(t, err, "has 3 dims")

	bad := append([]any{}, good...)
	bad[2] = "x"
	_, err = Vector(query.Document{ID: "t1", Source: map[string]any{"audio_vector": bad}})
	assert.ErrorContains(t, err, "not a number")
}

func TestArtistAlbums(t *testing.T) {
	resp := aggs(t, map[string]string{
		query.AlbumsAggName: `{"buckets":[{"key":"A Night at the Opera","doc_count":12},{"key":null,"doc_count":2},{"key":1989,"doc_count":1}]}`,
	})

	albums, err := ArtistAlbums("Queen", resp)
	require.NoError(t, err)

	assert.Equal(t, "Queen", albums.Artist)
	assert.Equal(t, 3, albums.TotalAlbums)
	assert.Equal(t, domain.Album{Artist: "Queen", Name: "A Night at the Opera", NbTracks: 12}, albums.Albums[0])
	assert.Equal(t, "Unknown", albums.Albums[1].Name)
	assert.Equal(t, "1989", albums.Albums[2].Name)

	empty, err := ArtistAlbums("Nobody", query.Response{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalAlbums)
	assert.NotNil(t, empty.Albums)
}

func TestGenreComparison(t *testing.T) {
	keys := []query.GenreKey{
		{Key: "genre_0_rock", Genre: "rock"},
		{Key: "genre_1_polka", Genre: "polka"},
		{Key: "genre_2_missing", Genre: "missing"},
	}
	resp := aggs(t, map[string]string{
		"genre_0_rock": `{"doc_count":1000,"avg_danceability":{"value":0.53},"avg_energy":{"value":0.72},
			"avg_valence":{"value":0.5},"avg_popularity":{"value":40.2},"avg_tempo":{"value":121.1},"track_count":{"value":1000}}`,
		"genre_1_polka": `{"doc_count":0,"avg_danceability":{"value":null},"avg_energy":{"value":null},
			"avg_valence":{"value":null},"avg_popularity":{"value":null},"avg_tempo":{"value":null},"track_count":{"value":0}}`,
	})

	cmp, err := GenreComparison(keys, resp)
	require.NoError(t, err)

	require.Len(t, cmp.Genres, 2)
	assert.Equal(t, domain.GenreStats{
		Genre: "rock", TrackCount: 1000, AvgDanceability: 0.53, AvgEnergy: 0.72,
		AvgValence: 0.5, AvgPopularity: 40.2, AvgTempo: 121.1,
	}, cmp.Genres[0])
	assert.Equal(t, domain.GenreStats{Genre: "polka"}, cmp.Genres[1])
}

func TestGenreComparison_Malformed(t *testing.T) {
	keys := []query.GenreKey{{Key: "genre_0_rock", Genre: "rock"}}
	resp := aggs(t, map[string]string{"genre_0_rock": `{"doc_count":"many"}`})

	_, err := GenreComparison(keys, resp)
	assert.Error(t, err)
}

func TestTopArtists(t *testing.T) {
	resp := aggs(t, map[string]string{
		query.ArtistsAggName: `{"buckets":[
			{"key":"Big","doc_count":5,"avg_popularity":{"value":81.26},"weighted_score":{"value":63.23}},
			{"key":"Solo","doc_count":1,"avg_popularity":{"value":99}},
			{"key":"Mid","doc_count":3,"avg_popularity":{"value":70.04}},
			{"key":"Late","doc_count":4,"avg_popularity":{"value":60}}
		]}`,
	})

	top, err := TopArtists("rock", resp, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, "rock", top.Genre)
	require.Len(t, top.TopArtists, 2)

	first := top.TopArtists[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Big", first.Name)
	assert.Equal(t, 81.3, first.AvgPopularity)
	require.NotNil(t, first.WeightedScore)
	assert.Equal(t, 63.2, *first.WeightedScore)

	second := top.TopArtists[1]
	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, "Mid", second.Name, "artists under min tracks are skipped")
	assert.Nil(t, second.WeightedScore)
}
