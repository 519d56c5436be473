package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

func encode(t *testing.T, req Request) string {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return string(b)
}

func TestTextQueries(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		wantOp string
		want   string
	}{
		{
			name:   "phrase",
			req:    Phrase("Bohemian Rhapsody", 10),
			wantOp: "search_phrase",
			want:   `{"size":10,"query":{"match_phrase":{"track_name":"Bohemian Rhapsody"}}}`,
		},
		{
			name:   "partial",
			req:    Partial("love song", 20),
			wantOp: "search_partial",
			want:   `{"size":20,"query":{"multi_match":{"query":"love song","fields":["track_name"],"operator":"or"}}}`,
		},
		{
			name:   "fuzzy lowercases and defaults to AUTO",
			req:    Fuzzy("Rapsody", "", 10),
			wantOp: "search_fuzzy",
			want:   `{"size":10,"query":{"fuzzy":{"track_name":{"value":"rapsody","fuzziness":"AUTO"}}}}`,
		},
		{
			name:   "fuzzy explicit distance",
			req:    Fuzzy("yesterday", "2", 5),
			wantOp: "search_fuzzy",
			want:   `{"size":5,"query":{"fuzzy":{"track_name":{"value":"yesterday","fuzziness":"2"}}}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantOp, tc.req.Op)
			assert.JSONEq(t, tc.want, encode(t, tc.req))
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
		want  string
	}{
		{
			name:  "genre and album",
			attrs: Attributes{Genre: "jazz", Album: "Kind of Blue"},
			want:  `{"size":20,"query":{"bool":{"filter":[{"term":{"track_genre":"jazz"}},{"term":{"album_name.keyword":"Kind of Blue"}}]}}}`,
		},
		{
			name:  "genre only",
			attrs: Attributes{Genre: "jazz"},
			want:  `{"size":20,"query":{"bool":{"filter":[{"term":{"track_genre":"jazz"}}]}}}`,
		},
		{
			name:  "no attributes matches everything",
			attrs: Attributes{},
			want:  `{"size":20,"query":{"bool":{"filter":[]}}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := Filter(tc.attrs, 20)

			assert.Equal(t, "filter", req.Op)
			assert.JSONEq(t, tc.want, encode(t, req))
		})
	}

	assert.True(t, Attributes{}.Empty())
	assert.False(t, Attributes{Album: "x"}.Empty())
}

func TestFuzzyAlbum(t *testing.T) {
	req := FuzzyAlbum("jazz", "Kind of Blu", 20)

	assert.Equal(t, "filter_fuzzy_album", req.Op)
	assert.JSONEq(t, `{"size":20,"query":{"bool":{
		"filter":[{"term":{"track_genre":"jazz"}}],
		"must":[{"match":{"album_name":{"query":"Kind of Blu","fuzziness":"AUTO","operator":"and"}}}]
	}}}`, encode(t, req))
}

func TestArtistQueries(t *testing.T) {
	assert.JSONEq(t,
		`{"size":20,"query":{"match":{"artists":"Queen"}}}`,
		encode(t, ArtistTracks("Queen", 20)))

	assert.JSONEq(t,
		`{"size":0,"query":{"match":{"artists":"Queen"}},"aggs":{"albums":{"terms":{"field":"album_name.keyword","size":50}}}}`,
		encode(t, ArtistAlbums("Queen", 50)))
}

func TestSimilar(t *testing.T) {
	vec := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

	req := Similar(vec, 10)

	assert.Equal(t, "similar", req.Op)
	assert.Equal(t, 11, req.Size, "one extra hit for the source track")
	assert.Nil(t, req.Query)
	assert.Equal(t, FieldAudioVector, req.KNN["field"])
	assert.Equal(t, 11, req.KNN["k"])
	assert.Equal(t, SimilarCandidates, req.KNN["num_candidates"])
	assert.Equal(t, vec, req.KNN["query_vector"])
}

func TestGenreComparison(t *testing.T) {
	agg, err := GenreComparison([]string{"r-n-b", "hip hop", "r&b"})
	require.NoError(t, err)

	assert.Equal(t, "compare_genres", agg.Request.Op)
	assert.Equal(t, 0, agg.Request.Size)
	assert.Equal(t, []GenreKey{
		{Key: "genre_0_r_n_b", Genre: "r-n-b"},
		{Key: "genre_1_hip_hop", Genre: "hip hop"},
		{Key: "genre_2_r_b", Genre: "r&b"},
	}, agg.Keys)
	require.Len(t, agg.Request.Aggs, 3)

	bucket := agg.Request.Aggs["genre_1_hip_hop"].(Object)
	assert.Equal(t, Object{"term": Object{"track_genre": "hip hop"}}, bucket["filter"])
	metrics := bucket["aggs"].(Object)
	assert.Contains(t, metrics, AggAvgTempo)
	assert.Contains(t, metrics, AggTrackCount)
}

func TestGenreComparison_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
	}{
		{"one genre", []string{"rock"}},
		{"too many", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
		{"blank name", []string{"rock", "  "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GenreComparison(tc.genres)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestArtistRanking(t *testing.T) {
	req := ArtistRanking("rock", 3, false)

	assert.Equal(t, "top_artists", req.Op)
	assert.Equal(t, Object{"term": Object{"track_genre": "rock"}}, req.Query)

	terms := req.Aggs[ArtistsAggName].(Object)
	sub := terms["aggs"].(Object)
	assert.NotContains(t, sub, AggWeightedScore)
	selector := sub["popularity_filter"].(Object)["bucket_selector"].(Object)
	assert.Equal(t, "params.track_count >= 3", selector["script"])

	weighted := ArtistRanking("rock", 2, true)
	sub = weighted.Aggs[ArtistsAggName].(Object)["aggs"].(Object)
	assert.Contains(t, sub, AggWeightedScore)
}

func TestChecks(t *testing.T) {
	assert.NoError(t, CheckSize("size", 1, 10))
	assert.NoError(t, CheckSize("size", 10, 10))
	assert.ErrorIs(t, CheckSize("size", 0, 10), domain.ErrInvalidInput)
	assert.ErrorIs(t, CheckSize("size", 11, 10), domain.ErrInvalidInput)

	assert.NoError(t, CheckText("song", "x"))
	assert.ErrorIs(t, CheckText("song", " \t"), domain.ErrInvalidInput)

	assert.NoError(t, CheckMinTracks(1))
	assert.NoError(t, CheckMinTracks(10))
	assert.ErrorIs(t, CheckMinTracks(0), domain.ErrInvalidInput)
	assert.ErrorIs(t, CheckMinTracks(11), domain.ErrInvalidInput)

	for _, ok := range []string{"", "AUTO", "auto", "AUTO:3,6", "0", "1", "2"} {
		assert.NoError(t, CheckFuzziness(ok), ok)
	}
	for _, bad := range []string{"3", "-1", "AUTO:3", "fuzzy", "1.5"} {
		assert.ErrorIs(t, CheckFuzziness(bad), domain.ErrInvalidInput, bad)
	}
}

func TestResponse_Decode(t *testing.T) {
	raw := `{"took":3,"hits":{"total":{"value":42,"relation":"eq"},"max_score":1.5,
		"hits":[{"_id":"a","_score":1.5,"_source":{"track_id":"a"}}]},
		"aggregations":{"albums":{"buckets":[]}}}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	assert.Equal(t, 42, resp.Total())
	require.Len(t, resp.Hits.Hits, 1)
	require.NotNil(t, resp.Hits.Hits[0].Score)
	assert.Equal(t, 1.5, *resp.Hits.Hits[0].Score)
	assert.Contains(t, resp.Aggregations, "albums")
}
