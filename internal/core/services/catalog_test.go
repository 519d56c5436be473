package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

func TestCatalog_SmartSongSearch(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		responses []query.Response
		wantOps   []string
		wantType  string
		wantQuery string
		wantTotal int
	}{
		{
			name:      "phrase hit stops after one call",
			title:     "Bohemian Rhapsody",
			responses: []query.Response{hitsResponse(1, "t1")},
			wantOps:   []string{"search_phrase"},
			wantType:  domain.SearchTypePhrase,
			wantQuery: "Bohemian Rhapsody",
			wantTotal: 1,
		},
		{
			name:      "partial hit skips fuzzy",
			title:     "The Love Song",
			responses: []query.Response{hitsResponse(0), hitsResponse(3, "t1", "t2", "t3")},
			wantOps:   []string{"search_phrase", "search_partial"},
			wantType:  domain.SearchTypePartial,
			wantQuery: "love song",
			wantTotal: 3,
		},
		{
			name:  "fuzzy tries keywords in order",
			title: "Bohemain Rapsody",
			responses: []query.Response{
				hitsResponse(0), hitsResponse(0), hitsResponse(0), hitsResponse(1, "t9"),
			},
			wantOps:   []string{"search_phrase", "search_partial", "search_fuzzy", "search_fuzzy"},
			wantType:  domain.SearchTypeFuzzy,
			wantQuery: "rapsody",
			wantTotal: 1,
		},
		{
			name:  "exhaustion returns no_matches",
			title: "Hello World",
			responses: []query.Response{
				hitsResponse(0), hitsResponse(0), hitsResponse(0), hitsResponse(0),
			},
			wantOps:   []string{"search_phrase", "search_partial", "search_fuzzy", "search_fuzzy"},
			wantType:  domain.SearchTypeSmart,
			wantQuery: "Hello World",
		},
		{
			name:      "only stop words skips keyword stages",
			title:     "The A",
			responses: []query.Response{hitsResponse(0)},
			wantOps:   []string{"search_phrase"},
			wantType:  domain.SearchTypeSmart,
			wantQuery: "The A",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := &fakeEngine{responses: tc.responses}
			c := NewCatalog(engine, nil, nil)

			res, err := c.SmartSongSearch(context.Background(), tc.title)
			require.NoError(t, err)

			assert.Equal(t, tc.wantOps, engine.ops())
			assert.Equal(t, tc.wantType, res.SearchType())
			assert.Equal(t, tc.wantQuery, res.Filters["query"])
			assert.Equal(t, tc.wantTotal, res.TotalTracks)
			if tc.wantType == domain.SearchTypeSmart {
				assert.Equal(t, domain.StatusNoMatches, res.Status())
				assert.Empty(t, res.Results)
			}
		})
	}
}

func TestCatalog_SmartSongSearch_PartialStageRequest(t *testing.T) {
	engine := &fakeEngine{responses: []query.Response{hitsResponse(0), hitsResponse(25, manyIDs(20)...)}}
	c := NewCatalog(engine, nil, nil)

	res, err := c.SmartSongSearch(context.Background(), "Song of the Summer")
	require.NoError(t, err)

	require.Len(t, engine.requests, 2)
	assert.Equal(t, 10, engine.requests[0].Size)
	assert.Equal(t, 20, engine.requests[1].Size)
	assert.Equal(t, 25, res.TotalTracks)
	assert.Len(t, res.Results, 10)
}

func TestCatalog_SmartSongSearch_Errors(t *testing.T) {
	t.Run("engine failure aborts the chain", func(t *testing.T) {
		engine := &fakeEngine{err: &domain.UpstreamError{Op: "search", Status: 503}}
		c := NewCatalog(engine, nil, nil)

		_, err := c.SmartSongSearch(context.Background(), "anything")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Len(t, engine.requests, 1)
	})

	t.Run("blank title is rejected before any call", func(t *testing.T) {
		engine := &fakeEngine{}
		c := NewCatalog(engine, nil, nil)

		_, err := c.SmartSongSearch(context.Background(), "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, engine.requests)
	})
}

func TestCatalog_Filter(t *testing.T) {
	t.Run("exact match keeps applied filters", func(t *testing.T) {
		engine := &fakeEngine{responses: []query.Response{hitsResponse(15, manyIDs(15)...)}}
		c := NewCatalog(engine, nil, nil)

		res, err := c.Filter(context.Background(), query.Attributes{Genre: "rock"}, 20)
		require.NoError(t, err)

		assert.Equal(t, []string{"filter"}, engine.ops())
		assert.Equal(t, 15, res.TotalTracks)
		assert.Len(t, res.Results, 10)
		assert.Equal(t, domain.Filters{"track_genre": "rock", "album": nil}, res.Filters)
	})

	t.Run("missing album falls back to fuzzy", func(t *testing.T) {
		engine := &fakeEngine{responses: []query.Response{hitsResponse(0), hitsResponse(2, "k1", "k2")}}
		c := NewCatalog(engine, nil, nil)

		res, err := c.Filter(context.Background(), query.Attributes{Genre: "jazz", Album: "Kind of Blue"}, 20)
		require.NoError(t, err)

		assert.Equal(t, []string{"filter", "filter_fuzzy_album"}, engine.ops())
		assert.Equal(t, 2, res.TotalTracks)
		assert.Equal(t, domain.Filters{
			"track_genre": "jazz",
			"album":       "Kind of Blue",
			"search_type": domain.SearchTypeFuzzyFallback,
		}, res.Filters)
	})

	t.Run("no album means no fallback", func(t *testing.T) {
		engine := &fakeEngine{responses: []query.Response{hitsResponse(0)}}
		c := NewCatalog(engine, nil, nil)

		res, err := c.Filter(context.Background(), query.Attributes{Genre: "polka"}, 20)
		require.NoError(t, err)

		assert.Len(t, engine.requests, 1)
		assert.Equal(t, 0, res.TotalTracks)
		assert.Empty(t, res.SearchType())
	})

	t.Run("oversized request is rejected", func(t *testing.T) {
		engine := &fakeEngine{}
		c := NewCatalog(engine, nil, nil)

		_, err := c.Filter(context.Background(), query.Attributes{}, 101)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, engine.requests)
	})
}

func TestCatalog_FindSimilar(t *testing.T) {
	vector := make([]any, domain.VectorDims)
	for i := range vector {
		vector[i] = 0.5
	}
	source := query.Document{
		ID:    "src",
		Found: true,
		Source: map[string]any{
			"track_id":     "src",
			"track_name":   "Source",
			"audio_vector": vector,
		},
	}

	t.Run("excludes the source and shifts scores", func(t *testing.T) {
		engine := &fakeEngine{
			doc: source,
			responses: []query.Response{{
				Hits: query.Hits{
					Total: query.TotalHits{Value: 4},
					Hits: []query.Hit{
						scoredHit("src", 2.0),
						scoredHit("a", 1.9),
						scoredHit("b", 1.5),
						scoredHit("c", 1.2),
					},
				},
			}},
		}
		c := NewCatalog(engine, nil, nil)

		res, err := c.FindSimilar(context.Background(), "src", 2)
		require.NoError(t, err)

		require.Len(t, engine.requests, 1)
		assert.Equal(t, 3, engine.requests[0].KNN["k"])
		require.Len(t, res.Results, 2)
		assert.Equal(t, 2, res.TotalTracks)
		assert.Equal(t, "a", res.Results[0].ID)
		assert.Equal(t, "b", res.Results[1].ID)
		assert.InDelta(t, 0.9, *res.Results[0].Similarity, 1e-9)
		assert.InDelta(t, 0.5, *res.Results[1].Similarity, 1e-9)
		assert.Equal(t, true, res.Filters["similarity_search"])
		for _, tr := range res.Results {
			assert.NotEqual(t, "src", tr.ID)
			assert.GreaterOrEqual(t, *tr.Similarity, 0.0)
			assert.LessOrEqual(t, *tr.Similarity, 1.0)
		}
	})

	t.Run("unknown track is not found", func(t *testing.T) {
		engine := &fakeEngine{docErr: fmt.Errorf("elastic adapter: %w", domain.ErrNotFound)}
		c := NewCatalog(engine, nil, nil)

		_, err := c.FindSimilar(context.Background(), "nope", 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, engine.requests)
	})

	t.Run("document without a vector is an upstream fault", func(t *testing.T) {
		engine := &fakeEngine{doc: query.Document{ID: "x", Found: true, Source: map[string]any{}}}
		c := NewCatalog(engine, nil, nil)

		_, err := c.FindSimilar(context.Background(), "x", 10)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestCatalog_SearchSongFuzzy(t *testing.T) {
	engine := &fakeEngine{responses: []query.Response{hitsResponse(1, "t1")}}
	c := NewCatalog(engine, nil, nil)

	res, err := c.SearchSongFuzzy(context.Background(), "Yesturday", "auto", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.SearchTypeFuzzy, res.SearchType())

	fuzzy := engine.requests[0].Query["fuzzy"].(query.Object)[query.FieldTrackName].(query.Object)
	assert.Equal(t, "yesturday", fuzzy["value"])
	assert.Equal(t, "AUTO", fuzzy["fuzziness"])

	_, err = c.SearchSongFuzzy(context.Background(), "x", "7", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_SearchSongPhrase_SizeBounds(t *testing.T) {
	for _, size := range []int{0, -1, 51} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			engine := &fakeEngine{}
			c := NewCatalog(engine, nil, nil)

			_, err := c.SearchSongPhrase(context.Background(), "Yesterday", size)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "size", verr.Field)
			assert.Empty(t, engine.requests)
		})
	}
}

func TestCatalog_SearchArtistAlbums(t *testing.T) {
	engine := &fakeEngine{responses: []query.Response{{
		Aggregations: map[string]json.RawMessage{
			query.AlbumsAggName: json.RawMessage(`{"buckets":[{"key":"A Night at the Opera","doc_count":12},{"key":"Jazz","doc_count":9}]}`),
		},
	}}}
	c := NewCatalog(engine, nil, nil)

	res, err := c.SearchArtistAlbums(context.Background(), "Queen", 50)
	require.NoError(t, err)

	assert.Equal(t, 0, engine.requests[0].Size)
	assert.Equal(t, "Queen", res.Artist)
	assert.Equal(t, 2, res.TotalAlbums)
	assert.Equal(t, domain.Album{Artist: "Queen", Name: "A Night at the Opera", NbTracks: 12}, res.Albums[0])
}

func TestCatalog_SearchTracksByArtist(t *testing.T) {
	engine := &fakeEngine{responses: []query.Response{hitsResponse(2, "t1", "t2")}}
	c := NewCatalog(engine, nil, nil)

	res, err := c.SearchTracksByArtist(context.Background(), "Queen", 20)
	require.NoError(t, err)

	assert.Equal(t, "Queen", res.Artist)
	assert.Equal(t, domain.Filters{"artist": "Queen"}, res.Filters)
	assert.Len(t, res.Results, 2)
}

func TestCatalog_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine := &fakeEngine{info: query.ClusterInfo{ClusterName: "docker-cluster"}}
		info, err := NewCatalog(engine, nil, nil).Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "docker-cluster", info.ClusterName)
	})

	t.Run("unreachable", func(t *testing.T) {
		engine := &fakeEngine{infoErr: &domain.UpstreamError{Op: "info", Err: errors.New("connection refused")}}
		_, err := NewCatalog(engine, nil, nil).Health(context.Background())
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

// --- Fakes ---

// fakeEngine replays canned search responses in call order and records the
// requests it received.
type fakeEngine struct {
	responses []query.Response
	err       error
	requests  []query.Request

	doc    query.Document
	docErr error

	info    query.ClusterInfo
	infoErr error
}

func (f *fakeEngine) Search(_ context.Context, req query.Request) (query.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return query.Response{}, f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.responses) {
		return query.Response{}, fmt.Errorf("fake engine: unexpected call %d (%s)", i+1, req.Op)
	}
	return f.responses[i], nil
}

func (f *fakeEngine) GetDocument(_ context.Context, _ string) (query.Document, error) {
	if f.docErr != nil {
		return query.Document{}, f.docErr
	}
	return f.doc, nil
}

func (f *fakeEngine) Info(_ context.Context) (query.ClusterInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeEngine) ops() []string {
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Op)
	}
	return out
}

func hitsResponse(total int, ids ...string) query.Response {
	hits := make([]query.Hit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, query.Hit{
			ID:     id,
			Source: map[string]any{"track_id": id, "track_name": "Track " + id},
		})
	}
	return query.Response{Hits: query.Hits{Total: query.TotalHits{Value: total}, Hits: hits}}
}

func scoredHit(id string, score float64) query.Hit {
	return query.Hit{
		ID:     id,
		Score:  &score,
		Source: map[string]any{"track_id": id},
	}
}

func manyIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}
	return ids
}
