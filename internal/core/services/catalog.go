package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/ports"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
	"github.com/ewilliams-labs/tracklens/internal/core/shape"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

// Catalog answers track, artist and analytics questions against the search
// engine. It holds no per-request state and is safe for concurrent use.
type Catalog struct {
	engine  ports.SearchEngine
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// NewCatalog constructs a Catalog. A nil logger discards logs and a nil
// recorder disables metrics.
func NewCatalog(engine ports.SearchEngine, logger *zap.Logger, rec *metrics.Recorder) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		engine:  engine,
		logger:  logger.Named("catalog"),
		metrics: rec,
	}
}

func (c *Catalog) search(ctx context.Context, req query.Request) (query.Response, error) {
	resp, err := c.engine.Search(ctx, req)
	if err != nil {
		return query.Response{}, fmt.Errorf("service: %s: %w", req.Op, err)
	}
	return resp, nil
}

// malformed reports a response the shapers could not read as an engine fault.
func malformed(op string, err error) error {
	return &domain.UpstreamError{
		Op:     "service: " + op,
		Type:   "malformed_response",
		Reason: err.Error(),
	}
}

// SearchArtistAlbums lists the albums of artist with their track counts.
func (c *Catalog) SearchArtistAlbums(ctx context.Context, artist string, size int) (domain.ArtistAlbums, error) {
	if err := query.CheckText("artist", artist); err != nil {
		return domain.ArtistAlbums{}, err
	}
	if err := query.CheckSize("size", size, query.MaxSearchSize); err != nil {
		return domain.ArtistAlbums{}, err
	}

	req := query.ArtistAlbums(artist, size)
	resp, err := c.search(ctx, req)
	if err != nil {
		return domain.ArtistAlbums{}, err
	}

	albums, err := shape.ArtistAlbums(artist, resp)
	if err != nil {
		return domain.ArtistAlbums{}, malformed(req.Op, err)
	}
	c.logger.Debug("artist albums",
		zap.String("artist", artist),
		zap.Int("albums", albums.TotalAlbums))
	return albums, nil
}

// SearchTracksByArtist returns the tracks whose artists field matches artist.
func (c *Catalog) SearchTracksByArtist(ctx context.Context, artist string, size int) (domain.SearchResult, error) {
	if err := query.CheckText("artist", artist); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckSize("size", size, query.MaxSearchSize); err != nil {
		return domain.SearchResult{}, err
	}

	resp, err := c.search(ctx, query.ArtistTracks(artist, size))
	if err != nil {
		return domain.SearchResult{}, err
	}

	c.logger.Debug("artist tracks",
		zap.String("artist", artist),
		zap.Int("total", resp.Total()))
	return shape.ArtistTracks(artist, resp), nil
}

// SearchSongPhrase matches song as an exact phrase.
func (c *Catalog) SearchSongPhrase(ctx context.Context, song string, size int) (domain.SearchResult, error) {
	if err := query.CheckText("song", song); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckSize("size", size, query.MaxTextSize); err != nil {
		return domain.SearchResult{}, err
	}
	return c.phrase(ctx, song, size)
}

func (c *Catalog) phrase(ctx context.Context, song string, size int) (domain.SearchResult, error) {
	resp, err := c.search(ctx, query.Phrase(song, size))
	if err != nil {
		return domain.SearchResult{}, err
	}
	c.logStrategy(domain.SearchTypePhrase, song, resp.Total())
	return shape.SearchResult(resp, 0, domain.Filters{
		"search_type": domain.SearchTypePhrase,
		"query":       song,
	}), nil
}

// SearchSongPartial matches titles containing any word of title. At most
// shape.DisplayCap tracks are returned.
func (c *Catalog) SearchSongPartial(ctx context.Context, title string, size int) (domain.SearchResult, error) {
	if err := query.CheckText("song", title); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckSize("size", size, query.MaxSearchSize); err != nil {
		return domain.SearchResult{}, err
	}
	return c.partial(ctx, title, size)
}

func (c *Catalog) partial(ctx context.Context, title string, size int) (domain.SearchResult, error) {
	resp, err := c.search(ctx, query.Partial(title, size))
	if err != nil {
		return domain.SearchResult{}, err
	}
	c.logStrategy(domain.SearchTypePartial, title, resp.Total())
	return shape.SearchResult(resp, shape.DisplayCap, domain.Filters{
		"search_type": domain.SearchTypePartial,
		"query":       title,
	}), nil
}

// SearchSongFuzzy matches song as a single term within fuzziness edits.
func (c *Catalog) SearchSongFuzzy(ctx context.Context, song, fuzziness string, size int) (domain.SearchResult, error) {
	if err := query.CheckText("song", song); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckFuzziness(fuzziness); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckSize("size", size, query.MaxTextSize); err != nil {
		return domain.SearchResult{}, err
	}
	return c.fuzzy(ctx, song, strings.ToUpper(fuzziness), size)
}

func (c *Catalog) fuzzy(ctx context.Context, term, fuzziness string, size int) (domain.SearchResult, error) {
	resp, err := c.search(ctx, query.Fuzzy(term, fuzziness, size))
	if err != nil {
		return domain.SearchResult{}, err
	}
	c.logStrategy(domain.SearchTypeFuzzy, term, resp.Total())
	return shape.SearchResult(resp, 0, domain.Filters{
		"search_type": domain.SearchTypeFuzzy,
		"query":       term,
	}), nil
}

// Filter returns tracks matching the given genre and album exactly. When an
// album was given and nothing matched, the album is retried as a fuzzy match
// and the result is tagged fuzzy_fallback. At most shape.DisplayCap tracks
// are returned.
func (c *Catalog) Filter(ctx context.Context, attrs query.Attributes, size int) (domain.SearchResult, error) {
	if err := query.CheckSize("size", size, query.MaxSearchSize); err != nil {
		return domain.SearchResult{}, err
	}

	applied := domain.Filters{"track_genre": nil, "album": nil}
	if attrs.Genre != "" {
		applied["track_genre"] = attrs.Genre
	}
	if attrs.Album != "" {
		applied["album"] = attrs.Album
	}

	resp, err := c.search(ctx, query.Filter(attrs, size))
	if err != nil {
		return domain.SearchResult{}, err
	}
	if resp.Total() > 0 || attrs.Album == "" {
		c.logger.Debug("filter",
			zap.String("genre", attrs.Genre),
			zap.String("album", attrs.Album),
			zap.Int("total", resp.Total()))
		return shape.SearchResult(resp, shape.DisplayCap, applied), nil
	}

	c.logger.Debug("no exact album match, retrying fuzzy",
		zap.String("album", attrs.Album))
	resp, err = c.search(ctx, query.FuzzyAlbum(attrs.Genre, attrs.Album, size))
	if err != nil {
		return domain.SearchResult{}, err
	}
	applied["search_type"] = domain.SearchTypeFuzzyFallback
	c.logStrategy(domain.SearchTypeFuzzyFallback, attrs.Album, resp.Total())
	return shape.SearchResult(resp, shape.DisplayCap, applied), nil
}

// FindSimilar returns the tracks nearest to trackID in audio-feature space,
// excluding trackID itself. A missing track yields domain.ErrNotFound.
func (c *Catalog) FindSimilar(ctx context.Context, trackID string, size int) (domain.SearchResult, error) {
	if err := query.CheckText("track_id", trackID); err != nil {
		return domain.SearchResult{}, err
	}
	if err := query.CheckSize("size", size, query.MaxSimilarSize); err != nil {
		return domain.SearchResult{}, err
	}

	doc, err := c.engine.GetDocument(ctx, trackID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SearchResult{}, fmt.Errorf("service: track %q: %w", trackID, err)
		}
		return domain.SearchResult{}, fmt.Errorf("service: load track %q: %w", trackID, err)
	}

	vector, err := shape.Vector(doc)
	if err != nil {
		return domain.SearchResult{}, malformed("similar", err)
	}

	req := query.Similar(vector, size)
	resp, err := c.search(ctx, req)
	if err != nil {
		return domain.SearchResult{}, err
	}

	source := shape.TrackFromDocument(doc)
	result := shape.Similar(resp.Hits.Hits, trackID, size)
	c.logger.Debug("similar tracks",
		zap.String("track_id", trackID),
		zap.String("track_name", source.Name),
		zap.Int("returned", result.TotalTracks))
	return result, nil
}

// Health reports the engine's cluster identity, or the reason it could not
// be reached.
func (c *Catalog) Health(ctx context.Context) (query.ClusterInfo, error) {
	info, err := c.engine.Info(ctx)
	if err != nil {
		c.logger.Warn("engine health check failed", zap.Error(err))
		return query.ClusterInfo{}, fmt.Errorf("service: health: %w", err)
	}
	return info, nil
}

func (c *Catalog) logStrategy(searchType, q string, total int) {
	c.logger.Debug("search strategy",
		zap.String("search_type", searchType),
		zap.String("query", q),
		zap.Int("total", total))
}
