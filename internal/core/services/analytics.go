package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
	"github.com/ewilliams-labs/tracklens/internal/core/shape"
)

// CompareGenres averages the audio features of each genre in one round trip.
// Results come back in request order.
func (c *Catalog) CompareGenres(ctx context.Context, genres []string) (domain.GenreComparison, error) {
	agg, err := query.GenreComparison(genres)
	if err != nil {
		return domain.GenreComparison{}, err
	}

	resp, err := c.search(ctx, agg.Request)
	if err != nil {
		return domain.GenreComparison{}, err
	}

	cmp, err := shape.GenreComparison(agg.Keys, resp)
	if err != nil {
		return domain.GenreComparison{}, malformed(agg.Request.Op, err)
	}
	c.logger.Debug("genre comparison",
		zap.Strings("genres", genres),
		zap.Int("returned", len(cmp.Genres)))
	return cmp, nil
}

// TopArtists ranks the artists of genre by average popularity, ignoring
// artists with fewer than minTracks tracks in the genre. With weighted set
// each artist also carries a score that favours larger catalogues.
func (c *Catalog) TopArtists(ctx context.Context, genre string, size, minTracks int, weighted bool) (domain.TopArtists, error) {
	if err := query.CheckText("genre", genre); err != nil {
		return domain.TopArtists{}, err
	}
	if err := query.CheckSize("size", size, query.MaxRankingSize); err != nil {
		return domain.TopArtists{}, err
	}
	if err := query.CheckMinTracks(minTracks); err != nil {
		return domain.TopArtists{}, err
	}

	req := query.ArtistRanking(genre, minTracks, weighted)
	resp, err := c.search(ctx, req)
	if err != nil {
		return domain.TopArtists{}, err
	}

	top, err := shape.TopArtists(genre, resp, size, minTracks)
	if err != nil {
		return domain.TopArtists{}, malformed(req.Op, err)
	}
	c.logger.Debug("top artists",
		zap.String("genre", genre),
		zap.Int("returned", len(top.TopArtists)))
	return top, nil
}
