package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

// Stage sizes of the smart resolver.
const (
	resolverPhraseSize  = 10
	resolverPartialSize = 20
	resolverFuzzySize   = 10
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "this": {}, "that": {},
}

// keywords lowercases title, splits it on whitespace and drops stop words.
func keywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// SmartSongSearch resolves a free-text title by trying, in order, an exact
// phrase match, a partial match on the title's keywords, and a fuzzy match on
// each keyword alone. The first stage with any hit wins. When every stage
// comes back empty the result is empty with status no_matches; that is not
// an error. Engine errors abort the chain.
func (c *Catalog) SmartSongSearch(ctx context.Context, title string) (domain.SearchResult, error) {
	if err := query.CheckText("song", title); err != nil {
		return domain.SearchResult{}, err
	}

	res, err := c.phrase(ctx, title, resolverPhraseSize)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if res.TotalTracks > 0 {
		c.metrics.ResolverOutcome(domain.SearchTypePhrase)
		return res, nil
	}

	words := keywords(title)
	if len(words) > 0 {
		res, err = c.partial(ctx, strings.Join(words, " "), resolverPartialSize)
		if err != nil {
			return domain.SearchResult{}, err
		}
		if res.TotalTracks > 0 {
			c.metrics.ResolverOutcome(domain.SearchTypePartial)
			return res, nil
		}

		for _, w := range words {
			res, err = c.fuzzy(ctx, w, query.FuzzinessAuto, resolverFuzzySize)
			if err != nil {
				return domain.SearchResult{}, err
			}
			if res.TotalTracks > 0 {
				c.metrics.ResolverOutcome(domain.SearchTypeFuzzy)
				return res, nil
			}
		}
	}

	c.metrics.ResolverOutcome(domain.StatusNoMatches)
	c.logger.Info("no matches with any strategy",
		zap.String("query", title),
		zap.Strings("keywords", words))
	return domain.SearchResult{
		TotalTracks: 0,
		Results:     []domain.Track{},
		Filters: domain.Filters{
			"search_type": domain.SearchTypeSmart,
			"query":       title,
			"status":      domain.StatusNoMatches,
		},
	}, nil
}
