package query

import (
	"regexp"
	"strings"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// Request bounds enforced before any engine call.
const (
	MaxSearchSize     = 100
	MaxTextSize       = 50 // phrase and fuzzy song search
	MaxSimilarSize    = 50
	MaxRankingSize    = 50
	MinCompareGenres  = 2
	MaxCompareGenres  = 10
	MinTrackThreshold = 1
	MaxTrackThreshold = 10

	DefaultMinTracks = 2
)

// CheckSize rejects sizes outside [1, max].
func CheckSize(field string, size, max int) error {
	if size < 1 || size > max {
		return domain.Invalid(field, "must be between 1 and %d, got %d", max, size)
	}
	return nil
}

// CheckText rejects blank required text parameters.
func CheckText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Invalid(field, "must not be empty")
	}
	return nil
}

// CheckGenres enforces the genre count bounds of a comparison and rejects
// blank names.
func CheckGenres(genres []string) error {
	if len(genres) < MinCompareGenres {
		return domain.Invalid("genres", "at least %d genres required for comparison, got %d", MinCompareGenres, len(genres))
	}
	if len(genres) > MaxCompareGenres {
		return domain.Invalid("genres", "maximum %d genres allowed, got %d", MaxCompareGenres, len(genres))
	}
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return domain.Invalid("genres", "genre names must not be empty")
		}
	}
	return nil
}

// CheckMinTracks enforces the bounds of the artist sample-size threshold.
func CheckMinTracks(n int) error {
	if n < MinTrackThreshold || n > MaxTrackThreshold {
		return domain.Invalid("min_tracks", "must be between %d and %d, got %d", MinTrackThreshold, MaxTrackThreshold, n)
	}
	return nil
}

var fuzzinessPattern = regexp.MustCompile(`^(AUTO(:\d+,\d+)?|[012])$`)

// CheckFuzziness accepts AUTO, AUTO:low,high and the edit distances 0 to 2.
// An empty value means AUTO.
func CheckFuzziness(fuzziness string) error {
	if fuzziness == "" || fuzzinessPattern.MatchString(strings.ToUpper(fuzziness)) {
		return nil
	}
	return domain.Invalid("fuzziness", "must be AUTO, AUTO:low,high or 0..2, got %q", fuzziness)
}
