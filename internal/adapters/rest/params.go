package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// Query parameter defaults.
const (
	defaultAlbumsSize  = 50
	defaultTracksSize  = 20
	defaultTextSize    = 10
	defaultFilterSize  = 20
	defaultSimilarSize = 10
	defaultRankingSize = 10
)

// intParam reads an optional integer query parameter. Range checks are left
// to the service.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer, got %q", raw)
	}
	return n, nil
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Invalid(name, "must be a boolean, got %q", raw)
	}
	return b, nil
}

// listParam collects a repeated query parameter, as in
// genres=rock&genres=pop. Values are taken whole; a comma is part of the name.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
