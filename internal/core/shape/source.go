// Package shape turns raw engine hits and aggregation buckets into domain
// entities. Every parser is total over optional fields: absent text becomes
// "", absent numbers become 0. Track identity is the only mandatory field and
// falls back to the engine document id.
package shape

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

func sourceString(src map[string]any, key string) string {
	switch v := src[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func sourceInt(src map[string]any, key string) int {
	switch v := src[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
