package query

import "encoding/json"

// Response is the subset of a search response the shapers read.
type Response struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    TotalHits `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []Hit     `json:"hits"`
}

// TotalHits is the engine's match count.
type TotalHits struct {
	Value    int    `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// Hit is one matched document. Score is nil for unscored queries.
type Hit struct {
	ID     string         `json:"_id"`
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

// Total returns the number of matching documents.
func (r Response) Total() int {
	return r.Hits.Total.Value
}

// Document is a single document fetched by identity.
type Document struct {
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source map[string]any `json:"_source"`
}

// ClusterInfo identifies the engine behind the index.
type ClusterInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}
