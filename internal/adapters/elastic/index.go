package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9/esapi"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

type object = query.Object

func textWithKeyword() object {
	return object{
		"type":     "text",
		"analyzer": "standard",
		"fields":   object{"keyword": object{"type": "keyword"}},
	}
}

// trackMapping is the index body for the track index. Titles, albums and
// artists are analyzed text with exact keyword subfields; the audio vector is
// an indexed cosine dense vector for KNN search.
func trackMapping() object {
	return object{
		"mappings": object{
			"properties": object{
				query.FieldTrackID:    object{"type": "keyword"},
				query.FieldArtists:    textWithKeyword(),
				query.FieldAlbumName:  textWithKeyword(),
				query.FieldTrackName:  textWithKeyword(),
				query.FieldPopularity: object{"type": "integer"},
				"duration_ms":         object{"type": "long"},
				"explicit":            object{"type": "boolean"},
				"danceability":        object{"type": "float"},
				"energy":              object{"type": "float"},
				"key":                 object{"type": "integer"},
				"loudness":            object{"type": "float"},
				"mode":                object{"type": "integer"},
				"speechiness":         object{"type": "float"},
				"acousticness":        object{"type": "float"},
				"instrumentalness":    object{"type": "float"},
				"liveness":            object{"type": "float"},
				"valence":             object{"type": "float"},
				"tempo":               object{"type": "float"},
				"time_signature":      object{"type": "integer"},
				query.FieldGenre:      object{"type": "keyword"},
				query.FieldAudioVector: object{
					"type":       "dense_vector",
					"dims":       domain.VectorDims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}

// Exists reports whether the index exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	const op = "index_exists"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Indices.Exists([]string{c.index},
			c.es.Indices.Exists.WithContext(ctx),
			c.es.Indices.Exists.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return false, err
	}

	switch {
	case r.status == http.StatusNotFound:
		return false, nil
	case r.ok():
		return true, nil
	default:
		return false, c.responseError(op, r)
	}
}

// Create creates the index with the track mapping.
func (c *Client) Create(ctx context.Context) error {
	const op = "index_create"
	body, err := json.Marshal(trackMapping())
	if err != nil {
		return fmt.Errorf("elastic adapter: encode mapping: %w", err)
	}

	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Indices.Create(c.index,
			c.es.Indices.Create.WithBody(bytes.NewReader(body)),
			c.es.Indices.Create.WithContext(ctx),
			c.es.Indices.Create.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return err
	}
	if !r.ok() {
		return c.responseError(op, r)
	}

	c.logger.Info("created index", zap.String("index", c.index))
	return nil
}

// Delete removes the index. Deleting a missing index is not an error.
func (c *Client) Delete(ctx context.Context) error {
	const op = "index_delete"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Indices.Delete([]string{c.index},
			c.es.Indices.Delete.WithContext(ctx),
			c.es.Indices.Delete.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return err
	}
	if !r.ok() && r.status != http.StatusNotFound {
		return c.responseError(op, r)
	}

	c.logger.Info("deleted index", zap.String("index", c.index))
	return nil
}

// Count refreshes the index and returns its document count.
func (c *Client) Count(ctx context.Context) (int, error) {
	if err := c.refresh(ctx); err != nil {
		return 0, err
	}

	const op = "count"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Count(
			c.es.Count.WithContext(ctx),
			c.es.Count.WithIndex(c.index),
			c.es.Count.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return 0, err
	}
	if !r.ok() {
		return 0, c.responseError(op, r)
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := decodeBody(op, r, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) refresh(ctx context.Context) error {
	const op = "index_refresh"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Indices.Refresh(
			c.es.Indices.Refresh.WithIndex(c.index),
			c.es.Indices.Refresh.WithContext(ctx),
			c.es.Indices.Refresh.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return err
	}
	if !r.ok() {
		return c.responseError(op, r)
	}
	return nil
}
