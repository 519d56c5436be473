// Package elastic adapts Elasticsearch to the search engine and track index
// ports.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/tracklens/internal/config"
	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/ports"
	"github.com/ewilliams-labs/tracklens/internal/core/query"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

// Client talks to one Elasticsearch index.
type Client struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// compile-time interface assertions
var (
	_ ports.SearchEngine = (*Client)(nil)
	_ ports.TrackIndex   = (*Client)(nil)
)

// NewClient builds a Client from cfg. It does not contact the engine.
func NewClient(cfg config.EngineConfig, logger *zap.Logger, rec *metrics.Recorder) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("elastic")

	esCfg := elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		APIKey:        cfg.APIKey,
		RetryOnStatus: retryStatuses,
		MaxRetries:    cfg.MaxRetries,
		DisableRetry:  cfg.MaxRetries == 0,
		RetryBackoff:  retryBackoff(cfg.RetryBackoff),
		Transport:     transport(cfg.BearerToken),
		Logger:        roundTripLogger{logger: logger},
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elastic adapter: create client: %w", err)
	}

	return &Client{
		es:      es,
		index:   cfg.Index,
		timeout: cfg.RequestTimeout,
		logger:  logger,
		metrics: rec,
	}, nil
}

// transport authenticates every request with a static bearer token when one
// is configured.
func transport(bearerToken string) http.RoundTripper {
	if bearerToken == "" {
		return http.DefaultTransport
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: bearerToken,
			TokenType:   "Bearer",
		}),
		Base: http.DefaultTransport,
	}
}

// Name returns the index this client reads and writes.
func (c *Client) Name() string {
	return c.index
}

// reply is a fully read engine response.
type reply struct {
	status int
	body   []byte
}

func (r reply) ok() bool {
	return r.status < http.StatusMultipleChoices
}

// perform runs one engine call under the configured request timeout, reads
// the whole body and records the call's outcome. Only transport failures are
// returned as errors; error statuses are left to the caller.
func (c *Client) perform(ctx context.Context, op string, call func(ctx context.Context, opaqueID string) (*esapi.Response, error)) (reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opaqueID := uuid.NewString()
	start := time.Now()
	res, err := call(ctx, opaqueID)
	if err != nil {
		c.metrics.ObserveEngine(op, metrics.OutcomeError, time.Since(start))
		c.logger.Error("engine request failed",
			zap.String("operation", op),
			zap.String("opaque_id", opaqueID),
			zap.Error(err))
		return reply{}, &domain.UpstreamError{Op: "elastic adapter: " + op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		c.metrics.ObserveEngine(op, metrics.OutcomeError, time.Since(start))
		return reply{}, &domain.UpstreamError{Op: "elastic adapter: " + op, Status: res.StatusCode, Err: err}
	}

	outcome := metrics.OutcomeOK
	switch {
	case res.StatusCode == http.StatusNotFound:
		outcome = metrics.OutcomeNotFound
	case res.IsError():
		outcome = metrics.OutcomeError
	}
	c.metrics.ObserveEngine(op, outcome, time.Since(start))

	return reply{status: res.StatusCode, body: body}, nil
}

type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Status int             `json:"status"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// decodeError reads an engine error body. The error field is either an
// object with type and reason or a bare string.
func decodeError(body []byte) (errorCause, bool) {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return errorCause{}, false
	}
	var cause errorCause
	if err := json.Unmarshal(env.Error, &cause); err == nil {
		return cause, true
	}
	var reason string
	if err := json.Unmarshal(env.Error, &reason); err == nil {
		return errorCause{Reason: reason}, true
	}
	return errorCause{}, false
}

func (c *Client) responseError(op string, r reply) error {
	e := &domain.UpstreamError{Op: "elastic adapter: " + op, Status: r.status}
	if cause, ok := decodeError(r.body); ok {
		e.Type = cause.Type
		e.Reason = cause.Reason
	}
	c.logger.Error("engine returned an error",
		zap.String("operation", op),
		zap.Int("status", e.Status),
		zap.String("type", e.Type),
		zap.String("reason", e.Reason))
	return e
}

func decodeBody(op string, r reply, out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return &domain.UpstreamError{
			Op:     "elastic adapter: " + op,
			Status: r.status,
			Type:   "malformed_response",
			Reason: err.Error(),
		}
	}
	return nil
}

// Search executes req against the index.
func (c *Client) Search(ctx context.Context, req query.Request) (query.Response, error) {
	op := req.Op
	if op == "" {
		op = "search"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return query.Response{}, fmt.Errorf("elastic adapter: encode %s: %w", op, err)
	}

	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(c.index),
			c.es.Search.WithBody(bytes.NewReader(body)),
			c.es.Search.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return query.Response{}, err
	}
	if !r.ok() {
		return query.Response{}, c.responseError(op, r)
	}

	var resp query.Response
	if err := decodeBody(op, r, &resp); err != nil {
		return query.Response{}, err
	}
	return resp, nil
}

// GetDocument fetches one track by id. A missing document yields
// domain.ErrNotFound; a missing index is an upstream failure.
func (c *Client) GetDocument(ctx context.Context, id string) (query.Document, error) {
	const op = "get"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Get(c.index, id,
			c.es.Get.WithContext(ctx),
			c.es.Get.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return query.Document{}, err
	}

	if r.status == http.StatusNotFound {
		if _, isErr := decodeError(r.body); isErr {
			return query.Document{}, c.responseError(op, r)
		}
		return query.Document{}, fmt.Errorf("elastic adapter: document %q: %w", id, domain.ErrNotFound)
	}
	if !r.ok() {
		return query.Document{}, c.responseError(op, r)
	}

	var doc query.Document
	if err := decodeBody(op, r, &doc); err != nil {
		return query.Document{}, err
	}
	if !doc.Found {
		return query.Document{}, fmt.Errorf("elastic adapter: document %q: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// Info returns the cluster identity.
func (c *Client) Info(ctx context.Context) (query.ClusterInfo, error) {
	const op = "info"
	r, err := c.perform(ctx, op, func(ctx context.Context, opaqueID string) (*esapi.Response, error) {
		return c.es.Info(
			c.es.Info.WithContext(ctx),
			c.es.Info.WithOpaqueID(opaqueID),
		)
	})
	if err != nil {
		return query.ClusterInfo{}, err
	}
	if !r.ok() {
		return query.ClusterInfo{}, c.responseError(op, r)
	}

	var info query.ClusterInfo
	if err := decodeBody(op, r, &info); err != nil {
		return query.ClusterInfo{}, err
	}
	return info, nil
}
