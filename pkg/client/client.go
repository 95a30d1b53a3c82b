// Package client talks to the remote component-pattern API. Non-2xx
// responses are mapped onto the apierr taxonomy so callers can branch with
// errors.Is regardless of transport details.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/pkg/apierr"
	"github.com/m-kr/cms-nano/pkg/model"
)

const (
	resourcePattern = "component pattern"
	resourcePage    = "page"
)

// ErrUnexpectedStatus marks a response status outside the mapped taxonomy.
var ErrUnexpectedStatus = errors.New("client: unexpected status")

// Client is an HTTP client for the remote API. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client rooted at baseURL, e.g. http://localhost:3000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", base.Scheme)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListComponentPatterns fetches one page of pattern summaries.
func (c *Client) ListComponentPatterns(ctx context.Context, query model.ListQuery) (model.ListPage[model.ComponentPattern], error) {
	var out model.ListPage[model.ComponentPattern]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{"component-patterns"},
		query:    query.Values(),
		resource: resourcePattern,
	}, &out)
	return out, err
}

// GetComponentPattern fetches one pattern with its fields and fieldsets.
func (c *Client) GetComponentPattern(ctx context.Context, id string) (model.ComponentPattern, error) {
	var out model.ComponentPattern
	if err := requireID(id); err != nil {
		return out, err
	}
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{"component-patterns", id},
		resource: resourcePattern,
		id:       id,
	}, &out)
	return out, err
}

// ListFieldTypes fetches the field-type catalog.
func (c *Client) ListFieldTypes(ctx context.Context) ([]model.FieldTypeDescriptor, error) {
	var out []model.FieldTypeDescriptor
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{"field-types"},
		resource: "field types",
	}, &out)
	if err == nil && out == nil {
		out = []model.FieldTypeDescriptor{}
	}
	return out, err
}

// CreateComponentPattern submits data and returns the new identifier.
func (c *Client) CreateComponentPattern(ctx context.Context, data model.ComponentData) (string, error) {
	var id identifier
	err := c.do(ctx, request{
		method:   http.MethodPost,
		segments: []string{"component-patterns"},
		body:     data,
		resource: resourcePattern,
	}, &id)
	return string(id), err
}

// UpdateComponentPattern replaces pattern id with data and returns the
// stored resource.
func (c *Client) UpdateComponentPattern(ctx context.Context, id string, data model.ComponentData) (model.ComponentPattern, error) {
	var out model.ComponentPattern
	if err := requireID(id); err != nil {
		return out, err
	}
	err := c.do(ctx, request{
		method:   http.MethodPut,
		segments: []string{"component-patterns", id},
		body:     data,
		resource: resourcePattern,
		id:       id,
	}, &out)
	if err == nil && out.ID == "" {
		out.ID = id
	}
	return out, err
}

// DeleteComponentPattern deletes pattern id and returns the deleted
// identifier as echoed by the server.
func (c *Client) DeleteComponentPattern(ctx context.Context, id string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}
	var deleted identifier
	err := c.do(ctx, request{
		method:   http.MethodDelete,
		segments: []string{"component-patterns", id},
		resource: resourcePattern,
		id:       id,
	}, &deleted)
	if err == nil && deleted == "" {
		deleted = identifier(id)
	}
	return string(deleted), err
}

// ListPages fetches one page of the sibling pages listing.
func (c *Client) ListPages(ctx context.Context, query model.ListQuery) (model.ListPage[model.PageSummary], error) {
	var out model.ListPage[model.PageSummary]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{"pages"},
		query:    query.Values(),
		resource: resourcePage,
	}, &out)
	return out, err
}

type request struct {
	method   string
	segments []string
	query    url.Values
	body     any
	resource string
	id       string
}

func (c *Client) endpoint(req request) string {
	escaped := make([]string, len(req.segments))
	for i, segment := range req.segments {
		escaped[i] = url.PathEscape(segment)
	}
	target := c.base.JoinPath(escaped...)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}
	return target.String()
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("client: encode %s body: %w", req.resource, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.endpoint(req)
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s response: %w", req.resource, err)
	}

	c.logger.Debug("api request",
		zap.String("method", req.method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(req, resp, data)
	}
	data = bytes.TrimSpace(data)
	if out == nil || len(data) == 0 {
		return nil
	}
	if id, ok := out.(*identifier); ok && !json.Valid(data) {
		*id = identifier(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", req.resource, err)
	}
	return nil
}

func statusError(req request, resp *http.Response, body []byte) error {
	message := responseMessage(body)
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return &apierr.ValidationError{Message: message}
	case resp.StatusCode == http.StatusNotFound:
		return &apierr.NotFoundError{Resource: req.resource, ID: req.id}
	case resp.StatusCode == http.StatusUnauthorized && strings.Contains(strings.ToLower(message), "not exist"):
		// Older servers answer 401 for missing records.
		return &apierr.NotFoundError{Resource: req.resource, ID: req.id}
	case resp.StatusCode >= 500:
		return &apierr.PersistenceError{Op: req.method + " " + req.resource, Err: errors.New(message)}
	default:
		return fmt.Errorf("%w %s: %s", ErrUnexpectedStatus, resp.Status, message)
	}
}

// responseMessage extracts a human-readable message from an error body. The
// API answers with plain text, a JSON string or a JSON object carrying
// "error" or "message".
func responseMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty response"
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(trimmed)
}

// identifier decodes an id sent as a JSON string or as {"id": ...}. Bare
// text bodies are handled in do.
type identifier string

func (i *identifier) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*i = identifier(text)
		return nil
	}
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("client: decode identifier: %w", err)
	}
	*i = identifier(envelope.ID)
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apierr.Validation("id", "is required")
	}
	return nil
}
