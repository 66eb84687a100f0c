// Package api implements the REST adapter for the remote storefront API.
//
// All requests go through a single do() path that attaches auth, decodes
// heterogeneous response bodies and normalizes every failure into *Error
// before it reaches the stores. Endpoint methods then map wire payloads
// into entity types, so nothing above this package ever sees a raw
// server shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token for authenticated endpoints.
// An empty token means "not logged in" and is not an error.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront API. Construct it once and share it; it
// is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The request-id
// transport is layered on top of its transport.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
		tracer:  otel.Tracer("storefront/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpc.Transport = newRequestIDTransport(c.httpc.Transport)
	return c
}

// do issues a request and decodes a JSON success body into out (which may
// be nil when the body is irrelevant). Extra headers are optional.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, requiresAuth bool, header http.Header) error {
	raw, err := c.doRaw(ctx, method, endpoint, body, requiresAuth, header)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(ctx, method, endpoint, &Error{
			Message:    "unexpected response body from the storefront API",
			StatusCode: http.StatusInternalServerError,
			Data:       string(raw),
		})
	}
	return nil
}

// doRaw is the single request path: auth header, JSON content type,
// content-type aware body handling, error shaping. It returns the raw
// success body so callers with polymorphic responses can decode
// themselves.
func (c *Client) doRaw(ctx context.Context, method, endpoint string, body any, requiresAuth bool, header http.Header) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "storefront.api.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.endpoint", endpoint),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, c.failSpan(ctx, span, method, endpoint, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, c.failSpan(ctx, span, method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if requiresAuth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "token lookup failed, sending unauthenticated",
				"endpoint", endpoint, "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, c.failSpan(ctx, span, method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.failSpan(ctx, span, method, endpoint, err)
	}

	parsed, isJSON := parseBody(resp.Header.Get("Content-Type"), raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.failSpan(ctx, span, method, endpoint, &Error{
			Message:    errorMessage(parsed, isJSON),
			StatusCode: resp.StatusCode,
			Data:       parsed,
		})
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return raw, nil
}

// parseBody decodes the body as JSON when the content type says so, and
// otherwise still attempts a JSON parse, keeping the raw text when that
// fails. The bool reports whether the result is parsed JSON.
func parseBody(contentType string, raw []byte) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v any
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true
		}
		return string(raw), false
	}
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, true
	}
	return string(raw), false
}

// errorMessage pulls the server's message field out of a parsed error
// body, falling back to a generic phrase.
func errorMessage(parsed any, isJSON bool) string {
	if isJSON {
		if m, ok := parsed.(map[string]any); ok {
			if msg, ok := m["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return genericErrorMessage
}

// fail normalizes and logs a terminal error. Every error this package
// returns passes through here or failSpan.
func (c *Client) fail(ctx context.Context, method, endpoint string, err error) *Error {
	apiErr := normalizeError(err)
	c.logger.ErrorContext(ctx, "storefront API request failed",
		"method", method,
		"endpoint", endpoint,
		"status_code", apiErr.StatusCode,
		"error", apiErr.Message,
	)
	return apiErr
}

func (c *Client) failSpan(ctx context.Context, span trace.Span, method, endpoint string, err error) *Error {
	apiErr := c.fail(ctx, method, endpoint, err)
	span.RecordError(apiErr)
	span.SetStatus(codes.Error, apiErr.Message)
	return apiErr
}
