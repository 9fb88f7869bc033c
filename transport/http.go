package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/graphkit/graphkit/auth"
	"github.com/graphkit/graphkit/config"
	"github.com/graphkit/graphkit/graph"
	"github.com/graphkit/graphkit/observe"
	"github.com/graphkit/graphkit/recovery"
)

// Invalidator is told when the backend rejects a credential, so the host
// can drop or refresh its stored token.
type Invalidator interface {
	InvalidateCredential(cred *auth.Credential)
}

// Config configures the HTTP transport.
type Config struct {
	Settings config.Provider

	// Client is the HTTP client to use. If nil, a default client with
	// 30s timeout is used.
	Client *http.Client

	// Recovery retries recoverable failures for requests whose flags
	// permit it. Nil disables recovery entirely.
	Recovery *recovery.Processor

	// Invalidator is notified of auth errors, except for requests flagged
	// FlagNoInvalidateOnAuthError. Optional.
	Invalidator Invalidator

	Tracer  observe.Tracer
	Metrics observe.Metrics
	Logger  observe.Logger
}

// HTTPTransport executes Graph requests over HTTP.
type HTTPTransport struct {
	cfg Config
}

// New creates an HTTP transport with defaults applied.
func New(cfg Config) *HTTPTransport {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observe.NopTracer()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	cfg.Logger = cfg.Logger.WithCategory(observe.CategoryRequest)
	return &HTTPTransport{cfg: cfg}
}

// Execute runs req against the Graph backend. Backend-reported failures
// come back as *graph.APIError; recoverable ones are retried when the
// request's flags allow it.
func (t *HTTPTransport) Execute(ctx context.Context, req *graph.Request) (json.RawMessage, error) {
	meta := observe.RequestMeta{
		Endpoint: req.Path().String(),
		Method:   string(req.Method()),
		Version:  req.Version(),
	}
	ctx, span := t.cfg.Tracer.StartSpan(ctx, meta)
	start := time.Now()

	var raw json.RawMessage
	op := func(ctx context.Context) error {
		result, err := t.do(ctx, req)
		if err == nil {
			raw = result
		}
		return err
	}

	var err error
	if t.cfg.Recovery != nil {
		err = t.cfg.Recovery.Execute(ctx, req, op)
	} else {
		err = op(ctx)
	}

	t.cfg.Metrics.RecordRequest(ctx, meta.Endpoint, meta.Method, time.Since(start), err)
	t.cfg.Tracer.EndSpan(span, err)

	if err != nil {
		t.handleAuthError(req, err)
		t.cfg.Logger.Warn(ctx, "graph request failed",
			observe.Field{Key: "endpoint", Value: meta.Endpoint},
			observe.Field{Key: "method", Value: meta.Method},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}
	return raw, nil
}

// handleAuthError forwards credential invalidation unless the request
// opted out.
func (t *HTTPTransport) handleAuthError(req *graph.Request, err error) {
	if t.cfg.Invalidator == nil || req.Flags().Has(graph.FlagNoInvalidateOnAuthError) {
		return
	}
	if apiErr, ok := asAPIError(err); ok && apiErr.IsAuthError() {
		t.cfg.Invalidator.InvalidateCredential(req.Credential())
	}
}

// do performs a single HTTP exchange.
func (t *HTTPTransport) do(ctx context.Context, req *graph.Request) (json.RawMessage, error) {
	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := t.cfg.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport: executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: reading response: %w", err)
	}

	if apiErr, ok := decodeErrorEnvelope(body, resp.StatusCode); ok {
		return nil, apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transport: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, req *graph.Request) (*http.Request, error) {
	settings := t.cfg.Settings().Normalize()
	endpoint := &url.URL{
		Scheme: "https",
		Host:   settings.GraphDomain,
		Path:   "/" + settings.APIVersion + "/" + req.Path().String(),
	}
	if req.Version() != "" {
		endpoint.Path = "/" + req.Version() + "/" + req.Path().String()
	}

	switch req.Method() {
	case graph.MethodGet, graph.MethodDelete:
		values, err := encodeQuery(req)
		if err != nil {
			return nil, err
		}
		endpoint.RawQuery = values.Encode()
		return http.NewRequestWithContext(ctx, string(req.Method()), endpoint.String(), nil)

	case graph.MethodPost:
		if req.HasAttachments() {
			body, contentType, err := encodeMultipart(req)
			if err != nil {
				return nil, err
			}
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
			if err != nil {
				return nil, err
			}
			httpReq.Header.Set("Content-Type", contentType)
			return httpReq, nil
		}

		values, err := encodeQuery(req)
		if err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(),
			strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return httpReq, nil

	default:
		return nil, fmt.Errorf("transport: unsupported method %q", req.Method())
	}
}

// errorEnvelope is the backend's error response shape.
type errorEnvelope struct {
	Error *graph.APIError `json:"error"`
}

// decodeErrorEnvelope extracts a backend error from the response body.
func decodeErrorEnvelope(body []byte, status int) (*graph.APIError, bool) {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil, false
	}
	envelope.Error.HTTPStatus = status
	return envelope.Error, true
}

func asAPIError(err error) (*graph.APIError, bool) {
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

var _ graph.Transport = (*HTTPTransport)(nil)
