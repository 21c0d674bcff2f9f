package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	rkerrors "github.com/taskmapper/reviewkit/errors"
)

// HTTPEndpoint executes operations against the review service over HTTP.
type HTTPEndpoint struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// HTTPOption configures an HTTPEndpoint.
type HTTPOption func(*HTTPEndpoint)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPEndpoint) {
		e.client = client
	}
}

// WithAPIKey sets the apiKey header sent with every request.
func WithAPIKey(key string) HTTPOption {
	return func(e *HTTPEndpoint) {
		e.apiKey = key
	}
}

// NewHTTPEndpoint creates an endpoint for the given API base URL.
func NewHTTPEndpoint(baseURL string, opts ...HTTPOption) *HTTPEndpoint {
	e := &HTTPEndpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the operation and returns the raw response body.
// Failures are classified: 401/403 as security errors, connection and
// 5xx failures as transient, the rest as permanent.
func (e *HTTPEndpoint) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	method := op.Method
	if method == "" {
		method = http.MethodGet
	}

	target := e.baseURL + "/" + ExpandRoute(op.Route, op.PathVars)
	if q := EncodeParams(op.Params); q != "" {
		target += "?" + q
	}

	var body io.Reader
	if op.Body != nil {
		encoded, err := json.Marshal(op.Body)
		if err != nil {
			return nil, rkerrors.Internal("encoding request body",
				rkerrors.WithCause(err), rkerrors.WithRoute(op.Route))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, rkerrors.InvalidInput("building request",
			rkerrors.WithCause(err), rkerrors.WithRoute(op.Route))
	}
	req.Header.Set("Accept", "application/json")
	if op.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("apiKey", e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Context errors keep their timeout/canceled classification.
			return nil, rkerrors.Wrap(ctx.Err(), "executing "+op.Route, rkerrors.WithRoute(op.Route))
		}
		return nil, rkerrors.WrapWithCode(err, rkerrors.ErrCodeNetworkErr,
			"executing "+op.Route, rkerrors.WithRoute(op.Route))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rkerrors.Network("reading response",
			rkerrors.WithCause(err), rkerrors.WithRoute(op.Route))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return payload, nil
	}
	return nil, classifyStatus(resp.StatusCode, op.Route)
}

// classifyStatus maps an HTTP status to the client error taxonomy.
func classifyStatus(status int, route string) error {
	msg := fmt.Sprintf("%s returned %d", route, status)
	switch {
	case status == http.StatusUnauthorized:
		return rkerrors.Unauthorized(msg, rkerrors.WithRoute(route))
	case status == http.StatusForbidden:
		return rkerrors.Forbidden(msg, rkerrors.WithRoute(route))
	case status == http.StatusNotFound:
		return rkerrors.NotFound(msg, rkerrors.WithRoute(route))
	case status >= 500:
		return rkerrors.New(rkerrors.ErrCodeUnavailable, msg, rkerrors.WithRoute(route))
	case status >= 400:
		return rkerrors.InvalidInput(msg, rkerrors.WithRoute(route))
	default:
		return rkerrors.Internal(msg, rkerrors.WithRoute(route))
	}
}
