package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinicdesk/pkg/apierror"
	"clinicdesk/prometheus"
)

// DefaultTimeout applies to every request unless overridden by configuration.
const DefaultTimeout = 10 * time.Second

// TokenSource provides the bearer token to attach to outgoing requests.
// An empty string means "no token" and the Authorization header is omitted.
type TokenSource func() string

// Client is a JSON-over-HTTP client for one backend. It attaches the bearer
// token and a request id to every call and maps failures onto the
// apierror taxonomy.
type Client struct {
	BaseURL    string
	Backend    string
	HTTPClient *http.Client
	Logger     *zap.Logger

	token TokenSource
}

// NewClient creates a client for the backend at baseURL. The backend name
// labels logs and metrics.
func NewClient(baseURL, backend string, timeout time.Duration, token TokenSource, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		BaseURL:    baseURL,
		Backend:    backend,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
		token:      token,
	}
}

// Do performs a single JSON request. The operation names the call for logs
// and metrics; body and out may be nil. Non-2xx responses and transport
// failures come back as *apierror.Error.
func (c *Client) Do(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	defer prometheus.TrackAPIRequest(c.Backend, operation)(time.Now())

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apierror.Wrap(err, apierror.CodeValidation, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apierror.Wrap(err, apierror.CodeNetwork, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		apiErr := c.transportError(err)
		prometheus.RecordAPIRequest(c.Backend, operation, 0)
		prometheus.RecordClientError(c.Backend, string(apiErr.Code))
		c.Logger.Warn("API request failed",
			zap.String("backend", c.Backend),
			zap.String("operation", operation),
			zap.Error(err))
		return apiErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Wrap(err, apierror.CodeNetwork, "failed to read response body")
	}

	prometheus.RecordAPIRequest(c.Backend, operation, resp.StatusCode)

	if resp.StatusCode >= 400 {
		apiErr := apierror.FromStatus(resp.StatusCode, errorMessage(respBody))
		prometheus.RecordClientError(c.Backend, string(apiErr.Code))
		c.Logger.Warn("API request returned error status",
			zap.String("backend", c.Backend),
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apierror.Wrap(err, apierror.CodeServer, "failed to decode response body")
		}
	}

	c.Logger.Debug("API request completed",
		zap.String("backend", c.Backend),
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode))
	return nil
}

// Get is shorthand for Do with method GET and no body.
func (c *Client) Get(ctx context.Context, operation, path string, query url.Values, out any) error {
	return c.Do(ctx, operation, http.MethodGet, path, query, nil, out)
}

// Post is shorthand for Do with method POST.
func (c *Client) Post(ctx context.Context, operation, path string, body, out any) error {
	return c.Do(ctx, operation, http.MethodPost, path, nil, body, out)
}

// Put is shorthand for Do with method PUT.
func (c *Client) Put(ctx context.Context, operation, path string, body, out any) error {
	return c.Do(ctx, operation, http.MethodPut, path, nil, body, out)
}

// Delete is shorthand for Do with method DELETE and no body.
func (c *Client) Delete(ctx context.Context, operation, path string) error {
	return c.Do(ctx, operation, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) transportError(err error) *apierror.Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apierror.Wrap(err, apierror.CodeTimeout, "request timed out")
	case errors.As(err, &netErr) && netErr.Timeout():
		return apierror.Wrap(err, apierror.CodeTimeout, "request timed out")
	default:
		return apierror.Wrap(err, apierror.CodeNetwork, fmt.Sprintf("could not reach %s backend", c.Backend))
	}
}

// errorMessage pulls a human-readable message out of a backend error body.
// Both backends answer with {"error": "..."} or {"message": "..."}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
