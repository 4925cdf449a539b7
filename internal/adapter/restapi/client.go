// Package restapi is the client of the storefront REST backend.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/retry"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10

	RequestIDHeader = "X-Request-ID"
)

// An APIError is a non-2xx backend response.
//
// A 404 matches [domain.ErrNotFound].
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

// StatusCode reports the backend response status.
func (e *APIError) StatusCode() int {
	return e.Status
}

// PublicMessage is the backend message safe to show to the admin.
func (e *APIError) PublicMessage() string {
	return e.Message
}

type ClientOpt func(*Client) error

func HTTPClientOpt(hc *http.Client) ClientOpt {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		c.hc = hc
		return nil
	}
}

// RetryOpt sets the retry policy of idempotent requests.
func RetryOpt(cfg retry.RetryConfig) ClientOpt {
	return func(c *Client) error {
		c.retry = cfg
		return nil
	}
}

// A Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
	retry   retry.RetryConfig
}

func NewClient(baseURL string, opts ...ClientOpt) (Client, error) {
	const op = "restapi.NewClient"

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Client{}, fmt.Errorf("%s: unsupported base url %q", op, baseURL)
	}

	c := Client{
		baseURL: u,
		hc:      &http.Client{Timeout: defaultTimeout},
		retry: retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(100 * time.Millisecond),
		},
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	c.retry.ShouldRetry = retryable
	c.retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		slog.Warn("retrying backend request",
			"op", op, "attempt", attempt, "wait", wait, "err", err,
		)
	}
	return c, nil
}

// retryable reports transport failures and 5xx responses.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	var netErr net.Error
	var urlErr *url.Error
	return errors.As(err, &netErr) || errors.As(err, &urlErr)
}

func (c Client) get(
	ctx context.Context, path string, query url.Values,
) ([]byte, error) {
	return retry.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, query, nil)
	})
}

func (c Client) send(
	ctx context.Context, method, path string, body any,
) ([]byte, error) {
	return c.do(ctx, method, path, nil, body)
}

func (c Client) do(
	ctx context.Context, method, path string, query url.Values, body any,
) ([]byte, error) {
	const op = "Client.do"
	requestID := uuid.NewString()
	log := slog.With("op", op, "method", method, "path", path, "requestID", requestID)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("backend responded", "status", res.StatusCode, "took", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", op, decodeAPIError(res.StatusCode, data))
	}
	return data, nil
}

func decodeAPIError(status int, data []byte) *APIError {
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	var body struct {
		Error   flexString `json:"error"`
		Message flexString `json:"message"`
	}
	_ = json.Unmarshal(data, &body)

	msg := firstNonEmpty(string(body.Error), string(body.Message))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
