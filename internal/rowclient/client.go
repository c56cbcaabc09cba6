// Package rowclient talks to the row service over HTTP.
package rowclient

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

	"github.com/google/uuid"

	"mangaeditor/internal/config"
	"mangaeditor/internal/rows"
)

const defaultMaxResponseBytes = 32 << 20

// ErrResponseTooLarge is returned when a successful response body exceeds the
// client's size limit.
var ErrResponseTooLarge = errors.New("response too large")

// HTTPError is returned for any non-2xx answer.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Client calls the row service. Calls are never retried.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxResponse int64
}

// Option customizes a Client.
type Option func(*Client)

// WithMaxResponseBytes caps the size of a successful response body.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponse = n
		}
	}
}

// New builds a client for baseURL. timeout bounds every call, including
// calls whose context is never cancelled.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("rowclient: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("rowclient: base url %q must use http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		maxResponse: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [editor] section.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("rowclient: config is required")
	}
	return New(cfg.Editor.ServerURL, cfg.RequestTimeout())
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// ListRows fetches the full snapshot in storage shape. The payload is
// validated before it is returned; a malformed payload wraps rows.ErrInvalidRecords.
func (c *Client) ListRows(ctx context.Context) ([]rows.Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/rows", nil)
	if err != nil {
		return nil, err
	}
	return rows.DecodeRecords(body)
}

// Create stores a new row and returns its id.
func (c *Client) Create(ctx context.Context, draft rows.Draft) (int64, error) {
	body, err := c.do(ctx, http.MethodPost, "/rows", draft)
	if err != nil {
		return 0, err
	}
	var created rows.Created
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("decode create response: %w", err)
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("create response carried id %d", created.ID)
	}
	return created.ID, nil
}

// Health returns the service's reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return "", err
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return payload.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	tooLarge := int64(len(payload)) > c.maxResponse
	if tooLarge {
		payload = payload[:c.maxResponse]
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errPayload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(payload, &errPayload)
		msg := errPayload.Error
		if msg == "" {
			msg = strings.TrimSpace(string(payload))
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}
	if tooLarge {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", method, path, ErrResponseTooLarge, c.maxResponse)
	}
	return payload, nil
}
