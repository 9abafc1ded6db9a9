// Package fetch reads record collections from the backend in a single request.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultTimeout = 10 * time.Second
	defaultMaxBody = 8 << 20
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
)

// Recorder observes completed fetches.
type Recorder interface {
	ObserveFetch(endpoint, outcome string, elapsed time.Duration)
}

// Endpoint names a backend collection. Name is a stable label, Path is joined
// to the client base URL.
type Endpoint struct {
	Name string
	Path string
}

// Client issues backend reads.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder
	validate   *validator.Validate
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default transport client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder reports fetch outcomes.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithMaxBody bounds the accepted payload size in bytes.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewClient constructs a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fetch: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
		validate:   validator.New(),
		maxBody:    defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Records performs exactly one GET of ep and decodes a JSON array of T.
// Every element is struct-validated. On failure no records are returned.
func Records[T any](ctx context.Context, c *Client, ep Endpoint) ([]T, error) {
	start := time.Now()
	records, err := fetchRecords[T](ctx, c, ep)
	elapsed := time.Since(start)

	outcome := OutcomeOK
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		outcome = OutcomeParseError
	case err != nil:
		outcome = OutcomeFetchError
	}
	if c.recorder != nil {
		c.recorder.ObserveFetch(ep.Name, outcome, elapsed)
	}
	c.logger.Debug("backend fetch",
		slog.String("endpoint", ep.Name),
		slog.String("outcome", outcome),
		slog.Int("records", len(records)),
		slog.Duration("elapsed", elapsed),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func fetchRecords[T any](ctx context.Context, c *Client, ep Endpoint) ([]T, error) {
	target := c.baseURL.JoinPath(ep.Path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: ep.Name, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: ep.Name, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Endpoint: ep.Name, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &FetchError{Endpoint: ep.Name, Status: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &ParseError{Endpoint: ep.Name, Err: errBodyTooLarge}
	}

	out, err := decodeArray[T](body)
	if err != nil {
		return nil, &ParseError{Endpoint: ep.Name, Err: err}
	}
	if err := validateAll(c.validate, out); err != nil {
		return nil, &ParseError{Endpoint: ep.Name, Err: err}
	}
	return out, nil
}

func decodeArray[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var out []T
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func validateAll[T any](v *validator.Validate, items []T) error {
	for i := range items {
		err := v.Struct(items[i])
		if err == nil {
			continue
		}
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return fmt.Errorf("record %d: %w", i, err)
	}
	return nil
}
