package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FailureKind classifies a fetch failure. Readers above this layer absorb
// all three kinds into "no data available"; the kind exists so absorbed
// failures stay diagnosable in logs.
type FailureKind string

const (
	FailNetwork FailureKind = "network" // DNS, connect, timeout
	FailHTTP    FailureKind = "http"    // non-2xx status
	FailParse   FailureKind = "parse"   // 2xx with a malformed body
)

// FetchError is the only error type that crosses the fetch boundary.
type FetchError struct {
	Kind   FailureKind
	URL    string
	Status int // set for FailHTTP
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FailHTTP:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// DefaultTimeout applies when a provider does not specify its own.
const DefaultTimeout = 15 * time.Second

// Client issues JSON GET requests against a single provider. Every Client
// call is stateless; there are no retries at this layer.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a client with the given per-request timeout and
// User-Agent. An empty userAgent falls back to a generic one.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; companion/1.0)"
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get performs a GET request and returns the raw body. The caller must
// close the returned ReadCloser. All failures come back as *FetchError.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (io.ReadCloser, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FailNetwork, URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FailNetwork, URL: rawURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{Kind: FailHTTP, URL: rawURL, Status: resp.StatusCode}
	}

	return resp.Body, nil
}

// GetJSON performs a GET request and decodes the JSON response into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, dest any) error {
	body, err := c.Get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return &FetchError{Kind: FailNetwork, URL: rawURL, Err: err}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &FetchError{Kind: FailParse, URL: rawURL, Err: err}
	}
	return nil
}
