// Package wikimedia reads article and file metadata from the MediaWiki
// Action API and raw article bodies from index.php.
package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
)

const (
	DefaultAPIURL    = "https://en.wikipedia.org/w/api.php"
	DefaultRawURL    = "https://en.wikipedia.org/w/index.php"
	DefaultUserAgent = "VisualContentExtractor/1.0 (metadata extraction; set extraction.userAgent)"
)

// HTTPClient is the subset of *http.Client the adapter needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.MetadataSource against one wiki.
type Client struct {
	apiURL    string
	rawURL    string
	userAgent string
	batchSize int
	http      HTTPClient
	logger    *slog.Logger
}

var _ ports.MetadataSource = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h HTTPClient) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithAPIURL points the client at another api.php endpoint.
func WithAPIURL(u string) ClientOption {
	return func(c *Client) { c.apiURL = u }
}

// WithRawURL points the client at another index.php endpoint.
func WithRawURL(u string) ClientOption {
	return func(c *Client) { c.rawURL = u }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBatchSize lowers the number of titles per API call.
func WithBatchSize(n int) ClientOption {
	return func(c *Client) { c.batchSize = batch.Clamp(n) }
}

// WithLogger sets the logger used for per-item warnings.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client with one shared connection pool.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		apiURL:    DefaultAPIURL,
		rawURL:    DefaultRawURL,
		userAgent: DefaultUserAgent,
		batchSize: batch.MaxSize,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type envelope struct {
	Error    *apiError         `json:"error"`
	Continue map[string]string `json:"continue"`
	Query    json.RawMessage   `json:"query"`
}

// query runs one action=query call, decodes the "query" member into v and
// returns the continuation parameters, if any.
func (c *Client) query(ctx context.Context, params url.Values, v any) (map[string]string, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	resp, err := c.get(ctx, c.apiURL, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: api status %s", domain.ErrTransient, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode api response: %v", domain.ErrTransient, err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("%w: api error %s: %s", domain.ErrTransient, env.Error.Code, env.Error.Info)
	}
	if len(env.Query) == 0 {
		return env.Continue, nil
	}
	if err := json.Unmarshal(env.Query, v); err != nil {
		return nil, fmt.Errorf("%w: decode query: %v", domain.ErrTransient, err)
	}
	return env.Continue, nil
}

// raw fetches the source text of a page. A 404 means the page does not exist.
func (c *Client) raw(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "raw")
	params.Set("title", title)

	resp, err := c.get(ctx, c.rawURL, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", domain.ErrArticleNotFound, title)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: raw status %s for %s", domain.ErrTransient, resp.Status, title)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read raw body: %v", domain.ErrTransient, err)
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	return resp, nil
}
