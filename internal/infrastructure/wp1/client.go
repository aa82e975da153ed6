// Package wp1 reads WikiProject listings from the Wikipedia 1.0 API.
package wp1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
)

const (
	DefaultBaseURL = "https://api.wp1.openzim.org/v1"
	// RowsPerPage is the listing page size the service accepts.
	RowsPerPage = 500
)

// HTTPClient is the subset of *http.Client the adapter needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.ProjectDirectory.
type Client struct {
	baseURL   string
	userAgent string
	http      HTTPClient
}

var _ ports.ProjectDirectory = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h HTTPClient) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithBaseURL points the client at another WP1 deployment.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a WP1 client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type projectEntry struct {
	Name string `json:"name"`
}

// Projects lists the names of every WikiProject the service knows.
func (c *Client) Projects(ctx context.Context) ([]string, error) {
	var entries []projectEntry
	if err := c.getJSON(ctx, "/projects/", nil, &entries); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

type articlesResponse struct {
	Pagination struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
	Articles []struct {
		Article     string `json:"article"`
		ArticleLink string `json:"article_link"`
		Quality     string `json:"quality"`
		Importance  string `json:"importance"`
	} `json:"articles"`
}

// ProjectArticles fetches one 1-based page of a project's article listing.
func (c *Client) ProjectArticles(ctx context.Context, project string, page int) (batch.Page[ports.ProjectArticle], error) {
	params := url.Values{}
	params.Set("numRows", strconv.Itoa(RowsPerPage))
	params.Set("page", strconv.Itoa(page))

	var resp articlesResponse
	path := "/projects/" + url.PathEscape(project) + "/articles"
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		return batch.Page[ports.ProjectArticle]{}, fmt.Errorf("list articles of %s: %w", project, err)
	}

	number := page
	if resp.Pagination.Page > 0 {
		number = resp.Pagination.Page
	}
	out := batch.Page[ports.ProjectArticle]{
		Number:     number,
		TotalPages: resp.Pagination.TotalPages,
		Items:      make([]ports.ProjectArticle, 0, len(resp.Articles)),
	}
	for _, a := range resp.Articles {
		out.Items = append(out.Items, ports.ProjectArticle{
			Article:     a.Article,
			ArticleLink: a.ArticleLink,
			Quality:     a.Quality,
			Importance:  a.Importance,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", domain.ErrTransient, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrTransient, err)
	}
	return nil
}
