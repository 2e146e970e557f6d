// Package gdelt provides a client for the GDELT DOC 2.0 full-text news
// archive API.
package gdelt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/Planet-Detroit/ecocensus/internal/resilience"
)

const defaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// Client performs GDELT DOC API operations.
type Client interface {
	// ArticleList searches the archive and returns matching articles,
	// newest first. Rate limiting (HTTP 429) is retried internally with
	// linear backoff; other failures are returned to the caller.
	ArticleList(ctx context.Context, query string, maxRecords int) ([]Article, error)
}

// Article is a single result from an ArtList query.
type Article struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	SeenDate      string `json:"seendate"`
	Domain        string `json:"domain"`
	SourceCountry string `json:"sourcecountry"`
}

// PublishedDate parses the article's seendate (YYYYMMDDHHMMSS) into a
// calendar date, dropping the time component. Returns nil when the field
// is missing or malformed.
func (a Article) PublishedDate() *time.Time {
	if len(a.SeenDate) < 8 {
		return nil
	}
	d, err := time.Parse("20060102", a.SeenDate[:8])
	if err != nil {
		return nil
	}
	return &d
}

type articleListResponse struct {
	Articles []Article `json:"articles"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the rate-limit retry policy (shorter backoff in tests).
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithRateLimit sets the client-side politeness limit in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
	limiter *rate.Limiter
}

// NewClient creates a GDELT DOC API client. GDELT needs no credential but
// throttles aggressive callers, so the client ships with a one-request-
// per-second politeness limit and a linear 429 backoff (10s, 20s, ... over
// five attempts).
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry:   resilience.RateLimitRetry(10 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ArticleList(ctx context.Context, query string, maxRecords int) ([]Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gdelt: rate limiter")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("mode", "ArtList")
	params.Set("maxrecords", strconv.Itoa(maxRecords))
	params.Set("format", "json")
	params.Set("sort", "DateDesc")
	reqURL := c.baseURL + "?" + params.Encode()

	c.retry.OnRetry = resilience.RetryLogger("gdelt", "article_list")
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Article, error) {
		return c.articleList(ctx, reqURL)
	})
}

func (c *httpClient) articleList(ctx context.Context, reqURL string) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "gdelt: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "gdelt: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "gdelt: read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, resilience.NewTransientError(
			eris.New("gdelt: rate limited"), http.StatusTooManyRequests)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("gdelt: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	// GDELT returns an empty body (not an empty JSON object) when a query
	// matches nothing.
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	var result articleListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "gdelt: unmarshal response")
	}

	return result.Articles, nil
}
