package backend

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/pkg/google"
)

// Google searches the web via the Custom Search JSON API. The free tier
// allows 100 queries per day; the adapter tracks spend and converts both
// the local budget and the API's quota response into a run-level stop.
type Google struct {
	client       google.Client
	queryContext string
	dailyQuota   int64
	used         atomic.Int64
	siteFilter   string
}

// GoogleOption configures the Google backend.
type GoogleOption func(*Google)

// WithSiteFilter restricts results to URLs containing the given domain.
// Violating results are dropped, never surfaced.
func WithSiteFilter(domain string) GoogleOption {
	return func(g *Google) {
		g.siteFilter = strings.ToLower(domain)
	}
}

// WithDailyQuota overrides the query budget (0 disables local tracking).
func WithDailyQuota(n int64) GoogleOption {
	return func(g *Google) {
		g.dailyQuota = n
	}
}

// NewGoogle creates the web-search backend.
func NewGoogle(client google.Client, queryContext string, opts ...GoogleOption) *Google {
	g := &Google{
		client:       client,
		queryContext: queryContext,
		dailyQuota:   100,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Name implements Backend.
func (g *Google) Name() string { return "google" }

// QueriesUsed returns the number of queries spent so far.
func (g *Google) QueriesUsed() int64 { return g.used.Load() }

// Search implements Backend.
func (g *Google) Search(ctx context.Context, orgName string, limit int) ([]Candidate, error) {
	if g.dailyQuota > 0 && g.used.Load() >= g.dailyQuota {
		return nil, eris.Wrap(ErrQuotaExhausted, "google backend: daily budget spent")
	}

	query := `"` + orgName + `"`
	if g.queryContext != "" {
		query += " " + g.queryContext
	}

	results, err := g.client.Search(ctx, query, limit)
	g.used.Add(1)
	if err != nil {
		if eris.Is(err, google.ErrQuotaExceeded) {
			return nil, eris.Wrap(ErrQuotaExhausted, "google backend: api quota")
		}
		return nil, eris.Wrapf(err, "google backend: search %q", orgName)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r.Link == "" {
			continue
		}
		if g.siteFilter != "" && !strings.Contains(strings.ToLower(r.Link), g.siteFilter) {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:      r.Link,
			Headline: r.Title,
			Excerpt:  r.Snippet,
		})
	}

	zap.L().Debug("google search complete",
		zap.String("org", orgName),
		zap.Int("results", len(results)),
		zap.Int("candidates", len(candidates)),
		zap.Int64("queries_used", g.used.Load()),
	)
	return candidates, nil
}
