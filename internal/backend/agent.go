package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/pkg/anthropic"
)

// jsonArrayRe finds the first JSON array in the model's prose. The model
// is asked for bare JSON but sometimes wraps it in commentary.
var jsonArrayRe = regexp.MustCompile(`\[[\s\S]*\]`)

// Agent drives Claude's web-search tool through the configured outlet
// domains, one site-restricted search per domain. The most expensive and
// highest-precision backend.
type Agent struct {
	client      anthropic.Client
	model       string
	domains     []string
	perDomain   int
	maxTokens   int64
	searchDelay time.Duration
}

// AgentOption configures the agent backend.
type AgentOption func(*Agent)

// WithPerDomain caps articles requested per outlet domain.
func WithPerDomain(n int) AgentOption {
	return func(a *Agent) {
		a.perDomain = n
	}
}

// WithSearchDelay sets the pause between per-domain searches.
func WithSearchDelay(d time.Duration) AgentOption {
	return func(a *Agent) {
		a.searchDelay = d
	}
}

// WithMaxTokens sets the response token budget per search.
func WithMaxTokens(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxTokens = int64(n)
		}
	}
}

// NewAgent creates the agent-driven search backend over the given outlet
// domains.
func NewAgent(client anthropic.Client, model string, domains []string, opts ...AgentOption) *Agent {
	a := &Agent{
		client:      client,
		model:       model,
		domains:     domains,
		perDomain:   3,
		maxTokens:   4000,
		searchDelay: 2 * time.Second,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Name implements Backend.
func (a *Agent) Name() string { return "agent" }

// agentArticle is the JSON shape the prompt asks the model to return.
type agentArticle struct {
	Headline      string  `json:"headline"`
	URL           string  `json:"url"`
	PublishedDate *string `json:"published_date"`
	Excerpt       string  `json:"excerpt"`
}

// Search implements Backend. Per-domain failures are absorbed; the call
// errors only when every domain failed and nothing was found.
func (a *Agent) Search(ctx context.Context, orgName string, limit int) ([]Candidate, error) {
	var (
		candidates []Candidate
		lastErr    error
	)

	for i, domain := range a.domains {
		if limit > 0 && len(candidates) >= limit {
			break
		}
		if i > 0 && a.searchDelay > 0 {
			timer := time.NewTimer(a.searchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return candidates, eris.Wrap(ctx.Err(), "agent backend: canceled")
			case <-timer.C:
			}
		}

		found, err := a.searchDomain(ctx, orgName, domain)
		if err != nil {
			lastErr = err
			zap.L().Warn("agent domain search failed",
				zap.String("org", orgName),
				zap.String("domain", domain),
				zap.Error(err),
			)
			continue
		}
		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 && lastErr != nil {
		return nil, eris.Wrapf(lastErr, "agent backend: search %q", orgName)
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (a *Agent) searchDomain(ctx context.Context, orgName, domain string) ([]Candidate, error) {
	prompt := fmt.Sprintf(`Search for articles about %q on %s.

Find up to %d recent articles that mention this organization. For each article found, extract:
1. Article headline/title
2. Article URL
3. Publication date (if available)
4. Brief excerpt mentioning the organization (1-2 sentences max)

Return ONLY a JSON array with this structure:
[
  {
    "headline": "Article title",
    "url": "https://...",
    "published_date": "YYYY-MM-DD or null",
    "excerpt": "Brief excerpt..."
  }
]

If no articles found, return empty array: []`, orgName, domain, a.perDomain)

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		WebSearch: &anthropic.WebSearchTool{
			MaxUses:        5,
			AllowedDomains: []string{domain},
		},
	})
	if err != nil {
		return nil, err
	}

	return parseAgentArticles(resp.Text(), domain)
}

// parseAgentArticles extracts the first JSON array from the model output
// and converts it to candidates, dropping records whose URL violates the
// domain filter.
func parseAgentArticles(text, domain string) ([]Candidate, error) {
	raw := jsonArrayRe.FindString(text)
	if raw == "" {
		return nil, nil
	}

	var articles []agentArticle
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, eris.Wrap(err, "agent backend: unmarshal articles")
	}

	domainLower := strings.ToLower(domain)
	candidates := make([]Candidate, 0, len(articles))
	for _, art := range articles {
		if art.URL == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(art.URL), domainLower) {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:           art.URL,
			Headline:      art.Headline,
			PublishedDate: parseAgentDate(art.PublishedDate),
			Excerpt:       art.Excerpt,
		})
	}
	return candidates, nil
}

func parseAgentDate(s *string) *time.Time {
	if s == nil || *s == "" || strings.EqualFold(*s, "null") {
		return nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &d
}
