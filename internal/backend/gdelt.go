package backend

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/pkg/gdelt"
)

// GDELT searches the GDELT DOC 2.0 global news archive. Free, no
// credential, but rate-limits aggressive callers; the underlying client
// retries 429s with linear backoff before giving up.
type GDELT struct {
	client       gdelt.Client
	queryContext string
}

// NewGDELT creates the archive-search backend. queryContext is appended
// to the quoted organization name to keep results regional (e.g.
// "Michigan").
func NewGDELT(client gdelt.Client, queryContext string) *GDELT {
	return &GDELT{client: client, queryContext: queryContext}
}

// Name implements Backend.
func (g *GDELT) Name() string { return "gdelt" }

// Search implements Backend.
func (g *GDELT) Search(ctx context.Context, orgName string, limit int) ([]Candidate, error) {
	query := `"` + orgName + `"`
	if g.queryContext != "" {
		query += " " + g.queryContext
	}

	articles, err := g.client.ArticleList(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "gdelt backend: search %q", orgName)
	}

	candidates := make([]Candidate, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:           a.URL,
			Headline:      a.Title,
			PublishedDate: a.PublishedDate(),
			Excerpt:       a.Title,
		})
	}

	zap.L().Debug("gdelt search complete",
		zap.String("org", orgName),
		zap.Int("articles", len(articles)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}
