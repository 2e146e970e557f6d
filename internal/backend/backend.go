// Package backend defines the uniform search-backend interface and the
// adapters that normalize each provider into candidate mention records.
package backend

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrQuotaExhausted signals that a backend's usage allowance for the run
// is spent. The orchestrator halts cleanly and preserves the resumption
// offset; the adapter is not retried.
var ErrQuotaExhausted = eris.New("backend: search quota exhausted")

// Candidate is an unvalidated, unattributed article reference returned by
// a backend.
type Candidate struct {
	URL           string
	Headline      string
	PublishedDate *time.Time
	Excerpt       string
}

// Backend is a search provider consulted for candidate mentions. Search
// applies provider-specific retry internally; a returned error other than
// ErrQuotaExhausted is absorbed by the caller as "zero results, one error
// counted", never as a run abort.
type Backend interface {
	Name() string
	Search(ctx context.Context, orgName string, limit int) ([]Candidate, error)
}
