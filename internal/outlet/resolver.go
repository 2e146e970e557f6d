// Package outlet maps candidate article URLs to known publication outlets.
package outlet

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

// Creator is the slice of the store needed to lazily create missing
// outlets. Creation must be idempotent on the outlet's canonical URL.
type Creator interface {
	CreateOutlet(ctx context.Context, o model.Outlet) (int64, error)
}

// Resolver resolves article URLs to outlet IDs via domain-key substring
// matching. Populated once per run from the reference store.
type Resolver struct {
	byDomain map[string]int64
}

// NewResolver builds a resolver from the known outlet roster.
func NewResolver(outlets []model.Outlet) *Resolver {
	byDomain := make(map[string]int64, len(outlets))
	for _, o := range outlets {
		key := model.DomainKey(o.URL)
		if key == "" {
			continue
		}
		byDomain[key] = o.ID
	}
	return &Resolver{byDomain: byDomain}
}

// Resolve returns the ID of the outlet whose domain key is a substring of
// the lower-cased URL, or nil when no outlet matches. When several keys
// match (a section domain and its parent, say mlive.com/detroit and
// mlive.com), the longest key wins; equal lengths break lexicographically
// so resolution is deterministic.
func (r *Resolver) Resolve(rawURL string) *int64 {
	urlLower := strings.ToLower(rawURL)

	var (
		bestKey string
		bestID  int64
		found   bool
	)
	for key, id := range r.byDomain {
		if !strings.Contains(urlLower, key) {
			continue
		}
		if !found || len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey, bestID, found = key, id, true
		}
	}
	if !found {
		return nil
	}
	return &bestID
}

// Len returns the number of domain keys loaded.
func (r *Resolver) Len() int {
	return len(r.byDomain)
}

// Ensure makes sure the outlet exists in both the store and the in-memory
// mapping, returning its ID. A creation race with an existing record is
// treated as already-present, not an error.
func (r *Resolver) Ensure(ctx context.Context, creator Creator, o model.Outlet) (int64, error) {
	key := model.DomainKey(o.URL)
	if id, ok := r.byDomain[key]; ok {
		return id, nil
	}

	id, err := creator.CreateOutlet(ctx, o)
	if err != nil {
		return 0, err
	}
	r.byDomain[key] = id
	zap.L().Info("created missing outlet",
		zap.String("outlet", o.Name),
		zap.String("domain", key),
		zap.Int64("id", id),
	)
	return id, nil
}
