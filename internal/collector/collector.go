// Package collector orchestrates a media-mention collection run: load
// reference data, walk the organization batch, consult each configured
// search backend, deduplicate, attribute, and persist.
package collector

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Planet-Detroit/ecocensus/internal/backend"
	"github.com/Planet-Detroit/ecocensus/internal/dedup"
	"github.com/Planet-Detroit/ecocensus/internal/model"
	"github.com/Planet-Detroit/ecocensus/internal/outlet"
	"github.com/Planet-Detroit/ecocensus/internal/store"
)

// Outcome describes how a run ended.
type Outcome int

const (
	// OutcomeDone means every selected organization was processed.
	OutcomeDone Outcome = iota
	// OutcomeHalted means a backend's quota ran out mid-batch; the run
	// stopped cleanly and NextOffset marks where to resume.
	OutcomeHalted
	// OutcomeEmpty means the selection matched no organizations.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeHalted:
		return "halted"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Result summarizes a finished run.
type Result struct {
	Outcome Outcome
	Stats   Snapshot
	// NextOffset is the organization offset to resume from after a halt.
	// Re-running from it is safe: deduplication makes inserts idempotent.
	NextOffset int
}

// Selection chooses which organizations a run processes.
type Selection struct {
	Limit  int
	Offset int
	// PrioritizeEIN keeps only organizations with a tax registration
	// identifier, ordered by name.
	PrioritizeEIN bool
}

// Collector runs the collection pipeline against a store with one or more
// search backends.
type Collector struct {
	store    store.Store
	backends []backend.Backend

	perBackendLimit int
	backendDelay    time.Duration
	orgDelay        time.Duration
	progress        io.Writer
}

// Option configures a Collector.
type Option func(*Collector)

// WithPerBackendLimit caps the candidates requested from each backend per
// organization.
func WithPerBackendLimit(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.perBackendLimit = n
		}
	}
}

// WithDelays sets the courtesy pauses between backend calls and between
// organizations. Zero disables a pause.
func WithDelays(backendDelay, orgDelay time.Duration) Option {
	return func(c *Collector) {
		c.backendDelay = backendDelay
		c.orgDelay = orgDelay
	}
}

// WithProgress directs per-organization progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(c *Collector) {
		if w != nil {
			c.progress = w
		}
	}
}

// New creates a Collector.
func New(st store.Store, backends []backend.Backend, opts ...Option) *Collector {
	c := &Collector{
		store:           st,
		backends:        backends,
		perBackendLimit: 10,
		backendDelay:    1 * time.Second,
		orgDelay:        3 * time.Second,
		progress:        io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes a collection pass over the selected organizations.
// Backend and persistence failures are absorbed and counted; only quota
// exhaustion, context cancellation, or a reference-data load failure end
// the run early.
func (c *Collector) Run(ctx context.Context, sel Selection) (*Result, error) {
	log := zap.L()
	stats := &Stats{}

	var (
		resolver *outlet.Resolver
		global   *dedup.Ledger
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outlets, err := c.store.ListOutlets(gctx)
		if err != nil {
			return eris.Wrap(err, "collector: load outlets")
		}
		resolver = outlet.NewResolver(outlets)
		return nil
	})
	g.Go(func() error {
		urls, err := c.store.ListMentionURLs(gctx)
		if err != nil {
			return eris.Wrap(err, "collector: load mention history")
		}
		global = dedup.NewLedgerFrom(urls)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("collector: reference data loaded",
		zap.Int("outlets", resolver.Len()),
		zap.Int("known_urls", global.Len()),
	)

	orgs, err := c.store.ListOrganizations(ctx, store.OrganizationFilter{
		Limit:      sel.Limit,
		Offset:     sel.Offset,
		RequireEIN: sel.PrioritizeEIN,
	})
	if err != nil {
		return nil, eris.Wrap(err, "collector: list organizations")
	}
	if len(orgs) == 0 {
		log.Warn("collector: no organizations matched selection")
		return &Result{Outcome: OutcomeEmpty, Stats: stats.Snapshot(), NextOffset: sel.Offset}, nil
	}
	log.Info("collector: starting run",
		zap.Int("organizations", len(orgs)),
		zap.Int("backends", len(c.backends)),
	)

	for i, org := range orgs {
		if err := ctx.Err(); err != nil {
			return &Result{Outcome: OutcomeHalted, Stats: stats.Snapshot(), NextOffset: sel.Offset + i}, err
		}

		fmt.Fprintf(c.progress, "[%d/%d] %s", i+1, len(orgs), org.Name)
		scoped := dedup.NewScoped(global)
		found, inserted, halted := c.collectOrg(ctx, org, scoped, resolver, stats)
		fmt.Fprintf(c.progress, " - %d found, %d new\n", found, inserted)

		if halted {
			// The interrupted organization is not counted as processed;
			// it is re-run from NextOffset.
			log.Warn("collector: quota exhausted, halting",
				zap.String("organization", org.Name),
				zap.Int("next_offset", sel.Offset+i),
			)
			return &Result{Outcome: OutcomeHalted, Stats: stats.Snapshot(), NextOffset: sel.Offset + i}, nil
		}
		stats.OrgProcessed()

		if i < len(orgs)-1 {
			if err := sleepCtx(ctx, c.orgDelay); err != nil {
				return &Result{Outcome: OutcomeHalted, Stats: stats.Snapshot(), NextOffset: sel.Offset + i + 1}, err
			}
		}
	}

	log.Info("collector: run complete")
	return &Result{Outcome: OutcomeDone, Stats: stats.Snapshot(), NextOffset: sel.Offset + len(orgs)}, nil
}

// collectOrg consults every backend for one organization, persisting what
// passes the ledgers. Returns the found and inserted counts for the
// organization's progress line, and whether a quota stop was hit.
func (c *Collector) collectOrg(ctx context.Context, org model.Organization, scoped dedup.Scoped, resolver *outlet.Resolver, stats *Stats) (found, inserted int, halted bool) {
	log := zap.L().With(zap.String("organization", org.Name))

	for bi, b := range c.backends {
		candidates, err := b.Search(ctx, org.Name, c.perBackendLimit)
		if err != nil {
			if eris.Is(err, backend.ErrQuotaExhausted) {
				return found, inserted, true
			}
			log.Warn("collector: backend search failed",
				zap.String("backend", b.Name()),
				zap.Error(err),
			)
			stats.Error()
			continue
		}

		for _, cand := range candidates {
			if cand.URL == "" {
				continue
			}
			if !scoped.Add(cand.URL) {
				stats.DuplicateSkipped()
				continue
			}
			stats.MentionFound()
			found++

			outletID := resolver.Resolve(cand.URL)
			m := model.NewMention(org.ID, outletID, cand.URL, cand.Headline, cand.PublishedDate, cand.Excerpt)
			ok, err := c.store.InsertMention(ctx, m)
			switch {
			case err != nil:
				log.Warn("collector: insert failed",
					zap.String("url", cand.URL),
					zap.Error(err),
				)
				stats.Error()
			case ok:
				stats.MentionInserted()
				inserted++
			default:
				stats.DuplicateSkipped()
			}
		}

		if bi < len(c.backends)-1 {
			if err := sleepCtx(ctx, c.backendDelay); err != nil {
				return found, inserted, false
			}
		}
	}
	return found, inserted, false
}

// sleepCtx pauses for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
