// Package store persists organizations, outlets, and media mentions.
// Postgres is the shared production store; SQLite serves local runs.
package store

import (
	"context"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

// OrganizationFilter selects which organizations a run processes.
type OrganizationFilter struct {
	// Limit caps the number of organizations (0 = no cap).
	Limit int
	// Offset skips already-processed organizations when resuming a run.
	Offset int
	// RequireEIN keeps only organizations with a tax registration
	// identifier, the ones most likely to have press coverage.
	RequireEIN bool
}

// Store defines the persistence interface for the collection pipeline.
type Store interface {
	// Reference data
	ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error)
	ListOutlets(ctx context.Context) ([]model.Outlet, error)
	CreateOutlet(ctx context.Context, o model.Outlet) (int64, error)

	// Mentions
	ListMentionURLs(ctx context.Context) ([]string, error)
	ListMentions(ctx context.Context) ([]model.Mention, error)
	InsertMention(ctx context.Context, m model.Mention) (inserted bool, err error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
