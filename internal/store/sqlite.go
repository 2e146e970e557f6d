package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite for local,
// single-operator runs that do not need a shared database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	ein  TEXT
);

CREATE TABLE IF NOT EXISTS outlets (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	url      TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS media_mentions (
	id              TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	outlet_id       INTEGER REFERENCES outlets(id),
	article_url     TEXT NOT NULL UNIQUE,
	headline        TEXT NOT NULL,
	published_date  DATETIME,
	excerpt         TEXT NOT NULL,
	mention_type    TEXT NOT NULL DEFAULT 'mention',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_organizations_name ON organizations(name);
CREATE INDEX IF NOT EXISTS idx_organizations_ein ON organizations(ein);
CREATE INDEX IF NOT EXISTS idx_media_mentions_org ON media_mentions(organization_id);
CREATE INDEX IF NOT EXISTS idx_media_mentions_outlet ON media_mentions(outlet_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error) {
	query := `SELECT id, name, slug, ein FROM organizations`
	if filter.RequireEIN {
		query += ` WHERE ein IS NOT NULL`
	}
	query += ` ORDER BY name`
	args := []any{}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list organizations")
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var (
			o   model.Organization
			ein sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &ein); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan organization")
		}
		if ein.Valid {
			o.EIN = &ein.String
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list organizations rows")
	}
	return orgs, nil
}

func (s *SQLiteStore) ListOutlets(ctx context.Context) ([]model.Outlet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, url, name, category FROM outlets ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list outlets")
	}
	defer rows.Close()

	var outlets []model.Outlet
	for rows.Next() {
		var o model.Outlet
		if err := rows.Scan(&o.ID, &o.URL, &o.Name, &o.Category); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outlet")
		}
		outlets = append(outlets, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list outlets rows")
	}
	return outlets, nil
}

func (s *SQLiteStore) CreateOutlet(ctx context.Context, o model.Outlet) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO outlets (url, name, category) VALUES (?, ?, ?) ON CONFLICT (url) DO UPDATE SET url = excluded.url RETURNING id`,
		o.URL, o.Name, o.Category,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: create outlet %s", o.URL)
	}
	return id, nil
}

func (s *SQLiteStore) ListMentionURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT article_url FROM media_mentions`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list mention urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mention url")
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list mention urls rows")
	}
	return urls, nil
}

func (s *SQLiteStore) ListMentions(ctx context.Context) ([]model.Mention, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organization_id, outlet_id, article_url, headline, published_date, excerpt, mention_type, created_at FROM media_mentions ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list mentions")
	}
	defer rows.Close()

	var mentions []model.Mention
	for rows.Next() {
		var (
			m         model.Mention
			outletID  sql.NullInt64
			published sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.OrganizationID, &outletID, &m.ArticleURL, &m.Headline, &published, &m.Excerpt, &m.MentionType, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mention")
		}
		if outletID.Valid {
			m.OutletID = &outletID.Int64
		}
		if published.Valid {
			t := published.Time
			m.PublishedDate = &t
		}
		mentions = append(mentions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list mentions rows")
	}
	return mentions, nil
}

// InsertMention records a mention unless its article_url is already present.
// Duplicates report (false, nil).
func (s *SQLiteStore) InsertMention(ctx context.Context, m model.Mention) (bool, error) {
	var published any
	if m.PublishedDate != nil {
		published = *m.PublishedDate
	}
	var outletID any
	if m.OutletID != nil {
		outletID = *m.OutletID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO media_mentions (id, organization_id, outlet_id, article_url, headline, published_date, excerpt, mention_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OrganizationID, outletID, m.ArticleURL, m.Headline, published, m.Excerpt, m.MentionType, m.CreatedAt,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert mention %s", m.ArticleURL)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}
