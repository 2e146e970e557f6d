package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Planet-Detroit/ecocensus/internal/db"
	"github.com/Planet-Detroit/ecocensus/internal/model"
)

// uniqueViolation is the SQLSTATE for a unique-constraint rejection,
// the structured duplicate signal we rely on instead of message text.
const uniqueViolation = "23505"

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of a collection run.
var preparedStatements = map[string]string{
	"insert_mention": `INSERT INTO media_mentions (id, organization_id, outlet_id, article_url, headline, published_date, excerpt, mention_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (article_url) DO NOTHING`,
	"list_mention_urls": `SELECT article_url FROM media_mentions`,
	"create_outlet":     `INSERT INTO outlets (url, name, category) VALUES ($1, $2, $3) ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url RETURNING id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct access (the outlet roster seeder's bulk upsert).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	ein  TEXT
);

CREATE TABLE IF NOT EXISTS outlets (
	id       BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
	url      TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS media_mentions (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	outlet_id       BIGINT REFERENCES outlets(id),
	article_url     TEXT NOT NULL UNIQUE,
	headline        TEXT NOT NULL,
	published_date  DATE,
	excerpt         TEXT NOT NULL,
	mention_type    TEXT NOT NULL DEFAULT 'mention',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_organizations_name ON organizations(name);
CREATE INDEX IF NOT EXISTS idx_organizations_ein ON organizations(ein);
CREATE INDEX IF NOT EXISTS idx_media_mentions_org ON media_mentions(organization_id);
CREATE INDEX IF NOT EXISTS idx_media_mentions_outlet ON media_mentions(outlet_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error) {
	query := `SELECT id, name, slug, ein FROM organizations`
	if filter.RequireEIN {
		query += ` WHERE ein IS NOT NULL`
	}
	query += ` ORDER BY name`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list organizations")
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.EIN); err != nil {
			return nil, eris.Wrap(err, "postgres: scan organization")
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list organizations rows")
	}
	return orgs, nil
}

func (s *PostgresStore) ListOutlets(ctx context.Context) ([]model.Outlet, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, url, name, category FROM outlets ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list outlets")
	}
	defer rows.Close()

	var outlets []model.Outlet
	for rows.Next() {
		var o model.Outlet
		if err := rows.Scan(&o.ID, &o.URL, &o.Name, &o.Category); err != nil {
			return nil, eris.Wrap(err, "postgres: scan outlet")
		}
		outlets = append(outlets, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list outlets rows")
	}
	return outlets, nil
}

func (s *PostgresStore) CreateOutlet(ctx context.Context, o model.Outlet) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO outlets (url, name, category) VALUES ($1, $2, $3) ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url RETURNING id`,
		o.URL, o.Name, o.Category,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: create outlet %s", o.URL)
	}
	return id, nil
}

func (s *PostgresStore) ListMentionURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT article_url FROM media_mentions`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list mention urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mention url")
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list mention urls rows")
	}
	return urls, nil
}

func (s *PostgresStore) ListMentions(ctx context.Context) ([]model.Mention, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, outlet_id, article_url, headline, published_date, excerpt, mention_type, created_at FROM media_mentions ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list mentions")
	}
	defer rows.Close()

	var mentions []model.Mention
	for rows.Next() {
		var m model.Mention
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.OutletID, &m.ArticleURL, &m.Headline, &m.PublishedDate, &m.Excerpt, &m.MentionType, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mention")
		}
		mentions = append(mentions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list mentions rows")
	}
	return mentions, nil
}

// InsertMention upserts a mention. A uniqueness conflict on article_url is
// the expected duplicate signal and reports (false, nil), not an error.
func (s *PostgresStore) InsertMention(ctx context.Context, m model.Mention) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO media_mentions (id, organization_id, outlet_id, article_url, headline, published_date, excerpt, mention_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (article_url) DO NOTHING`,
		m.ID, m.OrganizationID, m.OutletID, m.ArticleURL, m.Headline, m.PublishedDate, m.Excerpt, m.MentionType, m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, eris.Wrapf(err, "postgres: insert mention %s", m.ArticleURL)
	}
	return tag.RowsAffected() > 0, nil
}
