package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of *pgxpool.Pool the Postgres log uses, so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresLog implements Log on a pgx pool.
type PostgresLog struct {
	pool Pool
}

// OpenPostgres connects to connString and verifies the connection.
func OpenPostgres(ctx context.Context, connString string) (*PostgresLog, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "audit: postgres parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "audit: postgres create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "audit: postgres ping")
	}
	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audit_log (
	seq                BIGSERIAL PRIMARY KEY,
	id                 TEXT NOT NULL UNIQUE,
	ts                 TIMESTAMPTZ NOT NULL,
	type               TEXT NOT NULL,
	session_id         TEXT NOT NULL DEFAULT '',
	model              TEXT NOT NULL DEFAULT '',
	profile            TEXT NOT NULL DEFAULT '',
	score              INTEGER NOT NULL DEFAULT 0,
	restrictions_count INTEGER NOT NULL DEFAULT 0,
	status             TEXT NOT NULL DEFAULT '',
	error              TEXT NOT NULL DEFAULT '',
	payload            JSONB
);

CREATE INDEX IF NOT EXISTS idx_audit_log_type ON audit_log(type);

CREATE OR REPLACE RULE audit_log_no_update AS ON UPDATE TO audit_log DO INSTEAD NOTHING;
CREATE OR REPLACE RULE audit_log_no_delete AS ON DELETE TO audit_log DO INSTEAD NOTHING;
`

// Migrate creates the audit table. Update and delete are rewritten to no-ops.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "audit: postgres migrate")
}

func (l *PostgresLog) Close() error {
	l.pool.Close()
	return nil
}

const postgresColumns = `id, ts, type, session_id, model, profile, score, restrictions_count, status, error, payload`

func (l *PostgresLog) Append(ctx context.Context, r Record) error {
	var payload []byte
	if len(r.Payload) > 0 {
		payload = r.Payload
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO audit_log (`+postgresColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.Timestamp, string(r.Type), r.SessionID, r.Model,
		r.Profile, r.Score, r.RestrictionsCount, r.Status, r.Error, payload,
	)
	return eris.Wrap(err, "audit: postgres append")
}

func (l *PostgresLog) Tail(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return l.query(ctx, `SELECT `+postgresColumns+` FROM audit_log ORDER BY seq DESC`)
	}
	return l.query(ctx, `SELECT `+postgresColumns+` FROM audit_log ORDER BY seq DESC LIMIT $1`, n)
}

func (l *PostgresLog) ByType(ctx context.Context, typ Type, n int) ([]Record, error) {
	if n <= 0 {
		return l.query(ctx, `SELECT `+postgresColumns+` FROM audit_log WHERE type = $1 ORDER BY seq DESC`, string(typ))
	}
	return l.query(ctx, `SELECT `+postgresColumns+` FROM audit_log WHERE type = $1 ORDER BY seq DESC LIMIT $2`, string(typ), n)
}

func (l *PostgresLog) Count(ctx context.Context) (int, error) {
	var n int64
	err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return int(n), eris.Wrap(err, "audit: postgres count")
}

func (l *PostgresLog) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := l.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "audit: postgres query")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			typ     string
			payload []byte
		)
		if err := rows.Scan(&r.ID, &r.Timestamp, &typ, &r.SessionID, &r.Model, &r.Profile,
			&r.Score, &r.RestrictionsCount, &r.Status, &r.Error, &payload); err != nil {
			return nil, eris.Wrap(err, "audit: postgres scan")
		}
		r.Type = Type(typ)
		r.Timestamp = r.Timestamp.UTC()
		if len(payload) > 0 {
			r.Payload = payload
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "audit: postgres rows")
	}
	return reverse(out), nil
}
