package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteLog implements Log on modernc.org/sqlite.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at the given path and configures WAL mode.
func OpenSQLite(dsn string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "audit: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "audit: sqlite exec %s", pragma)
		}
	}
	return &SQLiteLog{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audit_log (
	seq                INTEGER PRIMARY KEY AUTOINCREMENT,
	id                 TEXT NOT NULL UNIQUE,
	ts                 TEXT NOT NULL,
	type               TEXT NOT NULL,
	session_id         TEXT NOT NULL DEFAULT '',
	model              TEXT NOT NULL DEFAULT '',
	profile            TEXT NOT NULL DEFAULT '',
	score              INTEGER NOT NULL DEFAULT 0,
	restrictions_count INTEGER NOT NULL DEFAULT 0,
	status             TEXT NOT NULL DEFAULT '',
	error              TEXT NOT NULL DEFAULT '',
	payload            TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_type ON audit_log(type);

CREATE TRIGGER IF NOT EXISTS audit_log_no_update BEFORE UPDATE ON audit_log
BEGIN
	SELECT RAISE(ABORT, 'audit_log is append-only');
END;

CREATE TRIGGER IF NOT EXISTS audit_log_no_delete BEFORE DELETE ON audit_log
BEGIN
	SELECT RAISE(ABORT, 'audit_log is append-only');
END;
`

// Migrate creates the audit table and its append-only triggers.
func (l *SQLiteLog) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "audit: sqlite migrate")
}

func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

const sqliteColumns = `id, ts, type, session_id, model, profile, score, restrictions_count, status, error, payload`

func (l *SQLiteLog) Append(ctx context.Context, r Record) error {
	var payload any
	if len(r.Payload) > 0 {
		payload = string(r.Payload)
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp.UTC().Format(time.RFC3339Nano), string(r.Type), r.SessionID, r.Model,
		r.Profile, r.Score, r.RestrictionsCount, r.Status, r.Error, payload,
	)
	return eris.Wrap(err, "audit: sqlite append")
}

func (l *SQLiteLog) Tail(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return l.query(ctx, `SELECT `+sqliteColumns+` FROM audit_log ORDER BY seq DESC`)
	}
	return l.query(ctx, `SELECT `+sqliteColumns+` FROM audit_log ORDER BY seq DESC LIMIT ?`, n)
}

func (l *SQLiteLog) ByType(ctx context.Context, typ Type, n int) ([]Record, error) {
	if n <= 0 {
		return l.query(ctx, `SELECT `+sqliteColumns+` FROM audit_log WHERE type = ? ORDER BY seq DESC`, string(typ))
	}
	return l.query(ctx, `SELECT `+sqliteColumns+` FROM audit_log WHERE type = ? ORDER BY seq DESC LIMIT ?`, string(typ), n)
}

func (l *SQLiteLog) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return n, eris.Wrap(err, "audit: sqlite count")
}

func (l *SQLiteLog) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "audit: sqlite query")
	}
	defer rows.Close() //nolint:errcheck

	var out []Record
	for rows.Next() {
		var (
			r       Record
			ts      string
			typ     string
			payload sql.NullString
		)
		if err := rows.Scan(&r.ID, &ts, &typ, &r.SessionID, &r.Model, &r.Profile,
			&r.Score, &r.RestrictionsCount, &r.Status, &r.Error, &payload); err != nil {
			return nil, eris.Wrap(err, "audit: sqlite scan")
		}
		r.Type = Type(typ)
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, eris.Wrapf(err, "audit: sqlite parse ts of %s", r.ID)
		}
		if payload.Valid {
			r.Payload = []byte(payload.String)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "audit: sqlite rows")
	}
	return reverse(out), nil
}
