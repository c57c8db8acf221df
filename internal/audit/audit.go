package audit

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mifid-advisor/internal/config"
)

// Sink appends records. Implementations never update or delete.
type Sink interface {
	Append(ctx context.Context, r Record) error
}

// Reader serves the gated history endpoints and the CLI. All listings are in
// chronological order.
type Reader interface {
	// Tail returns the last n records.
	Tail(ctx context.Context, n int) ([]Record, error)
	// ByType returns the last n records of one type; n <= 0 returns all.
	ByType(ctx context.Context, typ Type, n int) ([]Record, error)
	// Count returns the number of readable records.
	Count(ctx context.Context) (int, error)
}

// Log is a Sink that can also be read back.
type Log interface {
	Sink
	Reader
	Close() error
}

// Open returns the Log selected by cfg.Driver, migrated and ready.
func Open(ctx context.Context, cfg config.AuditConfig) (Log, error) {
	switch cfg.Driver {
	case "", "file":
		return OpenFile(cfg.Path)
	case "sqlite":
		l, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := l.Migrate(ctx); err != nil {
			l.Close() //nolint:errcheck
			return nil, err
		}
		return l, nil
	case "postgres":
		l, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := l.Migrate(ctx); err != nil {
			l.Close() //nolint:errcheck
			return nil, err
		}
		return l, nil
	default:
		return nil, eris.Errorf("audit: unsupported driver %q", cfg.Driver)
	}
}

// Latest returns the most recent record of typ, or false when none exist.
func Latest(ctx context.Context, r Reader, typ Type) (Record, bool, error) {
	recs, err := r.ByType(ctx, typ, 1)
	if err != nil || len(recs) == 0 {
		return Record{}, false, err
	}
	return recs[len(recs)-1], true, nil
}

// lastN returns the trailing n elements of recs (all when n <= 0).
func lastN(recs []Record, n int) []Record {
	if n <= 0 || n >= len(recs) {
		return recs
	}
	return recs[len(recs)-n:]
}

// reverse flips newest-first query results into chronological order.
func reverse(recs []Record) []Record {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs
}
