// Package store is the Postgres ledger for evidence records and the audit
// log. Table names are unqualified and resolve through the connection's
// search_path.
package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Ledger bundles the evidence and audit log repositories behind one value.
type Ledger struct {
	*EvidenceRepository
	*AuditLogRepository

	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{
		EvidenceRepository: NewEvidenceRepository(pool),
		AuditLogRepository: NewAuditLogRepository(pool),
		pool:               pool,
	}
}

func (l *Ledger) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}
