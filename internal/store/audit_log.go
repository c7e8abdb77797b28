package store

import (
	"context"
	"fmt"

	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditLogTableName = "audit_log"

// timestamp is a keyword in both dialects so the column is always quoted.
var auditLogColumns = []string{"id", "evidence_id", "action", "result", `"timestamp"`}

type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

// Append writes a single entry. Entries are never updated or removed.
func (r *AuditLogRepository) Append(ctx context.Context, entry *types.AuditLogEntry) error {
	return insertAuditEntry(ctx, r.pool, entry, false)
}

func (r *AuditLogRepository) AuditEntries(ctx context.Context, evidenceID string) ([]*types.AuditLogEntry, error) {

	query, args, err := psql().Select(auditLogColumns...).From(auditLogTableName).
		Where(sq.Eq{"evidence_id": evidenceID}).
		OrderBy(`"timestamp" asc`, "seq asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit log query: %w", err)
	}

	var entries = make([]*types.AuditLogEntry, 0)
	err = pgxscan.Select(ctx, r.pool, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit log for evidence %s: %w", evidenceID, err)
	}

	return entries, nil
}

// insertAuditEntry writes entry. With existingOK set, an entry whose id is
// already stored is left as is and no error is returned.
func insertAuditEntry(ctx context.Context, db execer, entry *types.AuditLogEntry, existingOK bool) error {

	builder := psql().Insert(auditLogTableName).
		Columns(auditLogColumns...).
		Values(entry.ID, entry.EvidenceID, entry.Action, entry.Result, entry.Timestamp)
	if existingOK {
		builder = builder.Suffix("ON CONFLICT (id) DO NOTHING")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate audit log insert: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert audit log entry")

}
