package sqlite

import (
	"context"
	"fmt"
	"time"

	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// Append writes a single entry. Entries are never updated or removed.
func (s *Store) Append(ctx context.Context, entry *types.AuditLogEntry) error {
	return insertAuditEntry(ctx, s.db, entry, false)
}

func (s *Store) AuditEntries(ctx context.Context, evidenceID string) ([]*types.AuditLogEntry, error) {

	query, args, err := builder().Select(auditLogColumns...).From(auditLogTableName).
		Where(sq.Eq{"evidence_id": evidenceID}).
		OrderBy(`"timestamp" asc`, "seq asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit log query: %w", err)
	}

	var rows []*auditRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch audit log for evidence %s: %w", evidenceID, err)
	}

	var entries = make([]*types.AuditLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &types.AuditLogEntry{
			ID:         row.ID,
			EvidenceID: row.EvidenceID,
			Action:     types.AuditAction(row.Action),
			Result:     types.AuditResult(row.Result),
			Timestamp:  time.UnixMicro(row.Timestamp).UTC(),
		})
	}

	return entries, nil
}

// insertAuditEntry writes entry. With existingOK set, an entry whose id is
// already stored is left as is and no error is returned.
func insertAuditEntry(ctx context.Context, db execer, entry *types.AuditLogEntry, existingOK bool) error {

	insert := builder().Insert(auditLogTableName).
		Columns(auditLogColumns...).
		Values(entry.ID, entry.EvidenceID, string(entry.Action), string(entry.Result), entry.Timestamp.UnixMicro())
	if existingOK {
		insert = insert.Suffix("ON CONFLICT (id) DO NOTHING")
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate audit log insert: %w", err)
	}

	_, err = db.ExecContext(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert audit log entry")
}
