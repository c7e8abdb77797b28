package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
)

func (s *Store) Evidence(ctx context.Context, evidenceID string) (*types.Evidence, error) {

	query, args, err := builder().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"id": evidenceID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate evidence query: %w", err)
	}

	var row evidenceRow
	err = sqlscan.Get(ctx, s.db, &row, query, args...)
	if err != nil && !sqlscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch evidence %s: %w", evidenceID, err)
	}

	if err != nil {
		return nil, types.ErrEvidenceNotFound
	}

	return row.evidence(), nil
}

// Tip returns the newest record of caseID, or nil when the case has none.
func (s *Store) Tip(ctx context.Context, caseID string) (*types.Evidence, error) {
	return tip(ctx, s.db, caseID)
}

func tip(ctx context.Context, db sqlscan.Querier, caseID string) (*types.Evidence, error) {

	query, args, err := builder().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at desc", "seq desc").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tip query: %w", err)
	}

	var row evidenceRow
	err = sqlscan.Get(ctx, db, &row, query, args...)
	if err != nil && !sqlscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch tip of case %s: %w", caseID, err)
	}

	if err != nil {
		return nil, nil
	}

	return row.evidence(), nil
}

func (s *Store) EvidenceByCase(ctx context.Context, caseID string, limit uint64) ([]*types.Evidence, error) {

	query := builder().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at asc", "seq asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate case evidence query: %w", err)
	}

	var rows []*evidenceRow
	if err := sqlscan.Select(ctx, s.db, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch evidence for case %s: %w", caseID, err)
	}

	var records = make([]*types.Evidence, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.evidence())
	}

	return records, nil
}

func (s *Store) AppendLinked(ctx context.Context, caseID string, link types.EvidenceLinker) (*types.Evidence, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx for evidence append: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := tip(ctx, tx, caseID)
	if err != nil {
		return nil, err
	}

	record, err := link(current)
	if err != nil {
		return nil, err
	}

	rowMap := utils.StructToMap(newEvidenceRow(record), "seq")

	query, args, err := builder().Insert(evidenceTableName).SetMap(rowMap).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert evidence query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert evidence %s: %w", record.ID, err)
	}

	record.Sequence, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit evidence append tx: %w", err)
	}

	return record, nil
}

func (s *Store) RecordTampering(ctx context.Context, entry *types.AuditLogEntry) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx for tamper record: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := builder().Update(evidenceTableName).
		Set("status", string(types.EvidenceStatusCompromised)).
		Set("verification_status", string(types.VerificationStatusFailed)).
		Where(sq.Eq{"id": entry.EvidenceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate evidence status update: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark evidence %s compromised: %w", entry.EvidenceID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return types.ErrEvidenceNotFound
	}

	if err := insertAuditEntry(ctx, tx, entry, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tamper record tx: %w", err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
