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

const evidenceTableName = "evidence"

var evidenceColumns = utils.StructTagValues(types.Evidence{})

// chainOrder is the total order of a case's records. seq breaks ties on
// identical timestamps.
var chainOrder = []string{"created_at asc", "seq asc"}

type EvidenceRepository struct {
	pool *pgxpool.Pool
}

func NewEvidenceRepository(pool *pgxpool.Pool) *EvidenceRepository {
	return &EvidenceRepository{pool: pool}
}

func (r *EvidenceRepository) Evidence(ctx context.Context, evidenceID string) (*types.Evidence, error) {

	query, args, err := psql().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"id": evidenceID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate evidence query: %w", err)
	}

	var evidence = new(types.Evidence)
	err = pgxscan.Get(ctx, r.pool, evidence, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch evidence %s: %w", evidenceID, err)
	}

	if err != nil {
		return nil, types.ErrEvidenceNotFound
	}

	return evidence, nil

}

// Tip returns the newest record of caseID, or nil when the case has none.
func (r *EvidenceRepository) Tip(ctx context.Context, caseID string) (*types.Evidence, error) {
	return tip(ctx, r.pool, caseID)
}

func tip(ctx context.Context, db pgxscan.Querier, caseID string) (*types.Evidence, error) {

	query, args, err := psql().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at desc", "seq desc").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tip query: %w", err)
	}

	var evidence = new(types.Evidence)
	err = pgxscan.Get(ctx, db, evidence, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch tip of case %s: %w", caseID, err)
	}

	if err != nil {
		return nil, nil
	}

	return evidence, nil

}

func (r *EvidenceRepository) EvidenceByCase(ctx context.Context, caseID string, limit uint64) ([]*types.Evidence, error) {

	builder := psql().Select(evidenceColumns...).From(evidenceTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy(chainOrder...)
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate case evidence query: %w", err)
	}

	var records = make([]*types.Evidence, 0)
	err = pgxscan.Select(ctx, r.pool, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evidence for case %s: %w", caseID, err)
	}

	return records, nil
}

// AppendLinked reads the tip of caseID, builds the next record with link and
// inserts it in one transaction. A transaction scoped advisory lock keyed on
// the case serializes appends to the same case and leaves other cases free.
func (r *EvidenceRepository) AppendLinked(ctx context.Context, caseID string, link types.EvidenceLinker) (*types.Evidence, error) {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx for evidence append: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock case %s: %w", caseID, err)
	}

	current, err := tip(ctx, tx, caseID)
	if err != nil {
		return nil, err
	}

	record, err := link(current)
	if err != nil {
		return nil, err
	}

	recordMap := utils.StructToMap(record, "seq")

	query, args, err := psql().Insert(evidenceTableName).SetMap(recordMap).Suffix("RETURNING seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert evidence query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&record.Sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to insert evidence %s: %w", record.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit evidence append tx: %w", err)
	}

	return record, nil

}

// RecordTampering marks the evidence compromised and appends entry in one
// transaction. Repeating it with the same entry id leaves a single entry.
func (r *EvidenceRepository) RecordTampering(ctx context.Context, entry *types.AuditLogEntry) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx for tamper record: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().Update(evidenceTableName).
		Set("status", types.EvidenceStatusCompromised).
		Set("verification_status", types.VerificationStatusFailed).
		Where(sq.Eq{"id": entry.EvidenceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate evidence status update: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark evidence %s compromised: %w", entry.EvidenceID, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrEvidenceNotFound
	}

	if err := insertAuditEntry(ctx, tx, entry, true); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tamper record tx: %w", err)
	}

	return nil

}
