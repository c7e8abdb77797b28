// Package sqlite is the single-file ledger used for local and offline
// deployments. It keeps the same contract as the Postgres store. The
// database handle must be limited to one open connection, which serializes
// every transaction.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	evidenceTableName = "evidence"
	auditLogTableName = "audit_log"
)

var (
	evidenceColumns = utils.StructTagValues(evidenceRow{})
	auditLogColumns = []string{"id", "evidence_id", "action", "result", `"timestamp"`}
)

// Store implements the ledger on database/sql. Timestamps are kept as unix
// microseconds so they sort numerically.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

type evidenceRow struct {
	ID                 string  `db:"id"`
	Sequence           int64   `db:"seq"`
	CaseID             string  `db:"case_id"`
	FileName           string  `db:"file_name"`
	FileSize           int64   `db:"file_size"`
	MimeType           string  `db:"mime_type"`
	EvidenceName       *string `db:"evidence_name"`
	Description        *string `db:"description"`
	EvidenceType       *string `db:"evidence_type"`
	CurrentHash        string  `db:"current_hash"`
	PreviousHash       *string `db:"previous_hash"`
	StorageLocation    string  `db:"storage_location"`
	Status             string  `db:"status"`
	VerificationStatus string  `db:"verification_status"`
	QRCodeData         string  `db:"qr_code_data"`
	QRCodeGeneratedAt  int64   `db:"qr_code_generated_at"`
	CreatedAt          int64   `db:"created_at"`
}

func newEvidenceRow(e *types.Evidence) evidenceRow {
	return evidenceRow{
		ID:                 e.ID,
		Sequence:           e.Sequence,
		CaseID:             e.CaseID,
		FileName:           e.FileName,
		FileSize:           e.FileSize,
		MimeType:           e.MimeType,
		EvidenceName:       e.EvidenceName,
		Description:        e.Description,
		EvidenceType:       e.EvidenceType,
		CurrentHash:        e.CurrentHash,
		PreviousHash:       e.PreviousHash,
		StorageLocation:    e.StorageLocation,
		Status:             string(e.Status),
		VerificationStatus: string(e.VerificationStatus),
		QRCodeData:         e.QRCodeData,
		QRCodeGeneratedAt:  e.QRCodeGeneratedAt.UnixMicro(),
		CreatedAt:          e.CreatedAt.UnixMicro(),
	}
}

func (r *evidenceRow) evidence() *types.Evidence {
	return &types.Evidence{
		ID:                 r.ID,
		Sequence:           r.Sequence,
		CaseID:             r.CaseID,
		FileName:           r.FileName,
		FileSize:           r.FileSize,
		MimeType:           r.MimeType,
		EvidenceName:       r.EvidenceName,
		Description:        r.Description,
		EvidenceType:       r.EvidenceType,
		CurrentHash:        r.CurrentHash,
		PreviousHash:       r.PreviousHash,
		StorageLocation:    r.StorageLocation,
		Status:             types.EvidenceStatus(r.Status),
		VerificationStatus: types.VerificationStatus(r.VerificationStatus),
		QRCodeData:         r.QRCodeData,
		QRCodeGeneratedAt:  time.UnixMicro(r.QRCodeGeneratedAt).UTC(),
		CreatedAt:          time.UnixMicro(r.CreatedAt).UTC(),
	}
}

type auditRow struct {
	ID         string `db:"id"`
	EvidenceID string `db:"evidence_id"`
	Action     string `db:"action"`
	Result     string `db:"result"`
	Timestamp  int64  `db:"timestamp"`
}

// Migrate applies the embedded migrations in file name order.
func (s *Store) Migrate(ctx context.Context, logger *logrus.Logger) error {

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		logger.WithField("migration", name).Info("migration applied")
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
