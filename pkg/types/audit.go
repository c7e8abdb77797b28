package types

import "time"

type AuditAction string

const (
	AuditActionTampering AuditAction = "Tampering"
)

// AuditResult describes whether the audit write itself succeeded, not
// whether the evidence is valid.
type AuditResult string

const (
	AuditResultSuccess AuditResult = "Success"
)

type AuditLogEntry struct {
	ID         string      `db:"id" json:"id"`
	EvidenceID string      `db:"evidence_id" json:"evidence_id"`
	Action     AuditAction `db:"action" json:"action"`
	Result     AuditResult `db:"result" json:"result"`
	Timestamp  time.Time   `db:"timestamp" json:"timestamp"`
}
