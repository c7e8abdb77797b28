// Package custody maintains the per-case evidence hash chain: ingestion
// links each upload to the case's tip, verification rehashes stored content
// and records tampering.
package custody

import (
	"context"

	"evidencechain/pkg/types"
)

type BlobStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// ChainAppender must run the tip read, the linker and the insert as one
// scope serialized per case.
type ChainAppender interface {
	AppendLinked(ctx context.Context, caseID string, link types.EvidenceLinker) (*types.Evidence, error)
}

type EvidenceReader interface {
	Evidence(ctx context.Context, evidenceID string) (*types.Evidence, error)
}

// ChainReader lists a case's records in chain order. A limit of 0 means all.
type ChainReader interface {
	EvidenceByCase(ctx context.Context, caseID string, limit uint64) ([]*types.Evidence, error)
}

// TamperRecorder marks the evidence compromised and appends the audit entry
// as a single unit. Marking an already compromised record is harmless and an
// entry whose id is already stored counts as recorded.
type TamperRecorder interface {
	RecordTampering(ctx context.Context, entry *types.AuditLogEntry) error
}
