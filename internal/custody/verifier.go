package custody

import (
	"context"
	"strings"
	"time"

	"evidencechain/internal/digest"
	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	"github.com/sirupsen/logrus"
)

// Verifier rehashes stored evidence and records tampering.
type Verifier struct {
	logger   *logrus.Logger
	blobs    BlobStore
	ledger   EvidenceReader
	recorder TamperRecorder

	attempts int
	backoff  time.Duration

	now   func() time.Time
	newID func() string
}

// NewVerifier returns a Verifier that tries the tamper write up to attempts
// times, sleeping backoff between tries.
func NewVerifier(logger *logrus.Logger, blobs BlobStore, ledger EvidenceReader, recorder TamperRecorder, attempts int, backoff time.Duration) *Verifier {
	if attempts < 1 {
		attempts = 1
	}

	return &Verifier{
		logger:   logger,
		blobs:    blobs,
		ledger:   ledger,
		recorder: recorder,
		attempts: attempts,
		backoff:  backoff,
		now:      time.Now,
		newID:    utils.NanoID,
	}
}

// Verify recomputes the digest of the stored content of evidenceID and
// compares it with the fingerprint taken at ingestion. A match leaves no
// trace; a mismatch marks the record compromised and appends an audit
// entry, every time it is observed.
func (v *Verifier) Verify(ctx context.Context, evidenceID string) (*types.VerificationResult, error) {
	evidenceID = strings.TrimSpace(evidenceID)
	if evidenceID == "" {
		return nil, malformed("evidence_id is required")
	}

	record, err := v.ledger.Evidence(ctx, evidenceID)
	if err != nil {
		return nil, persistenceError(err, "fetch evidence")
	}

	content, err := v.blobs.Download(ctx, record.StorageLocation)
	if err != nil {
		return nil, blobError(err, record.StorageLocation)
	}

	calculated := digest.Bytes(content)

	result := &types.VerificationResult{
		EvidenceID:     record.ID,
		IsValid:        calculated == record.CurrentHash,
		CurrentHash:    record.CurrentHash,
		CalculatedHash: calculated,
		Status:         types.VerificationLabelValid,
	}

	if result.IsValid {
		return result, nil
	}

	result.Status = types.VerificationLabelTampering

	entry := &types.AuditLogEntry{
		ID:         v.newID(),
		EvidenceID: record.ID,
		Action:     types.AuditActionTampering,
		Result:     types.AuditResultSuccess,
		Timestamp:  v.now().UTC(),
	}

	logger := v.logger.WithFields(logrus.Fields{
		"case_id":         record.CaseID,
		"evidence_id":     record.ID,
		"current_hash":    record.CurrentHash,
		"calculated_hash": calculated,
	})
	logger.Warn("tampering detected")

	if err := v.recordTampering(ctx, logger, entry); err != nil {
		return nil, err
	}

	return result, nil
}

// recordTampering retries the status and audit pair. Every attempt carries
// the same entry id and recorders treat an existing id as already recorded,
// so a retry after a commit whose acknowledgement was lost succeeds without
// a second entry.
func (v *Verifier) recordTampering(ctx context.Context, logger *logrus.Entry, entry *types.AuditLogEntry) error {
	var err error
	for attempt := 1; attempt <= v.attempts; attempt++ {
		err = v.recorder.RecordTampering(ctx, entry)
		if err == nil {
			return nil
		}

		logger.WithError(err).WithField("attempt", attempt).Error("failed to record tampering")

		// the record is gone; another attempt cannot succeed
		if types.KindOf(err) == types.ErrorKindNotFound {
			break
		}

		if attempt == v.attempts || ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			return persistenceError(ctx.Err(), "record tampering")
		case <-time.After(v.backoff):
		}
	}

	return persistenceError(err, "record tampering")
}
