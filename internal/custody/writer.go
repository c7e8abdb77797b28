package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"evidencechain/internal/digest"
	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	"github.com/sirupsen/logrus"
)

// Writer ingests uploaded files into their case's chain.
type Writer struct {
	logger *logrus.Logger
	blobs  BlobStore
	ledger ChainAppender

	now   func() time.Time
	newID func() string
}

func NewWriter(logger *logrus.Logger, blobs BlobStore, ledger ChainAppender) *Writer {
	return &Writer{
		logger: logger,
		blobs:  blobs,
		ledger: ledger,
		now:    time.Now,
		newID:  utils.NanoID,
	}
}

// Ingest fingerprints the blob at req.FilePath and appends it to the chain
// of req.CaseID. Either a fully linked record is persisted or nothing is.
func (w *Writer) Ingest(ctx context.Context, req *types.IngestRequest) (*types.IngestResult, error) {
	if req == nil {
		return nil, malformed("request body is required")
	}

	filePath := strings.TrimSpace(req.FilePath)
	caseID := strings.TrimSpace(req.CaseID)
	if filePath == "" {
		return nil, malformed("file_path is required")
	}
	if caseID == "" {
		return nil, malformed("case_id is required")
	}
	if req.Metadata.FileSize < 0 {
		return nil, malformed("metadata.file_size must not be negative")
	}
	if id := strings.TrimSpace(req.Metadata.EvidenceID); id != "" && !utils.ValidID(id) {
		return nil, malformed("metadata.evidence_id %q is not a valid identifier", id)
	}

	content, err := w.blobs.Download(ctx, filePath)
	if err != nil {
		return nil, blobError(err, filePath)
	}

	hash := digest.Bytes(content)

	evidenceID := strings.TrimSpace(req.Metadata.EvidenceID)
	if evidenceID == "" {
		evidenceID = w.newID()
	}

	meta := req.Metadata
	if strings.TrimSpace(meta.FileName) == "" {
		meta.FileName = path.Base(filePath)
	}
	if meta.FileSize == 0 {
		meta.FileSize = int64(len(content))
	}
	if strings.TrimSpace(meta.MimeType) == "" {
		meta.MimeType = http.DetectContentType(content)
	}

	entry := w.logger.WithFields(logrus.Fields{
		"case_id":     caseID,
		"evidence_id": evidenceID,
		"hash":        hash,
	})

	record, err := w.ledger.AppendLinked(ctx, caseID, func(tip *types.Evidence) (*types.Evidence, error) {
		createdAt := w.now().UTC().Truncate(time.Microsecond)

		var previous *string
		if tip != nil {
			previous = utils.StringPtr(tip.CurrentHash)
			// created_at orders the chain, so never let a link sort before its tip
			if !createdAt.After(tip.CreatedAt) {
				createdAt = tip.CreatedAt.Add(time.Microsecond)
			}
		}

		payload, err := buildQRPayload(evidenceID, hash, createdAt)
		if err != nil {
			return nil, err
		}

		return &types.Evidence{
			ID:                 evidenceID,
			CaseID:             caseID,
			FileName:           meta.FileName,
			FileSize:           meta.FileSize,
			MimeType:           meta.MimeType,
			EvidenceName:       optional(meta.EvidenceName),
			Description:        optional(meta.Description),
			EvidenceType:       optional(meta.EvidenceType),
			CurrentHash:        hash,
			PreviousHash:       previous,
			StorageLocation:    filePath,
			Status:             types.EvidenceStatusValid,
			VerificationStatus: types.VerificationStatusVerified,
			QRCodeData:         payload,
			QRCodeGeneratedAt:  createdAt,
			CreatedAt:          createdAt,
		}, nil
	})
	if err != nil {
		entry.WithError(err).Error("failed to append evidence to chain")
		return nil, persistenceError(err, "append evidence")
	}

	entry.WithField("previous_hash", utils.PtrString(record.PreviousHash)).Info("evidence ingested")

	return &types.IngestResult{
		Evidence: record,
		Hash:     hash,
		QRCode:   record.QRCodeData,
	}, nil
}

func buildQRPayload(evidenceID, hash string, ts time.Time) (string, error) {
	data, err := json.Marshal(types.QRPayload{
		EvidenceID: evidenceID,
		Hash:       hash,
		Timestamp:  ts.UTC().Format(types.QRTimestampFormat),
	})
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}
	return string(data), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
