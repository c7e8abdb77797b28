package server

import (
	"net/http"

	"evidencechain/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Ping(r.Context()); err != nil {
		s.logger.WithError(err).Error("health check failed")
		s.writeStatus(w, http.StatusServiceUnavailable, "record store unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleUploadEvidence(w http.ResponseWriter, r *http.Request) {
	var req = new(types.IngestRequest)
	if err := decodeBody(w, r, req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.ingester.Ingest(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"evidence_id": result.Evidence.ID,
		"case_id":     result.Evidence.CaseID,
		"subject":     subjectFromContext(r.Context()),
	}).Info("evidence uploaded")

	s.writeJSON(w, http.StatusOK, types.IngestResponse{
		Success:    true,
		EvidenceID: result.Evidence.ID,
		Hash:       result.Hash,
		QRCode:     result.QRCode,
	})
}

func (s *Service) handleVerifyEvidence(w http.ResponseWriter, r *http.Request) {
	var req = new(types.VerifyRequest)
	if err := decodeBody(w, r, req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.verifier.Verify(r.Context(), req.EvidenceID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, types.VerifyResponse{
		Success:            true,
		VerificationResult: *result,
	})
}

func (s *Service) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	evidenceID := r.PathValue("evidenceID")

	evidence, err := s.ledger.Evidence(r.Context(), evidenceID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, evidence)
}

func (s *Service) handleGetEvidenceAudit(w http.ResponseWriter, r *http.Request) {
	evidenceID := r.PathValue("evidenceID")

	if _, err := s.ledger.Evidence(r.Context(), evidenceID); err != nil {
		s.writeError(w, err)
		return
	}

	entries, err := s.ledger.AuditEntries(r.Context(), evidenceID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}
